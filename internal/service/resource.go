package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/five82/bodega/internal/api"
	"github.com/five82/bodega/internal/domain"
)

// resource implements the CRUD plumbing shared by every facade: envelope
// normalization, mapping in both directions, local validation before any
// network call, and error reclassification.
type resource[T any] struct {
	exec     api.Executor
	path     string // "/clientes"
	plural   string // key of the keyed collection variant
	noun     string // "Cliente", used in success copy
	fromAPI  func(gjson.Result) T
	toAPI    func(T) any
	validate func(v T, creating bool) error
	log      zerolog.Logger
}

// list fetches one page. Errors are *api.Error with user-facing messages.
func (r resource[T]) list(ctx context.Context, page int) (api.Paginated[T], error) {
	endpoint := r.path
	if page > 1 {
		endpoint += "?" + url.Values{"page": {strconv.Itoa(page)}}.Encode()
	}
	op := "listar " + r.plural

	resp, err := r.exec.Do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		r.log.Warn().Str("resource", r.plural).Int("page", page).Str("kind", api.KindOf(err).String()).Err(err).Msg("list failed")
		return api.Paginated[T]{}, reclassify(op, err)
	}
	raw, shape, err := api.Collection(resp.Body, r.plural)
	if err != nil {
		r.log.Warn().Str("resource", r.plural).Msg("unrecognized collection envelope")
		return api.Paginated[T]{}, reclassify(op, err)
	}
	r.log.Debug().Str("resource", r.plural).Str("shape", shape.String()).Int("records", len(raw.Data)).Msg("collection normalized")
	return api.MapPage(raw, r.fromAPI), nil
}

// listAll walks pages in request order up to the last page reported by the
// first reply. A reply whose current_page is not the page asked for ends the
// walk, so a server that ignores ?page cannot loop it. Callers must not run
// it concurrently for the same resource.
func (r resource[T]) listAll(ctx context.Context) ([]T, error) {
	first, err := r.list(ctx, 1)
	if err != nil {
		return nil, err
	}
	out := append([]T{}, first.Data...)
	last := first.Meta.LastPage
	for page := 2; page <= last && len(first.Data) > 0; page++ {
		p, err := r.list(ctx, page)
		if err != nil {
			return nil, err
		}
		if p.Meta.CurrentPage != page || len(p.Data) == 0 {
			r.log.Warn().Str("resource", r.plural).Int("requested", page).Int("current_page", p.Meta.CurrentPage).Msg("pagination stalled")
			break
		}
		out = append(out, p.Data...)
	}
	return out, nil
}

func (r resource[T]) get(ctx context.Context, id int64) (T, error) {
	var zero T
	resp, err := r.exec.Do(ctx, http.MethodGet, r.itemPath(id), nil)
	if err != nil {
		return zero, reclassify("obtener "+r.noun, err)
	}
	reply, err := api.Single(resp.Body)
	if err != nil {
		return zero, reclassify("obtener "+r.noun, err)
	}
	if !reply.Record.Exists() {
		return zero, reclassify("obtener "+r.noun, &api.Error{Kind: api.KindUnexpectedFormat})
	}
	return r.fromAPI(reply.Record), nil
}

func (r resource[T]) create(ctx context.Context, v T) domain.SubmissionResult[T] {
	if err := r.validate(v, true); err != nil {
		return domain.Failed[T](err.Error(), err)
	}
	resp, err := r.exec.Do(ctx, http.MethodPost, r.path, r.toAPI(v))
	return r.writeResult("crear", resp, err, v, r.noun+" registrado correctamente", true)
}

func (r resource[T]) update(ctx context.Context, id int64, v T) domain.SubmissionResult[T] {
	if id <= 0 {
		err := validationError("El identificador no es válido")
		return domain.Failed[T](err.Error(), err)
	}
	if err := r.validate(v, false); err != nil {
		return domain.Failed[T](err.Error(), err)
	}
	resp, err := r.exec.Do(ctx, http.MethodPut, r.itemPath(id), r.toAPI(v))
	return r.writeResult("actualizar", resp, err, v, r.noun+" actualizado correctamente", true)
}

func (r resource[T]) remove(ctx context.Context, id int64) domain.SubmissionResult[T] {
	var zero T
	if id <= 0 {
		err := validationError("El identificador no es válido")
		return domain.Failed[T](err.Error(), err)
	}
	resp, err := r.exec.Do(ctx, http.MethodDelete, r.itemPath(id), nil)
	return r.writeResult("eliminar", resp, err, zero, r.noun+" eliminado correctamente", false)
}

// writeResult normalizes the single-record envelope. When the server echoes
// no record (or echo is false), the submitted value stands in for it.
func (r resource[T]) writeResult(verb string, resp api.Response, err error, submitted T, okMsg string, echo bool) domain.SubmissionResult[T] {
	op := verb + " " + r.noun
	if err != nil {
		r.log.Warn().Str("op", op).Str("kind", api.KindOf(err).String()).Err(err).Msg("write failed")
		classified := reclassify(op, err)
		return domain.Failed[T](classified.Error(), classified)
	}
	reply, err := api.Single(resp.Body)
	if err != nil {
		classified := reclassify(op, err)
		return domain.Failed[T](classified.Error(), classified)
	}
	record := submitted
	if echo && reply.Record.Exists() {
		record = r.fromAPI(reply.Record)
	}
	msg := reply.Message
	if msg == "" {
		msg = okMsg
	}
	return domain.Succeeded(msg, record)
}

func (r resource[T]) itemPath(id int64) string {
	return fmt.Sprintf("%s/%d", r.path, id)
}

// fromDataset maps static records in API shape with the same adapters used
// for live reads.
func (r resource[T]) fromDataset(records []gjson.Result) []T {
	out := make([]T, 0, len(records))
	for _, rec := range records {
		out = append(out, r.fromAPI(rec))
	}
	return out
}
