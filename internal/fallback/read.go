package fallback

import (
	"context"
	"errors"

	"github.com/five82/bodega/internal/api"
)

// Source says where the rows of a read came from.
type Source int

const (
	// SourceLive means the remote answered and is authoritative, even with
	// zero rows.
	SourceLive Source = iota
	// SourceFallback means the bundled dataset is shown instead.
	SourceFallback
)

func (s Source) String() string {
	if s == SourceFallback {
		return "local-fallback"
	}
	return "live"
}

// Decision is recomputed on every top-level read and never stored.
type Decision struct {
	Source Source
	Reason string
}

// ReadResult is one resolved read.
type ReadResult[T any] struct {
	Decision Decision
	Page     api.Paginated[T]
	// Warning is set when the remote answered in a shape nobody recognizes.
	Warning string
	// Err is set when the read was refused for a reason the caller must act
	// on (signed out, no permission). No rows are returned in that case.
	Err error
}

// Fetch reads one page from the remote.
type Fetch[T any] func(ctx context.Context) (api.Paginated[T], error)

// Warning copy for a reachable server that answered in an unknown shape.
const WarningFormato = "El servidor respondió en un formato no reconocido; no se muestran registros."

// Read runs fetch and decides between live rows and the static dataset.
//
//   - success, including an empty page: live
//   - unexpected format: live, empty, with a warning
//   - unauthenticated or forbidden: no rows, Err set, no fallback
//   - anything else: the static dataset, exactly as given
func Read[T any](ctx context.Context, fetch Fetch[T], static []T) ReadResult[T] {
	page, err := fetch(ctx)
	if err == nil {
		if page.Data == nil {
			page.Data = []T{}
		}
		return ReadResult[T]{Decision: Decision{Source: SourceLive, Reason: "ok"}, Page: page}
	}

	kind := api.KindOf(err)
	switch {
	case kind == api.KindUnexpectedFormat:
		return ReadResult[T]{
			Decision: Decision{Source: SourceLive, Reason: kind.String()},
			Page:     staticPage([]T{}),
			Warning:  WarningFormato,
		}
	case kind == api.KindUnauthenticated, kind == api.KindForbidden:
		return ReadResult[T]{
			Decision: Decision{Source: SourceLive, Reason: kind.String()},
			Page:     staticPage([]T{}),
			Err:      err,
		}
	case errors.Is(err, context.Canceled) && ctx.Err() != nil:
		// The caller gave up; there is nothing to render.
		return ReadResult[T]{Decision: Decision{Source: SourceLive, Reason: "canceled"}, Page: staticPage([]T{}), Err: err}
	}

	reason := kind.String()
	if kind == api.KindUnknown {
		reason = err.Error()
	}
	return ReadResult[T]{Decision: Decision{Source: SourceFallback, Reason: reason}, Page: staticPage(static)}
}

// staticPage wraps rows in the single-page envelope used for flat replies.
func staticPage[T any](rows []T) api.Paginated[T] {
	if rows == nil {
		rows = []T{}
	}
	n := len(rows)
	meta := api.Meta{CurrentPage: 1, LastPage: 1, PerPage: n, Total: n, To: n}
	if n > 0 {
		meta.From = 1
	}
	return api.Paginated[T]{Data: rows, Meta: meta}
}
