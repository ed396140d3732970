package fallback

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/five82/bodega/internal/api"
	"github.com/five82/bodega/internal/domain"
)

// Remote is the facade a controller writes through. service.Clientes,
// service.Productos and service.Usuarios satisfy it.
type Remote[T Keyed] interface {
	List(ctx context.Context, page int) (api.Paginated[T], error)
	ListAll(ctx context.Context) ([]T, error)
	Create(ctx context.Context, v T) domain.SubmissionResult[T]
	Update(ctx context.Context, id int64, v T) domain.SubmissionResult[T]
	Delete(ctx context.Context, id int64) domain.SubmissionResult[T]
}

// PendingNotice is appended to the message of a write kept only locally.
const PendingNotice = "El cambio se guardó localmente y quedará pendiente de sincronizar."

// WriteResult is the outcome of a write through the controller. When Pending
// is true the remote did not persist the change, Result.Success is false and
// Result.Err wraps ErrPendingSync.
type WriteResult[T Keyed] struct {
	Result  domain.SubmissionResult[T]
	Entry   Entry[T]
	Pending bool
}

// Controller owns the local list of one view and applies the degradation
// rules: reads fall back to static rows, and writes that fail for
// connectivity reasons are kept locally and flagged pending. Static rows are
// read-only.
type Controller[T Keyed] struct {
	name   string
	remote Remote[T]
	static []T
	list   *LocalList[T]
	log    zerolog.Logger

	mu   sync.Mutex
	last ReadResult[T]
}

// NewController builds a controller. static is returned verbatim when a read
// falls back.
func NewController[T Keyed](name string, remote Remote[T], static []T, log zerolog.Logger) *Controller[T] {
	return &Controller[T]{
		name:   name,
		remote: remote,
		static: static,
		list:   NewLocalList[T](),
		log:    log.With().Str("component", "fallback").Str("resource", name).Logger(),
	}
}

// Name returns the resource name given at construction.
func (c *Controller[T]) Name() string { return c.name }

// List exposes the local list.
func (c *Controller[T]) List() *LocalList[T] { return c.list }

// Last returns the most recent read result.
func (c *Controller[T]) Last() ReadResult[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Load reads one page and refreshes the local list from it.
func (c *Controller[T]) Load(ctx context.Context, page int) ReadResult[T] {
	res := Read(ctx, func(ctx context.Context) (api.Paginated[T], error) {
		return c.remote.List(ctx, page)
	}, c.static)

	ev := c.log.Info()
	if res.Decision.Source == SourceFallback {
		ev = c.log.Warn()
	}
	ev.Str("source", res.Decision.Source.String()).Str("reason", res.Decision.Reason).Int("rows", len(res.Page.Data)).Msg("read resolved")

	c.apply(res)
	return res
}

// LoadAll reads every page through the remote's walker. Any failure falls
// back as a whole, so live and bundled rows never mix.
func (c *Controller[T]) LoadAll(ctx context.Context) ReadResult[T] {
	res := Read(ctx, func(ctx context.Context) (api.Paginated[T], error) {
		rows, err := c.remote.ListAll(ctx)
		if err != nil {
			return api.Paginated[T]{}, err
		}
		return staticPage(rows), nil
	}, c.static)

	c.log.Info().Str("source", res.Decision.Source.String()).Str("reason", res.Decision.Reason).Int("rows", len(res.Page.Data)).Msg("full read resolved")
	c.apply(res)
	return res
}

func (c *Controller[T]) apply(res ReadResult[T]) {
	switch {
	case res.Err != nil:
	case res.Decision.Source == SourceFallback:
		c.list.ResetStatic(res.Page.Data)
	default:
		c.list.Reset(res.Page.Data)
	}
	c.mu.Lock()
	c.last = res
	c.mu.Unlock()
}

// Create submits v. A connectivity failure keeps v as a pending local row.
func (c *Controller[T]) Create(ctx context.Context, v T) WriteResult[T] {
	res := c.remote.Create(ctx, v)
	if res.Success {
		return WriteResult[T]{Result: res, Entry: c.list.MarkSynced("", *res.Data)}
	}
	if !degradable(res.Err) {
		return WriteResult[T]{Result: res}
	}
	entry := c.list.AddPending(v, res.Err)
	c.log.Warn().Str("op", "create").Str("key", entry.Key).Str("kind", api.KindOf(res.Err).String()).Msg("write kept locally")
	return WriteResult[T]{Result: pendingResult(res), Entry: entry, Pending: true}
}

// Update submits v for the row under key. Rows the remote has never seen are
// edited locally without a remote call.
func (c *Controller[T]) Update(ctx context.Context, key string, v T) WriteResult[T] {
	current, ok := c.list.Get(key)
	if !ok {
		return WriteResult[T]{Result: domain.Failed[T]("El registro no existe.", &api.Error{Kind: api.KindNotFound, Op: "update " + key})}
	}
	if current.State == Static {
		return WriteResult[T]{Result: staticResult[T]()}
	}
	if current.State == PendingCreate {
		entry, _ := c.list.MarkPending(key, v, PendingCreate, current.Err)
		return WriteResult[T]{Result: pendingResult(domain.SubmissionResult[T]{Err: current.Err}), Entry: entry, Pending: true}
	}

	res := c.remote.Update(ctx, current.Value.Key(), v)
	if res.Success {
		return WriteResult[T]{Result: res, Entry: c.list.MarkSynced(key, *res.Data)}
	}
	if !degradable(res.Err) {
		return WriteResult[T]{Result: res}
	}
	entry, _ := c.list.MarkPending(key, v, PendingUpdate, res.Err)
	c.log.Warn().Str("op", "update").Str("key", key).Str("kind", api.KindOf(res.Err).String()).Msg("write kept locally")
	return WriteResult[T]{Result: pendingResult(res), Entry: entry, Pending: true}
}

// Delete removes the row under key. A connectivity failure hides the row and
// flags it for deletion.
func (c *Controller[T]) Delete(ctx context.Context, key string) WriteResult[T] {
	current, ok := c.list.Get(key)
	if !ok {
		return WriteResult[T]{Result: domain.Failed[T]("El registro no existe.", &api.Error{Kind: api.KindNotFound, Op: "delete " + key})}
	}
	if current.State == Static {
		return WriteResult[T]{Result: staticResult[T]()}
	}
	if current.State == PendingCreate {
		c.list.Remove(key)
		return WriteResult[T]{Result: domain.Succeeded("Registro local descartado", current.Value), Entry: current}
	}

	res := c.remote.Delete(ctx, current.Value.Key())
	if res.Success {
		c.list.Remove(key)
		return WriteResult[T]{Result: res, Entry: current}
	}
	if !degradable(res.Err) {
		return WriteResult[T]{Result: res}
	}
	entry, _ := c.list.MarkPending(key, current.Value, PendingDelete, res.Err)
	c.log.Warn().Str("op", "delete").Str("key", key).Str("kind", api.KindOf(res.Err).String()).Msg("write kept locally")
	return WriteResult[T]{Result: pendingResult(res), Entry: entry, Pending: true}
}

// SyncReport counts the outcome of one Sync pass.
type SyncReport struct {
	Synced int
	Failed int
	// Rejected rows were refused by the remote for non-connectivity reasons
	// and stay pending until the operator fixes or discards them.
	Rejected int
}

// Sync replays pending rows against the remote in list order.
func (c *Controller[T]) Sync(ctx context.Context) SyncReport {
	var report SyncReport
	for _, e := range c.list.Pending() {
		if ctx.Err() != nil {
			break
		}
		var res domain.SubmissionResult[T]
		switch e.State {
		case PendingCreate:
			res = c.remote.Create(ctx, e.Value)
		case PendingUpdate:
			res = c.remote.Update(ctx, e.Value.Key(), e.Value)
		case PendingDelete:
			res = c.remote.Delete(ctx, e.Value.Key())
		}

		switch {
		case res.Success && e.State == PendingDelete:
			c.list.Remove(e.Key)
			report.Synced++
		case res.Success:
			c.list.MarkSynced(e.Key, *res.Data)
			report.Synced++
		case degradable(res.Err):
			c.list.MarkPending(e.Key, e.Value, e.State, res.Err)
			report.Failed++
		default:
			c.list.MarkPending(e.Key, e.Value, e.State, res.Err)
			report.Rejected++
		}
	}
	c.log.Info().Int("synced", report.Synced).Int("failed", report.Failed).Int("rejected", report.Rejected).Msg("sync pass")
	return report
}

// degradable reports whether a failed write may be kept locally. Validation,
// auth and format problems never mutate the local list.
func degradable(err error) bool {
	return err != nil && api.KindOf(err).Connectivity()
}

// StaticNotice explains why a bundled row cannot be edited or deleted.
const StaticNotice = "Los datos locales son de solo lectura. Recargue cuando haya conexión para modificar este registro."

func staticResult[T any]() domain.SubmissionResult[T] {
	return domain.Failed[T](StaticNotice, ErrStaticRow)
}

func pendingResult[T any](res domain.SubmissionResult[T]) domain.SubmissionResult[T] {
	msg := PendingNotice
	if res.Message != "" {
		msg = res.Message + " " + PendingNotice
	}
	err := ErrPendingSync
	if res.Err != nil {
		err = fmt.Errorf("%w: %w", ErrPendingSync, res.Err)
	}
	return domain.Failed[T](msg, err)
}
