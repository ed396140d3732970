package fallback

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrPendingSync marks a write that was applied locally but not persisted.
var ErrPendingSync = errors.New("cambio pendiente de sincronizar")

// ErrStaticRow refuses a write aimed at a row of the bundled dataset.
var ErrStaticRow = errors.New("los datos locales son de solo lectura")

// Keyed is a record with a remote identifier. Zero means "not yet created".
type Keyed interface {
	Key() int64
}

// SyncState is how a local row relates to the remote.
type SyncState int

const (
	Synced SyncState = iota
	// Static rows come from the bundled dataset. They are not remote records
	// and never take part in a write.
	Static
	PendingCreate
	PendingUpdate
	PendingDelete
)

func (s SyncState) String() string {
	switch s {
	case PendingCreate:
		return "pending-create"
	case PendingUpdate:
		return "pending-update"
	case PendingDelete:
		return "pending-delete"
	case Static:
		return "static"
	default:
		return "synced"
	}
}

// Pending reports whether the row still has to reach the remote.
func (s SyncState) Pending() bool {
	return s == PendingCreate || s == PendingUpdate || s == PendingDelete
}

// Entry is one row of a local list.
type Entry[T Keyed] struct {
	// Key is "id:<remote id>" for rows the remote knows about, "static:<id>"
	// for bundled rows and a uuid for rows created while offline or
	// acknowledged without an id.
	Key       string
	Value     T
	State     SyncState
	Err       error // the failure that left the row pending
	ChangedAt time.Time
}

func remoteKey(id int64) string { return "id:" + strconv.FormatInt(id, 10) }

func staticKey(id int64) string { return "static:" + strconv.FormatInt(id, 10) }

// LocalList is the in-memory list behind one view. Every entry is synced,
// static or flagged pending; nothing else is representable.
type LocalList[T Keyed] struct {
	mu      sync.RWMutex
	entries []Entry[T]
	now     func() time.Time
}

// NewLocalList returns an empty list.
func NewLocalList[T Keyed]() *LocalList[T] {
	return &LocalList[T]{now: time.Now}
}

// Reset replaces the synced and static rows with live rows, then reapplies
// pending changes on top so a reload never drops unsynced work.
func (l *LocalList[T]) Reset(rows []T) {
	l.reset(rows, Synced)
}

// ResetStatic is Reset for bundled rows. They are stored as Static under
// their own key space so no write can address them as remote records.
func (l *LocalList[T]) ResetStatic(rows []T) {
	l.reset(rows, Static)
}

func (l *LocalList[T]) reset(rows []T, state SyncState) {
	l.mu.Lock()
	defer l.mu.Unlock()

	keyOf := remoteKey
	if state == Static {
		keyOf = staticKey
	}

	pending := make(map[string]Entry[T])
	var creates []Entry[T]
	for _, e := range l.entries {
		switch e.State {
		case PendingCreate:
			creates = append(creates, e)
		case PendingUpdate, PendingDelete:
			pending[e.Key] = e
		}
	}

	next := make([]Entry[T], 0, len(rows)+len(creates))
	for _, r := range rows {
		key := keyOf(r.Key())
		if p, ok := pending[key]; ok {
			next = append(next, p)
			delete(pending, key)
			continue
		}
		next = append(next, Entry[T]{Key: key, Value: r, State: state, ChangedAt: l.now()})
	}
	// Pending edits whose row is not on this page stay tracked.
	for _, e := range l.entries {
		if _, ok := pending[e.Key]; ok {
			next = append(next, e)
		}
	}
	l.entries = append(next, creates...)
}

// Visible returns the rows a view should render, hiding pending deletes.
func (l *LocalList[T]) Visible() []Entry[T] {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry[T], 0, len(l.entries))
	for _, e := range l.entries {
		if e.State != PendingDelete {
			out = append(out, e)
		}
	}
	return out
}

// Pending returns the rows that still have to reach the remote.
func (l *LocalList[T]) Pending() []Entry[T] {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Entry[T]
	for _, e := range l.entries {
		if e.State.Pending() {
			out = append(out, e)
		}
	}
	return out
}

// Get returns the entry stored under key.
func (l *LocalList[T]) Get(key string) (Entry[T], bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i := l.index(key); i >= 0 {
		return l.entries[i], true
	}
	return Entry[T]{}, false
}

// Len counts every entry, pending deletes included.
func (l *LocalList[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// AddPending stores a row created while the remote was unavailable.
func (l *LocalList[T]) AddPending(v T, cause error) Entry[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := Entry[T]{Key: uuid.NewString(), Value: v, State: PendingCreate, Err: cause, ChangedAt: l.now()}
	l.entries = append(l.entries, e)
	return e
}

// MarkSynced replaces the entry under key with the remote's copy. A missing
// key appends the row. A copy without an id keeps key, or gets a fresh uuid,
// until a reload brings the remote's version.
func (l *LocalList[T]) MarkSynced(key string, v T) Entry[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := Entry[T]{Key: remoteKey(v.Key()), Value: v, State: Synced, ChangedAt: l.now()}
	if v.Key() <= 0 {
		e.Key = key
		if l.index(key) < 0 {
			e.Key = uuid.NewString()
		}
	}
	if i := l.index(key); i >= 0 {
		l.entries[i] = e
		return e
	}
	if i := l.index(e.Key); i >= 0 {
		l.entries[i] = e
		return e
	}
	l.entries = append(l.entries, e)
	return e
}

// MarkPending flags the entry under key with state, keeping PendingCreate
// for rows the remote has never seen.
func (l *LocalList[T]) MarkPending(key string, v T, state SyncState, cause error) (Entry[T], bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.index(key)
	if i < 0 {
		return Entry[T]{}, false
	}
	if l.entries[i].State == PendingCreate {
		state = PendingCreate
	}
	l.entries[i] = Entry[T]{Key: key, Value: v, State: state, Err: cause, ChangedAt: l.now()}
	return l.entries[i], true
}

// Remove drops the entry under key.
func (l *LocalList[T]) Remove(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.index(key)
	if i < 0 {
		return false
	}
	l.entries = append(l.entries[:i], l.entries[i+1:]...)
	return true
}

func (l *LocalList[T]) index(key string) int {
	for i, e := range l.entries {
		if e.Key == key {
			return i
		}
	}
	return -1
}
