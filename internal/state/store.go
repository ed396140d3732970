package state

import (
	"slices"
	"sync"
	"time"

	"github.com/five82/bodega/internal/probe"
)

// Connectivity is the tri-state connection flag. Unknown means never checked.
type Connectivity int

const (
	Unknown Connectivity = iota
	Connected
	Disconnected
)

func (c Connectivity) String() string {
	switch c {
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// ConnectionStatus is the latest connectivity picture shown to the UI.
type ConnectionStatus struct {
	Connectivity  Connectivity
	Checking      bool
	LastCheckedAt time.Time // zero until the first probe resolves
	Detail        string
	Checks        []probe.Check
	// ConsecutiveFailures counts disconnected results since the last
	// connected one.
	ConsecutiveFailures int
	// Version increases on every change so readers can skip re-rendering.
	Version uint64
}

// IsOffline returns true when the API has been unreachable for multiple probes.
func (s ConnectionStatus) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Optimistic reports whether consumers may behave as if the API is up. An
// unknown or still-checking status is optimistic; only a resolved
// disconnected status is not.
func (s ConnectionStatus) Optimistic() bool {
	return s.Connectivity != Disconnected
}

// Store holds the ConnectionStatus. Overlapping probes are allowed; whichever
// completes last wins, regardless of start order.
type Store struct {
	mu       sync.RWMutex
	status   ConnectionStatus
	inflight int
}

// Begin records that a probe started.
func (s *Store) Begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight++
	s.status.Checking = true
	s.status.Version++
}

// Complete records a finished probe. Checking stays true while other probes
// are still in flight.
func (s *Store) Complete(res probe.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inflight > 0 {
		s.inflight--
	}
	s.status.Checking = s.inflight > 0

	if res.Connected {
		s.status.Connectivity = Connected
		s.status.ConsecutiveFailures = 0
	} else {
		s.status.Connectivity = Disconnected
		s.status.ConsecutiveFailures++
	}
	s.status.Detail = res.Detail
	s.status.Checks = slices.Clone(res.Checks)
	s.status.LastCheckedAt = res.FinishedAt
	if s.status.LastCheckedAt.IsZero() {
		s.status.LastCheckedAt = time.Now()
	}
	s.status.Version++
}

// Abandon records that a probe ended without a result, for example because
// the poller stopped. Connectivity and failure counts are left untouched.
func (s *Store) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight > 0 {
		s.inflight--
	}
	s.status.Checking = s.inflight > 0
	s.status.Version++
}

// Snapshot returns a copy of the current status.
func (s *Store) Snapshot() ConnectionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.status
	snap.Checks = slices.Clone(s.status.Checks)
	return snap
}
