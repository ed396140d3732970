// Package state holds the connection status shared by the poller and the UI.
//
// # Overview
//
// Store is the one owner of ConnectionStatus. The poller writes to it and
// the UI reads Snapshot on its own tick; nothing else keeps a global "is the
// API up" flag.
//
// # Lifecycle
//
//	zero value         Connectivity=Unknown, Checking=false
//	Begin()            Checking=true (counts probes in flight)
//	Complete(result)   Connectivity=Connected|Disconnected, Detail, LastCheckedAt
//
// # Ordering
//
// Probes may overlap (a manual refresh fired mid-poll). They are not ordered:
// the last Complete call wins, whatever order the probes started in.
// Checking clears only when no probe is in flight.
//
// # Reading the Status
//
// Consumers treat Unknown and Checking as optimistic (ConnectionStatus.
// Optimistic). Only a resolved Disconnected status is a failure, and
// IsOffline applies a two-strike rule for the offline banner.
//
// Snapshot returns copies; callers may keep and mutate them freely.
package state
