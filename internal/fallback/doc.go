// Package fallback decides, per read and per write, how the dashboard
// degrades when the remote API misbehaves.
//
// Reads go through Read: a failed read renders the bundled Dataset, while a
// successful read with zero rows stays live and empty. A reachable server
// answering in an unknown shape is treated as live and empty with a warning.
//
// Writes go through a Controller. A write that fails for a connectivity
// reason (timeout, network, 5xx) is applied to the LocalList and flagged
// pending; the caller still receives a failed SubmissionResult wrapping
// ErrPendingSync. Validation failures never touch the local list. Sync
// replays pending rows once the remote is back.
//
// Bundled rows enter the LocalList as Static under "static:<id>" keys. They
// are read-only: Update and Delete refuse them with ErrStaticRow, so a view
// left on the fallback never issues a remote write for a placeholder.
package fallback
