// Package app is the composition root of Bodega.
//
// # Overview
//
// Build wires configuration, logging, the session store, the API client, the
// three domain facades with their fallback controllers and the connectivity
// prober into one Services value. The TUI (Run) and every subcommand share
// it, so a listing from the command line degrades exactly like the
// dashboard does.
//
// # Startup
//
//  1. LoadConfig reads ~/.config/bodega/config.toml and applies flag overrides
//  2. Build opens the JSON log file; the terminal belongs to the UI
//  3. The session store doubles as the client's bearer token source
//  4. Each controller is seeded with its slice of the bundled dataset
//  5. Run starts the Poller, hands everything to ui.Run and blocks
//
// # Polling
//
// Poller probes once on Start and then every poll_interval (30s by default),
// writing each result to the shared state.Store. Every probe runs in its own
// goroutine with its own deadline and none cancels another; the store keeps
// whichever completes last. RefreshNow adds a probe without moving the
// ticker. Stop cancels probes in flight and waits for all of them.
package app
