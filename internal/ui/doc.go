// Package ui provides the Bubble Tea dashboard for Bodega.
//
// # Layout
//
// The screen is a header, a tab bar, an optional banner, the body and a
// footer:
//
//   - Header: connectivity badge (Sin verificar, Verificando…, Conectado,
//     Sin conexión), the last probe detail and its time
//   - Tabs: one per Resource plus the data source badge of the active one
//     (live or local-fallback)
//   - Banner: fallback notice with the dataset version, unrecognized format
//     warning, the "servicio no disponible" notice, pending change count
//   - Body: a bubbles table, or the log viewport
//
// # Data Flow
//
// The model never talks to the network itself. Each Resource wraps a
// fallback.Controller; loads and syncs run as tea.Cmd functions and come back
// as messages. Connectivity is read from state.Store on every tick, which the
// app poller keeps current. Going from Sin conexión to Conectado reloads the
// active tab.
//
// Writes act on the selected row through a one-line prompt. A write the
// remote could not take is kept in the local list and the tab is redrawn from
// it with the pending mark; s replays it later. Bundled rows refuse writes.
//
// # Key Bindings
//
//   - tab / shift+tab: switch resource
//   - j/k: move through rows
//   - r: probe connectivity now
//   - R: reload the active tab
//   - e: rename the selected row
//   - n: new record from the selected one
//   - d: delete the selected row, after confirmation
//   - s: replay pending changes
//   - l: log view, f cycles its minimum level
//   - T: cycle theme (persisted in prefs)
//   - h or ?: help overlay
//   - esc: back to the table
//   - q or Ctrl+C: exit
package ui
