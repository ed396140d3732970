package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the dashboard.
type keyMap struct {
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	NextTab    key.Binding
	PrevTab    key.Binding
	Escape     key.Binding

	Refresh  key.Binding
	Reload   key.Binding
	Sync     key.Binding
	Logs     key.Binding
	LogLevel key.Binding

	Delete    key.Binding
	Rename    key.Binding
	Duplicate key.Binding

	Up   key.Binding
	Down key.Binding
}

// defaultKeyMap returns the default key bindings.
func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "salir"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "ayuda"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "cambiar tema"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab", "right"),
			key.WithHelp("tab", "siguiente pestaña"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab", "left"),
			key.WithHelp("shift+tab", "pestaña anterior"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "volver a la tabla"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "verificar conexión"),
		),
		Reload: key.NewBinding(
			key.WithKeys("R", "ctrl+r"),
			key.WithHelp("R", "recargar datos"),
		),
		Sync: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sincronizar pendientes"),
		),
		Logs: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "registro"),
		),
		LogLevel: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "nivel del registro"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "eliminar registro"),
		),
		Rename: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "editar nombre"),
		),
		Duplicate: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "nuevo a partir del seleccionado"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "subir"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "bajar"),
		),
	}
}

// ShortHelp returns key bindings for the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.Refresh, k.Sync, k.Logs, k.Help, k.Quit}
}

// FullHelp returns key bindings for the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTab, k.PrevTab, k.Up, k.Down, k.Escape},
		{k.Refresh, k.Reload, k.Sync, k.Rename, k.Duplicate, k.Delete, k.Logs, k.LogLevel},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
