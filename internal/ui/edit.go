package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type promptKind int

const (
	promptRename promptKind = iota + 1
	promptDuplicate
	promptDelete
)

// editPrompt is the one-line prompt shown above the footer while a write is
// being confirmed or a name typed.
type editPrompt struct {
	kind  promptKind
	key   string
	name  string
	input textinput.Model
}

type writtenMsg struct {
	idx     int
	written Written
}

// selected returns the local-list key and display name under the cursor.
func (t *tabState) selected() (string, string, bool) {
	if !t.loaded || t.data.Err != nil {
		return "", "", false
	}
	i := t.table.Cursor()
	if i < 0 || i >= len(t.data.Keys) || i >= len(t.data.Names) {
		return "", "", false
	}
	return t.data.Keys[i], t.data.Names[i], true
}

func (m Model) openPrompt(kind promptKind) (tea.Model, tea.Cmd) {
	t := m.current()
	if t == nil || m.view != viewTable {
		return m, nil
	}
	switch {
	case kind == promptRename && t.res.Rename == nil,
		kind == promptDuplicate && t.res.Duplicate == nil,
		kind == promptDelete && t.res.Delete == nil:
		return m, nil
	}
	key, name, ok := t.selected()
	if !ok {
		m.flash = "Seleccione un registro."
		return m, nil
	}

	p := &editPrompt{kind: kind, key: key, name: name}
	if kind == promptDelete {
		m.prompt = p
		return m, nil
	}
	ti := textinput.New()
	ti.Prompt = "Nombre: "
	ti.CharLimit = 120
	ti.Width = 40
	if kind == promptRename {
		ti.SetValue(name)
	} else {
		ti.Placeholder = name
	}
	ti.Focus()
	p.input = ti
	m.prompt = p
	return m, textinput.Blink
}

// handlePromptKey owns the keyboard while a prompt is open.
func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.prompt
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		m.prompt = nil
		m.flash = "Operación cancelada."
		return m, nil
	case tea.KeyEnter:
		m.prompt = nil
		return m.submitPrompt(p)
	}
	if p.kind == promptDelete {
		return m, nil
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return m, cmd
}

func (m Model) submitPrompt(p *editPrompt) (tea.Model, tea.Cmd) {
	t := m.current()
	if t == nil {
		return m, nil
	}
	res := t.res
	key := p.key
	if p.kind == promptDelete {
		m.flash = "Eliminando " + p.name + "…"
		return m, m.writeCmd(m.active, func(ctx context.Context) Written {
			return res.Delete(ctx, key)
		})
	}

	name := strings.TrimSpace(p.input.Value())
	if name == "" {
		m.flash = "El nombre no puede estar vacío."
		return m, nil
	}
	m.flash = "Guardando…"
	if p.kind == promptRename {
		return m, m.writeCmd(m.active, func(ctx context.Context) Written {
			return res.Rename(ctx, key, name)
		})
	}
	return m, m.writeCmd(m.active, func(ctx context.Context) Written {
		return res.Duplicate(ctx, key, name)
	})
}

func (m Model) writeCmd(idx int, fn func(ctx context.Context) Written) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, loadTimeout)
		defer cancel()
		return writtenMsg{idx: idx, written: fn(ctx)}
	}
}

// applyWritten shows the write outcome and redraws the tab from its local
// list, so a change kept locally appears at once with its pending mark.
func (m *Model) applyWritten(msg writtenMsg) {
	m.flash = msg.written.Message
	if msg.idx < 0 || msg.idx >= len(m.tabs) {
		return
	}
	t := m.tabs[msg.idx]
	if t.res.Snapshot == nil {
		return
	}
	t.data = t.res.Snapshot()
	t.loaded = true
	t.table.SetRows(t.data.Rows)
	if n := len(t.data.Rows); t.table.Cursor() >= n {
		t.table.SetCursor(max(n-1, 0))
	}
}

func (m Model) renderPrompt() string {
	if m.prompt == nil {
		return ""
	}
	styles := m.theme.Styles()
	hint := styles.FaintText.Render("  enter confirma · esc cancela")
	switch m.prompt.kind {
	case promptDelete:
		return styles.WarningText.Render("¿Eliminar «"+m.prompt.name+"»?") + hint
	case promptDuplicate:
		return styles.AccentText.Render("Nuevo a partir de «"+m.prompt.name+"»  ") + m.prompt.input.View() + hint
	default:
		return styles.AccentText.Render("Editar  ") + m.prompt.input.View() + hint
	}
}
