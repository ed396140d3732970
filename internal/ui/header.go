package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/bodega/internal/fallback"
	"github.com/five82/bodega/internal/state"
)

// statusLabel returns the indicator text and badge for a status. Checking
// wins over the last resolved value.
func statusLabel(s state.ConnectionStatus) (string, string) {
	if s.Checking {
		return "Verificando…", badgeChecking
	}
	switch s.Connectivity {
	case state.Connected:
		return "Conectado", badgeConnected
	case state.Disconnected:
		return "Sin conexión", badgeDisconnected
	default:
		return "Sin verificar", badgeUnknown
	}
}

// renderHeader renders the status bar: logo, connectivity badge, the last
// probe detail and when it happened.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)

	label, badge := statusLabel(m.status)
	parts := []string{
		bg.Render("bodega", styles.Logo),
		styles.Badge(badge).Render(label),
	}
	if m.status.Detail != "" {
		parts = append(parts, bg.Render(truncate(m.status.Detail, 60), styles.MutedText))
	}
	if !m.status.LastCheckedAt.IsZero() {
		parts = append(parts, bg.Render("última verificación "+m.status.LastCheckedAt.Format("15:04:05"), styles.FaintText))
	}
	if m.baseURL != "" {
		parts = append(parts, bg.Render(truncate(m.baseURL, 40), styles.FaintText))
	}
	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

// renderTabs renders the resource tab bar with the source badge of the
// active tab.
func (m Model) renderTabs() string {
	styles := m.theme.Styles()
	tabs := make([]string, 0, len(m.tabs)+1)
	for i, t := range m.tabs {
		if i == m.active && m.view == viewTable {
			tabs = append(tabs, styles.TabActive.Render(t.res.Title))
			continue
		}
		tabs = append(tabs, styles.TabIdle.Render(t.res.Title))
	}
	if m.view == viewLogs {
		tabs = append(tabs, styles.TabActive.Render("Registro"))
	} else if t := m.current(); t != nil && t.loaded {
		src := t.data.Decision.Source
		name := badgeLive
		if src == fallback.SourceFallback {
			name = badgeFallback
		}
		tabs = append(tabs, styles.Badge(name).Render(src.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// renderBanner returns the notice line for the active tab. The dashboard
// always shows live rows, fallback rows under a banner, or an explicit
// unavailable notice.
func (m Model) renderBanner() string {
	styles := m.theme.Styles()
	t := m.current()
	if t == nil || m.view != viewTable {
		return ""
	}

	var lines []string
	if m.status.IsOffline() {
		lines = append(lines, styles.Badge(badgeDisconnected).Render(
			fmt.Sprintf("Servicio no disponible: %d verificaciones fallidas seguidas", m.status.ConsecutiveFailures)))
	}
	switch {
	case !t.loaded:
	case t.data.Err != nil:
		lines = append(lines, styles.Badge(badgeDisconnected).Render(errorNotice(t.data.Err)))
	case t.data.Decision.Source == fallback.SourceFallback:
		lines = append(lines, styles.Banner.Render(
			fmt.Sprintf("Mostrando datos locales (versión %s). Motivo: %s", m.datasetVersion, t.data.Decision.Reason)))
	case t.data.Warning != "":
		lines = append(lines, styles.Banner.Render(t.data.Warning))
	}
	if t.loaded && t.data.Pending > 0 {
		lines = append(lines, styles.Badge(badgePending).Render(
			fmt.Sprintf("%d cambios pendientes de sincronizar (s para sincronizar)", t.data.Pending)))
	}
	if m.flash != "" {
		lines = append(lines, styles.InfoText.Render(m.flash))
	}
	return strings.Join(lines, "\n")
}

// renderFooter renders the short key help.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	return styles.Footer.Width(m.width).Render(m.help.View(m.keys))
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if limit <= 1 || len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
