package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/five82/bodega/internal/logtail"
)

const logTailLimit = 500

type logsMsg struct {
	lines []string
	err   error
}

// loadLogsCmd reads the tail of the log file, warnings first when minLevel
// says so.
func loadLogsCmd(path string, minLevel zerolog.Level) tea.Cmd {
	return func() tea.Msg {
		if path == "" {
			return logsMsg{}
		}
		entries, err := logtail.Read(path, logTailLimit, minLevel)
		if err != nil {
			return logsMsg{err: err}
		}
		lines := make([]string, 0, len(entries))
		for _, e := range entries {
			lines = append(lines, e.Format())
		}
		return logsMsg{lines: lines}
	}
}

func (m *Model) initLogViewport() {
	m.logViewport = viewport.New(m.width, m.bodyHeight())
}

// applyLogs replaces the log content and keeps following the tail unless the
// operator scrolled up.
func (m *Model) applyLogs(msg logsMsg) {
	m.logErr = msg.err
	m.logLines = msg.lines
	follow := m.logViewport.AtBottom() || m.logViewport.TotalLineCount() == 0
	m.logViewport.SetContent(m.renderLogContent())
	if follow {
		m.logViewport.GotoBottom()
	}
}

func (m Model) renderLogContent() string {
	styles := m.theme.Styles()
	if m.logErr != nil {
		return styles.DangerText.Render("No se pudo leer el registro: " + m.logErr.Error())
	}
	if m.logPath == "" {
		return styles.MutedText.Render("Sin archivo de registro configurado.")
	}
	if len(m.logLines) == 0 {
		return styles.MutedText.Render("El registro está vacío.")
	}
	var b strings.Builder
	for i, line := range m.logLines {
		if i > 0 {
			b.WriteString("\n")
		}
		switch {
		case strings.Contains(line, " ERR ") || strings.Contains(line, " FTL "):
			b.WriteString(styles.DangerText.Render(line))
		case strings.Contains(line, " WRN "):
			b.WriteString(styles.WarningText.Render(line))
		default:
			b.WriteString(styles.Text.Render(line))
		}
	}
	return b.String()
}

// nextLogLevel cycles the minimum level shown in the log view.
func nextLogLevel(l zerolog.Level) zerolog.Level {
	switch l {
	case zerolog.DebugLevel:
		return zerolog.InfoLevel
	case zerolog.InfoLevel:
		return zerolog.WarnLevel
	default:
		return zerolog.DebugLevel
	}
}
