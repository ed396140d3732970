package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/five82/bodega/internal/api"
	"github.com/five82/bodega/internal/fallback"
	"github.com/five82/bodega/internal/prefs"
	"github.com/five82/bodega/internal/service"
	"github.com/five82/bodega/internal/state"
)

type view int

const (
	viewTable view = iota
	viewLogs
)

// loadTimeout bounds one tab load so a stuck request never pins the tab in
// its loading state.
const loadTimeout = 2 * time.Minute

// Refresher triggers an out-of-band connectivity probe.
type Refresher interface {
	RefreshNow() bool
}

// Options configures the UI.
type Options struct {
	Context        context.Context
	Store          *state.Store
	Refresher      Refresher
	Resources      []Resource
	BaseURL        string
	DatasetVersion string
	LogPath        string
	PollTick       time.Duration
	ThemeName      string
	PrefsPath      string
	Tab            string
}

// tabState is the per-resource view state.
type tabState struct {
	res     Resource
	table   table.Model
	data    Loaded
	loaded  bool
	loading bool
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx            context.Context
	store          *state.Store
	refresher      Refresher
	baseURL        string
	datasetVersion string
	logPath        string
	prefsPath      string
	pollTick       time.Duration

	theme    Theme
	keys     keyMap
	help     help.Model
	view     view
	width    int
	height   int
	ready    bool
	showHelp bool

	status state.ConnectionStatus
	tabs   []*tabState
	active int
	flash  string
	prompt *editPrompt

	logViewport viewport.Model
	logLines    []string
	logErr      error
	logLevel    zerolog.Level
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = time.Second
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	m := Model{
		ctx:            ctx,
		store:          opts.Store,
		refresher:      opts.Refresher,
		baseURL:        opts.BaseURL,
		datasetVersion: opts.DatasetVersion,
		logPath:        opts.LogPath,
		prefsPath:      prefsPath,
		pollTick:       pollTick,
		theme:          GetTheme(opts.ThemeName),
		keys:           defaultKeyMap(),
		help:           help.New(),
		logLevel:       zerolog.InfoLevel,
	}
	for i, r := range opts.Resources {
		m.tabs = append(m.tabs, &tabState{res: r, table: m.newTable(r.Columns)})
		if r.Name == opts.Tab {
			m.active = i
		}
	}
	if m.store != nil {
		m.status = m.store.Snapshot()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tickCmd(m.pollTick),
	}
	if m.store != nil {
		cmds = append(cmds, fetchStatusCmd(m.store))
	}
	if m.current() != nil {
		cmds = append(cmds, m.loadCmd(m.active))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.initLogViewport()
		}
		m.ready = true
		m.resize()
		return m, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd(m.pollTick)}
		if m.store != nil {
			cmds = append(cmds, fetchStatusCmd(m.store))
		}
		if m.view == viewLogs {
			cmds = append(cmds, loadLogsCmd(m.logPath, m.logLevel))
		}
		return m, tea.Batch(cmds...)

	case statusMsg:
		return m.handleStatus(state.ConnectionStatus(msg))

	case loadedMsg:
		if msg.idx < 0 || msg.idx >= len(m.tabs) {
			return m, nil
		}
		t := m.tabs[msg.idx]
		t.loading = false
		t.loaded = true
		t.data = msg.data
		t.table.SetRows(msg.data.Rows)
		return m, nil

	case writtenMsg:
		m.applyWritten(msg)
		return m, nil

	case syncedMsg:
		r := msg.report
		m.flash = fmt.Sprintf("Sincronización: %d enviados, %d sin conexión, %d rechazados", r.Synced, r.Failed, r.Rejected)
		return m, m.loadCmd(msg.idx)

	case logsMsg:
		m.applyLogs(msg)
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Cargando..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

func (m Model) renderMain() string {
	sections := []string{m.renderHeader(), m.renderTabs()}
	if banner := m.renderBanner(); banner != "" {
		sections = append(sections, banner)
	}
	sections = append(sections, m.renderBody())
	if p := m.renderPrompt(); p != "" {
		sections = append(sections, p)
	}
	sections = append(sections, m.renderFooter())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderBody() string {
	styles := m.theme.Styles()
	if m.view == viewLogs {
		return m.logViewport.View()
	}
	t := m.current()
	switch {
	case t == nil:
		return styles.MutedText.Render("Sin recursos configurados.")
	case !t.loaded:
		return styles.MutedText.Render("Cargando " + t.res.Title + "…")
	case t.data.Err != nil:
		return ""
	case len(t.data.Rows) == 0:
		return styles.MutedText.Render("No hay registros.")
	}
	return t.table.View()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.prompt != nil {
		return m.handlePromptKey(msg)
	}
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.applyTableStyles()
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.NextTab):
		return m.switchTab(1)

	case key.Matches(msg, m.keys.PrevTab):
		return m.switchTab(-1)

	case key.Matches(msg, m.keys.Escape):
		m.view = viewTable
		m.flash = ""
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		if m.refresher != nil && m.refresher.RefreshNow() {
			m.flash = "Verificando la conexión…"
			return m, fetchStatusCmd(m.store)
		}
		m.flash = "La verificación no está disponible."
		return m, nil

	case key.Matches(msg, m.keys.Reload):
		return m, m.loadCmd(m.active)

	case key.Matches(msg, m.keys.Sync):
		return m, m.syncCmd(m.active)

	case m.view == viewTable && key.Matches(msg, m.keys.Delete):
		return m.openPrompt(promptDelete)

	case m.view == viewTable && key.Matches(msg, m.keys.Rename):
		return m.openPrompt(promptRename)

	case m.view == viewTable && key.Matches(msg, m.keys.Duplicate):
		return m.openPrompt(promptDuplicate)

	case key.Matches(msg, m.keys.Logs):
		m.view = viewLogs
		return m, loadLogsCmd(m.logPath, m.logLevel)

	case m.view == viewLogs && key.Matches(msg, m.keys.LogLevel):
		m.logLevel = nextLogLevel(m.logLevel)
		m.flash = "Nivel mínimo: " + m.logLevel.String()
		return m, loadLogsCmd(m.logPath, m.logLevel)
	}

	if m.view == viewLogs {
		var cmd tea.Cmd
		m.logViewport, cmd = m.logViewport.Update(msg)
		return m, cmd
	}
	if t := m.current(); t != nil {
		var cmd tea.Cmd
		t.table, cmd = t.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) switchTab(delta int) (tea.Model, tea.Cmd) {
	if len(m.tabs) == 0 {
		return m, nil
	}
	m.view = viewTable
	m.flash = ""
	m.active = (m.active + delta + len(m.tabs)) % len(m.tabs)
	m.savePrefs()
	if t := m.current(); !t.loaded && !t.loading {
		return m, m.loadCmd(m.active)
	}
	return m, nil
}

// handleStatus stores the new connectivity status. Coming back online
// reloads the active tab so fallback rows are replaced by live ones.
func (m Model) handleStatus(next state.ConnectionStatus) (tea.Model, tea.Cmd) {
	prev := m.status
	m.status = next
	if next.Version == prev.Version {
		return m, nil
	}
	if prev.Connectivity == state.Disconnected && next.Connectivity == state.Connected {
		m.flash = "Conexión restablecida."
		return m, m.loadCmd(m.active)
	}
	return m, nil
}

func (m Model) current() *tabState {
	if m.active < 0 || m.active >= len(m.tabs) {
		return nil
	}
	return m.tabs[m.active]
}

func (m Model) loadCmd(idx int) tea.Cmd {
	if idx < 0 || idx >= len(m.tabs) {
		return nil
	}
	t := m.tabs[idx]
	t.loading = true
	ctx := m.ctx
	load := t.res.Load
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, loadTimeout)
		defer cancel()
		return loadedMsg{idx: idx, data: load(ctx)}
	}
}

func (m Model) syncCmd(idx int) tea.Cmd {
	if idx < 0 || idx >= len(m.tabs) || m.tabs[idx].res.Sync == nil {
		return nil
	}
	ctx := m.ctx
	syncFn := m.tabs[idx].res.Sync
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, loadTimeout)
		defer cancel()
		return syncedMsg{idx: idx, report: syncFn(ctx)}
	}
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name}
	if t := m.current(); t != nil {
		p.Tab = t.res.Name
	}
	_ = prefs.Save(m.prefsPath, p)
}

func (m Model) newTable(cols []table.Column) table.Model {
	t := table.New(
		table.WithColumns(cols),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	t.SetStyles(m.tableStyles())
	return t
}

func (m Model) tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(m.theme.Border)).
		BorderBottom(true).
		Foreground(lipgloss.Color(m.theme.Accent)).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color(m.theme.SelectionText)).
		Background(lipgloss.Color(m.theme.SelectionBg)).
		Bold(false)
	s.Cell = s.Cell.Foreground(lipgloss.Color(m.theme.Text))
	return s
}

func (m *Model) applyTableStyles() {
	styles := m.tableStyles()
	for _, t := range m.tabs {
		t.table.SetStyles(styles)
	}
}

// bodyHeight is what remains after header, tab bar, banner and footer.
func (m Model) bodyHeight() int {
	h := m.height - 6
	if h < 3 {
		return 3
	}
	return h
}

func (m *Model) resize() {
	for _, t := range m.tabs {
		t.table.SetWidth(m.width)
		t.table.SetHeight(m.bodyHeight())
	}
	m.logViewport.Width = m.width
	m.logViewport.Height = m.bodyHeight()
	m.help.Width = m.width
}

// errorNotice is the banner for a read the dashboard cannot render.
func errorNotice(err error) string {
	msg := service.UserMessage(err)
	switch api.KindOf(err) {
	case api.KindUnauthenticated:
		return msg + " Ejecute: bodega login"
	case api.KindForbidden:
		return msg
	}
	return "Servicio no disponible: " + msg
}

// Messages

type tickMsg time.Time

type statusMsg state.ConnectionStatus

type loadedMsg struct {
	idx  int
	data Loaded
}

type syncedMsg struct {
	idx    int
	report fallback.SyncReport
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchStatusCmd(store *state.Store) tea.Cmd {
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		return statusMsg(store.Snapshot())
	}
}

// Run starts the Bubble Tea program. Cancelling opts.Context ends it without
// an error.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
