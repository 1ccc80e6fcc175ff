package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zappabad/newsdesk/internal/i18n"
	newsview "github.com/zappabad/newsdesk/internal/news/view"
	"github.com/zappabad/newsdesk/internal/route"
	"github.com/zappabad/newsdesk/tui/panels"
	"github.com/zappabad/newsdesk/tui/styles"
)

// PanelFocus represents which panel is currently focused.
type PanelFocus int

const (
	FocusArticles PanelFocus = 0
	FocusSearch   PanelFocus = 1
)

// ArticleSource is the part of the news service the UI needs.
type ArticleSource interface {
	Load(loc route.Location) (uint64, error)
	Refresh(loc route.Location) (uint64, error)
	Snapshot() newsview.Snapshot
	Events() <-chan newsview.QueryEvent
}

// Options configures the model.
type Options struct {
	Location        route.Location
	Dictionary      i18n.Dictionary
	TimeZone        *time.Location
	RefreshInterval time.Duration
	Watchlist       []string
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Model is the main TUI application model.
type Model struct {
	source ArticleSource
	opts   Options

	loc route.Location

	// Panels
	articlesPanel *panels.ArticlesPanel
	searchPanel   *panels.SearchPanel
	help          help.Model

	focusedPanel PanelFocus

	// Window dimensions
	width  int
	height int

	// Status
	statusMsg string
	ready     bool
}

// NewModel creates a new TUI model.
func NewModel(source ArticleSource, opts Options) *Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location.Path == "" {
		opts.Location = route.Home()
	}

	search := panels.NewSearchPanel(opts.Watchlist)
	search.SetValue(opts.Location.Symbol())

	return &Model{
		source:        source,
		opts:          opts,
		loc:           opts.Location,
		articlesPanel: panels.NewArticlesPanel(),
		searchPanel:   search,
		help:          help.New(),
		focusedPanel:  FocusArticles,
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.articlesPanel.Init(),
		m.searchPanel.Init(),
		m.load(m.loc, false),
		m.listenNewsEvents(),
		m.tickRefresh(),
	)
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.focusedPanel == FocusArticles {
				return m, tea.Quit
			}
		case "tab", "shift+tab":
			m.cycleFocus()
			return m, nil
		case "/":
			if m.focusedPanel == FocusArticles {
				m.setFocus(FocusSearch)
				return m, nil
			}
		case "r":
			if m.focusedPanel == FocusArticles {
				m.statusMsg = "Refreshing..."
				return m, m.load(m.loc, true)
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true

	case NewsEventMsg:
		m.rebuildPage()
		cmds = append(cmds, m.listenNewsEvents())

	case panels.NavigateMsg:
		m.loc = msg.Location
		m.searchPanel.SetValue(msg.Location.Symbol())
		m.setFocus(FocusArticles)
		m.statusMsg = "Route " + msg.Location.String()
		cmds = append(cmds, m.load(msg.Location, false))

	case panels.OpenLinkMsg:
		if msg.Card.External {
			m.statusMsg = "Open " + msg.Card.Link
		} else {
			m.statusMsg = "Go to " + msg.Card.Link
		}

	case loadErrMsg:
		m.statusMsg = "Load failed: " + msg.err.Error()

	case tickMsg:
		cmds = append(cmds, m.load(m.loc, true), m.tickRefresh())
	}

	m.updateFocusedPanel(msg, &cmds)

	return m, tea.Batch(cmds...)
}

func (m *Model) updateFocusedPanel(msg tea.Msg, cmds *[]tea.Cmd) {
	var cmd tea.Cmd

	switch m.focusedPanel {
	case FocusArticles:
		m.articlesPanel, cmd = m.articlesPanel.Update(msg)
	case FocusSearch:
		m.searchPanel, cmd = m.searchPanel.Update(msg)
	}

	if cmd != nil {
		*cmds = append(*cmds, cmd)
	}
}

func (m *Model) rebuildPage() {
	page := newsview.BuildPage(m.source.Snapshot(), m.loc, m.opts.Dictionary, newsview.Options{
		Now:      m.opts.Now(),
		Location: m.opts.TimeZone,
	})
	m.articlesPanel.SetPage(page)
}

// View renders the UI.
func (m *Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	m.articlesPanel.SetFocus(m.focusedPanel == FocusArticles)
	m.searchPanel.SetFocus(m.focusedPanel == FocusSearch)

	// Layout:
	// ┌──────────────────────────────────────┐
	// │ Symbol [search]          route        │
	// ├──────────────────────────────────────┤
	// │            Latest Articles            │
	// └──────────────────────────────────────┘
	header := m.renderHeader()
	statusBar := m.renderStatusBar()

	m.articlesPanel.SetSize(m.width, m.height-lipgloss.Height(header)-lipgloss.Height(statusBar))

	return lipgloss.JoinVertical(lipgloss.Left, header, m.articlesPanel.View(), statusBar)
}

func (m *Model) renderHeader() string {
	m.searchPanel.SetSize(m.width / 2)
	search := m.searchPanel.View()
	loc := styles.StatusBarDescStyle.Render(m.loc.String())
	gap := m.width - lipgloss.Width(search) - lipgloss.Width(loc) - 1
	if gap < 1 {
		gap = 1
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, search, lipgloss.NewStyle().Width(gap).Render(""), loc)
}

func (m *Model) renderStatusBar() string {
	helpStr := m.help.ShortHelpView(append(m.articlesPanel.Keys().ShortHelp(),
		key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	))

	status := ""
	if m.statusMsg != "" {
		status = " │ " + m.statusMsg
	}

	return styles.StatusBarStyle.Width(m.width).Render(helpStr + status)
}

func (m *Model) setFocus(panel PanelFocus) {
	m.focusedPanel = panel
}

func (m *Model) cycleFocus() {
	m.focusedPanel = (m.focusedPanel + 1) % 2
}

// Location returns the current route.
func (m *Model) Location() route.Location {
	return m.loc
}

// Page returns the page currently rendered.
func (m *Model) Page() newsview.Page {
	return m.articlesPanel.Page()
}

// Status returns the status bar message.
func (m *Model) Status() string {
	return m.statusMsg
}

func (m *Model) load(loc route.Location, refresh bool) tea.Cmd {
	return func() tea.Msg {
		var err error
		if refresh {
			_, err = m.source.Refresh(loc)
		} else {
			_, err = m.source.Load(loc)
		}
		if err != nil {
			return loadErrMsg{err: err}
		}
		return nil
	}
}

func (m *Model) listenNewsEvents() tea.Cmd {
	return func() tea.Msg {
		events := m.source.Events()
		ev, ok := <-events
		if !ok {
			return nil
		}
		return NewsEventMsg(ev)
	}
}

// tickMsg is sent periodically to refresh data.
type tickMsg struct{}

func (m *Model) tickRefresh() tea.Cmd {
	if m.opts.RefreshInterval <= 0 {
		return nil
	}
	return tea.Tick(m.opts.RefreshInterval, func(t time.Time) tea.Msg {
		return tickMsg{}
	})
}

type loadErrMsg struct {
	err error
}

// NewsEventMsg wraps a service event for the update loop.
type NewsEventMsg newsview.QueryEvent
