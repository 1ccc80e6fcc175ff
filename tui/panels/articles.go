package panels

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	newsview "github.com/zappabad/newsdesk/internal/news/view"
	"github.com/zappabad/newsdesk/tui/styles"
)

const (
	minCardWidth    = 24
	researchTitleLn = 2
)

// ArticlesPanel renders the latest-articles block: two tabs of cards.
type ArticlesPanel struct {
	page      newsview.Page
	activeTab int
	selected  int
	focused   bool
	width     int
	height    int
	keys      ArticleKeyMap
}

// NewArticlesPanel creates a new articles panel.
func NewArticlesPanel() *ArticlesPanel {
	return &ArticlesPanel{keys: DefaultArticleKeys()}
}

// Init initializes the panel.
func (p *ArticlesPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *ArticlesPanel) Update(msg tea.Msg) (*ArticlesPanel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || !p.focused || p.page.Loading {
		return p, nil
	}

	switch {
	case key.Matches(keyMsg, p.keys.PrevTab):
		p.setTab(0)
	case key.Matches(keyMsg, p.keys.NextTab):
		p.setTab(1)
	case key.Matches(keyMsg, p.keys.PrevCard):
		if p.selected > 0 {
			p.selected--
		}
	case key.Matches(keyMsg, p.keys.NextCard):
		if p.selected < len(p.cards())-1 {
			p.selected++
		}
	case key.Matches(keyMsg, p.keys.Open):
		if card, ok := p.SelectedCard(); ok {
			return p, func() tea.Msg { return OpenLinkMsg{Card: card} }
		}
	}
	return p, nil
}

func (p *ArticlesPanel) setTab(i int) {
	if i < 0 || i >= len(p.page.Tabs) || i == p.activeTab {
		return
	}
	p.activeTab = i
	p.selected = 0
}

func (p *ArticlesPanel) cards() []newsview.Card {
	if p.activeTab >= len(p.page.Tabs) {
		return nil
	}
	return p.page.Tabs[p.activeTab].Cards
}

// View renders the panel.
func (p *ArticlesPanel) View() string {
	inner := p.innerWidth()

	if p.page.Loading {
		loading := lipgloss.PlaceHorizontal(inner, lipgloss.Center, styles.LoadingStyle.Render(newsview.LoadingMessage))
		return p.frame(loading)
	}

	var content strings.Builder
	content.WriteString(styles.HeadingStyle.Render(p.page.Heading))
	content.WriteString("\n")
	content.WriteString(p.renderTabBar(inner))
	content.WriteString("\n")

	if p.activeTab < len(p.page.Tabs) {
		tab := p.page.Tabs[p.activeTab]
		switch {
		case tab.Pending && !tab.HasData():
			content.WriteString(lipgloss.PlaceHorizontal(inner, lipgloss.Center, styles.LoadingStyle.Render(newsview.LoadingMessage)))
		case !tab.HasData():
			content.WriteString(lipgloss.PlaceHorizontal(inner, lipgloss.Center, styles.EmptyStyle.Render(tab.Empty)))
		default:
			content.WriteString(p.renderCards(tab, inner))
		}
	}

	return p.frame(content.String())
}

func (p *ArticlesPanel) frame(content string) string {
	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}
	style := panelStyle.Width(p.width - 2)
	if p.height > 2 {
		style = style.Height(p.height - 2)
	}
	return style.Render(content)
}

func (p *ArticlesPanel) innerWidth() int {
	// border and padding on both sides
	w := p.width - 4
	if w < minCardWidth {
		w = minCardWidth
	}
	return w
}

func (p *ArticlesPanel) renderTabBar(width int) string {
	var tabs []string
	for i, tab := range p.page.Tabs {
		style := styles.TabStyle
		if i == p.activeTab {
			style = styles.ActiveTabStyle
		}
		tabs = append(tabs, style.Render(tab.Title))
	}
	if p.page.RTL {
		// right-to-left: first tab on the right
		for i, j := 0, len(tabs)-1; i < j; i, j = i+1, j-1 {
			tabs[i], tabs[j] = tabs[j], tabs[i]
		}
	}

	bar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	align := lipgloss.Left
	if p.page.RTL {
		align = lipgloss.Right
	}
	return styles.TabBarStyle.Render(lipgloss.PlaceHorizontal(width, align, bar))
}

func (p *ArticlesPanel) renderCards(tab newsview.Tab, width int) string {
	if len(tab.Cards) == 0 {
		return ""
	}

	perRow := len(tab.Cards)
	cardWidth := width / perRow
	if cardWidth < minCardWidth {
		perRow = 1
		cardWidth = width
	}

	rendered := make([]string, len(tab.Cards))
	for i, card := range tab.Cards {
		clamp := 0
		if tab.Value == newsview.TabDeepResearch {
			clamp = researchTitleLn
		}
		rendered[i] = renderCard(card, cardWidth, clamp, p.focused && i == p.selected)
	}

	if perRow == 1 {
		return lipgloss.JoinVertical(lipgloss.Left, rendered...)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func renderCard(card newsview.Card, width, clamp int, selected bool) string {
	style := styles.CardStyle
	if selected {
		style = styles.SelectedCardStyle
	}
	inner := width - 4
	if inner < 8 {
		inner = 8
	}

	title := lipgloss.NewStyle().Width(inner).Render(card.Title)
	if clamp > 0 {
		title = clampLines(title, clamp)
	}

	badge := styles.BadgeStyle.Render(strings.ToUpper(card.Badge))
	ts := styles.TimeStyle.Render(card.Timestamp)
	gap := inner - lipgloss.Width(ts) - lipgloss.Width(badge)
	if gap < 1 {
		gap = 1
	}
	footer := lipgloss.JoinHorizontal(lipgloss.Center, ts, strings.Repeat(" ", gap), badge)

	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.ImageStyle.Width(inner).MaxHeight(1).Render("▣ "+card.Image),
		styles.CardLabelStyle.Render(card.Label),
		styles.CardTitleStyle.Render(title),
		footer,
	)
	return style.Width(width - 2).Render(body)
}

func clampLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[:n], "\n")
}

// SetFocus sets the focus state of the panel.
func (p *ArticlesPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *ArticlesPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetPage replaces the rendered page.
// A loading page keeps the tab and card selection for the next page.
func (p *ArticlesPanel) SetPage(page newsview.Page) {
	p.page = page
	if page.Loading {
		return
	}
	if p.activeTab >= len(page.Tabs) {
		p.activeTab = 0
	}
	// Reset selection if out of bounds
	if p.selected >= len(p.cards()) {
		p.selected = len(p.cards()) - 1
		if p.selected < 0 {
			p.selected = 0
		}
	}
}

// SetTab shows the tab with the given value. Unknown values are ignored.
func (p *ArticlesPanel) SetTab(value string) {
	for i, tab := range p.page.Tabs {
		if tab.Value == value {
			p.setTab(i)
			return
		}
	}
}

// Page returns the rendered page.
func (p *ArticlesPanel) Page() newsview.Page {
	return p.page
}

// ActiveTab returns the value of the visible tab, or "" while loading.
func (p *ArticlesPanel) ActiveTab() string {
	if p.activeTab < len(p.page.Tabs) {
		return p.page.Tabs[p.activeTab].Value
	}
	return ""
}

// SelectedCard returns the currently selected card.
func (p *ArticlesPanel) SelectedCard() (newsview.Card, bool) {
	cards := p.cards()
	if p.selected >= 0 && p.selected < len(cards) {
		return cards[p.selected], true
	}
	return newsview.Card{}, false
}

// Keys returns the panel bindings for help rendering.
func (p *ArticlesPanel) Keys() ArticleKeyMap {
	return p.keys
}

// OpenLinkMsg is sent when a card is opened.
type OpenLinkMsg struct {
	Card newsview.Card
}
