package panels

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	newsview "github.com/zappabad/newsdesk/internal/news/view"
)

func testPage() newsview.Page {
	return newsview.Page{
		Heading: "Latest Articles",
		Tabs: []newsview.Tab{
			{
				Value: newsview.TabMarketNews,
				Title: "Market News",
				Total: 70,
				Empty: newsview.NoMarketNewsMessage,
				Cards: []newsview.Card{
					{Key: "60", Title: "Sixty.....", Label: "company", Badge: "Reuters", Timestamp: "2h ago", Link: "https://a/60", External: true},
					{Key: "61", Title: "SixtyOne.....", Label: "company", Badge: "CNBC", Timestamp: "3h ago", Link: "https://a/61", External: true},
				},
			},
			{
				Value: newsview.TabDeepResearch,
				Title: "Deep Research",
				Total: 1,
				Empty: newsview.NoDeepResearchMessage,
				Cards: []newsview.Card{
					{Key: "r1", Title: "Research one", Label: "Desk", Badge: "nvda", Link: "/news/r1"},
				},
			},
		},
	}
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestArticlesPanelLoading(t *testing.T) {
	p := NewArticlesPanel()
	p.SetSize(120, 30)
	p.SetPage(newsview.Page{Loading: true, Heading: "Latest Articles"})

	out := p.View()
	if !strings.Contains(out, newsview.LoadingMessage) {
		t.Errorf("expected loading message, got:\n%s", out)
	}
	if strings.Contains(out, "Latest Articles") {
		t.Errorf("loading view must not render content")
	}
	if p.ActiveTab() != "" {
		t.Errorf("expected no active tab while loading")
	}
}

func TestArticlesPanelEmptyTabs(t *testing.T) {
	page := testPage()
	page.Tabs[0].Cards, page.Tabs[0].Total = nil, 0
	page.Tabs[1].Cards, page.Tabs[1].Total = nil, 0

	p := NewArticlesPanel()
	p.SetSize(160, 30)
	p.SetFocus(true)
	p.SetPage(page)

	if out := p.View(); !strings.Contains(out, newsview.NoMarketNewsMessage) {
		t.Errorf("expected market empty message, got:\n%s", out)
	}
	p.Update(keyPress("]"))
	if out := p.View(); !strings.Contains(out, newsview.NoDeepResearchMessage) {
		t.Errorf("expected research empty message, got:\n%s", out)
	}
}

func TestArticlesPanelPendingTab(t *testing.T) {
	page := testPage()
	page.Tabs[0].Cards, page.Tabs[0].Total, page.Tabs[0].Pending = nil, 0, true

	p := NewArticlesPanel()
	p.SetSize(160, 30)
	p.SetPage(page)

	out := p.View()
	if !strings.Contains(out, newsview.LoadingMessage) {
		t.Errorf("expected loading message in pending tab, got:\n%s", out)
	}
	if strings.Contains(out, newsview.NoMarketNewsMessage) {
		t.Errorf("pending tab must not claim there are no articles:\n%s", out)
	}
}

func TestArticlesPanelKeepsTabAcrossLoading(t *testing.T) {
	p := NewArticlesPanel()
	p.SetSize(200, 30)
	p.SetFocus(true)
	p.SetPage(testPage())
	p.SetTab(newsview.TabDeepResearch)

	p.SetPage(newsview.Page{Loading: true})
	p.SetPage(testPage())

	if p.ActiveTab() != newsview.TabDeepResearch {
		t.Errorf("expected research tab kept across a loading page, got %q", p.ActiveTab())
	}
}

func TestArticlesPanelNavigation(t *testing.T) {
	p := NewArticlesPanel()
	p.SetSize(200, 30)
	p.SetFocus(true)
	p.SetPage(testPage())

	out := p.View()
	for _, want := range []string{"Latest Articles", "Market News", "Deep Research", "Sixty.....", "SixtyOne.....", "REUTERS"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in view:\n%s", want, out)
		}
	}

	p.Update(keyPress("right"))
	p.Update(keyPress("right"))
	card, ok := p.SelectedCard()
	if !ok || card.Key != "61" {
		t.Fatalf("expected selection clamped to last card, got %+v", card)
	}

	_, cmd := p.Update(keyPress("enter"))
	if cmd == nil {
		t.Fatal("expected open command")
	}
	msg, ok := cmd().(OpenLinkMsg)
	if !ok || msg.Card.Link != "https://a/61" {
		t.Errorf("unexpected open msg %+v", msg)
	}

	p.Update(keyPress("2"))
	if p.ActiveTab() != newsview.TabDeepResearch {
		t.Fatalf("expected research tab, got %q", p.ActiveTab())
	}
	card, _ = p.SelectedCard()
	if card.Key != "r1" {
		t.Errorf("expected selection reset on tab change, got %q", card.Key)
	}
	if out := p.View(); !strings.Contains(out, "Research one") {
		t.Errorf("expected research card in view:\n%s", out)
	}
}

func TestArticlesPanelIgnoresKeysWhenBlurred(t *testing.T) {
	p := NewArticlesPanel()
	p.SetSize(200, 30)
	p.SetPage(testPage())

	p.Update(keyPress("]"))
	if p.ActiveTab() != newsview.TabMarketNews {
		t.Errorf("blurred panel must ignore keys")
	}
}

func TestArticlesPanelRTL(t *testing.T) {
	page := testPage()
	page.RTL = true

	p := NewArticlesPanel()
	p.SetSize(200, 30)
	p.SetPage(page)

	out := p.View()
	if strings.Index(out, "Deep Research") > strings.Index(out, "Market News") {
		t.Errorf("expected tabs in right-to-left order:\n%s", out)
	}
}

func TestClampLines(t *testing.T) {
	if got := clampLines("a\nb\nc", 2); got != "a\nb" {
		t.Errorf("unexpected clamp %q", got)
	}
	if got := clampLines("a", 2); got != "a" {
		t.Errorf("unexpected clamp %q", got)
	}
}

func TestArticlesPanelSetTab(t *testing.T) {
	p := NewArticlesPanel()
	p.SetPage(newsview.Page{Tabs: []newsview.Tab{
		{Value: newsview.TabMarketNews},
		{Value: newsview.TabDeepResearch},
	}})

	p.SetTab(newsview.TabDeepResearch)
	if p.ActiveTab() != newsview.TabDeepResearch {
		t.Fatalf("expected deep research tab, got %q", p.ActiveTab())
	}
	p.SetTab("unknown")
	if p.ActiveTab() != newsview.TabDeepResearch {
		t.Errorf("unknown tab should be ignored, got %q", p.ActiveTab())
	}
}
