package tui

import (
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/zappabad/newsdesk/internal/i18n"
	"github.com/zappabad/newsdesk/internal/news"
	newsview "github.com/zappabad/newsdesk/internal/news/view"
	"github.com/zappabad/newsdesk/internal/route"
	"github.com/zappabad/newsdesk/tui/panels"
)

type fakeSource struct {
	mu       sync.Mutex
	store    *newsview.Store
	events   chan newsview.QueryEvent
	loads    []string
	refreshs int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		store:  newsview.NewStore(),
		events: make(chan newsview.QueryEvent, 16),
	}
}

func (f *fakeSource) Load(loc route.Location) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads = append(f.loads, loc.String())
	return uint64(len(f.loads)), nil
}

func (f *fakeSource) Refresh(loc route.Location) (uint64, error) {
	f.mu.Lock()
	f.refreshs++
	f.mu.Unlock()
	return f.Load(loc)
}

func (f *fakeSource) Snapshot() newsview.Snapshot        { return f.store.Snapshot() }
func (f *fakeSource) Events() <-chan newsview.QueryEvent { return f.events }

func (f *fakeSource) apply(ev newsview.QueryEvent) NewsEventMsg {
	f.store.Apply(ev)
	return NewsEventMsg(ev)
}

func newTestModel(src *fakeSource, loc route.Location) *Model {
	m := NewModel(src, Options{
		Location:   loc,
		Dictionary: i18n.Lookup("en"),
		TimeZone:   time.UTC,
		Watchlist:  []string{"AAPL", "TSLA"},
		Now:        func() time.Time { return time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC) },
	})
	m.Update(tea.WindowSizeMsg{Width: 180, Height: 40})
	return m
}

func TestModelLoadingThenEmpty(t *testing.T) {
	src := newFakeSource()
	m := newTestModel(src, route.Search("AAPL"))

	m.Update(src.apply(newsview.QueryEvent{Key: news.KeyRelatedMarketNews, Generation: 1, Symbol: "AAPL", Phase: newsview.PhaseStarted}))
	if out := m.View(); !strings.Contains(out, newsview.LoadingMessage) {
		t.Fatalf("expected loading view:\n%s", out)
	}

	for _, key := range []news.QueryKey{news.KeyMarketNews, news.KeyRelatedMarketNews, news.KeyDeepResearch, news.KeyRelatedDeepResearch} {
		m.Update(src.apply(newsview.QueryEvent{Key: key, Generation: 1, Symbol: "AAPL", Phase: newsview.PhaseFinished}))
	}
	out := m.View()
	if strings.Contains(out, newsview.LoadingMessage) {
		t.Errorf("loading message should be gone:\n%s", out)
	}
	if !strings.Contains(out, newsview.NoMarketNewsMessage) {
		t.Errorf("expected empty market message:\n%s", out)
	}
}

func TestModelUsesFilteredListsOnSearch(t *testing.T) {
	src := newFakeSource()
	m := newTestModel(src, route.Search("TSLA"))

	market := make([]news.MarketNewsItem, 64)
	for i := range market {
		market[i] = news.MarketNewsItem{ID: int64(i), Headline: "tsla news", Related: "TSLA"}
	}
	m.Update(src.apply(newsview.QueryEvent{Key: news.KeyMarketNews, Generation: 1, Phase: newsview.PhaseFinished}))
	m.Update(src.apply(newsview.QueryEvent{Key: news.KeyRelatedMarketNews, Generation: 1, Symbol: "TSLA", Phase: newsview.PhaseFinished, Market: market}))

	page := m.Page()
	if len(page.Tabs) != 2 {
		t.Fatalf("expected 2 tabs, got %d", len(page.Tabs))
	}
	cards := page.Tabs[0].Cards
	if len(cards) != 3 || cards[0].Key != "60" || cards[2].Key != "62" {
		t.Errorf("unexpected market cards %+v", cards)
	}
}

func TestModelNavigate(t *testing.T) {
	src := newFakeSource()
	m := newTestModel(src, route.Home())

	_, cmd := m.Update(panels.NavigateMsg{Location: route.Search("AAPL")})
	if m.Location().Symbol() != "AAPL" || !m.Location().IsSearchResult() {
		t.Fatalf("unexpected location %s", m.Location())
	}
	runCmd(cmd)

	src.mu.Lock()
	defer src.mu.Unlock()
	if len(src.loads) == 0 || src.loads[len(src.loads)-1] != "/search-result?q=AAPL" {
		t.Errorf("expected load of search route, got %v", src.loads)
	}
}

func TestModelKeys(t *testing.T) {
	src := newFakeSource()
	m := newTestModel(src, route.Home())
	m.View()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	runCmd(cmd)
	src.mu.Lock()
	refreshs := src.refreshs
	src.mu.Unlock()
	if refreshs != 1 {
		t.Errorf("expected refresh, got %d", refreshs)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	if m.focusedPanel != FocusSearch {
		t.Fatalf("expected search focus")
	}
	m.View()

	// q types into the search box instead of quitting
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if got := m.searchPanel.Value(); got != "q" {
		t.Errorf("expected q in search box, got %q", got)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.focusedPanel != FocusArticles {
		t.Errorf("expected tab to cycle back to articles")
	}

	m.Update(panels.OpenLinkMsg{Card: newsview.Card{Link: "/news/abc"}})
	if m.Status() != "Go to /news/abc" {
		t.Errorf("unexpected status %q", m.Status())
	}
	m.Update(panels.OpenLinkMsg{Card: newsview.Card{Link: "https://cnbc.com/x", External: true}})
	if m.Status() != "Open https://cnbc.com/x" {
		t.Errorf("unexpected status %q", m.Status())
	}
}

func TestModelRefreshKeepsPage(t *testing.T) {
	src := newFakeSource()
	m := newTestModel(src, route.Search("AAPL"))

	market := make([]news.MarketNewsItem, 64)
	for i := range market {
		market[i] = news.MarketNewsItem{ID: int64(i), Headline: "aapl news", Related: "AAPL"}
	}
	for _, key := range []news.QueryKey{news.KeyMarketNews, news.KeyDeepResearch, news.KeyRelatedDeepResearch} {
		m.Update(src.apply(newsview.QueryEvent{Key: key, Generation: 1, Symbol: "AAPL", Phase: newsview.PhaseFinished}))
	}
	m.Update(src.apply(newsview.QueryEvent{Key: news.KeyRelatedMarketNews, Generation: 1, Symbol: "AAPL", Phase: newsview.PhaseFinished, Market: market}))
	m.View()
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")})

	_, cmd := m.Update(tickMsg{})
	runCmd(cmd)
	src.mu.Lock()
	refreshs := src.refreshs
	src.mu.Unlock()
	if refreshs != 1 {
		t.Fatalf("expected tick to refresh, got %d", refreshs)
	}

	m.Update(src.apply(newsview.QueryEvent{Key: news.KeyRelatedMarketNews, Generation: 2, Symbol: "AAPL", Phase: newsview.PhaseStarted}))
	page := m.Page()
	if page.Loading {
		t.Fatal("refresh with stored data must not show the loading page")
	}
	if len(page.Tabs) != 2 || len(page.Tabs[0].Cards) != 3 {
		t.Errorf("expected stored cards during refresh, got %+v", page.Tabs)
	}
	if out := m.View(); strings.Contains(out, newsview.LoadingMessage) {
		t.Errorf("unexpected loading view:\n%s", out)
	}
	if got := m.articlesPanel.ActiveTab(); got != newsview.TabDeepResearch {
		t.Errorf("expected research tab kept across refresh, got %q", got)
	}
}

// runCmd executes cmd and any batched commands, skipping blocking listeners.
func runCmd(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	select {
	case msg := <-done:
		if batch, ok := msg.(tea.BatchMsg); ok {
			for _, c := range batch {
				runCmd(c)
			}
		}
	case <-time.After(50 * time.Millisecond):
	}
}
