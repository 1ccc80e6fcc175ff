package view

import (
	"strconv"
	"time"

	"github.com/zappabad/newsdesk/internal/i18n"
	"github.com/zappabad/newsdesk/internal/news"
	"github.com/zappabad/newsdesk/internal/route"
)

const (
	TabMarketNews   = "allstocks"
	TabDeepResearch = "deep-research"

	// MarketNewsOffset and MarketNewsLimit select the market news window [60:63].
	MarketNewsOffset  = 60
	MarketNewsLimit   = 3
	DeepResearchLimit = 3

	MarketNewsPlaceholder   = "/images/news-placeholder.png"
	DeepResearchPlaceholder = "/placeholder.svg?height=300&width=600"

	LoadingMessage           = "Loading...."
	NoMarketNewsMessage      = "No market news articles available."
	NoDeepResearchMessage    = "No deep research articles available."
	deepResearchLinkTemplate = "/news/"
)

// LoadingKey is the single query whose loading flag gates the whole page.
const LoadingKey = news.KeyRelatedMarketNews

// Card is one rendered article.
type Card struct {
	Key       string
	Image     string
	Label     string
	Title     string
	Timestamp string
	Badge     string
	Link      string
	// External is true when Link leaves the site.
	External bool
}

// Tab is one tab of the page.
type Tab struct {
	Value string
	Title string
	Cards []Card
	// Total is the length of the list the cards were sliced from.
	Total int
	// Empty is the message shown when the source list has no items.
	Empty string
	// Pending is true while the source list has never been fetched.
	Pending bool
}

// HasData reports whether the source list had any items.
func (t Tab) HasData() bool {
	return t.Total > 0
}

// Page is everything the articles block renders.
type Page struct {
	Loading bool
	Heading string
	RTL     bool
	Tabs    []Tab
}

// Options carries the clock and zone used for timestamps.
type Options struct {
	Now      time.Time
	Location *time.Location
}

// SelectTabs picks the filtered lists on the search-result page and the
// unfiltered ones everywhere else.
func SelectTabs(snap Snapshot, loc route.Location) ([]news.MarketNewsItem, []news.DeepResearchItem) {
	market, research := SelectedKeys(loc)
	return snap.MarketNews(market), snap.DeepResearch(research)
}

// SelectedKeys returns the queries feeding the two tabs on loc.
func SelectedKeys(loc route.Location) (market, research news.QueryKey) {
	if loc.IsSearchResult() {
		return news.KeyRelatedMarketNews, news.KeyRelatedDeepResearch
	}
	return news.KeyMarketNews, news.KeyDeepResearch
}

// MarketNewsWindow returns items [60:63], clamped to the list length.
func MarketNewsWindow(items []news.MarketNewsItem) []news.MarketNewsItem {
	return window(items, MarketNewsOffset, MarketNewsLimit)
}

// DeepResearchWindow returns the first three items.
func DeepResearchWindow(items []news.DeepResearchItem) []news.DeepResearchItem {
	return window(items, 0, DeepResearchLimit)
}

func window[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// BuildPage turns a snapshot into the page for loc.
func BuildPage(snap Snapshot, loc route.Location, dict i18n.Dictionary, opts Options) Page {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	page := Page{
		Loading: snap.Pending(LoadingKey),
		Heading: dict.LatestArticles,
		RTL:     dict.RTL(),
	}
	if page.Loading {
		return page
	}

	marketKey, researchKey := SelectedKeys(loc)
	market, research := snap.MarketNews(marketKey), snap.DeepResearch(researchKey)

	marketTab := Tab{
		Value:   TabMarketNews,
		Title:   dict.MarketNews,
		Total:   len(market),
		Empty:   NoMarketNewsMessage,
		Pending: !snap.Settled(marketKey),
	}
	for _, item := range MarketNewsWindow(market) {
		marketTab.Cards = append(marketTab.Cards, MarketNewsCard(item, opts.Now))
	}

	researchTab := Tab{
		Value:   TabDeepResearch,
		Title:   dict.DeepResearch,
		Total:   len(research),
		Empty:   NoDeepResearchMessage,
		Pending: !snap.Settled(researchKey),
	}
	for _, item := range DeepResearchWindow(research) {
		researchTab.Cards = append(researchTab.Cards, DeepResearchCard(item, opts.Location))
	}

	page.Tabs = []Tab{marketTab, researchTab}
	return page
}

// MarketNewsCard formats a market news item.
func MarketNewsCard(item news.MarketNewsItem, now time.Time) Card {
	image := item.Image
	if image == "" {
		image = MarketNewsPlaceholder
	}
	return Card{
		Key:       strconv.FormatInt(item.ID, 10),
		Image:     image,
		Label:     item.Category,
		Title:     TruncateHeadline(item.Headline),
		Timestamp: ShortTimeAgo(item.Datetime, now),
		Badge:     item.Source,
		Link:      item.URL,
		External:  true,
	}
}

// DeepResearchCard formats a deep research item.
func DeepResearchCard(item news.DeepResearchItem, loc *time.Location) Card {
	image := item.Image
	if image == "" {
		image = DeepResearchPlaceholder
	}
	return Card{
		Key:       item.ID,
		Image:     image,
		Label:     item.Source,
		Title:     item.Title,
		Timestamp: FormatISODate(item.CreatedAt, loc),
		Badge:     item.Symbol,
		Link:      deepResearchLinkTemplate + item.ID,
	}
}
