// Package mockapi serves the news endpoints from an in-memory catalog so the
// articles view can run without the real backend.
package mockapi

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/zappabad/newsdesk/internal/news"
)

// Catalog holds the served items, newest first.
type Catalog struct {
	mu       sync.RWMutex
	market   []news.MarketNewsItem
	research []news.DeepResearchItem

	idGen atomic.Int64
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	c := &Catalog{}
	c.idGen.Store(time.Now().Unix())
	return c
}

func (c *Catalog) nextID() int64 {
	return c.idGen.Add(1)
}

// PublishMarketNews prepends item. ID and Datetime are set if missing.
func (c *Catalog) PublishMarketNews(item news.MarketNewsItem) news.MarketNewsItem {
	if item.ID == 0 {
		item.ID = c.nextID()
	}
	if item.Datetime == 0 {
		item.Datetime = time.Now().Unix()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.market = append([]news.MarketNewsItem{item}, c.market...)
	return item
}

// PublishDeepResearch prepends item. ID and timestamps are set if missing.
func (c *Catalog) PublishDeepResearch(item news.DeepResearchItem) news.DeepResearchItem {
	if item.ID == "" {
		item.ID = strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	if item.CreatedAt == "" {
		item.CreatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	if item.UpdatedAt == "" {
		item.UpdatedAt = item.CreatedAt
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.research = append([]news.DeepResearchItem{item}, c.research...)
	return item
}

// MarketNews returns market news related to symbol, or all of it when symbol is empty.
func (c *Catalog) MarketNews(symbol string) []news.MarketNewsItem {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]news.MarketNewsItem, 0, len(c.market))
	for _, item := range c.market {
		if symbol == "" || relatedTo(item.Related, symbol) {
			out = append(out, item)
		}
	}
	return out
}

// DeepResearch returns research for symbol, or all of it when symbol is empty.
func (c *Catalog) DeepResearch(symbol string) []news.DeepResearchItem {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]news.DeepResearchItem, 0, len(c.research))
	for _, item := range c.research {
		if symbol == "" || strings.EqualFold(item.Symbol, symbol) {
			out = append(out, item)
		}
	}
	return out
}

// View bumps the view counter of a research item.
func (c *Catalog) View(id string) (news.DeepResearchItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.research {
		if c.research[i].ID == id {
			c.research[i].Views++
			return c.research[i], true
		}
	}
	return news.DeepResearchItem{}, false
}

// Len returns the number of market news and research items.
func (c *Catalog) Len() (market, research int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.market), len(c.research)
}

func relatedTo(related, symbol string) bool {
	for _, s := range strings.Split(related, ",") {
		if strings.EqualFold(strings.TrimSpace(s), symbol) {
			return true
		}
	}
	return false
}

var (
	seedSymbols = []string{"AAPL", "GOOGL", "MSFT", "AMZN", "TSLA", "NVDA", "META"}

	seedSources    = []string{"Reuters", "Bloomberg", "CNBC", "MarketWatch", "Yahoo"}
	seedCategories = []string{"company", "top news", "technology", "general"}

	seedHeadlines = []string{
		"Markets open higher amid positive economic data",
		"Tech sector shows strong momentum in early trading",
		"Federal Reserve signals continued focus on inflation",
		"Quarterly earnings season kicks off this week",
		"Major acquisition announced in tech sector",
		"Analyst upgrades rating on leading semiconductor company",
		"Supply chain improvements boost manufacturing outlook",
		"Consumer spending remains strong despite inflation concerns",
		"Corporate buybacks reach record levels",
		"New product launches drive optimism in retail",
		"Energy prices stabilize after recent volatility",
		"Earnings beat expectations across multiple sectors",
	}

	seedResearch = []string{
		"Margins under pressure: a look at %s's cost structure",
		"Why %s's next quarter matters more than the last",
		"%s: valuation after the rally",
		"Inside %s's capital allocation strategy",
	}
)

// Seed fills the catalog with generated items. Items are spread backwards in
// time from now, one every 20 minutes for market news and one per day for research.
func (c *Catalog) Seed(marketItems, researchItems int, rng *rand.Rand, now time.Time) {
	for i := marketItems - 1; i >= 0; i-- {
		sym := seedSymbols[rng.Intn(len(seedSymbols))]
		headline := seedHeadlines[rng.Intn(len(seedHeadlines))]
		id := c.nextID()
		c.PublishMarketNews(news.MarketNewsItem{
			ID:       id,
			Category: seedCategories[rng.Intn(len(seedCategories))],
			Datetime: now.Add(-time.Duration(i) * 20 * time.Minute).Unix(),
			Headline: fmt.Sprintf("%s: %s", sym, headline),
			Related:  sym,
			Source:   seedSources[rng.Intn(len(seedSources))],
			Summary:  headline + ".",
			URL:      fmt.Sprintf("https://news.example.com/market/%d", id),
		})
	}

	for i := researchItems - 1; i >= 0; i-- {
		sym := seedSymbols[rng.Intn(len(seedSymbols))]
		title := fmt.Sprintf(seedResearch[rng.Intn(len(seedResearch))], sym)
		created := now.Add(-time.Duration(i) * 24 * time.Hour).UTC().Format(time.RFC3339Nano)
		c.PublishDeepResearch(news.DeepResearchItem{
			Title:       title,
			Description: "Research note on " + sym + ".",
			Views:       int64(rng.Intn(5000)),
			Symbol:      sym,
			Source:      "Newsdesk Research",
			CreatedAt:   created,
			UpdatedAt:   created,
		})
	}
}

// RandomHeadline publishes one generated market headline.
func (c *Catalog) RandomHeadline(rng *rand.Rand) news.MarketNewsItem {
	sym := seedSymbols[rng.Intn(len(seedSymbols))]
	id := c.nextID()
	return c.PublishMarketNews(news.MarketNewsItem{
		ID:       id,
		Category: seedCategories[rng.Intn(len(seedCategories))],
		Headline: fmt.Sprintf("%s: %s", sym, seedHeadlines[rng.Intn(len(seedHeadlines))]),
		Related:  sym,
		Source:   seedSources[rng.Intn(len(seedSources))],
		URL:      fmt.Sprintf("https://news.example.com/market/%d", id),
	})
}
