package mockapi

import (
	"context"
	"fmt"
	"hash/fnv"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/kennygrant/sanitize"
	"github.com/mmcdole/gofeed"
	"github.com/zappabad/newsdesk/internal/news"
	"go.uber.org/zap"
)

const (
	defaultFeedTimeout = 10 * time.Second
	maxFeedItems       = 30
	maxSummaryLen      = 280
)

// FeedImporter turns RSS/Atom entries into market news items.
type FeedImporter struct {
	parser  *gofeed.Parser
	client  *http.Client
	symbols []symbolMatcher
	log     *zap.Logger
}

type symbolMatcher struct {
	symbol string
	re     *regexp.Regexp
}

// NewFeedImporter creates an importer. symbols are matched against entry
// titles to fill the related field.
func NewFeedImporter(symbols []string, log *zap.Logger) *FeedImporter {
	if log == nil {
		log = zap.NewNop()
	}
	matchers := make([]symbolMatcher, 0, len(symbols))
	for _, sym := range symbols {
		matchers = append(matchers, symbolMatcher{
			symbol: sym,
			re:     regexp.MustCompile(`\b` + regexp.QuoteMeta(strings.ToUpper(sym)) + `\b`),
		})
	}
	return &FeedImporter{
		parser:  gofeed.NewParser(),
		client:  &http.Client{Timeout: defaultFeedTimeout},
		symbols: matchers,
		log:     log,
	}
}

// Fetch downloads and converts one feed.
func (f *FeedImporter) Fetch(ctx context.Context, url string) ([]news.MarketNewsItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "newsdesk-mockapi/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	feed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", url, err)
	}
	return f.convert(feed), nil
}

// Import fetches every url into catalog, oldest entries first so the newest
// end up at the front. Failing feeds are logged and skipped.
func (f *FeedImporter) Import(ctx context.Context, catalog *Catalog, urls []string) int {
	total := 0
	for _, url := range urls {
		items, err := f.Fetch(ctx, url)
		if err != nil {
			f.log.Warn("import feed", zap.String("url", url), zap.Error(err))
			continue
		}
		for i := len(items) - 1; i >= 0; i-- {
			catalog.PublishMarketNews(items[i])
		}
		total += len(items)
		f.log.Info("imported feed", zap.String("url", url), zap.Int("items", len(items)))
	}
	return total
}

func (f *FeedImporter) convert(feed *gofeed.Feed) []news.MarketNewsItem {
	n := len(feed.Items)
	if n > maxFeedItems {
		n = maxFeedItems
	}

	source := strings.TrimSpace(feed.Title)
	items := make([]news.MarketNewsItem, 0, n)
	for _, it := range feed.Items[:n] {
		summary := it.Description
		if summary == "" {
			summary = it.Content
		}

		published := time.Now()
		if it.PublishedParsed != nil {
			published = *it.PublishedParsed
		} else if it.UpdatedParsed != nil {
			published = *it.UpdatedParsed
		}

		image := ""
		if it.Image != nil {
			image = it.Image.URL
		}

		category := "general"
		if len(it.Categories) > 0 {
			category = strings.ToLower(it.Categories[0])
		}

		items = append(items, news.MarketNewsItem{
			ID:       stableID(it.Link + it.GUID),
			Category: category,
			Datetime: published.Unix(),
			Headline: strings.TrimSpace(it.Title),
			Image:    image,
			Related:  f.related(it.Title),
			Source:   source,
			Summary:  truncate(stripHTML(summary), maxSummaryLen),
			URL:      it.Link,
		})
	}
	return items
}

func (f *FeedImporter) related(title string) string {
	var found []string
	upper := strings.ToUpper(title)
	for _, m := range f.symbols {
		if m.re.MatchString(upper) {
			found = append(found, m.symbol)
		}
	}
	return strings.Join(found, ",")
}

func stableID(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64() >> 1)
}

// stripHTML reduces an entry body to one line of plain text.
func stripHTML(s string) string {
	return strings.Join(strings.Fields(sanitize.HTML(s)), " ")
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
