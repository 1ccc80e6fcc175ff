package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/zappabad/newsdesk/internal/news"
	"github.com/zappabad/newsdesk/internal/news/cache"
	"github.com/zappabad/newsdesk/internal/news/client"
	"github.com/zappabad/newsdesk/internal/route"
)

type fakeFetcher struct {
	mu       sync.Mutex
	calls    map[string]int
	market   map[string][]news.MarketNewsItem
	research map[string][]news.DeepResearchItem
	err      error
	delay    time.Duration
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		calls:    make(map[string]int),
		market:   make(map[string][]news.MarketNewsItem),
		research: make(map[string][]news.DeepResearchItem),
	}
}

func (f *fakeFetcher) record(kind, symbol string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[kind+":"+symbol]++
}

func (f *fakeFetcher) count(kind, symbol string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[kind+":"+symbol]
}

func (f *fakeFetcher) wait(ctx context.Context) error {
	if f.delay == 0 {
		return nil
	}
	select {
	case <-time.After(f.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeFetcher) MarketNews(ctx context.Context, symbol string) ([]news.MarketNewsItem, error) {
	f.record("market", symbol)
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.market[symbol], nil
}

func (f *fakeFetcher) DeepResearch(ctx context.Context, symbol string) ([]news.DeepResearchItem, error) {
	f.record("research", symbol)
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.research[symbol], nil
}

// waitIdle polls until no query of the current generation is loading.
func waitIdle(t *testing.T, svc *NewsService) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap := svc.Snapshot()
		if snap.Generation == svc.Generation() && len(snap.Queries) == 4 {
			idle := true
			for _, q := range snap.Queries {
				if q.Loading || !q.Fetched || q.Generation != snap.Generation {
					idle = false
				}
			}
			if idle {
				return
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("timed out waiting for queries to finish")
}

func TestLoadHome(t *testing.T) {
	f := newFakeFetcher()
	f.market[""] = []news.MarketNewsItem{{ID: 1}, {ID: 2}}
	f.research[""] = []news.DeepResearchItem{{ID: "a"}}

	svc := NewNewsService(DefaultConfig(), f, nil, nil)
	defer svc.Close()

	if _, err := svc.Load(route.Home()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitIdle(t, svc)

	snap := svc.Snapshot()
	if got := len(snap.MarketNews(news.KeyMarketNews)); got != 2 {
		t.Errorf("expected 2 market items, got %d", got)
	}
	if got := len(snap.DeepResearch(news.KeyDeepResearch)); got != 1 {
		t.Errorf("expected 1 research item, got %d", got)
	}
	if f.count("market", "") != 1 || f.count("research", "") != 1 {
		t.Errorf("expected one unfiltered call each, got %v", f.calls)
	}
	if len(f.calls) != 2 {
		t.Errorf("filtered queries must be skipped without a symbol, got %v", f.calls)
	}
}

func TestLoadSearchResult(t *testing.T) {
	f := newFakeFetcher()
	f.market["AAPL"] = []news.MarketNewsItem{{ID: 10, Related: "AAPL"}}
	f.research["AAPL"] = []news.DeepResearchItem{{ID: "r", Symbol: "AAPL"}}

	svc := NewNewsService(DefaultConfig(), f, nil, nil)
	defer svc.Close()

	if _, err := svc.Load(route.Search("AAPL")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitIdle(t, svc)

	snap := svc.Snapshot()
	if got := snap.MarketNews(news.KeyRelatedMarketNews); len(got) != 1 || got[0].ID != 10 {
		t.Errorf("unexpected related market news %+v", got)
	}
	if got := snap.DeepResearch(news.KeyRelatedDeepResearch); len(got) != 1 || got[0].ID != "r" {
		t.Errorf("unexpected related research %+v", got)
	}
	if snap.Queries[news.KeyRelatedMarketNews].Symbol != "AAPL" {
		t.Errorf("expected symbol recorded on state")
	}
}

func TestLoadUsesCache(t *testing.T) {
	f := newFakeFetcher()
	c := cache.New(cache.Config{TTL: time.Hour}, nil, nil)
	svc := NewNewsService(DefaultConfig(), f, c, nil)
	defer svc.Close()

	svc.Load(route.Search("TSLA"))
	waitIdle(t, svc)
	svc.Load(route.Search("TSLA"))
	waitIdle(t, svc)

	if n := f.count("market", "TSLA"); n != 1 {
		t.Errorf("expected cached second load, got %d calls", n)
	}

	svc.Refresh(route.Search("TSLA"))
	waitIdle(t, svc)
	if n := f.count("market", "TSLA"); n != 2 {
		t.Errorf("expected refresh to refetch, got %d calls", n)
	}

	// a different symbol is a different cache entry
	svc.Load(route.Search("MSFT"))
	waitIdle(t, svc)
	if n := f.count("market", "MSFT"); n != 1 {
		t.Errorf("expected MSFT fetch, got %d calls", n)
	}
}

func TestFailuresDegradeToEmpty(t *testing.T) {
	f := newFakeFetcher()
	f.err = errors.New("backend down")

	svc := NewNewsService(DefaultConfig(), f, nil, nil)
	defer svc.Close()

	svc.Load(route.Search("AAPL"))
	waitIdle(t, svc)

	snap := svc.Snapshot()
	for key, q := range snap.Queries {
		if q.Err == nil {
			t.Errorf("%s: expected recorded error", key)
		}
		if len(q.Market) != 0 || len(q.Research) != 0 {
			t.Errorf("%s: expected no data", key)
		}
	}
}

func TestEventsReportLifecycle(t *testing.T) {
	f := newFakeFetcher()
	cfg := DefaultConfig()
	cfg.DropExternalEvents = false
	svc := NewNewsService(cfg, f, nil, nil)
	defer svc.Close()

	svc.Load(route.Search("AAPL"))

	started, finished := 0, 0
	timeout := time.After(2 * time.Second)
	for started+finished < 8 {
		select {
		case ev := <-svc.Events():
			switch ev.Phase.String() {
			case "started":
				started++
			case "finished":
				finished++
			}
		case <-timeout:
			t.Fatalf("timed out: started=%d finished=%d", started, finished)
		}
	}
	if started != 4 || finished != 4 {
		t.Errorf("expected 4 started and 4 finished, got %d/%d", started, finished)
	}
}

func TestCloseCancelsInFlight(t *testing.T) {
	f := newFakeFetcher()
	f.delay = time.Hour

	svc := NewNewsService(DefaultConfig(), f, nil, nil)
	svc.Load(route.Home())

	done := make(chan struct{})
	go func() {
		svc.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not cancel in-flight fetches")
	}

	if _, err := svc.Load(route.Home()); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed after Close, got %v", err)
	}
	svc.Close()
}

func TestWithHTTPClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case client.MarketNewsPath:
			fmt.Fprintf(w, `{"data":[{"id":1,"headline":"h","related":%q}]}`, r.URL.Query().Get("symbol"))
		case client.DeepResearchPath:
			fmt.Fprint(w, `{"data":[]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	svc := NewNewsService(DefaultConfig(), client.New(client.Config{BaseURL: srv.URL}, nil), nil, nil)
	defer svc.Close()

	svc.Load(route.Search("AMZN"))
	waitIdle(t, svc)

	got := svc.Snapshot().MarketNews(news.KeyRelatedMarketNews)
	if len(got) != 1 || got[0].Related != "AMZN" {
		t.Errorf("unexpected related news %+v", got)
	}
}
