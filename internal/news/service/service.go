package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/zappabad/newsdesk/internal/news"
	"github.com/zappabad/newsdesk/internal/news/cache"
	newsview "github.com/zappabad/newsdesk/internal/news/view"
	"github.com/zappabad/newsdesk/internal/route"
	"go.uber.org/zap"
)

var ErrClosed = errors.New("service closed")

// Fetcher reads news lists from the backend.
type Fetcher interface {
	MarketNews(ctx context.Context, symbol string) ([]news.MarketNewsItem, error)
	DeepResearch(ctx context.Context, symbol string) ([]news.DeepResearchItem, error)
}

// NewsService runs the article queries and keeps the view store current.
type NewsService struct {
	cfg     Config
	fetcher Fetcher
	cache   *cache.Cache
	store   *newsview.Store
	log     *zap.Logger

	generation atomic.Uint64

	internalEvents chan newsview.QueryEvent
	externalEvents chan newsview.QueryEvent
	droppedEvents  atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc

	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	fetches   sync.WaitGroup
}

// NewNewsService creates a new NewsService.
func NewNewsService(cfg Config, fetcher Fetcher, c *cache.Cache, log *zap.Logger) *NewsService {
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = DefaultConfig().EventBuffer
	}
	if cfg.ExternalEventBuffer <= 0 {
		cfg.ExternalEventBuffer = DefaultConfig().ExternalEventBuffer
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultConfig().FetchTimeout
	}
	if c == nil {
		c = cache.New(cache.DefaultConfig(), nil, log)
	}
	if log == nil {
		log = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &NewsService{
		cfg:            cfg,
		fetcher:        fetcher,
		cache:          c,
		store:          newsview.NewStore(),
		log:            log,
		internalEvents: make(chan newsview.QueryEvent, cfg.EventBuffer),
		externalEvents: make(chan newsview.QueryEvent, cfg.ExternalEventBuffer),
		ctx:            ctx,
		cancel:         cancel,
		closed:         make(chan struct{}),
	}

	s.wg.Add(1)
	go s.runEventDispatcher()

	return s
}

func (s *NewsService) runEventDispatcher() {
	defer s.wg.Done()
	defer close(s.externalEvents)

	for {
		select {
		case <-s.closed:
			return
		case ev := <-s.internalEvents:
			// Always update view (authoritative)
			if !s.store.Apply(ev) {
				continue
			}

			if s.cfg.DropExternalEvents {
				select {
				case s.externalEvents <- ev:
				default:
					s.droppedEvents.Add(1)
				}
			} else {
				select {
				case s.externalEvents <- ev:
				case <-s.closed:
					return
				}
			}
		}
	}
}

func (s *NewsService) emit(ev newsview.QueryEvent) bool {
	select {
	case s.internalEvents <- ev:
		return true
	case <-s.closed:
		return false
	}
}

// Load starts the four article queries for loc and returns the load
// generation. Queries run independently and may finish in any order. The
// filtered queries are skipped and finish empty when loc has no symbol.
func (s *NewsService) Load(loc route.Location) (uint64, error) {
	select {
	case <-s.closed:
		return 0, ErrClosed
	default:
	}

	gen := s.generation.Add(1)
	symbol := loc.Symbol()

	s.log.Debug("loading articles",
		zap.Uint64("generation", gen),
		zap.String("route", loc.String()),
	)

	s.startMarket(gen, news.KeyMarketNews, "")
	s.startResearch(gen, news.KeyDeepResearch, "")

	if symbol == "" {
		s.emit(newsview.QueryEvent{Key: news.KeyRelatedMarketNews, Generation: gen, Phase: newsview.PhaseFinished})
		s.emit(newsview.QueryEvent{Key: news.KeyRelatedDeepResearch, Generation: gen, Phase: newsview.PhaseFinished})
	} else {
		s.startMarket(gen, news.KeyRelatedMarketNews, symbol)
		s.startResearch(gen, news.KeyRelatedDeepResearch, symbol)
	}
	return gen, nil
}

// Refresh marks every cached query stale and reloads loc.
func (s *NewsService) Refresh(loc route.Location) (uint64, error) {
	s.cache.InvalidateAll()
	return s.Load(loc)
}

func (s *NewsService) startMarket(gen uint64, key news.QueryKey, symbol string) {
	if !s.emit(newsview.QueryEvent{Key: key, Generation: gen, Symbol: symbol, Phase: newsview.PhaseStarted}) {
		return
	}
	s.fetches.Add(1)
	go func() {
		defer s.fetches.Done()
		ctx, cancel := context.WithTimeout(s.ctx, s.cfg.FetchTimeout)
		defer cancel()

		items, err := cache.Query(ctx, s.cache, string(key.ForSymbol(symbol)), func(ctx context.Context) ([]news.MarketNewsItem, error) {
			return s.fetcher.MarketNews(ctx, symbol)
		})
		s.logFailure(key, symbol, err)
		s.emit(newsview.QueryEvent{
			Key:        key,
			Generation: gen,
			Symbol:     symbol,
			Phase:      newsview.PhaseFinished,
			Market:     items,
			Err:        err,
		})
	}()
}

func (s *NewsService) startResearch(gen uint64, key news.QueryKey, symbol string) {
	if !s.emit(newsview.QueryEvent{Key: key, Generation: gen, Symbol: symbol, Phase: newsview.PhaseStarted}) {
		return
	}
	s.fetches.Add(1)
	go func() {
		defer s.fetches.Done()
		ctx, cancel := context.WithTimeout(s.ctx, s.cfg.FetchTimeout)
		defer cancel()

		items, err := cache.Query(ctx, s.cache, string(key.ForSymbol(symbol)), func(ctx context.Context) ([]news.DeepResearchItem, error) {
			return s.fetcher.DeepResearch(ctx, symbol)
		})
		s.logFailure(key, symbol, err)
		s.emit(newsview.QueryEvent{
			Key:        key,
			Generation: gen,
			Symbol:     symbol,
			Phase:      newsview.PhaseFinished,
			Research:   items,
			Err:        err,
		})
	}()
}

func (s *NewsService) logFailure(key news.QueryKey, symbol string, err error) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	s.log.Warn("article query failed",
		zap.String("key", string(key)),
		zap.String("symbol", symbol),
		zap.Error(err),
	)
}

// Snapshot returns a copy of the current query states.
func (s *NewsService) Snapshot() newsview.Snapshot {
	return s.store.Snapshot()
}

// Generation returns the generation of the most recent Load.
func (s *NewsService) Generation() uint64 {
	return s.generation.Load()
}

// Events returns the external events channel for subscribers.
func (s *NewsService) Events() <-chan newsview.QueryEvent {
	return s.externalEvents
}

// DroppedEvents returns the count of dropped external events.
func (s *NewsService) DroppedEvents() int64 {
	return s.droppedEvents.Load()
}

// Close cancels in-flight queries and shuts down the news service.
func (s *NewsService) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		close(s.closed)
	})
	s.fetches.Wait()
	s.wg.Wait()
}
