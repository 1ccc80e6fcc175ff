// Package app wires the article subsystems together from a loaded
// configuration and owns their lifecycle.
package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/zappabad/newsdesk/internal/config"
	"github.com/zappabad/newsdesk/internal/i18n"
	"github.com/zappabad/newsdesk/internal/logger"
	"github.com/zappabad/newsdesk/internal/news/cache"
	"github.com/zappabad/newsdesk/internal/news/client"
	newsservice "github.com/zappabad/newsdesk/internal/news/service"
	"github.com/zappabad/newsdesk/internal/route"
)

// App owns the backend client, the query cache and the news service.
type App struct {
	Client *client.Client
	Cache  *cache.Cache
	News   *newsservice.NewsService

	Dictionary i18n.Dictionary
	Route      route.Location

	cfg    *config.Config
	mu     sync.Mutex
	closed bool
}

// New creates an App from cfg. The cache store is the first configured of
// redis, postgres and a local sqlite file; with none the cache is memory only.
func New(cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	loc, err := route.Parse(cfg.UI.Route)
	if err != nil {
		return nil, fmt.Errorf("parse ui.route: %w", err)
	}

	var store cache.Store
	switch {
	case cfg.Cache.RedisAddr != "":
		store = cache.NewRedisStore(cfg.Cache.RedisAddr, cfg.Cache.RedisExpiry)
	case cfg.Cache.PostgresDSN != "":
		ctx, cancel := context.WithTimeout(context.Background(), cfg.API.Timeout)
		s, err := cache.OpenPostgres(ctx, cfg.Cache.PostgresDSN)
		cancel()
		if err != nil {
			return nil, err
		}
		store = s
	case cfg.Cache.Path != "":
		s, err := cache.OpenSQLite(cfg.Cache.Path)
		if err != nil {
			return nil, err
		}
		logger.L.Debugw("sqlite cache opened", "path", s.Path())
		store = s
	}

	a := &App{
		cfg:        cfg,
		Dictionary: i18n.Lookup(cfg.UI.Language),
		Route:      loc,
	}

	a.Client = client.New(client.Config{
		BaseURL: cfg.API.BaseURL,
		Token:   cfg.API.Token,
		Timeout: cfg.API.Timeout,
	}, logger.Named("client"))

	a.Cache = cache.New(cache.Config{TTL: cfg.Cache.TTL}, store, logger.Named("cache"))

	a.News = newsservice.NewNewsService(newsservice.DefaultConfig(), a.Client, a.Cache, logger.Named("news"))

	logger.L.Infow("app ready",
		"base_url", cfg.API.BaseURL,
		"route", loc.String(),
		"language", a.Dictionary.Code,
		"persistent_cache", store != nil,
	)
	return a, nil
}

// Config returns the configuration the App was built from.
func (a *App) Config() *config.Config {
	return a.cfg
}

// Close shuts down all subsystems in reverse dependency order.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true

	// Stop queries first so nothing writes to the cache while it closes
	a.News.Close()

	return a.Cache.Close()
}
