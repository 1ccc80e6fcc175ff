package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zappabad/newsdesk/internal/config"
	"github.com/zappabad/newsdesk/internal/logger"
	"github.com/zappabad/newsdesk/internal/mockapi"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config")
	addr := flag.String("addr", "", "listen address, overrides mock.addr")
	seed := flag.Int64("seed", 0, "random seed for generated items (0 = time based)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Mock.Addr = *addr
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	err = logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		Console:    true,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	catalog := mockapi.NewCatalog()
	catalog.Seed(cfg.Mock.MarketItems, cfg.Mock.ResearchItems, rand.New(rand.NewSource(*seed)), time.Now())

	if len(cfg.Mock.Feeds) > 0 {
		importer := mockapi.NewFeedImporter(cfg.UI.Watchlist, logger.Named("feeds"))
		n := importer.Import(ctx, catalog, cfg.Mock.Feeds)
		logger.L.Infow("imported feed items", "count", n, "feeds", len(cfg.Mock.Feeds))
	}

	market, research := catalog.Len()
	logger.L.Infow("catalog seeded", "market_news", market, "deep_research", research, "seed", *seed)

	srv := mockapi.NewServer(mockapi.Config{
		Addr:            cfg.Mock.Addr,
		PublishInterval: cfg.Mock.PublishInterval,
		Token:           cfg.API.Token,
	}, catalog, logger.Named("mockapi"))

	if err := srv.Run(ctx); err != nil {
		logger.L.Errorw("mock backend stopped", "error", err)
		os.Exit(1)
	}
}
