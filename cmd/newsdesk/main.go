package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/zappabad/newsdesk/internal/app"
	"github.com/zappabad/newsdesk/internal/config"
	"github.com/zappabad/newsdesk/internal/logger"
	"github.com/zappabad/newsdesk/internal/news"
	newsview "github.com/zappabad/newsdesk/internal/news/view"
	"github.com/zappabad/newsdesk/tui"
	"github.com/zappabad/newsdesk/tui/panels"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config")
	routeFlag := flag.String("route", "", "initial route, e.g. /search-result?q=AAPL")
	once := flag.Bool("once", false, "load once, print the articles and exit")
	width := flag.Int("width", 120, "render width for -once")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *routeFlag != "" {
		cfg.UI.Route = *routeFlag
	}

	// The alt screen owns stderr, so the TUI only logs when a file is set.
	if *once || cfg.Log.File != "" {
		err := logger.Init(logger.Config{
			Level:      cfg.Log.Level,
			File:       cfg.Log.File,
			MaxSize:    cfg.Log.MaxSize,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAge:     cfg.Log.MaxAge,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
			os.Exit(1)
		}
	}
	defer logger.Sync()

	a, err := app.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	if *once {
		if err := printOnce(a, *width); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	model := tui.NewModel(a.News, tui.Options{
		Location:        a.Route,
		Dictionary:      a.Dictionary,
		TimeZone:        time.Local,
		RefreshInterval: cfg.UI.RefreshInterval,
		Watchlist:       cfg.UI.Watchlist,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

// printOnce waits until every query of one load has finished and prints the
// rendered articles block.
func printOnce(a *app.App, width int) error {
	gen, err := a.News.Load(a.Route)
	if err != nil {
		return err
	}

	pending := map[news.QueryKey]bool{
		news.KeyMarketNews:          true,
		news.KeyRelatedMarketNews:   true,
		news.KeyDeepResearch:        true,
		news.KeyRelatedDeepResearch: true,
	}
	timeout := time.After(a.Config().API.Timeout + 5*time.Second)
	for len(pending) > 0 {
		select {
		case ev, ok := <-a.News.Events():
			if !ok {
				return fmt.Errorf("news service closed")
			}
			if ev.Generation == gen && ev.Phase == newsview.PhaseFinished {
				delete(pending, ev.Key)
			}
		case <-timeout:
			return fmt.Errorf("timed out waiting for %d queries", len(pending))
		}
	}

	page := newsview.BuildPage(a.News.Snapshot(), a.Route, a.Dictionary, newsview.Options{
		Now:      time.Now(),
		Location: time.Local,
	})

	for _, tab := range []string{newsview.TabMarketNews, newsview.TabDeepResearch} {
		panel := panels.NewArticlesPanel()
		panel.SetSize(width, 20)
		panel.SetPage(page)
		panel.SetTab(tab)
		fmt.Println(panel.View())
	}
	return nil
}
