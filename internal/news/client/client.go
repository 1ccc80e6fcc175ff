package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zappabad/newsdesk/internal/news"
	"go.uber.org/zap"
)

const (
	MarketNewsPath   = "/admin/news/market-news"
	DeepResearchPath = "/admin/news/deep-research"
)

// ErrStatus is returned for non-2xx backend responses.
var ErrStatus = errors.New("unexpected status")

// Config holds configuration for the backend client.
type Config struct {
	// BaseURL is the backend origin, e.g. "https://api.example.com".
	BaseURL string
	// Token is sent as a bearer token when set.
	Token string
	// Timeout bounds each request.
	Timeout time.Duration
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:8080",
		Timeout: 10 * time.Second,
	}
}

// Client reads news lists from the backend.
type Client struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger
}

// New creates a Client. A nil logger disables logging.
func New(cfg Config, log *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfig().BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log,
	}
}

// MarketNews fetches market news, filtered by symbol when it is not empty.
func (c *Client) MarketNews(ctx context.Context, symbol string) ([]news.MarketNewsItem, error) {
	var env news.Envelope[news.MarketNewsItem]
	if err := c.get(ctx, MarketNewsPath, symbol, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// DeepResearch fetches deep research items, filtered by symbol when it is not empty.
func (c *Client) DeepResearch(ctx context.Context, symbol string) ([]news.DeepResearchItem, error) {
	var env news.Envelope[news.DeepResearchItem]
	if err := c.get(ctx, DeepResearchPath, symbol, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// URL builds the request URL for path and symbol.
func (c *Client) URL(path, symbol string) string {
	u := c.cfg.BaseURL + path
	if symbol != "" {
		u += "?" + url.Values{"symbol": []string{symbol}}.Encode()
	}
	return u
}

func (c *Client) get(ctx context.Context, path, symbol string, out any) error {
	u := c.URL(path, symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	c.log.Debug("backend response",
		zap.String("url", u),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("get %s: %w: %d", path, ErrStatus, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
