package mockapi

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zappabad/newsdesk/internal/news"
	"go.uber.org/zap"
)

// Config holds configuration for the mock server.
type Config struct {
	Addr string
	// PublishInterval adds a generated headline this often; zero disables it.
	PublishInterval time.Duration
	// Token, when set, is required as a bearer token.
	Token string
}

// Server serves the catalog over the news endpoints.
type Server struct {
	cfg     Config
	catalog *Catalog
	log     *zap.Logger
	rng     *rand.Rand
}

// NewServer creates a Server over catalog.
func NewServer(cfg Config, catalog *Catalog, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		cfg:     cfg,
		catalog: catalog,
		log:     log,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.logging())
	if s.cfg.Token != "" {
		r.Use(s.auth())
	}

	admin := r.Group("/admin/news")
	admin.GET("market-news", s.handleMarketNews)
	admin.GET("deep-research", s.handleDeepResearch)
	admin.GET("deep-research/:id", s.handleDeepResearchItem)
	return r
}

func (s *Server) handleMarketNews(c *gin.Context) {
	symbol := strings.TrimSpace(c.Query("symbol"))
	c.JSON(http.StatusOK, news.Envelope[news.MarketNewsItem]{Data: s.catalog.MarketNews(symbol)})
}

func (s *Server) handleDeepResearch(c *gin.Context) {
	symbol := strings.TrimSpace(c.Query("symbol"))
	c.JSON(http.StatusOK, news.Envelope[news.DeepResearchItem]{Data: s.catalog.DeepResearch(symbol)})
}

func (s *Server) handleDeepResearchItem(c *gin.Context) {
	item, ok := s.catalog.View(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != "Bearer "+s.cfg.Token {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

func (s *Server) logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("uri", c.Request.URL.RequestURI()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

// Run serves on cfg.Addr until ctx is cancelled, publishing generated
// headlines in the background.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	if s.cfg.PublishInterval > 0 {
		go s.runPublisher(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.log.Info("mock news backend listening", zap.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) runPublisher(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.PublishInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			item := s.catalog.RandomHeadline(s.rng)
			s.log.Info("published headline", zap.Int64("id", item.ID), zap.String("headline", item.Headline))
		}
	}
}
