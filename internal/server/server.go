// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the chat proxy and the catalog engine over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/portfolio-engine/internal/catalog"
	"github.com/pdiddy/portfolio-engine/internal/chat"
	"github.com/pdiddy/portfolio-engine/pkg/types"
)

// Defaults for ServerConfig fields left empty.
const (
	DefaultAddr            = ":8080"
	DefaultAllowedHeaders  = "authorization, x-client-info, apikey, content-type"
	DefaultShutdownTimeout = 10 * time.Second
)

// edgePrefix mirrors the chat routes under the hosted edge-function path.
const edgePrefix = "/functions/v1"

// Server holds the handlers' dependencies.
type Server struct {
	proxy   *chat.Proxy
	library *catalog.Library
	cfg     types.ServerConfig
	logger  *zap.Logger
}

// New returns a Server. A nil logger discards output.
func New(proxy *chat.Proxy, library *catalog.Library, cfg types.ServerConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.AllowedHeaders == "" {
		cfg.AllowedHeaders = DefaultAllowedHeaders
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	return &Server{proxy: proxy, library: library, cfg: cfg, logger: logger}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog(s.logger), cors(s.cfg.AllowedHeaders))

	for _, prefix := range []string{"", edgePrefix} {
		r.POST(prefix+"/research-assistant", s.handleResearch)
		r.POST(prefix+"/paper-chat", s.handlePaperChat)
	}

	api := r.Group("/api")
	api.GET("/health", handleHealth)
	api.GET("/catalogs", s.handleCatalogNames)
	api.GET("/catalogs/:name", s.handleCatalog)
	return r
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully within ShutdownTimeout. A listen failure ends Run with
// that error.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", zap.String("addr", s.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listening on %s: %w", s.cfg.Addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
