// Package httpapi exposes a dashboard session over HTTP with gin.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bnema/growth-dashboard/internal/application"
	"github.com/bnema/growth-dashboard/internal/ports"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
)

type Server struct {
	dashboard *application.Dashboard
	insights  *application.InsightService
	clock     ports.Clock
	logger    *slog.Logger
	router    *gin.Engine
}

type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(clock ports.Clock) Option {
	return func(s *Server) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewServer builds the router. insights may be nil, in which case the
// insight endpoint answers 503.
func NewServer(dashboard *application.Dashboard, insights *application.InsightService, opts ...Option) *Server {
	s := &Server{
		dashboard: dashboard,
		insights:  insights,
		clock:     ports.SystemClock{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "http")
	if s.insights == nil {
		s.insights = application.NewInsightService(nil, dashboard.Notices(), s.logger)
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestID(), accessLog(s.logger))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/snapshot", s.handleSnapshot)
		api.GET("/items/:kind", s.handleListItems)
		api.POST("/items/:kind", s.handleCreateItem)
		api.PUT("/items/:kind/:id", s.handleUpdateItem)
		api.DELETE("/items/:kind/:id", s.handleDeleteItem)
		api.POST("/batch-delete", s.handleBatchDelete)
		api.POST("/undo", s.handleUndo)
		api.POST("/redo", s.handleRedo)
		api.GET("/history", s.handleHistory)
		api.POST("/import", s.handleImport)
		api.GET("/export", s.handleExport)
		api.GET("/stats", s.handleStats)
		api.GET("/notices", s.handleNotices)
		api.POST("/insights", s.handleInsights)
	}
	s.router = router

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve listens on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	s.logger.Info("stopped")

	return nil
}
