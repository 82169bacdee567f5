package web

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vitos/futures-trader/internal/domain"
	"github.com/vitos/futures-trader/internal/usecase"
)

// StatusProvider yields the current coordinator snapshot.
type StatusProvider interface {
	Snapshot() usecase.StatusSnapshot
}

type Server struct {
	router    *http.ServeMux
	server    *http.Server
	status    StatusProvider
	tradeRepo domain.TradeRepository
	logger    *zap.Logger
}

func NewServer(
	port int,
	status StatusProvider,
	tradeRepo domain.TradeRepository,
	logger *zap.Logger,
) *Server {
	s := &Server{
		router:    http.NewServeMux(),
		status:    status,
		tradeRepo: tradeRepo,
		logger:    logger,
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(newStatusCollectors(status)...)

	s.routes(registry)
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.router,
	}
	return s
}

func (s *Server) routes(registry *prometheus.Registry) {
	// Status
	s.router.HandleFunc("GET /status", s.handleStatus)

	// Trades
	s.router.HandleFunc("GET /trades", s.handleTrades)

	// Metrics
	s.router.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}

// Handler exposes the route table, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.logger.Info("Starting web server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
