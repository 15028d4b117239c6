package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"glow-hq/glow/pkg/api/handlers"
	"glow-hq/glow/pkg/api/middleware"
	"glow-hq/glow/pkg/config"
	"glow-hq/glow/pkg/keystore"
	"glow-hq/glow/pkg/security/authz"
	"glow-hq/glow/pkg/wallet"
)

// Server is the glow HTTP API server.
type Server struct {
	config       *config.ServerConfig
	metricsCfg   *config.MetricsConfig
	auth         *authz.Authorizer
	keys         *keystore.Store
	wallet       wallet.Wallet
	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a server. It does not start listening; call Start.
func NewServer(cfg *config.ServerConfig, metricsCfg *config.MetricsConfig, auth *authz.Authorizer, keys *keystore.Store, w wallet.Wallet) *Server {
	return &Server{
		config:       cfg,
		metricsCfg:   metricsCfg,
		auth:         auth,
		keys:         keys,
		wallet:       w,
		shutdownChan: make(chan struct{}),
	}
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:           s.config.ListenAddress,
		Handler:        s.setupRoutes(),
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting api server", "address", s.config.ListenAddress)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		slog.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server. In-flight payments get
// ShutdownTimeout to settle their reservations before the listener is
// forced closed.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		slog.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("api server stopped")
	})

	return shutdownErr
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/health", handlers.NewHealthHandler(s.wallet))
	mux.Handle("/balance", handlers.NewBalanceHandler(s.auth, s.wallet))
	mux.Handle("/receive", handlers.NewReceiveHandler(s.auth, s.wallet))
	mux.Handle("/send", handlers.NewSendHandler(s.auth, s.wallet))

	keysHandler := handlers.NewKeysHandler(s.auth, s.keys)
	mux.Handle("/keys", keysHandler)
	mux.Handle("/keys/", keysHandler)

	if s.metricsCfg != nil && s.metricsCfg.Enabled {
		mux.Handle(s.metricsCfg.Path, promhttp.Handler())
	}

	var handler http.Handler = mux

	// Innermost first: timeout, then request ID, logging, and
	// recovery outermost.
	handler = middleware.Timeout(s.config.WriteTimeout)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Logging(handler)
	handler = middleware.Recovery(handler)

	return handler
}

// Handler returns the configured HTTP handler. Used by tests.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// IsRunning reports whether the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}
