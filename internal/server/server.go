// internal/server/server.go
// Package server exposes the dictionary and chat HTTP API.
package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/koshalabs/kosha/internal/appconfig"
	"github.com/koshalabs/kosha/internal/logging"
	"github.com/koshalabs/kosha/internal/providers"
	"github.com/koshalabs/kosha/internal/store"
)

// Dictionary is the store surface the handlers need.
type Dictionary interface {
	Search(query string, limit, offset int) ([]store.Entry, int, error)
	GetByHeadword(headword string) (*store.Entry, error)
}

// Server wires the dictionary store and the optional chat provider into an
// http.Handler. Provider is nil when the LLM feature is disabled; that state
// is fixed at startup and never changed by requests.
type Server struct {
	cfg      *appconfig.Config
	dict     Dictionary
	provider providers.ChatProvider
}

// New constructs a Server. provider may be nil when llm.enabled is false.
func New(cfg *appconfig.Config, dict Dictionary, provider providers.ChatProvider) *Server {
	return &Server{cfg: cfg, dict: dict, provider: provider}
}

// Handler returns the routed handler with logging and CORS middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("GET /dictionary", s.handleDictionary)
	mux.HandleFunc("GET /dictionary/{headword}", s.handleEntry)

	return logRequests(withCORS(mux))
}

// ListenAndServe runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully within the configured timeout.
func (s *Server) ListenAndServe() error {
	addr := s.cfg.Server.Address
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      2 * s.cfg.RequestTimeout(),
		IdleTimeout:       60 * time.Second,
	}

	shutdownErr := make(chan error, 1)
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logging.LogEvent("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout())
		defer cancel()
		shutdownErr <- srv.Shutdown(ctx)
	}()

	logging.LogEvent("listening on %s (llm_enabled=%t)", srv.Addr, s.cfg.LLM.Enabled)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return <-shutdownErr
}
