// Package server provides the HTTP front door: a liveness endpoint and the
// secret-path Telegram webhook route.
package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Kengston/banhBao/internal/config"
)

// Server wraps the HTTP listener. The webhook route rejects requests whose
// path secret does not match the configured one, so only Telegram's calls
// (which carry the secret from the registered URL) reach the bot.
type Server struct {
	logger  *slog.Logger
	cfg     config.ServerConfig
	httpSrv *http.Server
}

// New builds the router and server. webhookHandler may be nil when the bot
// runs in long-polling mode; the webhook route is then not mounted.
func New(logger *slog.Logger, cfg config.ServerConfig, webhookHandler http.HandlerFunc) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "http_server")

	r := chi.NewRouter()

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	if webhookHandler != nil {
		r.Post("/webhook/{secret}", func(w http.ResponseWriter, req *http.Request) {
			secret := chi.URLParam(req, "secret")
			if subtle.ConstantTimeCompare([]byte(secret), []byte(cfg.WebhookSecret)) != 1 {
				log.Warn("Webhook request with bad secret", "remote_addr", req.RemoteAddr)
				w.WriteHeader(http.StatusForbidden)
				return
			}
			webhookHandler(w, req)
		})
	}

	return &Server{
		logger: log,
		cfg:    cfg,
		httpSrv: &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", s.cfg.ListenAddr)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}
	s.logger.Info("HTTP server stopped")
	return <-errCh
}
