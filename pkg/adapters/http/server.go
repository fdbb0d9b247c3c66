package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/KIIGIN/bot-constructor/internal/logging"
	"github.com/KIIGIN/bot-constructor/pkg/adapters/telegram"
	"github.com/KIIGIN/bot-constructor/pkg/domain"
	"github.com/KIIGIN/bot-constructor/pkg/observability"
)

// SecretTokenHeader carries the secret registered with setWebhook.
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// MaxBodySize bounds the size of a single update payload.
const MaxBodySize = 1 << 20

// UpdateHandler processes one normalized event for the bot behind webhookToken.
type UpdateHandler interface {
	Handle(ctx context.Context, webhookToken string, ev domain.Event) error
}

// Server exposes the Telegram webhook endpoint plus health and metrics.
type Server struct {
	handler UpdateHandler
	metrics *observability.Metrics
	logger  *slog.Logger
	secret  string
	timeout time.Duration
}

// Option configures the Server.
type Option func(*Server)

// WithMetrics exposes /metrics and counts rejected requests.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithLogger sets the logger used for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSecretToken requires every webhook call to carry the given secret.
func WithSecretToken(secret string) Option {
	return func(s *Server) {
		s.secret = secret
	}
}

// WithHandleTimeout bounds the processing of a single update.
func WithHandleTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.timeout = d
	}
}

// NewServer creates a webhook server dispatching to handler.
func NewServer(handler UpdateHandler, opts ...Option) *Server {
	s := &Server{
		handler: handler,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the chi router for the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.health)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	r.Post("/telegram/webhook/{token}", s.webhook)
	return r
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// webhook always answers 200: Telegram redelivers on any other status and
// a failing update would otherwise be retried forever.
func (s *Server) webhook(w http.ResponseWriter, r *http.Request) {
	defer w.WriteHeader(http.StatusOK)

	token := chi.URLParam(r, "token")
	if s.secret != "" && r.Header.Get(SecretTokenHeader) != s.secret {
		s.logger.Warn("webhook secret mismatch", "remote", r.RemoteAddr)
		if s.metrics != nil {
			s.metrics.ObserveUpdate("unknown", observability.OutcomeForbidden, 0)
		}
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodySize))
	if err != nil {
		s.logger.Error("read webhook body", "err", err)
		return
	}

	ctx := r.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if err := Dispatch(ctx, s.handler, token, body); err != nil {
		s.logger.Error("webhook update failed", "err", err, "request_id", middleware.GetReqID(r.Context()))
	}
}

// Dispatch decodes a raw Telegram update and hands it to handler. Updates
// that carry neither a message nor a callback are skipped.
func Dispatch(ctx context.Context, handler UpdateHandler, webhookToken string, body []byte) error {
	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		return fmt.Errorf("decode update: %w", err)
	}
	ev, ok := telegram.ParseUpdate(update)
	if !ok {
		return nil
	}
	return handler.Handle(ctx, webhookToken, ev)
}

// ListenAndServe serves on addr until ctx is cancelled, then drains
// in-flight requests within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
