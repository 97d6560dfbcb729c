package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"strings"
	"time"

	"verseline/internal/config"
	"verseline/internal/logging"
	"verseline/internal/notifications"
	"verseline/internal/poetry"
	"verseline/internal/queue"
	"verseline/internal/stage"
	"verseline/internal/workflow"
)

// WorkflowReporter exposes the workflow state the health endpoint reports.
// *workflow.Manager satisfies it.
type WorkflowReporter interface {
	Status(ctx context.Context) workflow.StatusSummary
	Healthy(ctx context.Context) (bool, []stage.Health)
}

// Server is the daemon's HTTP API listener.
type Server struct {
	bind     string
	cfg      *config.Config
	store    *queue.Store
	workflow WorkflowReporter
	notifier notifications.Service
	catalog  *poetry.Catalog
	logger   *slog.Logger

	listener net.Listener
	server   *http.Server
}

// NewServer constructs a server bound per config. A blank bind address
// disables the API and returns nil.
func NewServer(cfg *config.Config, store *queue.Store, workflow WorkflowReporter, notifier notifications.Service, logger *slog.Logger) *Server {
	if cfg == nil {
		return nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil
	}

	srv := &Server{
		bind:     bind,
		cfg:      cfg,
		store:    store,
		workflow: workflow,
		notifier: notifier,
		catalog:  poetry.NewCatalog(rand.New(rand.NewSource(time.Now().UnixNano()))),
		logger:   logger,
	}
	srv.server = &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

// Handler builds the route table. Exposed so tests can drive the server
// through httptest without binding a socket.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	token := strings.TrimSpace(s.cfg.Paths.APIToken)
	mux.HandleFunc("/api/health", authMiddleware(token, s.handleHealth))
	mux.HandleFunc("/api/themes", authMiddleware(token, s.handleThemes))
	mux.HandleFunc("/api/poetry/random", authMiddleware(token, s.handleRandomPoem))
	mux.HandleFunc("/api/videos", authMiddleware(token, s.handleVideos))
	mux.HandleFunc("/api/videos/", authMiddleware(token, s.handleVideoByID))
	mux.HandleFunc("/api/queue", authMiddleware(token, s.handleQueue))
	mux.HandleFunc("/api/logs", authMiddleware(token, s.handleLogs))
	return mux
}

// Start binds the listener and serves until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Stop shuts the listener down.
func (s *Server) Stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// Addr returns the bound listener address, or the configured bind before Start.
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.bind
}

// authMiddleware validates bearer tokens. An empty token disables auth.
func authMiddleware(token string, next http.HandlerFunc) http.HandlerFunc {
	if token == "" {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != token {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String(logging.FieldComponent, "api-server"))
	}
	return logging.NewNop()
}
