// Package httpapi exposes the assistant to the dashboard over HTTP: a
// messaging endpoint for the chat widget plus health and status endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/opsdeskhq/opsdesk/common/trace"
	"github.com/opsdeskhq/opsdesk/common/version"
	"github.com/opsdeskhq/opsdesk/internal/opsdesk/interpreter"
	"github.com/opsdeskhq/opsdesk/internal/opsdesk/store"
)

// Responder produces an assistant reply for one message.
type Responder interface {
	Respond(ctx context.Context, text string) (*interpreter.Reply, error)
}

// StatusProvider is the minimal store surface the server needs.
type StatusProvider interface {
	Counts(ctx context.Context) (map[string]int, error)
	RecentAudit(ctx context.Context, limit int) ([]*store.AuditEntry, error)
	WriteAudit(ctx context.Context, traceID, sender, intent, input, outcome string) error
}

// Config holds HTTP server configuration.
type Config struct {
	Addr string
	// AllowedOrigin is the dashboard origin allowed by CORS.
	AllowedOrigin string
}

// Server serves the dashboard-facing HTTP API.
type Server struct {
	cfg       Config
	router    *chi.Mux
	assistant Responder
	store     StatusProvider
	startedAt time.Time
	server    *http.Server
}

// New creates and configures the HTTP server (does not start it).
func New(cfg Config, assistant Responder, sp StatusProvider) *Server {
	s := &Server{
		cfg:       cfg,
		router:    chi.NewRouter(),
		assistant: assistant,
		store:     sp,
		startedAt: time.Now(),
	}

	origin := cfg.AllowedOrigin
	if origin == "" {
		origin = "*"
	}
	s.router.Use(traceMiddleware)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{origin},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/status", s.handleStatus)
	s.router.Post("/api/messages", s.handleMessage)
	s.router.Get("/api/audit", s.handleAudit)

	return s
}

// ServeHTTP implements http.Handler so the server can be tested without a
// live network listener (e.g. with httptest.NewRecorder).
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start begins listening in the background. Blocks until the listener is
// established so the caller knows the port is open before returning.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("http server: listen %s: %w", s.cfg.Addr, err)
	}

	s.server = &http.Server{
		Handler:      s,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("http server listening", "addr", ln.Addr().String())
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("http server stopped", "err", err)
		}
	}()

	// Shutdown when ctx is cancelled.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("http server shutdown error", "err", err)
		}
	}()

	return nil
}

// Stop shuts down the HTTP server.
func (s *Server) Stop() {
	if s.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		slog.Warn("http server shutdown error", "err", err)
	}
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

type statusResponse struct {
	Status     string         `json:"status"`
	Version    string         `json:"version"`
	Commit     string         `json:"commit"`
	BuildTime  string         `json:"build_time"`
	StartedAt  time.Time      `json:"started_at"`
	UptimeSecs float64        `json:"uptime_seconds"`
	Records    map[string]int `json:"records"`
}

type messageRequest struct {
	Message string `json:"message"`
	Sender  string `json:"sender,omitempty"`
}

type messageResponse struct {
	Intent string   `json:"intent"`
	Lines  []string `json:"lines"`
	Text   string   `json:"text"`
	HTML   string   `json:"html"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Version: version.Version,
		Commit:  version.GitCommit,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	records := map[string]int{}
	if s.store != nil {
		if counts, err := s.store.Counts(r.Context()); err == nil {
			records = counts
		}
	}

	writeJSON(w, http.StatusOK, statusResponse{
		Status:     "ok",
		Version:    version.Version,
		Commit:     version.GitCommit,
		BuildTime:  version.BuildTime,
		StartedAt:  s.startedAt,
		UptimeSecs: time.Since(s.startedAt).Seconds(),
		Records:    records,
	})
}

// handleMessage runs one dashboard chat message through the assistant.
func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message must not be empty"})
		return
	}

	reply, err := s.assistant.Respond(r.Context(), req.Message)
	if err != nil {
		slog.Error("assistant failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "assistant unavailable"})
		return
	}

	sender := req.Sender
	if sender == "" {
		sender = "dashboard"
	}
	if s.store != nil {
		if err := s.store.WriteAudit(r.Context(), trace.FromContext(r.Context()), sender, reply.Intent, req.Message, "replied"); err != nil {
			slog.Warn("failed to write audit entry", "err", err)
		}
	}

	writeJSON(w, http.StatusOK, messageResponse{
		Intent: reply.Intent,
		Lines:  reply.Lines,
		Text:   interpreter.RenderText(reply.Lines),
		HTML:   interpreter.RenderHTML(reply.Lines),
	})
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.RecentAudit(r.Context(), 50)
	if err != nil {
		slog.Error("failed to read audit log", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "audit log unavailable"})
		return
	}
	if entries == nil {
		entries = []*store.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// traceMiddleware attaches a fresh trace ID to every request context.
func traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := trace.WithTraceID(r.Context(), trace.GenerateID())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// writeJSON serialises v as JSON and writes it to w with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode JSON response", "err", err)
	}
}
