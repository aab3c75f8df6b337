// Package app wires the OpsDesk assistant together: SQLite store, seed
// dataset, Matrix transport, HTTP API, and the interpreter that turns
// operator messages into replies.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/opsdeskhq/opsdesk/common/retry"
	"github.com/opsdeskhq/opsdesk/common/trace"
	"github.com/opsdeskhq/opsdesk/internal/opsdesk/httpapi"
	"github.com/opsdeskhq/opsdesk/internal/opsdesk/interpreter"
	"github.com/opsdeskhq/opsdesk/internal/opsdesk/matrix"
	"github.com/opsdeskhq/opsdesk/internal/opsdesk/seed"
	"github.com/opsdeskhq/opsdesk/internal/opsdesk/store"
)

// Config holds application configuration.
type Config struct {
	DatabasePath string
	// SeedPath points at a YAML seed dataset. Empty means the embedded demo
	// dataset. The seed is only applied when the database is empty.
	SeedPath string
	Matrix   matrix.Config
	// HTTPAddr is the TCP address for the dashboard HTTP API (e.g. ":8080").
	// When empty the HTTP server is disabled.
	HTTPAddr string
	// AllowedOrigin is the dashboard origin allowed by CORS.
	AllowedOrigin string
	// TypingDelay is how long the assistant shows the typing indicator before
	// replying, so responses don't feel instantaneous. Zero disables it.
	TypingDelay time.Duration
}

// chat is the slice of the Matrix client the message loop needs. Tests
// substitute a fake so the full send/typing/reply sequence can be observed.
type chat interface {
	SendMessage(roomID, message string) error
	ReplyToMessage(roomID, html, plaintext string, inReplyTo id.EventID) error
	SetTyping(roomID string, typing bool, timeout time.Duration) error
}

// App is the assistant service.
type App struct {
	config     *Config
	store      *store.Store
	matrix     *matrix.Client
	chat       chat
	assistant  *interpreter.Interpreter
	httpServer *httpapi.Server
}

// New creates the assistant service.
func New(config *Config) (*App, error) {
	slog.Info("opening database", "path", config.DatabasePath)
	st, err := store.New(config.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Apply the seed dataset on first run so the assistant has something to
	// talk about. A populated database is left untouched.
	ds, err := seed.Load(config.SeedPath)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to load seed dataset: %w", err)
	}
	if err := seed.Apply(context.Background(), st, ds); err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to apply seed dataset: %w", err)
	}

	// Inject the DB so the client can persist the sync token across restarts.
	matrixCfg := config.Matrix
	matrixCfg.DB = st.DB()
	slog.Info("connecting to Matrix", "homeserver", matrixCfg.Homeserver)
	matrixClient, err := matrix.New(&matrixCfg)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to initialize Matrix client: %w", err)
	}

	assistant := interpreter.New(st, st)

	var httpServer *httpapi.Server
	if config.HTTPAddr != "" {
		httpServer = httpapi.New(httpapi.Config{
			Addr:          config.HTTPAddr,
			AllowedOrigin: config.AllowedOrigin,
		}, assistant, st)
		slog.Info("http server configured", "addr", config.HTTPAddr)
	}

	return &App{
		config:     config,
		store:      st,
		matrix:     matrixClient,
		chat:       matrixClient,
		assistant:  assistant,
		httpServer: httpServer,
	}, nil
}

// Run starts the assistant and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.httpServer != nil {
		if err := a.httpServer.Start(ctx); err != nil {
			slog.Warn("http server failed to start; continuing without it", "err", err)
		}
	}

	slog.Info("starting Matrix sync")
	if err := a.matrix.Start(ctx, a.handleMessage); err != nil {
		return fmt.Errorf("failed to start Matrix client: %w", err)
	}

	for _, roomID := range a.config.Matrix.Rooms {
		a.chat.SendMessage(roomID, "✅ OpsDesk assistant is online. Ask me about your schedule, clients, or invoices.")
	}

	slog.Info("OpsDesk assistant is running; press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	slog.Info("shutting down")
	return nil
}

// Stop stops the assistant service.
func (a *App) Stop() {
	slog.Info("stopping Matrix client")
	a.matrix.Stop()

	if a.httpServer != nil {
		slog.Info("stopping http server")
		a.httpServer.Stop()
	}

	slog.Info("closing database")
	a.store.Close()
}

// handleMessage runs one operator message through the interpreter and sends
// the reply back to the room. The transport has already filtered rooms and
// senders.
func (a *App) handleMessage(ctx context.Context, evt *event.Event) {
	msgContent := evt.Content.AsMessage()
	if msgContent == nil {
		return
	}
	text := msgContent.Body
	roomID := evt.RoomID.String()
	sender := evt.Sender.String()

	traceID := trace.GenerateID()
	ctx = trace.WithTraceID(ctx, traceID)
	log := slog.With("trace_id", traceID, "sender", sender)

	// Show the typing indicator while working. A short pause keeps the
	// conversation from feeling like a form submission.
	if a.config.TypingDelay > 0 {
		if err := a.chat.SetTyping(roomID, true, 2*a.config.TypingDelay); err != nil {
			log.Warn("failed to set typing indicator", "err", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(a.config.TypingDelay):
		}
		defer a.chat.SetTyping(roomID, false, 0)
	}

	reply, err := a.assistant.Respond(ctx, text)
	if err != nil {
		log.Error("assistant failed", "err", err)
		a.chat.SendMessage(roomID, "❌ Something went wrong on my end. Please try again.")
		return
	}

	// Retry transient send failures; a dropped reply looks like the assistant
	// silently ignored the operator. Replies are threaded onto the triggering
	// message so busy rooms stay readable.
	plain := interpreter.RenderText(reply.Lines)
	html := interpreter.RenderHTML(reply.Lines)
	err = retry.Do(ctx, retry.DefaultConfig, func() error {
		return a.chat.ReplyToMessage(roomID, html, plain, evt.ID)
	})
	if err != nil {
		log.Error("failed to send reply", "room", roomID, "err", err)
		return
	}

	if err := a.store.WriteAudit(ctx, traceID, sender, reply.Intent, text, "replied"); err != nil {
		log.Warn("failed to write audit entry", "err", err)
	}
	log.Info("handled message", "intent", reply.Intent, "mutated", reply.Mutated)
}
