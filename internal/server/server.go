// Package server serves the dashboard over HTTP. Each browser session gets its
// own navigation router; changes are pushed to every tab of that session over
// a WebSocket so the tabs stay on the same section.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/conneroisu/collegedash/internal/config"
	"github.com/conneroisu/collegedash/internal/errors"
	"github.com/conneroisu/collegedash/internal/logging"
	"github.com/conneroisu/collegedash/internal/navigation"
	"github.com/conneroisu/collegedash/internal/sections"
	"github.com/conneroisu/collegedash/internal/watcher"
	"github.com/conneroisu/collegedash/internal/websocket"
)

const defaultShutdownTimeout = 10 * time.Second

// Server handles the HTTP lifecycle of the dashboard.
//
// Invariants:
//   - config, aliases, sessions and hub are never nil after New
//   - isShutdown is only written under serverMutex
//   - reloader is nil unless aliases are watched
type Server struct {
	config   *config.Config
	aliases  *sections.AliasTable
	sessions *navigation.SessionStore
	hub      *websocket.Hub
	reloader *watcher.AliasReloader
	logger   logging.Logger
	started  time.Time

	handler     http.Handler
	httpServer  *http.Server
	listenAddr  string
	serverMutex sync.RWMutex
	isShutdown  bool

	shutdownOnce sync.Once
	shutdownErr  error
}

// New wires a server from cfg. aliases is shared with the alias reloader so a
// reload is visible to every session at once.
func New(cfg *config.Config, aliases *sections.AliasTable, logger logging.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("server.New: config cannot be nil")
	}
	if aliases == nil {
		aliases = sections.NewAliasTable()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	s := &Server{
		config:  cfg,
		aliases: aliases,
		logger:  logger.WithComponent("server"),
		started: time.Now(),
	}
	s.sessions = navigation.NewSessionStore(aliases, cfg.Session.IdleTimeout, logger)
	s.hub = websocket.NewHub(websocket.AllowList(cfg.Server.AllowedOrigins), logger)
	s.sessions.OnCreate(s.forwardEvents)

	if cfg.Navigation.AliasesFile != "" && cfg.Navigation.WatchAliases {
		reloader, err := watcher.NewAliasReloader(cfg.Navigation.AliasesFile, aliases, cfg.Navigation.Debounce, logger)
		if err != nil {
			return nil, errors.NewIOError(errors.ErrCodeWatch, "cannot watch aliases file", err).
				WithContext("path", cfg.Navigation.AliasesFile)
		}
		reloader.OnReload(func(entries int) {
			s.hub.Broadcast(websocket.UpdateMessage{
				Type:      websocket.MessageAliasesReload,
				Timestamp: time.Now(),
			})
		})
		s.reloader = reloader
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)
	s.handler = Chain(mux,
		RequestLogger(s.logger),
		Recovery(s.logger),
		SecurityHeaders,
		OriginGuard(websocket.AllowList(cfg.Server.AllowedOrigins), s.logger),
	)

	s.httpServer = &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// forwardEvents relays a new session's navigation events to its WebSocket
// clients. The goroutine ends when the session's router is closed.
func (s *Server) forwardEvents(id string, router *navigation.Router) {
	events := router.Watch()
	go func() {
		for event := range events {
			s.hub.Publish(id, websocket.NavigationMessage(event))
		}
	}()
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Sessions returns the session store.
func (s *Server) Sessions() *navigation.SessionStore {
	return s.sessions
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *websocket.Hub {
	return s.hub
}

// Addr returns the address the server listens on. Before Start it is the
// configured address.
func (s *Server) Addr() string {
	s.serverMutex.RLock()
	defer s.serverMutex.RUnlock()
	if s.listenAddr != "" {
		return s.listenAddr
	}
	return s.httpServer.Addr
}

// Start listens and serves until ctx is cancelled or the server fails. On
// cancellation it shuts down gracefully within the configured timeout.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("Server.Start: context cannot be nil")
	}

	s.serverMutex.RLock()
	server := s.httpServer
	shut := s.isShutdown
	s.serverMutex.RUnlock()
	if shut {
		return fmt.Errorf("Server.Start: server has been shut down")
	}

	listener, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return errors.NewNetworkError("ERR_LISTEN", "cannot listen on "+server.Addr, err).
			WithContext("addr", server.Addr)
	}

	s.serverMutex.Lock()
	s.listenAddr = listener.Addr().String()
	s.serverMutex.Unlock()

	go s.sessions.Run(ctx, s.config.Session.SweepInterval)

	if s.reloader != nil {
		if err := s.reloader.Start(ctx); err != nil {
			_ = listener.Close()
			return fmt.Errorf("starting alias reloader: %w", err)
		}
		s.logger.Info(ctx, "Watching aliases file", "path", s.config.Navigation.AliasesFile)
	}

	errChan := make(chan error, 1)
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	s.logger.Info(ctx, "Dashboard listening",
		"addr", listener.Addr().String(),
		"environment", s.config.Server.Environment)

	select {
	case <-ctx.Done():
		timeout := s.config.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = defaultShutdownTimeout
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)

	case err := <-errChan:
		_ = s.Shutdown(context.Background())
		return fmt.Errorf("server error: %w", err)
	}
}

// Shutdown stops accepting requests, disconnects WebSocket clients, stops the
// alias reloader and closes every session. It is idempotent.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() {
		s.serverMutex.Lock()
		s.isShutdown = true
		s.serverMutex.Unlock()

		// Hijacked WebSocket connections are not tracked by http.Server.
		_ = s.hub.Shutdown(ctx)

		if s.reloader != nil {
			if err := s.reloader.Stop(); err != nil {
				s.logger.Warn(ctx, err, "Failed to stop alias reloader")
			}
		}

		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.shutdownErr = fmt.Errorf("server shutdown failed: %w", err)
		}
		s.sessions.Close()

		s.logger.Info(ctx, "Dashboard stopped", "uptime", time.Since(s.started).Round(time.Second).String())
	})
	return s.shutdownErr
}

// IsShutdown returns whether the server has been shut down
func (s *Server) IsShutdown() bool {
	s.serverMutex.RLock()
	defer s.serverMutex.RUnlock()
	return s.isShutdown
}
