package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/tracklist/internal/auth"
	"github.com/desertthunder/tracklist/internal/library"
	"github.com/desertthunder/tracklist/internal/services"
	"github.com/desertthunder/tracklist/internal/shared"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                                // Use adds middleware to the router's middleware stack
	Handle(path string, handler http.Handler, methods ...string) // Handle registers a handler for path, restricted to methods when given
	NotFound(handler http.Handler)                               // NotFound sets the handler for unmatched paths
	MethodNotAllowed(handler http.Handler)                       // MethodNotAllowed sets the handler for paths matched with the wrong method
	ServeHTTP(w http.ResponseWriter, r *http.Request)            // ServeHTTP implements http.Handler for the entire router
}

// Deps are the collaborators the HTTP handlers call into.
type Deps struct {
	Auth      *auth.Authenticator
	Sessions  *auth.Sessions
	Playlists *library.PlaylistManager
	Metadata  services.MetadataService
	Logger    *log.Logger
}

// Server is the tracklist HTTP server.
type Server struct {
	httpServer *http.Server
	logger     *log.Logger
}

// New builds a [Server] listening on cfg's address with every route registered.
func New(cfg shared.ServerConfig, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = shared.NewLogger(nil)
	}
	deps.Logger = shared.WithLogger(deps.Logger, "component", "http")

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           NewHandler(deps),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: deps.Logger,
	}
}

// NewHandler returns the fully routed [http.Handler] for deps.
func NewHandler(deps Deps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = shared.NewLogger(nil)
	}

	router := NewBasicRouter()
	router.Use(Recovery(deps.Logger), Logging(deps.Logger), LoadSession(deps.Sessions))

	app := &App{deps: deps}
	app.Register(router)
	return router
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.httpServer.Addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}
