package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tercihrehberi/tercihbot-go/internal/application/container"
	"github.com/tercihrehberi/tercihbot-go/pkg/config"
)

// Server wraps the HTTP listener and the websocket hub lifecycle
type Server struct {
	httpServer *http.Server
	container  *container.Container
	hubCancel  context.CancelFunc
}

// NewServer builds the server from the container and starts the hub loop
func NewServer(c *container.Container) *Server {
	router, hub := SetupRoutes(c)

	hubCtx, hubCancel := context.WithCancel(context.Background())
	go hub.Run(hubCtx)

	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + config.Port,
			Handler:      router,
			ReadTimeout:  config.ServerReadTimeout,
			WriteTimeout: config.ServerWriteTimeout,
			IdleTimeout:  config.ServerIdleTimeout,
		},
		container: c,
		hubCancel: hubCancel,
	}
}

// Start blocks serving requests until Shutdown is called
func (s *Server) Start() error {
	s.container.Logger.Startup().Info("HTTP server listening",
		slog.String("addr", s.httpServer.Addr))

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the hub
func (s *Server) Shutdown(ctx context.Context) error {
	s.container.Logger.Shutdown().Info("HTTP server shutting down")
	s.hubCancel()
	return s.httpServer.Shutdown(ctx)
}
