package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

const shutdownTimeout = 30 * time.Second

// Start serves HTTP until ctx is cancelled, then drains in-flight requests
func (s *Server) Start(ctx context.Context) error {
	defer s.RateLimiter.Close()

	listener, err := net.Listen("tcp", net.JoinHostPort(s.Host, s.Port))
	if err != nil {
		return fmt.Errorf("server failed to start: %w", err)
	}
	s.printBanner()
	return s.serve(ctx, s.httpServer(), listener)
}

// httpServer wraps the routes in the tracing middleware
func (s *Server) httpServer() *http.Server {
	return &http.Server{
		Handler:           s.Services.Telemetry.HTTPMiddleware()(s.setupRoutes()),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.ReadTimeout,
		WriteTimeout:      s.WriteTimeout,
		IdleTimeout:       s.IdleTimeout,
	}
}

// serve runs srv on listener. Cancelling ctx triggers a graceful shutdown
// bounded by shutdownTimeout, after which open connections are closed.
func (s *Server) serve(ctx context.Context, srv *http.Server, listener net.Listener) error {
	serveErr := make(chan error, 1)
	go func() {
		s.Logger.Info("Starting HTTP server", "address", listener.Addr().String())
		serveErr <- srv.Serve(listener)
	}()

	select {
	case err := <-serveErr:
		if err == http.ErrServerClosed {
			return nil
		}
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	s.Logger.Info("Shutdown requested, draining connections", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.Logger.LogError(err, "Graceful shutdown timed out, closing connections")
		return srv.Close()
	}
	s.Logger.Info("HTTP server stopped")
	return nil
}
