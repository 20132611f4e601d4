// Package server runs the HTTP listener and owns the ordered shutdown of the
// listener and the queue store connection.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	connectTimeout  = 5 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Connection is the store lifecycle the server manages.
type Connection interface {
	Connect(ctx context.Context) error
	Close() error
}

// Server wraps an HTTP server together with the store connection it serves.
type Server struct {
	server *http.Server
	conn   Connection
	logger *slog.Logger
	ln     net.Listener
}

// New creates a server listening on addr.
func New(addr string, handler http.Handler, conn Connection, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		conn:   conn,
		logger: logger,
	}
}

// Start connects to the store and binds the listener. A store failure is
// logged and tolerated; a bind failure is returned and the store is closed.
func (s *Server) Start(ctx context.Context) error {
	cctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := s.conn.Connect(cctx); err != nil {
		s.logger.Warn("starting without queue store connection", "error", err)
	}

	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		_ = s.conn.Close()
		return fmt.Errorf("listen on %s: %w", s.server.Addr, err)
	}
	s.ln = ln
	return nil
}

// Addr returns the bound address. Only valid after Start.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Serve accepts requests until ctx is done, then shuts the listener down and
// closes the store connection.
func (s *Server) Serve(ctx context.Context) error {
	if s.ln == nil {
		return errors.New("server: Serve called before Start")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("starting HTTP server", "address", s.ln.Addr().String())
		if err := s.server.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := s.server.Shutdown(shutdownCtx)
		if cerr := s.conn.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close queue store: %w", cerr))
		}
		return err
	})
	return g.Wait()
}

// Run is Start followed by Serve.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	return s.Serve(ctx)
}
