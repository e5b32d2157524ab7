package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrEngineMissing is returned when a Server has no router.
var ErrEngineMissing = errors.New("engine not configured")

// Server owns the viewer listener. Start binds synchronously so callers can
// treat a bind failure as "viewer unavailable" and carry on.
type Server struct {
	Engine *gin.Engine
	Addr   string
	Logger *zap.Logger

	mu   sync.Mutex
	srv  *http.Server
	ln   net.Listener
	done chan error
}

// Start binds Addr and serves in the background.
func (s *Server) Start() error {
	if s.Engine == nil {
		return ErrEngineMissing
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv != nil {
		return fmt.Errorf("server already started on %s", s.ln.Addr())
	}
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.Addr, err)
	}
	s.ln = ln
	s.srv = &http.Server{
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	s.done = make(chan error, 1)
	if s.Logger != nil {
		s.Logger.Info("log viewer listening", zap.String("addr", ln.Addr().String()))
	}
	go func(srv *http.Server, done chan<- error) {
		err := srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		done <- err
	}(s.srv, s.done)
	return nil
}

// ListenAddr reports the bound address, or "" before Start.
func (s *Server) ListenAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Done delivers the serve loop's exit error once. Nil before Start.
func (s *Server) Done() <-chan error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Shutdown stops accepting and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Run starts the server and blocks until ctx is cancelled or serving fails.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-s.Done()
	case err := <-s.Done():
		return err
	}
}
