package server

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/pageza/alchemorsel-mealgen/backend/config"
)

// Server represents the HTTP server
type Server struct {
	http *http.Server
}

// New wraps handler in an http.Server listening on the configured address.
// Write timeout leaves room for a full generate/regenerate cycle.
func New(cfg *config.Config, handler http.Handler) *Server {
	writeTimeout := 2 * time.Minute
	if budget := cfg.AITimeout*time.Duration(max(cfg.MaxGenerationAttempts, 1)) + cfg.ImageTimeout + 10*time.Second; budget > writeTimeout {
		writeTimeout = budget
	}
	return &Server{
		http: &http.Server{
			Addr:              net.JoinHostPort(cfg.ServerHost, cfg.ServerPort),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       120 * time.Second,
		},
	}
}

// Addr is the listen address
func (s *Server) Addr() string {
	return s.http.Addr
}

// Start blocks serving requests until Shutdown is called
func (s *Server) Start() error {
	log.Printf("Listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}
