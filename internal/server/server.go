// Package server owns the HTTP listener lifecycle.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Server wraps the HTTP listener so main can start it and shut it down
// without touching net/http details.
type Server struct {
	http *http.Server
}

func New(handler *gin.Engine, host string, port int) *Server {
	return &Server{
		http: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start blocks serving requests until Shutdown is called or the listener
// fails.
func (s *Server) Start() error {
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
