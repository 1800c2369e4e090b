// Package status serves the liveness endpoint.
package status

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/user/thumbnailer/pkg/ports"
)

// DefaultAddr is the default listen address.
const DefaultAddr = "127.0.0.1:3000"

const shutdownTimeout = 5 * time.Second

// Server answers GET /status with a constant "ok".
type Server struct {
	addr   string
	router *gin.Engine
	logger ports.Logger
}

// NewServer creates a status server listening on addr.
func NewServer(addr string, logger ports.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		addr:   addr,
		router: gin.New(),
		logger: logger.WithComponent("status"),
	}
	s.router.Use(requestLogger(s.logger))
	s.router.Use(gin.Recovery())
	s.router.GET("/status", handleStatus)
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Status server listening on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("Status server stopped")
	return nil
}

func handleStatus(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func requestLogger(log ports.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("HTTP %s %s -> %d (%s)",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
