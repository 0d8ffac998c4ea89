package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	StatusRunning = "running"
	StatusHealthy = "healthy"

	readTimeout     = 30 * time.Second
	writeTimeout    = 30 * time.Second
	idleTimeout     = 120 * time.Second
	shutdownTimeout = 10 * time.Second
)

type Server struct {
	service string
	addr    string
	router  *gin.Engine
	log     *slog.Logger
}

// New builds the liveness router. metrics may be nil, in which case
// /metrics is not mounted.
func New(service, port string, metrics http.Handler, log *slog.Logger) *Server {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    StatusRunning,
			"service":   service,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": StatusHealthy,
		})
	})

	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	return &Server{
		service: service,
		addr:    ":" + port,
		router:  router,
		log:     log,
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.InfoContext(ctx, "Health server is started",
			"addr", s.addr,
			"service", s.service)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen %s: %w", s.addr, err)
		}

		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown health server: %w", err)
	}

	s.log.InfoContext(ctx, "Health server is stopped",
		"addr", s.addr)

	return nil
}
