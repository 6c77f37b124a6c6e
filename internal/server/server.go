package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/flock"

	"permasnap/internal/archive"
	"permasnap/internal/config"
	"permasnap/internal/logging"
	"permasnap/internal/ratelimit"
)

// ErrAlreadyRunning reports that another server holds the instance lock.
var ErrAlreadyRunning = errors.New("another permasnap server is already running")

const shutdownTimeout = 5 * time.Second

// Archiver runs one archive request.
type Archiver interface {
	Archive(ctx context.Context, req archive.Request) (archive.Result, error)
}

// Option configures a Server.
type Option func(*Server)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLimiter enables per-client rate limiting.
func WithLimiter(limiter ratelimit.Limiter) Option {
	return func(s *Server) {
		s.limiter = limiter
	}
}

// Server serves the archive API.
type Server struct {
	bind           string
	archiver       Archiver
	limiter        ratelimit.Limiter
	limit          int
	window         time.Duration
	requestTimeout time.Duration
	lockPath       string
	logger         *slog.Logger
	engine         *gin.Engine
}

// New builds a server for cfg. Routes are registered immediately so
// Handler can be used without Run.
func New(cfg *config.Config, archiver Archiver, opts ...Option) *Server {
	s := &Server{
		bind:           strings.TrimSpace(cfg.Server.Bind),
		archiver:       archiver,
		limit:          cfg.Server.RateLimitRequests,
		window:         cfg.RateLimitWindow(),
		requestTimeout: cfg.ServerRequestTimeout(),
		lockPath:       cfg.LockPath(),
		logger:         logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "server")

	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger())
	s.engine = engine
	s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.lockPath), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	lock := flock.New(s.lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrAlreadyRunning
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logging.WarnWithContext(s.logger, "failed to release server lock", "lock_release_failed",
				logging.Error(err),
				logging.String("lock", s.lockPath),
				logging.String(logging.FieldImpact, "stale lock file left behind"),
			)
		}
	}()

	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return s.Serve(ctx, listener)
}

// Serve handles connections on listener until ctx is done, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(listener)
	}()
	s.logger.Info("server listening",
		logging.String("address", listener.Addr().String()),
		logging.String(logging.FieldEventType, "server_started"),
	)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server stopped", logging.String(logging.FieldEventType, "server_stopped"))
	return nil
}

func (s *Server) routes() {
	api := s.engine.Group("/api")
	api.GET("/health", s.handleHealth)
	api.POST("/archive", s.handleArchive)
	s.engine.NoRoute(func(c *gin.Context) {
		writeError(c, http.StatusNotFound, "not found")
	})
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		s.logger.Debug("http request",
			logging.String("method", c.Request.Method),
			logging.String("path", c.Request.URL.Path),
			logging.Int("status", c.Writer.Status()),
			logging.String("client_ip", c.ClientIP()),
			logging.Duration("duration", time.Since(started)),
		)
	}
}
