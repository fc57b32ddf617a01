package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/host"
	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/pipeline"
	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/sanitizer"
	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/storage"
)

const (
	// multipartOverhead is allowed on top of the upload limit for form
	// boundaries and headers.
	multipartOverhead = 64 << 10

	shutdownTimeout = 10 * time.Second
)

// Deps are the collaborators of the HTTP server.
type Deps struct {
	Gate       host.Gate
	Authorizer host.Authorizer
	Directory  host.Directory
	Size       host.SizePolicy
	Sink       storage.Sink
	Engine     *sanitizer.Engine
	Timeout    time.Duration
	// Auditor may be nil.
	Auditor pipeline.Auditor
}

// Server serves the upload API.
type Server struct {
	deps   Deps
	logger *slog.Logger
	router *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a server and registers its routes.
func New(deps Deps, opts ...Option) *Server {
	s := &Server{deps: deps}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.router = s.newRouter()
	return s
}

func (s *Server) newRouter() *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = s.deps.Size.Limit() + multipartOverhead
	r.Use(
		RequestID(),
		Logging(s.logger),
		Recovery(s.logger),
	)

	r.GET("/healthz", s.health)

	api := r.Group("/api/v1")
	api.GET("/mimes", s.mimes)
	api.GET("/files/*key", s.object)

	authed := api.Group("", Auth(s.deps.Directory))
	authed.POST("/uploads", s.upload)
	authed.POST("/sanitize", s.sanitize)

	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr, "svg_enabled", s.deps.Gate.Enabled())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) uploadPipeline() *pipeline.Pipeline {
	return pipeline.UploadPipeline(pipeline.UploadDeps{
		Gate:       s.deps.Gate,
		Authorizer: s.deps.Authorizer,
		Size:       s.deps.Size,
		Sink:       s.deps.Sink,
		Engine:     s.deps.Engine,
		Timeout:    s.deps.Timeout,
		Auditor:    s.deps.Auditor,
	}, pipeline.WithLogger(s.logger))
}
