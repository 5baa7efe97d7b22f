package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hupe1980/pinelocal"
	"github.com/hupe1980/pinelocal/internal/resource"
	"github.com/hupe1980/pinelocal/model"
)

// Backend is the subset of *pinelocal.DB the API serves.
type Backend interface {
	CreateIndex(ctx context.Context, req model.CreateIndexRequest) (model.IndexDescription, error)
	DescribeIndex(ctx context.Context, name string) (model.IndexDescription, error)
	DescribeIndexStats(ctx context.Context, name string) (model.IndexStats, error)
	ListIndexes(ctx context.Context) ([]model.IndexDescription, error)
	DeleteIndex(ctx context.Context, name string) error
	Upsert(ctx context.Context, name string, vectors []model.Vector) (int, error)
	Query(ctx context.Context, name string, req model.QueryRequest) (model.QueryResponse, error)
}

var _ Backend = (*pinelocal.DB)(nil)

// Options configures a Server.
type Options struct {
	// APIKey is required on every /indexes route.
	APIKey string

	// Logger receives one entry per request. Defaults to a noop logger.
	Logger *pinelocal.Logger

	// Metrics enables /metrics and HTTP request metrics when set.
	Metrics *PrometheusCollector

	// RateLimitRPS caps /indexes requests per second. 0 disables the limit.
	RateLimitRPS float64

	// RateLimitBurst is the token bucket size of the rate limit.
	RateLimitBurst int

	// ReadHeaderTimeout bounds reading request headers. Defaults to 10s.
	ReadHeaderTimeout time.Duration
}

// Server serves a Backend over HTTP.
type Server struct {
	backend Backend
	opts    Options
	logger  *pinelocal.Logger
	metrics *PrometheusCollector
	router  *gin.Engine
}

// New creates a Server. It panics if opts.APIKey is empty.
func New(backend Backend, opts Options) *Server {
	if opts.APIKey == "" {
		panic("server: empty API key")
	}
	if opts.Logger == nil {
		opts.Logger = pinelocal.NoopLogger()
	}
	if opts.ReadHeaderTimeout <= 0 {
		opts.ReadHeaderTimeout = 10 * time.Second
	}

	s := &Server{
		backend: backend,
		opts:    opts,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), s.observe())

	r.GET("/healthz", s.healthz)
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	limiter := resource.NewController(resource.Config{
		RequestsPerSecond: s.opts.RateLimitRPS,
		Burst:             s.opts.RateLimitBurst,
	})

	api := r.Group("/indexes", s.rateLimit(limiter), auth(s.opts.APIKey))
	{
		api.POST("", s.createIndex)
		api.GET("", s.listIndexes)
		api.GET("/:name", s.describeIndex)
		api.DELETE("/:name", s.deleteIndex)
		api.GET("/:name/describe_index_stats", s.describeIndexStats)
		api.POST("/:name/vectors/upsert", s.upsert)
		api.POST("/:name/query", s.query)
	}

	r.NoRoute(func(c *gin.Context) {
		abortWithError(c, http.StatusNotFound, "Not found")
	})
	return r
}

// Handler returns the HTTP handler of the API.
func (s *Server) Handler() http.Handler { return s.router }

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully within shutdownTimeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: s.opts.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.logger.InfoContext(ctx, "server listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.InfoContext(context.Background(), "server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln, shutdownTimeout)
}
