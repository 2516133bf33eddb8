package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"audio-from-video/infrastructure/filesystem"
	"audio-from-video/infrastructure/logging"
)

// Server serves the extraction API over HTTP
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	log        *logging.Logger
	outputRoot string
}

// ServerOption is a functional option for configuring Server
type ServerOption func(*Server)

// WithOutputRoot confines request output paths to root (default: the cache directory)
func WithOutputRoot(root string) ServerOption {
	return func(s *Server) {
		if root != "" {
			s.outputRoot = root
		}
	}
}

// Engine returns the server's gin engine for testing
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// NewServer creates a new HTTP server exposing extractor at addr
func NewServer(addr string, extractor Extractor, health HealthChecker, log *logging.Logger, opts ...ServerOption) *Server {
	if log == nil {
		log = logging.Discard()
	}

	engine := gin.New()

	s := &Server{
		engine:     engine,
		log:        log,
		outputRoot: filesystem.DefaultCacheDir(),
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	engine.Use(gin.Recovery())
	engine.Use(s.requestLogger())
	engine.Use(requestSizeLimit(1024 * 1024))

	handler := NewExtractHandler(extractor, s.outputRoot)

	engine.GET("/health", healthHandler(health))

	v1 := engine.Group("/api/v1")
	{
		v1.POST("/extract-audio", handler.HandleExtract)
	}

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "resource not found", Code: "NotFound"})
	})

	return s
}

// requestLogger logs one entry per request through logrus
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		entry := s.log.WithRequest(c.Request)

		c.Next()

		entry.WithField("status", c.Writer.Status()).
			WithField("latency", time.Since(started).Round(time.Millisecond).String()).
			Info("request handled")
	}
}

// requestSizeLimit caps request bodies; extraction requests are tiny JSON documents
func requestSizeLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodPost {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
