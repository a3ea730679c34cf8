package echoserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/webrequest/logger"
)

// Server is a request-inspection server. It reflects requests back as JSON
// and serves canned statuses, redirects, cookies and encodings.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     Config
	log        *logger.Logger

	mu       sync.Mutex
	listener net.Listener
}

// New creates a Server with all routes registered.
func New(cfg Config, log *logger.Logger) *Server {
	switch {
	case gin.Mode() == gin.TestMode:
	case zerolog.GlobalLevel() <= zerolog.DebugLevel:
		gin.SetMode(gin.DebugMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}
	if log == nil {
		log = logger.Get("echoserver")
	}

	engine := gin.New()
	s := &Server{
		engine: engine,
		config: cfg,
		log:    log,
	}
	engine.Use(recovery(log), requestID(), requestLogger(log))
	if cfg.MaxBodySize > 0 {
		engine.Use(bodyLimit(cfg.MaxBodySize))
	}
	s.routes()

	// h2c lets clients exercise HTTP/2 without TLS.
	handler := h2c.NewHandler(engine, &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          cfg.IdleTimeout,
	})
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Handler returns the root handler, for use with httptest.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start binds the port and serves in the background. It returns once the
// listener is bound.
func (s *Server) Start(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("echoserver: bind %s: %w", s.httpServer.Addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("server error", logger.Fields(logger.FieldError, err.Error()))
		}
	}()

	s.log.Info("echo server started", logger.Fields("addr", ln.Addr().String()))
	return nil
}

// Stop gracefully shuts down the server with a 5-second deadline.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("echoserver: shutdown: %w", err)
	}
	s.log.Info("echo server stopped")
	return nil
}

// Addr returns the bound address once started, else the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}
