package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	api "github.com/analystapp/backend/internal/api/http"
	"github.com/analystapp/backend/internal/api/middleware"
	"github.com/analystapp/backend/internal/api/ws"
	"github.com/analystapp/backend/internal/infrastructure/config"
	"github.com/analystapp/backend/internal/infrastructure/logging"
	"github.com/analystapp/backend/internal/infrastructure/monitoring"
	"github.com/analystapp/backend/internal/providers/filesystem"
	"github.com/analystapp/backend/internal/providers/system"
	"github.com/analystapp/backend/internal/providers/terminal"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router    *gin.Engine
	http      *http.Server
	terminals *terminal.Manager
	wsHandler *ws.Handler
	logger    *logging.Logger
	config    *config.Config
	metrics   *monitoring.Metrics
}

// NewServer creates a new server instance. The spawner is the pseudo
// terminal facility shells are started with.
func NewServer(cfg *config.Config, logger *logging.Logger, spawner terminal.Spawner) (*Server, error) {
	logger.Info("Initializing terminal server",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port),
		zap.Strings("allowed_origins", cfg.WebSocket.AllowedOrigins),
	)

	origins, err := middleware.NewOriginPolicy(cfg.WebSocket.AllowedOrigins)
	if err != nil {
		return nil, fmt.Errorf("allowed origins: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := monitoring.NewMetrics(registry)

	terminals := terminal.NewManager(spawner, terminal.Config{
		Cols:         cfg.Terminal.Cols,
		Rows:         cfg.Terminal.Rows,
		StrictLookup: cfg.Terminal.StrictLookup,
		KillTimeout:  cfg.Terminal.KillTimeout,
		DrainTimeout: cfg.Terminal.DrainTimeout,
		ReadBuffer:   cfg.Terminal.ReadBuffer,
	}).
		WithLogger(logger.Component("terminal")).
		WithMetrics(metrics)

	profile := terminals.Profile()
	logger.Info("Terminal shell resolved",
		zap.String("shell", profile.Shell),
		zap.Bool("pty_available", terminals.Available() == nil),
	)

	lister := filesystem.NewLister(logger.Component("filesystem"))
	sysProvider := system.NewProvider(terminals, logger.Component("system"))

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog(logger.Component("http")))
	router.Use(monitoring.Middleware(metrics))
	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.WebSocket.AllowedOrigins
	router.Use(middleware.CORS(corsConfig))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(rl))
	}

	handlers := api.NewHandlers(terminals, lister, sysProvider, logger.Component("api"))
	handlers.Register(router)

	wsHandler := ws.NewHandler(terminals, lister, ws.Config{
		SendBuffer:      cfg.WebSocket.SendBuffer,
		PingInterval:    cfg.WebSocket.PingInterval,
		MaxMessageBytes: cfg.WebSocket.MaxMessageBytes,
		CheckOrigin:     origins.CheckOrigin,
	}, logger.Component("ws")).WithMetrics(metrics)
	router.GET("/terminal", wsHandler.HandleConnection)

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})))

	logger.Info("Server initialized successfully")

	return &Server{
		router:    router,
		terminals: terminals,
		wsHandler: wsHandler,
		logger:    logger,
		config:    cfg,
		metrics:   metrics,
		http: &http.Server{
			Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Terminals returns the session manager
func (s *Server) Terminals() *terminal.Manager {
	return s.terminals
}

// Run starts the HTTP server and blocks until it is shut down
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests, disconnects display surfaces and
// destroys every terminal session.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	var errs []error
	if err := s.http.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}

	// Hijacked connections are not closed by http.Server.Shutdown
	s.wsHandler.Close()

	if err := s.terminals.Shutdown(ctx); err != nil {
		s.logger.Error("Terminals did not exit in time", zap.Error(err))
		errs = append(errs, err)
	} else {
		s.logger.Info("All terminals closed")
	}

	_ = s.logger.Sync()
	return errors.Join(errs...)
}
