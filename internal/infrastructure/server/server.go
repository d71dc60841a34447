package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/animforge/internal/api/http"
	"github.com/GriffinCanCode/animforge/internal/api/middleware"
	"github.com/GriffinCanCode/animforge/internal/api/ws"
	"github.com/GriffinCanCode/animforge/internal/capability"
	"github.com/GriffinCanCode/animforge/internal/domain/preview"
	"github.com/GriffinCanCode/animforge/internal/infrastructure/config"
	"github.com/GriffinCanCode/animforge/internal/infrastructure/logging"
	"github.com/GriffinCanCode/animforge/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/animforge/internal/infrastructure/tracing"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	config  *config.Config
	router  *gin.Engine
	handler http.Handler
	http    *http.Server
	preview *preview.Service
	metrics *monitoring.Metrics
	tracer  *tracing.Tracer
	logger  *logging.Logger
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	logger.Info("Initializing animforge server",
		zap.String("port", cfg.Server.Port),
		zap.Int("sandbox_slots", cfg.Sandbox.MaxConcurrent),
		zap.Duration("render_timeout", cfg.Sandbox.RenderTimeout()),
	)

	// Initialize metrics first (needed by other components)
	metrics := monitoring.NewMetrics()
	tracer := tracing.New("animforge", logger.Logger)

	table := capability.Default()
	svc := preview.NewService(table, preview.OptionsFromConfig(cfg), logger).WithMetrics(metrics)
	logger.Info("Capability table loaded",
		zap.String("version", table.Version()),
		zap.Int("capabilities", table.Len()),
	)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.Logger(logger.Named("access")))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.Server.CORSOrigins...)))
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
	router.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	apihttp.NewHandlers(svc, metrics, tracer, logger).Register(router)
	router.GET("/stream", ws.NewHandler(svc, metrics, logger).HandleConnection)

	handler, err := compress(router, cfg.Server.Compression)
	if err != nil {
		return nil, fmt.Errorf("compression: %w", err)
	}

	s := &Server{
		config:  cfg,
		router:  router,
		handler: handler,
		preview: svc,
		metrics: metrics,
		tracer:  tracer,
		logger:  logger,
	}
	s.http = &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server initialized successfully")
	return s, nil
}

// compress gzips responses. WebSocket upgrades bypass the wrapper since
// they need the raw connection.
func compress(next http.Handler, enabled bool) (http.Handler, error) {
	if !enabled {
		return next, nil
	}
	wrap, err := gzhttp.NewWrapper(gzhttp.MinSize(1024))
	if err != nil {
		return nil, err
	}
	gz := wrap(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if websocket.IsWebSocketUpgrade(r) {
			next.ServeHTTP(w, r)
			return
		}
		gz.ServeHTTP(w, r)
	}), nil
}

// Handler returns the root handler, compression included.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.http.Addr
}

// Run starts the HTTP server and blocks until it stops. A graceful Shutdown
// makes it return nil.
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Serve accepts connections on l until Shutdown.
func (s *Server) Serve(l net.Listener) error {
	s.logger.Info("Starting HTTP server", zap.String("addr", l.Addr().String()))
	if err := s.http.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones and releases
// the preview service.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	err := s.http.Shutdown(ctx)
	if cerr := s.preview.Close(); cerr != nil && err == nil {
		err = cerr
	}
	s.tracer.Close()

	// Sync logger before exit
	_ = s.logger.Sync()
	return err
}
