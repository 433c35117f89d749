package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kbukum/transducekit/logger"
	"github.com/kbukum/transducekit/observability"
	"github.com/kbukum/transducekit/plan"
	"github.com/kbukum/transducekit/server/endpoint"
	"github.com/kbukum/transducekit/server/middleware"
)

// Server is the HTTP front end for a plan.Engine.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     Config
	log        *logger.Logger
}

// Option configures the routes New registers.
type Option func(*routes)

type routes struct {
	service  string
	checkers []observability.HealthChecker
	store    RunStore
}

// WithHealthCheckers adds components to the /health report.
func WithHealthCheckers(checkers ...observability.HealthChecker) Option {
	return func(r *routes) { r.checkers = append(r.checkers, checkers...) }
}

// WithRunStore retains every successful run under its run id.
func WithRunStore(store RunStore) Option {
	return func(r *routes) { r.store = store }
}

// WithServiceName sets the name reported by /health and /info.
func WithServiceName(name string) Option {
	return func(r *routes) { r.service = name }
}

// New creates a Server with the middleware stack and every route mounted.
func New(cfg Config, plans *plan.Engine, log *logger.Logger, opts ...Option) *Server {
	cfg.ApplyDefaults()
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := routes{service: "transduce"}
	for _, opt := range opts {
		opt(&r)
	}

	log = log.WithComponent("server")
	engine := gin.New()
	engine.Use(
		middleware.Recovery(log),
		middleware.RequestID(),
		middleware.BodySizeLimit(cfg.MaxBodySize),
		middleware.RequestLogger(log),
	)

	engine.GET("/health", endpoint.Health(r.service, r.checkers...))
	engine.GET("/alive", endpoint.Liveness(r.service))
	engine.GET("/info", endpoint.Info(r.service))

	h := &handler{plans: plans, store: r.store, log: log, timeout: cfg.runTimeout()}
	v1 := engine.Group("/v1")
	v1.GET("/plans", h.listPlans)
	v1.GET("/plans/:name", h.getPlan)
	v1.POST("/plans/:name/run", h.runPlan)
	v1.GET("/runs/:id", h.getRun)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      engine,
			ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
			IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
		},
		engine: engine,
		config: cfg,
		log:    log,
	}
}

// Name identifies the server as a lifecycle component.
func (s *Server) Name() string { return "http-server" }

// Handler returns the gin engine as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start binds the port and begins serving. It returns once the listener is
// bound; serving continues in a goroutine.
func (s *Server) Start(_ context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("Server error", logger.Fields(logger.FieldError, err.Error()))
		}
	}()

	s.log.Info("HTTP server started", logger.Fields("addr", listener.Addr().String()))
	return nil
}

// Stop gracefully shuts down the server with a 5-second deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	return nil
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}
