package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Vinyl-Lilith/GreenGiant/internal/activity"
	"github.com/Vinyl-Lilith/GreenGiant/internal/alert"
	"github.com/Vinyl-Lilith/GreenGiant/internal/auth"
	"github.com/Vinyl-Lilith/GreenGiant/internal/bus"
	"github.com/Vinyl-Lilith/GreenGiant/internal/control"
	"github.com/Vinyl-Lilith/GreenGiant/internal/infrastructure/config"
	"github.com/Vinyl-Lilith/GreenGiant/internal/infrastructure/logging"
	"github.com/Vinyl-Lilith/GreenGiant/internal/ingest"
	"github.com/Vinyl-Lilith/GreenGiant/internal/presence"
	"github.com/Vinyl-Lilith/GreenGiant/internal/report"
	"github.com/Vinyl-Lilith/GreenGiant/internal/thresholds"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
//
// Hub carries the WebSocket fan-out and is created before the server so the
// presence registry and orchestrator can publish through it; Bus is the same
// hub behind the bus.Bus interface (tests substitute a recorder).
type Deps struct {
	Config       config.APIConfig
	WS           config.WebSocketConfig
	Security     config.SecurityConfig
	Logger       *logging.Logger
	Verifier     *auth.Verifier
	Users        auth.UserRepository
	Presence     *presence.Registry
	Thresholds   *thresholds.Store
	Orchestrator *control.Orchestrator
	Ingest       *ingest.Service
	Activity     activity.Repository
	Alerts       alert.Repository
	Readings     ingest.ReadingRepository
	Status       ingest.StatusRepository
	Reports      *report.Generator
	Bus          bus.Bus
	Hub          *Hub
	Version      string
}

// Server is the HTTP API server for GreenGiant.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg          config.APIConfig
	wsCfg        config.WebSocketConfig
	secCfg       config.SecurityConfig
	logger       *logging.Logger
	verifier     *auth.Verifier
	users        auth.UserRepository
	presence     *presence.Registry
	thresholds   *thresholds.Store
	orchestrator *control.Orchestrator
	ingest       *ingest.Service
	activity     activity.Repository
	alerts       alert.Repository
	readings     ingest.ReadingRepository
	status       ingest.StatusRepository
	reports      *report.Generator
	bus          bus.Bus
	hub          *Hub
	version      string
	server       *http.Server
	cancel       context.CancelFunc // cancels background goroutines on Close()
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Verifier == nil {
		return nil, fmt.Errorf("credential verifier is required")
	}
	if deps.Users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if deps.Bus == nil {
		return nil, fmt.Errorf("broadcast bus is required")
	}

	return &Server{
		cfg:          deps.Config,
		wsCfg:        deps.WS,
		secCfg:       deps.Security,
		logger:       deps.Logger,
		verifier:     deps.Verifier,
		users:        deps.Users,
		presence:     deps.Presence,
		thresholds:   deps.Thresholds,
		orchestrator: deps.Orchestrator,
		ingest:       deps.Ingest,
		activity:     deps.Activity,
		alerts:       deps.Alerts,
		readings:     deps.Readings,
		status:       deps.Status,
		reports:      deps.Reports,
		bus:          deps.Bus,
		hub:          deps.Hub,
		version:      deps.Version,
	}, nil
}

// Start begins listening for HTTP connections.
//
// It sets up the router, starts the WebSocket hub lifecycle, and launches the
// HTTP listener in a background goroutine. The server can be stopped with
// Close().
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	if s.hub != nil {
		go s.hub.Run(srvCtx)
	}

	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	// Cancel background goroutines (hub lifecycle)
	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
