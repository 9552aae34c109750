package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/gray-logic-connect/internal/endpoint"
	"github.com/nerrad567/gray-logic-connect/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-connect/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-connect/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-connect/internal/sink/journal"
)

// gracefulShutdownTimeout bounds the wait for in-flight requests on Close.
const gracefulShutdownTimeout = 10 * time.Second

// Deps carries everything the API server needs. Logger, Endpoint and
// Producer are mandatory; Journal and Influx are optional, and the features
// backed by them degrade when nil.
type Deps struct {
	Config   config.APIConfig
	Logger   *logging.Logger
	Endpoint *endpoint.Endpoint
	Producer *endpoint.Producer
	Journal  *journal.Journal // nil disables the messages endpoint
	Influx   *influxdb.Client // nil hides telemetry from status reporting
	Version  string
}

// Server is the operations HTTP server for the connector: REST endpoints
// for status, journal queries and publishing, plus a WebSocket hub that
// tails inbound broker messages.
//
// Thread Safety: all methods are safe for concurrent use from multiple
// goroutines.
type Server struct {
	cfg      config.APIConfig
	logger   *logging.Logger
	endpoint *endpoint.Endpoint
	producer *endpoint.Producer
	journal  *journal.Journal
	influx   *influxdb.Client
	version  string

	startTime time.Time
	server    *http.Server
	hub       *Hub
	tail      *endpoint.Consumer
	cancel    context.CancelFunc
}

// New wires a server from deps. Nothing listens until Start.
func New(deps Deps) (*Server, error) {
	switch {
	case deps.Logger == nil:
		return nil, errors.New("logger is required")
	case deps.Endpoint == nil:
		return nil, errors.New("endpoint is required")
	case deps.Producer == nil:
		return nil, errors.New("producer is required")
	}

	s := &Server{
		cfg:       deps.Config,
		logger:    deps.Logger,
		endpoint:  deps.Endpoint,
		producer:  deps.Producer,
		journal:   deps.Journal,
		influx:    deps.Influx,
		version:   deps.Version,
		startTime: time.Now(),
	}

	// The hub doubles as the live tail sink; the consumer binding it to the
	// endpoint stays inactive until Start.
	s.hub = NewHub(deps.Config.WebSocket, deps.Logger)
	s.tail = endpoint.NewConsumer(deps.Endpoint, s.hub, deps.Logger)

	return s, nil
}

// Start attaches the live tail consumer, starts the WebSocket hub and
// brings up the HTTP listener in a background goroutine. Close stops all
// three.
func (s *Server) Start(ctx context.Context) error {
	// A derived context lets Close stop the hub independently of the
	// caller's context.
	var hubCtx context.Context
	hubCtx, s.cancel = context.WithCancel(ctx)
	go s.hub.Run(hubCtx)

	if err := s.tail.Start(hubCtx); err != nil {
		return fmt.Errorf("starting live tail consumer: %w", err)
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       seconds(s.cfg.Timeouts.Read),
		ReadHeaderTimeout: seconds(s.cfg.Timeouts.Read),
		WriteTimeout:      seconds(s.cfg.Timeouts.Write),
		IdleTimeout:       seconds(s.cfg.Timeouts.Idle),
	}

	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close detaches the live tail, disconnects WebSocket clients and drains
// in-flight requests, waiting up to gracefulShutdownTimeout.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	s.tail.Stop()
	if s.cancel != nil {
		s.cancel()
	}

	s.logger.Info("API server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck reports whether the server has been started.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return errors.New("api server not started")
	}
	return nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
