package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hrygo/scheduleterp/internal/profile"
	"github.com/hrygo/scheduleterp/plugin/traveltime"
	"github.com/hrygo/scheduleterp/server/internal/observability"
	"github.com/hrygo/scheduleterp/server/middleware"
	apiv1 "github.com/hrygo/scheduleterp/server/router/api/v1"
	"github.com/hrygo/scheduleterp/server/runner/purge"
	"github.com/hrygo/scheduleterp/server/service/schedule"
	"github.com/hrygo/scheduleterp/store"
)

type Server struct {
	Profile *profile.Profile
	// Store is nil when no persistent travel-time store is configured.
	Store *store.Store

	echoServer *echo.Echo
	oracle     *schedule.TravelTimeOracle
	runnerStop context.CancelFunc
}

func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	s := &Server{
		Store:   store,
		Profile: profile,
	}

	echoServer := echo.New()
	echoServer.Debug = profile.IsDev()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.Use(echomiddleware.Recover())
	s.echoServer = echoServer

	metrics := observability.NewMetrics(0)
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	sink, err := observability.NewPromSink(registry)
	if err != nil {
		return nil, errors.Wrap(err, "failed to register metrics")
	}
	metrics.AttachPrometheus(sink)
	oracleOpts := []schedule.OracleOption{schedule.WithMetrics(metrics)}
	if store != nil {
		oracleOpts = append(oracleOpts, schedule.WithStore(store))
	}
	client := traveltime.NewClient(traveltime.ConfigFromProfile(profile))
	s.oracle = schedule.NewTravelTimeOracle(client, profile.TravelCacheCapacity, profile.TravelCacheTTL, oracleOpts...)

	classifier := schedule.NewClassifier(s.oracle,
		schedule.WithConcurrency(profile.OracleConcurrency),
		schedule.WithClassifierMetrics(metrics),
	)

	// Register healthz endpoint.
	echoServer.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})
	echoServer.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	apiV1Service := apiv1.NewAPIV1Service(profile, classifier, metrics)
	apiV1Service.RegisterRoutes(echoServer,
		middleware.RequestID(slog.Default()),
		middleware.RateLimit(middleware.NewRateLimiter(profile.APIRPS)),
	)

	return s, nil
}

// Start serves HTTP until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return errors.Wrap(err, "failed to listen")
	}
	s.echoServer.Listener = listener

	runnerCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.runnerStop = cancel
	go purge.NewRunner(s.oracle, time.Hour).Run(runnerCtx)

	go func() {
		if err := s.echoServer.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to start echo server", "error", err)
		}
	}()
	return nil
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	slog.Info("server shutting down")

	if s.runnerStop != nil {
		s.runnerStop()
	}

	// Shutdown echo server.
	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", slog.String("error", err.Error()))
	}

	// Close database connection.
	if s.Store != nil {
		if err := s.Store.Close(); err != nil {
			slog.Error("failed to close database", slog.String("error", err.Error()))
		}
	}

	slog.Info("server stopped properly")
}

// Handler exposes the HTTP handler, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	return s.echoServer
}
