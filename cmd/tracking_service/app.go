package trackingservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"trip-tracker/internal/general/config"
	"trip-tracker/internal/general/contracts"
	"trip-tracker/internal/general/jwt"
	"trip-tracker/internal/general/location"
	"trip-tracker/internal/general/logger"
	"trip-tracker/internal/general/postgres"
	"trip-tracker/internal/general/rabbitmq"
	"trip-tracker/internal/general/routing"
	"trip-tracker/internal/general/storage"
	"trip-tracker/internal/general/websocket"
	"trip-tracker/internal/ports"
	adminhandler "trip-tracker/internal/software/adminboard/handler"
	adminservice "trip-tracker/internal/software/adminboard/service"
	"trip-tracker/internal/software/tracking/handler"
	"trip-tracker/internal/software/tracking/service"
	"trip-tracker/internal/tracking"
)

// Options are the command-line settings of the tracking service.
type Options struct {
	ConfigPath    string
	MaxConcurrent int
	// Broker disables RabbitMQ when false: no queue consumer, no trip events.
	Broker bool
}

func Run(ctx context.Context, opts Options) error {
	// set up a new logger for the tracking service with a static request ID for startup logs
	logger := logger.New(contracts.ProducerTrackingService)
	ctx = logger.WithRequestID(ctx, "startup-001")

	cfg, err := config.LoadFromFile(opts.ConfigPath)
	if err != nil {
		logger.Error(ctx, "config_load_failed", "Failed to load config", err, map[string]any{"path": opts.ConfigPath})
		return err
	}

	// completed-stop storage and location history
	var (
		kv      ports.KeyValueStore
		history ports.LocationHistoryRepository
		health  handler.HealthCheck
	)
	switch cfg.Storage.Driver {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			logger.Error(ctx, "db_connection_failed", "Failed to initialize Postgres pool", err, nil)
			return err
		}
		defer pool.Close()

		if err := postgres.Migrate(ctx, pool); err != nil {
			logger.Error(ctx, "db_migration_failed", "Failed to apply schema", err, nil)
			return err
		}
		kv = postgres.NewKVStore(pool)
		history = postgres.NewLocationHistoryRepo(pool)
		health = pool.Ping
	case "file":
		fileStore, err := storage.NewFile(cfg.Storage.Dir)
		if err != nil {
			logger.Error(ctx, "storage_init_failed", "Failed to prepare state directory", err, map[string]any{"dir": cfg.Storage.Dir})
			return err
		}
		kv = fileStore
	default:
		kv = storage.NewMemory()
	}
	logger.Info(ctx, "storage_ready", "Completed-stop storage ready", map[string]any{"driver": cfg.Storage.Driver})

	// connect to RabbitMQ
	var (
		rmq    *rabbitmq.Client
		events ports.TripEventPublisher
	)
	if opts.Broker {
		rmq, err = rabbitmq.ConnectRabbitMQ(ctx, cfg.RabbitMQ, logger)
		if err != nil {
			logger.Error(ctx, "rabbitmq_connection_failed", "Failed to connect to RabbitMQ", err, nil)
			return err
		}
		defer rmq.Close()
		events = rabbitmq.NewEventPublisher(rmq, contracts.ProducerTrackingService)
	}

	jwtManager := jwt.NewManager(cfg.JWT.SecretKey, 2*time.Hour)
	routes := routing.NewClient(cfg.Routing, nil, logger)
	hub := location.NewHub(32)
	defer hub.Close()

	svc := service.NewTrackingService(logger, trackingConfig(cfg.Tracking), service.Deps{
		Places:   routes,
		Routes:   routes,
		Geocoder: routes,
		Hub:      hub,
		KV:       kv,
		History:  history,
		Events:   events,
		MQ:       rmq,
		Clock:    tracking.SystemClock(),
	})
	defer svc.Close()

	// device fixes published to the location exchange
	svc.RunBackgroundConsumers(ctx)

	ws := websocket.NewWebSocket(logger, jwtManager, svc)

	mux := http.NewServeMux()
	httpHandler := handler.NewTrackingHTTPHandler(svc, logger, jwtManager, ws, health)
	httpHandler.RegisterRoutes(mux)

	// operator views over the running sessions
	adminHandler := adminhandler.NewAdminHTTPHandler(adminservice.NewAdminService(svc, history), logger, jwtManager)
	adminHandler.RegisterRoutes(mux)

	limitedHandler := withConcurrencyLimit(opts.MaxConcurrent, mux)

	port := cfg.Services.TrackingServicePort
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           limitedHandler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      45 * time.Second, // session start resolves every destination
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	logger.Info(ctx, "service_started",
		fmt.Sprintf("Tracking Service started on port %d", port),
		map[string]any{"port": port, "max_concurrent": opts.MaxConcurrent, "broker": opts.Broker},
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shCtx); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "http_shutdown_failed", "Failed to gracefully shut down HTTP server", err, nil)
		}
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "http_server_error", "HTTP server terminated with error", err, map[string]any{"port": port})
			return err
		}
	}

	return nil
}

// trackingConfig converts the YAML thresholds to controller units.
func trackingConfig(cfg config.TrackingConfig) tracking.Config {
	out := tracking.DefaultConfig()
	out.ArrivalRadiusKm = cfg.ArrivalRadiusM / 1000
	out.ArrivalCooldown = cfg.ArrivalCooldown()
	out.RerouteThresholdDeg = cfg.RerouteThresholdDeg
	out.GeocodeInterval = cfg.GeocodeInterval()
	return out
}

// withConcurrencyLimit wraps an http.Handler with a semaphore-based limiter.
// It controls how many HTTP requests can be in-progress at the same time.
func withConcurrencyLimit(n int, next http.Handler) http.Handler {
	if n <= 0 {
		return next
	}
	sem := make(chan struct{}, n)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case sem <- struct{}{}:
			defer func() { <-sem }()
			next.ServeHTTP(w, r)
		case <-r.Context().Done():
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		}
	})
}
