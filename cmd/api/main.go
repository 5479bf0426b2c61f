package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/josh-kwaku/hotel-booking/internal/auth"
	"github.com/josh-kwaku/hotel-booking/internal/cache"
	"github.com/josh-kwaku/hotel-booking/internal/clock"
	"github.com/josh-kwaku/hotel-booking/internal/config"
	"github.com/josh-kwaku/hotel-booking/internal/events"
	"github.com/josh-kwaku/hotel-booking/internal/handler"
	"github.com/josh-kwaku/hotel-booking/internal/logging"
	"github.com/josh-kwaku/hotel-booking/internal/logship"
	"github.com/josh-kwaku/hotel-booking/internal/middleware"
	"github.com/josh-kwaku/hotel-booking/internal/repository"
	"github.com/josh-kwaku/hotel-booking/internal/service"
	"github.com/josh-kwaku/hotel-booking/internal/service/booking"
	"github.com/josh-kwaku/hotel-booking/internal/service/ledger"
	"github.com/josh-kwaku/hotel-booking/internal/service/wallet"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Init(logging.Options{
		Service: "hotel-booking-api",
		Level:   cfg.LogLevel,
		AppEnv:  cfg.AppEnv,
		File:    cfg.LogFile,
	})

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	}, cfg.DBConnectAttempts)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	readiness := map[string]handler.Pinger{}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()
		readiness["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	} else {
		logger.Warn("REDIS_URL not set: idempotency disabled, rate limits are per process, log queries uncached")
	}

	var publisher booking.Publisher = events.Noop{}
	if cfg.AMQPURL != "" {
		p, err := events.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return fmt.Errorf("connect amqp: %w", err)
		}
		defer p.Close()
		publisher = p
	}

	shipCfg := logship.Config{
		URL:       cfg.LogsServiceURL,
		QueueSize: cfg.LogsQueueSize,
		CacheTTL:  cfg.LogsCacheTTL,
	}
	var shipper *logship.Client
	if rdb != nil {
		shipper = logship.New(shipCfg, cache.NewStore(rdb, "logs"), logger)
	} else {
		shipper = logship.New(shipCfg, nil, logger)
	}
	shipDone := make(chan struct{})
	shipCtx, stopShipping := context.WithCancel(context.Background())
	go func() {
		defer close(shipDone)
		shipper.Start(shipCtx)
	}()

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTExpiry)

	txDB := repository.NewDB(db)
	userRepo := repository.NewUserRepository(db)
	hotelRepo := repository.NewHotelRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	eventRepo := repository.NewBookingEventRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	txnRepo := repository.NewTransactionRepository(db)

	clk := clock.NewSystem()
	l := ledger.New(walletRepo, txnRepo)

	bookingSvc := booking.NewService(txDB, bookingRepo, eventRepo, hotelRepo, hotelRepo, l, clk, shipper, publisher)
	walletSvc := wallet.NewService(txDB, walletRepo, txnRepo, userRepo, l, shipper)
	catalogSvc := service.NewCatalogService(hotelRepo, bookingRepo, clk)

	limiterStore, err := middleware.NewLimiterStore(rdb)
	if err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	rateLimit, err := middleware.RateLimit(limiterStore, cfg.RateLimit)
	if err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var idempotency func(http.Handler) http.Handler
	if rdb != nil {
		idempotency = middleware.Idempotency(cache.NewIdempotencyStore(cache.NewStore(rdb, "idempotency"), cfg.IdempotencyTTL))
	}

	mux := routes(routeDeps{
		health:      handler.NewHealthHandler(db, readiness),
		auth:        handler.NewAuthHandler(userRepo, tokens),
		hotels:      handler.NewHotelHandler(catalogSvc),
		bookings:    handler.NewBookingHandler(bookingSvc),
		wallet:      handler.NewWalletHandler(walletSvc),
		logs:        handler.NewLogsHandler(shipper),
		tokens:      tokens,
		rateLimit:   rateLimit,
		idempotency: idempotency,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           otelhttp.NewHandler(mux, "hotel-booking-api"),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		stopShipping()
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		stopShipping()
		return fmt.Errorf("shutdown: %w", err)
	}

	// Drain whatever the last requests queued before exiting.
	stopShipping()
	select {
	case <-shipDone:
	case <-shutdownCtx.Done():
		logger.Warn("log shipping did not drain before shutdown deadline")
	}

	logger.Info("server stopped")
	return nil
}
