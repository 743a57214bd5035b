package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/SeptianAdiraharja/Inventory/api/controllers"
	"github.com/SeptianAdiraharja/Inventory/api/routes"
	"github.com/SeptianAdiraharja/Inventory/internal/cart"
	"github.com/SeptianAdiraharja/Inventory/internal/guests"
	"github.com/SeptianAdiraharja/Inventory/internal/inbound"
	"github.com/SeptianAdiraharja/Inventory/internal/items"
	"github.com/SeptianAdiraharja/Inventory/internal/ledger"
	"github.com/SeptianAdiraharja/Inventory/internal/outbound"
	"github.com/SeptianAdiraharja/Inventory/internal/requests"
	"github.com/SeptianAdiraharja/Inventory/pkg/config"
	"github.com/SeptianAdiraharja/Inventory/pkg/db"
	"github.com/SeptianAdiraharja/Inventory/pkg/logger"
	"github.com/SeptianAdiraharja/Inventory/pkg/metrics"
	"github.com/SeptianAdiraharja/Inventory/pkg/migrate"
	"github.com/SeptianAdiraharja/Inventory/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       cfg.App.LogLevel,
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err = migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	var (
		redisPinger controllers.Pinger
		stores      routes.Stores
		sessions    guests.SessionSource = guests.NewMemorySessions(time.Now)
	)
	if cfg.Redis.Enabled() {
		var redisClient *redis.Client
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
		redisPinger = redisClient
		stores = routes.Stores{Idempotency: redisClient, RateLimit: redisClient}
		sessions = redisClient
	} else {
		logg.Warn(ctx, "redis disabled: idempotency replay and scan rate limiting are off")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	stockMetrics := metrics.NewStockMetrics(registry)

	conn := dbClient.DB()

	itemService, err := items.NewService(items.NewRepository(conn))
	if err != nil {
		return err
	}
	ledgerService, err := ledger.NewService(ledger.NewRepository(conn), logg, stockMetrics)
	if err != nil {
		return err
	}
	outboundService, err := outbound.NewService(outbound.NewRepository(conn), logg)
	if err != nil {
		return err
	}
	inboundService, err := inbound.NewService(inbound.NewRepository(conn), dbClient, ledgerService, itemService, logg, stockMetrics, time.Now)
	if err != nil {
		return err
	}
	cartRepo := cart.NewRepository(conn)
	cartService, err := cart.NewService(cartRepo, dbClient, ledgerService, logg, stockMetrics, time.Now, cfg.Inventory.MaxLinesPerRequest)
	if err != nil {
		return err
	}
	requestService, err := requests.NewService(cartRepo, dbClient, ledgerService, outboundService, logg, stockMetrics, time.Now)
	if err != nil {
		return err
	}
	guestService, err := guests.NewService(
		guests.NewRepository(conn),
		dbClient,
		ledgerService,
		outboundService,
		itemService,
		sessions,
		logg,
		stockMetrics,
		time.Now,
		cfg.Inventory.GuestSessionTTL,
	)
	if err != nil {
		return err
	}

	addr := ":" + cfg.App.Port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisPinger,
			stores,
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			itemService,
			ledgerService,
			inboundService,
			cartService,
			requestService,
			guestService,
			outboundService,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(ctx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
