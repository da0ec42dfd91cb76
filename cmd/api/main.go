package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rahadianwp/gudangku-backend/api/routes"
	"github.com/rahadianwp/gudangku-backend/internal/audit"
	"github.com/rahadianwp/gudangku-backend/internal/catalog"
	"github.com/rahadianwp/gudangku-backend/internal/movements"
	"github.com/rahadianwp/gudangku-backend/internal/opname"
	"github.com/rahadianwp/gudangku-backend/internal/sequence"
	"github.com/rahadianwp/gudangku-backend/internal/stock"
	"github.com/rahadianwp/gudangku-backend/internal/transfers"
	"github.com/rahadianwp/gudangku-backend/pkg/config"
	"github.com/rahadianwp/gudangku-backend/pkg/db"
	"github.com/rahadianwp/gudangku-backend/pkg/logger"
	"github.com/rahadianwp/gudangku-backend/pkg/metrics"
	"github.com/rahadianwp/gudangku-backend/pkg/migrate"
	"github.com/rahadianwp/gudangku-backend/pkg/redis"
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
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	postingMetrics := metrics.NewPostingMetrics(registry)

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	sequencer, err := sequence.NewService(sequence.NewRepository(dbClient.DB()), cfg.Documents)
	if err != nil {
		logg.Error(context.Background(), "failed to create sequencer", err)
		os.Exit(1)
	}

	ledger := stock.NewLedger(dbClient.DB())
	auditor := audit.NewRecorder(dbClient.DB())

	stockService, err := stock.NewService(ledger, stock.NewQueryRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create stock service", err)
		os.Exit(1)
	}

	movementService, err := movements.NewService(
		dbClient,
		movements.NewRepository(dbClient.DB()),
		catalogService,
		ledger,
		sequencer,
		auditor,
		postingMetrics,
		logg,
		cfg.Documents.NumberRetries,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create movement service", err)
		os.Exit(1)
	}

	transferService, err := transfers.NewService(
		dbClient,
		transfers.NewRepository(dbClient.DB()),
		catalogService,
		ledger,
		sequencer,
		auditor,
		postingMetrics,
		logg,
		cfg.Documents.NumberRetries,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create transfer service", err)
		os.Exit(1)
	}

	opnameService, err := opname.NewService(
		dbClient,
		opname.NewRepository(dbClient.DB()),
		catalogService,
		ledger,
		sequencer,
		auditor,
		postingMetrics,
		logg,
		cfg.Documents.NumberRetries,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create opname service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
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
			redisClient,
			redisClient,
			stockService,
			movementService,
			transferService,
			opnameService,
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
