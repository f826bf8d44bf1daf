package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sokochain/sokochain-backend/api/routes"
	"github.com/sokochain/sokochain-backend/internal/balances"
	"github.com/sokochain/sokochain-backend/internal/events"
	"github.com/sokochain/sokochain-backend/internal/ledger"
	"github.com/sokochain/sokochain-backend/internal/platform"
	"github.com/sokochain/sokochain-backend/internal/products"
	"github.com/sokochain/sokochain-backend/internal/purchases"
	"github.com/sokochain/sokochain-backend/internal/vendors"
	"github.com/sokochain/sokochain-backend/pkg/config"
	"github.com/sokochain/sokochain-backend/pkg/db"
	"github.com/sokochain/sokochain-backend/pkg/logger"
	"github.com/sokochain/sokochain-backend/pkg/metrics"
	"github.com/sokochain/sokochain-backend/pkg/migrate"
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

	registry := prometheus.NewRegistry()
	svcs, err := wireServices(dbClient, cfg, registry)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	if _, err := svcs.Platform.EnsureSettings(context.Background(), cfg.Platform.OwnerAddress, cfg.Platform.InitialFeePercent); err != nil {
		logg.Error(context.Background(), "failed to bootstrap platform settings", err)
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
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, svcs, registry),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func wireServices(dbClient *db.Client, cfg *config.Config, registry *prometheus.Registry) (routes.Services, error) {
	guard := ledger.NewGuard()
	ledgerMetrics := metrics.NewLedgerMetrics(registry)

	conn := dbClient.DB()
	vendorRepo := vendors.NewRepository(conn)
	productRepo := products.NewRepository(conn)
	orderRepo := purchases.NewRepository(conn)
	balanceRepo := balances.NewRepository(conn)
	payoutRepo := balances.NewPayoutRepository(conn)
	platformRepo := platform.NewRepository(conn)
	eventRepo := events.NewRepository(conn)

	recorder, err := events.NewRecorder(eventRepo)
	if err != nil {
		return routes.Services{}, err
	}
	settler, err := balances.NewPayoutSettler(payoutRepo)
	if err != nil {
		return routes.Services{}, err
	}

	platformSvc, err := platform.NewService(platformRepo, dbClient, guard, recorder,
		vendorRepo, productRepo, cfg.Platform.MaxFeePercent, ledgerMetrics)
	if err != nil {
		return routes.Services{}, err
	}
	vendorSvc, err := vendors.NewService(vendorRepo, dbClient, guard, recorder, platformSvc, ledgerMetrics)
	if err != nil {
		return routes.Services{}, err
	}
	productSvc, err := products.NewService(productRepo, vendorRepo, dbClient, guard, recorder, ledgerMetrics)
	if err != nil {
		return routes.Services{}, err
	}
	purchaseSvc, err := purchases.NewService(orderRepo, productRepo, vendorRepo, balanceRepo,
		platformRepo, dbClient, guard, recorder, ledgerMetrics)
	if err != nil {
		return routes.Services{}, err
	}
	balanceSvc, err := balances.NewService(balanceRepo, payoutRepo, platformRepo, settler,
		dbClient, guard, ledgerMetrics)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Vendors:   vendorSvc,
		Products:  productSvc,
		Purchases: purchaseSvc,
		Balances:  balanceSvc,
		Platform:  platformSvc,
		Events:    recorder,
	}, nil
}
