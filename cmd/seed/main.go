package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/sokochain/sokochain-backend/internal/events"
	"github.com/sokochain/sokochain-backend/internal/ledger"
	"github.com/sokochain/sokochain-backend/internal/platform"
	"github.com/sokochain/sokochain-backend/internal/products"
	"github.com/sokochain/sokochain-backend/internal/vendors"
	"github.com/sokochain/sokochain-backend/pkg/config"
	"github.com/sokochain/sokochain-backend/pkg/db"
	pkgerrors "github.com/sokochain/sokochain-backend/pkg/errors"
	"github.com/sokochain/sokochain-backend/pkg/logger"
	"github.com/sokochain/sokochain-backend/pkg/migrate"
)

type demoVendor struct {
	address  string
	name     string
	about    string
	products []products.ListProductInput
}

var demoVendors = []demoVendor{
	{
		address: "0xa1b2c3d4e5f60718293a4b5c6d7e8f9001122334",
		name:    "Mama Njeri Groceries",
		about:   "Fresh produce and pantry staples.",
		products: []products.ListProductInput{
			{Name: "Maize Flour 2kg", Category: "groceries", CostCents: 450, Rating: 5, Stock: 40},
			{Name: "Sukuma Wiki Bundle", Category: "groceries", CostCents: 120, Rating: 4, Stock: 60},
		},
	},
	{
		address: "0xb2c3d4e5f60718293a4b5c6d7e8f900112233445",
		name:    "Kibera Crafts",
		about:   "Handmade beadwork and woven baskets.",
		products: []products.ListProductInput{
			{Name: "Sisal Basket", Category: "crafts", CostCents: 1500, Rating: 5, Stock: 12},
			{Name: "Beaded Bracelet", Category: "crafts", CostCents: 350, Rating: 4, Stock: 30},
		},
	},
	{
		address: "0xc3d4e5f60718293a4b5c6d7e8f90011223344556",
		name:    "Jua Kali Electronics",
		about:   "Phone accessories and small electronics.",
		products: []products.ListProductInput{
			{Name: "Solar Lantern", Category: "electronics", CostCents: 2800, Rating: 4, Stock: 8},
		},
	},
}

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}
	if cfg.App.IsProd() {
		logg.Warn(ctx, "refusing to seed a prod environment")
		return
	}

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	if err := seed(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "seed failed", err)
		os.Exit(1)
	}
	logg.Info(ctx, "seed complete")
}

func seed(ctx context.Context, cfg *config.Config, logg *logger.Logger, dbClient *db.Client) error {
	guard := ledger.NewGuard()
	conn := dbClient.DB()

	vendorRepo := vendors.NewRepository(conn)
	productRepo := products.NewRepository(conn)
	platformRepo := platform.NewRepository(conn)

	recorder, err := events.NewRecorder(events.NewRepository(conn))
	if err != nil {
		return err
	}
	platformSvc, err := platform.NewService(platformRepo, dbClient, guard, recorder,
		vendorRepo, productRepo, cfg.Platform.MaxFeePercent, nil)
	if err != nil {
		return err
	}
	vendorSvc, err := vendors.NewService(vendorRepo, dbClient, guard, recorder, platformSvc, nil)
	if err != nil {
		return err
	}
	productSvc, err := products.NewService(productRepo, vendorRepo, dbClient, guard, recorder, nil)
	if err != nil {
		return err
	}

	if _, err := platformSvc.EnsureSettings(ctx, cfg.Platform.OwnerAddress, cfg.Platform.InitialFeePercent); err != nil {
		return err
	}

	for _, demo := range demoVendors {
		vctx := logg.WithCallerAddress(ctx, demo.address)

		_, err := vendorSvc.RegisterVendor(ctx, vendors.RegisterVendorInput{
			Address:     demo.address,
			Name:        demo.name,
			Description: demo.about,
		})
		if err != nil {
			// Re-running the seed against the same database is fine.
			if pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
				logg.Info(vctx, "vendor already seeded, skipping")
				continue
			}
			return err
		}
		logg.Info(vctx, "seeded vendor")

		for _, input := range demo.products {
			input.VendorAddress = demo.address
			if _, err := productSvc.ListProduct(ctx, input); err != nil {
				return err
			}
		}
	}
	return nil
}
