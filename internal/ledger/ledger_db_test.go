package ledger_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokochain/sokochain-backend/internal/balances"
	"github.com/sokochain/sokochain-backend/internal/events"
	"github.com/sokochain/sokochain-backend/internal/ledger"
	"github.com/sokochain/sokochain-backend/internal/platform"
	"github.com/sokochain/sokochain-backend/internal/products"
	"github.com/sokochain/sokochain-backend/internal/purchases"
	"github.com/sokochain/sokochain-backend/internal/vendors"
	"github.com/sokochain/sokochain-backend/pkg/config"
	"github.com/sokochain/sokochain-backend/pkg/db"
	"github.com/sokochain/sokochain-backend/pkg/db/models"
	pkgerrors "github.com/sokochain/sokochain-backend/pkg/errors"
)

const testOwner = "owner-1"

type testLedger struct {
	client    *db.Client
	vendors   vendors.Service
	products  products.Service
	purchases purchases.Service
	balances  balances.Service
	platform  platform.Service
}

// setupLedger wires the full service stack against an in-memory database,
// the same way cmd/api does against postgres.
func setupLedger(t *testing.T) *testLedger {
	t.Helper()

	cfg := config.DBConfig{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
	}
	client, err := db.New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	conn := client.DB()
	require.NoError(t, conn.AutoMigrate(
		&models.Vendor{},
		&models.Product{},
		&models.Order{},
		&models.VendorBalance{},
		&models.PlatformSettings{},
		&models.Payout{},
		&models.LedgerEvent{},
	))

	guard := ledger.NewGuard()
	vendorRepo := vendors.NewRepository(conn)
	productRepo := products.NewRepository(conn)
	orderRepo := purchases.NewRepository(conn)
	balanceRepo := balances.NewRepository(conn)
	payoutRepo := balances.NewPayoutRepository(conn)
	platformRepo := platform.NewRepository(conn)

	recorder, err := events.NewRecorder(events.NewRepository(conn))
	require.NoError(t, err)
	settler, err := balances.NewPayoutSettler(payoutRepo)
	require.NoError(t, err)

	platformSvc, err := platform.NewService(platformRepo, client, guard, recorder,
		vendorRepo, productRepo, 20, nil)
	require.NoError(t, err)
	vendorSvc, err := vendors.NewService(vendorRepo, client, guard, recorder, platformSvc, nil)
	require.NoError(t, err)
	productSvc, err := products.NewService(productRepo, vendorRepo, client, guard, recorder, nil)
	require.NoError(t, err)
	purchaseSvc, err := purchases.NewService(orderRepo, productRepo, vendorRepo, balanceRepo,
		platformRepo, client, guard, recorder, nil)
	require.NoError(t, err)
	balanceSvc, err := balances.NewService(balanceRepo, payoutRepo, platformRepo, settler,
		client, guard, nil)
	require.NoError(t, err)

	_, err = platformSvc.EnsureSettings(context.Background(), testOwner, 5)
	require.NoError(t, err)

	return &testLedger{
		client:    client,
		vendors:   vendorSvc,
		products:  productSvc,
		purchases: purchaseSvc,
		balances:  balanceSvc,
		platform:  platformSvc,
	}
}

// accountedTotal sums every live balance and settled payout. It must always
// equal the total payment accepted by the purchase engine.
func (l *testLedger) accountedTotal(t *testing.T) int64 {
	t.Helper()
	conn := l.client.DB()

	var vendorTotal, platformTotal, payoutTotal int64
	require.NoError(t, conn.Model(&models.VendorBalance{}).
		Select("COALESCE(SUM(amount_cents), 0)").Scan(&vendorTotal).Error)
	require.NoError(t, conn.Model(&models.PlatformSettings{}).
		Select("COALESCE(SUM(balance_cents), 0)").Scan(&platformTotal).Error)
	require.NoError(t, conn.Model(&models.Payout{}).
		Select("COALESCE(SUM(amount_cents), 0)").Scan(&payoutTotal).Error)
	return vendorTotal + platformTotal + payoutTotal
}

func TestLedgerLifecycle(t *testing.T) {
	l := setupLedger(t)
	ctx := context.Background()

	vendorA, err := l.vendors.RegisterVendor(ctx, vendors.RegisterVendorInput{
		Address: "vendor-a", Name: "Stall A",
	})
	require.NoError(t, err)
	vendorB, err := l.vendors.RegisterVendor(ctx, vendors.RegisterVendorInput{
		Address: "vendor-b", Name: "Stall B",
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), vendorA.ID)
	assert.Equal(t, uint64(2), vendorB.ID)

	productA, err := l.products.ListProduct(ctx, products.ListProductInput{
		VendorAddress: "vendor-a", Name: "Maize Flour", CostCents: 100, Rating: 5, Stock: 10,
	})
	require.NoError(t, err)
	_, err = l.products.ListProduct(ctx, products.ListProductInput{
		VendorAddress: "vendor-b", Name: "Sisal Basket", CostCents: 1500, Rating: 4, Stock: 3,
	})
	require.NoError(t, err)

	// Fee starts at 5 percent: 100 -> 5/95.
	order, err := l.purchases.Buy(ctx, purchases.BuyInput{
		BuyerAddress: "buyer-1", ProductID: productA.ID, AmountCents: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), order.PlatformFeeCents)
	assert.Equal(t, int64(95), order.VendorPaymentCents)

	// Raising the fee changes later orders only.
	_, err = l.platform.UpdateFee(ctx, testOwner, 10)
	require.NoError(t, err)
	second, err := l.purchases.Buy(ctx, purchases.BuyInput{
		BuyerAddress: "buyer-1", ProductID: productA.ID, AmountCents: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), second.PlatformFeeCents)

	history, err := l.purchases.GetOrderHistory(ctx, "buyer-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, int64(5), history[0].PlatformFeeCents)
	assert.Equal(t, 0, history[0].OrderIndex)
	assert.Equal(t, 1, history[1].OrderIndex)

	// 25 percent is above the cap.
	_, err = l.platform.UpdateFee(ctx, testOwner, 25)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	// Every accepted cent is accounted for across balances and payouts.
	assert.Equal(t, int64(200), l.accountedTotal(t))

	balance, err := l.balances.GetVendorBalance(ctx, "vendor-a")
	require.NoError(t, err)
	assert.Equal(t, int64(95+90), balance)

	withdrawal, err := l.balances.WithdrawVendorEarnings(ctx, "vendor-a")
	require.NoError(t, err)
	assert.Equal(t, int64(185), withdrawal.AmountCents)
	assert.NotEmpty(t, withdrawal.Reference)

	balance, err = l.balances.GetVendorBalance(ctx, "vendor-a")
	require.NoError(t, err)
	assert.Zero(t, balance)

	platformWithdrawal, err := l.balances.WithdrawPlatformFees(ctx, testOwner)
	require.NoError(t, err)
	assert.Equal(t, int64(15), platformWithdrawal.AmountCents)

	// Withdrawals move funds into payouts without creating or destroying any.
	assert.Equal(t, int64(200), l.accountedTotal(t))

	summary, err := l.platform.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.VendorCount)
	assert.Equal(t, int64(2), summary.ProductCount)
	assert.Zero(t, summary.BalanceCents)
}

func TestLedgerSingleUnitContention(t *testing.T) {
	l := setupLedger(t)
	ctx := context.Background()

	_, err := l.vendors.RegisterVendor(ctx, vendors.RegisterVendorInput{
		Address: "vendor-a", Name: "Stall A",
	})
	require.NoError(t, err)
	product, err := l.products.ListProduct(ctx, products.ListProductInput{
		VendorAddress: "vendor-a", Name: "Last Lantern", CostCents: 2800, Rating: 4, Stock: 1,
	})
	require.NoError(t, err)

	const attempts = 8
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(buyer int) {
			defer wg.Done()
			_, err := l.purchases.Buy(ctx, purchases.BuyInput{
				BuyerAddress: fmt.Sprintf("buyer-%d", buyer),
				ProductID:    product.ID,
				AmountCents:  2800,
			})
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	var successes, outOfStock int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case pkgerrors.IsCode(err, pkgerrors.CodeOutOfStock):
			outOfStock++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, outOfStock)

	fetched, err := l.products.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Zero(t, fetched.Stock)
}

func TestLedgerRejectedPurchaseLeavesNoTrace(t *testing.T) {
	l := setupLedger(t)
	ctx := context.Background()

	_, err := l.vendors.RegisterVendor(ctx, vendors.RegisterVendorInput{
		Address: "vendor-a", Name: "Stall A",
	})
	require.NoError(t, err)
	product, err := l.products.ListProduct(ctx, products.ListProductInput{
		VendorAddress: "vendor-a", Name: "Bracelet", CostCents: 350, Rating: 4, Stock: 5,
	})
	require.NoError(t, err)

	_, err = l.purchases.Buy(ctx, purchases.BuyInput{
		BuyerAddress: "buyer-1", ProductID: product.ID, AmountCents: 300,
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInsufficientPayment))

	fetched, err := l.products.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, fetched.Stock)
	assert.Zero(t, l.accountedTotal(t))

	history, err := l.purchases.GetOrderHistory(ctx, "buyer-1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestLedgerOverpaymentStaysAccounted(t *testing.T) {
	l := setupLedger(t)
	ctx := context.Background()

	_, err := l.vendors.RegisterVendor(ctx, vendors.RegisterVendorInput{
		Address: "vendor-a", Name: "Stall A",
	})
	require.NoError(t, err)
	product, err := l.products.ListProduct(ctx, products.ListProductInput{
		VendorAddress: "vendor-a", Name: "Basket", CostCents: 1500, Rating: 5, Stock: 2,
	})
	require.NoError(t, err)

	_, err = l.purchases.Buy(ctx, purchases.BuyInput{
		BuyerAddress: "buyer-1", ProductID: product.ID, AmountCents: 2000,
	})
	require.NoError(t, err)

	// 2000 tendered: 1425 to the vendor, 75 fee plus 500 surplus to the platform.
	vendorBalance, err := l.balances.GetVendorBalance(ctx, "vendor-a")
	require.NoError(t, err)
	assert.Equal(t, int64(1425), vendorBalance)
	platformBalance, err := l.balances.GetPlatformBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(575), platformBalance)
	assert.Equal(t, int64(2000), l.accountedTotal(t))
}
