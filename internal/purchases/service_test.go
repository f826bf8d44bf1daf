package purchases

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/sokochain/sokochain-backend/internal/balances"
	"github.com/sokochain/sokochain-backend/internal/events"
	"github.com/sokochain/sokochain-backend/internal/ledger"
	"github.com/sokochain/sokochain-backend/internal/platform"
	"github.com/sokochain/sokochain-backend/internal/products"
	"github.com/sokochain/sokochain-backend/internal/vendors"
	"github.com/sokochain/sokochain-backend/pkg/db/models"
	"github.com/sokochain/sokochain-backend/pkg/enums"
	pkgerrors "github.com/sokochain/sokochain-backend/pkg/errors"
)

// ledgerWorld is an in-memory stand-in for every repository the purchase
// engine touches, so one purchase can be asserted end to end.
type ledgerWorld struct {
	products map[uint64]*models.Product
	vendors  map[uint64]*models.Vendor
	balances map[string]int64
	settings *models.PlatformSettings
	orders   []models.Order
	appended []models.LedgerEvent
}

func newLedgerWorld(feePercent int) *ledgerWorld {
	return &ledgerWorld{
		products: make(map[uint64]*models.Product),
		vendors:  make(map[uint64]*models.Vendor),
		balances: make(map[string]int64),
		settings: &models.PlatformSettings{
			ID:           models.PlatformSettingsID,
			OwnerAddress: "owner-1",
			FeePercent:   feePercent,
		},
	}
}

func (w *ledgerWorld) addVendor(id uint64, address string) {
	w.vendors[id] = &models.Vendor{ID: id, Address: address, Name: "Stall", IsActive: true}
}

func (w *ledgerWorld) addProduct(id, vendorID uint64, vendorAddress string, costCents int64, stock int) {
	w.products[id] = &models.Product{
		ID:            id,
		Name:          "Item",
		CostCents:     costCents,
		Rating:        4,
		Stock:         stock,
		VendorAddress: vendorAddress,
		VendorID:      vendorID,
		IsActive:      true,
	}
}

type worldOrdersRepo struct{ w *ledgerWorld }

func (r worldOrdersRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r worldOrdersRepo) Create(ctx context.Context, order *models.Order) error {
	order.ID = uint64(len(r.w.orders) + 1)
	r.w.orders = append(r.w.orders, *order)
	return nil
}

func (r worldOrdersRepo) CountByBuyer(ctx context.Context, buyer string) (int64, error) {
	var count int64
	for _, order := range r.w.orders {
		if order.BuyerAddress == buyer {
			count++
		}
	}
	return count, nil
}

func (r worldOrdersRepo) ListByBuyer(ctx context.Context, buyer string) ([]models.Order, error) {
	var list []models.Order
	for _, order := range r.w.orders {
		if order.BuyerAddress == buyer {
			list = append(list, order)
		}
	}
	return list, nil
}

func (r worldOrdersRepo) ExistsByBuyerAndProduct(ctx context.Context, buyer string, productID uint64) (bool, error) {
	for _, order := range r.w.orders {
		if order.BuyerAddress == buyer && order.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

type worldProductsRepo struct{ w *ledgerWorld }

func (r worldProductsRepo) WithTx(tx *gorm.DB) products.Repository { return r }

func (r worldProductsRepo) Create(ctx context.Context, product *models.Product) error {
	r.w.products[product.ID] = product
	return nil
}

func (r worldProductsRepo) FindByID(ctx context.Context, id uint64) (*models.Product, error) {
	product, ok := r.w.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

func (r worldProductsRepo) List(ctx context.Context) ([]models.Product, error) { return nil, nil }

func (r worldProductsRepo) ListByVendorAddress(ctx context.Context, address string) ([]models.Product, error) {
	return nil, nil
}

func (r worldProductsRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.w.products)), nil
}

func (r worldProductsRepo) DecrementStock(ctx context.Context, id uint64) (bool, error) {
	product, ok := r.w.products[id]
	if !ok || product.Stock <= 0 {
		return false, nil
	}
	product.Stock--
	return true, nil
}

type worldVendorsRepo struct{ w *ledgerWorld }

func (r worldVendorsRepo) WithTx(tx *gorm.DB) vendors.Repository { return r }

func (r worldVendorsRepo) Create(ctx context.Context, vendor *models.Vendor) error { return nil }

func (r worldVendorsRepo) FindByID(ctx context.Context, id uint64) (*models.Vendor, error) {
	vendor, ok := r.w.vendors[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return vendor, nil
}

func (r worldVendorsRepo) FindByAddress(ctx context.Context, address string) (*models.Vendor, error) {
	for _, vendor := range r.w.vendors {
		if vendor.Address == address {
			return vendor, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r worldVendorsRepo) List(ctx context.Context) ([]models.Vendor, error) { return nil, nil }

func (r worldVendorsRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.w.vendors)), nil
}

func (r worldVendorsRepo) SetActive(ctx context.Context, id uint64, active bool) error { return nil }

func (r worldVendorsRepo) IncrementProductCount(ctx context.Context, id uint64) error { return nil }

func (r worldVendorsRepo) IncrementTotalSales(ctx context.Context, id uint64) error {
	if vendor, ok := r.w.vendors[id]; ok {
		vendor.TotalSales++
	}
	return nil
}

type worldBalancesRepo struct{ w *ledgerWorld }

func (r worldBalancesRepo) WithTx(tx *gorm.DB) balances.Repository { return r }

func (r worldBalancesRepo) FindByAddress(ctx context.Context, address string) (*models.VendorBalance, error) {
	amount, ok := r.w.balances[address]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.VendorBalance{Address: address, AmountCents: amount}, nil
}

func (r worldBalancesRepo) Credit(ctx context.Context, address string, amountCents int64) error {
	r.w.balances[address] += amountCents
	return nil
}

func (r worldBalancesRepo) Zero(ctx context.Context, address string) error {
	r.w.balances[address] = 0
	return nil
}

type worldPlatformRepo struct{ w *ledgerWorld }

func (r worldPlatformRepo) WithTx(tx *gorm.DB) platform.Repository { return r }

func (r worldPlatformRepo) Get(ctx context.Context) (*models.PlatformSettings, error) {
	return r.w.settings, nil
}

func (r worldPlatformRepo) Create(ctx context.Context, settings *models.PlatformSettings) error {
	r.w.settings = settings
	return nil
}

func (r worldPlatformRepo) UpdateFee(ctx context.Context, feePercent int) error {
	r.w.settings.FeePercent = feePercent
	return nil
}

func (r worldPlatformRepo) AddBalance(ctx context.Context, amountCents int64) error {
	r.w.settings.BalanceCents += amountCents
	return nil
}

func (r worldPlatformRepo) ZeroBalance(ctx context.Context) error {
	r.w.settings.BalanceCents = 0
	return nil
}

type worldEventsRepo struct{ w *ledgerWorld }

func (r worldEventsRepo) WithTx(tx *gorm.DB) events.Repository { return r }

func (r worldEventsRepo) Append(ctx context.Context, event *models.LedgerEvent) error {
	r.w.appended = append(r.w.appended, *event)
	return nil
}

func (r worldEventsRepo) List(ctx context.Context, limit int) ([]models.LedgerEvent, error) {
	return r.w.appended, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(t *testing.T, w *ledgerWorld) Service {
	t.Helper()
	recorder, err := events.NewRecorder(worldEventsRepo{w: w})
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	svc, err := NewService(
		worldOrdersRepo{w: w},
		worldProductsRepo{w: w},
		worldVendorsRepo{w: w},
		worldBalancesRepo{w: w},
		worldPlatformRepo{w: w},
		stubTxRunner{},
		ledger.NewGuard(),
		recorder,
		nil,
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestBuySplitsCostBetweenVendorAndPlatform(t *testing.T) {
	w := newLedgerWorld(5)
	w.addVendor(1, "vendor-1")
	w.addProduct(1, 1, "vendor-1", 100, 3)
	svc := newTestService(t, w)

	order, err := svc.Buy(context.Background(), BuyInput{BuyerAddress: "buyer-1", ProductID: 1, AmountCents: 100})
	if err != nil {
		t.Fatalf("buy: %v", err)
	}

	if order.PlatformFeeCents != 5 || order.VendorPaymentCents != 95 {
		t.Fatalf("expected 5/95 split, got %d/%d", order.PlatformFeeCents, order.VendorPaymentCents)
	}
	if order.PlatformFeeCents+order.VendorPaymentCents != order.CostCents {
		t.Fatalf("split does not add up to cost: %+v", order)
	}
	if w.balances["vendor-1"] != 95 {
		t.Fatalf("expected vendor balance 95, got %d", w.balances["vendor-1"])
	}
	if w.settings.BalanceCents != 5 {
		t.Fatalf("expected platform balance 5, got %d", w.settings.BalanceCents)
	}
	if w.products[1].Stock != 2 {
		t.Fatalf("expected stock 2, got %d", w.products[1].Stock)
	}
	if w.vendors[1].TotalSales != 1 {
		t.Fatalf("expected total sales 1, got %d", w.vendors[1].TotalSales)
	}
	if len(w.appended) != 1 || w.appended[0].Type != enums.EventTypeProductPurchased {
		t.Fatalf("expected one product_purchased event, got %+v", w.appended)
	}
}

func TestBuyFeeTruncationFavorsVendor(t *testing.T) {
	w := newLedgerWorld(7)
	w.addVendor(1, "vendor-1")
	w.addProduct(1, 1, "vendor-1", 99, 1)
	svc := newTestService(t, w)

	// floor(99 * 7 / 100) = 6, remainder stays with the vendor.
	order, err := svc.Buy(context.Background(), BuyInput{BuyerAddress: "buyer-1", ProductID: 1, AmountCents: 99})
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	if order.PlatformFeeCents != 6 || order.VendorPaymentCents != 93 {
		t.Fatalf("expected 6/93 split, got %d/%d", order.PlatformFeeCents, order.VendorPaymentCents)
	}
}

func TestBuyFeeChangeAppliesOnlyToLaterOrders(t *testing.T) {
	w := newLedgerWorld(5)
	w.addVendor(1, "vendor-1")
	w.addProduct(1, 1, "vendor-1", 100, 5)
	svc := newTestService(t, w)
	ctx := context.Background()

	first, err := svc.Buy(ctx, BuyInput{BuyerAddress: "buyer-1", ProductID: 1, AmountCents: 100})
	if err != nil {
		t.Fatalf("first buy: %v", err)
	}
	w.settings.FeePercent = 10
	second, err := svc.Buy(ctx, BuyInput{BuyerAddress: "buyer-1", ProductID: 1, AmountCents: 100})
	if err != nil {
		t.Fatalf("second buy: %v", err)
	}

	if first.PlatformFeeCents != 5 || second.PlatformFeeCents != 10 {
		t.Fatalf("expected fees 5 then 10, got %d then %d", first.PlatformFeeCents, second.PlatformFeeCents)
	}

	history, err := svc.GetOrderHistory(ctx, "buyer-1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if history[0].PlatformFeeCents != 5 {
		t.Fatalf("historical order was recomputed: %+v", history[0])
	}
}

func TestBuyPreconditionOrder(t *testing.T) {
	w := newLedgerWorld(5)
	w.addVendor(1, "vendor-1")
	w.addProduct(1, 1, "vendor-1", 100, 0)
	w.addProduct(2, 1, "vendor-1", 100, 1)
	svc := newTestService(t, w)
	ctx := context.Background()

	t.Run("missing product", func(t *testing.T) {
		_, err := svc.Buy(ctx, BuyInput{BuyerAddress: "buyer-1", ProductID: 99, AmountCents: 0})
		if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("out of stock before payment check", func(t *testing.T) {
		_, err := svc.Buy(ctx, BuyInput{BuyerAddress: "buyer-1", ProductID: 1, AmountCents: 0})
		if !pkgerrors.IsCode(err, pkgerrors.CodeOutOfStock) {
			t.Fatalf("expected out of stock, got %v", err)
		}
	})

	t.Run("insufficient payment", func(t *testing.T) {
		_, err := svc.Buy(ctx, BuyInput{BuyerAddress: "buyer-1", ProductID: 2, AmountCents: 99})
		if !pkgerrors.IsCode(err, pkgerrors.CodeInsufficientPayment) {
			t.Fatalf("expected insufficient payment, got %v", err)
		}
	})

	// Rejected attempts must leave no trace.
	if len(w.orders) != 0 || w.products[2].Stock != 1 || w.settings.BalanceCents != 0 {
		t.Fatalf("rejected purchase mutated state: orders=%d stock=%d platform=%d",
			len(w.orders), w.products[2].Stock, w.settings.BalanceCents)
	}
}

func TestBuyKeepsOverpaymentOnPlatformBalance(t *testing.T) {
	w := newLedgerWorld(5)
	w.addVendor(1, "vendor-1")
	w.addProduct(1, 1, "vendor-1", 100, 1)
	svc := newTestService(t, w)

	_, err := svc.Buy(context.Background(), BuyInput{BuyerAddress: "buyer-1", ProductID: 1, AmountCents: 130})
	if err != nil {
		t.Fatalf("buy with overpayment: %v", err)
	}
	if w.balances["vendor-1"] != 95 {
		t.Fatalf("vendor should receive the cost split only, got %d", w.balances["vendor-1"])
	}
	// Fee plus the 30 surplus.
	if w.settings.BalanceCents != 35 {
		t.Fatalf("expected platform balance 35, got %d", w.settings.BalanceCents)
	}
}

func TestBuyAssignsPerBuyerOrderIndex(t *testing.T) {
	w := newLedgerWorld(5)
	w.addVendor(1, "vendor-1")
	w.addProduct(1, 1, "vendor-1", 100, 10)
	svc := newTestService(t, w)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := svc.Buy(ctx, BuyInput{BuyerAddress: "buyer-1", ProductID: 1, AmountCents: 100}); err != nil {
			t.Fatalf("buyer-1 purchase %d: %v", i, err)
		}
	}
	other, err := svc.Buy(ctx, BuyInput{BuyerAddress: "buyer-2", ProductID: 1, AmountCents: 100})
	if err != nil {
		t.Fatalf("buyer-2 purchase: %v", err)
	}

	history, err := svc.GetOrderHistory(ctx, "buyer-1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 || history[0].OrderIndex != 0 || history[1].OrderIndex != 1 {
		t.Fatalf("unexpected buyer-1 history %+v", history)
	}
	if other.OrderIndex != 0 {
		t.Fatalf("buyer-2 index should start at 0, got %d", other.OrderIndex)
	}
}

func TestBuyLastUnitThenOutOfStock(t *testing.T) {
	w := newLedgerWorld(5)
	w.addVendor(1, "vendor-1")
	w.addProduct(1, 1, "vendor-1", 100, 1)
	svc := newTestService(t, w)
	ctx := context.Background()

	if _, err := svc.Buy(ctx, BuyInput{BuyerAddress: "buyer-1", ProductID: 1, AmountCents: 100}); err != nil {
		t.Fatalf("first buy: %v", err)
	}
	_, err := svc.Buy(ctx, BuyInput{BuyerAddress: "buyer-2", ProductID: 1, AmountCents: 100})
	if !pkgerrors.IsCode(err, pkgerrors.CodeOutOfStock) {
		t.Fatalf("expected out of stock, got %v", err)
	}
}

func TestHasUserPurchased(t *testing.T) {
	w := newLedgerWorld(5)
	w.addVendor(1, "vendor-1")
	w.addProduct(1, 1, "vendor-1", 100, 5)
	svc := newTestService(t, w)
	ctx := context.Background()

	if _, err := svc.Buy(ctx, BuyInput{BuyerAddress: "buyer-1", ProductID: 1, AmountCents: 100}); err != nil {
		t.Fatalf("buy: %v", err)
	}

	purchased, err := svc.HasUserPurchased(ctx, "buyer-1", 1)
	if err != nil || !purchased {
		t.Fatalf("expected purchased=true, got %v %v", purchased, err)
	}
	purchased, err = svc.HasUserPurchased(ctx, "buyer-2", 1)
	if err != nil || purchased {
		t.Fatalf("expected purchased=false, got %v %v", purchased, err)
	}
}
