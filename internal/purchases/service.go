package purchases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

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
	"github.com/sokochain/sokochain-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service executes purchases and serves the buyer-side order history.
type Service interface {
	Buy(ctx context.Context, input BuyInput) (*OrderDTO, error)
	HasUserPurchased(ctx context.Context, buyerAddress string, productID uint64) (bool, error)
	GetOrderHistory(ctx context.Context, buyerAddress string) ([]OrderDTO, error)
}

// BuyInput holds one purchase attempt. AmountCents is the tendered payment,
// which must cover the product cost; any surplus is kept by the platform.
type BuyInput struct {
	BuyerAddress string
	ProductID    uint64
	AmountCents  int64
}

type service struct {
	orders      Repository
	productRepo products.Repository
	vendorRepo  vendors.Repository
	balanceRepo balances.Repository
	settings    platform.Repository
	tx          txRunner
	guard       *ledger.Guard
	recorder    *events.Recorder
	metrics     *metrics.LedgerMetrics
}

// NewService constructs the purchase engine.
func NewService(
	orders Repository,
	productRepo products.Repository,
	vendorRepo vendors.Repository,
	balanceRepo balances.Repository,
	settings platform.Repository,
	tx txRunner,
	guard *ledger.Guard,
	recorder *events.Recorder,
	ledgerMetrics *metrics.LedgerMetrics,
) (Service, error) {
	if orders == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if vendorRepo == nil {
		return nil, fmt.Errorf("vendor repository required")
	}
	if balanceRepo == nil {
		return nil, fmt.Errorf("balance repository required")
	}
	if settings == nil {
		return nil, fmt.Errorf("platform repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if guard == nil {
		return nil, fmt.Errorf("ledger guard required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("event recorder required")
	}
	return &service{
		orders:      orders,
		productRepo: productRepo,
		vendorRepo:  vendorRepo,
		balanceRepo: balanceRepo,
		settings:    settings,
		tx:          tx,
		guard:       guard,
		recorder:    recorder,
		metrics:     ledgerMetrics,
	}, nil
}

// Buy runs one purchase attempt as a single all-or-nothing transaction. The
// precondition checks run in a fixed order (missing product, stock, payment)
// before any state moves, so a rejected attempt leaves nothing behind.
func (s *service) Buy(ctx context.Context, input BuyInput) (_ *OrderDTO, err error) {
	defer s.observe("buy_product", time.Now(), &err)

	buyer := strings.TrimSpace(input.BuyerAddress)
	if buyer == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer address cannot be empty")
	}
	if input.AmountCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tendered amount cannot be negative")
	}

	var created *models.Order
	err = s.guard.Serialize(ctx, func() error {
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			txOrders := s.orders.WithTx(tx)
			txProducts := s.productRepo.WithTx(tx)
			txVendors := s.vendorRepo.WithTx(tx)
			txBalances := s.balanceRepo.WithTx(tx)
			txSettings := s.settings.WithTx(tx)

			product, findErr := txProducts.FindByID(ctx, input.ProductID)
			if findErr != nil {
				if errors.Is(findErr, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "db: load product")
			}
			if product.Stock == 0 {
				return pkgerrors.New(pkgerrors.CodeOutOfStock, "product is out of stock")
			}
			if input.AmountCents < product.CostCents {
				return pkgerrors.New(pkgerrors.CodeInsufficientPayment, "tendered amount does not cover product cost").
					WithDetails(map[string]int64{
						"cost_cents":     product.CostCents,
						"tendered_cents": input.AmountCents,
					})
			}

			feeSettings, settingsErr := txSettings.Get(ctx)
			if settingsErr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, settingsErr, "db: load platform settings")
			}

			platformFee := product.CostCents * int64(feeSettings.FeePercent) / 100
			vendorPayment := product.CostCents - platformFee
			surplus := input.AmountCents - product.CostCents

			sold, decErr := txProducts.DecrementStock(ctx, product.ID)
			if decErr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, decErr, "db: decrement stock")
			}
			if !sold {
				return pkgerrors.New(pkgerrors.CodeOutOfStock, "product is out of stock")
			}

			if creditErr := txBalances.Credit(ctx, product.VendorAddress, vendorPayment); creditErr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, creditErr, "db: credit vendor balance")
			}
			if platformFee+surplus > 0 {
				if addErr := txSettings.AddBalance(ctx, platformFee+surplus); addErr != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, addErr, "db: credit platform balance")
				}
			}

			priorOrders, countErr := txOrders.CountByBuyer(ctx, buyer)
			if countErr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, countErr, "db: count buyer orders")
			}

			order := &models.Order{
				BuyerAddress:       buyer,
				OrderIndex:         int(priorOrders),
				ProductID:          product.ID,
				ProductName:        product.Name,
				CostCents:          product.CostCents,
				VendorAddress:      product.VendorAddress,
				VendorID:           product.VendorID,
				PlatformFeeCents:   platformFee,
				VendorPaymentCents: vendorPayment,
			}
			if createErr := txOrders.Create(ctx, order); createErr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, createErr, "db: insert order")
			}
			if salesErr := txVendors.IncrementTotalSales(ctx, product.VendorID); salesErr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, salesErr, "db: bump vendor sales")
			}

			created = order
			return s.recorder.Record(ctx, tx, enums.EventTypeProductPurchased, events.ProductPurchased{
				BuyerAddress:       order.BuyerAddress,
				OrderIndex:         order.OrderIndex,
				ProductID:          order.ProductID,
				VendorAddress:      order.VendorAddress,
				PlatformFeeCents:   order.PlatformFeeCents,
				VendorPaymentCents: order.VendorPaymentCents,
			})
		})
	})
	if err != nil {
		return nil, err
	}
	s.metrics.AddPurchaseVolume(input.AmountCents)
	return NewOrderDTO(created), nil
}

func (s *service) HasUserPurchased(ctx context.Context, buyerAddress string, productID uint64) (bool, error) {
	purchased, err := s.orders.ExistsByBuyerAndProduct(ctx, strings.TrimSpace(buyerAddress), productID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check purchase history")
	}
	return purchased, nil
}

// GetOrderHistory returns the buyer's orders in append order.
func (s *service) GetOrderHistory(ctx context.Context, buyerAddress string) ([]OrderDTO, error) {
	list, err := s.orders.ListByBuyer(ctx, strings.TrimSpace(buyerAddress))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list buyer orders")
	}
	return NewOrderDTOs(list), nil
}

func (s *service) observe(operation string, start time.Time, err *error) {
	s.metrics.ObserveDuration(operation, time.Since(start))
	if *err != nil {
		code := pkgerrors.CodeInternal
		if typed := pkgerrors.As(*err); typed != nil {
			code = typed.Code()
		}
		s.metrics.IncRejected(operation, string(code))
		return
	}
	s.metrics.IncSuccess(operation)
}
