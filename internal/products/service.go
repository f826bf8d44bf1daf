package products

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/sokochain/sokochain-backend/internal/events"
	"github.com/sokochain/sokochain-backend/internal/ledger"
	"github.com/sokochain/sokochain-backend/internal/vendors"
	"github.com/sokochain/sokochain-backend/pkg/db/models"
	"github.com/sokochain/sokochain-backend/pkg/enums"
	pkgerrors "github.com/sokochain/sokochain-backend/pkg/errors"
	"github.com/sokochain/sokochain-backend/pkg/metrics"
)

const (
	minRating = 1
	maxRating = 5
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes catalog listing and lookup operations.
type Service interface {
	ListProduct(ctx context.Context, input ListProductInput) (*ProductDTO, error)
	GetProduct(ctx context.Context, id uint64) (*ProductDTO, error)
	ListProducts(ctx context.Context) ([]ProductDTO, error)
	ListVendorProducts(ctx context.Context, vendorAddress string) ([]ProductDTO, error)
	Count(ctx context.Context) (int64, error)
}

// ListProductInput holds the validated payload to put a product on the shelf.
type ListProductInput struct {
	VendorAddress string
	Name          string
	Category      string
	ImageURL      string
	CostCents     int64
	Rating        int
	Stock         int
}

type service struct {
	repo     Repository
	vendors  vendors.Repository
	tx       txRunner
	guard    *ledger.Guard
	recorder *events.Recorder
	metrics  *metrics.LedgerMetrics
}

// NewService constructs the product catalog service.
func NewService(repo Repository, vendorRepo vendors.Repository, tx txRunner, guard *ledger.Guard, recorder *events.Recorder, ledgerMetrics *metrics.LedgerMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if vendorRepo == nil {
		return nil, fmt.Errorf("vendor repository required")
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
		repo:     repo,
		vendors:  vendorRepo,
		tx:       tx,
		guard:    guard,
		recorder: recorder,
		metrics:  ledgerMetrics,
	}, nil
}

// ListProduct creates a catalog entry owned by the calling vendor. The caller
// must be a registered, active vendor.
func (s *service) ListProduct(ctx context.Context, input ListProductInput) (_ *ProductDTO, err error) {
	defer s.observe("list_product", time.Now(), &err)

	if err := validateListInput(&input); err != nil {
		return nil, err
	}

	var created *models.Product
	err = s.guard.Serialize(ctx, func() error {
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			txRepo := s.repo.WithTx(tx)
			txVendors := s.vendors.WithTx(tx)

			vendor, findErr := txVendors.FindByAddress(ctx, input.VendorAddress)
			if findErr != nil {
				if errors.Is(findErr, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeForbidden, "caller is not a registered vendor")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "db: lookup vendor")
			}
			if !vendor.IsActive {
				return pkgerrors.New(pkgerrors.CodeForbidden, "vendor is deactivated")
			}

			product := &models.Product{
				Name:          input.Name,
				Category:      input.Category,
				ImageURL:      input.ImageURL,
				CostCents:     input.CostCents,
				Rating:        input.Rating,
				Stock:         input.Stock,
				VendorAddress: vendor.Address,
				VendorID:      vendor.ID,
				IsActive:      true,
			}
			if createErr := txRepo.Create(ctx, product); createErr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, createErr, "db: insert product")
			}
			if incErr := txVendors.IncrementProductCount(ctx, vendor.ID); incErr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, incErr, "db: bump vendor product count")
			}

			created = product
			return s.recorder.Record(ctx, tx, enums.EventTypeProductListed, events.ProductListed{
				ProductID:     product.ID,
				Name:          product.Name,
				Category:      product.Category,
				ImageURL:      product.ImageURL,
				CostCents:     product.CostCents,
				Rating:        product.Rating,
				Stock:         product.Stock,
				VendorAddress: product.VendorAddress,
				VendorID:      product.VendorID,
			})
		})
	})
	if err != nil {
		return nil, err
	}
	return NewProductDTO(created), nil
}

func (s *service) GetProduct(ctx context.Context, id uint64) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	return NewProductDTO(product), nil
}

// ListProducts returns the full catalog in id order, including listings from
// vendors that were later deactivated.
func (s *service) ListProducts(ctx context.Context) ([]ProductDTO, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}
	return NewProductDTOs(list), nil
}

func (s *service) ListVendorProducts(ctx context.Context, vendorAddress string) ([]ProductDTO, error) {
	list, err := s.repo.ListByVendorAddress(ctx, strings.TrimSpace(vendorAddress))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list vendor products")
	}
	return NewProductDTOs(list), nil
}

func (s *service) Count(ctx context.Context) (int64, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count products")
	}
	return count, nil
}

func validateListInput(input *ListProductInput) error {
	input.VendorAddress = strings.TrimSpace(input.VendorAddress)
	if input.VendorAddress == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "vendor address cannot be empty")
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be empty")
	}
	if input.CostCents <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "product cost must be greater than zero")
	}
	if input.Rating < minRating || input.Rating > maxRating {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("product rating must be between %d and %d", minRating, maxRating))
	}
	if input.Stock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "product stock cannot be negative")
	}
	input.Category = strings.TrimSpace(input.Category)
	input.ImageURL = strings.TrimSpace(input.ImageURL)
	return nil
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
