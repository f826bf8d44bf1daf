package platform

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/sokochain/sokochain-backend/internal/events"
	"github.com/sokochain/sokochain-backend/internal/ledger"
	"github.com/sokochain/sokochain-backend/pkg/db/models"
	"github.com/sokochain/sokochain-backend/pkg/enums"
	pkgerrors "github.com/sokochain/sokochain-backend/pkg/errors"
	"github.com/sokochain/sokochain-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// counter reports how many rows a registry currently holds. Satisfied by the
// vendor and product repositories.
type counter interface {
	Count(ctx context.Context) (int64, error)
}

// Service owns the platform settings row: the owner address, the active fee
// percentage, and the marketplace summary.
type Service interface {
	EnsureSettings(ctx context.Context, ownerAddress string, initialFeePercent int) (*SettingsDTO, error)
	OwnerAddress(ctx context.Context) (string, error)
	FeePercent(ctx context.Context) (int, error)
	GetSettings(ctx context.Context) (*SettingsDTO, error)
	Summary(ctx context.Context) (*SummaryDTO, error)
	UpdateFee(ctx context.Context, callerAddress string, newPercent int) (*SettingsDTO, error)
}

type service struct {
	repo       Repository
	tx         txRunner
	guard      *ledger.Guard
	recorder   *events.Recorder
	vendors    counter
	products   counter
	maxPercent int
	metrics    *metrics.LedgerMetrics
}

// NewService constructs the platform settings service. maxPercent caps every
// fee update, matching the bound enforced at bootstrap.
func NewService(repo Repository, tx txRunner, guard *ledger.Guard, recorder *events.Recorder, vendors, products counter, maxPercent int, ledgerMetrics *metrics.LedgerMetrics) (Service, error) {
	if repo == nil {
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
	if vendors == nil || products == nil {
		return nil, fmt.Errorf("vendor and product counters required")
	}
	if maxPercent <= 0 {
		return nil, fmt.Errorf("max fee percent must be positive")
	}
	return &service{
		repo:       repo,
		tx:         tx,
		guard:      guard,
		recorder:   recorder,
		vendors:    vendors,
		products:   products,
		maxPercent: maxPercent,
		metrics:    ledgerMetrics,
	}, nil
}

// EnsureSettings creates the settings row on first boot and is a no-op when
// the row already exists. The stored owner and fee win over the configured
// values on subsequent boots.
func (s *service) EnsureSettings(ctx context.Context, ownerAddress string, initialFeePercent int) (*SettingsDTO, error) {
	ownerAddress = strings.TrimSpace(ownerAddress)
	if ownerAddress == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "platform owner address cannot be empty")
	}
	if initialFeePercent < 0 || initialFeePercent > s.maxPercent {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("initial fee percent must be between 0 and %d", s.maxPercent))
	}

	var settings *models.PlatformSettings
	err := s.guard.Serialize(ctx, func() error {
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			txRepo := s.repo.WithTx(tx)

			existing, err := txRepo.Get(ctx)
			if err == nil {
				settings = existing
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load platform settings")
			}

			created := &models.PlatformSettings{
				OwnerAddress: ownerAddress,
				FeePercent:   initialFeePercent,
			}
			if err := txRepo.Create(ctx, created); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create platform settings")
			}
			settings = created
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return NewSettingsDTO(settings), nil
}

func (s *service) OwnerAddress(ctx context.Context) (string, error) {
	settings, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	return settings.OwnerAddress, nil
}

func (s *service) FeePercent(ctx context.Context) (int, error) {
	settings, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	return settings.FeePercent, nil
}

func (s *service) GetSettings(ctx context.Context) (*SettingsDTO, error) {
	settings, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return NewSettingsDTO(settings), nil
}

// Summary aggregates the headline marketplace numbers for the admin surface.
func (s *service) Summary(ctx context.Context) (*SummaryDTO, error) {
	settings, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	vendorCount, err := s.vendors.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count vendors")
	}
	productCount, err := s.products.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count products")
	}
	return &SummaryDTO{
		OwnerAddress: settings.OwnerAddress,
		FeePercent:   settings.FeePercent,
		BalanceCents: settings.BalanceCents,
		VendorCount:  vendorCount,
		ProductCount: productCount,
	}, nil
}

// UpdateFee changes the fee percentage applied to future purchases. Orders
// already recorded keep the split computed at purchase time.
func (s *service) UpdateFee(ctx context.Context, callerAddress string, newPercent int) (_ *SettingsDTO, err error) {
	defer s.observe("update_fee", time.Now(), &err)

	if newPercent < 0 || newPercent > s.maxPercent {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("fee percent must be between 0 and %d", s.maxPercent))
	}

	var updated *models.PlatformSettings
	err = s.guard.Serialize(ctx, func() error {
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			txRepo := s.repo.WithTx(tx)

			settings, loadErr := txRepo.Get(ctx)
			if loadErr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, loadErr, "db: load platform settings")
			}
			if strings.TrimSpace(callerAddress) != settings.OwnerAddress {
				return pkgerrors.New(pkgerrors.CodeForbidden, "only the platform owner can update the fee")
			}

			oldPercent := settings.FeePercent
			if updateErr := txRepo.UpdateFee(ctx, newPercent); updateErr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, updateErr, "db: update fee percent")
			}
			settings.FeePercent = newPercent
			updated = settings

			return s.recorder.Record(ctx, tx, enums.EventTypePlatformFeeUpdated, events.PlatformFeeUpdated{
				OldPercent: oldPercent,
				NewPercent: newPercent,
			})
		})
	})
	if err != nil {
		return nil, err
	}
	return NewSettingsDTO(updated), nil
}

func (s *service) load(ctx context.Context) (*models.PlatformSettings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeInternal, "platform settings not initialized")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load platform settings")
	}
	return settings, nil
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
