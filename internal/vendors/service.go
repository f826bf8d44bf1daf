package vendors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/sokochain/sokochain-backend/internal/events"
	"github.com/sokochain/sokochain-backend/internal/ledger"
	"github.com/sokochain/sokochain-backend/pkg/db"
	"github.com/sokochain/sokochain-backend/pkg/db/models"
	"github.com/sokochain/sokochain-backend/pkg/enums"
	pkgerrors "github.com/sokochain/sokochain-backend/pkg/errors"
	"github.com/sokochain/sokochain-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes the vendor registry operations.
type Service interface {
	RegisterVendor(ctx context.Context, input RegisterVendorInput) (*VendorDTO, error)
	IsRegistered(ctx context.Context, address string) (bool, error)
	GetVendor(ctx context.Context, id uint64) (*VendorDTO, error)
	GetVendorByAddress(ctx context.Context, address string) (*VendorDTO, error)
	ListVendors(ctx context.Context) ([]VendorDTO, error)
	Count(ctx context.Context) (int64, error)
	DeactivateVendor(ctx context.Context, callerAddress string, id uint64) (*VendorDTO, error)
}

// RegisterVendorInput holds the validated payload to register a vendor.
type RegisterVendorInput struct {
	Address     string
	Name        string
	Description string
}

type ownerLoader interface {
	OwnerAddress(ctx context.Context) (string, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	guard    *ledger.Guard
	recorder *events.Recorder
	owner    ownerLoader
	metrics  *metrics.LedgerMetrics
}

// NewService constructs a vendor registry service.
func NewService(repo Repository, tx txRunner, guard *ledger.Guard, recorder *events.Recorder, owner ownerLoader, ledgerMetrics *metrics.LedgerMetrics) (Service, error) {
	if repo == nil {
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
	if owner == nil {
		return nil, fmt.Errorf("owner loader required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		guard:    guard,
		recorder: recorder,
		owner:    owner,
		metrics:  ledgerMetrics,
	}, nil
}

// RegisterVendor assigns the next sequential vendor id to an unclaimed address.
func (s *service) RegisterVendor(ctx context.Context, input RegisterVendorInput) (_ *VendorDTO, err error) {
	defer s.observe("register_vendor", time.Now(), &err)

	address := strings.TrimSpace(input.Address)
	if address == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor address cannot be empty")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor name cannot be empty")
	}

	var created *models.Vendor
	err = s.guard.Serialize(ctx, func() error {
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			txRepo := s.repo.WithTx(tx)

			if _, findErr := txRepo.FindByAddress(ctx, address); findErr == nil {
				return pkgerrors.New(pkgerrors.CodeConflict, "address already registered as vendor")
			} else if !errors.Is(findErr, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "db: lookup vendor")
			}

			vendor := &models.Vendor{
				Address:     address,
				Name:        name,
				Description: strings.TrimSpace(input.Description),
				IsActive:    true,
			}
			if createErr := txRepo.Create(ctx, vendor); createErr != nil {
				if db.IsUniqueViolation(createErr, "idx_vendors_address") {
					return pkgerrors.New(pkgerrors.CodeConflict, "address already registered as vendor")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, createErr, "db: insert vendor")
			}

			created = vendor
			return s.recorder.Record(ctx, tx, enums.EventTypeVendorRegistered, events.VendorRegistered{
				VendorID: vendor.ID,
				Address:  vendor.Address,
				Name:     vendor.Name,
			})
		})
	})
	if err != nil {
		return nil, err
	}
	return NewVendorDTO(created), nil
}

func (s *service) IsRegistered(ctx context.Context, address string) (bool, error) {
	_, err := s.repo.FindByAddress(ctx, strings.TrimSpace(address))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: lookup vendor")
	}
	return true, nil
}

func (s *service) GetVendor(ctx context.Context, id uint64) (*VendorDTO, error) {
	vendor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load vendor")
	}
	return NewVendorDTO(vendor), nil
}

func (s *service) GetVendorByAddress(ctx context.Context, address string) (*VendorDTO, error) {
	vendor, err := s.repo.FindByAddress(ctx, strings.TrimSpace(address))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load vendor")
	}
	return NewVendorDTO(vendor), nil
}

// ListVendors returns every registered vendor in id order, including
// deactivated ones.
func (s *service) ListVendors(ctx context.Context) ([]VendorDTO, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list vendors")
	}
	return NewVendorDTOs(list), nil
}

func (s *service) Count(ctx context.Context) (int64, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count vendors")
	}
	return count, nil
}

// DeactivateVendor flips the active flag off. Existing products and pending
// balances are left untouched.
func (s *service) DeactivateVendor(ctx context.Context, callerAddress string, id uint64) (_ *VendorDTO, err error) {
	defer s.observe("deactivate_vendor", time.Now(), &err)

	owner, err := s.owner.OwnerAddress(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(callerAddress) != owner {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the platform owner can deactivate vendors")
	}

	var updated *models.Vendor
	err = s.guard.Serialize(ctx, func() error {
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			txRepo := s.repo.WithTx(tx)

			vendor, findErr := txRepo.FindByID(ctx, id)
			if findErr != nil {
				if errors.Is(findErr, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "db: load vendor")
			}

			if setErr := txRepo.SetActive(ctx, id, false); setErr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, setErr, "db: deactivate vendor")
			}
			vendor.IsActive = false
			updated = vendor
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return NewVendorDTO(updated), nil
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
