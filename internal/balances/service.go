package balances

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/sokochain/sokochain-backend/internal/ledger"
	"github.com/sokochain/sokochain-backend/internal/platform"
	"github.com/sokochain/sokochain-backend/pkg/enums"
	pkgerrors "github.com/sokochain/sokochain-backend/pkg/errors"
	"github.com/sokochain/sokochain-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes balance reads and the pull-based withdrawals.
type Service interface {
	GetVendorBalance(ctx context.Context, address string) (int64, error)
	GetPlatformBalance(ctx context.Context) (int64, error)
	WithdrawVendorEarnings(ctx context.Context, callerAddress string) (*WithdrawalDTO, error)
	WithdrawPlatformFees(ctx context.Context, callerAddress string) (*WithdrawalDTO, error)
	ListPayouts(ctx context.Context, recipient string) ([]PayoutDTO, error)
}

type service struct {
	repo     Repository
	payouts  PayoutRepository
	settings platform.Repository
	settler  Settler
	tx       txRunner
	guard    *ledger.Guard
	metrics  *metrics.LedgerMetrics
}

// NewService constructs the balance ledger service.
func NewService(repo Repository, payouts PayoutRepository, settings platform.Repository, settler Settler, tx txRunner, guard *ledger.Guard, ledgerMetrics *metrics.LedgerMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("balance repository required")
	}
	if payouts == nil {
		return nil, fmt.Errorf("payout repository required")
	}
	if settings == nil {
		return nil, fmt.Errorf("platform repository required")
	}
	if settler == nil {
		return nil, fmt.Errorf("settler required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if guard == nil {
		return nil, fmt.Errorf("ledger guard required")
	}
	return &service{
		repo:     repo,
		payouts:  payouts,
		settings: settings,
		settler:  settler,
		tx:       tx,
		guard:    guard,
		metrics:  ledgerMetrics,
	}, nil
}

// GetVendorBalance reports the withdrawable amount for an address. Addresses
// that never sold anything read as zero.
func (s *service) GetVendorBalance(ctx context.Context, address string) (int64, error) {
	balance, err := s.repo.FindByAddress(ctx, strings.TrimSpace(address))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load vendor balance")
	}
	return balance.AmountCents, nil
}

func (s *service) GetPlatformBalance(ctx context.Context) (int64, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load platform settings")
	}
	return settings.BalanceCents, nil
}

// WithdrawVendorEarnings pays out the caller's full balance. The balance row
// is zeroed before the settlement is attempted, inside one transaction, so a
// concurrent or re-entrant withdrawal can never pay the same funds twice.
func (s *service) WithdrawVendorEarnings(ctx context.Context, callerAddress string) (_ *WithdrawalDTO, err error) {
	defer s.observe("withdraw_vendor", time.Now(), &err)

	caller := strings.TrimSpace(callerAddress)
	if caller == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "caller address cannot be empty")
	}

	var result *WithdrawalDTO
	err = s.guard.Serialize(ctx, func() error {
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			txRepo := s.repo.WithTx(tx)

			balance, findErr := txRepo.FindByAddress(ctx, caller)
			if findErr != nil {
				if errors.Is(findErr, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeForbidden, "caller has no balance entry")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "db: load vendor balance")
			}

			amount := balance.AmountCents
			if amount == 0 {
				result = &WithdrawalDTO{Recipient: caller, Kind: enums.PayoutKindVendor}
				return nil
			}

			if zeroErr := txRepo.Zero(ctx, caller); zeroErr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, zeroErr, "db: zero vendor balance")
			}
			reference, settleErr := s.settler.Settle(ctx, tx, enums.PayoutKindVendor, caller, amount)
			if settleErr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, settleErr, "settle vendor withdrawal")
			}

			result = &WithdrawalDTO{
				Recipient:   caller,
				Kind:        enums.PayoutKindVendor,
				AmountCents: amount,
				Reference:   reference,
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	s.metrics.AddWithdrawal(string(enums.PayoutKindVendor), result.AmountCents)
	return result, nil
}

// WithdrawPlatformFees pays the accumulated platform balance to the owner
// under the same zero-then-transfer discipline.
func (s *service) WithdrawPlatformFees(ctx context.Context, callerAddress string) (_ *WithdrawalDTO, err error) {
	defer s.observe("withdraw_platform", time.Now(), &err)

	caller := strings.TrimSpace(callerAddress)

	var result *WithdrawalDTO
	err = s.guard.Serialize(ctx, func() error {
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			txSettings := s.settings.WithTx(tx)

			settings, loadErr := txSettings.Get(ctx)
			if loadErr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, loadErr, "db: load platform settings")
			}
			if caller != settings.OwnerAddress {
				return pkgerrors.New(pkgerrors.CodeForbidden, "only the platform owner can withdraw fees")
			}

			amount := settings.BalanceCents
			if amount == 0 {
				result = &WithdrawalDTO{Recipient: caller, Kind: enums.PayoutKindPlatform}
				return nil
			}

			if zeroErr := txSettings.ZeroBalance(ctx); zeroErr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, zeroErr, "db: zero platform balance")
			}
			reference, settleErr := s.settler.Settle(ctx, tx, enums.PayoutKindPlatform, caller, amount)
			if settleErr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, settleErr, "settle platform withdrawal")
			}

			result = &WithdrawalDTO{
				Recipient:   caller,
				Kind:        enums.PayoutKindPlatform,
				AmountCents: amount,
				Reference:   reference,
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	s.metrics.AddWithdrawal(string(enums.PayoutKindPlatform), result.AmountCents)
	return result, nil
}

func (s *service) ListPayouts(ctx context.Context, recipient string) ([]PayoutDTO, error) {
	list, err := s.payouts.ListByRecipient(ctx, strings.TrimSpace(recipient))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list payouts")
	}
	return NewPayoutDTOs(list), nil
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
