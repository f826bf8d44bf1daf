package balances

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sokochain/sokochain-backend/pkg/db/models"
	"github.com/sokochain/sokochain-backend/pkg/enums"
)

// Settler moves withdrawn funds to their recipient. The ledger calls it after
// the balance has already been zeroed inside the same transaction, so a failed
// settlement rolls the balance back instead of losing it.
type Settler interface {
	Settle(ctx context.Context, tx *gorm.DB, kind enums.PayoutKind, recipient string, amountCents int64) (string, error)
}

type payoutSettler struct {
	payouts PayoutRepository
}

// NewPayoutSettler returns the default settler, which records each settlement
// as a payout row keyed by a fresh reference.
func NewPayoutSettler(payouts PayoutRepository) (Settler, error) {
	if payouts == nil {
		return nil, fmt.Errorf("payout repository required")
	}
	return &payoutSettler{payouts: payouts}, nil
}

func (s *payoutSettler) Settle(ctx context.Context, tx *gorm.DB, kind enums.PayoutKind, recipient string, amountCents int64) (string, error) {
	reference := uuid.NewString()
	payout := &models.Payout{
		Kind:        kind,
		Recipient:   recipient,
		AmountCents: amountCents,
		Reference:   reference,
	}
	if err := s.payouts.WithTx(tx).Create(ctx, payout); err != nil {
		return "", err
	}
	return reference, nil
}
