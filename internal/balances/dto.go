package balances

import (
	"time"

	"github.com/sokochain/sokochain-backend/pkg/db/models"
	"github.com/sokochain/sokochain-backend/pkg/enums"
)

// WithdrawalDTO reports the outcome of one withdrawal. A zero amount means
// the caller had nothing to withdraw and no settlement was made.
type WithdrawalDTO struct {
	Recipient   string           `json:"recipient"`
	Kind        enums.PayoutKind `json:"kind"`
	AmountCents int64            `json:"amount_cents"`
	Reference   string           `json:"reference,omitempty"`
}

// PayoutDTO is the read projection of a settled withdrawal.
type PayoutDTO struct {
	ID          uint64           `json:"id"`
	Kind        enums.PayoutKind `json:"kind"`
	Recipient   string           `json:"recipient"`
	AmountCents int64            `json:"amount_cents"`
	Reference   string           `json:"reference"`
	CreatedAt   time.Time        `json:"created_at"`
}

// NewPayoutDTOs projects payout rows preserving settlement order.
func NewPayoutDTOs(list []models.Payout) []PayoutDTO {
	out := make([]PayoutDTO, 0, len(list))
	for i := range list {
		out = append(out, PayoutDTO{
			ID:          list[i].ID,
			Kind:        list[i].Kind,
			Recipient:   list[i].Recipient,
			AmountCents: list[i].AmountCents,
			Reference:   list[i].Reference,
			CreatedAt:   list[i].CreatedAt,
		})
	}
	return out
}
