package models

import (
	"time"

	"github.com/sokochain/sokochain-backend/pkg/enums"
)

// Payout records one completed withdrawal settlement. The sum of payout
// amounts plus live balances always equals the sum of accepted payments.
type Payout struct {
	ID          uint64           `gorm:"column:id;primaryKey;autoIncrement"`
	Kind        enums.PayoutKind `gorm:"column:kind;not null"`
	Recipient   string           `gorm:"column:recipient;index:idx_payouts_recipient;not null"`
	AmountCents int64            `gorm:"column:amount_cents;not null"`
	Reference   string           `gorm:"column:reference;uniqueIndex:idx_payouts_reference;not null"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
}
