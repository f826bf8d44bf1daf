package models

import (
	"encoding/json"
	"time"

	"github.com/sokochain/sokochain-backend/pkg/enums"
)

// LedgerEvent records an immutable notification emitted by a mutating ledger
// operation, written in the same transaction as the mutation itself.
type LedgerEvent struct {
	ID        uint64          `gorm:"column:id;primaryKey;autoIncrement"`
	Type      enums.EventType `gorm:"column:type;not null"`
	Payload   json.RawMessage `gorm:"column:payload;type:jsonb"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
