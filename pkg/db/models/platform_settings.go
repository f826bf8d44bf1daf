package models

import "time"

// PlatformSettings is the single-row table holding the platform owner, the
// active fee percentage, and the platform's accumulated withdrawable balance.
// The owner address is written once at bootstrap and treated as immutable.
type PlatformSettings struct {
	ID           uint64    `gorm:"column:id;primaryKey"`
	OwnerAddress string    `gorm:"column:owner_address;not null"`
	FeePercent   int       `gorm:"column:fee_percent;not null;default:5"`
	BalanceCents int64     `gorm:"column:balance_cents;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// PlatformSettingsID is the fixed primary key of the singleton settings row.
const PlatformSettingsID uint64 = 1
