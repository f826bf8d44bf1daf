package models

import "time"

// VendorBalance accumulates the withdrawable earnings for one vendor address.
// A row exists from the vendor's first sale onward; withdrawal zeroes the
// amount but keeps the row.
type VendorBalance struct {
	Address     string    `gorm:"column:address;primaryKey"`
	AmountCents int64     `gorm:"column:amount_cents;not null;default:0"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
