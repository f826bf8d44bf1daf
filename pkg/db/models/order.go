package models

import "time"

// Order is the immutable record of one completed purchase. It snapshots the
// product and the fee split at the moment of sale; later fee updates never
// touch it. OrderIndex is the zero-based position within the buyer's history.
type Order struct {
	ID                 uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	BuyerAddress       string    `gorm:"column:buyer_address;index:idx_orders_buyer_address;not null"`
	OrderIndex         int       `gorm:"column:order_index;not null"`
	ProductID          uint64    `gorm:"column:product_id;not null"`
	ProductName        string    `gorm:"column:product_name;not null"`
	CostCents          int64     `gorm:"column:cost_cents;not null"`
	VendorAddress      string    `gorm:"column:vendor_address;not null"`
	VendorID           uint64    `gorm:"column:vendor_id;not null"`
	PlatformFeeCents   int64     `gorm:"column:platform_fee_cents;not null"`
	VendorPaymentCents int64     `gorm:"column:vendor_payment_cents;not null"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
}
