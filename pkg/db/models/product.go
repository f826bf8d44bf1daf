package models

import "time"

// Product represents a vendor listing. Stock only ever moves down, one unit
// per completed purchase, and never below zero.
type Product struct {
	ID            uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Name          string    `gorm:"column:name;not null"`
	Category      string    `gorm:"column:category;not null;default:''"`
	ImageURL      string    `gorm:"column:image_url;not null;default:''"`
	CostCents     int64     `gorm:"column:cost_cents;not null"`
	Rating        int       `gorm:"column:rating;not null"`
	Stock         int       `gorm:"column:stock;not null"`
	VendorAddress string    `gorm:"column:vendor_address;index:idx_products_vendor_address;not null"`
	VendorID      uint64    `gorm:"column:vendor_id;not null"`
	IsActive      bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
