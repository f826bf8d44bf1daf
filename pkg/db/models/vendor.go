package models

import "time"

// Vendor represents a registered seller identity tied one-to-one to an
// account address. The id is assigned sequentially and never changes.
type Vendor struct {
	ID           uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Address      string    `gorm:"column:address;uniqueIndex:idx_vendors_address;not null"`
	Name         string    `gorm:"column:name;not null"`
	Description  string    `gorm:"column:description;not null;default:''"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true"`
	TotalSales   int64     `gorm:"column:total_sales;not null;default:0"`
	ProductCount int       `gorm:"column:product_count;not null;default:0"`
	RegisteredAt time.Time `gorm:"column:registered_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
