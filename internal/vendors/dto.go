package vendors

import (
	"time"

	"github.com/sokochain/sokochain-backend/pkg/db/models"
)

// VendorDTO is the read projection of a vendor record.
type VendorDTO struct {
	ID           uint64    `json:"id"`
	Address      string    `json:"address"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	IsActive     bool      `json:"is_active"`
	TotalSales   int64     `json:"total_sales"`
	ProductCount int       `json:"product_count"`
	RegisteredAt time.Time `json:"registered_at"`
}

// NewVendorDTO projects a vendor model into its API shape.
func NewVendorDTO(vendor *models.Vendor) *VendorDTO {
	if vendor == nil {
		return nil
	}
	return &VendorDTO{
		ID:           vendor.ID,
		Address:      vendor.Address,
		Name:         vendor.Name,
		Description:  vendor.Description,
		IsActive:     vendor.IsActive,
		TotalSales:   vendor.TotalSales,
		ProductCount: vendor.ProductCount,
		RegisteredAt: vendor.RegisteredAt,
	}
}

// NewVendorDTOs projects a slice of vendor models preserving order.
func NewVendorDTOs(list []models.Vendor) []VendorDTO {
	out := make([]VendorDTO, 0, len(list))
	for i := range list {
		out = append(out, *NewVendorDTO(&list[i]))
	}
	return out
}
