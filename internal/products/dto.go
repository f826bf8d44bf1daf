package products

import (
	"time"

	"github.com/sokochain/sokochain-backend/pkg/db/models"
)

// ProductDTO is the read projection of a catalog listing.
type ProductDTO struct {
	ID            uint64    `json:"id"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	ImageURL      string    `json:"image_url"`
	CostCents     int64     `json:"cost_cents"`
	Rating        int       `json:"rating"`
	Stock         int       `json:"stock"`
	VendorAddress string    `json:"vendor_address"`
	VendorID      uint64    `json:"vendor_id"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewProductDTO projects a product model into its API shape.
func NewProductDTO(product *models.Product) *ProductDTO {
	if product == nil {
		return nil
	}
	return &ProductDTO{
		ID:            product.ID,
		Name:          product.Name,
		Category:      product.Category,
		ImageURL:      product.ImageURL,
		CostCents:     product.CostCents,
		Rating:        product.Rating,
		Stock:         product.Stock,
		VendorAddress: product.VendorAddress,
		VendorID:      product.VendorID,
		IsActive:      product.IsActive,
		CreatedAt:     product.CreatedAt,
	}
}

// NewProductDTOs projects a slice of product models preserving order.
func NewProductDTOs(list []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(list))
	for i := range list {
		out = append(out, *NewProductDTO(&list[i]))
	}
	return out
}
