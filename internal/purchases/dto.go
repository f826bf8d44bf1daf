package purchases

import (
	"time"

	"github.com/sokochain/sokochain-backend/pkg/db/models"
)

// OrderDTO is the read projection of one completed purchase.
type OrderDTO struct {
	ID                 uint64    `json:"id"`
	BuyerAddress       string    `json:"buyer_address"`
	OrderIndex         int       `json:"order_index"`
	ProductID          uint64    `json:"product_id"`
	ProductName        string    `json:"product_name"`
	CostCents          int64     `json:"cost_cents"`
	VendorAddress      string    `json:"vendor_address"`
	VendorID           uint64    `json:"vendor_id"`
	PlatformFeeCents   int64     `json:"platform_fee_cents"`
	VendorPaymentCents int64     `json:"vendor_payment_cents"`
	CreatedAt          time.Time `json:"created_at"`
}

// NewOrderDTO projects an order model into its API shape.
func NewOrderDTO(order *models.Order) *OrderDTO {
	if order == nil {
		return nil
	}
	return &OrderDTO{
		ID:                 order.ID,
		BuyerAddress:       order.BuyerAddress,
		OrderIndex:         order.OrderIndex,
		ProductID:          order.ProductID,
		ProductName:        order.ProductName,
		CostCents:          order.CostCents,
		VendorAddress:      order.VendorAddress,
		VendorID:           order.VendorID,
		PlatformFeeCents:   order.PlatformFeeCents,
		VendorPaymentCents: order.VendorPaymentCents,
		CreatedAt:          order.CreatedAt,
	}
}

// NewOrderDTOs projects a slice of orders preserving append order.
func NewOrderDTOs(list []models.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(list))
	for i := range list {
		out = append(out, *NewOrderDTO(&list[i]))
	}
	return out
}
