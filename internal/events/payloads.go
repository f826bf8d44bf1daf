package events

// VendorRegistered carries the fields observers receive when a vendor joins.
type VendorRegistered struct {
	VendorID uint64 `json:"vendor_id"`
	Address  string `json:"address"`
	Name     string `json:"name"`
}

// ProductListed mirrors the full listing as accepted by the catalog.
type ProductListed struct {
	ProductID     uint64 `json:"product_id"`
	Name          string `json:"name"`
	Category      string `json:"category"`
	ImageURL      string `json:"image_url"`
	CostCents     int64  `json:"cost_cents"`
	Rating        int    `json:"rating"`
	Stock         int    `json:"stock"`
	VendorAddress string `json:"vendor_address"`
	VendorID      uint64 `json:"vendor_id"`
}

// ProductPurchased snapshots the fee split of one completed purchase.
type ProductPurchased struct {
	BuyerAddress       string `json:"buyer_address"`
	OrderIndex         int    `json:"order_index"`
	ProductID          uint64 `json:"product_id"`
	VendorAddress      string `json:"vendor_address"`
	PlatformFeeCents   int64  `json:"platform_fee_cents"`
	VendorPaymentCents int64  `json:"vendor_payment_cents"`
}

// PlatformFeeUpdated records an owner fee change taking immediate effect.
type PlatformFeeUpdated struct {
	OldPercent int `json:"old_percent"`
	NewPercent int `json:"new_percent"`
}
