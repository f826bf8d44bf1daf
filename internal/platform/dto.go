package platform

import "github.com/sokochain/sokochain-backend/pkg/db/models"

// SettingsDTO is the read projection of the platform settings row.
type SettingsDTO struct {
	OwnerAddress string `json:"owner_address"`
	FeePercent   int    `json:"fee_percent"`
	BalanceCents int64  `json:"balance_cents"`
}

// SummaryDTO is the admin dashboard aggregate.
type SummaryDTO struct {
	OwnerAddress string `json:"owner_address"`
	FeePercent   int    `json:"fee_percent"`
	BalanceCents int64  `json:"balance_cents"`
	VendorCount  int64  `json:"vendor_count"`
	ProductCount int64  `json:"product_count"`
}

// NewSettingsDTO projects the settings model into its API shape.
func NewSettingsDTO(settings *models.PlatformSettings) *SettingsDTO {
	if settings == nil {
		return nil
	}
	return &SettingsDTO{
		OwnerAddress: settings.OwnerAddress,
		FeePercent:   settings.FeePercent,
		BalanceCents: settings.BalanceCents,
	}
}
