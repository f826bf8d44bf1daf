package platform

import (
	"context"

	"gorm.io/gorm"

	"github.com/sokochain/sokochain-backend/pkg/db/models"
)

// Repository manages the singleton platform settings row.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Get(ctx context.Context) (*models.PlatformSettings, error)
	Create(ctx context.Context, settings *models.PlatformSettings) error
	UpdateFee(ctx context.Context, feePercent int) error
	AddBalance(ctx context.Context, amountCents int64) error
	ZeroBalance(ctx context.Context) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a platform settings repository bound to the database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Get(ctx context.Context) (*models.PlatformSettings, error) {
	var settings models.PlatformSettings
	if err := r.db.WithContext(ctx).First(&settings, "id = ?", models.PlatformSettingsID).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *repository) Create(ctx context.Context, settings *models.PlatformSettings) error {
	settings.ID = models.PlatformSettingsID
	return r.db.WithContext(ctx).Create(settings).Error
}

func (r *repository) UpdateFee(ctx context.Context, feePercent int) error {
	return r.db.WithContext(ctx).
		Model(&models.PlatformSettings{}).
		Where("id = ?", models.PlatformSettingsID).
		Update("fee_percent", feePercent).Error
}

func (r *repository) AddBalance(ctx context.Context, amountCents int64) error {
	return r.db.WithContext(ctx).
		Model(&models.PlatformSettings{}).
		Where("id = ?", models.PlatformSettingsID).
		UpdateColumn("balance_cents", gorm.Expr("balance_cents + ?", amountCents)).Error
}

func (r *repository) ZeroBalance(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Model(&models.PlatformSettings{}).
		Where("id = ?", models.PlatformSettingsID).
		UpdateColumn("balance_cents", 0).Error
}
