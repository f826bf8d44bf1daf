package balances

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sokochain/sokochain-backend/pkg/db/models"
)

// Repository manages the per-vendor withdrawable balance rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByAddress(ctx context.Context, address string) (*models.VendorBalance, error)
	Credit(ctx context.Context, address string, amountCents int64) error
	Zero(ctx context.Context, address string) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a balance repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByAddress(ctx context.Context, address string) (*models.VendorBalance, error) {
	var balance models.VendorBalance
	if err := r.db.WithContext(ctx).First(&balance, "address = ?", address).Error; err != nil {
		return nil, err
	}
	return &balance, nil
}

// Credit adds to a balance, creating the row on the vendor's first sale.
func (r *repository) Credit(ctx context.Context, address string, amountCents int64) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "address"}},
			DoUpdates: clause.Assignments(map[string]any{
				"amount_cents": gorm.Expr("vendor_balances.amount_cents + ?", amountCents),
			}),
		}).
		Create(&models.VendorBalance{Address: address, AmountCents: amountCents}).Error
}

func (r *repository) Zero(ctx context.Context, address string) error {
	return r.db.WithContext(ctx).
		Model(&models.VendorBalance{}).
		Where("address = ?", address).
		UpdateColumn("amount_cents", 0).Error
}
