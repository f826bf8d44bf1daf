package balances

import (
	"context"

	"gorm.io/gorm"

	"github.com/sokochain/sokochain-backend/pkg/db/models"
)

// PayoutRepository persists completed withdrawal settlements.
type PayoutRepository interface {
	WithTx(tx *gorm.DB) PayoutRepository
	Create(ctx context.Context, payout *models.Payout) error
	ListByRecipient(ctx context.Context, recipient string) ([]models.Payout, error)
	TotalByKind(ctx context.Context, kind string) (int64, error)
}

type payoutRepository struct {
	db *gorm.DB
}

// NewPayoutRepository returns a payout repository bound to the database.
func NewPayoutRepository(db *gorm.DB) PayoutRepository {
	return &payoutRepository{db: db}
}

func (r *payoutRepository) WithTx(tx *gorm.DB) PayoutRepository {
	if tx == nil {
		return r
	}
	return &payoutRepository{db: tx}
}

func (r *payoutRepository) Create(ctx context.Context, payout *models.Payout) error {
	return r.db.WithContext(ctx).Create(payout).Error
}

func (r *payoutRepository) ListByRecipient(ctx context.Context, recipient string) ([]models.Payout, error) {
	var list []models.Payout
	if err := r.db.WithContext(ctx).
		Where("recipient = ?", recipient).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *payoutRepository) TotalByKind(ctx context.Context, kind string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Payout{}).
		Where("kind = ?", kind).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
