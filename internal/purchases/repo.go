package purchases

import (
	"context"

	"gorm.io/gorm"

	"github.com/sokochain/sokochain-backend/pkg/db/models"
)

// Repository manages the append-only order history.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	CountByBuyer(ctx context.Context, buyerAddress string) (int64, error)
	ListByBuyer(ctx context.Context, buyerAddress string) ([]models.Order, error)
	ExistsByBuyerAndProduct(ctx context.Context, buyerAddress string, productID uint64) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an order repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) CountByBuyer(ctx context.Context, buyerAddress string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("buyer_address = ?", buyerAddress).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) ListByBuyer(ctx context.Context, buyerAddress string) ([]models.Order, error) {
	var list []models.Order
	if err := r.db.WithContext(ctx).
		Where("buyer_address = ?", buyerAddress).
		Order("order_index ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *repository) ExistsByBuyerAndProduct(ctx context.Context, buyerAddress string, productID uint64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("buyer_address = ? AND product_id = ?", buyerAddress, productID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
