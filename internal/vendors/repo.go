package vendors

import (
	"context"

	"gorm.io/gorm"

	"github.com/sokochain/sokochain-backend/pkg/db/models"
)

// Repository manages persistence for vendor records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, vendor *models.Vendor) error
	FindByID(ctx context.Context, id uint64) (*models.Vendor, error)
	FindByAddress(ctx context.Context, address string) (*models.Vendor, error)
	List(ctx context.Context) ([]models.Vendor, error)
	Count(ctx context.Context) (int64, error)
	SetActive(ctx context.Context, id uint64, active bool) error
	IncrementProductCount(ctx context.Context, id uint64) error
	IncrementTotalSales(ctx context.Context, id uint64) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a vendor repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, vendor *models.Vendor) error {
	return r.db.WithContext(ctx).Create(vendor).Error
}

func (r *repository) FindByID(ctx context.Context, id uint64) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := r.db.WithContext(ctx).First(&vendor, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *repository) FindByAddress(ctx context.Context, address string) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := r.db.WithContext(ctx).First(&vendor, "address = ?", address).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *repository) List(ctx context.Context) ([]models.Vendor, error) {
	var list []models.Vendor
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Vendor{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) SetActive(ctx context.Context, id uint64, active bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Vendor{}).
		Where("id = ?", id).
		Update("is_active", active).Error
}

func (r *repository) IncrementProductCount(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).
		Model(&models.Vendor{}).
		Where("id = ?", id).
		UpdateColumn("product_count", gorm.Expr("product_count + 1")).Error
}

func (r *repository) IncrementTotalSales(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).
		Model(&models.Vendor{}).
		Where("id = ?", id).
		UpdateColumn("total_sales", gorm.Expr("total_sales + 1")).Error
}
