package events

import (
	"context"

	"gorm.io/gorm"

	"github.com/sokochain/sokochain-backend/pkg/db/models"
)

// Repository manages persistence for emitted ledger events.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Append(ctx context.Context, event *models.LedgerEvent) error
	List(ctx context.Context, limit int) ([]models.LedgerEvent, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an event repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Append(ctx context.Context, event *models.LedgerEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) List(ctx context.Context, limit int) ([]models.LedgerEvent, error) {
	query := r.db.WithContext(ctx).Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var events []models.LedgerEvent
	if err := query.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
