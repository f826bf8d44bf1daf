package events

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/sokochain/sokochain-backend/pkg/db/models"
	"github.com/sokochain/sokochain-backend/pkg/enums"
)

// Recorder appends ledger events inside the transaction of the mutation that
// caused them, so an event exists iff its mutation committed.
type Recorder struct {
	repo Repository
}

// NewRecorder wires an event recorder with the provided repository.
func NewRecorder(repo Repository) (*Recorder, error) {
	if repo == nil {
		return nil, fmt.Errorf("event repository required")
	}
	return &Recorder{repo: repo}, nil
}

// Record serializes the payload and appends it as an event of the given type.
func (r *Recorder) Record(ctx context.Context, tx *gorm.DB, eventType enums.EventType, payload any) error {
	if !eventType.IsValid() {
		return fmt.Errorf("invalid event type %q", eventType)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	event := &models.LedgerEvent{
		Type:    eventType,
		Payload: raw,
	}
	return r.repo.WithTx(tx).Append(ctx, event)
}

// List returns emitted events in append order.
func (r *Recorder) List(ctx context.Context, limit int) ([]EventDTO, error) {
	list, err := r.repo.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	return NewEventDTOs(list), nil
}
