package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/sokochain/sokochain-backend/pkg/db/models"
	"github.com/sokochain/sokochain-backend/pkg/enums"
)

type fakeRepository struct {
	appendFn func(ctx context.Context, event *models.LedgerEvent) error
	listFn   func(ctx context.Context, limit int) ([]models.LedgerEvent, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) Append(ctx context.Context, event *models.LedgerEvent) error {
	if f.appendFn != nil {
		return f.appendFn(ctx, event)
	}
	return nil
}

func (f *fakeRepository) List(ctx context.Context, limit int) ([]models.LedgerEvent, error) {
	if f.listFn != nil {
		return f.listFn(ctx, limit)
	}
	return nil, nil
}

func TestRecorderRecordsPayload(t *testing.T) {
	repo := &fakeRepository{}
	rec, err := NewRecorder(repo)
	if err != nil {
		t.Fatalf("unexpected recorder error: %v", err)
	}

	var appended *models.LedgerEvent
	repo.appendFn = func(ctx context.Context, event *models.LedgerEvent) error {
		appended = event
		return nil
	}

	payload := ProductPurchased{
		BuyerAddress:       "0xBuyer",
		OrderIndex:         0,
		ProductID:          1,
		VendorAddress:      "0xVendor",
		PlatformFeeCents:   500,
		VendorPaymentCents: 9500,
	}
	if err := rec.Record(context.Background(), nil, enums.EventTypeProductPurchased, payload); err != nil {
		t.Fatalf("Record error: %v", err)
	}
	if appended == nil {
		t.Fatal("expected event to be appended")
	}
	if appended.Type != enums.EventTypeProductPurchased {
		t.Fatalf("unexpected event type %q", appended.Type)
	}

	var decoded ProductPurchased
	if err := json.Unmarshal(appended.Payload, &decoded); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if decoded != payload {
		t.Fatalf("payload mismatch: %+v", decoded)
	}
}

func TestRecorderRejectsInvalidType(t *testing.T) {
	rec, err := NewRecorder(&fakeRepository{})
	if err != nil {
		t.Fatalf("unexpected recorder error: %v", err)
	}
	if err := rec.Record(context.Background(), nil, enums.EventType("bogus"), struct{}{}); err == nil {
		t.Fatal("expected invalid type error")
	}
}

func TestRecorderBubblesRepoError(t *testing.T) {
	repo := &fakeRepository{}
	rec, err := NewRecorder(repo)
	if err != nil {
		t.Fatalf("unexpected recorder error: %v", err)
	}

	expected := errors.New("boom")
	repo.appendFn = func(ctx context.Context, event *models.LedgerEvent) error {
		return expected
	}
	if err := rec.Record(context.Background(), nil, enums.EventTypeVendorRegistered, VendorRegistered{VendorID: 1}); !errors.Is(err, expected) {
		t.Fatalf("expected repo error to bubble up, got %v", err)
	}
}

func TestNewRecorderRequiresRepo(t *testing.T) {
	if _, err := NewRecorder(nil); err == nil {
		t.Fatal("expected missing repository error")
	}
}
