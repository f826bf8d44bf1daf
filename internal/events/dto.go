package events

import (
	"encoding/json"
	"time"

	"github.com/sokochain/sokochain-backend/pkg/db/models"
	"github.com/sokochain/sokochain-backend/pkg/enums"
)

// EventDTO is the feed projection of one emitted event. Payload is passed
// through verbatim as recorded.
type EventDTO struct {
	ID        uint64          `json:"id"`
	Type      enums.EventType `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewEventDTOs projects events preserving append order.
func NewEventDTOs(list []models.LedgerEvent) []EventDTO {
	out := make([]EventDTO, 0, len(list))
	for i := range list {
		out = append(out, EventDTO{
			ID:        list[i].ID,
			Type:      list[i].Type,
			Payload:   list[i].Payload,
			CreatedAt: list[i].CreatedAt,
		})
	}
	return out
}
