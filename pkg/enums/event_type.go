package enums

import "fmt"

// EventType identifies a ledger notification written to ledger_events.
type EventType string

const (
	EventTypeVendorRegistered   EventType = "vendor_registered"
	EventTypeProductListed      EventType = "product_listed"
	EventTypeProductPurchased   EventType = "product_purchased"
	EventTypePlatformFeeUpdated EventType = "platform_fee_updated"
)

var validEventTypes = []EventType{
	EventTypeVendorRegistered,
	EventTypeProductListed,
	EventTypeProductPurchased,
	EventTypePlatformFeeUpdated,
}

// IsValid reports whether the value matches the canonical event enum.
func (t EventType) IsValid() bool {
	for _, candidate := range validEventTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseEventType converts raw input into EventType.
func ParseEventType(value string) (EventType, error) {
	for _, candidate := range validEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}

func (t EventType) String() string {
	return string(t)
}
