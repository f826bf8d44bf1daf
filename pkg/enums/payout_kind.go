package enums

import "fmt"

// PayoutKind distinguishes vendor earning payouts from platform fee payouts.
type PayoutKind string

const (
	PayoutKindVendor   PayoutKind = "vendor"
	PayoutKindPlatform PayoutKind = "platform"
)

var validPayoutKinds = []PayoutKind{
	PayoutKindVendor,
	PayoutKindPlatform,
}

// IsValid reports whether the value matches the canonical payout kind enum.
func (k PayoutKind) IsValid() bool {
	for _, candidate := range validPayoutKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParsePayoutKind converts raw input into PayoutKind.
func ParsePayoutKind(value string) (PayoutKind, error) {
	for _, candidate := range validPayoutKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payout kind %q", value)
}

func (k PayoutKind) String() string {
	return string(k)
}
