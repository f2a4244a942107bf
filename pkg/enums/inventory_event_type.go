package enums

import "fmt"

// InventoryEventType classifies an append-only stock ledger event.
type InventoryEventType string

const (
	InventoryEventTypeInitial  InventoryEventType = "INITIAL"
	InventoryEventTypeStockIn  InventoryEventType = "STOCK_IN"
	InventoryEventTypeStockOut InventoryEventType = "STOCK_OUT"
)

var validInventoryEventTypes = []InventoryEventType{
	InventoryEventTypeInitial,
	InventoryEventTypeStockIn,
	InventoryEventTypeStockOut,
}

// IsValid reports whether the value matches a known inventory event type.
func (t InventoryEventType) IsValid() bool {
	for _, candidate := range validInventoryEventTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseInventoryEventType converts raw input into InventoryEventType.
func ParseInventoryEventType(value string) (InventoryEventType, error) {
	for _, candidate := range validInventoryEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid inventory event type %q", value)
}

// Sign returns the multiplier applied to the event quantity when summing the
// ledger against the mutable stock counter.
func (t InventoryEventType) Sign() int {
	if t == InventoryEventTypeStockOut {
		return -1
	}
	return 1
}
