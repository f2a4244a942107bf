package enums

import "fmt"

// SyncTable names a logical table on the sync wire protocol. The wire names
// are kept as the original till software sends them ("pesanan" is orders).
type SyncTable string

const (
	SyncTableOrders      SyncTable = "pesanan"
	SyncTableMenu        SyncTable = "menu"
	SyncTableInventory   SyncTable = "inventory"
	SyncTableDailyReport SyncTable = "dailyReport"
)

var validSyncTables = []SyncTable{
	SyncTableOrders,
	SyncTableMenu,
	SyncTableInventory,
	SyncTableDailyReport,
}

// IsValid reports whether the value matches a known sync table.
func (t SyncTable) IsValid() bool {
	for _, candidate := range validSyncTables {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseSyncTable converts raw input into SyncTable.
func ParseSyncTable(value string) (SyncTable, error) {
	for _, candidate := range validSyncTables {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sync table %q", value)
}

// SyncTables returns every logical table served by the wire protocol.
func SyncTables() []SyncTable {
	out := make([]SyncTable, len(validSyncTables))
	copy(out, validSyncTables)
	return out
}
