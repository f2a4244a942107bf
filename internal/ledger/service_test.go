package ledger

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/warungpos/backend/pkg/db/models"
	"github.com/warungpos/backend/pkg/enums"
)

func setupLedger(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.InventoryEvent{}))

	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	return svc, db
}

func record(t *testing.T, svc Service, tenantID, inventoryID uuid.UUID, eventType enums.InventoryEventType, quantity, version int) {
	t.Helper()
	_, err := svc.RecordEvent(context.Background(), nil, RecordEventInput{
		TenantID:    tenantID,
		InventoryID: inventoryID,
		EventType:   eventType,
		Quantity:    quantity,
		Unit:        "kg",
		DeviceID:    "till-1",
		Version:     version,
	})
	require.NoError(t, err)
}

func TestSumForInventoryFoldsSignedEvents(t *testing.T) {
	svc, _ := setupLedger(t)
	tenantID := uuid.New()
	inventoryID := uuid.New()

	record(t, svc, tenantID, inventoryID, enums.InventoryEventTypeInitial, 50, 1)
	record(t, svc, tenantID, inventoryID, enums.InventoryEventTypeStockOut, 10, 2)
	record(t, svc, tenantID, inventoryID, enums.InventoryEventTypeStockIn, 25, 3)
	record(t, svc, tenantID, inventoryID, enums.InventoryEventTypeStockOut, 5, 4)

	sum, err := svc.SumForInventory(context.Background(), inventoryID)
	require.NoError(t, err)
	assert.Equal(t, 60, sum)
}

func TestRecordEventRejectsNonPositiveQuantity(t *testing.T) {
	svc, _ := setupLedger(t)

	for _, quantity := range []int{0, -10} {
		_, err := svc.RecordEvent(context.Background(), nil, RecordEventInput{
			TenantID:    uuid.New(),
			InventoryID: uuid.New(),
			EventType:   enums.InventoryEventTypeStockOut,
			Quantity:    quantity,
			DeviceID:    "till-1",
			Version:     1,
		})
		require.Error(t, err, "quantity %d", quantity)
	}
}

func TestRecordEventRejectsUnknownType(t *testing.T) {
	svc, _ := setupLedger(t)

	_, err := svc.RecordEvent(context.Background(), nil, RecordEventInput{
		TenantID:    uuid.New(),
		InventoryID: uuid.New(),
		EventType:   enums.InventoryEventType("EVAPORATED"),
		Quantity:    1,
		DeviceID:    "till-1",
		Version:     1,
	})
	require.Error(t, err)
}

func TestHistoryForTenantIsolatesTenants(t *testing.T) {
	svc, _ := setupLedger(t)
	tenantA := uuid.New()
	tenantB := uuid.New()
	inventoryID := uuid.New()

	record(t, svc, tenantA, inventoryID, enums.InventoryEventTypeInitial, 10, 1)

	events, err := svc.HistoryForTenant(context.Background(), tenantA, inventoryID)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	events, err = svc.HistoryForTenant(context.Background(), tenantB, inventoryID)
	require.NoError(t, err)
	assert.Empty(t, events)
}
