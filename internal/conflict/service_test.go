package conflict

import (
	"context"
	"encoding/json"
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

func setupConflictTest(t *testing.T) (*gorm.DB, Service) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&models.ConflictRecord{}))

	svc, err := NewService(NewRepository(gdb))
	require.NoError(t, err)
	return gdb, svc
}

func TestRecordVersionMismatchPersistsBothSides(t *testing.T) {
	gdb, svc := setupConflictTest(t)

	tenantID := uuid.New()
	entityID := uuid.New()
	record, err := svc.RecordVersionMismatch(context.Background(), gdb, VersionMismatchInput{
		TenantID:   tenantID,
		EntityType: enums.SyncTableMenu,
		EntityID:   entityID,
		ClientData: json.RawMessage(`{"version":1,"price":"5000"}`),
		ServerData: json.RawMessage(`{"version":2,"price":"6000"}`),
	})
	require.NoError(t, err)

	assert.Equal(t, enums.ConflictTypeVersionMismatch, record.ConflictType)
	assert.Equal(t, enums.ConflictResolutionServerWins, record.Resolution)
	assert.Equal(t, "system", record.ResolvedBy)
	require.NotNil(t, record.ResolvedAt)

	var stored models.ConflictRecord
	require.NoError(t, gdb.First(&stored, "id = ?", record.ID).Error)
	assert.Equal(t, tenantID, stored.TenantID)
	assert.Equal(t, entityID, stored.EntityID)
	assert.JSONEq(t, `{"version":1,"price":"5000"}`, string(stored.ClientData))
	assert.JSONEq(t, `{"version":2,"price":"6000"}`, string(stored.ServerData))
}

func TestRecordVersionMismatchValidatesInput(t *testing.T) {
	gdb, svc := setupConflictTest(t)
	ctx := context.Background()

	_, err := svc.RecordVersionMismatch(ctx, gdb, VersionMismatchInput{
		EntityType: enums.SyncTableMenu,
		EntityID:   uuid.New(),
	})
	require.Error(t, err)

	_, err = svc.RecordVersionMismatch(ctx, gdb, VersionMismatchInput{
		TenantID:   uuid.New(),
		EntityType: enums.SyncTable("mystery"),
		EntityID:   uuid.New(),
	})
	require.Error(t, err)

	_, err = svc.RecordVersionMismatch(ctx, gdb, VersionMismatchInput{
		TenantID:   uuid.New(),
		EntityType: enums.SyncTableOrders,
	})
	require.Error(t, err)
}

func TestListByTenantIsolatesAndLimits(t *testing.T) {
	gdb, svc := setupConflictTest(t)
	ctx := context.Background()

	tenantA := uuid.New()
	tenantB := uuid.New()
	for i := 0; i < 3; i++ {
		_, err := svc.RecordVersionMismatch(ctx, gdb, VersionMismatchInput{
			TenantID:   tenantA,
			EntityType: enums.SyncTableOrders,
			EntityID:   uuid.New(),
		})
		require.NoError(t, err)
	}
	_, err := svc.RecordVersionMismatch(ctx, gdb, VersionMismatchInput{
		TenantID:   tenantB,
		EntityType: enums.SyncTableOrders,
		EntityID:   uuid.New(),
	})
	require.NoError(t, err)

	records, err := svc.ListByTenant(ctx, tenantA, 0)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	records, err = svc.ListByTenant(ctx, tenantA, 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	records, err = svc.ListByTenant(ctx, tenantB, 0)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
