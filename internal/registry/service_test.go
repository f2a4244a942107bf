package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/warungpos/backend/pkg/db/models"
	pkgerrors "github.com/warungpos/backend/pkg/errors"
)

type fakeRepo struct {
	devices   map[string]*models.Device
	createErr error
	touched   []string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{devices: map[string]*models.Device{}}
}

func (f *fakeRepo) FindDevice(ctx context.Context, deviceID string) (*models.Device, error) {
	device, ok := f.devices[deviceID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return device, nil
}

func (f *fakeRepo) CreateDevice(ctx context.Context, device *models.Device) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, exists := f.devices[device.ID]; exists {
		return errors.New(`duplicate key value violates unique constraint "devices_pkey"`)
	}
	f.devices[device.ID] = device
	return nil
}

func (f *fakeRepo) TouchLastSeen(ctx context.Context, deviceID string, at time.Time) error {
	f.touched = append(f.touched, deviceID)
	return nil
}

func TestResolveTenantUnknownDevice(t *testing.T) {
	svc, err := NewService(newFakeRepo(), nil)
	require.NoError(t, err)

	_, err = svc.ResolveTenant(context.Background(), "ghost")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestAuthorizeRejectsForeignTenant(t *testing.T) {
	repo := newFakeRepo()
	owner := uuid.New()
	repo.devices["till-1"] = &models.Device{ID: "till-1", TenantID: owner}
	svc, err := NewService(repo, nil)
	require.NoError(t, err)

	require.NoError(t, svc.Authorize(context.Background(), "till-1", owner))

	err = svc.Authorize(context.Background(), "till-1", uuid.New())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())
}

func TestRegisterIsIdempotentForSameTenant(t *testing.T) {
	repo := newFakeRepo()
	tenantID := uuid.New()
	svc, err := NewService(repo, nil)
	require.NoError(t, err)

	first, err := svc.Register(context.Background(), tenantID, "till-1", "Kasir Depan")
	require.NoError(t, err)
	second, err := svc.Register(context.Background(), tenantID, "till-1", "Kasir Depan")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, tenantID, second.TenantID)
}

func TestRegisterRejectsDeviceOwnedElsewhere(t *testing.T) {
	repo := newFakeRepo()
	repo.devices["till-1"] = &models.Device{ID: "till-1", TenantID: uuid.New()}
	svc, err := NewService(repo, nil)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), uuid.New(), "till-1", "")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())
}

func TestTouchSwallowsEmptyDevice(t *testing.T) {
	repo := newFakeRepo()
	svc, err := NewService(repo, nil)
	require.NoError(t, err)

	svc.Touch(context.Background(), "")
	assert.Empty(t, repo.touched)

	svc.Touch(context.Background(), "till-1")
	assert.Equal(t, []string{"till-1"}, repo.touched)
}
