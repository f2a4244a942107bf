package registry

import (
	"context"
	stdErrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/warungpos/backend/pkg/db"
	"github.com/warungpos/backend/pkg/db/models"
	pkgerrors "github.com/warungpos/backend/pkg/errors"
	"github.com/warungpos/backend/pkg/logger"
)

// Service is the sole authorization boundary for multi-tenant isolation in
// the sync path. It maps devices to tenants; it does not issue credentials.
type Service interface {
	ResolveTenant(ctx context.Context, deviceID string) (uuid.UUID, error)
	Authorize(ctx context.Context, deviceID string, claimedTenantID uuid.UUID) error
	Register(ctx context.Context, tenantID uuid.UUID, deviceID, displayName string) (*models.Device, error)
	Touch(ctx context.Context, deviceID string)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService wires a registry service with the provided repository.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("registry repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) ResolveTenant(ctx context.Context, deviceID string) (uuid.UUID, error) {
	if deviceID == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "device id is required")
	}
	device, err := s.repo.FindDevice(ctx, deviceID)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, "device not registered")
		}
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up device")
	}
	return device.TenantID, nil
}

func (s *service) Authorize(ctx context.Context, deviceID string, claimedTenantID uuid.UUID) error {
	tenantID, err := s.ResolveTenant(ctx, deviceID)
	if err != nil {
		return err
	}
	if tenantID != claimedTenantID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "device does not belong to tenant")
	}
	return nil
}

func (s *service) Register(ctx context.Context, tenantID uuid.UUID, deviceID, displayName string) (*models.Device, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id is required")
	}
	if deviceID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "device id is required")
	}

	now := time.Now()
	device := &models.Device{
		ID:          deviceID,
		TenantID:    tenantID,
		DisplayName: displayName,
		LastSeenAt:  &now,
	}
	if err := s.repo.CreateDevice(ctx, device); err != nil {
		if dbpkg.IsUniqueViolation(err, "devices_pkey") || stdErrors.Is(err, gorm.ErrDuplicatedKey) {
			existing, findErr := s.repo.FindDevice(ctx, deviceID)
			if findErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, findErr, "loading registered device")
			}
			if existing.TenantID != tenantID {
				return nil, pkgerrors.New(pkgerrors.CodeForbidden, "device registered to another tenant")
			}
			s.Touch(ctx, deviceID)
			return existing, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "registering device")
	}
	return device, nil
}

// Touch records an authenticated interaction. Failures are logged and
// swallowed: last-seen bookkeeping must never fail the primary request.
func (s *service) Touch(ctx context.Context, deviceID string) {
	if deviceID == "" {
		return
	}
	if err := s.repo.TouchLastSeen(ctx, deviceID, time.Now()); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithDeviceID(ctx, deviceID), "failed to update device last seen")
	}
}
