package controllers

import (
	"net/http"
	"time"

	"github.com/warungpos/backend/api/middleware"
	"github.com/warungpos/backend/api/responses"
	"github.com/warungpos/backend/api/validators"
	"github.com/warungpos/backend/internal/registry"
	pkgerrors "github.com/warungpos/backend/pkg/errors"
	"github.com/warungpos/backend/pkg/logger"
)

type registerDeviceRequest struct {
	DeviceID    string `json:"deviceId" validate:"required,max=128"`
	DisplayName string `json:"displayName" validate:"max=255"`
}

type registerDeviceResponse struct {
	DeviceID    string     `json:"deviceId"`
	TenantID    string     `json:"tenantId"`
	DisplayName string     `json:"displayName"`
	LastSeenAt  *time.Time `json:"lastSeenAt,omitempty"`
}

// RegisterDevice binds a device to the authenticated tenant. Re-registering
// the same device under the same tenant is a no-op.
func RegisterDevice(svc registry.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req registerDeviceRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if claimed := middleware.DeviceIDFromContext(ctx); claimed != "" && claimed != req.DeviceID {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "device id does not match credentials"))
			return
		}

		device, err := svc.Register(ctx, middleware.TenantIDFromContext(ctx), req.DeviceID, req.DisplayName)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, registerDeviceResponse{
			DeviceID:    device.ID,
			TenantID:    device.TenantID.String(),
			DisplayName: device.DisplayName,
			LastSeenAt:  device.LastSeenAt,
		})
	}
}
