package middleware

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	ctxTenantID contextKey = "tenant_id"
	ctxDeviceID contextKey = "device_id"
)

func TenantIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if v, ok := ctx.Value(ctxTenantID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

func DeviceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxDeviceID).(string); ok {
		return v
	}
	return ""
}

// WithIdentity injects the authenticated tenant and device into the context.
func WithIdentity(ctx context.Context, tenantID uuid.UUID, deviceID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxTenantID, tenantID)
	return context.WithValue(ctx, ctxDeviceID, deviceID)
}
