package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SyncTokenClaims is the typed bearer credential presented on every sync
// request. Tokens are minted by an external credential authority; this
// package only verifies and reads them.
type SyncTokenClaims struct {
	TenantID uuid.UUID `json:"tenant_id"`
	DeviceID string    `json:"device_id"`
	jwt.RegisteredClaims
}
