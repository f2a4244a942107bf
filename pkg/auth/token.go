package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/warungpos/backend/pkg/config"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// ParseSyncToken validates the JWT string and returns typed claims. Issuance
// lives with the external credential authority; the sync path only checks the
// signature, issuer, and the tenant/device identity.
func ParseSyncToken(cfg config.JWTConfig, tokenString string) (*SyncTokenClaims, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}

	claims := &SyncTokenClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		},
		jwt.WithIssuer(cfg.Issuer),
	)
	if err != nil {
		return nil, fmt.Errorf("parsing jwt: %w", err)
	}
	if claims.TenantID == uuid.Nil {
		return nil, fmt.Errorf("token missing tenant id")
	}
	if claims.DeviceID == "" {
		return nil, fmt.Errorf("token missing device id")
	}
	return claims, nil
}
