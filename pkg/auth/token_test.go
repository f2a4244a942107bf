package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/warungpos/backend/pkg/config"
)

func mintTestToken(t *testing.T, cfg config.JWTConfig, claims SyncTokenClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwtSigningMethod, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

func baseClaims(cfg config.JWTConfig, tenantID uuid.UUID, deviceID string) SyncTokenClaims {
	now := time.Now().UTC()
	return SyncTokenClaims{
		TenantID: tenantID,
		DeviceID: deviceID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func TestParseSyncTokenRoundTrip(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "warungpos"}
	tenantID := uuid.New()
	signed := mintTestToken(t, cfg, baseClaims(cfg, tenantID, "till-1"))

	claims, err := ParseSyncToken(cfg, signed)
	if err != nil {
		t.Fatalf("parse sync token: %v", err)
	}
	if claims.TenantID != tenantID {
		t.Fatalf("expected tenant %s, got %s", tenantID, claims.TenantID)
	}
	if claims.DeviceID != "till-1" {
		t.Fatalf("unexpected device id %q", claims.DeviceID)
	}
}

func TestParseSyncTokenRejectsWrongSecret(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "warungpos"}
	signed := mintTestToken(t, cfg, baseClaims(cfg, uuid.New(), "till-1"))

	if _, err := ParseSyncToken(config.JWTConfig{Secret: "other", Issuer: "warungpos"}, signed); err == nil {
		t.Fatalf("expected signature failure")
	}
}

func TestParseSyncTokenRejectsWrongIssuer(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "somewhere-else"}
	signed := mintTestToken(t, cfg, baseClaims(cfg, uuid.New(), "till-1"))

	if _, err := ParseSyncToken(config.JWTConfig{Secret: "secret", Issuer: "warungpos"}, signed); err == nil {
		t.Fatalf("expected issuer failure")
	}
}

func TestParseSyncTokenRejectsExpired(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "warungpos"}
	claims := baseClaims(cfg, uuid.New(), "till-1")
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().UTC().Add(-time.Minute))
	signed := mintTestToken(t, cfg, claims)

	if _, err := ParseSyncToken(cfg, signed); err == nil {
		t.Fatalf("expected expiry failure")
	}
}

func TestParseSyncTokenRequiresIdentity(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "warungpos"}

	signed := mintTestToken(t, cfg, baseClaims(cfg, uuid.Nil, "till-1"))
	if _, err := ParseSyncToken(cfg, signed); err == nil {
		t.Fatalf("expected missing tenant id failure")
	}

	signed = mintTestToken(t, cfg, baseClaims(cfg, uuid.New(), ""))
	if _, err := ParseSyncToken(cfg, signed); err == nil {
		t.Fatalf("expected missing device id failure")
	}
}

func TestParseSyncTokenRejectsUnsignedAlg(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "warungpos"}
	token := jwt.NewWithClaims(jwt.SigningMethodNone, baseClaims(cfg, uuid.New(), "till-1"))
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}

	if _, err := ParseSyncToken(cfg, signed); err == nil {
		t.Fatalf("expected signing method failure")
	}
}
