package jwt

import (
	"testing"
	"time"

	"hospital-scheduling/config"

	"github.com/google/uuid"
)

func newTestService(secret string, accessExpiry time.Duration) *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:        secret,
		AccessExpiry:  accessExpiry,
		RefreshExpiry: 24 * time.Hour,
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := newTestService("test-secret", 15*time.Minute)

	userID := uuid.New()
	token, tokenID, err := svc.GenerateAccessToken(userID, "user@example.com", 3)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if tokenID == "" {
		t.Fatal("expected a token id")
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("unexpected user id: %s", claims.UserID)
	}
	if claims.Email != "user@example.com" {
		t.Fatalf("unexpected email: %s", claims.Email)
	}
	if claims.RoleID != 3 {
		t.Fatalf("role was not preserved: %d", claims.RoleID)
	}
	if claims.TokenType != AccessToken {
		t.Fatalf("unexpected token type: %s", claims.TokenType)
	}
	if claims.TokenID != tokenID {
		t.Fatalf("token id mismatch: %s != %s", claims.TokenID, tokenID)
	}
}

func TestRefreshTokenCarriesRefreshType(t *testing.T) {
	svc := newTestService("test-secret", 15*time.Minute)

	token, _, err := svc.GenerateRefreshToken(uuid.New(), "user@example.com", 2)
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.TokenType != RefreshToken {
		t.Fatalf("expected refresh type, got %s", claims.TokenType)
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	svc := newTestService("test-secret", 15*time.Minute)
	other := newTestService("different-secret", 15*time.Minute)

	token, _, err := svc.GenerateAccessToken(uuid.New(), "user@example.com", 1)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	if _, err := other.ValidateToken(token); err == nil {
		t.Fatal("expected validation to fail with a different secret")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := newTestService("test-secret", -time.Minute)

	token, _, err := svc.GenerateAccessToken(uuid.New(), "user@example.com", 1)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	if _, err := svc.ValidateToken(token); err == nil {
		t.Fatal("expected validation to fail for an expired token")
	}
}
