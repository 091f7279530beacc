package utils

import (
	"strings"
	"testing"

	"dagplanner-api/core/config"
	"dagplanner-api/core/constants"

	"github.com/google/uuid"
)

func setTokenConfig(t *testing.T, secret string) {
	t.Helper()
	config.Set(&config.Config{
		JWT: config.JWTConfig{
			Secret:          secret,
			AccessTokenTTL:  60,
			RefreshTokenTTL: 10080,
		},
	})
}

func TestTokenRoundTrip(t *testing.T) {
	setTokenConfig(t, "test-secret")

	userID := uuid.New()
	email := "d.devries@example.nl"

	token, err := GenerateToken(userID, &email, nil, constants.ScopeTokenAccess)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	claims, err := ValidateAndParseToken(token)
	if err != nil {
		t.Fatalf("ValidateAndParseToken error: %v", err)
	}

	if claims.UserID != userID {
		t.Errorf("user id = %v, want %v", claims.UserID, userID)
	}
	if claims.Email == nil || *claims.Email != email {
		t.Errorf("email = %v, want %q", claims.Email, email)
	}
	if claims.Scope != constants.ScopeTokenAccess {
		t.Errorf("scope = %q, want %q", claims.Scope, constants.ScopeTokenAccess)
	}
}

func TestValidateAndParseTokenRejections(t *testing.T) {
	setTokenConfig(t, "test-secret")

	t.Run("tampered token", func(t *testing.T) {
		token, err := GenerateToken(uuid.New(), nil, nil, constants.ScopeTokenAccess)
		if err != nil {
			t.Fatalf("GenerateToken error: %v", err)
		}
		if _, err := ValidateAndParseToken(token + "x"); err == nil {
			t.Error("expected a signature error")
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := GenerateToken(uuid.New(), nil, nil, constants.ScopeTokenAccess)
		if err != nil {
			t.Fatalf("GenerateToken error: %v", err)
		}
		setTokenConfig(t, "other-secret")
		defer setTokenConfig(t, "test-secret")
		if _, err := ValidateAndParseToken(token); err == nil {
			t.Error("expected a signature error")
		}
	})

	t.Run("garbage input", func(t *testing.T) {
		if _, err := ValidateAndParseToken("not.a.token"); err == nil {
			t.Error("expected a parse error")
		}
	})
}

func TestGenerateID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateID()
		if len(id) != 12 {
			t.Fatalf("id %q has length %d, want 12", id, len(id))
		}
		if strings.ContainsAny(id, "+/=") {
			t.Errorf("id %q contains non-alphanumeric characters", id)
		}
		if seen[id] {
			t.Errorf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
