package config

import (
	"strings"
	"testing"
)

func TestValidate_RequiresJWTSecretOutsideDev(t *testing.T) {
	cfg := &Config{Env: "production", GSTRate: 0.18, TokenTTLHours: 12}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing JWT_SECRET in production")
	}
	if !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_DevWithoutSecret(t *testing.T) {
	cfg := &Config{Env: "development", GSTRate: 0.18, TokenTTLHours: 12}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_ShortSecret(t *testing.T) {
	cfg := &Config{Env: "production", JWTSecret: "short", GSTRate: 0.18, TokenTTLHours: 12}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for short JWT_SECRET")
	}
}

func TestValidate_GSTRateBounds(t *testing.T) {
	secret := strings.Repeat("s", 32)
	for _, rate := range []float64{-0.1, 1.0, 1.5} {
		cfg := &Config{Env: "production", JWTSecret: secret, GSTRate: rate, TokenTTLHours: 12}
		if err := cfg.Validate(); err == nil {
			t.Errorf("expected error for GST_RATE=%v", rate)
		}
	}
	cfg := &Config{Env: "production", JWTSecret: secret, GSTRate: 0, TokenTTLHours: 12}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error for GST_RATE=0: %v", err)
	}
}

func TestValidate_TokenTTL(t *testing.T) {
	cfg := &Config{Env: "development", GSTRate: 0.18, TokenTTLHours: 0}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for non-positive TOKEN_TTL_HOURS")
	}
}
