package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rmoralesf/vitalstack-backend/pkg/config"
	"github.com/rmoralesf/vitalstack-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "vitalstack-test",
		ExpirationMinutes: 30,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	userID := uuid.New()
	now := time.Now()

	signed, err := MintAccessToken(cfg, now, AccessTokenPayload{
		UserID: userID,
		Role:   enums.UserRoleCustomer,
	})
	if err != nil {
		t.Fatalf("MintAccessToken returned error: %v", err)
	}
	if signed == "" {
		t.Fatal("expected signed token, got empty string")
	}

	claims, err := ParseAccessToken(cfg, signed)
	if err != nil {
		t.Fatalf("ParseAccessToken returned error: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("user id = %s, want %s", claims.UserID, userID)
	}
	if claims.Role != enums.UserRoleCustomer {
		t.Errorf("role = %s, want %s", claims.Role, enums.UserRoleCustomer)
	}
	if claims.ID == "" {
		t.Error("expected jti to be populated")
	}
	if claims.Issuer != cfg.Issuer {
		t.Errorf("issuer = %s, want %s", claims.Issuer, cfg.Issuer)
	}
}

func TestMintAccessTokenPreservesJTI(t *testing.T) {
	cfg := testJWTConfig()
	jti := uuid.NewString()

	signed, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRoleAdmin,
		JTI:    jti,
	})
	if err != nil {
		t.Fatalf("MintAccessToken returned error: %v", err)
	}

	claims, err := ParseAccessToken(cfg, signed)
	if err != nil {
		t.Fatalf("ParseAccessToken returned error: %v", err)
	}
	if claims.ID != jti {
		t.Errorf("jti = %s, want %s", claims.ID, jti)
	}
}

func TestMintAccessTokenValidation(t *testing.T) {
	base := testJWTConfig()
	payload := AccessTokenPayload{UserID: uuid.New(), Role: enums.UserRoleCustomer}

	cases := []struct {
		name    string
		mutate  func(*config.JWTConfig, *AccessTokenPayload)
		wantErr string
	}{
		{
			name:    "missing secret",
			mutate:  func(c *config.JWTConfig, _ *AccessTokenPayload) { c.Secret = "" },
			wantErr: "jwt secret is required",
		},
		{
			name:    "missing issuer",
			mutate:  func(c *config.JWTConfig, _ *AccessTokenPayload) { c.Issuer = "" },
			wantErr: "jwt issuer is required",
		},
		{
			name:    "non-positive expiration",
			mutate:  func(c *config.JWTConfig, _ *AccessTokenPayload) { c.ExpirationMinutes = 0 },
			wantErr: "jwt expiration minutes must be positive",
		},
		{
			name:    "invalid role",
			mutate:  func(_ *config.JWTConfig, p *AccessTokenPayload) { p.Role = enums.UserRole("MANAGER") },
			wantErr: `invalid user role "MANAGER"`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			p := payload
			tc.mutate(&cfg, &p)
			_, err := MintAccessToken(cfg, time.Now(), p)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if err.Error() != tc.wantErr {
				t.Errorf("error = %q, want %q", err.Error(), tc.wantErr)
			}
		})
	}
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	cfg := testJWTConfig()
	signed, err := MintAccessToken(cfg, time.Now().Add(-2*time.Hour), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRoleCustomer,
	})
	if err != nil {
		t.Fatalf("MintAccessToken returned error: %v", err)
	}

	if _, err := ParseAccessToken(cfg, signed); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	cfg := testJWTConfig()
	signed, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRoleCustomer,
	})
	if err != nil {
		t.Fatalf("MintAccessToken returned error: %v", err)
	}

	other := cfg
	other.Secret = "different-secret"
	if _, err := ParseAccessToken(other, signed); err == nil {
		t.Fatal("expected token signed with another secret to be rejected")
	}
}
