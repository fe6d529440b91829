package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestService(now time.Time) *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:      testSecret,
		AccessTokenExp: time.Hour,
		TokenIssuer:    "unistud",
	}).WithClock(func() time.Time { return now })
}

func TestIssueAndValidateRoundTrip(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(now)

	token, expiresAt, err := svc.IssueToken("ada@example.com")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if !expiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected expiry %v", expiresAt)
	}

	email, err := svc.ValidateAndExtractEmail(token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if email != "ada@example.com" {
		t.Fatalf("expected subject ada@example.com, got %q", email)
	}
}

func TestIssuedExpiryMatchesSignedClaim(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 750_000_000, time.UTC)
	svc := newTestService(now)

	token, expiresAt, err := svc.IssueTokenWithTTL("ada@example.com", 90*time.Second)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	want := time.Date(2025, 3, 1, 12, 1, 30, 0, time.UTC)
	if !expiresAt.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, expiresAt)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if !claims.ExpiresAt.Time.Equal(expiresAt) {
		t.Fatalf("reported expiry %v differs from signed exp %v", expiresAt, claims.ExpiresAt.Time)
	}
}

func TestValidateTokenExpiry(t *testing.T) {
	issuedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	token, _, err := newTestService(issuedAt).IssueToken("ada@example.com")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	tests := map[string]struct {
		now     time.Time
		wantErr error
	}{
		"just before expiry": {now: issuedAt.Add(time.Hour - time.Second)},
		"exactly at expiry":  {now: issuedAt.Add(time.Hour), wantErr: ErrExpiredToken},
		"after expiry":       {now: issuedAt.Add(2 * time.Hour), wantErr: ErrExpiredToken},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := newTestService(tt.now).ValidateToken(token)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("expected valid token, got %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateTokenRejectsForgeries(t *testing.T) {
	now := time.Now()
	svc := newTestService(now)

	valid, _, err := svc.IssueToken("ada@example.com")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	claims := jwt.RegisteredClaims{
		Subject:   "mallory@example.com",
		Issuer:    "unistud",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}
	hs512Token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign hs512 token: %v", err)
	}
	otherKeyToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("another-secret-another-secret-xx"))
	if err != nil {
		t.Fatalf("sign foreign token: %v", err)
	}

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	tests := map[string]string{
		"empty":       "",
		"garbage":     "not-a-token",
		"tampered":    tampered,
		"alg none":    noneToken,
		"alg HS512":   hs512Token,
		"foreign key": otherKeyToken,
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestKeyRotationInvalidatesTokens(t *testing.T) {
	now := time.Now()
	token, _, err := newTestService(now).IssueToken("ada@example.com")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	rotated := NewJWTService(JWTConfig{SecretKey: strings.Repeat("z", 32), TokenIssuer: "unistud"})
	if _, err := rotated.ValidateToken(token); err == nil {
		t.Fatalf("expected token signed with the old key to be rejected")
	}
}

func TestIssueTokenRequiresSecret(t *testing.T) {
	svc := NewJWTService(JWTConfig{})
	if _, _, err := svc.IssueToken("ada@example.com"); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
	if svc.TokenTTL() != DefaultTokenTTL {
		t.Fatalf("expected default ttl, got %v", svc.TokenTTL())
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := map[string]struct {
		header  string
		want    string
		wantErr bool
	}{
		"valid":            {header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		"empty":            {header: "", wantErr: true},
		"no scheme":        {header: "abc.def.ghi", wantErr: true},
		"lowercase scheme": {header: "bearer abc.def.ghi", wantErr: true},
		"basic scheme":     {header: "Basic dXNlcjpwYXNz", wantErr: true},
		"scheme only":      {header: "Bearer ", wantErr: true},
		"extra segment":    {header: "Bearer abc def", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ExtractBearerToken(tt.header)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidFormat) {
					t.Fatalf("expected ErrInvalidFormat, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
