package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/yigit/unistud/internal/pkg/apperrors"
)

// DefaultTokenTTL is used when no expiration is configured.
const DefaultTokenTTL = 24 * time.Hour

const bearerPrefix = "Bearer "

// JWT errors
var (
	ErrInvalidToken  = apperrors.ErrTokenInvalid
	ErrExpiredToken  = apperrors.ErrTokenExpired
	ErrInvalidFormat = apperrors.ErrInvalidFormat
	ErrMissingSecret = errors.New("jwt secret key is not configured")
)

// JWTConfig defines JWT configuration settings
type JWTConfig struct {
	SecretKey      string
	AccessTokenExp time.Duration
	TokenIssuer    string
}

// JWTService issues and validates HS256 credentials bound to a student email.
// It holds no state besides its configuration and is safe for concurrent use.
type JWTService struct {
	config JWTConfig
	now    func() time.Time
}

// NewJWTService creates a new JWT service
func NewJWTService(config JWTConfig) *JWTService {
	if config.AccessTokenExp <= 0 {
		config.AccessTokenExp = DefaultTokenTTL
	}
	return &JWTService{
		config: config,
		now:    time.Now,
	}
}

// WithClock replaces the time source. Used by tests and the operator CLI.
func (s *JWTService) WithClock(now func() time.Time) *JWTService {
	s.now = now
	return s
}

// TokenTTL returns the configured token lifetime.
func (s *JWTService) TokenTTL() time.Duration {
	return s.config.AccessTokenExp
}

// Claims defines JWT token content. Subject carries the email.
type Claims struct {
	jwt.RegisteredClaims
}

// Email returns the subject the token was issued for.
func (c *Claims) Email() string {
	return c.Subject
}

// IssueToken signs a credential for email that expires after the configured TTL.
func (s *JWTService) IssueToken(email string) (string, time.Time, error) {
	return s.IssueTokenWithTTL(email, s.config.AccessTokenExp)
}

// IssueTokenWithTTL signs a credential with an explicit lifetime.
func (s *JWTService) IssueTokenWithTTL(email string, ttl time.Duration) (string, time.Time, error) {
	if s.config.SecretKey == "" {
		return "", time.Time{}, ErrMissingSecret
	}
	if strings.TrimSpace(email) == "" {
		return "", time.Time{}, fmt.Errorf("%w: email is required", apperrors.ErrValidationFailed)
	}

	now := s.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    s.config.TokenIssuer,
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	// exp is signed at second precision.
	return signed, claims.ExpiresAt.Time, nil
}

// ValidateToken parses and verifies tokenString. Only HS256 is accepted and
// a token whose expiry is not strictly in the future is rejected.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.config.TokenIssuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.TokenIssuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.SecretKey), nil
	}, opts...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// ValidateAndExtractEmail validates tokenString and returns the subject email.
func (s *JWTService) ValidateAndExtractEmail(tokenString string) (string, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Email(), nil
}

// ExtractBearerToken extracts the token from an Authorization header of the
// exact form "Bearer <token>".
func ExtractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrInvalidFormat
	}

	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", ErrInvalidFormat
	}

	token := strings.TrimPrefix(authHeader, bearerPrefix)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", ErrInvalidFormat
	}

	return token, nil
}
