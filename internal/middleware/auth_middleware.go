package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yigit/unistud/internal/app/models/dto"
	"github.com/yigit/unistud/internal/pkg/apperrors"
	"github.com/yigit/unistud/internal/pkg/auth"
	"github.com/yigit/unistud/internal/pkg/logger"
)

// AuthMiddleware is the access gate in front of every protected route.
// It authenticates only; any validated caller may use any protected route.
type AuthMiddleware struct {
	jwtService  *auth.JWTService
	publicPaths []string
}

// NewAuthMiddleware creates a new AuthMiddleware. publicPaths are path
// prefixes that pass through without a credential.
func NewAuthMiddleware(jwtService *auth.JWTService, publicPaths ...string) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:  jwtService,
		publicPaths: publicPaths,
	}
}

// IsPublic reports whether path needs no credential.
func (m *AuthMiddleware) IsPublic(path string) bool {
	for _, prefix := range m.publicPaths {
		if path == prefix || (strings.HasSuffix(prefix, "/") && strings.HasPrefix(path, prefix)) {
			return true
		}
	}
	return false
}

// Authenticate checks one request. For public paths it returns an empty
// email and no error.
func (m *AuthMiddleware) Authenticate(path, authHeader string) (string, error) {
	if m.IsPublic(path) {
		return "", nil
	}

	if authHeader == "" {
		return "", apperrors.NewCustomError(apperrors.ErrAuthRequired, "Authorization header missing")
	}

	token, err := auth.ExtractBearerToken(authHeader)
	if err != nil {
		return "", apperrors.NewCustomError(apperrors.ErrInvalidFormat, "Authorization header must be 'Bearer <token>'")
	}

	email, err := m.jwtService.ValidateAndExtractEmail(token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return "", apperrors.NewCustomError(apperrors.ErrTokenExpired, "Token has expired")
		}
		return "", apperrors.NewCustomError(apperrors.ErrTokenInvalid, "Invalid token")
	}
	return email, nil
}

// JWTAuth rejects requests without a valid bearer token and stores the
// caller email under ContextKeyEmail.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.IsPublic(c.Request.URL.Path) {
			c.Next()
			return
		}

		email, err := m.Authenticate(c.Request.URL.Path, c.GetHeader("Authorization"))
		if err != nil {
			code := dto.ErrorCodeUnauthorized
			switch {
			case errors.Is(err, apperrors.ErrTokenExpired):
				code = dto.ErrorCodeExpiredToken
			case errors.Is(err, apperrors.ErrTokenInvalid):
				code = dto.ErrorCodeInvalidToken
			}

			logger.Ctx(c.Request.Context()).Debug().Err(err).Str("path", c.Request.URL.Path).Msg("Request rejected by auth")
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.NewErrorDetail(code, apperrors.PublicMessage(err))))
			return
		}

		c.Set(ContextKeyEmail, email)

		ctx := c.Request.Context()
		l := logger.Ctx(ctx).With().Str("caller", email).Logger()
		c.Request = c.Request.WithContext(l.WithContext(ctx))

		c.Next()
	}
}

// CallerEmail returns the authenticated caller set by JWTAuth.
func CallerEmail(c *gin.Context) (string, bool) {
	email := c.GetString(ContextKeyEmail)
	return email, email != ""
}
