package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/unistud/internal/app/models/dto"
	"github.com/yigit/unistud/internal/pkg/apperrors"
	"github.com/yigit/unistud/internal/pkg/logger"
)

// StatusForKind maps an error kind to its HTTP status and error code.
func StatusForKind(kind apperrors.Kind) (int, dto.ErrorCode) {
	switch kind {
	case apperrors.KindNotFound:
		return http.StatusNotFound, dto.ErrorCodeResourceNotFound
	case apperrors.KindDuplicate:
		return http.StatusConflict, dto.ErrorCodeResourceAlreadyExists
	case apperrors.KindInvalidRelation:
		return http.StatusBadRequest, dto.ErrorCodeInvalidRelation
	case apperrors.KindCapacityExceeded:
		return http.StatusConflict, dto.ErrorCodeCapacityExceeded
	case apperrors.KindAuthentication:
		return http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials
	case apperrors.KindValidation:
		return http.StatusBadRequest, dto.ErrorCodeValidationFailed
	default:
		return http.StatusInternalServerError, dto.ErrorCodeInternalServer
	}
}

// HandleAPIError writes the error envelope for err. Internal errors are
// logged with their cause and reported without detail.
func HandleAPIError(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)
	status, code := StatusForKind(kind)

	switch {
	case errors.Is(err, apperrors.ErrTokenExpired):
		code = dto.ErrorCodeExpiredToken
	case errors.Is(err, apperrors.ErrTokenInvalid):
		code = dto.ErrorCodeInvalidToken
	case apperrors.Is(err, apperrors.ErrAuthRequired, apperrors.ErrInvalidFormat):
		code = dto.ErrorCodeUnauthorized
	}

	detail := dto.NewErrorDetail(code, apperrors.PublicMessage(err))

	if kind == apperrors.KindInternal {
		detail.WithSeverity(dto.ErrorSeverityCritical)
		logger.Ctx(c.Request.Context()).Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Unhandled error")
	} else {
		var custom *apperrors.CustomError
		if errors.As(err, &custom) && len(custom.Details) > 0 {
			detail.WithDetails(custom.Details)
		}
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}
