package httperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-booking/internal/logger"
)

type HTTPError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Forbidden(c *gin.Context, code, message string) {
	Write(c, http.StatusForbidden, code, message)
}

func Conflict(c *gin.Context, code, message string) {
	Write(c, http.StatusConflict, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

func StatusFor(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict, KindStateConflict:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// FromError writes err as a JSON response. Business errors keep their
// code; anything else is logged and reported as internal.
func FromError(c *gin.Context, err error) {
	var be BusinessError
	if errors.As(err, &be) {
		msg := be.Message
		if msg == "" {
			msg = be.Code
		}
		Write(c, StatusFor(be.Kind), be.Code, msg)
		return
	}

	logger.FromContext(c.Request.Context()).Error("request failed", zap.Error(err))
	Internal(c, "internal_error", "Erro interno.")
}
