package controller

import (
	"net/http"

	"github.com/adeshpatel700-rgb/Mockmate/internal/apperror"
	"github.com/adeshpatel700-rgb/Mockmate/internal/dto"
	"github.com/gin-gonic/gin"
)

// respondError maps service error kinds to HTTP statuses. Anything untyped is
// an internal error.
func respondError(c *gin.Context, err error) {
	if ae, ok := apperror.AsAppError(err); ok {
		c.JSON(statusFor(ae.Code), dto.ErrorResponse{Error: ae.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Internal server error"})
}

func statusFor(code apperror.ErrorCode) int {
	switch code {
	case apperror.ErrorInvalid, apperror.ErrorAlreadyAnswered:
		return http.StatusBadRequest
	case apperror.ErrorUnauthorized:
		return http.StatusUnauthorized
	case apperror.ErrorForbidden:
		return http.StatusForbidden
	case apperror.ErrorNotFound:
		return http.StatusNotFound
	case apperror.ErrorUpstreamInvalid:
		return http.StatusBadGateway
	case apperror.ErrorUpstreamUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
