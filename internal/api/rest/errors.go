package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/campuslink/engage-core/internal/api/apierrors"
	"github.com/campuslink/engage-core/internal/domain"
	"github.com/campuslink/engage-core/internal/logger"
)

// respondBadRequest responds with a bad request error
func respondBadRequest(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusBadRequest, apierrors.NewBadRequestError(message, details...))
}

// respondNotFound responds with a not found error
func respondNotFound(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusNotFound, apierrors.NewNotFoundError(message, details...))
}

// respondValidationError responds with a validation error
func respondValidationError(c *gin.Context, message string) {
	c.JSON(http.StatusUnprocessableEntity, apierrors.NewValidationError(message))
}

// respondInternalError responds with an internal server error and logs it
func respondInternalError(c *gin.Context, err error, message string) {
	logger.ErrorCtx(c.Request.Context(), err,
		zap.String("path", c.Request.URL.Path),
	)
	c.JSON(http.StatusInternalServerError, apierrors.NewInternalError(message))
}

// respondEngineError maps an engine error onto the API error vocabulary
func respondEngineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		respondBadRequest(c, "Invalid request", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		respondNotFound(c, "Not found", err.Error())
	case errors.Is(err, domain.ErrAlreadyClaimed):
		c.JSON(http.StatusConflict, apierrors.NewConflictError("Order already claimed", err.Error()))
	case errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusConflict, apierrors.NewConflictError("Invalid order transition", err.Error()))
	case errors.Is(err, domain.ErrInsufficientBalance):
		c.JSON(http.StatusUnprocessableEntity, apierrors.NewInsufficientBalanceError(err.Error()))
	default:
		respondInternalError(c, err, "Internal server error")
	}
}
