package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/darab-cement/cms-service/internal/services"
	"github.com/darab-cement/cms-service/internal/storage"
)

func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	// Handle custom error types first
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: businessRuleError.Message,
			Details: map[string]interface{}{
				"rule":    businessRuleError.Rule,
				"context": businessRuleError.Context,
			},
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: map[string]interface{}{
				"resource": permissionError.Resource,
				"action":   permissionError.Action,
				"reason":   permissionError.Reason,
			},
		})
		return
	}

	var conflictError *services.ConflictError
	if errors.As(err, &conflictError) {
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: conflictError.Error(),
			Details: map[string]interface{}{
				"field": conflictError.Field,
				"value": conflictError.Value,
			},
		})
		return
	}

	var serviceError *services.ServiceError
	if errors.As(err, &serviceError) {
		c.JSON(statusFor(err), ErrorResponse{Message: serviceError.Message})
		return
	}

	switch {
	case errors.Is(err, storage.ErrFileTooLarge), errors.Is(err, storage.ErrUnsupportedType), errors.Is(err, storage.ErrNoFile):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid file",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrBadRequest),
		errors.Is(err, services.ErrUnauthorized),
		errors.Is(err, services.ErrForbidden),
		errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrConflict):
		c.JSON(statusFor(err), ErrorResponse{Message: err.Error()})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}

// statusFor maps an error class to its HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
