package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wealthlens/quant_service/internal/domain/entities"
	apperrors "github.com/wealthlens/quant_service/pkg/errors"
)

// getRequestID extracts the request ID from context
func getRequestID(c *gin.Context) string {
	if reqID, exists := c.Get("request_id"); exists {
		if id, ok := reqID.(string); ok {
			return id
		}
	}
	return ""
}

// respondError sends a standardized error response
func respondError(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	c.JSON(status, entities.ErrorResponse{
		Code:      code,
		Message:   message,
		Details:   details,
		RequestID: getRequestID(c),
	})
}

// respondBadRequest sends a bad request error
func respondBadRequest(c *gin.Context, message string, details map[string]interface{}) {
	respondError(c, http.StatusBadRequest, string(apperrors.ErrCodeInvalidInput), message, details)
}

// respondAppError maps an application error to its HTTP representation
func respondAppError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		respondError(c, appErr.StatusCode, string(appErr.Code), appErr.Message, appErr.Details)
		return
	}
	respondError(c, http.StatusInternalServerError, string(apperrors.ErrCodeInternal), "internal error", nil)
}
