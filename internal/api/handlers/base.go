// Package handlers provides HTTP request handlers for all API endpoints.
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oszuidwest/zwfm-lnkgen/internal/apperrors"
	"github.com/oszuidwest/zwfm-lnkgen/internal/services"
	"github.com/oszuidwest/zwfm-lnkgen/internal/utils"
	"github.com/oszuidwest/zwfm-lnkgen/pkg/logger"
)

// Handlers contains all the dependencies needed by the API handlers.
type Handlers struct {
	scriptSvc *services.ScriptService
}

// NewHandlers creates a new Handlers instance with all required dependencies.
func NewHandlers(scriptSvc *services.ScriptService) *Handlers {
	return &Handlers{scriptSvc: scriptSvc}
}

// handleServiceError converts apperrors.Error to appropriate HTTP responses.
// Internal error details are logged but never exposed to clients.
func handleServiceError(c *gin.Context, err error, resource string) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		logger.Error("Unhandled error for %s: %v", resource, err)
		utils.ProblemInternalServer(c, fmt.Sprintf("Failed to process %s", resource))
		return
	}

	// Log internal details if present
	if appErr.Internal != "" {
		logger.Error("%s error: %s (internal: %s)", resource, appErr.Message, appErr.Internal)
	}

	// Map error code to HTTP response
	switch appErr.Code {
	case apperrors.CodeNotFound:
		utils.ProblemNotFound(c, resource)
	case apperrors.CodeDuplicate:
		utils.ProblemDuplicate(c, resource)
	case apperrors.CodeInvalidInput, apperrors.CodeValidation:
		utils.ProblemBadRequest(c, appErr.Message)
	case apperrors.CodeConfiguration, apperrors.CodeMissingInput:
		utils.ProblemExtended(c, http.StatusUnprocessableEntity, appErr.Message, appErr.Code.String(), appErr.Field)
	case apperrors.CodeUnauthorized:
		utils.ProblemAuthentication(c, appErr.Message)
	case apperrors.CodeForbidden:
		utils.ProblemForbidden(c, appErr.Message)
	default:
		if appErr.Err != nil {
			logger.Error("%s underlying error: %v", resource, appErr.Err)
		}
		utils.ProblemInternalServer(c, fmt.Sprintf("Failed to process %s", resource))
	}
}
