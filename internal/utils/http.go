package utils

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/oszuidwest/zwfm-lnkgen/internal/swire"
)

// Pagination bounds for list endpoints.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// GetPagination extracts limit and offset from query parameters
func GetPagination(c *gin.Context) (limit, offset int) {
	limit = DefaultLimit
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= MaxLimit {
		limit = l
	}
	if o, err := strconv.Atoi(c.Query("offset")); err == nil && o >= 0 {
		offset = o
	}
	return
}

// GetIntParam parses a positive integer path parameter. It writes a 400
// problem and returns false when the value is not a positive integer.
func GetIntParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v <= 0 {
		ProblemBadRequest(c, fmt.Sprintf("%s must be a positive integer", name))
		return 0, false
	}
	return v, true
}

// GetIntQuery parses an optional non-negative integer query parameter.
// A missing parameter yields 0.
func GetIntQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		ProblemBadRequest(c, fmt.Sprintf("%s must be a non-negative integer", name))
		return 0, false
	}
	return v, true
}

// BindAndValidate binds the JSON body into req. Malformed JSON yields a 400
// problem; binding rule failures yield a 422 problem listing every field.
func BindAndValidate(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			ProblemValidationError(c, "The request contains invalid data", formatValidationErrors(verrs))
			return false
		}
		ProblemBadRequest(c, "Invalid JSON format")
		return false
	}
	return true
}

// formatValidationErrors converts validation errors to developer-friendly messages
func formatValidationErrors(verrs validator.ValidationErrors) []ValidationError {
	out := make([]ValidationError, 0, len(verrs))
	for _, e := range verrs {
		field := e.Field()
		param := e.Param()

		var msg string
		switch e.Tag() {
		case "required":
			msg = fmt.Sprintf("%s is required", field)
		case "gt":
			msg = fmt.Sprintf("%s must be greater than %s", field, param)
		case "gte":
			msg = fmt.Sprintf("%s must be at least %s", field, param)
		case "lte":
			msg = fmt.Sprintf("%s must be at most %s", field, param)
		case "min":
			msg = fmt.Sprintf("%s must contain at least %s items", field, param)
		case "max":
			msg = fmt.Sprintf("%s must contain at most %s items", field, param)
		case "stream_rate":
			msg = fmt.Sprintf("%s must be a PCM rate (8, 16, 24, 32, 48, 96, 192) or a PDM clock", field)
		case "word_length":
			msg = fmt.Sprintf("%s must be between 1 and %d bits", field, swire.MaxWordLength)
		default:
			msg = fmt.Sprintf("%s failed validation (%s)", field, e.Tag())
		}
		out = append(out, ValidationError{Field: field, Message: msg})
	}
	return out
}
