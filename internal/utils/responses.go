package utils

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// MessageResponse represents a simple message response (typed alternative to gin.H).
type MessageResponse struct {
	Message string `json:"message"`
}

// ListResponse represents a paginated list response (typed alternative to gin.H).
type ListResponse struct {
	Data   any   `json:"data"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// Success responds with HTTP 200 OK status and the provided data.
func Success(c *gin.Context, data any) {
	if c == nil {
		return
	}
	c.JSON(http.StatusOK, data)
}

// PaginatedResponse responds with paginated data in a consistent format.
func PaginatedResponse(c *gin.Context, data any, total int64, limit, offset int) {
	if c == nil {
		return
	}
	c.JSON(http.StatusOK, ListResponse{
		Data:   data,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// CreatedWithLocation responds with HTTP 201 Created, the given body and a
// Location header pointing at resourcePath/id.
func CreatedWithLocation(c *gin.Context, id, resourcePath string, data any) {
	if c == nil {
		return
	}
	c.Header("Location", fmt.Sprintf("%s/%s", resourcePath, id))
	c.JSON(http.StatusCreated, data)
}

// Attachment responds with HTTP 200 and body served as a downloadable file.
func Attachment(c *gin.Context, fileName, contentType string, body []byte) {
	if c == nil {
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
	c.Data(http.StatusOK, contentType, body)
}

// RFC 9457 Problem Details compatible error response functions.

// respond stamps the request trace ID onto problem and sends it.
func respond(c *gin.Context, problem *ProblemDetail) {
	if c == nil {
		return
	}
	problem.TraceID = traceID(c)
	SendProblem(c, problem)
}

// ProblemValidationError responds with HTTP 422 listing the failed fields.
func ProblemValidationError(c *gin.Context, detail string, fields []ValidationError) {
	problem := typeValidation.problem(detail)
	problem.Errors = fields
	respond(c, problem)
}

// ProblemNotFound responds with HTTP 404 for resource.
func ProblemNotFound(c *gin.Context, resource string) {
	respond(c, typeNotFound.problem(resource+" not found"))
}

// ProblemDuplicate responds with HTTP 409 for resource.
func ProblemDuplicate(c *gin.Context, resource string) {
	respond(c, typeDuplicate.problem(resource+" already exists"))
}

// ProblemAuthentication responds with HTTP 401 and an API key challenge.
func ProblemAuthentication(c *gin.Context, detail string) {
	if c != nil {
		c.Header("WWW-Authenticate", `APIKey realm="lnkgen", header="X-API-Key"`)
	}
	respond(c, typeUnauthenticated.problem(detail))
}

// ProblemForbidden responds with HTTP 403.
func ProblemForbidden(c *gin.Context, detail string) {
	respond(c, typeForbidden.problem(detail))
}

// ProblemInternalServer responds with HTTP 500.
func ProblemInternalServer(c *gin.Context, detail string) {
	respond(c, typeInternal.problem(detail))
}

// ProblemBadRequest responds with HTTP 400.
func ProblemBadRequest(c *gin.Context, detail string) {
	respond(c, typeBadRequest.problem(detail))
}

// ProblemExtended responds with a problem typed by an application error
// code, carrying the code and a hint naming the offending parameter.
func ProblemExtended(c *gin.Context, status int, detail, code, hint string) {
	problem := codeType(code, status).problem(detail)
	problem.Code = code
	problem.Hint = hint
	respond(c, problem)
}
