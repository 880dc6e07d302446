package auth

import "github.com/gin-gonic/gin"

// ContextKey is a typed key for context values.
type ContextKey string

// Context keys for storing caller information in request context.
const (
	// CtxKeyPrincipal is the context key for the caller's display name.
	CtxKeyPrincipal ContextKey = "principal"
	// CtxKeyRole is the context key for the caller's role.
	CtxKeyRole ContextKey = "role"
)

// Caller is the authenticated client of a request.
type Caller struct {
	Principal string
	Role      string
}

// SetCaller stores the caller in the gin context.
func SetCaller(c *gin.Context, caller Caller) {
	c.Set(string(CtxKeyPrincipal), caller.Principal)
	c.Set(string(CtxKeyRole), caller.Role)
}

// Role retrieves the caller role from context.
func Role(c *gin.Context) (string, bool) {
	return getContextString(c, CtxKeyRole)
}

// Principal retrieves the caller name from context, or "anonymous".
func Principal(c *gin.Context) string {
	if p, ok := getContextString(c, CtxKeyPrincipal); ok {
		return p
	}
	return "anonymous"
}

// getContextString safely retrieves a string from context.
func getContextString(c *gin.Context, key ContextKey) (string, bool) {
	val, exists := c.Get(string(key))
	if !exists {
		return "", false
	}
	if s, ok := val.(string); ok {
		return s, true
	}
	return "", false
}
