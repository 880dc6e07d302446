package auth

// Resource represents a protected resource type
type Resource string

const (
	ResourceRoutes  Resource = "routes"
	ResourceScripts Resource = "scripts"
	ResourceBatches Resource = "batches"
)

// Action represents an operation on a resource
type Action string

const (
	ActionRead     Action = "read"
	ActionGenerate Action = "generate"
	ActionPurge    Action = "purge"
)

// Roles an API key can carry.
const (
	RoleAdmin    = "admin"
	RoleEngineer = "engineer"
	RoleViewer   = "viewer"
)

// IsKnownRole reports whether role has policies.
func IsKnownRole(role string) bool {
	switch role {
	case RoleAdmin, RoleEngineer, RoleViewer:
		return true
	}
	return false
}
