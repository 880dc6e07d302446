package auth

import (
	"errors"
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/oszuidwest/zwfm-lnkgen/internal/config"
	"github.com/oszuidwest/zwfm-lnkgen/internal/utils"
	"github.com/oszuidwest/zwfm-lnkgen/pkg/logger"
)

// HeaderAPIKey carries the client's API key.
const HeaderAPIKey = "X-API-Key"

// ErrInvalidKey is returned when no configured key matches.
var ErrInvalidKey = errors.New("invalid API key")

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch(r.obj, p.obj) && keyMatch(r.act, p.act)
`

// Service handles authentication and authorization.
type Service struct {
	keys     []config.APIKey
	enforcer *casbin.Enforcer
	disabled bool
}

// NewService creates an authentication service for keys. With no keys
// configured every request runs as admin; this is only accepted outside
// production.
func NewService(keys []config.APIKey, env config.Environment) (*Service, error) {
	for _, k := range keys {
		if !IsKnownRole(k.Role) {
			return nil, fmt.Errorf("API key with unknown role %q", k.Role)
		}
		if _, err := bcrypt.Cost([]byte(k.Hash)); err != nil {
			return nil, fmt.Errorf("API key for role %q: %w", k.Role, err)
		}
	}
	if len(keys) == 0 && env.IsProduction() {
		return nil, errors.New("no API keys configured")
	}

	enforcer, err := initializeRBAC()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Casbin: %w", err)
	}

	s := &Service{keys: keys, enforcer: enforcer, disabled: len(keys) == 0}
	if s.disabled {
		logger.Warn("No API keys configured, authentication is disabled")
	}
	return s, nil
}

// initializeRBAC sets up role-based access control using Casbin.
func initializeRBAC() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, err
	}
	return casbin.NewEnforcer(m, NewPolicyAdapter(nil))
}

// Authenticate returns the role of the configured key matching key.
func (s *Service) Authenticate(key string) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}
	for _, k := range s.keys {
		if bcrypt.CompareHashAndPassword([]byte(k.Hash), []byte(key)) == nil {
			return k.Role, nil
		}
	}
	return "", ErrInvalidKey
}

// Allowed reports whether role may perform act on obj.
func (s *Service) Allowed(role string, obj Resource, act Action) (bool, error) {
	return s.enforcer.Enforce(role, string(obj), string(act))
}

// Middleware returns the Gin middleware for authentication enforcement.
func (s *Service) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.disabled {
			SetCaller(c, Caller{Principal: "anonymous", Role: RoleAdmin})
			c.Next()
			return
		}

		role, err := s.Authenticate(c.GetHeader(HeaderAPIKey))
		if err != nil {
			utils.ProblemAuthentication(c, "Authentication required")
			c.Abort()
			return
		}

		SetCaller(c, Caller{Principal: role + "-key", Role: role})
		c.Next()
	}
}

// RequirePermission returns middleware that enforces role-based access control.
func (s *Service) RequirePermission(obj Resource, act Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, roleOk := Role(c)
		if !roleOk {
			logger.Error("RequirePermission: role not found in context")
			utils.ProblemAuthentication(c, "Authentication required")
			c.Abort()
			return
		}

		allowed, err := s.Allowed(role, obj, act)
		if err != nil {
			utils.ProblemInternalServer(c, "Permission check failed")
			c.Abort()
			return
		}

		if !allowed {
			utils.ProblemForbidden(c, fmt.Sprintf("role %q may not %s %s", role, act, obj))
			c.Abort()
			return
		}

		c.Next()
	}
}
