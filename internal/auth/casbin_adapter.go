// Package auth provides API-key authentication and role-based authorization.
package auth

import (
	"errors"

	"github.com/casbin/casbin/v2/model"
	"github.com/casbin/casbin/v2/persist"
)

// errReadOnlyPolicy is returned by the mutating adapter methods.
var errReadOnlyPolicy = errors.New("policy store is read-only")

// defaultPolicies grants viewers read access, engineers generation on top
// of that, and admins everything.
var defaultPolicies = [][]string{
	{"p", RoleAdmin, "*", "*"},

	{"p", RoleViewer, string(ResourceRoutes), string(ActionRead)},
	{"p", RoleViewer, string(ResourceScripts), string(ActionRead)},
	{"p", RoleViewer, string(ResourceBatches), string(ActionRead)},

	{"p", RoleEngineer, string(ResourceScripts), string(ActionGenerate)},
	{"p", RoleEngineer, string(ResourceBatches), string(ActionGenerate)},

	{"g", RoleEngineer, RoleViewer},
}

// PolicyAdapter implements persist.Adapter over a fixed rule table.
type PolicyAdapter struct {
	rules [][]string
}

// NewPolicyAdapter creates an adapter serving rules. Each rule starts with
// its policy type ("p" or "g"). A nil rules table serves the default policies.
func NewPolicyAdapter(rules [][]string) *PolicyAdapter {
	if rules == nil {
		rules = defaultPolicies
	}
	return &PolicyAdapter{rules: rules}
}

// LoadPolicy loads all policy rules into m.
func (a *PolicyAdapter) LoadPolicy(m model.Model) error {
	for _, rule := range a.rules {
		if err := persist.LoadPolicyArray(rule, m); err != nil {
			return err
		}
	}
	return nil
}

// SavePolicy is not supported.
func (a *PolicyAdapter) SavePolicy(_ model.Model) error {
	return errReadOnlyPolicy
}

// AddPolicy is not supported.
func (a *PolicyAdapter) AddPolicy(_ string, _ string, _ []string) error {
	return errReadOnlyPolicy
}

// RemovePolicy is not supported.
func (a *PolicyAdapter) RemovePolicy(_ string, _ string, _ []string) error {
	return errReadOnlyPolicy
}

// RemoveFilteredPolicy is not supported.
func (a *PolicyAdapter) RemoveFilteredPolicy(_ string, _ string, _ int, _ ...string) error {
	return errReadOnlyPolicy
}
