package services

import (
	"fmt"

	"github.com/casbin/casbin/v2"

	"github.com/you/classauth/domain"
)

// ruleEnforcer is the slice of casbin.Enforcer this service depends on, so
// tests can substitute a fake without a database-backed adapter.
type ruleEnforcer interface {
	AddPolicy(params ...interface{}) (bool, error)
	Enforce(rvals ...interface{}) (bool, error)
	GetPolicy() ([][]string, error)
	SavePolicy() error
}

// PolicyServiceImpl implements domain.PolicyService over a casbin enforcer.
// It only carries what the admin surface needs: enforcement per request and
// seed-time policy writes.
type PolicyServiceImpl struct {
	enforcer ruleEnforcer
}

// NewPolicyService creates a policy service over a casbin enforcer
func NewPolicyService(enforcer *casbin.Enforcer) *PolicyServiceImpl {
	return &PolicyServiceImpl{enforcer: enforcer}
}

// newPolicyServiceWith allows tests to inject a fake enforcer
func newPolicyServiceWith(enforcer ruleEnforcer) *PolicyServiceImpl {
	return &PolicyServiceImpl{enforcer: enforcer}
}

// AddPolicy implements domain.PolicyService. The rule is persisted through the
// enforcer's adapter immediately.
func (p *PolicyServiceImpl) AddPolicy(role, resource, action string) error {
	if _, err := p.enforcer.AddPolicy(role, resource, action); err != nil {
		return fmt.Errorf("failed to add policy: %w", err)
	}
	return p.enforcer.SavePolicy()
}

// CheckPermission implements domain.PolicyService
func (p *PolicyServiceImpl) CheckPermission(role, resource, action string) (bool, error) {
	return p.enforcer.Enforce(role, resource, action)
}

// GetPolicies implements domain.PolicyService
func (p *PolicyServiceImpl) GetPolicies() [][]string {
	policies, _ := p.enforcer.GetPolicy()
	return policies
}

// Compile-time interface compliance verification
var _ domain.PolicyService = (*PolicyServiceImpl)(nil)
