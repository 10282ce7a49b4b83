// Package engine evaluates organization access policy with OPA Rego.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/open-policy-agent/opa/v1/rego"

	"program-access/internal/membership/domain"
)

const allowQuery = "data.programaccess.authz.allow"

// DefaultPolicy grants access to active owner and admin memberships, matching rbac.StaticAuthorizer.
const DefaultPolicy = `package programaccess.authz

default allow := false

privileged_roles := {"owner", "admin"}

allow if {
	input.membership.is_active
	input.membership.role in privileged_roles
}
`

// ErrUnexpectedResult is returned when the policy's allow rule does not evaluate to a boolean.
var ErrUnexpectedResult = errors.New("policy allow is not a boolean")

// OPAAuthorizer implements rbac.Authorizer by evaluating a prepared Rego query.
// The prepared query is immutable and safe for concurrent use.
type OPAAuthorizer struct {
	query rego.PreparedEvalQuery
}

// NewOPAAuthorizer compiles module (DefaultPolicy when empty) and prepares the allow query.
// Returns an error if the module does not compile.
func NewOPAAuthorizer(ctx context.Context, module string) (*OPAAuthorizer, error) {
	if module == "" {
		module = DefaultPolicy
	}
	q, err := rego.New(
		rego.Query(allowQuery),
		rego.Module("programaccess_authz.rego", module),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile policy: %w", err)
	}
	return &OPAAuthorizer{query: q}, nil
}

// LoadPolicyFile reads a Rego module from path.
func LoadPolicyFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read policy file: %w", err)
	}
	return string(b), nil
}

// Allow evaluates the policy for m. An undefined allow rule denies.
func (a *OPAAuthorizer) Allow(ctx context.Context, m *domain.Membership) (bool, error) {
	if m == nil {
		return false, nil
	}
	return a.eval(ctx, membershipInput(m))
}

// HealthCheck evaluates the prepared query against a minimal input. Returns nil on success.
func (a *OPAAuthorizer) HealthCheck(ctx context.Context) error {
	_, err := a.eval(ctx, membershipInput(&domain.Membership{Role: domain.RoleMember}))
	return err
}

func (a *OPAAuthorizer) eval(ctx context.Context, input map[string]interface{}) (bool, error) {
	rs, err := a.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return false, fmt.Errorf("eval policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return false, nil
	}
	allowed, ok := rs[0].Expressions[0].Value.(bool)
	if !ok {
		return false, ErrUnexpectedResult
	}
	return allowed, nil
}

func membershipInput(m *domain.Membership) map[string]interface{} {
	return map[string]interface{}{
		"membership": map[string]interface{}{
			"id":              m.ID,
			"user_id":         m.UserID,
			"organization_id": m.OrgID,
			"role":            string(m.Role),
			"is_active":       m.IsActive,
		},
	}
}
