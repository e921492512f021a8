package core

import "fmt"

// Decision is the result of an authorization check.
type Decision struct {
	Allowed  bool
	Reason   string
	Required Role
	Actual   Role
}

// Err converts a denial into a Forbidden error; an allow yields nil.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	if d.Reason == CodeUnauthenticated {
		return unauthenticated(nil)
	}
	return &Error{
		Kind:    ErrForbidden,
		Code:    d.Reason,
		Message: fmt.Sprintf("requires role %s", d.Required),
		Reason:  fmt.Errorf("caller has role %q", d.Actual),
	}
}

// Authorize checks ac against the role a route requires. There is no role
// hierarchy: a coach does not satisfy a trainee requirement.
func Authorize(ac *AuthContext, required Role) Decision {
	if ac == nil {
		return Decision{Reason: CodeUnauthenticated, Required: required}
	}
	if required == AnyRole {
		return Decision{Allowed: true, Required: required, Actual: ac.Role}
	}
	if ac.Role != required {
		return Decision{Reason: CodeRoleMismatch, Required: required, Actual: ac.Role}
	}
	return Decision{Allowed: true, Required: required, Actual: ac.Role}
}
