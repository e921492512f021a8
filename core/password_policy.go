package core

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Password rule names, reported in Error.Details when a password is rejected.
const (
	RuleMinLength = "min_length"
	RuleMaxLength = "max_length"
	RuleUppercase = "uppercase"
	RuleDigit     = "digit"
)

// PasswordPolicy is the complexity policy applied at registration. Lengths
// count characters, not bytes.
type PasswordPolicy struct {
	MinLength        int
	MaxLength        int
	RequireUppercase bool
	RequireDigit     bool
}

func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:        8,
		MaxLength:        128,
		RequireUppercase: true,
		RequireDigit:     true,
	}
}

func (p PasswordPolicy) Validate() error {
	if p.MinLength < 1 {
		return fmt.Errorf("%w: min length must be positive", ErrInvalidPolicy)
	}
	if p.MaxLength < p.MinLength {
		return fmt.Errorf("%w: max length %d below min length %d", ErrInvalidPolicy, p.MaxLength, p.MinLength)
	}
	return nil
}

// Violations returns the names of every rule password fails, in a stable
// order. A nil result means the password is acceptable.
func (p PasswordPolicy) Violations(password string) []string {
	var failed []string

	n := utf8.RuneCountInString(password)
	if n < p.MinLength {
		failed = append(failed, RuleMinLength)
	}
	if p.MaxLength > 0 && n > p.MaxLength {
		failed = append(failed, RuleMaxLength)
	}
	if p.RequireUppercase && !strings.ContainsFunc(password, unicode.IsUpper) {
		failed = append(failed, RuleUppercase)
	}
	if p.RequireDigit && !strings.ContainsFunc(password, unicode.IsDigit) {
		failed = append(failed, RuleDigit)
	}

	return failed
}

// Check returns a weak_password error listing every failed rule, or nil.
func (p PasswordPolicy) Check(password string) error {
	failed := p.Violations(password)
	if len(failed) == 0 {
		return nil
	}
	return &Error{
		Kind:    ErrWeakPassword,
		Code:    CodeWeakPassword,
		Message: p.describe(failed),
		Details: failed,
	}
}

func (p PasswordPolicy) describe(failed []string) string {
	msgs := make([]string, 0, len(failed))
	for _, rule := range failed {
		switch rule {
		case RuleMinLength:
			msgs = append(msgs, fmt.Sprintf("at least %d characters", p.MinLength))
		case RuleMaxLength:
			msgs = append(msgs, fmt.Sprintf("at most %d characters", p.MaxLength))
		case RuleUppercase:
			msgs = append(msgs, "at least one uppercase letter")
		case RuleDigit:
			msgs = append(msgs, "at least one digit")
		}
	}
	return "password must have " + strings.Join(msgs, ", ")
}
