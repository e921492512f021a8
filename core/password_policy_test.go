package core

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordPolicy_Violations(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     []string
	}{
		{name: "meets every rule", password: "Password1"},
		{name: "exactly min length", password: "Abcdefg1"},
		{name: "too short", password: "Pass1", want: []string{RuleMinLength}},
		{name: "no uppercase", password: "password1", want: []string{RuleUppercase}},
		{name: "no digit", password: "Password", want: []string{RuleDigit}},
		{name: "empty", password: "", want: []string{RuleMinLength, RuleUppercase, RuleDigit}},
		{name: "too long", password: "A1" + strings.Repeat("a", 127), want: []string{RuleMaxLength}},
		{name: "max length", password: "A1" + strings.Repeat("a", 126)},
		{name: "counts characters not bytes", password: "Ééééééé1"},
	}

	policy := DefaultPasswordPolicy()

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// Act
			got := policy.Violations(test.password)

			// Assert
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("Violations() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPasswordPolicy_Check(t *testing.T) {
	// Act
	err := DefaultPasswordPolicy().Check("short")

	// Assert
	require.ErrorIs(t, err, ErrWeakPassword)
	e := AsError(err)
	assert.Equal(t, CodeWeakPassword, e.Code)
	assert.Equal(t, []string{RuleMinLength, RuleUppercase, RuleDigit}, e.Details)
	assert.Contains(t, e.Message, "at least 8 characters")
	assert.Contains(t, e.Message, "uppercase")
	assert.Contains(t, e.Message, "digit")

	assert.NoError(t, DefaultPasswordPolicy().Check("Password1"))
}

func TestPasswordPolicy_Validate(t *testing.T) {
	tests := []struct {
		name    string
		policy  PasswordPolicy
		wantErr bool
	}{
		{name: "default", policy: DefaultPasswordPolicy()},
		{name: "zero min", policy: PasswordPolicy{MinLength: 0, MaxLength: 10}, wantErr: true},
		{name: "max below min", policy: PasswordPolicy{MinLength: 10, MaxLength: 5}, wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.policy.Validate()
			if test.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPolicy)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestPasswordPolicy_OptionalRules(t *testing.T) {
	policy := PasswordPolicy{MinLength: 4, MaxLength: 8}

	assert.Empty(t, policy.Violations("abcd"))
}
