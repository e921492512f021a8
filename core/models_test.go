package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{in: "coach", want: RoleCoach},
		{in: "trainee", want: RoleTrainee},
		{in: " Coach ", want: RoleCoach},
		{in: "", want: RoleTrainee},
		{in: "admin", wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.in, func(t *testing.T) {
			got, err := ParseRole(test.in)
			if test.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}
}

func TestUser_JSONNeverContainsHash(t *testing.T) {
	// Arrange
	u := &User{
		ID:           7,
		Email:        "a@x.com",
		PasswordHash: "$argon2id$secret",
		Role:         RoleCoach,
		IsActive:     true,
		CreatedAt:    time.Unix(0, 0).UTC(),
	}

	// Act
	full, err := json.Marshal(u)
	require.NoError(t, err)
	public, err := json.Marshal(u.Public())
	require.NoError(t, err)

	// Assert
	assert.NotContains(t, string(full), "argon2id")
	assert.NotContains(t, string(public), "argon2id")
	assert.Contains(t, string(public), `"role":"coach"`)
	assert.Contains(t, string(public), `"is_active":true`)
}
