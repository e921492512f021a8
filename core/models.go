package core

import (
	"fmt"
	"strings"
	"time"
)

// Role is the closed set of roles a user can hold.
type Role string

const (
	RoleCoach   Role = "coach"
	RoleTrainee Role = "trainee"

	// AnyRole is used as a route requirement meaning "any authenticated user".
	AnyRole Role = ""
)

// DefaultRole is assigned at registration when none is supplied.
const DefaultRole = RoleTrainee

func (r Role) Valid() bool {
	return r == RoleCoach || r == RoleTrainee
}

func (r Role) String() string {
	if r == AnyRole {
		return "any"
	}
	return string(r)
}

// ParseRole maps s onto a Role. An empty string yields DefaultRole.
func ParseRole(s string) (Role, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultRole, nil
	}
	r := Role(strings.ToLower(s))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// User is the credential record owned by the store.
//
// Email is unique; Role never changes after creation.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	FullName     *string   `json:"full_name,omitempty"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Public returns the client-facing view of u.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// PublicUser is the model returned to clients
type PublicUser struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FullName  *string   `json:"full_name,omitempty"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthContext identifies the caller of an authenticated request.
type AuthContext struct {
	UserID int64  `json:"id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}
