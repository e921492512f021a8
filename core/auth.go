package core

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxEmailLength    = 254
	maxFullNameLength = 100
	tokenTypeBearer   = "bearer"
)

// RegisterInput contains the data needed to register a new user
type RegisterInput struct {
	Email    string  `json:"email" form:"email"`
	Password string  `json:"password" form:"password"`
	FullName *string `json:"full_name,omitempty" form:"full_name"`
	Role     string  `json:"role,omitempty" form:"role"`
}

// LoginInput contains the credentials for authentication
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult is the issued token together with the authenticated user.
type LoginResult struct {
	AccessToken string      `json:"access_token,omitempty"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int64       `json:"expires_in"`
	ExpiresAt   time.Time   `json:"-"`
	Role        Role        `json:"role"`
	User        *PublicUser `json:"user"`
}

// Register creates a user after validating input and the password policy.
func (a *Auth) Register(ctx context.Context, input RegisterInput) (*PublicUser, error) {
	user, err := a.register(ctx, input)
	if err != nil {
		e := AsError(err)
		a.observer.ObserveRegistration(e.Code)
		a.logFailure(ctx, "registration failed", e)
		return nil, e
	}

	a.observer.ObserveRegistration(OutcomeSuccess)
	a.log.Info(ctx, "user registered", "user_id", user.ID, "role", string(user.Role))
	return user.Public(), nil
}

func (a *Auth) register(ctx context.Context, input RegisterInput) (*User, error) {
	// Step 1: Validate input
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}

	role, err := ParseRole(input.Role)
	if err != nil {
		return nil, InvalidInput(CodeInvalidRole, "role must be coach or trainee")
	}

	if input.FullName != nil && utf8.RuneCountInString(*input.FullName) > maxFullNameLength {
		return nil, InvalidInput(CodeInvalidRequest,
			fmt.Sprintf("full name must have at most %d characters", maxFullNameLength))
	}

	// Step 2: Check if user already exists
	existing, err := a.storage.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, internal(fmt.Errorf("failed to check existing user: %w", err))
	}
	if existing != nil {
		return nil, duplicateEmail(nil)
	}

	// Step 3: Enforce the password policy
	if err := a.policy.Check(input.Password); err != nil {
		return nil, err
	}

	// Step 4: Hash the password
	hash, err := a.hasher.Hash(input.Password)
	if err != nil {
		return nil, internal(fmt.Errorf("failed to hash password: %w", err))
	}

	// Step 5: Create the user. The unique constraint catches a concurrent
	// registration that slipped past the pre-check.
	user := &User{
		Email:        email,
		FullName:     input.FullName,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := a.storage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrUserExists) {
			return nil, duplicateEmail(err)
		}
		return nil, internal(fmt.Errorf("failed to create user: %w", err))
	}

	return user, nil
}

// Login verifies credentials and issues an access token.
//
// Unknown email and wrong password produce the same error. For an unknown
// email a verification against a throwaway hash still runs so both paths
// cost one password verification.
func (a *Auth) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	res, err := a.login(ctx, input)
	if err != nil {
		e := AsError(err)
		a.observer.ObserveLogin(e.Code)
		a.logFailure(ctx, "login failed", e)
		return nil, e
	}

	a.observer.ObserveLogin(OutcomeSuccess)
	a.log.Info(ctx, "user logged in", "user_id", res.User.ID, "role", string(res.Role))
	return res, nil
}

func (a *Auth) login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" || input.Password == "" {
		return nil, InvalidInput(CodeInvalidRequest, "email and password are required")
	}

	// Step 1: Find the user by email
	user, err := a.storage.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			a.hasher.Verify(input.Password, a.dummyHash)
			return nil, invalidCredentials()
		}
		return nil, internal(fmt.Errorf("failed to find user: %w", err))
	}

	// Step 2: Verify the password
	if !a.hasher.Verify(input.Password, user.PasswordHash) {
		return nil, invalidCredentials()
	}

	// Step 3: Only active accounts may sign in
	if !user.IsActive {
		return nil, accountInactive()
	}

	// Step 4: Issue the token
	signed, claims, err := a.codec.Encode(subjectFor(a.subject, user), string(user.Role))
	if err != nil {
		return nil, internal(fmt.Errorf("failed to issue token: %w", err))
	}

	return &LoginResult{
		AccessToken: signed,
		TokenType:   tokenTypeBearer,
		ExpiresIn:   int64(a.codec.TTL() / time.Second),
		ExpiresAt:   claims.ExpiresAt,
		Role:        user.Role,
		User:        user.Public(),
	}, nil
}

// Authenticate resolves and validates the token carried by src.
func (a *Auth) Authenticate(ctx context.Context, src TokenSource) (*AuthContext, error) {
	return a.authenticator.Authenticate(ctx, src)
}

// Profile loads the stored profile of an authenticated caller.
func (a *Auth) Profile(ctx context.Context, ac *AuthContext) (*PublicUser, error) {
	if ac == nil {
		return nil, unauthenticated(nil)
	}

	user, err := a.storage.GetUserByID(ctx, ac.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, unauthenticated(err)
		}
		return nil, internal(fmt.Errorf("failed to load profile: %w", err))
	}

	return user.Public(), nil
}

// TokenTTL is the lifetime of every issued token.
func (a *Auth) TokenTTL() time.Duration {
	return a.codec.TTL()
}

func (a *Auth) logFailure(ctx context.Context, msg string, e *Error) {
	if errors.Is(e, ErrInternal) {
		a.log.Error(ctx, msg, "code", e.Code, "reason", e.Reason)
		return
	}
	a.log.Info(ctx, msg, "code", e.Code)
}

func normalizeEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", InvalidInput(CodeInvalidEmail, "email is required")
	}
	if len(email) > maxEmailLength {
		return "", InvalidInput(CodeInvalidEmail,
			fmt.Sprintf("email must have at most %d characters", maxEmailLength))
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndexByte(email, '@')+1:], ".") {
		return "", InvalidInput(CodeInvalidEmail, "invalid email format")
	}
	return email, nil
}

func duplicateEmail(reason error) *Error {
	return newError(ErrDuplicateEmail, CodeDuplicateEmail, "email already registered", reason)
}
