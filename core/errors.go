package core

import (
	"errors"
	"strings"
)

// Public error kinds. Every failure that reaches a client is an *Error whose
// Kind is one of these.
var (
	ErrUnauthenticated    = errors.New("not authenticated")                   // 401
	ErrInvalidCredentials = errors.New("incorrect email or password")         // 401
	ErrForbidden          = errors.New("forbidden")                           // 403
	ErrDuplicateEmail     = errors.New("email already registered")            // 400
	ErrWeakPassword       = errors.New("password does not meet requirements") // 400
	ErrInvalidInput       = errors.New("invalid input")                       // 400
	ErrInternal           = errors.New("internal server error")               // 500
)

// Store errors, returned by UserStorage implementations
var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

// Config errors (server-side configuration)
var (
	ErrStorageRequired     = errors.New("user storage is required")
	ErrCodecRequired       = errors.New("token codec is required")
	ErrHTTPAdapterRequired = errors.New("http adapter is required")
	ErrSecretRequired      = errors.New("secret is required")
	ErrSecretTooShort      = errors.New("secret too short")
	ErrInvalidSubjectKind  = errors.New("invalid token subject kind")
	ErrInvalidDelivery     = errors.New("invalid token delivery")
	ErrInvalidPolicy       = errors.New("invalid password policy")
)

// Machine-readable error codes
const (
	CodeUnauthenticated    = "unauthenticated"
	CodeInvalidCredentials = "invalid_credentials"
	CodeRoleMismatch       = "role_mismatch"
	CodeAccountInactive    = "account_inactive"
	CodeDuplicateEmail     = "duplicate_email"
	CodeWeakPassword       = "weak_password"
	CodeInvalidEmail       = "invalid_email"
	CodeInvalidRole        = "invalid_role"
	CodeInvalidRequest     = "invalid_request"
	CodeInternal           = "internal_error"
)

// Error is a classified failure.
//
// Reason carries the underlying cause for logs and is never sent to clients.
type Error struct {
	Kind    error
	Code    string
	Message string
	Reason  error
	Details []string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Code)
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Reason != nil {
		b.WriteString(" (")
		b.WriteString(e.Reason.Error())
		b.WriteString(")")
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Reason == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Reason}
}

func newError(kind error, code, message string, reason error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Reason: reason}
}

func unauthenticated(reason error) *Error {
	return newError(ErrUnauthenticated, CodeUnauthenticated, "could not validate credentials", reason)
}

func invalidCredentials() *Error {
	return newError(ErrInvalidCredentials, CodeInvalidCredentials, "incorrect email or password", nil)
}

func accountInactive() *Error {
	return newError(ErrForbidden, CodeAccountInactive, "inactive user", nil)
}

func internal(reason error) *Error {
	return newError(ErrInternal, CodeInternal, "internal server error", reason)
}

// InvalidInput builds a 400-class error with the given code.
func InvalidInput(code, message string) *Error {
	return newError(ErrInvalidInput, code, message, nil)
}

// AsError classifies err. Anything that is not already an *Error becomes an
// internal error wrapping it.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return internal(err)
}
