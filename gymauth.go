// Package gymauth wires token-based authentication and role authorization
// for the gym-coaching backend into an HTTP framework.
package gymauth

import (
	"fmt"
	"time"

	"github.com/gymcoach/gymauth/core"
	"github.com/gymcoach/gymauth/pkg/crypto"
	"github.com/gymcoach/gymauth/pkg/token"
)

// interfaces
type (
	UserStorage     = core.UserStorage
	HTTPAdapter     = core.HTTPAdapter
	AuthHandler     = core.AuthHandler
	Observer        = core.Observer
	PasswordHandler = crypto.PasswordHandler
)

// structs
type (
	Auth            = core.Auth
	Config          = core.Config
	PasswordPolicy  = core.PasswordPolicy
	TransportConfig = core.TransportConfig
	Endpoint        = core.Endpoint
	RequestContext  = core.RequestContext
)

type (
	User        = core.User
	PublicUser  = core.PublicUser
	AuthContext = core.AuthContext
	Role        = core.Role
	Delivery    = core.Delivery
	SubjectKind = core.SubjectKind
)

const (
	RoleCoach   = core.RoleCoach
	RoleTrainee = core.RoleTrainee
	AnyRole     = core.AnyRole

	DeliveryCookie = core.DeliveryCookie
	DeliveryBody   = core.DeliveryBody
	DeliveryBoth   = core.DeliveryBoth

	SubjectEmail = core.SubjectEmail
	SubjectID    = core.SubjectID
)

const (
	defaultBasePath  = "/auth"
	defaultSecretLen = 32
	defaultTokenTTL  = 30 * time.Minute
)

// Constructors & helpers (convenience re-exports)
var (
	NewArgon2             = crypto.NewArgon2
	DefaultPasswordPolicy = core.DefaultPasswordPolicy
	Public                = core.Public
	Authenticated         = core.Authenticated
	RoleRequired          = core.RoleRequired
	Authorize             = core.Authorize
)

var (
	ErrUnauthenticated    = core.ErrUnauthenticated
	ErrInvalidCredentials = core.ErrInvalidCredentials
	ErrForbidden          = core.ErrForbidden
	ErrDuplicateEmail     = core.ErrDuplicateEmail
	ErrWeakPassword       = core.ErrWeakPassword
	ErrInvalidInput       = core.ErrInvalidInput
	ErrInternal           = core.ErrInternal
)

var (
	ErrUserExists   = core.ErrUserExists
	ErrUserNotFound = core.ErrUserNotFound
)

var (
	ErrStorageRequired     = core.ErrStorageRequired
	ErrHTTPAdapterRequired = core.ErrHTTPAdapterRequired
	ErrSecretRequired      = core.ErrSecretRequired
	ErrSecretTooShort      = core.ErrSecretTooShort
)

// New validates config, builds the token codec and the auth flows, and
// mounts the auth routes on config.HTTP.
func New(config Config) (*Auth, error) {
	if config.Secret == "" {
		return nil, ErrSecretRequired
	}
	if len(config.Secret) < defaultSecretLen {
		return nil, fmt.Errorf("%w - minimum of %d characters", ErrSecretTooShort, defaultSecretLen)
	}
	if config.Storage == nil {
		return nil, ErrStorageRequired
	}
	if config.HTTP == nil {
		return nil, ErrHTTPAdapterRequired
	}

	// Set Defaults

	ttl := config.TokenTTL
	if ttl == 0 {
		ttl = defaultTokenTTL
	}

	basePath := config.BasePath
	if basePath == "" {
		basePath = defaultBasePath
	}

	codec, err := token.NewCodec([]byte(config.Secret), ttl)
	if err != nil {
		return nil, err
	}

	auth, err := core.NewAuth(config, codec)
	if err != nil {
		return nil, err
	}

	if err := config.HTTP.RegisterRoutes(auth, core.RouteOptions{
		BasePath:     basePath,
		Transport:    config.Transport,
		Delivery:     config.Delivery,
		SecureCookie: config.SecureCookie,
	}); err != nil {
		return nil, err
	}

	return auth, nil
}
