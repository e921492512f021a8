package core

import (
	"fmt"
	"net/http"
	"sort"
)

// Access declares who may call an endpoint.
type Access struct {
	Public bool
	Role   Role
}

// Public endpoints skip authentication entirely.
func Public() Access { return Access{Public: true} }

// Authenticated endpoints accept any active user.
func Authenticated() Access { return Access{Role: AnyRole} }

// RoleRequired endpoints accept only users holding r.
func RoleRequired(r Role) Access { return Access{Role: r} }

func (a Access) String() string {
	if a.Public {
		return "public"
	}
	return a.Role.String()
}

type Endpoint struct {
	Path     string
	Method   string
	Access   Access
	Handler  func(ctx *RequestContext) error
	Metadata EndpointMetadata
}

func (e *Endpoint) key() string {
	return fmt.Sprintf("%s:%s", e.Method, e.Path)
}

type EndpointMetadata struct {
	OperationID string
	Description string
}

// RequestContext is handed to endpoint handlers after the access check.
type RequestContext struct {
	// Framework-specific request, e.g. fiber.Ctx
	Request any
	// Nil for public endpoints
	Auth *AuthContext
}

// Operation ids of the built-in auth endpoints
const (
	OpRegister = "register"
	OpLogin    = "login"
	OpLogout   = "logout"
	OpMe       = "me"
)

// BaseEndpoints returns the built-in auth endpoints, relative to the base
// path. Handlers are nil; HTTP adapters provide their own.
func BaseEndpoints() []Endpoint {
	return []Endpoint{
		{
			Path:   "/register",
			Method: http.MethodPost,
			Access: Public(),
			Metadata: EndpointMetadata{
				OperationID: OpRegister,
				Description: "Register a user with email and password",
			},
		},
		{
			Path:   "/login",
			Method: http.MethodPost,
			Access: Public(),
			Metadata: EndpointMetadata{
				OperationID: OpLogin,
				Description: "Exchange email and password for an access token",
			},
		},
		{
			Path:   "/logout",
			Method: http.MethodPost,
			Access: Public(),
			Metadata: EndpointMetadata{
				OperationID: OpLogout,
				Description: "Clear the access token cookie",
			},
		},
		{
			Path:   "/me",
			Method: http.MethodGet,
			Access: Authenticated(),
			Metadata: EndpointMetadata{
				OperationID: OpMe,
				Description: "Get the current user's identity",
			},
		},
	}
}

// EndpointRegistry collects endpoints and rejects duplicate METHOD:PATH
// combinations.
type EndpointRegistry struct {
	endpoints map[string]*Endpoint
}

// NewEndpointRegistry creates a registry with the base endpoints registered.
func NewEndpointRegistry() *EndpointRegistry {
	reg := &EndpointRegistry{
		endpoints: make(map[string]*Endpoint),
	}
	base := BaseEndpoints()
	for i := range base {
		reg.endpoints[base[i].key()] = &base[i]
	}
	return reg
}

// Register adds endpoints to the registry. If any of them conflicts with an
// existing endpoint or with another in the same batch, nothing is added.
func (r *EndpointRegistry) Register(endpoints ...Endpoint) error {
	seen := make(map[string]bool, len(endpoints))
	for i := range endpoints {
		ep := &endpoints[i]
		key := ep.key()

		if _, exists := r.endpoints[key]; exists {
			return fmt.Errorf("endpoint conflict: %s %s already registered", ep.Method, ep.Path)
		}
		if seen[key] {
			return fmt.Errorf("duplicate endpoint in batch: %s %s", ep.Method, ep.Path)
		}
		seen[key] = true
	}

	for i := range endpoints {
		ep := endpoints[i]
		r.endpoints[ep.key()] = &ep
	}
	return nil
}

// Lookup finds the endpoint with the given operation id.
func (r *EndpointRegistry) Lookup(operationID string) (*Endpoint, bool) {
	for _, ep := range r.endpoints {
		if ep.Metadata.OperationID == operationID {
			return ep, true
		}
	}
	return nil, false
}

// Endpoints returns all registered endpoints ordered by path, then method.
func (r *EndpointRegistry) Endpoints() []*Endpoint {
	result := make([]*Endpoint, 0, len(r.endpoints))
	for _, ep := range r.endpoints {
		result = append(result, ep)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Path != result[j].Path {
			return result[i].Path < result[j].Path
		}
		return result[i].Method < result[j].Method
	})
	return result
}
