package core

import "strings"

// Default transport names
const (
	DefaultCookieName = "access_token"
	DefaultHeaderName = "X-Access-Token"

	authorizationHeader = "Authorization"
	bearerScheme        = "Bearer"
)

// Transport names the carrier a token was found in.
type Transport string

const (
	TransportNone   Transport = ""
	TransportCookie Transport = "cookie"
	TransportBearer Transport = "bearer"
	TransportHeader Transport = "header"
)

// TokenSource exposes the parts of an incoming request a token can travel in.
// Missing values are returned as "".
type TokenSource interface {
	Cookie(name string) string
	Header(name string) string
}

// TransportConfig names the cookie and custom header carrying tokens.
type TransportConfig struct {
	CookieName string
	HeaderName string
}

func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		CookieName: DefaultCookieName,
		HeaderName: DefaultHeaderName,
	}
}

func (c TransportConfig) withDefaults() TransportConfig {
	if c.CookieName == "" {
		c.CookieName = DefaultCookieName
	}
	if c.HeaderName == "" {
		c.HeaderName = DefaultHeaderName
	}
	return c
}

// ResolveToken picks the candidate token from src. Precedence is fixed:
// cookie, then "Authorization: Bearer", then the custom header. The first
// non-empty carrier wins even if a later one holds a different token.
func ResolveToken(src TokenSource, cfg TransportConfig) (string, Transport, bool) {
	cfg = cfg.withDefaults()

	if tok := strings.TrimSpace(src.Cookie(cfg.CookieName)); tok != "" {
		return tok, TransportCookie, true
	}

	if tok, ok := parseBearer(src.Header(authorizationHeader)); ok {
		return tok, TransportBearer, true
	}

	if tok := strings.TrimSpace(src.Header(cfg.HeaderName)); tok != "" {
		return tok, TransportHeader, true
	}

	return "", TransportNone, false
}

// parseBearer extracts the credentials of a Bearer authorization value. The
// scheme is matched case-insensitively.
func parseBearer(value string) (string, bool) {
	scheme, rest, found := strings.Cut(strings.TrimSpace(value), " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return "", false
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return "", false
	}
	return rest, true
}
