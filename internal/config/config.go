// Package config loads the server configuration: defaults, then an optional
// YAML file, then GYMAUTH_* environment variables (optionally backed by a
// dotenv file), then command-line flags.
package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	MinSecretLength = 32
)

var (
	ErrSecretRequired = errors.New("secret_key is required")
	ErrSecretTooShort = errors.New("secret_key too short")
	ErrInvalidValue   = errors.New("invalid configuration value")
)

// Config holds runtime settings for the gymauth server.
//
// An empty DatabaseDSN selects the in-memory user store.
type Config struct {
	Addr              string
	Env               string
	DatabaseDSN       string
	AutoMigrate       bool
	SecretKey         string
	AccessTokenTTL    time.Duration
	TokenSubject      string
	TokenDelivery     string
	CookieName        string
	TokenHeader       string
	BasePath          string
	LogLevel          string
	LogFormat         string
	LoginRateLimit    int
	PasswordMinLength int
}

// LoadDefaults populates Config with development-friendly defaults. There is
// no default secret.
func (c *Config) LoadDefaults() {
	c.Addr = ":8000"
	c.Env = EnvProduction
	c.DatabaseDSN = ""
	c.AutoMigrate = true
	c.SecretKey = ""
	c.AccessTokenTTL = 30 * time.Minute
	c.TokenSubject = "email"
	c.TokenDelivery = "both"
	c.CookieName = "access_token"
	c.TokenHeader = "X-Access-Token"
	c.BasePath = "/auth"
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.LoginRateLimit = 10
	c.PasswordMinLength = 8
}

// IsDevelopment reports whether cookies may be sent without Secure.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// Validate checks the loaded configuration once, at startup.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return ErrSecretRequired
	}
	if len(c.SecretKey) < MinSecretLength {
		return fmt.Errorf("%w - minimum of %d characters", ErrSecretTooShort, MinSecretLength)
	}
	if c.AccessTokenTTL < time.Second {
		return fmt.Errorf("%w: access_token_ttl must be at least 1s, got %s", ErrInvalidValue, c.AccessTokenTTL)
	}
	if c.Env != EnvDevelopment && c.Env != EnvProduction {
		return fmt.Errorf("%w: env must be %q or %q, got %q", ErrInvalidValue, EnvDevelopment, EnvProduction, c.Env)
	}
	if err := oneOf("token_subject", c.TokenSubject, "email", "id"); err != nil {
		return err
	}
	if err := oneOf("token_delivery", c.TokenDelivery, "cookie", "body", "both"); err != nil {
		return err
	}
	if err := oneOf("log_format", c.LogFormat, "text", "json", "zap", "zap-console"); err != nil {
		return err
	}
	if c.CookieName == "" || c.TokenHeader == "" {
		return fmt.Errorf("%w: cookie_name and token_header must not be empty", ErrInvalidValue)
	}
	if c.LoginRateLimit < 0 {
		return fmt.Errorf("%w: login_rate_limit must not be negative", ErrInvalidValue)
	}
	if c.PasswordMinLength < 1 || c.PasswordMinLength > 128 {
		return fmt.Errorf("%w: password_min_length must be between 1 and 128", ErrInvalidValue)
	}
	return nil
}

func oneOf(key, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%w: %s must be one of %v, got %q", ErrInvalidValue, key, allowed, value)
}

// Load builds a Config from args (without the program name) and getenv.
func Load(args []string, getenv func(string) string) (*Config, error) {
	flags, err := parseFlags(args)
	if err != nil {
		return nil, err
	}

	envFile := flags.envFile
	if envFile == "" {
		envFile = getenv(envPrefix + "ENV_FILE")
	}
	if envFile != "" {
		if getenv, err = withEnvFile(getenv, envFile); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	cfg.LoadDefaults()

	path := flags.configPath
	if path == "" {
		path = getenv(envPrefix + "CONFIG")
	}
	if path != "" {
		if err := loadYAML(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := loadEnv(cfg, getenv); err != nil {
		return nil, err
	}

	flags.apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
