package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "GYMAUTH_"

// loadEnv overlays GYMAUTH_<KEY> variables, where KEY is the upper-cased
// YAML key. Empty variables are ignored.
func loadEnv(cfg *Config, getenv func(string) string) error {
	strs := map[string]*string{
		"ADDR":           &cfg.Addr,
		"ENV":            &cfg.Env,
		"DATABASE_DSN":   &cfg.DatabaseDSN,
		"SECRET_KEY":     &cfg.SecretKey,
		"TOKEN_SUBJECT":  &cfg.TokenSubject,
		"TOKEN_DELIVERY": &cfg.TokenDelivery,
		"COOKIE_NAME":    &cfg.CookieName,
		"TOKEN_HEADER":   &cfg.TokenHeader,
		"BASE_PATH":      &cfg.BasePath,
		"LOG_LEVEL":      &cfg.LogLevel,
		"LOG_FORMAT":     &cfg.LogFormat,
	}
	for key, dst := range strs {
		if v := getenv(envPrefix + key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"LOGIN_RATE_LIMIT":    &cfg.LoginRateLimit,
		"PASSWORD_MIN_LENGTH": &cfg.PasswordMinLength,
	}
	for key, dst := range ints {
		v := getenv(envPrefix + key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s%s: %v", ErrInvalidValue, envPrefix, key, err)
		}
		*dst = n
	}

	if v := getenv(envPrefix + "AUTO_MIGRATE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %sAUTO_MIGRATE: %v", ErrInvalidValue, envPrefix, err)
		}
		cfg.AutoMigrate = b
	}

	if v := getenv(envPrefix + "ACCESS_TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %sACCESS_TOKEN_TTL: %v", ErrInvalidValue, envPrefix, err)
		}
		cfg.AccessTokenTTL = d
	}
	return nil
}

// withEnvFile returns a getenv that falls back to the variables of a dotenv
// file. Variables set in the real environment win.
func withEnvFile(getenv func(string) string, path string) (func(string) string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return func(key string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return vars[key]
	}, nil
}
