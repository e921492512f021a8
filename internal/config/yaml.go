package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// yamlConfig mirrors Config for file decoding. Pointer fields distinguish
// "absent" from zero values so only keys present in the file override.
type yamlConfig struct {
	Addr              *string `yaml:"addr"`
	Env               *string `yaml:"env"`
	DatabaseDSN       *string `yaml:"database_dsn"`
	AutoMigrate       *bool   `yaml:"auto_migrate"`
	SecretKey         *string `yaml:"secret_key"`
	AccessTokenTTL    *string `yaml:"access_token_ttl"`
	TokenSubject      *string `yaml:"token_subject"`
	TokenDelivery     *string `yaml:"token_delivery"`
	CookieName        *string `yaml:"cookie_name"`
	TokenHeader       *string `yaml:"token_header"`
	BasePath          *string `yaml:"base_path"`
	LogLevel          *string `yaml:"log_level"`
	LogFormat         *string `yaml:"log_format"`
	LoginRateLimit    *int    `yaml:"login_rate_limit"`
	PasswordMinLength *int    `yaml:"password_min_length"`
}

func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return decodeYAML(cfg, data)
}

func decodeYAML(cfg *Config, data []byte) error {
	var y yamlConfig
	if err := yaml.Unmarshal(data, &y); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	setString(&cfg.Addr, y.Addr)
	setString(&cfg.Env, y.Env)
	setString(&cfg.DatabaseDSN, y.DatabaseDSN)
	setString(&cfg.SecretKey, y.SecretKey)
	setString(&cfg.TokenSubject, y.TokenSubject)
	setString(&cfg.TokenDelivery, y.TokenDelivery)
	setString(&cfg.CookieName, y.CookieName)
	setString(&cfg.TokenHeader, y.TokenHeader)
	setString(&cfg.BasePath, y.BasePath)
	setString(&cfg.LogLevel, y.LogLevel)
	setString(&cfg.LogFormat, y.LogFormat)

	if y.AutoMigrate != nil {
		cfg.AutoMigrate = *y.AutoMigrate
	}
	if y.LoginRateLimit != nil {
		cfg.LoginRateLimit = *y.LoginRateLimit
	}
	if y.PasswordMinLength != nil {
		cfg.PasswordMinLength = *y.PasswordMinLength
	}
	if y.AccessTokenTTL != nil {
		d, err := time.ParseDuration(*y.AccessTokenTTL)
		if err != nil {
			return fmt.Errorf("%w: access_token_ttl: %v", ErrInvalidValue, err)
		}
		cfg.AccessTokenTTL = d
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
