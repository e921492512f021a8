package config

import (
	"flag"
	"fmt"
	"io"
	"time"
)

// flagValues holds parsed flags; only flags explicitly present on the
// command line are applied.
type flagValues struct {
	configPath string
	envFile    string
	set        map[string]bool

	addr              string
	env               string
	databaseDSN       string
	autoMigrate       bool
	secretKey         string
	accessTokenTTL    time.Duration
	tokenSubject      string
	tokenDelivery     string
	basePath          string
	logLevel          string
	logFormat         string
	loginRateLimit    int
	passwordMinLength int
}

// parseFlags parses args.
//
// Supported flags:
//
//	-config string            YAML config file
//	-env-file string          dotenv file backing GYMAUTH_* variables
//	-addr string              listen address (e.g. ":8000")
//	-env string               development | production
//	-database-dsn string      PostgreSQL DSN
//	-auto-migrate bool        apply schema migrations at startup
//	-secret-key string        HS256 signing secret
//	-access-token-ttl dur     token lifetime (e.g. "30m")
//	-token-subject string     email | id
//	-token-delivery string    cookie | body | both
//	-base-path string         auth route prefix
//	-log-level string         debug | info | warn | error
//	-log-format string        text | json | zap | zap-console
//	-login-rate-limit int     login attempts per minute per client, 0 disables
//	-password-min-length int  minimum password length
func parseFlags(args []string) (*flagValues, error) {
	v := &flagValues{set: make(map[string]bool)}

	fs := flag.NewFlagSet("gymauth", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&v.configPath, "config", "", "YAML config file")
	fs.StringVar(&v.envFile, "env-file", "", "dotenv file")
	fs.StringVar(&v.addr, "addr", "", "address and port to run server")
	fs.StringVar(&v.env, "env", "", "deployment environment")
	fs.StringVar(&v.databaseDSN, "database-dsn", "", "database DSN")
	fs.BoolVar(&v.autoMigrate, "auto-migrate", false, "apply schema migrations at startup")
	fs.StringVar(&v.secretKey, "secret-key", "", "token signing secret")
	fs.DurationVar(&v.accessTokenTTL, "access-token-ttl", 0, "access token lifetime")
	fs.StringVar(&v.tokenSubject, "token-subject", "", "token subject kind")
	fs.StringVar(&v.tokenDelivery, "token-delivery", "", "token delivery")
	fs.StringVar(&v.basePath, "base-path", "", "auth route prefix")
	fs.StringVar(&v.logLevel, "log-level", "", "log level")
	fs.StringVar(&v.logFormat, "log-format", "", "log format")
	fs.IntVar(&v.loginRateLimit, "login-rate-limit", 0, "login attempts per minute per client")
	fs.IntVar(&v.passwordMinLength, "password-min-length", 0, "minimum password length")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	fs.Visit(func(f *flag.Flag) { v.set[f.Name] = true })

	return v, nil
}

func (v *flagValues) apply(cfg *Config) {
	if v.set["addr"] {
		cfg.Addr = v.addr
	}
	if v.set["env"] {
		cfg.Env = v.env
	}
	if v.set["database-dsn"] {
		cfg.DatabaseDSN = v.databaseDSN
	}
	if v.set["auto-migrate"] {
		cfg.AutoMigrate = v.autoMigrate
	}
	if v.set["secret-key"] {
		cfg.SecretKey = v.secretKey
	}
	if v.set["access-token-ttl"] {
		cfg.AccessTokenTTL = v.accessTokenTTL
	}
	if v.set["token-subject"] {
		cfg.TokenSubject = v.tokenSubject
	}
	if v.set["token-delivery"] {
		cfg.TokenDelivery = v.tokenDelivery
	}
	if v.set["base-path"] {
		cfg.BasePath = v.basePath
	}
	if v.set["log-level"] {
		cfg.LogLevel = v.logLevel
	}
	if v.set["log-format"] {
		cfg.LogFormat = v.logFormat
	}
	if v.set["login-rate-limit"] {
		cfg.LoginRateLimit = v.loginRateLimit
	}
	if v.set["password-min-length"] {
		cfg.PasswordMinLength = v.passwordMinLength
	}
}
