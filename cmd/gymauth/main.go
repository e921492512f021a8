package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/google/uuid"

	"github.com/gymcoach/gymauth"
	fiberadapter "github.com/gymcoach/gymauth/adapters/fiber"
	"github.com/gymcoach/gymauth/adapters/memory"
	pgxadapter "github.com/gymcoach/gymauth/adapters/pgx"
	"github.com/gymcoach/gymauth/core"
	"github.com/gymcoach/gymauth/internal/config"
	"github.com/gymcoach/gymauth/internal/logging"
	"github.com/gymcoach/gymauth/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "gymauth: %v\n", err)
		os.Exit(1)
	}
}

func accessLogFormat() string {
	format := []string{
		// Timestamp & Request ID
		"${time}|${requestid}",

		// Response metadata
		"${status}|${latency}",

		// Client info
		"${ip}",

		// Request details
		"${method}|${path}",

		// errors
		"${error}",
	}
	return strings.Join(format, "|") + "\n"
}

func run() error {
	cfg, err := config.Load(os.Args[1:], os.Getenv)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logging.Sync(log) }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, closeStorage, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStorage()

	m := metrics.New()

	app := fiber.New(fiber.Config{
		AppName:      "gymauth",
		ErrorHandler: fiberadapter.ErrorHandler(log),
	})
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format:     accessLogFormat(),
		TimeFormat: "2006/01/02 15:04:05",
		TimeZone:   "Local",
		Stream:     os.Stdout,
	}))

	httpAdapter := fiberadapter.New(app,
		fiberadapter.WithLogger(log),
		fiberadapter.WithLoginRateLimit(cfg.LoginRateLimit, time.Minute),
	)

	policy := core.DefaultPasswordPolicy()
	policy.MinLength = cfg.PasswordMinLength

	if _, err := gymauth.New(gymauth.Config{
		Secret:         cfg.SecretKey,
		TokenTTL:       cfg.AccessTokenTTL,
		Storage:        storage,
		HTTP:           httpAdapter,
		PasswordPolicy: &policy,
		SubjectKind:    core.SubjectKind(cfg.TokenSubject),
		Delivery:       core.Delivery(cfg.TokenDelivery),
		Transport: core.TransportConfig{
			CookieName: cfg.CookieName,
			HeaderName: cfg.TokenHeader,
		},
		BasePath:     cfg.BasePath,
		SecureCookie: !cfg.IsDevelopment(),
		Observer:     m,
		Logger:       log,
	}); err != nil {
		return fmt.Errorf("failed to set up auth: %w", err)
	}

	if err := registerAppRoutes(app, httpAdapter, m); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", "addr", cfg.Addr, "env", cfg.Env)
		errCh <- app.Listen(cfg.Addr, fiber.ListenConfig{DisableStartupMessage: true})
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}

// openStorage connects to Postgres when a DSN is configured and falls back
// to the in-memory store otherwise.
func openStorage(ctx context.Context, cfg *config.Config, log logging.Logger) (core.UserStorage, func(), error) {
	if cfg.DatabaseDSN == "" {
		if !cfg.IsDevelopment() {
			log.Warn(ctx, "no database configured, users are kept in memory")
		}
		return memory.New(), func() {}, nil
	}

	pool, err := pgxadapter.Connect(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, err
	}

	if cfg.AutoMigrate {
		if err := pgxadapter.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		log.Info(ctx, "database migrations applied")
	}

	return pgxadapter.New(pool), pool.Close, nil
}

// registerAppRoutes mounts the role-guarded application endpoints and the
// operational endpoints.
func registerAppRoutes(app *fiber.App, httpAdapter *fiberadapter.Adapter, m *metrics.Metrics) error {
	endpoints := []core.Endpoint{
		{
			Path:   "/coach/dashboard",
			Method: fiber.MethodGet,
			Access: core.RoleRequired(core.RoleCoach),
			Handler: func(rc *core.RequestContext) error {
				return rc.Request.(fiber.Ctx).JSON(fiber.Map{
					"message": "welcome, coach",
					"user":    rc.Auth,
				})
			},
			Metadata: core.EndpointMetadata{OperationID: "coach_dashboard"},
		},
		{
			Path:   "/trainee/workouts",
			Method: fiber.MethodGet,
			Access: core.RoleRequired(core.RoleTrainee),
			Handler: func(rc *core.RequestContext) error {
				return rc.Request.(fiber.Ctx).JSON(fiber.Map{
					"workouts": []string{},
					"user":     rc.Auth,
				})
			},
			Metadata: core.EndpointMetadata{OperationID: "trainee_workouts"},
		},
	}
	for _, ep := range endpoints {
		if err := httpAdapter.Handle(ep); err != nil {
			return err
		}
	}

	app.Get("/metrics", fiberadapter.MetricsHandler(m.Handler()))
	app.Get("/healthz", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	return nil
}

