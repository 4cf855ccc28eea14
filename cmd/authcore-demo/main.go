// Package main walks through the full session lifecycle against the
// embedded directory service: startup restore, customer signup with
// deferred verification, logout, and login, printing the view the shell
// would show after each transition.
//
// Configuration comes from the environment (a .env file is honored):
//
//	AUTHCORE_STORE         file | redis | postgres (default file)
//	AUTHCORE_STATE_DIR     session file directory (default .)
//	AUTHCORE_REDIS_ADDR    redis address; empty starts an in-process miniredis
//	AUTHCORE_POSTGRES_DSN  postgres DSN, required for the postgres store
//	AUTHCORE_TOKEN_SECRET  token signing secret (default: random per run)
//	AUTHCORE_SPLASH        splash window (default 3s)
//
// Run:
//
//	go run ./cmd/authcore-demo
package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/caarlos0/env/v11"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/bengkelink/authcore"
	"github.com/bengkelink/authcore/directory"
	"github.com/bengkelink/authcore/session"
)

type envConfig struct {
	Store       string        `env:"AUTHCORE_STORE" envDefault:"file"`
	StateDir    string        `env:"AUTHCORE_STATE_DIR" envDefault:"."`
	RedisAddr   string        `env:"AUTHCORE_REDIS_ADDR"`
	PostgresDSN string        `env:"AUTHCORE_POSTGRES_DSN"`
	TokenSecret string        `env:"AUTHCORE_TOKEN_SECRET"`
	Splash      time.Duration `env:"AUTHCORE_SPLASH" envDefault:"3s"`
}

func main() {
	if err := run(); err != nil {
		slog.Error("demo failed", "err", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	var ec envConfig
	if err := env.Parse(&ec); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	ctx := context.Background()

	store, cleanup, err := buildStore(ctx, ec)
	if err != nil {
		return err
	}
	defer cleanup()

	svc, err := directory.New(directory.Config{
		TokenSecret: tokenSecret(ec),
		// Accounts self-verify shortly after signup so the walkthrough
		// does not depend on a mail flow.
		AutoVerifyAfter: 2 * time.Second,
	}, nil)
	if err != nil {
		return fmt.Errorf("build directory: %w", err)
	}

	cfg := authcore.DefaultConfig()
	cfg.Splash.Duration = ec.Splash

	controller, err := authcore.New().
		WithConfig(cfg).
		WithStore(store).
		WithService(svc).
		WithAuditSink(authcore.NewJSONWriterSink(os.Stderr)).
		Build()
	if err != nil {
		return fmt.Errorf("build controller: %w", err)
	}
	defer controller.Close()

	gate := authcore.NewSplashGate(cfg.Splash.Duration)
	show := func(label string) {
		s := controller.State()
		logger.Info(label,
			"phase", s.Phase.String(),
			"view", string(authcore.Route(gate.Elapsed(), s)),
		)
	}

	show("cold start")

	if err := controller.Init(ctx); err != nil {
		logger.Warn("startup restore degraded", "err", err)
	}
	show("after init")

	if controller.State().Phase == authcore.PhaseAuthenticated {
		// A previous run left a session behind; restore is the whole story.
		logger.Info("restored persisted session", "user", controller.State().Identity.Email)
		return nil
	}

	states, stop := controller.Watch()
	defer stop()

	outcome, err := controller.Signup(ctx, authcore.SignupRequest{
		Role:            authcore.RoleCustomer,
		Name:            "Dina Rahmawati",
		Email:           "dina@example.com",
		Phone:           "+62-811-555-0199",
		Password:        "abcd12!",
		ConfirmPassword: "abcd12!",
		TermsAccepted:   true,
	})
	if err != nil {
		return fmt.Errorf("signup: %w", err)
	}
	logger.Info("signed up", "outcome", int(outcome))

	// The deferred verification waiter commits Authenticated once the
	// directory self-verifies the account.
	if err := awaitPhase(states, authcore.PhaseAuthenticated, 10*time.Second); err != nil {
		return err
	}
	show("after verification")

	if err := controller.Logout(ctx); err != nil {
		logger.Warn("logout left store dirty", "err", err)
	}
	show("after logout")

	if _, err := controller.Login(ctx, authcore.Credentials{
		Role:     authcore.RoleCustomer,
		Email:    "dina@example.com",
		Password: "abcd12!",
	}); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	show("after login")

	logger.Info("audit events dropped", "count", controller.AuditDropped())
	return nil
}

func buildStore(ctx context.Context, ec envConfig) (authcore.Store, func(), error) {
	switch ec.Store {
	case "file":
		return session.NewFileStore(ec.StateDir), func() {}, nil
	case "redis":
		addr := ec.RedisAddr
		cleanup := func() {}
		if addr == "" {
			mr, err := miniredis.Run()
			if err != nil {
				return nil, nil, fmt.Errorf("start miniredis: %w", err)
			}
			addr = mr.Addr()
			cleanup = mr.Close
			slog.Info("using in-process redis", "addr", addr)
		}
		client := redis.NewClient(&redis.Options{Addr: addr})
		return session.NewRedisStore(client, "authcore-demo"), cleanup, nil
	case "postgres":
		if ec.PostgresDSN == "" {
			return nil, nil, errors.New("AUTHCORE_POSTGRES_DSN required for the postgres store")
		}
		pool, err := pgxpool.New(ctx, ec.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		return session.NewPostgresStore(pool, "authcore-demo"), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", ec.Store)
	}
}

func tokenSecret(ec envConfig) []byte {
	if ec.TokenSecret != "" {
		return []byte(ec.TokenSecret)
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic(err)
	}
	return secret
}

func awaitPhase(states <-chan authcore.State, want authcore.Phase, timeout time.Duration) error {
	deadline := time.After(timeout)
	for {
		select {
		case s, ok := <-states:
			if !ok {
				return errors.New("state stream closed")
			}
			if s.Phase == want {
				return nil
			}
		case <-deadline:
			return fmt.Errorf("timed out waiting for phase %s", want)
		}
	}
}
