package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// passwordEnv lets operators keep the password out of shell history.
const passwordEnv = "HELPDESK_ADMIN_PASSWORD"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var username, email, password string

	flagSet := pflag.NewFlagSet("provision-admin", pflag.ContinueOnError)
	flagSet.StringVarP(&username, "username", "u", "", "username of the new administrator")
	flagSet.StringVarP(&email, "email", "e", "", "email of the new administrator")
	flagSet.StringVarP(&password, "password", "p", "", "password (default: $"+passwordEnv+")")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if password == "" {
		password = os.Getenv(passwordEnv)
	}
	if username == "" || email == "" || password == "" {
		flagSet.Usage()
		return errors.New("--username, --email and a password are required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("POSTGRES_DSN is required: accounts in the in-memory store do not outlive this process")
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, cfg.App.Name+"-provision-admin", logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(cfg.Postgres.DSN, logger); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:   repository.NewUserRepository(pg.PoolHandle()),
		BcryptCost: cfg.Auth.BcryptCost,
		Logger:     logger,
	})
	user, err := authService.ProvisionAdmin(ctx, service.RegisterInput{
		Username: username,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("provision administrator: %w", err)
	}

	logger.Info("administrator provisioned", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	fmt.Printf("created administrator %q (id %d)\n", user.Username, user.ID)
	return nil
}
