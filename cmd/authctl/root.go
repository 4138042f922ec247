package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kingrain94/tenant-auth-api/internal/config"
	"github.com/kingrain94/tenant-auth-api/internal/domain"
	"github.com/kingrain94/tenant-auth-api/internal/password"
	"github.com/kingrain94/tenant-auth-api/internal/repository"
	"github.com/kingrain94/tenant-auth-api/internal/repository/composite"
	"github.com/kingrain94/tenant-auth-api/internal/repository/postgres"
	"github.com/kingrain94/tenant-auth-api/internal/service"
	"github.com/kingrain94/tenant-auth-api/internal/tenancy"
	"github.com/kingrain94/tenant-auth-api/pkg/logger"
)

// app holds what the commands share. cfg and repo are opened lazily so that
// tests can inject them.
type app struct {
	cfg    *config.Config
	repo   repository.Repository
	log    *logger.Logger
	out    io.Writer
	format string
	close  func()

	tenants       *service.TenantService
	users         *service.UserService
	refreshTokens *service.RefreshTokenService
}

func newRootCommand(a *app) *cobra.Command {
	format := envOr("AUTHCTL_OUT", "text")

	root := &cobra.Command{
		Use:           "authctl",
		Short:         "Operator CLI for tenant-auth-api",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" {
				return fmt.Errorf("--out must be text or json, got %q", format)
			}
			a.format = format
			if a.out == nil {
				a.out = cmd.OutOrStdout()
			}
			return a.open()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.close != nil {
				a.close()
			}
		},
	}
	root.PersistentFlags().StringVar(&format, "out", format, "Output format: text|json (env AUTHCTL_OUT)")

	root.AddCommand(
		newTenantCommand(a),
		newUserCommand(a),
		newTokenCommand(a),
		newTokensCommand(a),
	)
	return root
}

func (a *app) open() error {
	if a.cfg == nil {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	if a.log == nil {
		a.log = logger.NewLogger(a.cfg.Env)
	}

	if a.repo == nil {
		dbConnections, err := config.NewDatabaseConnections(tenancy.NewFilter(tenancy.WithLogger(a.log)))
		if err != nil {
			return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		// security events are not touched by any command
		a.repo = composite.New(postgres.NewPostgresRepository(dbConnections), nil)
		a.close = func() {
			dbConnections.Close()
			_ = a.log.Sync()
		}
	}

	a.refreshTokens = service.NewRefreshTokenService(a.repo, a.cfg.RefreshTokenTTL)
	a.tenants = service.NewTenantService(a.repo, nil)
	a.users = service.NewUserService(a.repo, password.NewHasher(a.cfg.BcryptCost), a.refreshTokens, nil, nil, a.log)
	return nil
}

// tenantContext binds the tenant named by subdomain the same way the login
// flow does, so every later query is scoped to it.
func (a *app) tenantContext(ctx context.Context, subdomain string) (context.Context, *domain.Tenant, error) {
	if subdomain == "" {
		return nil, nil, fmt.Errorf("--subdomain is required")
	}
	tenant, err := a.tenants.GetBySubdomain(ctx, subdomain)
	if err != nil {
		return nil, nil, err
	}
	return tenancy.WithTenant(ctx, tenant), tenant, nil
}

// print writes v as indented JSON or, in text mode, the lines returned by text
func (a *app) print(v any, text func() []string) error {
	if a.format == "json" {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	for _, line := range text() {
		if _, err := fmt.Fprintln(a.out, line); err != nil {
			return err
		}
	}
	return nil
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
