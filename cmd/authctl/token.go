package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kingrain94/tenant-auth-api/internal/config"
	"github.com/kingrain94/tenant-auth-api/internal/domain"
	"github.com/kingrain94/tenant-auth-api/internal/repository"
	"github.com/kingrain94/tenant-auth-api/internal/service"
	"github.com/kingrain94/tenant-auth-api/internal/token"
	"github.com/kingrain94/tenant-auth-api/internal/worker"
)

type issuedTokens struct {
	AccessToken  string    `json:"access_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	RefreshToken string    `json:"refresh_token,omitempty"`
}

func newTokenCommand(a *app) *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Issue tokens for a user",
	}

	var (
		subdomain   string
		email       string
		ttl         time.Duration
		withRefresh bool
	)
	issueCmd := &cobra.Command{
		Use:   "issue",
		Short: "Sign an access token for an existing user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, user, err := a.findUser(cmd.Context(), subdomain, email)
			if err != nil {
				return err
			}
			if !user.CanAuthenticate() {
				return service.ErrInactiveAccount
			}

			if ttl <= 0 {
				ttl = a.cfg.AccessTokenTTL
			}
			codec, err := token.NewCodec(token.Config{
				Secret: []byte(a.cfg.JWTSecretKey),
				Issuer: a.cfg.JWTIssuer,
				TTL:    ttl,
			})
			if err != nil {
				return err
			}
			issued, err := codec.Issue(user)
			if err != nil {
				return err
			}

			out := issuedTokens{AccessToken: issued.Token, ExpiresAt: issued.Claims.ExpiresAtTime()}
			if withRefresh {
				refresh, err := a.refreshTokens.Create(ctx, user)
				if err != nil {
					return err
				}
				out.RefreshToken = refresh.Plain
			}

			return a.print(out, func() []string {
				lines := []string{"Generated JWT Token:", out.AccessToken}
				if out.RefreshToken != "" {
					lines = append(lines, "Refresh Token:", out.RefreshToken)
				}
				return lines
			})
		},
	}
	issueCmd.Flags().StringVar(&subdomain, "subdomain", "", "Subdomain of the user's tenant")
	issueCmd.Flags().StringVar(&email, "email", "", "Email of the user")
	issueCmd.Flags().DurationVar(&ttl, "ttl", 0, "Access token lifetime (default ACCESS_TOKEN_TTL)")
	issueCmd.Flags().BoolVar(&withRefresh, "with-refresh", false, "Also store and print a refresh token")
	_ = issueCmd.MarkFlagRequired("subdomain")
	_ = issueCmd.MarkFlagRequired("email")

	tokenCmd.AddCommand(issueCmd)
	return tokenCmd
}

func newTokensCommand(a *app) *cobra.Command {
	tokensCmd := &cobra.Command{
		Use:   "tokens",
		Short: "Maintain stored refresh tokens",
	}

	var subdomain, email string
	revokeAllCmd := &cobra.Command{
		Use:   "revoke-all",
		Short: "Revoke every refresh token of a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, user, err := a.findUser(cmd.Context(), subdomain, email)
			if err != nil {
				return err
			}
			n, err := a.refreshTokens.RevokeAll(ctx, user.ID)
			if err != nil {
				return err
			}
			return a.print(map[string]int64{"revoked": n}, func() []string {
				return []string{fmt.Sprintf("revoked %d refresh token(s) of %s", n, user.Email)}
			})
		},
	}
	revokeAllCmd.Flags().StringVar(&subdomain, "subdomain", "", "Subdomain of the user's tenant")
	revokeAllCmd.Flags().StringVar(&email, "email", "", "Email of the user")
	_ = revokeAllCmd.MarkFlagRequired("subdomain")
	_ = revokeAllCmd.MarkFlagRequired("email")

	var archive bool
	purgeCmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete expired refresh tokens once, in the same batches as the sweep worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			var archiver worker.Archiver
			if archive {
				s3Config := config.DefaultS3Config()
				s3Client, err := s3Config.GetClient(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to create S3 client: %w", err)
				}
				archiver = worker.NewS3Archiver(s3Client, s3Config, a.log)
			}

			sweeper := worker.NewCleanupWorker(
				a.repo.RefreshToken(),
				archiver,
				nil,
				a.log,
				a.cfg.Sweep.WorkerCount,
				a.cfg.Sweep.BatchSize,
				a.cfg.Sweep.Interval,
			)
			n, err := sweeper.Sweep(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(map[string]int64{"purged": n}, func() []string {
				return []string{fmt.Sprintf("purged %d expired refresh token(s)", n)}
			})
		},
	}
	purgeCmd.Flags().BoolVar(&archive, "archive", false, "Archive purged rows to S3 first")

	tokensCmd.AddCommand(revokeAllCmd, purgeCmd)
	return tokensCmd
}

func (a *app) findUser(ctx context.Context, subdomain, email string) (context.Context, *domain.User, error) {
	ctx, _, err := a.tenantContext(ctx, subdomain)
	if err != nil {
		return nil, nil, err
	}
	user, err := a.repo.User().FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, service.ErrUserNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find user: %w", err)
	}
	return ctx, user, nil
}
