package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kingrain94/tenant-auth-api/internal/api/dto"
)

func newUserCommand(a *app) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users of a tenant",
	}

	var (
		subdomain string
		req       dto.CreateUserRequest
	)
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user, typically the first admin of a new tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, _, err := a.tenantContext(cmd.Context(), subdomain)
			if err != nil {
				return err
			}
			user, err := a.users.Provision(ctx, req)
			if err != nil {
				return err
			}
			return a.print(user, func() []string {
				return []string{fmt.Sprintf("%s\t%s\t%s", user.ID, user.Email, strings.Join(user.Roles, ","))}
			})
		},
	}
	createCmd.Flags().StringVar(&subdomain, "subdomain", "", "Subdomain of the tenant")
	createCmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	createCmd.Flags().StringVar(&req.Password, "password", "", "Initial password")
	createCmd.Flags().StringVar(&req.FirstName, "first-name", "", "First name")
	createCmd.Flags().StringVar(&req.LastName, "last-name", "", "Last name")
	createCmd.Flags().StringSliceVar(&req.Roles, "roles", nil, "Comma-separated roles, e.g. ROLE_ADMIN")
	_ = createCmd.MarkFlagRequired("subdomain")
	_ = createCmd.MarkFlagRequired("email")
	_ = createCmd.MarkFlagRequired("password")

	userCmd.AddCommand(createCmd)
	return userCmd
}
