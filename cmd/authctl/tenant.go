package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kingrain94/tenant-auth-api/internal/api/dto"
)

func newTenantCommand(a *app) *cobra.Command {
	tenantCmd := &cobra.Command{
		Use:   "tenant",
		Short: "Provision and inspect tenants",
	}

	var name, subdomain string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a trial tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			tenant, err := a.tenants.Create(cmd.Context(), dto.CreateTenantRequest{Name: name, Subdomain: subdomain})
			if err != nil {
				return err
			}
			return a.print(tenant, func() []string {
				return []string{tenantLine(tenant)}
			})
		},
	}
	createCmd.Flags().StringVar(&name, "name", "", "Display name of the tenant")
	createCmd.Flags().StringVar(&subdomain, "subdomain", "", "Subdomain used at login (e.g. acme)")
	_ = createCmd.MarkFlagRequired("name")
	_ = createCmd.MarkFlagRequired("subdomain")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List operational tenants",
		RunE: func(cmd *cobra.Command, args []string) error {
			tenants, err := a.tenants.List(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(tenants, func() []string {
				lines := make([]string, len(tenants))
				for i := range tenants {
					lines[i] = tenantLine(&tenants[i])
				}
				return lines
			})
		},
	}

	var statusSubdomain, status string
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Move a tenant to trial, active or suspended",
		RunE: func(cmd *cobra.Command, args []string) error {
			tenant, err := a.tenants.SetStatus(cmd.Context(), statusSubdomain, status)
			if err != nil {
				return err
			}
			return a.print(tenant, func() []string {
				return []string{tenantLine(tenant)}
			})
		},
	}
	statusCmd.Flags().StringVar(&statusSubdomain, "subdomain", "", "Subdomain of the tenant")
	statusCmd.Flags().StringVar(&status, "status", "", "New status: trial|active|suspended")
	_ = statusCmd.MarkFlagRequired("subdomain")
	_ = statusCmd.MarkFlagRequired("status")

	tenantCmd.AddCommand(createCmd, listCmd, statusCmd)
	return tenantCmd
}

func tenantLine(t *dto.TenantResponse) string {
	return fmt.Sprintf("%s\t%s\t%s\t%s", t.ID, t.Subdomain, t.Status, t.Name)
}
