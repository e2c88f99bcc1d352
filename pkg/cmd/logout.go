package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cloudctl/authctl/pkg/auth"
	"github.com/cloudctl/authctl/pkg/config"
)

func NewLogoutCommand() *cobra.Command {
	var (
		tenantID string
		clientID string
	)
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Discard the cached credential for a tenant",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			cfg := rt.Config()
			if tenantID == "" {
				tenantID = cfg.TenantID
			}
			if tenantID == "" {
				return &auth.ConfigurationError{Reason: "tenant identifier is required"}
			}
			if clientID == "" {
				clientID = cfg.ClientID
			}
			if clientID == "" {
				clientID = auth.DefaultClientID
			}

			manager := auth.TokenCacheManager{
				CachePath:   config.DefaultTokenPath(),
				StorageMode: strings.ToLower(cfg.Settings.TokenStorage),
			}
			if err := manager.Delete(auth.CacheKey(tenantID, clientID)); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Signed out of tenant %s\n", tenantID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&tenantID, "tenant", "t", "", "Tenant (directory) identifier")
	cmd.Flags().StringVar(&clientID, "client-id", "", "Application (client) identifier; defaults to the built-in application")
	return cmd
}
