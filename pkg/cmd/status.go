package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/spf13/cobra"

	"github.com/cloudctl/authctl/pkg/auth"
	"github.com/cloudctl/authctl/pkg/client"
	"github.com/cloudctl/authctl/pkg/config"
	"github.com/cloudctl/authctl/pkg/output"
)

type statusOutput struct {
	TenantID    string    `json:"tenantId" yaml:"tenantId"`
	ClientID    string    `json:"clientId" yaml:"clientId"`
	SignedIn    bool      `json:"signedIn" yaml:"signedIn"`
	Valid       bool      `json:"valid" yaml:"valid"`
	ExpiresAt   time.Time `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"`
	Subject     string    `json:"subject,omitempty" yaml:"subject,omitempty"`
	DisplayName string    `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	Tenants     []string  `json:"tenants,omitempty" yaml:"tenants,omitempty"`
}

func NewStatusCommand() *cobra.Command {
	var (
		tenantID string
		clientID string
		check    bool
	)
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the cached credential for a tenant",
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
			stored, ok, err := manager.Get(auth.CacheKey(tenantID, clientID))
			if err != nil {
				return err
			}

			status := statusOutput{TenantID: tenantID, ClientID: clientID, SignedIn: ok}
			if ok {
				token := stored.Token()
				status.Valid = token.Valid()
				status.ExpiresAt = token.Expiry
				status.Subject, status.DisplayName = identityClaims(token)
				if check && status.Valid {
					tenants, err := probeTenants(cmd, rt, token)
					if err != nil {
						return err
					}
					status.Tenants = tenants
				}
			}

			format, err := output.ParseFormat(rt.OutputFormat())
			if err != nil {
				return err
			}
			if format != output.FormatText {
				return output.WriteObject(rt.Writer(), format, status)
			}
			return printStatus(rt, status)
		},
	}
	cmd.Flags().StringVarP(&tenantID, "tenant", "t", "", "Tenant (directory) identifier")
	cmd.Flags().StringVar(&clientID, "client-id", "", "Application (client) identifier; defaults to the built-in application")
	cmd.Flags().BoolVar(&check, "check", false, "Probe the management API with the cached credential")
	return cmd
}

func printStatus(rt *runtimeState, status statusOutput) error {
	w := rt.Writer()
	if !status.SignedIn {
		_, err := fmt.Fprintf(w, "Not signed in to tenant %s (client %s). Run 'authctl login'.\n", status.TenantID, status.ClientID)
		return err
	}
	state := "expired"
	if status.Valid {
		state = "valid"
	}
	_, _ = fmt.Fprintf(w, "Tenant:   %s\n", status.TenantID)
	_, _ = fmt.Fprintf(w, "Client:   %s\n", status.ClientID)
	if status.Subject != "" {
		_, _ = fmt.Fprintf(w, "Account:  %s\n", status.Subject)
	}
	if status.DisplayName != "" {
		_, _ = fmt.Fprintf(w, "Name:     %s\n", status.DisplayName)
	}
	_, _ = fmt.Fprintf(w, "Token:    %s, expires %s\n", state, status.ExpiresAt.UTC().Format(time.RFC3339))
	if len(status.Tenants) > 0 {
		_, _ = fmt.Fprintf(w, "Reaches:  %s\n", strings.Join(status.Tenants, ", "))
	}
	return nil
}

// identityClaims pulls display claims out of the ID token without verifying
// it. The token already came from the issuer over TLS; this is cosmetic.
func identityClaims(token *auth.Token) (subject, name string) {
	raw := token.IDToken
	if raw == "" {
		raw = token.AccessToken
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return "", ""
	}
	for _, key := range []string{"preferred_username", "upn", "email", "sub"} {
		if v, ok := claims[key].(string); ok && v != "" {
			subject = v
			break
		}
	}
	if v, ok := claims["name"].(string); ok {
		name = v
	}
	return subject, name
}

func probeTenants(cmd *cobra.Command, rt *runtimeState, token *auth.Token) ([]string, error) {
	header, err := auth.BearerHeaderConstructor{}.Construct(token)
	if err != nil {
		return nil, err
	}
	cfg := rt.Config()
	api, err := client.New(cfg.ManagementEndpoint, header,
		client.WithTLSConfig(cfg.CAFile, cfg.InsecureSkipTLS))
	if err != nil {
		return nil, err
	}
	tenants, err := api.Tenants(cmd.Context())
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(tenants))
	for _, t := range tenants {
		if t.DisplayName != "" {
			names = append(names, fmt.Sprintf("%s (%s)", t.DisplayName, t.ID))
			continue
		}
		names = append(names, t.ID)
	}
	return names, nil
}
