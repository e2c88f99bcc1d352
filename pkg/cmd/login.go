package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cloudctl/authctl/pkg/auth"
	"github.com/cloudctl/authctl/pkg/certstore"
	"github.com/cloudctl/authctl/pkg/config"
)

type flowFlags struct {
	tenantID    string
	clientID    string
	redirectURI string
	deviceCode  bool
	thumbprint  string
	refresh     bool
}

func (f *flowFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.tenantID, "tenant", "t", "", "Tenant (directory) identifier")
	cmd.Flags().StringVar(&f.clientID, "client-id", "", "Application (client) identifier; defaults to the built-in application")
	cmd.Flags().StringVar(&f.redirectURI, "redirect-uri", "", "Redirect URI override (ignored for the built-in application)")
	cmd.Flags().BoolVar(&f.deviceCode, "device-code", false, "Authenticate with a device code on a second device")
	cmd.Flags().StringVar(&f.thumbprint, "certificate-thumbprint", "", "Authenticate with the certificate matching this thumbprint")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "Renew the cached session without prompting")
}

// authContext merges flags with config defaults and picks the single active
// mode. The flag layer owns mutual exclusivity; the auth package still fails
// fast if it is violated.
func (f *flowFlags) authContext(cfg *config.Config) (auth.AuthContext, error) {
	if f.deviceCode && f.thumbprint != "" {
		return auth.AuthContext{}, errors.New("--device-code and --certificate-thumbprint are mutually exclusive")
	}
	mode := auth.ModeInteractive
	if f.deviceCode {
		mode = auth.ModeDeviceCode
	}
	if f.thumbprint != "" {
		mode = auth.ModeCertificate
	}
	tenantID := f.tenantID
	if tenantID == "" {
		tenantID = cfg.TenantID
	}
	clientID := f.clientID
	if clientID == "" {
		clientID = cfg.ClientID
	}
	redirectURI := f.redirectURI
	if redirectURI == "" {
		redirectURI = cfg.RedirectURI
	}
	return auth.AuthContext{
		TenantID:              tenantID,
		ClientID:              clientID,
		RedirectURI:           redirectURI,
		Mode:                  mode,
		Refresh:               f.refresh,
		CertificateThumbprint: f.thumbprint,
	}, nil
}

func newSession(rt *runtimeState) (*auth.Session, error) {
	cfg := rt.Config()
	runtimeClass, err := auth.ParseRuntimeClass(cfg.Runtime)
	if err != nil {
		return nil, err
	}
	acquirer := auth.NewOIDCAcquirer(auth.AcquirerConfig{
		AuthorityBase:   cfg.Authority,
		Scopes:          cfg.Scopes,
		CAFile:          cfg.CAFile,
		InsecureSkipTLS: cfg.InsecureSkipTLS,
		CachePath:       config.DefaultTokenPath(),
		TokenStorage:    strings.ToLower(cfg.Settings.TokenStorage),
		NoBrowser:       cfg.Settings.NoBrowser,
		Out:             rt.Writer(),
	}, rt.Logger())
	return auth.NewSession(acquirer,
		auth.WithCertificateStore(certstore.NewFileStore(cfg.CertificateDir)),
		auth.WithRuntimeClass(runtimeClass),
		auth.WithLogger(rt.Logger()),
	), nil
}

func NewLoginCommand() *cobra.Command {
	flags := &flowFlags{}
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and cache a management API credential",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			authCtx, err := flags.authContext(rt.Config())
			if err != nil {
				return err
			}
			session, err := newSession(rt)
			if err != nil {
				return err
			}
			if _, err := session.AcquireAuthentication(cmd.Context(), authCtx); err != nil {
				return err
			}
			token := session.Token()
			_, _ = fmt.Fprintf(rt.Writer(), "Authenticated. Token expires at %s\n", token.Expiry.UTC().Format(time.RFC3339))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
