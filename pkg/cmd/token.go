package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cloudctl/authctl/pkg/auth"
	"github.com/cloudctl/authctl/pkg/config"
	"github.com/cloudctl/authctl/pkg/output"
)

type headerOutput struct {
	Header    string    `json:"header" yaml:"header"`
	Scheme    string    `json:"scheme" yaml:"scheme"`
	Token     string    `json:"token" yaml:"token"`
	ExpiresAt time.Time `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"`
}

func NewTokenCommand() *cobra.Command {
	flags := &flowFlags{}
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a ready-to-use authentication header",
		Long: "Print an Authorization header for the management API. A valid cached\n" +
			"token is served as is; --refresh renews it without prompting.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			authCtx, err := flags.authContext(rt.Config())
			if err != nil {
				return err
			}
			if err := authCtx.Validate(); err != nil {
				return err
			}

			token, err := resolveToken(cmd.Context(), rt, authCtx)
			if err != nil {
				return err
			}
			header, err := auth.BearerHeaderConstructor{}.Construct(token)
			if err != nil {
				return err
			}

			format, err := output.ParseFormat(rt.OutputFormat())
			if err != nil {
				return err
			}
			if format == output.FormatText {
				_, _ = fmt.Fprintln(rt.Writer(), header.String())
				return nil
			}
			return output.WriteObject(rt.Writer(), format, headerOutput{
				Header:    header.String(),
				Scheme:    header.Scheme,
				Token:     header.Value,
				ExpiresAt: token.Expiry,
			})
		},
	}
	flags.register(cmd)
	return cmd
}

// resolveToken serves the cached token when it is still comfortably valid,
// and otherwise runs a full acquisition through the session.
func resolveToken(ctx context.Context, rt *runtimeState, authCtx auth.AuthContext) (*auth.Token, error) {
	if !authCtx.Refresh {
		manager := auth.TokenCacheManager{
			CachePath:   config.DefaultTokenPath(),
			StorageMode: strings.ToLower(rt.Config().Settings.TokenStorage),
		}
		stored, ok, err := manager.Get(auth.CacheKey(authCtx.TenantID, authCtx.EffectiveClientID()))
		if err != nil {
			return nil, err
		}
		if ok {
			token := stored.Token()
			if token.Valid() && time.Until(token.Expiry) > 2*time.Minute {
				return token, nil
			}
		}
	}
	session, err := newSession(rt)
	if err != nil {
		return nil, err
	}
	if _, err := session.AcquireAuthentication(ctx, authCtx); err != nil {
		return nil, err
	}
	return session.Token(), nil
}
