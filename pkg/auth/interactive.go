package auth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// interactive runs the authorization-code grant with PKCE. The resolved
// redirect URI decides the shape of the prompt: the loopback default spins up
// a local callback server, while the out-of-band sentinel and the fixed
// native-client endpoint fall back to pasting the authorization code.
func (a *OIDCAcquirer) interactive(ctx context.Context, req InteractiveRequest) (*Token, error) {
	verifier, challenge, err := newPKCEPair()
	if err != nil {
		return nil, err
	}
	state, err := randomToken(24)
	if err != nil {
		return nil, err
	}
	if isLoopbackRedirect(req.RedirectURI) {
		return a.interactiveLoopback(ctx, req, verifier, challenge, state)
	}
	return a.interactiveOutOfBand(ctx, req, verifier, challenge, state)
}

func isLoopbackRedirect(redirectURI string) bool {
	return strings.HasPrefix(redirectURI, "http://localhost") ||
		strings.HasPrefix(redirectURI, "http://127.0.0.1")
}

func (a *OIDCAcquirer) interactiveLoopback(ctx context.Context, req InteractiveRequest, verifier, challenge, state string) (*Token, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to start callback listener: %w", err)
	}
	defer func() {
		_ = listener.Close()
	}()

	redirectURL := fmt.Sprintf("http://%s/callback", listener.Addr().String())
	oauthCfg, httpClient, err := a.buildOAuthConfig(ctx, req.TenantID, req.ClientID, redirectURL)
	if err != nil {
		return nil, err
	}
	ctx = oidc.ClientContext(ctx, httpClient)

	authURL := oauthCfg.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", challenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)

	resultCh := make(chan *oauth2.Token, 1)
	errCh := make(chan error, 1)

	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/callback" {
				http.NotFound(w, r)
				return
			}
			if r.URL.Query().Get("state") != state {
				errCh <- errors.New("invalid state in callback")
				http.Error(w, "invalid state", http.StatusBadRequest)
				return
			}
			code := r.URL.Query().Get("code")
			if code == "" {
				errCh <- errors.New("missing code in callback")
				http.Error(w, "missing code", http.StatusBadRequest)
				return
			}
			token, err := oauthCfg.Exchange(ctx, code, oauth2.SetAuthURLParam("code_verifier", verifier))
			if err != nil {
				errCh <- fmt.Errorf("token exchange failed: %w", err)
				http.Error(w, "token exchange failed", http.StatusInternalServerError)
				return
			}
			_, _ = fmt.Fprintln(w, "Authentication complete. You can close this window.")
			resultCh <- token
		}),
	}

	go func() {
		_ = server.Serve(listener)
	}()

	_, _ = fmt.Fprintf(a.cfg.Out, "Open the following URL in your browser:\n%s\n", authURL)
	_ = a.openBrowser(authURL)

	select {
	case <-ctx.Done():
		_ = server.Close()
		return nil, ctx.Err()
	case err := <-errCh:
		_ = server.Close()
		return nil, err
	case raw := <-resultCh:
		_ = server.Close()
		token := a.tokenFromOAuth2(raw)
		a.persist(CacheKey(req.TenantID, req.ClientID), token)
		return token, nil
	}
}

func (a *OIDCAcquirer) interactiveOutOfBand(ctx context.Context, req InteractiveRequest, verifier, challenge, state string) (*Token, error) {
	oauthCfg, httpClient, err := a.buildOAuthConfig(ctx, req.TenantID, req.ClientID, req.RedirectURI)
	if err != nil {
		return nil, err
	}
	ctx = oidc.ClientContext(ctx, httpClient)
	authURL := oauthCfg.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", challenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
	_, _ = fmt.Fprintf(a.cfg.Out, "Open the following URL in your browser and sign in:\n%s\n", authURL)
	_ = a.openBrowser(authURL)
	_, _ = fmt.Fprint(a.cfg.Out, "Enter the authorization code: ")

	scanner := bufio.NewScanner(a.cfg.In)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read authorization code: %w", err)
		}
		return nil, errors.New("no authorization code entered")
	}
	code := strings.TrimSpace(scanner.Text())
	if code == "" {
		return nil, errors.New("no authorization code entered")
	}

	raw, err := oauthCfg.Exchange(ctx, code, oauth2.SetAuthURLParam("code_verifier", verifier))
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}
	token := a.tokenFromOAuth2(raw)
	a.persist(CacheKey(req.TenantID, req.ClientID), token)
	return token, nil
}
