package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// DefaultAuthorityBase is the identity platform the acquirer talks to unless
// configured otherwise; the per-tenant authority is derived from it.
const DefaultAuthorityBase = "https://login.microsoftonline.com"

// DefaultScopes request an ID token, a refresh token, and management API
// access.
var DefaultScopes = []string{
	oidc.ScopeOpenID,
	"profile",
	"offline_access",
	"https://management.azure.com/.default",
}

// AcquirerConfig configures the default OIDC acquirer.
type AcquirerConfig struct {
	AuthorityBase   string
	Scopes          []string
	CAFile          string
	InsecureSkipTLS bool

	// CachePath and TokenStorage configure the token cache backing the
	// silent and refresh paths ("file" or "keychain").
	CachePath    string
	TokenStorage string

	// NoBrowser suppresses opening the system browser for interactive and
	// device-code prompts.
	NoBrowser bool

	In  io.Reader
	Out io.Writer
}

// OIDCAcquirer is the default TokenAcquirer. It exchanges typed requests for
// tokens against the configured authority: authorization-code with PKCE for
// interactive prompts, device-code polling, refresh-token renewal for silent
// paths, and a signed client assertion for certificate credentials.
type OIDCAcquirer struct {
	cfg    AcquirerConfig
	cache  *TokenCacheManager
	logger *zap.Logger
}

func NewOIDCAcquirer(cfg AcquirerConfig, logger *zap.Logger) *OIDCAcquirer {
	if cfg.AuthorityBase == "" {
		cfg.AuthorityBase = DefaultAuthorityBase
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = append([]string(nil), DefaultScopes...)
	}
	if cfg.In == nil {
		cfg.In = os.Stdin
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OIDCAcquirer{
		cfg:    cfg,
		cache:  &TokenCacheManager{CachePath: cfg.CachePath, StorageMode: cfg.TokenStorage},
		logger: logger.Named("acquirer"),
	}
}

func (a *OIDCAcquirer) Acquire(ctx context.Context, req TokenRequest) (*Token, error) {
	switch r := req.(type) {
	case InteractiveRequest:
		if r.ForceRefresh || r.Silent {
			return a.silent(ctx, r.RequestBase, r.ForceRefresh)
		}
		return a.interactive(ctx, r)
	case DeviceCodeRequest:
		if r.ForceRefresh {
			return a.silent(ctx, r.RequestBase, true)
		}
		return a.deviceCode(ctx, r)
	case CertificateRequest:
		return a.certificateAssertion(ctx, r)
	default:
		return nil, fmt.Errorf("unsupported token request type %T", req)
	}
}

func (a *OIDCAcquirer) authority(tenantID string) string {
	return strings.TrimRight(a.cfg.AuthorityBase, "/") + "/" + tenantID + "/v2.0"
}

// silent serves refresh and cache-based acquisitions. With force set the
// cached access token is discarded and renewed via the refresh token even if
// it has not expired yet.
func (a *OIDCAcquirer) silent(ctx context.Context, base RequestBase, force bool) (*Token, error) {
	key := CacheKey(base.TenantID, base.ClientID)
	stored, ok, err := a.cache.Get(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no cached token for %s; sign in interactively or with a device code first", key)
	}
	if !force && !stored.Expiry.IsZero() && time.Until(stored.Expiry) > 2*time.Minute {
		a.logger.Debug("serving cached token", zap.String("key", key), zap.Time("expiry", stored.Expiry))
		return stored.Token(), nil
	}
	if stored.RefreshToken == "" {
		return nil, errors.New("cached token needs renewal and no refresh token is available")
	}

	oauthCfg, httpClient, err := a.buildOAuthConfig(ctx, base.TenantID, base.ClientID, base.RedirectURI)
	if err != nil {
		return nil, err
	}
	ctx = oidc.ClientContext(ctx, httpClient)
	// Seeding an already-expired token makes the source renew unconditionally.
	seed := &oauth2.Token{
		AccessToken:  stored.AccessToken,
		RefreshToken: stored.RefreshToken,
		TokenType:    stored.TokenType,
		Expiry:       time.Now().Add(-time.Minute),
	}
	refreshed, err := oauthCfg.TokenSource(ctx, seed).Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	token := a.tokenFromOAuth2(refreshed)
	if token.RefreshToken == "" {
		token.RefreshToken = stored.RefreshToken
	}
	if token.IDToken == "" {
		token.IDToken = stored.IDToken
	}
	a.persist(key, token)
	return token, nil
}

func (a *OIDCAcquirer) buildOAuthConfig(ctx context.Context, tenantID, clientID, redirectURL string) (oauth2.Config, *http.Client, error) {
	httpClient, err := newHTTPClient(a.cfg.CAFile, a.cfg.InsecureSkipTLS)
	if err != nil {
		return oauth2.Config{}, nil, err
	}
	ctx = oidc.ClientContext(ctx, httpClient)
	provider, err := oidc.NewProvider(ctx, a.authority(tenantID))
	if err != nil {
		return oauth2.Config{}, nil, fmt.Errorf("failed to discover identity provider: %w", err)
	}
	return oauth2.Config{
		ClientID:    clientID,
		Endpoint:    provider.Endpoint(),
		RedirectURL: redirectURL,
		Scopes:      a.cfg.Scopes,
	}, httpClient, nil
}

func (a *OIDCAcquirer) tokenFromOAuth2(t *oauth2.Token) *Token {
	token := &Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		Expiry:       t.Expiry,
		Scopes:       append([]string(nil), a.cfg.Scopes...),
	}
	if idToken, ok := t.Extra("id_token").(string); ok {
		token.IDToken = idToken
	}
	return token
}

// persist writes the token back to the cache; a failed write is logged and
// otherwise ignored since the acquisition itself succeeded.
func (a *OIDCAcquirer) persist(key string, token *Token) {
	if err := a.cache.Save(key, newStoredToken(token)); err != nil {
		a.logger.Warn("failed to persist token", zap.String("key", key), zap.Error(err))
	}
}

func newPKCEPair() (string, string, error) {
	verifier, err := randomToken(32)
	if err != nil {
		return "", "", err
	}
	sum := sha256.Sum256([]byte(verifier))
	challenge := base64.RawURLEncoding.EncodeToString(sum[:])
	return verifier, challenge, nil
}

func randomToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

func (a *OIDCAcquirer) openBrowser(url string) error {
	if a.cfg.NoBrowser || strings.EqualFold(os.Getenv("AUTHCTL_NO_BROWSER"), "true") {
		return nil
	}
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	cmd.Stdout = a.cfg.Out
	cmd.Stderr = a.cfg.Out
	return cmd.Start()
}

func newHTTPClient(caFile string, insecure bool) (*http.Client, error) {
	tlsConfig, err := loadTLSConfig(caFile, insecure)
	if err != nil {
		return nil, err
	}
	transport := &http.Transport{TLSClientConfig: tlsConfig}
	return &http.Client{Transport: transport, Timeout: 30 * time.Second}, nil
}

func loadTLSConfig(caFile string, insecure bool) (*tls.Config, error) {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12, InsecureSkipVerify: insecure}
	if caFile == "" {
		return tlsConfig, nil
	}
	data, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if ok := pool.AppendCertsFromPEM(data); !ok {
		return nil, errors.New("failed to parse CA file")
	}
	tlsConfig.RootCAs = pool
	return tlsConfig, nil
}
