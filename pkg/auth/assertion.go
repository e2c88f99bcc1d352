package auth

import (
	"context"
	"crypto/rsa"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/cloudctl/authctl/pkg/certstore"
)

const clientAssertionType = "urn:ietf:params:oauth:client-assertion-type:jwt-bearer"

// certificateAssertion runs the client-credentials grant authenticated with a
// signed JWT assertion (RFC 7523). Renewal needs no extra flags: the exchange
// always mints a fresh token.
func (a *OIDCAcquirer) certificateAssertion(ctx context.Context, req CertificateRequest) (*Token, error) {
	if req.Certificate == nil {
		return nil, fmt.Errorf("no certificate attached to request")
	}
	client, err := newHTTPClient(a.cfg.CAFile, a.cfg.InsecureSkipTLS)
	if err != nil {
		return nil, err
	}
	endpoints, err := a.discoverEndpoints(ctx, client, req.TenantID)
	if err != nil {
		return nil, err
	}
	if endpoints.TokenEndpoint == "" {
		return nil, fmt.Errorf("token endpoint not advertised")
	}

	assertion, err := signClientAssertion(req.Certificate, req.ClientID, endpoints.TokenEndpoint)
	if err != nil {
		return nil, err
	}

	values := url.Values{}
	values.Set("grant_type", "client_credentials")
	values.Set("client_id", req.ClientID)
	values.Set("scope", strings.Join(clientCredentialScopes(a.cfg.Scopes), " "))
	values.Set("client_assertion_type", clientAssertionType)
	values.Set("client_assertion", assertion)

	resp, err := postForm(ctx, client, endpoints.TokenEndpoint, values)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	var payload tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	if payload.Error != "" {
		return nil, fmt.Errorf("certificate token error: %s: %s", payload.Error, payload.ErrorDesc)
	}
	token := &Token{
		AccessToken: payload.AccessToken,
		TokenType:   payload.TokenType,
		Expiry:      time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second),
		Scopes:      clientCredentialScopes(a.cfg.Scopes),
	}
	a.persist(CacheKey(req.TenantID, req.ClientID), token)
	return token, nil
}

// signClientAssertion builds the JWT the token endpoint authenticates the
// client with. The x5t header carries the certificate thumbprint so the
// issuer can pick the registered certificate.
func signClientAssertion(cert *certstore.Certificate, clientID, tokenEndpoint string) (string, error) {
	key, ok := cert.PrivateKey.(*rsa.PrivateKey)
	if !ok {
		return "", fmt.Errorf("certificate key type %T is not supported for client assertions", cert.PrivateKey)
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Audience:  jwt.ClaimStrings{tokenEndpoint},
		Issuer:    clientID,
		Subject:   clientID,
		ID:        uuid.NewString(),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	sum := sha1.Sum(cert.Leaf.Raw)
	token.Header["x5t"] = base64.RawURLEncoding.EncodeToString(sum[:])
	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("failed to sign client assertion: %w", err)
	}
	return signed, nil
}

// clientCredentialScopes keeps only resource scopes: user-centric OIDC scopes
// have no meaning in an app-only exchange.
func clientCredentialScopes(scopes []string) []string {
	out := make([]string, 0, len(scopes))
	for _, scope := range scopes {
		if strings.Contains(scope, "/.default") {
			out = append(out, scope)
		}
	}
	if len(out) == 0 {
		out = append(out, "https://management.azure.com/.default")
	}
	return out
}
