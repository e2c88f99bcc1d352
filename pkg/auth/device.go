package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type endpointDiscovery struct {
	TokenEndpoint               string `json:"token_endpoint"`
	DeviceAuthorizationEndpoint string `json:"device_authorization_endpoint"`
}

type deviceCodeResponse struct {
	DeviceCode              string `json:"device_code"`
	UserCode                string `json:"user_code"`
	VerificationURI         string `json:"verification_uri"`
	VerificationURIComplete string `json:"verification_uri_complete"`
	ExpiresIn               int    `json:"expires_in"`
	Interval                int    `json:"interval"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
	Error        string `json:"error,omitempty"`
	ErrorDesc    string `json:"error_description,omitempty"`
}

var (
	errAuthorizationPending = errors.New("authorization pending")
	errSlowDown             = errors.New("slow down")
)

// deviceCode runs the device authorization grant: request a user code, show
// it, and poll the token endpoint until the user completes sign-in on their
// second device or the code expires.
func (a *OIDCAcquirer) deviceCode(ctx context.Context, req DeviceCodeRequest) (*Token, error) {
	client, err := newHTTPClient(a.cfg.CAFile, a.cfg.InsecureSkipTLS)
	if err != nil {
		return nil, err
	}
	endpoints, err := a.discoverEndpoints(ctx, client, req.TenantID)
	if err != nil {
		return nil, err
	}
	if endpoints.DeviceAuthorizationEndpoint == "" {
		return nil, errors.New("device authorization endpoint not advertised")
	}
	if endpoints.TokenEndpoint == "" {
		return nil, errors.New("token endpoint not advertised")
	}

	deviceResp, err := a.requestDeviceCode(ctx, client, endpoints.DeviceAuthorizationEndpoint, req.ClientID)
	if err != nil {
		return nil, err
	}

	verificationURL := deviceResp.VerificationURIComplete
	if verificationURL == "" {
		verificationURL = deviceResp.VerificationURI
	}
	_, _ = fmt.Fprintf(a.cfg.Out, "Visit %s and enter code: %s\n", deviceResp.VerificationURI, deviceResp.UserCode)
	if verificationURL != "" {
		_ = a.openBrowser(verificationURL)
	}

	interval := time.Duration(deviceResp.Interval) * time.Second
	if interval == 0 {
		interval = 5 * time.Second
	}
	deadline := time.Now().Add(time.Duration(deviceResp.ExpiresIn) * time.Second)

	for {
		if time.Now().After(deadline) {
			return nil, errors.New("device code expired")
		}
		tokenResp, err := a.pollDeviceToken(ctx, client, endpoints.TokenEndpoint, req.ClientID, deviceResp.DeviceCode)
		if err != nil {
			if errors.Is(err, errSlowDown) {
				interval += 5 * time.Second
			}
			if errors.Is(err, errAuthorizationPending) || errors.Is(err, errSlowDown) {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(interval):
				}
				continue
			}
			return nil, err
		}
		token := &Token{
			AccessToken:  tokenResp.AccessToken,
			RefreshToken: tokenResp.RefreshToken,
			TokenType:    tokenResp.TokenType,
			Expiry:       time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second),
			Scopes:       append([]string(nil), a.cfg.Scopes...),
			IDToken:      tokenResp.IDToken,
		}
		a.persist(CacheKey(req.TenantID, req.ClientID), token)
		return token, nil
	}
}

func (a *OIDCAcquirer) discoverEndpoints(ctx context.Context, client *http.Client, tenantID string) (*endpointDiscovery, error) {
	discoveryURL := strings.TrimRight(a.authority(tenantID), "/") + "/.well-known/openid-configuration"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, discoveryURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("discovery failed: %s", string(body))
	}
	var discovery endpointDiscovery
	if err := json.NewDecoder(resp.Body).Decode(&discovery); err != nil {
		return nil, err
	}
	return &discovery, nil
}

func (a *OIDCAcquirer) requestDeviceCode(ctx context.Context, client *http.Client, endpoint, clientID string) (*deviceCodeResponse, error) {
	values := url.Values{}
	values.Set("client_id", clientID)
	if len(a.cfg.Scopes) > 0 {
		values.Set("scope", strings.Join(a.cfg.Scopes, " "))
	}
	resp, err := postForm(ctx, client, endpoint, values)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("device authorization failed: %s", string(body))
	}
	var payload deviceCodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (a *OIDCAcquirer) pollDeviceToken(ctx context.Context, client *http.Client, endpoint, clientID, deviceCode string) (*tokenResponse, error) {
	values := url.Values{}
	values.Set("grant_type", "urn:ietf:params:oauth:grant-type:device_code")
	values.Set("device_code", deviceCode)
	values.Set("client_id", clientID)
	resp, err := postForm(ctx, client, endpoint, values)
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
		switch payload.Error {
		case "authorization_pending":
			return nil, errAuthorizationPending
		case "slow_down":
			return nil, errSlowDown
		default:
			return nil, fmt.Errorf("device token error: %s", payload.Error)
		}
	}
	return &payload, nil
}

func postForm(ctx context.Context, client *http.Client, endpoint string, values url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return client.Do(req)
}
