// Package client is a thin management API client used to exercise acquired
// credentials, e.g. listing the tenants the caller can see.
package client

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"

	"github.com/go-resty/resty/v2"

	"github.com/cloudctl/authctl/pkg/auth"
)

const tenantsAPIVersion = "2022-12-01"

type Client struct {
	rest *resty.Client
}

type Option func(*Client) error

func New(baseURL string, header auth.AuthenticationHeader, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("management endpoint is required")
	}
	rest := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Authorization", header.String()).
		SetHeader("User-Agent", "authctl")
	c := &Client{rest: rest}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func WithUserAgent(userAgent string) Option {
	return func(c *Client) error {
		c.rest.SetHeader("User-Agent", userAgent)
		return nil
	}
}

func WithTLSConfig(caFile string, insecureSkipTLSVerify bool) Option {
	return func(c *Client) error {
		tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12, InsecureSkipVerify: insecureSkipTLSVerify}
		if caFile != "" {
			data, err := os.ReadFile(caFile)
			if err != nil {
				return fmt.Errorf("failed to read CA file: %w", err)
			}
			pool := x509.NewCertPool()
			if ok := pool.AppendCertsFromPEM(data); !ok {
				return errors.New("failed to parse CA file")
			}
			tlsConfig.RootCAs = pool
		}
		c.rest.SetTLSClientConfig(tlsConfig)
		return nil
	}
}

// Tenant is a directory the credential grants access to.
type Tenant struct {
	ID          string `json:"tenantId"`
	DisplayName string `json:"displayName"`
}

type tenantList struct {
	Value []Tenant `json:"value"`
}

// Tenants lists the tenants visible to the credential. A successful call is
// the cheapest proof that the authentication header works end to end.
func (c *Client) Tenants(ctx context.Context) ([]Tenant, error) {
	var result tenantList
	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParam("api-version", tenantsAPIVersion).
		SetResult(&result).
		Get("/tenants")
	if err != nil {
		return nil, fmt.Errorf("tenant list request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("tenant list failed with status %d: %s", resp.StatusCode(), resp.String())
	}
	return result.Value, nil
}
