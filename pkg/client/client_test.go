package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cloudctl/authctl/pkg/auth"
)

func TestTenants(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tenants", r.URL.Path)
		require.Equal(t, "2022-12-01", r.URL.Query().Get("api-version"))
		require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		require.Equal(t, "authctl", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"value": []map[string]any{
				{"tenantId": "11111111-aaaa", "displayName": "Contoso"},
				{"tenantId": "22222222-bbbb"},
			},
		})
	}))
	defer server.Close()

	c, err := New(server.URL, auth.AuthenticationHeader{Scheme: "Bearer", Value: "tok-1"})
	require.NoError(t, err)

	tenants, err := c.Tenants(context.Background())
	require.NoError(t, err)
	require.Len(t, tenants, 2)
	require.Equal(t, "11111111-aaaa", tenants[0].ID)
	require.Equal(t, "Contoso", tenants[0].DisplayName)
	require.Empty(t, tenants[1].DisplayName)
}

func TestTenantsUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"code":"ExpiredAuthenticationToken"}}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	c, err := New(server.URL, auth.AuthenticationHeader{Scheme: "Bearer", Value: "stale"})
	require.NoError(t, err)

	_, err = c.Tenants(context.Background())
	require.ErrorContains(t, err, "status 401")
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New("", auth.AuthenticationHeader{Scheme: "Bearer", Value: "tok"})
	require.Error(t, err)
}

func TestWithUserAgent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "authctl-tests", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"value": []map[string]any{}})
	}))
	defer server.Close()

	c, err := New(server.URL, auth.AuthenticationHeader{Scheme: "Bearer", Value: "tok"},
		WithUserAgent("authctl-tests"))
	require.NoError(t, err)

	tenants, err := c.Tenants(context.Background())
	require.NoError(t, err)
	require.Empty(t, tenants)
}
