package auth

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cloudctl/authctl/pkg/certstore"
)

type fakeCertStore struct {
	certs map[string]*certstore.Certificate
}

func (s *fakeCertStore) Lookup(thumbprint string) (*certstore.Certificate, error) {
	cert, ok := s.certs[certstore.NormalizeThumbprint(thumbprint)]
	if !ok {
		return nil, fmt.Errorf("thumbprint %s: %w", thumbprint, certstore.ErrNotFound)
	}
	return cert, nil
}

func TestBuildTokenRequestInteractive(t *testing.T) {
	ac := AuthContext{TenantID: "tenant", ClientID: "my-app", Mode: ModeInteractive}

	req, err := BuildTokenRequest(ac, RedirectLoopback, nil)
	require.NoError(t, err)
	interactive, ok := req.(InteractiveRequest)
	require.True(t, ok)
	require.True(t, interactive.Prompt)
	require.False(t, interactive.ForceRefresh)
	require.False(t, interactive.Silent)
	require.Equal(t, "tenant", interactive.Base().TenantID)
	require.Equal(t, "my-app", interactive.Base().ClientID)
	require.Equal(t, RedirectLoopback, interactive.Base().RedirectURI)

	ac.Refresh = true
	req, err = BuildTokenRequest(ac, RedirectLoopback, nil)
	require.NoError(t, err)
	interactive, ok = req.(InteractiveRequest)
	require.True(t, ok)
	require.True(t, interactive.ForceRefresh)
	require.True(t, interactive.Silent)
	require.False(t, interactive.Prompt)
}

func TestBuildTokenRequestDeviceCode(t *testing.T) {
	ac := AuthContext{TenantID: "tenant", Mode: ModeDeviceCode}

	req, err := BuildTokenRequest(ac, RedirectOutOfBand, nil)
	require.NoError(t, err)
	device, ok := req.(DeviceCodeRequest)
	require.True(t, ok)
	require.True(t, device.DeviceCode)
	require.False(t, device.ForceRefresh)
	// Empty client id resolves to the built-in application.
	require.Equal(t, DefaultClientID, device.Base().ClientID)

	ac.Refresh = true
	req, err = BuildTokenRequest(ac, RedirectOutOfBand, nil)
	require.NoError(t, err)
	device, ok = req.(DeviceCodeRequest)
	require.True(t, ok)
	require.True(t, device.ForceRefresh)
	require.False(t, device.DeviceCode)
}

func TestBuildTokenRequestCertificate(t *testing.T) {
	cert := &certstore.Certificate{Thumbprint: "AA11BB22"}
	store := &fakeCertStore{certs: map[string]*certstore.Certificate{"AA11BB22": cert}}

	ac := AuthContext{
		TenantID:              "tenant",
		ClientID:              "my-app",
		Mode:                  ModeCertificate,
		CertificateThumbprint: "aa:11:bb:22",
	}
	req, err := BuildTokenRequest(ac, RedirectLoopback, store)
	require.NoError(t, err)
	certificate, ok := req.(CertificateRequest)
	require.True(t, ok)
	require.Same(t, cert, certificate.Certificate)
}

func TestBuildTokenRequestCertificateNotFound(t *testing.T) {
	store := &fakeCertStore{certs: map[string]*certstore.Certificate{}}
	ac := AuthContext{
		TenantID:              "tenant",
		Mode:                  ModeCertificate,
		CertificateThumbprint: "DEADBEEF",
	}
	_, err := BuildTokenRequest(ac, RedirectOutOfBand, store)
	require.Error(t, err)
	var acqErr *AcquisitionError
	require.ErrorAs(t, err, &acqErr)
	require.ErrorIs(t, err, certstore.ErrNotFound)
}

func TestBuildTokenRequestCertificateWithoutStore(t *testing.T) {
	ac := AuthContext{
		TenantID:              "tenant",
		Mode:                  ModeCertificate,
		CertificateThumbprint: "DEADBEEF",
	}
	_, err := BuildTokenRequest(ac, RedirectOutOfBand, nil)
	var acqErr *AcquisitionError
	require.ErrorAs(t, err, &acqErr)
}

func TestBuildTokenRequestUnspecifiedMode(t *testing.T) {
	_, err := BuildTokenRequest(AuthContext{TenantID: "tenant"}, RedirectLoopback, nil)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}
