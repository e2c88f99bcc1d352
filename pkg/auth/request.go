package auth

import (
	"fmt"

	"github.com/cloudctl/authctl/pkg/certstore"
)

// RequestBase carries the identifiers present in every token request.
type RequestBase struct {
	TenantID    string
	ClientID    string
	RedirectURI string
}

// TokenRequest is the closed set of per-mode request variants handed to a
// TokenAcquirer: InteractiveRequest, DeviceCodeRequest, CertificateRequest.
type TokenRequest interface {
	Base() RequestBase
	tokenRequest()
}

// InteractiveRequest asks for an authorization-code acquisition. On refresh
// the acquirer renews the cached session without re-prompting (ForceRefresh
// and Silent set, Prompt clear); otherwise Prompt is set.
type InteractiveRequest struct {
	RequestBase
	ForceRefresh bool
	Silent       bool
	Prompt       bool
}

func (r InteractiveRequest) Base() RequestBase { return r.RequestBase }
func (InteractiveRequest) tokenRequest()       {}

// DeviceCodeRequest asks for a device-code acquisition. On refresh the
// device-code prompt is suppressed and the acquirer renews against its cache
// (ForceRefresh set, DeviceCode clear); the two are never both set.
type DeviceCodeRequest struct {
	RequestBase
	ForceRefresh bool
	DeviceCode   bool
}

func (r DeviceCodeRequest) Base() RequestBase { return r.RequestBase }
func (DeviceCodeRequest) tokenRequest()       {}

// CertificateRequest asks for a certificate-credential acquisition. The
// certificate is resolved from the store at build time; renewal is handled by
// the underlying exchange, so refresh needs no extra flags.
type CertificateRequest struct {
	RequestBase
	Certificate *certstore.Certificate
}

func (r CertificateRequest) Base() RequestBase { return r.RequestBase }
func (CertificateRequest) tokenRequest()       {}

// BuildTokenRequest derives the request variant for a validated AuthContext
// and resolved redirect URI. A failed certificate lookup surfaces as an
// AcquisitionError since it happens inline here.
func BuildTokenRequest(ac AuthContext, redirectURI string, store certstore.Store) (TokenRequest, error) {
	base := RequestBase{
		TenantID:    ac.TenantID,
		ClientID:    ac.EffectiveClientID(),
		RedirectURI: redirectURI,
	}
	switch ac.Mode {
	case ModeInteractive:
		if ac.Refresh {
			return InteractiveRequest{RequestBase: base, ForceRefresh: true, Silent: true}, nil
		}
		return InteractiveRequest{RequestBase: base, Prompt: true}, nil
	case ModeDeviceCode:
		if ac.Refresh {
			return DeviceCodeRequest{RequestBase: base, ForceRefresh: true}, nil
		}
		return DeviceCodeRequest{RequestBase: base, DeviceCode: true}, nil
	case ModeCertificate:
		if store == nil {
			return nil, &AcquisitionError{Err: fmt.Errorf("no certificate store configured")}
		}
		cert, err := store.Lookup(ac.CertificateThumbprint)
		if err != nil {
			return nil, &AcquisitionError{Err: fmt.Errorf("certificate %s: %w", ac.CertificateThumbprint, err)}
		}
		return CertificateRequest{RequestBase: base, Certificate: cert}, nil
	default:
		return nil, &ConfigurationError{Reason: "no authentication mode selected"}
	}
}
