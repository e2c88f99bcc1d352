package auth

import (
	"fmt"
	"strings"
)

// Mode selects which authentication flow is used for an acquisition.
// Exactly one mode is active per call; the zero value is rejected by
// AuthContext.Validate.
type Mode int

const (
	ModeUnspecified Mode = iota
	ModeInteractive
	ModeDeviceCode
	ModeCertificate
)

func (m Mode) String() string {
	switch m {
	case ModeInteractive:
		return "interactive"
	case ModeDeviceCode:
		return "device-code"
	case ModeCertificate:
		return "certificate"
	default:
		return "unspecified"
	}
}

// ParseMode maps a flow name to a Mode. Accepted names match Mode.String.
func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "interactive", "authorization-code":
		return ModeInteractive, nil
	case "device-code", "devicecode":
		return ModeDeviceCode, nil
	case "certificate", "cert":
		return ModeCertificate, nil
	default:
		return ModeUnspecified, fmt.Errorf("unknown authentication mode: %s", value)
	}
}

// RuntimeClass distinguishes the two supported host runtime generations,
// which use different native-client redirect conventions.
type RuntimeClass int

const (
	// RuntimeModern hosts register a local loopback redirect.
	RuntimeModern RuntimeClass = iota
	// RuntimeLegacy hosts register the fixed native-client endpoint.
	RuntimeLegacy
)

func (r RuntimeClass) String() string {
	if r == RuntimeLegacy {
		return "legacy"
	}
	return "modern"
}

// ParseRuntimeClass maps a runtime class name to a RuntimeClass. The empty
// string resolves to RuntimeModern.
func ParseRuntimeClass(value string) (RuntimeClass, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "modern":
		return RuntimeModern, nil
	case "legacy":
		return RuntimeLegacy, nil
	default:
		return RuntimeModern, fmt.Errorf("unknown runtime class: %s", value)
	}
}

// DefaultClientID is the well-known identifier of the built-in application.
// Its registered reply address is the out-of-band sentinel and cannot be
// overridden.
const DefaultClientID = "1950a258-227b-4e31-a9cf-717495945fc2"

// AuthContext carries the caller's intent for a single acquisition. It is
// immutable per call; Session copies what it needs.
type AuthContext struct {
	TenantID              string
	ClientID              string
	RedirectURI           string
	Mode                  Mode
	Refresh               bool
	CertificateThumbprint string
}

// EffectiveClientID returns the client identifier, falling back to the
// built-in well-known application when none was supplied.
func (a AuthContext) EffectiveClientID() string {
	if strings.TrimSpace(a.ClientID) == "" {
		return DefaultClientID
	}
	return a.ClientID
}

// Validate checks that exactly one known mode is selected and that the
// mode-required fields are present.
func (a AuthContext) Validate() error {
	switch a.Mode {
	case ModeInteractive, ModeDeviceCode:
		if strings.TrimSpace(a.TenantID) == "" {
			return &ConfigurationError{Reason: "tenant id is required"}
		}
	case ModeCertificate:
		if strings.TrimSpace(a.TenantID) == "" {
			return &ConfigurationError{Reason: "tenant id is required"}
		}
		if strings.TrimSpace(a.CertificateThumbprint) == "" {
			return &ConfigurationError{Reason: "certificate thumbprint is required for certificate mode"}
		}
	default:
		return &ConfigurationError{Reason: "no authentication mode selected"}
	}
	return nil
}
