package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{"interactive", ModeInteractive, false},
		{"Interactive", ModeInteractive, false},
		{"authorization-code", ModeInteractive, false},
		{"device-code", ModeDeviceCode, false},
		{"devicecode", ModeDeviceCode, false},
		{"certificate", ModeCertificate, false},
		{"cert", ModeCertificate, false},
		{" interactive ", ModeInteractive, false},
		{"", ModeUnspecified, true},
		{"password", ModeUnspecified, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			mode, err := ParseMode(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, mode)
		})
	}
}

func TestModeString(t *testing.T) {
	require.Equal(t, "interactive", ModeInteractive.String())
	require.Equal(t, "device-code", ModeDeviceCode.String())
	require.Equal(t, "certificate", ModeCertificate.String())
	require.Equal(t, "unspecified", ModeUnspecified.String())
}

func TestParseRuntimeClass(t *testing.T) {
	rc, err := ParseRuntimeClass("")
	require.NoError(t, err)
	require.Equal(t, RuntimeModern, rc)

	rc, err = ParseRuntimeClass("modern")
	require.NoError(t, err)
	require.Equal(t, RuntimeModern, rc)

	rc, err = ParseRuntimeClass("Legacy")
	require.NoError(t, err)
	require.Equal(t, RuntimeLegacy, rc)

	_, err = ParseRuntimeClass("ancient")
	require.Error(t, err)
}

func TestEffectiveClientID(t *testing.T) {
	require.Equal(t, DefaultClientID, AuthContext{}.EffectiveClientID())
	require.Equal(t, DefaultClientID, AuthContext{ClientID: "  "}.EffectiveClientID())
	require.Equal(t, "my-app", AuthContext{ClientID: "my-app"}.EffectiveClientID())
}

func TestAuthContextValidate(t *testing.T) {
	tests := []struct {
		name       string
		ctx        AuthContext
		wantReason string
	}{
		{
			name:       "zero mode rejected",
			ctx:        AuthContext{TenantID: "tenant"},
			wantReason: "no authentication mode selected",
		},
		{
			name:       "interactive needs tenant",
			ctx:        AuthContext{Mode: ModeInteractive},
			wantReason: "tenant id is required",
		},
		{
			name:       "device code needs tenant",
			ctx:        AuthContext{Mode: ModeDeviceCode},
			wantReason: "tenant id is required",
		},
		{
			name:       "certificate needs thumbprint",
			ctx:        AuthContext{Mode: ModeCertificate, TenantID: "tenant"},
			wantReason: "certificate thumbprint is required for certificate mode",
		},
		{
			name:       "unknown mode rejected",
			ctx:        AuthContext{Mode: Mode(42), TenantID: "tenant"},
			wantReason: "no authentication mode selected",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ctx.Validate()
			require.Error(t, err)
			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			require.Equal(t, tt.wantReason, cfgErr.Reason)
		})
	}

	require.NoError(t, AuthContext{Mode: ModeInteractive, TenantID: "tenant"}.Validate())
	require.NoError(t, AuthContext{Mode: ModeDeviceCode, TenantID: "tenant", Refresh: true}.Validate())
	require.NoError(t, AuthContext{Mode: ModeCertificate, TenantID: "tenant", CertificateThumbprint: "AB12"}.Validate())
}
