package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveRedirectURI(t *testing.T) {
	tests := []struct {
		name     string
		clientID string
		override string
		runtime  RuntimeClass
		want     string
	}{
		{
			name:     "built-in client uses out-of-band sentinel",
			clientID: DefaultClientID,
			want:     RedirectOutOfBand,
		},
		{
			name:     "built-in client ignores override",
			clientID: DefaultClientID,
			override: "http://localhost:8080/custom",
			want:     RedirectOutOfBand,
		},
		{
			name:     "built-in client ignores runtime class",
			clientID: DefaultClientID,
			runtime:  RuntimeLegacy,
			want:     RedirectOutOfBand,
		},
		{
			name:     "custom client override is used verbatim",
			clientID: "my-app",
			override: "http://localhost:9999/done",
			runtime:  RuntimeLegacy,
			want:     "http://localhost:9999/done",
		},
		{
			name:     "custom client on legacy runtime defaults to native client",
			clientID: "my-app",
			runtime:  RuntimeLegacy,
			want:     RedirectNativeClient,
		},
		{
			name:     "custom client on modern runtime defaults to loopback",
			clientID: "my-app",
			want:     RedirectLoopback,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveRedirectURI(tt.clientID, tt.override, tt.runtime)
			require.Equal(t, tt.want, got)
			require.NotEmpty(t, got)
		})
	}
}
