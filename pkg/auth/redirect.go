package auth

const (
	// RedirectOutOfBand is the registered reply address of the built-in
	// application.
	RedirectOutOfBand = "urn:ietf:wg:oauth:2.0:oob"
	// RedirectNativeClient is the default for custom applications on legacy
	// runtimes.
	RedirectNativeClient = "https://login.microsoftonline.com/common/oauth2/nativeclient"
	// RedirectLoopback is the default for custom applications on modern
	// runtimes.
	RedirectLoopback = "http://localhost"
)

// ResolveRedirectURI computes the redirect target for an acquisition. The
// built-in application always uses the out-of-band sentinel, overrides
// included; custom applications use an explicit override verbatim or a
// runtime-appropriate default. The result is never empty.
func ResolveRedirectURI(clientID, override string, runtime RuntimeClass) string {
	if clientID == DefaultClientID {
		return RedirectOutOfBand
	}
	if override != "" {
		return override
	}
	if runtime == RuntimeLegacy {
		return RedirectNativeClient
	}
	return RedirectLoopback
}
