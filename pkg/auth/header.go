package auth

import "errors"

// AuthenticationHeader is the transport-ready credential attached to
// management API requests. It is reconstructed from the current token on
// every acquisition and never mutated in place.
type AuthenticationHeader struct {
	Scheme string
	Value  string
}

func (h AuthenticationHeader) String() string {
	return h.Scheme + " " + h.Value
}

// HeaderConstructor converts a token into an authentication header.
type HeaderConstructor interface {
	Construct(token *Token) (AuthenticationHeader, error)
}

// BearerHeaderConstructor builds standard bearer headers.
type BearerHeaderConstructor struct{}

func (BearerHeaderConstructor) Construct(token *Token) (AuthenticationHeader, error) {
	if token == nil || token.AccessToken == "" {
		return AuthenticationHeader{}, errors.New("token has no access token")
	}
	scheme := token.TokenType
	if scheme == "" {
		scheme = "Bearer"
	}
	return AuthenticationHeader{Scheme: scheme, Value: token.AccessToken}, nil
}
