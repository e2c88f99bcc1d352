package auth

import "time"

// Token is the result of an acquisition. It is created by the TokenAcquirer
// and held by the Session until the next successful acquisition overwrites it.
type Token struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	Expiry       time.Time
	Scopes       []string
	IDToken      string
}

// Valid reports whether the token carries a non-expired access token. A zero
// expiry means the issuer did not communicate one and the token is trusted.
func (t *Token) Valid() bool {
	if t == nil || t.AccessToken == "" {
		return false
	}
	return t.Expiry.IsZero() || time.Now().Before(t.Expiry)
}
