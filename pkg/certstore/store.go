package certstore

import (
	"crypto"
	"crypto/sha1"
	"crypto/x509"
	"encoding/hex"
	"errors"
	"strings"
)

// ErrNotFound is returned when no certificate matches the thumbprint.
var ErrNotFound = errors.New("certificate not found")

// Certificate is an opaque handle to a certificate and its private key.
type Certificate struct {
	Thumbprint string
	Leaf       *x509.Certificate
	PrivateKey crypto.Signer
}

// Store looks up certificates by SHA-1 thumbprint.
type Store interface {
	Lookup(thumbprint string) (*Certificate, error)
}

// Thumbprint computes the uppercase hex SHA-1 digest of the certificate's
// DER encoding, the form certificate stores key on.
func Thumbprint(cert *x509.Certificate) string {
	sum := sha1.Sum(cert.Raw)
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// NormalizeThumbprint strips separators and uppercases a caller-supplied
// thumbprint so it compares against Thumbprint output.
func NormalizeThumbprint(value string) string {
	replacer := strings.NewReplacer(":", "", " ", "", "-", "")
	return strings.ToUpper(replacer.Replace(strings.TrimSpace(value)))
}
