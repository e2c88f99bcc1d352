package certstore

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeTestCertificate(t *testing.T, dir, name string) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: name},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)
	leaf, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	var out strings.Builder
	require.NoError(t, pem.Encode(&out, &pem.Block{Type: "CERTIFICATE", Bytes: der}))
	require.NoError(t, pem.Encode(&out, &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".pem"), []byte(out.String()), 0o600))
	return Thumbprint(leaf)
}

func TestFileStoreLookup(t *testing.T) {
	dir := t.TempDir()
	first := writeTestCertificate(t, dir, "first")
	second := writeTestCertificate(t, dir, "second")
	require.NotEqual(t, first, second)

	store := NewFileStore(dir)
	cert, err := store.Lookup(second)
	require.NoError(t, err)
	require.Equal(t, second, cert.Thumbprint)
	require.NotNil(t, cert.Leaf)
	require.NotNil(t, cert.PrivateKey)
}

func TestFileStoreLookupNormalizesThumbprint(t *testing.T) {
	dir := t.TempDir()
	thumbprint := writeTestCertificate(t, dir, "cert")

	// Colon-separated lowercase input, as copied from most certificate UIs.
	var pieces []string
	for i := 0; i < len(thumbprint); i += 2 {
		pieces = append(pieces, strings.ToLower(thumbprint[i:i+2]))
	}
	cert, err := NewFileStore(dir).Lookup(strings.Join(pieces, ":"))
	require.NoError(t, err)
	require.Equal(t, thumbprint, cert.Thumbprint)
}

func TestFileStoreLookupNotFound(t *testing.T) {
	dir := t.TempDir()
	writeTestCertificate(t, dir, "cert")

	_, err := NewFileStore(dir).Lookup("DEADBEEF")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreLookupEmptyThumbprint(t *testing.T) {
	_, err := NewFileStore(t.TempDir()).Lookup("  ")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreSkipsUnparsableFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.pem"), []byte("not pem"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))
	thumbprint := writeTestCertificate(t, dir, "valid")

	cert, err := NewFileStore(dir).Lookup(thumbprint)
	require.NoError(t, err)
	require.Equal(t, thumbprint, cert.Thumbprint)
}

func TestFileStoreMissingDir(t *testing.T) {
	_, err := NewFileStore(filepath.Join(t.TempDir(), "missing")).Lookup("ABCD")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}

func TestNormalizeThumbprint(t *testing.T) {
	require.Equal(t, "AB12CD34", NormalizeThumbprint(" ab:12 cd-34 "))
	require.Equal(t, "", NormalizeThumbprint("   "))
}
