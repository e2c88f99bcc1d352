package certstore

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore reads certificates from a directory of PEM files. Each file must
// contain a CERTIFICATE block and the matching private key block; lookup
// scans the directory on every call so new files are picked up immediately.
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

func (s *FileStore) Lookup(thumbprint string) (*Certificate, error) {
	want := NormalizeThumbprint(thumbprint)
	if want == "" {
		return nil, fmt.Errorf("empty thumbprint: %w", ErrNotFound)
	}
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read certificate dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".pem") {
			continue
		}
		path := filepath.Join(s.Dir, entry.Name())
		cert, err := loadPEMPair(path)
		if err != nil {
			// Skip unparsable files; the one we want may still follow.
			continue
		}
		if cert.Thumbprint == want {
			return cert, nil
		}
	}
	return nil, fmt.Errorf("thumbprint %s: %w", want, ErrNotFound)
}

func loadPEMPair(path string) (*Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var leaf *x509.Certificate
	var key crypto.Signer
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		switch block.Type {
		case "CERTIFICATE":
			if leaf == nil {
				parsed, err := x509.ParseCertificate(block.Bytes)
				if err != nil {
					return nil, fmt.Errorf("failed to parse certificate: %w", err)
				}
				leaf = parsed
			}
		case "RSA PRIVATE KEY", "EC PRIVATE KEY", "PRIVATE KEY":
			parsed, err := parseSigner(block)
			if err != nil {
				return nil, err
			}
			key = parsed
		}
	}
	if leaf == nil {
		return nil, fmt.Errorf("no certificate in %s", path)
	}
	if key == nil {
		return nil, fmt.Errorf("no private key in %s", path)
	}
	return &Certificate{Thumbprint: Thumbprint(leaf), Leaf: leaf, PrivateKey: key}, nil
}

func parseSigner(block *pem.Block) (crypto.Signer, error) {
	switch block.Type {
	case "RSA PRIVATE KEY":
		return x509.ParsePKCS1PrivateKey(block.Bytes)
	case "EC PRIVATE KEY":
		return x509.ParseECPrivateKey(block.Bytes)
	case "PRIVATE KEY":
		parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		switch typed := parsed.(type) {
		case *rsa.PrivateKey:
			return typed, nil
		case *ecdsa.PrivateKey:
			return typed, nil
		default:
			return nil, fmt.Errorf("unsupported private key type %T", parsed)
		}
	default:
		return nil, fmt.Errorf("unsupported key block %q", block.Type)
	}
}
