package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zalando/go-keyring"
)

const (
	tokenStoreFile     = "file"
	tokenStoreKeychain = "keychain"

	keyringService = "authctl"
)

// StoredToken is the persisted form of a Token.
type StoredToken struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
	Scopes       []string  `json:"scopes,omitempty"`
	IDToken      string    `json:"id_token,omitempty"`
}

func newStoredToken(t *Token) StoredToken {
	return StoredToken{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		Expiry:       t.Expiry,
		Scopes:       t.Scopes,
		IDToken:      t.IDToken,
	}
}

func (s StoredToken) Token() *Token {
	return &Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    s.TokenType,
		Expiry:       s.Expiry,
		Scopes:       s.Scopes,
		IDToken:      s.IDToken,
	}
}

// TokenCache is the on-disk file layout: one entry per tenant/client pair.
type TokenCache struct {
	Tokens map[string]StoredToken `json:"tokens"`
}

// TokenCacheManager stores tokens either in a JSON file or in the OS
// keychain. The zero StorageMode means file.
type TokenCacheManager struct {
	CachePath   string
	StorageMode string
}

func (m *TokenCacheManager) Get(key string) (StoredToken, bool, error) {
	if m.StorageMode == tokenStoreKeychain {
		raw, err := keyring.Get(keyringService, key)
		if err != nil {
			if errors.Is(err, keyring.ErrNotFound) {
				return StoredToken{}, false, nil
			}
			return StoredToken{}, false, fmt.Errorf("failed to read keychain entry: %w", err)
		}
		var token StoredToken
		if err := json.Unmarshal([]byte(raw), &token); err != nil {
			return StoredToken{}, false, fmt.Errorf("failed to parse keychain entry: %w", err)
		}
		return token, true, nil
	}
	cache, err := loadTokenCache(m.CachePath)
	if err != nil {
		if os.IsNotExist(err) {
			return StoredToken{}, false, nil
		}
		return StoredToken{}, false, err
	}
	token, ok := cache.Tokens[key]
	return token, ok, nil
}

func (m *TokenCacheManager) Save(key string, token StoredToken) error {
	if m.StorageMode == tokenStoreKeychain {
		raw, err := json.Marshal(token)
		if err != nil {
			return fmt.Errorf("failed to marshal token: %w", err)
		}
		if err := keyring.Set(keyringService, key, string(raw)); err != nil {
			return fmt.Errorf("failed to write keychain entry: %w", err)
		}
		return nil
	}
	cache, err := loadTokenCache(m.CachePath)
	if err != nil {
		cache = &TokenCache{Tokens: map[string]StoredToken{}}
	}
	cache.Tokens[key] = token
	return saveTokenCache(m.CachePath, cache)
}

func (m *TokenCacheManager) Delete(key string) error {
	if m.StorageMode == tokenStoreKeychain {
		if err := keyring.Delete(keyringService, key); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("failed to delete keychain entry: %w", err)
		}
		return nil
	}
	cache, err := loadTokenCache(m.CachePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	delete(cache.Tokens, key)
	return saveTokenCache(m.CachePath, cache)
}

func loadTokenCache(path string) (*TokenCache, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cache TokenCache
	if err := json.Unmarshal(content, &cache); err != nil {
		return nil, fmt.Errorf("failed to parse token cache: %w", err)
	}
	if cache.Tokens == nil {
		cache.Tokens = map[string]StoredToken{}
	}
	return &cache, nil
}

func saveTokenCache(path string, cache *TokenCache) error {
	if cache == nil {
		return errors.New("token cache is nil")
	}
	if cache.Tokens == nil {
		cache.Tokens = map[string]StoredToken{}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create token dir: %w", err)
	}
	content, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token cache: %w", err)
	}
	return os.WriteFile(path, content, 0o600)
}

// CacheKey names the cache entry for a tenant/client pair.
func CacheKey(tenantID, clientID string) string {
	return tenantID + "/" + clientID
}
