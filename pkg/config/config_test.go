package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, VersionV1, cfg.Version)
	require.Equal(t, "https://management.azure.com", cfg.ManagementEndpoint)
	require.Equal(t, "text", cfg.Settings.OutputFormat)
	require.Equal(t, "file", cfg.Settings.TokenStorage)
	require.NoError(t, cfg.Validate())
}

func TestConfigRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.TenantID = "tenant"
	cfg.ClientID = "my-app"
	cfg.Runtime = "legacy"
	cfg.Scopes = []string{"openid", "https://management.azure.com/.default"}

	require.NoError(t, Save(path, &cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.TenantID, loaded.TenantID)
	require.Equal(t, cfg.ClientID, loaded.ClientID)
	require.Equal(t, cfg.Runtime, loaded.Runtime)
	require.Equal(t, cfg.Scopes, loaded.Scopes)
	require.NoError(t, loaded.Validate())

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadFillsVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tenant-id: tenant\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, VersionV1, cfg.Version)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load("")
	require.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.True(t, os.IsNotExist(err))

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("\tnot yaml"), 0o600))
	_, err = Load(path)
	require.ErrorContains(t, err, "failed to parse config")
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Settings.TokenStorage = "vault"
	require.ErrorContains(t, cfg.Validate(), "unknown token storage")

	cfg = DefaultConfig()
	cfg.Runtime = "ancient"
	require.ErrorContains(t, cfg.Validate(), "unknown runtime class")

	cfg = DefaultConfig()
	cfg.Settings.TokenStorage = "Keychain"
	cfg.Runtime = "Legacy"
	require.NoError(t, cfg.Validate())
}

func TestDefaultConfigPathEnvOverride(t *testing.T) {
	t.Setenv("AUTHCTL_CONFIG", "/tmp/custom.yaml")
	require.Equal(t, "/tmp/custom.yaml", DefaultConfigPath())

	t.Setenv("AUTHCTL_CONFIG", "")
	require.NotEmpty(t, DefaultConfigPath())
	require.Contains(t, DefaultConfigPath(), "config.yaml")
}
