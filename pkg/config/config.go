package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

const (
	VersionV1 = "v1"
)

// Config is the authctl configuration file.
type Config struct {
	Version string `yaml:"version"`

	TenantID    string `yaml:"tenant-id,omitempty"`
	ClientID    string `yaml:"client-id,omitempty"`
	RedirectURI string `yaml:"redirect-uri,omitempty"`

	Authority          string   `yaml:"authority,omitempty"`
	Scopes             []string `yaml:"scopes,omitempty"`
	ManagementEndpoint string   `yaml:"management-endpoint,omitempty"`

	CertificateDir string `yaml:"certificate-dir,omitempty"`

	CAFile          string `yaml:"ca-file,omitempty"`
	InsecureSkipTLS bool   `yaml:"insecure-skip-tls-verify,omitempty"`

	Runtime string `yaml:"runtime,omitempty"`

	Settings Settings `yaml:"settings,omitempty"`
}

type Settings struct {
	OutputFormat string `yaml:"output-format,omitempty"`
	TokenStorage string `yaml:"token-storage,omitempty"`
	NoBrowser    bool   `yaml:"no-browser,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		Version:            VersionV1,
		ManagementEndpoint: "https://management.azure.com",
		CertificateDir:     DefaultCertificateDir(),
		Settings: Settings{
			OutputFormat: "text",
			TokenStorage: "file",
		},
	}
}

func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is required")
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Version == "" {
		cfg.Version = VersionV1
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if cfg.Version == "" {
		cfg.Version = VersionV1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	content, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, content, 0o600)
}

func (c *Config) Validate() error {
	if c.Version == "" {
		return errors.New("config version missing")
	}
	switch strings.ToLower(c.Settings.TokenStorage) {
	case "", "file", "keychain":
	default:
		return fmt.Errorf("unknown token storage: %s", c.Settings.TokenStorage)
	}
	switch strings.ToLower(c.Runtime) {
	case "", "modern", "legacy":
	default:
		return fmt.Errorf("unknown runtime class: %s", c.Runtime)
	}
	return nil
}
