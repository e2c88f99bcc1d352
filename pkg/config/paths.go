package config

import (
	"os"
	"path/filepath"
)

const (
	defaultConfigDirName = "authctl"
	defaultConfigFile    = "config.yaml"
	defaultTokenFile     = "tokens.json"
	defaultCertsDirName  = "certs"
)

func DefaultConfigPath() string {
	if env := os.Getenv("AUTHCTL_CONFIG"); env != "" {
		return env
	}
	base, err := os.UserConfigDir()
	if err == nil {
		return filepath.Join(base, defaultConfigDirName, defaultConfigFile)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".authctl", defaultConfigFile)
}

func DefaultTokenPath() string {
	base, err := os.UserConfigDir()
	if err == nil {
		return filepath.Join(base, defaultConfigDirName, defaultTokenFile)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".authctl", defaultTokenFile)
}

func DefaultCertificateDir() string {
	base, err := os.UserConfigDir()
	if err == nil {
		return filepath.Join(base, defaultConfigDirName, defaultCertsDirName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".authctl", defaultCertsDirName)
}
