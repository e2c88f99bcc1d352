// Package config loads and validates the authctl configuration file and
// resolves the default locations for config, token cache, and certificates.
package config
