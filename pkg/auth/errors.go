package auth

import "fmt"

// ConfigurationError reports an invalid AuthContext: zero or unknown mode, or
// a missing mode-required field. It is never retried.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// AcquisitionError wraps any failure from the token acquisition stage,
// including certificate lookup during request construction. Sub-kinds
// (network, consent, bad credentials) are not distinguished.
type AcquisitionError struct {
	Err error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("token acquisition failed: %v", e.Err)
}

func (e *AcquisitionError) Unwrap() error { return e.Err }

// HeaderError wraps any failure from the header construction stage.
type HeaderError struct {
	Err error
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("header construction failed: %v", e.Err)
}

func (e *HeaderError) Unwrap() error { return e.Err }
