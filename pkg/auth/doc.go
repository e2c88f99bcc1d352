// Package auth manages OAuth2 authentication against a cloud management API,
// supporting interactive (authorization-code), device-code, and
// certificate-based flows with token caching via keychain or file storage.
// A Session owns the most recently acquired token and authentication header.
package auth
