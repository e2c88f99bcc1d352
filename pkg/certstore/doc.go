// Package certstore provides certificate lookup by thumbprint for
// certificate-based authentication. The default implementation reads PEM
// files from a directory; other stores can satisfy the Store interface.
package certstore
