package credentials

import (
	"crypto/tls"
	"fmt"
)

// ParseTLSVersion maps a configured version string to the tls constant.
// Only TLS 1.2 and 1.3 are accepted; older revisions are deliberately not
// offered.
func ParseTLSVersion(v string) (uint16, error) {
	switch v {
	case "", "1.2":
		return tls.VersionTLS12, nil
	case "1.3":
		return tls.VersionTLS13, nil
	default:
		return 0, fmt.Errorf("unsupported TLS version %q (use 1.2 or 1.3)", v)
	}
}

// TLSConfig builds the immutable server configuration for the given material.
// Client certificate presentation and chain validation are mandatory.
func TLSConfig(m Material, minVersion uint16) *tls.Config {
	return &tls.Config{
		Certificates: []tls.Certificate{m.Certificate},
		ClientCAs:    m.ClientCAs,
		ClientAuth:   tls.RequireAndVerifyClientCert,
		MinVersion:   minVersion,
	}
}
