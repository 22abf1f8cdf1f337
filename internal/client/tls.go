package client

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/muurk/heatlink/internal/logging"
)

// NewTLSConfig creates a client TLS configuration compatible with the
// gateway firmware. The gateway requires mutual authentication (client
// certificate), only speaks TLS 1.2, and only offers legacy RSA cipher
// suites.
func NewTLSConfig(certFile, keyFile, caFile, serverName string) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load client certificate: %w", err)
	}

	var roots *x509.CertPool
	if caFile != "" {
		pem, err := os.ReadFile(caFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate: %w", err)
		}
		roots = x509.NewCertPool()
		if !roots.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", caFile)
		}
	}

	logging.Info("TLS configuration created",
		zap.String("cert", certFile),
		zap.String("key", keyFile),
		zap.String("server_name", serverName),
		zap.String("tls_version", "1.2 only"),
	)

	return buildGatewayTLSConfig(cert, roots, serverName), nil
}

// buildGatewayTLSConfig builds a tls.Config with gateway-compatible settings
func buildGatewayTLSConfig(cert tls.Certificate, roots *x509.CertPool, serverName string) *tls.Config {
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		RootCAs:      roots,

		// The gateway certificate always carries the same fixed name,
		// regardless of which host actually runs it.
		ServerName: serverName,

		// Gateway firmware doesn't support TLS 1.3
		MinVersion: tls.VersionTLS12,
		MaxVersion: tls.VersionTLS12,

		// Legacy RSA cipher suites the firmware supports.
		// Using hex values directly because some constants don't exist in Go's TLS package
		CipherSuites: []uint16{
			0x003C, // TLS_RSA_WITH_AES_128_CBC_SHA256
			0x003D, // TLS_RSA_WITH_AES_256_CBC_SHA256
			0x002F, // TLS_RSA_WITH_AES_128_CBC_SHA
			0x0035, // TLS_RSA_WITH_AES_256_CBC_SHA
		},

		// Callback to log TLS handshake details
		VerifyConnection: func(cs tls.ConnectionState) error {
			logging.LogTLSHandshake(
				cs.ServerName,
				cs.Version,
				cs.CipherSuite,
				cs.ServerName,
			)
			return nil
		},
	}
}
