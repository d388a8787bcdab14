package config

import (
	"crypto/tls"
	"fmt"
	"os"
)

// ValidateTLSConfig validates the TLS configuration
func (c *Config) ValidateTLSConfig() error {
	t := c.Server.TLS
	if !t.Enabled {
		return nil
	}

	if err := validateCertAndKeyRequired(t); err != nil {
		return err
	}
	if err := validateCertFilesExist(t); err != nil {
		return err
	}
	return validateTLSVersion(t)
}

// validateCertAndKeyRequired checks that both certificate and key are provided
func validateCertAndKeyRequired(t TLSConfig) error {
	if t.CertFile == "" || t.KeyFile == "" {
		return fmt.Errorf("TLS certificate and key files are required when TLS is enabled")
	}
	return nil
}

func validateCertFilesExist(t TLSConfig) error {
	for _, f := range []string{t.CertFile, t.KeyFile} {
		if _, err := os.Stat(f); err != nil {
			return fmt.Errorf("TLS file not accessible: %w", err)
		}
	}
	return nil
}

// validateTLSVersion validates the TLS version configuration
func validateTLSVersion(t TLSConfig) error {
	switch t.MinVersion {
	case "", "1.2", "1.3":
		return nil // empty defaults to 1.2
	default:
		return fmt.Errorf("invalid TLS minVersion: %s (must be '1.2' or '1.3')", t.MinVersion)
	}
}

// TLSMinVersion maps the configured minimum version to its crypto/tls constant
func (t TLSConfig) TLSMinVersion() uint16 {
	if t.MinVersion == "1.3" {
		return tls.VersionTLS13
	}
	return tls.VersionTLS12
}
