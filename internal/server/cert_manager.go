package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"sync"
	"time"

	"atsresume/internal/config"
	"atsresume/internal/errors"
	"atsresume/internal/observability"
)

// CertificateManager serves the current key pair to TLS handshakes and
// swaps it when the files on disk change
type CertificateManager struct {
	mu sync.RWMutex

	cert       *tls.Certificate
	certExpiry time.Time

	lastReloadTime    time.Time
	reloadCount       int64
	reloadFailures    int64
	lastReloadSuccess bool
	lastReloadError   string

	watcher *CertWatcher
	config  config.TLSConfig
	metrics *observability.Metrics
	logger  *errors.Logger
}

// NewCertificateManager creates a manager for cfg. metrics may be nil.
func NewCertificateManager(cfg config.TLSConfig, metrics *observability.Metrics, logger *errors.Logger) *CertificateManager {
	if logger == nil {
		logger = errors.Discard()
	}
	return &CertificateManager{
		config:  cfg,
		metrics: metrics,
		logger:  logger,
	}
}

// Start loads the key pair and, when watching is on, starts the file watcher
func (cm *CertificateManager) Start() error {
	if err := cm.loadCertificate(); err != nil {
		return fmt.Errorf("failed to load initial certificate: %w", err)
	}
	if !cm.config.Watch {
		return nil
	}

	watcher, err := NewCertWatcher(cm.config.CertFile, cm.config.KeyFile, time.Second, cm.triggerReload, cm.logger)
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		return fmt.Errorf("failed to start certificate watcher: %w", err)
	}
	cm.watcher = watcher
	return nil
}

// Stop stops the file watcher
func (cm *CertificateManager) Stop() error {
	if cm.watcher == nil {
		return nil
	}
	if err := cm.watcher.Stop(); err != nil {
		cm.logger.LogError(err, "Failed to stop certificate watcher")
		return err
	}
	cm.logger.Info("Certificate manager stopped")
	return nil
}

// GetCertificate returns the current key pair for TLS handshakes
func (cm *CertificateManager) GetCertificate(hello *tls.ClientHelloInfo) (*tls.Certificate, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if cm.cert == nil {
		return nil, fmt.Errorf("no server certificate available")
	}
	if !cm.certExpiry.IsZero() && time.Now().After(cm.certExpiry) {
		cm.logger.Warn("Serving expired certificate",
			"expiry", cm.certExpiry,
			"server_name", hello.ServerName)
	}
	return cm.cert, nil
}

// ReloadCertificate reads the key pair from disk again
func (cm *CertificateManager) ReloadCertificate() error {
	return cm.loadCertificate()
}

// Status reports expiry and reload counters
func (cm *CertificateManager) Status() map[string]any {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	status := map[string]any{
		"expiry":              cm.certExpiry,
		"last_reload_time":    cm.lastReloadTime,
		"reload_count":        cm.reloadCount,
		"reload_failures":     cm.reloadFailures,
		"last_reload_success": cm.lastReloadSuccess,
		"watching":            cm.watcher != nil && cm.watcher.IsRunning(),
	}
	if cm.lastReloadError != "" {
		status["last_reload_error"] = cm.lastReloadError
	}
	if cm.watcher != nil {
		status["watched_files"] = cm.watcher.GetWatchedFiles()
	}
	return status
}

// loadCertificate replaces the served key pair. On failure the previous pair stays in use.
func (cm *CertificateManager) loadCertificate() error {
	cert, err := tls.LoadX509KeyPair(cm.config.CertFile, cm.config.KeyFile)
	if err == nil {
		err = parseCertificateExpiry(&cert)
	}

	cm.mu.Lock()
	cm.reloadCount++
	if err != nil {
		cm.reloadFailures++
		cm.lastReloadSuccess = false
		cm.lastReloadError = err.Error()
	} else {
		cm.cert = &cert
		cm.certExpiry = cert.Leaf.NotAfter
		cm.lastReloadTime = time.Now()
		cm.lastReloadSuccess = true
		cm.lastReloadError = ""
	}
	cm.mu.Unlock()

	cm.metrics.RecordCertReload(context.Background(), err == nil)
	if err != nil {
		return fmt.Errorf("failed to load server cert/key from files: %w", err)
	}

	cm.logger.Info("Certificate loaded",
		"cert_file", cm.config.CertFile,
		"expiry", cert.Leaf.NotAfter)
	return nil
}

// parseCertificateExpiry fills cert.Leaf so the expiry is known
func parseCertificateExpiry(cert *tls.Certificate) error {
	if cert.Leaf != nil {
		return nil
	}
	if len(cert.Certificate) == 0 {
		return fmt.Errorf("certificate file contains no certificate")
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return fmt.Errorf("failed to parse server certificate: %w", err)
	}
	cert.Leaf = leaf
	return nil
}

// triggerReload is called by the watcher when the files change
func (cm *CertificateManager) triggerReload() {
	cm.logger.Info("Certificate reload triggered by file watcher")
	if err := cm.loadCertificate(); err != nil {
		cm.logger.LogError(err, "Failed to reload certificate")
	}
}
