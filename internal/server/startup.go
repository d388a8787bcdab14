package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const shutdownTimeout = 30 * time.Second

// Start runs the server until SIGINT or SIGTERM
func (s *Server) Start() error {
	return s.Run(context.Background())
}

// Run runs the server until ctx is done or a shutdown signal arrives
func (s *Server) Run(ctx context.Context) error {
	httpServer := s.setupHTTPServer()

	if err := s.configureTLS(httpServer); err != nil {
		return err
	}

	s.displayServerInfo(httpServer)

	return s.startWithGracefulShutdown(ctx, httpServer)
}

// setupHTTPServer creates and configures the HTTP server
func (s *Server) setupHTTPServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.Host, s.Port),
		Handler:      s.Handler(),
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
		IdleTimeout:  s.IdleTimeout,
	}
}

// configureTLS loads the key pair through the certificate manager when TLS is enabled
func (s *Server) configureTLS(httpServer *http.Server) error {
	if !s.TLSConfig.Enabled {
		return nil
	}

	cm := NewCertificateManager(s.TLSConfig, s.Observability.Metrics(), s.Logger)
	if err := cm.Start(); err != nil {
		return fmt.Errorf("failed to set up TLS: %w", err)
	}
	s.CertificateManager = cm

	httpServer.TLSConfig = s.buildTLSConfig()
	return nil
}

// buildTLSConfig serves whatever pair the certificate manager currently holds
func (s *Server) buildTLSConfig() *tls.Config {
	return &tls.Config{
		MinVersion:     s.TLSConfig.TLSMinVersion(),
		GetCertificate: s.CertificateManager.GetCertificate,
	}
}

// displayServerInfo logs the address and the available endpoints
func (s *Server) displayServerInfo(httpServer *http.Server) {
	scheme := "http"
	if httpServer.TLSConfig != nil {
		scheme = "https"
	}
	s.Logger.Info("Server configured",
		"url", fmt.Sprintf("%s://%s%s", scheme, httpServer.Addr, apiPrefix),
		"max_upload_size_bytes", s.MaxUploadSize,
		"cors_origins", s.CORSOrigins,
		"features", s.Pipeline.Features())

	for _, rt := range s.routes() {
		s.Logger.Debug("Endpoint available",
			"method", rt.method,
			"path", apiPrefix+rt.path,
			"description", rt.description)
	}
}

// startWithGracefulShutdown starts the HTTP server and handles graceful shutdown
func (s *Server) startWithGracefulShutdown(ctx context.Context, server *http.Server) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.Logger.Info("Starting HTTP server",
			"address", server.Addr,
			"tls_enabled", server.TLSConfig != nil)

		var err error
		if server.TLSConfig != nil {
			// the key pair comes from GetCertificate
			err = server.ListenAndServeTLS("", "")
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		s.stopCertificateManager()
		return fmt.Errorf("server failed to start: %w", err)
	case sig := <-quit:
		s.Logger.Info("Received shutdown signal, starting graceful shutdown",
			"signal", sig.String())
	case <-ctx.Done():
		s.Logger.Info("Context cancelled, starting graceful shutdown")
	}

	return s.performGracefulShutdown(server)
}

// performGracefulShutdown handles the graceful shutdown process
func (s *Server) performGracefulShutdown(server *http.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.stopCertificateManager()

	s.Logger.Info("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown server gracefully, forcing close")
		return server.Close()
	}

	s.Logger.Info("Server shutdown completed successfully")
	return nil
}

func (s *Server) stopCertificateManager() {
	if s.CertificateManager == nil {
		return
	}
	if err := s.CertificateManager.Stop(); err != nil {
		s.Logger.LogError(err, "Failed to stop certificate manager")
	}
}
