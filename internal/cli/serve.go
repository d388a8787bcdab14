package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"atsresume/internal/observability"
	"atsresume/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start an HTTP server exposing the résumé pipeline under /api/v1.

Available endpoints:
- GET  /api/v1/health: Health check
- GET  /api/v1/stats: Service, feature and certificate status
- POST /api/v1/resume/enhance: Keyword analysis of an uploaded résumé
- POST /api/v1/resume/ats-score: ATS score of an uploaded résumé
- POST /api/v1/resume/ats-convert: Plain single column PDF of an upload
- POST /api/v1/resume/enhance-pdf: Rewritten résumé as a PDF
- POST /api/v1/resume/test-score: ATS score of résumé text sent as JSON
- POST /api/v1/resume/ai-analysis: Generator review of an upload
- POST /api/v1/cover-letter/generate: Cover letter for an upload

Uploads are multipart forms with a "resume" file (PDF or DOCX) and a
"jobDescription" field. Generator features are switched on in the
features section of the config.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
	serveCmd.Flags().Bool("tls", false, "Serve HTTPS (overrides config)")
	serveCmd.Flags().String("cert-file", "", "Server certificate file (PEM, overrides config)")
	serveCmd.Flags().String("key-file", "", "Server private key file (PEM, overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return err
	}

	// config is loaded before cobra parses flags, so overrides are applied here
	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Server.Host, _ = flags.GetString("host")
	}
	if flags.Changed("port") {
		cfg.Server.Port, _ = flags.GetString("port")
	}
	if flags.Changed("tls") {
		cfg.Server.TLS.Enabled, _ = flags.GetBool("tls")
	}
	if flags.Changed("cert-file") {
		cfg.Server.TLS.CertFile, _ = flags.GetString("cert-file")
	}
	if flags.Changed("key-file") {
		cfg.Server.TLS.KeyFile, _ = flags.GetString("key-file")
	}
	if err := cfg.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}

	om, err := observability.NewManager(observability.FromConfig(cfg, Version), logger)
	if err != nil {
		return fmt.Errorf("failed to set up observability: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := om.Shutdown(ctx); err != nil {
			logger.LogError(err, "Failed to shut down observability")
		}
	}()

	p, err := newPipeline(cmd.Context(), cfg, cfg.Features, om.Metrics(), logger)
	if err != nil {
		return err
	}

	return server.NewServer(p, om, server.ConfigFromApp(cfg, Version), logger).Run(cmd.Context())
}
