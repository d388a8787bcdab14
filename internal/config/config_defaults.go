package config

import (
	"time"

	"github.com/spf13/viper"
)

// DefaultMaxUploadSize caps multipart uploads at 10 MB
const DefaultMaxUploadSize = 10 << 20

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Gemini
	v.SetDefault("gemini.api.key", "")
	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("gemini.temperature", 0.3)
	v.SetDefault("gemini.maxOutputTokens", 8192)
	v.SetDefault("gemini.connectTimeout", 30*time.Second)
	v.SetDefault("gemini.readTimeout", 90*time.Second)
	v.SetDefault("gemini.writeTimeout", 30*time.Second)
	v.SetDefault("gemini.maxRetries", 2)
	v.SetDefault("gemini.requestsPerMinute", 30)
	v.SetDefault("gemini.prompts.polishSystemFile", "")
	v.SetDefault("gemini.prompts.coverLetterSystemFile", "")
	v.SetDefault("gemini.prompts.analysisSystemFile", "")

	// Circuit breaker around generation
	v.SetDefault("gemini.circuitBreaker.enabled", true)
	v.SetDefault("gemini.circuitBreaker.maxRequests", 3)
	v.SetDefault("gemini.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("gemini.circuitBreaker.timeout", 60*time.Second)
	v.SetDefault("gemini.circuitBreaker.minRequests", 3)
	v.SetDefault("gemini.circuitBreaker.failureThreshold", 0.6)

	// Server Configuration
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 120*time.Second) // enhance-pdf may wait on the generator
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.maxUploadSize", DefaultMaxUploadSize)
	v.SetDefault("server.corsOrigins", []string{"http://localhost:5173", "http://localhost:3000"})

	// TLS Configuration defaults
	v.SetDefault("server.tls.enabled", false)
	v.SetDefault("server.tls.certFile", "")
	v.SetDefault("server.tls.keyFile", "")
	v.SetDefault("server.tls.minVersion", "1.2")
	v.SetDefault("server.tls.watch", true)

	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})
	v.SetDefault("app.maxFileSize", DefaultMaxUploadSize)

	// Generator-backed features
	v.SetDefault("features.aiPolish", false)
	v.SetDefault("features.aiCoverLetter", false)
	v.SetDefault("features.aiAnalysis", false)

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.geminiKey", "")

	// Observability Configuration
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "atsresume")
	v.SetDefault("observability.serviceVersion", "")  // Will use app version if empty
	v.SetDefault("observability.serviceInstance", "") // Will be auto-generated if empty
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)

	// Prometheus Configuration
	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")

	// OTLP Configuration
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})
}
