package config

import (
	"fmt"
	"log"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"atsresume/internal/errors"
)

// Config holds all application configuration
// Gemini API key precedence:
// 1. Vault (if configured) - Highest priority
// 2. Config file
// 3. Environment (ATSRESUME_GEMINI_API_KEY, then GEMINI_API_KEY)
// 4. Default values - Lowest priority
type Config struct {
	Gemini        GeminiConfig        `mapstructure:"gemini"`
	Server        ServerConfig        `mapstructure:"server"`
	App           AppConfig           `mapstructure:"app"`
	Features      FeaturesConfig      `mapstructure:"features"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`

	// Prompts holds system prompt overrides read from the files named in Gemini.Prompts
	Prompts LoadedPrompts `mapstructure:"-"`
}

// GeminiConfig configures the text generator
type GeminiConfig struct {
	API               GeminiAPIConfig      `mapstructure:"api"`
	Model             string               `mapstructure:"model"`
	Temperature       float32              `mapstructure:"temperature"`
	MaxOutputTokens   int32                `mapstructure:"maxOutputTokens"`
	ConnectTimeout    time.Duration        `mapstructure:"connectTimeout"`
	ReadTimeout       time.Duration        `mapstructure:"readTimeout"`
	WriteTimeout      time.Duration        `mapstructure:"writeTimeout"`
	MaxRetries        int                  `mapstructure:"maxRetries"`
	RequestsPerMinute int                  `mapstructure:"requestsPerMinute"`
	CircuitBreaker    CircuitBreakerConfig `mapstructure:"circuitBreaker"`
	Prompts           PromptFiles          `mapstructure:"prompts"`
}

type GeminiAPIConfig struct {
	Key string `mapstructure:"key"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`          // Whether circuit breaker is enabled
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Timeout for half-open to open
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // Failure ratio threshold (0.0-1.0)
}

// PromptFiles names optional files that replace the built-in system prompts
type PromptFiles struct {
	PolishSystemFile      string `mapstructure:"polishSystemFile"`
	CoverLetterSystemFile string `mapstructure:"coverLetterSystemFile"`
	AnalysisSystemFile    string `mapstructure:"analysisSystemFile"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host          string        `mapstructure:"host"`
	Port          string        `mapstructure:"port"`
	ReadTimeout   time.Duration `mapstructure:"readTimeout"`
	WriteTimeout  time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout   time.Duration `mapstructure:"idleTimeout"`
	MaxUploadSize int64         `mapstructure:"maxUploadSize"`
	CORSOrigins   []string      `mapstructure:"corsOrigins"`
	TLS           TLSConfig     `mapstructure:"tls"`
}

// TLSConfig holds HTTPS configuration
type TLSConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	CertFile   string `mapstructure:"certFile"`   // Server certificate file (PEM)
	KeyFile    string `mapstructure:"keyFile"`    // Server private key file (PEM)
	MinVersion string `mapstructure:"minVersion"` // "1.2" or "1.3"
	Watch      bool   `mapstructure:"watch"`      // Reload the key pair when the files change
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
	MaxFileSize      int64    `mapstructure:"maxFileSize"`
}

// FeaturesConfig switches the generator-backed features
type FeaturesConfig struct {
	AIPolish      bool `mapstructure:"aiPolish"`
	AICoverLetter bool `mapstructure:"aiCoverLetter"`
	AIAnalysis    bool `mapstructure:"aiAnalysis"`
}

// AnyAI reports whether any generator-backed feature is switched on
func (f FeaturesConfig) AnyAI() bool {
	return f.AIPolish || f.AICoverLetter || f.AIAnalysis
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	Enabled         bool             `mapstructure:"enabled"`
	ServiceName     string           `mapstructure:"serviceName"`
	ServiceVersion  string           `mapstructure:"serviceVersion"`
	ServiceInstance string           `mapstructure:"serviceInstance"`
	ConsoleOutput   bool             `mapstructure:"consoleOutput"`
	SampleRate      float64          `mapstructure:"sampleRate"`
	Metrics         MetricsConfig    `mapstructure:"metrics"`
	Prometheus      PrometheusConfig `mapstructure:"prometheus"`
	OTLP            OTLPConfig       `mapstructure:"otlp"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// PrometheusConfig holds Prometheus configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Port     string `mapstructure:"port"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// LoadConfig loads configuration from defaults, an optional config file and the environment
func LoadConfig() (*Config, error) {
	return load(viper.New(), true)
}

func load(v *viper.Viper, searchFiles bool) (*Config, error) {
	log.Println("[CONFIG] Starting configuration loading process")

	setDefaults(v)
	log.Println("[CONFIG] Applied default configuration values")

	v.SetEnvPrefix("ATSRESUME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// the bare provider variable is honoured too
	if err := v.BindEnv("gemini.api.key", "ATSRESUME_GEMINI_API_KEY", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind gemini key environment: %w", err)
	}
	log.Println("[CONFIG] Configured environment variable handling with prefix 'ATSRESUME'")

	configFileUsed := ""
	if searchFiles {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/atsresume/")
		v.AddConfigPath("$HOME/.atsresume")
		v.AddConfigPath(".")
		log.Println("[CONFIG] Configured config file search paths: /etc/atsresume/, $HOME/.atsresume, .")

		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			log.Println("[CONFIG] No config file found, using defaults and environment variables")
		} else {
			configFileUsed = v.ConfigFileUsed()
			log.Printf("[CONFIG] Successfully loaded config file: %s", configFileUsed)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	log.Println("[CONFIG] Successfully unmarshaled configuration")

	config.applyFallbacks()

	if config.Vault.Enabled {
		logger, err := errors.New(config.App.LogLevel)
		if err != nil {
			logger = errors.NewLogger(slog.LevelInfo)
		}
		if err := ApplyVaultSecrets(&config, logger); err != nil {
			return nil, fmt.Errorf("failed to apply vault secrets: %w", err)
		}
		log.Println("[CONFIG] Applied secrets from Vault")
	}

	config.logConfigurationSources(configFileUsed)

	if err := config.validatePromptFiles(); err != nil {
		return nil, fmt.Errorf("prompt file validation failed: %w", err)
	}
	if err := config.loadPromptsFromFiles(); err != nil {
		return nil, fmt.Errorf("failed to load custom prompts from files: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.Println("[CONFIG] Configuration loading completed successfully")
	return &config, nil
}

// Validate checks if the configuration is valid. The Gemini key is not
// checked here since deterministic commands run without it.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Server.MaxUploadSize <= 0 {
		return fmt.Errorf("server maxUploadSize must be positive")
	}

	validFormats := make(map[string]bool)
	for _, format := range c.App.SupportedFormats {
		validFormats[format] = true
	}
	if !validFormats[c.App.DefaultFormat] {
		return fmt.Errorf("invalid default format: %s", c.App.DefaultFormat)
	}

	if cb := c.Gemini.CircuitBreaker; cb.Enabled && (cb.FailureThreshold <= 0 || cb.FailureThreshold > 1) {
		return fmt.Errorf("gemini circuitBreaker failureThreshold must be in (0, 1], got %v", cb.FailureThreshold)
	}

	if c.Gemini.RequestsPerMinute < 0 {
		return fmt.Errorf("gemini requestsPerMinute cannot be negative")
	}

	if err := c.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("TLS configuration error: %w", err)
	}

	return nil
}

// RequireGeminiKey fails when no Gemini API key was configured from any source
func (c *Config) RequireGeminiKey() error {
	if strings.TrimSpace(c.Gemini.API.Key) == "" {
		return errors.NewConfigError(errors.ErrCodeMissingAPIKey,
			"Gemini API key is required (set GEMINI_API_KEY or ATSRESUME_GEMINI_API_KEY)", nil)
	}
	return nil
}
