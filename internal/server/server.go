// Package server exposes the résumé pipeline over HTTP under /api/v1
package server

import (
	"time"

	"github.com/go-playground/validator/v10"

	"atsresume/internal/config"
	"atsresume/internal/errors"
	"atsresume/internal/observability"
	"atsresume/internal/pipeline"
	"atsresume/internal/types"
)

// TestScoreRequest is the JSON body of the plain-text scoring endpoint
type TestScoreRequest struct {
	ResumeText     string `json:"resumeText" validate:"required"`
	JobDescription string `json:"jobDescription"`
}

// HealthResponse answers GET /health
type HealthResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// EnhanceResponse answers POST /resume/enhance
type EnhanceResponse struct {
	Success         bool                 `json:"success"`
	ATSScore        int                  `json:"atsScore"`
	MatchedKeywords []string             `json:"matchedKeywords"`
	MissingKeywords []string             `json:"missingKeywords"`
	Suggestions     []string             `json:"suggestions"`
	SectionAnalysis types.ScoreBreakdown `json:"sectionAnalysis"`
}

// ATSScoreResponse answers POST /resume/ats-score and /resume/test-score
type ATSScoreResponse struct {
	Success                  bool                 `json:"success"`
	OverallScore             int                  `json:"overallScore"`
	KeywordMatchScore        float64              `json:"keywordMatchScore"`
	FormattingScore          float64              `json:"formattingScore"`
	SectionCompletenessScore float64              `json:"sectionCompletenessScore"`
	SectionBreakdown         types.ScoreBreakdown `json:"sectionBreakdown"`
}

// DataResponse wraps a payload in the success envelope
type DataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// ErrorBody carries the envelope code and a readable message
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every 4xx and 5xx answer
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// TLS Configuration
	TLSConfig config.TLSConfig

	// Certificate management, set when TLS is enabled
	CertificateManager *CertificateManager

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Upload size limit for multipart and JSON bodies
	MaxUploadSize int64

	// Origins allowed to call /api/ from a browser
	CORSOrigins []string

	Pipeline      *pipeline.Pipeline
	Observability *observability.Manager
	Logger        *errors.Logger

	validate *validator.Validate
	now      func() time.Time
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host          string
	Port          string
	Version       string
	TLSConfig     config.TLSConfig
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration
	MaxUploadSize int64
	CORSOrigins   []string
}

// ConfigFromApp picks the server settings out of the application config
func ConfigFromApp(cfg *config.Config, version string) ServerConfig {
	return ServerConfig{
		Host:          cfg.Server.Host,
		Port:          cfg.Server.Port,
		Version:       version,
		TLSConfig:     cfg.Server.TLS,
		ReadTimeout:   cfg.Server.ReadTimeout,
		WriteTimeout:  cfg.Server.WriteTimeout,
		IdleTimeout:   cfg.Server.IdleTimeout,
		MaxUploadSize: cfg.Server.MaxUploadSize,
		CORSOrigins:   cfg.Server.CORSOrigins,
	}
}

// NewServer creates a new Server instance. om may be nil.
func NewServer(p *pipeline.Pipeline, om *observability.Manager, cfg ServerConfig, logger *errors.Logger) *Server {
	if logger == nil {
		logger = errors.Discard()
	}
	maxUpload := cfg.MaxUploadSize
	if maxUpload <= 0 {
		maxUpload = config.DefaultMaxUploadSize
	}

	return &Server{
		Host:          cfg.Host,
		Port:          cfg.Port,
		Version:       cfg.Version,
		TLSConfig:     cfg.TLSConfig,
		ReadTimeout:   cfg.ReadTimeout,
		WriteTimeout:  cfg.WriteTimeout,
		IdleTimeout:   cfg.IdleTimeout,
		MaxUploadSize: maxUpload,
		CORSOrigins:   cfg.CORSOrigins,
		Pipeline:      p,
		Observability: om,
		Logger:        logger,
		validate:      validator.New(),
		now:           time.Now,
	}
}
