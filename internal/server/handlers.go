package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"atsresume/internal/ai"
	"atsresume/internal/errors"
	"atsresume/internal/types"
)

const healthMessage = "ATS résumé service is running"

// healthHandler reports liveness
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, HealthResponse{
		Status:    "UP",
		Message:   healthMessage,
		Timestamp: s.now().Format("2006-01-02T15:04:05.000"),
	})
}

// statsHandler reports the generator breaker and throttle state plus server limits
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service":  "atsresume",
		"version":  s.Version,
		"features": s.Pipeline.Features(),
		"server": map[string]any{
			"max_upload_size_bytes": s.MaxUploadSize,
			"tls_enabled":           s.TLSConfig.Enabled,
		},
	}

	generator := map[string]any{"configured": false}
	if svc := s.Pipeline.AI(); svc != nil {
		if stats, ok := svc.Generator().(statsReporter); ok {
			generator = stats.Stats()
			generator["configured"] = true
		}
	}
	response["generator"] = generator

	if s.CertificateManager != nil {
		response["certificates"] = s.CertificateManager.Status()
	}

	writeJSONResponse(w, http.StatusOK, response)
}

// enhanceHandler matches keywords and scores the upload against the job description
func (s *Server) enhanceHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "api.enhance")
	defer span.End()

	upload, err := s.readUpload(ctx, r, true)
	if err != nil {
		s.fail(ctx, w, span, err, "Failed to process resume: ")
		return
	}

	report := s.Pipeline.Analyze(ctx, upload.text, upload.jobDescription)
	span.SetAttributes(attribute.Bool("success", true), attribute.Int("ats.score", report.ATSScore))

	writeJSONResponse(w, http.StatusOK, EnhanceResponse{
		Success:         true,
		ATSScore:        report.ATSScore,
		MatchedKeywords: report.MatchedKeywords,
		MissingKeywords: report.MissingKeywords,
		Suggestions:     report.Suggestions,
		SectionAnalysis: report.SectionAnalysis,
	})
}

// atsScoreHandler scores the upload; the job description is optional
func (s *Server) atsScoreHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "api.ats_score")
	defer span.End()

	upload, err := s.readUpload(ctx, r, false)
	if err != nil {
		s.fail(ctx, w, span, err, "Failed to calculate ATS score: ")
		return
	}

	report := s.Pipeline.Score(ctx, upload.text, upload.jobDescription, "ats-score")
	span.SetAttributes(attribute.Bool("success", true), attribute.Int("ats.score", report.OverallScore))
	writeJSONResponse(w, http.StatusOK, scoreResponse(report))
}

// testScoreHandler scores plain text sent as JSON
func (s *Server) testScoreHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "api.test_score")
	defer span.End()

	var req TestScoreRequest
	if err := parseJSONRequest(r, &req); err != nil {
		s.fail(ctx, w, span, err, "Test score failed: ")
		return
	}
	req.ResumeText = strings.TrimSpace(req.ResumeText)
	if err := s.validate.Struct(req); err != nil {
		s.fail(ctx, w, span, errors.NewValidationError(errors.ErrCodeMissingParameter, "resumeText is required", err), "")
		return
	}

	report := s.Pipeline.Score(ctx, req.ResumeText, req.JobDescription, "test-score")
	span.SetAttributes(attribute.Bool("success", true), attribute.Int("ats.score", report.OverallScore))
	writeJSONResponse(w, http.StatusOK, scoreResponse(report))
}

// atsConvertHandler returns a single-column PDF of the upload
func (s *Server) atsConvertHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "api.ats_convert")
	defer span.End()

	upload, err := s.readUpload(ctx, r, false)
	if err != nil {
		s.fail(ctx, w, span, err, "Failed to convert resume: ")
		return
	}

	pdf, name, err := s.Pipeline.Convert(ctx, upload.text, upload.filename)
	if err != nil {
		s.fail(ctx, w, span, err, "Failed to convert resume: ")
		return
	}
	span.SetAttributes(attribute.Bool("success", true), attribute.Int("pdf.bytes", len(pdf)))
	writePDFResponse(w, pdf, name)
}

// enhancePDFHandler rewrites the upload for the job and returns it as a PDF
func (s *Server) enhancePDFHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "api.enhance_pdf")
	defer span.End()

	upload, err := s.readUpload(ctx, r, true)
	if err != nil {
		s.fail(ctx, w, span, err, "Failed to enhance resume: ")
		return
	}

	pdf, name, err := s.Pipeline.EnhancePDF(ctx, upload.text, upload.jobDescription)
	if err != nil {
		s.fail(ctx, w, span, err, "Failed to enhance resume: ")
		return
	}
	span.SetAttributes(attribute.Bool("success", true), attribute.Int("pdf.bytes", len(pdf)))
	writePDFResponse(w, pdf, name)
}

// coverLetterHandler writes a cover letter, through the generator when the feature is on
func (s *Server) coverLetterHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "api.cover_letter")
	defer span.End()

	upload, err := s.readUpload(ctx, r, true)
	if err != nil {
		s.fail(ctx, w, span, err, "Failed to generate cover letter: ")
		return
	}

	letter := s.Pipeline.CoverLetter(ctx, upload.text, upload.jobDescription, s.Pipeline.Features().AICoverLetter)
	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.String("cover_letter.source", letter.Source),
		attribute.Bool("degraded", letter.Error != ""),
	)
	writeJSONResponse(w, http.StatusOK, DataResponse{Success: true, Data: letter})
}

// aiAnalysisHandler asks the generator to review the upload. Generator
// failures come back as a zero score with an error, not as a 5xx.
func (s *Server) aiAnalysisHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "api.ai_analysis")
	defer span.End()

	upload, err := s.readUpload(ctx, r, true)
	if err != nil {
		s.fail(ctx, w, span, err, "Failed to analyze resume: ")
		return
	}

	var analysis types.AIAnalysis
	if s.Pipeline.Features().AIAnalysis {
		analysis = s.Pipeline.AIAnalysis(ctx, upload.text, upload.jobDescription)
	} else {
		analysis = types.AIAnalysis{
			Strengths:    []string{},
			Improvements: []string{},
			Error:        "AI analysis failed: AI analysis is not enabled",
		}
	}

	span.SetAttributes(
		attribute.Bool("success", analysis.Error == ""),
		attribute.Int("ai.score", analysis.OverallScore),
	)
	writeJSONResponse(w, http.StatusOK, DataResponse{Success: true, Data: analysis})
}

func (s *Server) startSpan(r *http.Request, name string) (context.Context, trace.Span) {
	return s.Observability.Tracer("atsresume.api").Start(r.Context(), name)
}

// fail records err on the span, logs it and writes the envelope.
// prefix is put in front of processing error messages.
func (s *Server) fail(ctx context.Context, w http.ResponseWriter, span trace.Span, err error, prefix string) {
	span.RecordError(err)
	span.SetAttributes(attribute.Bool("success", false))

	status, code, message := classify(err)
	if code == errors.ErrCodeProcessingError {
		message = prefix + message
	}
	span.SetAttributes(attribute.String("error.type", errorType(err)), attribute.String("error.code", code))

	logger := requestLogger(ctx, s.Logger)
	if status >= http.StatusInternalServerError {
		logger.LogError(err, "Request failed", "code", code)
	} else {
		logger.Debug("Request rejected", "code", code, "message", message)
	}
	writeErrorResponse(w, code, message, status)
}

const internalErrorMessage = "An unexpected error occurred. Please try again."

// classify maps an error to its HTTP status, envelope code and client message
func classify(err error) (int, string, string) {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		return http.StatusInternalServerError, errors.ErrCodeInternalError, internalErrorMessage
	}

	switch appErr.Type {
	case errors.ErrorTypeValidation:
		code := appErr.Code
		if !isClientCode(code) {
			code = errors.ErrCodeInvalidRequest
		}
		return http.StatusBadRequest, code, appErr.Message
	case errors.ErrorTypeInternal, errors.ErrorTypeConfig:
		return http.StatusInternalServerError, errors.ErrCodeInternalError, internalErrorMessage
	default:
		return http.StatusInternalServerError, errors.ErrCodeProcessingError, appErr.Message
	}
}

func isClientCode(code string) bool {
	switch code {
	case errors.ErrCodeMissingParameter,
		errors.ErrCodeInvalidFileType,
		errors.ErrCodeFileTooLarge,
		errors.ErrCodeInvalidRequest:
		return true
	}
	return false
}

func errorType(err error) string {
	if appErr, ok := errors.AsAppError(err); ok {
		return string(appErr.Type)
	}
	return "unknown"
}

func scoreResponse(report *types.ScoreReport) ATSScoreResponse {
	return ATSScoreResponse{
		Success:                  true,
		OverallScore:             report.OverallScore,
		KeywordMatchScore:        report.KeywordMatchScore,
		FormattingScore:          report.FormattingScore,
		SectionCompletenessScore: report.SectionCompletenessScore,
		SectionBreakdown:         report.Breakdown,
	}
}

// statsReporter is implemented by generators that expose breaker and throttle state
type statsReporter interface {
	Stats() map[string]any
}

var _ statsReporter = (*ai.GeminiGenerator)(nil)

func missingParameter(name, hint string) error {
	return errors.NewValidationError(errors.ErrCodeMissingParameter,
		strings.TrimSpace(fmt.Sprintf("Required parameter '%s' is missing. %s", name, hint)), nil)
}
