package server

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"atsresume/internal/errors"
)

const apiPrefix = "/api/v1"

// route describes one endpoint for registration and the startup listing
type route struct {
	method      string
	path        string
	description string
	handler     http.HandlerFunc
}

func (s *Server) routes() []route {
	return []route{
		{http.MethodGet, "/health", "Health check", s.healthHandler},
		{http.MethodGet, "/stats", "Generator and server statistics", s.statsHandler},
		{http.MethodPost, "/resume/enhance", "Keyword analysis and suggestions", s.uploadLimit(s.enhanceHandler)},
		{http.MethodPost, "/resume/ats-score", "ATS score breakdown", s.uploadLimit(s.atsScoreHandler)},
		{http.MethodPost, "/resume/ats-convert", "ATS-friendly PDF of the upload", s.uploadLimit(s.atsConvertHandler)},
		{http.MethodPost, "/resume/enhance-pdf", "Rewritten résumé as PDF", s.uploadLimit(s.enhancePDFHandler)},
		{http.MethodPost, "/resume/test-score", "ATS score for plain text", s.uploadLimit(s.testScoreHandler)},
		{http.MethodPost, "/resume/ai-analysis", "Generator review of the résumé", s.uploadLimit(s.aiAnalysisHandler)},
		{http.MethodPost, "/cover-letter/generate", "Cover letter", s.uploadLimit(s.coverLetterHandler)},
	}
}

// setupRoutes registers every endpoint under the API prefix
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()
	for _, rt := range s.routes() {
		mux.HandleFunc(rt.method+" "+apiPrefix+rt.path, rt.handler)
	}
	return mux
}

// Handler returns the full middleware chain around the routes
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.setupRoutes()
	h = s.withCORS(h)
	h = s.withRecovery(h)
	h = s.withRequestLogging(h)
	return s.Observability.HTTPMiddleware()(h)
}

// uploadLimit caps the request body before any handler reads it
func (s *Server) uploadLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.MaxUploadSize > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, s.MaxUploadSize)
		}
		next(w, r)
	}
}

// withCORS answers preflight requests and sets CORS headers on /api/ for allowed origins
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if !strings.HasPrefix(r.URL.Path, "/api/") || origin == "" || !s.originAllowed(origin) {
			next.ServeHTTP(w, r)
			return
		}

		h := w.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Add("Vary", "Origin")
		if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
			h.Set("Access-Control-Allow-Headers", reqHeaders)
		} else {
			h.Set("Access-Control-Allow-Headers", "*")
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) originAllowed(origin string) bool {
	return slices.Contains(s.CORSOrigins, "*") || slices.Contains(s.CORSOrigins, origin)
}

// withRecovery turns a handler panic into an INTERNAL_ERROR response
func (s *Server) withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				err := errors.NewInternalError(errors.ErrCodeInternalError, "handler panic", fmt.Errorf("%v", rec))
				requestLogger(r.Context(), s.Logger).LogError(err, "Recovered from panic",
					"method", r.Method,
					"path", r.URL.Path)
				writeErrorResponse(w, errors.ErrCodeInternalError, internalErrorMessage, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// withRequestLogging tags each request with an ID and logs its outcome
func (s *Server) withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		logger := s.Logger.With("request_id", requestID)
		ctx := context.WithValue(r.Context(), loggerKey{}, logger)

		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r.WithContext(ctx))

		logger.Info("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapper.statusCode,
			"duration", time.Since(start))
	})
}

type loggerKey struct{}

// requestLogger returns the request-scoped logger, or fallback
func requestLogger(ctx context.Context, fallback *errors.Logger) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*errors.Logger); ok {
		return logger
	}
	return fallback
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer
func (rw *responseWrapper) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
