package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atsresume/internal/errors"
	"atsresume/internal/pipeline"
)

const resumeText = `Priya Sharma
priya.sharma@example.com
+91 98765 43210

SUMMARY
Data analyst focused on reporting automation.

EXPERIENCE
Data Analyst
Northwind Retail
2019 - Present
- Responsible for weekly sales dashboards in Python and SQL.

EDUCATION
B.Com, Delhi University, 2019

SKILLS
Python, SQL, Microsoft Excel, Tableau
`

const jobDescription = "We are hiring a Senior Data Analyst to join Contoso. You will work with Python, SQL, Tableau, Power BI and Snowflake."

type stubExtractor struct {
	text  string
	err   error
	calls int
}

func (s *stubExtractor) Extract(ctx context.Context, data []byte, filename string) (string, error) {
	s.calls++
	return s.text, s.err
}

func newTestServer(t *testing.T, extractor *stubExtractor, cfg ServerConfig) *Server {
	t.Helper()
	p, err := pipeline.Default(nil, pipeline.WithExtractor(extractor))
	require.NoError(t, err)

	if cfg.MaxUploadSize == 0 {
		cfg.MaxUploadSize = 10 << 20
	}
	s := NewServer(p, nil, cfg, nil)
	s.now = func() time.Time { return time.Date(2024, time.March, 1, 9, 30, 0, 0, time.UTC) }
	return s
}

// multipartRequest builds a POST with an optional résumé file and form fields
func multipartRequest(t *testing.T, path, filename string, file []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		fw, err := mw.CreateFormFile("resume", filename)
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, apiPrefix+path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	return resp
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &stubExtractor{}, ServerConfig{})

	w := serve(s, httptest.NewRequest(http.MethodGet, apiPrefix+"/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "UP", resp.Status)
	assert.Equal(t, healthMessage, resp.Message)
	assert.Equal(t, "2024-03-01T09:30:00.000", resp.Timestamp)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRequestIDIsPropagated(t *testing.T) {
	s := newTestServer(t, &stubExtractor{}, ServerConfig{})
	req := httptest.NewRequest(http.MethodGet, apiPrefix+"/health", nil)
	req.Header.Set("X-Request-ID", "req-123")

	w := serve(s, req)
	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
}

func TestEnhance(t *testing.T) {
	s := newTestServer(t, &stubExtractor{text: resumeText}, ServerConfig{})

	w := serve(s, multipartRequest(t, "/resume/enhance", "resume.pdf", []byte("%PDF"),
		map[string]string{"jobDescription": jobDescription}))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp EnhanceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Contains(t, resp.MatchedKeywords, "Python")
	assert.Contains(t, resp.MissingKeywords, "Snowflake")
	assert.Contains(t, resp.Suggestions, `Add "Snowflake" to your skills or experience section`)
	assert.Equal(t, resp.SectionAnalysis.Skills.Matched, resp.MatchedKeywords)
	assert.GreaterOrEqual(t, resp.ATSScore, 0)
	assert.LessOrEqual(t, resp.ATSScore, 100)
}

func TestUploadValidation(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		filename    string
		fields      map[string]string
		wantCode    string
		wantMessage string
	}{
		{
			name:        "missing resume",
			path:        "/resume/enhance",
			fields:      map[string]string{"jobDescription": jobDescription},
			wantCode:    errors.ErrCodeMissingParameter,
			wantMessage: "Required parameter 'resume' is missing. Please upload a resume file.",
		},
		{
			name:        "missing job description",
			path:        "/resume/enhance-pdf",
			filename:    "resume.pdf",
			wantCode:    errors.ErrCodeMissingParameter,
			wantMessage: "Required parameter 'jobDescription' is missing.",
		},
		{
			name:        "blank job description",
			path:        "/cover-letter/generate",
			filename:    "resume.docx",
			fields:      map[string]string{"jobDescription": "   "},
			wantCode:    errors.ErrCodeMissingParameter,
			wantMessage: "Required parameter 'jobDescription' is missing.",
		},
		{
			name:        "unsupported type",
			path:        "/resume/ats-score",
			filename:    "resume.txt",
			wantCode:    errors.ErrCodeInvalidFileType,
			wantMessage: "Unsupported file type. Only PDF and DOCX files are supported.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extractor := &stubExtractor{text: resumeText}
			s := newTestServer(t, extractor, ServerConfig{})

			w := serve(s, multipartRequest(t, tt.path, tt.filename, []byte("data"), tt.fields))

			require.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.wantMessage, resp.Error.Message)
			assert.Zero(t, extractor.calls, "no extraction on invalid input")
		})
	}
}

func TestNonMultipartRequestIsMissingResume(t *testing.T) {
	s := newTestServer(t, &stubExtractor{}, ServerConfig{})
	req := httptest.NewRequest(http.MethodPost, apiPrefix+"/resume/ats-score", strings.NewReader("x=1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := serve(s, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, errors.ErrCodeMissingParameter, decodeError(t, w).Error.Code)
}

func TestFileTooLarge(t *testing.T) {
	extractor := &stubExtractor{text: resumeText}
	s := newTestServer(t, extractor, ServerConfig{MaxUploadSize: 1024})

	w := serve(s, multipartRequest(t, "/resume/ats-score", "resume.pdf", bytes.Repeat([]byte("a"), 4096), nil))

	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, errors.ErrCodeFileTooLarge, resp.Error.Code)
	assert.Equal(t, "File size exceeds the maximum allowed limit of 1024 bytes.", resp.Error.Message)
	assert.Zero(t, extractor.calls)
}

func TestExtractionFailure(t *testing.T) {
	s := newTestServer(t, &stubExtractor{err: fmt.Errorf("malformed PDF")}, ServerConfig{})

	w := serve(s, multipartRequest(t, "/resume/enhance", "resume.pdf", []byte("%PDF"),
		map[string]string{"jobDescription": jobDescription}))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, errors.ErrCodeProcessingError, resp.Error.Code)
	assert.Equal(t, "Failed to process resume: malformed PDF", resp.Error.Message)
}

func TestATSScoreWithoutJobDescription(t *testing.T) {
	s := newTestServer(t, &stubExtractor{text: resumeText}, ServerConfig{})

	w := serve(s, multipartRequest(t, "/resume/ats-score", "resume.docx", []byte("PK"), nil))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp ATSScoreResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Greater(t, resp.OverallScore, 0)
	assert.NotEmpty(t, resp.SectionBreakdown.SectionCompleteness.Sections)
}

func TestTestScore(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantStatus  int
		wantCode    string
	}{
		{
			name:        "scores plain text",
			contentType: "application/json",
			body:        fmt.Sprintf(`{"resumeText":%q,"jobDescription":%q}`, resumeText, jobDescription),
			wantStatus:  http.StatusOK,
		},
		{
			name:        "charset parameter accepted",
			contentType: "application/json; charset=utf-8",
			body:        fmt.Sprintf(`{"resumeText":%q}`, resumeText),
			wantStatus:  http.StatusOK,
		},
		{
			name:        "blank resume text",
			contentType: "application/json",
			body:        `{"resumeText":"   ","jobDescription":"Go"}`,
			wantStatus:  http.StatusBadRequest,
			wantCode:    errors.ErrCodeMissingParameter,
		},
		{
			name:        "malformed JSON",
			contentType: "application/json",
			body:        `{"resumeText":`,
			wantStatus:  http.StatusBadRequest,
			wantCode:    errors.ErrCodeInvalidRequest,
		},
		{
			name:        "wrong content type",
			contentType: "text/plain",
			body:        "resume",
			wantStatus:  http.StatusBadRequest,
			wantCode:    errors.ErrCodeInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, &stubExtractor{}, ServerConfig{})
			req := httptest.NewRequest(http.MethodPost, apiPrefix+"/resume/test-score", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)

			w := serve(s, req)

			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantCode != "" {
				resp := decodeError(t, w)
				assert.Equal(t, tt.wantCode, resp.Error.Code)
				return
			}
			var resp ATSScoreResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.True(t, resp.Success)
		})
	}
}

func TestTestScoreMessage(t *testing.T) {
	s := newTestServer(t, &stubExtractor{}, ServerConfig{})
	req := httptest.NewRequest(http.MethodPost, apiPrefix+"/resume/test-score", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	w := serve(s, req)
	assert.Equal(t, "resumeText is required", decodeError(t, w).Error.Message)
}

func TestPDFEndpoints(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		filename string
		fields   map[string]string
		wantName string
	}{
		{
			name:     "ats convert",
			path:     "/resume/ats-convert",
			filename: "My Resume.docx",
			wantName: "My Resume_ATS_Friendly.pdf",
		},
		{
			name:     "enhance pdf",
			path:     "/resume/enhance-pdf",
			filename: "resume.pdf",
			fields:   map[string]string{"jobDescription": jobDescription},
			wantName: "Priya_Sharma_Enhanced_Resume.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, &stubExtractor{text: resumeText}, ServerConfig{})

			w := serve(s, multipartRequest(t, tt.path, tt.filename, []byte("data"), tt.fields))

			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
			assert.Equal(t, fmt.Sprintf(`attachment; filename="%s"`, tt.wantName), w.Header().Get("Content-Disposition"))
			assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
		})
	}
}

func TestCoverLetter(t *testing.T) {
	s := newTestServer(t, &stubExtractor{text: resumeText}, ServerConfig{})

	w := serve(s, multipartRequest(t, "/cover-letter/generate", "resume.pdf", []byte("data"),
		map[string]string{"jobDescription": jobDescription}))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			CoverLetterText string `json:"coverLetterText"`
			CandidateName   string `json:"candidateName"`
			TargetRole      string `json:"targetRole"`
			CompanyName     string `json:"companyName"`
			Source          string `json:"source"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Priya Sharma", resp.Data.CandidateName)
	assert.Equal(t, "Contoso", resp.Data.CompanyName)
	assert.Equal(t, "template", resp.Data.Source)
	assert.Contains(t, resp.Data.CoverLetterText, "Priya Sharma")
}

func TestAIAnalysisDisabled(t *testing.T) {
	s := newTestServer(t, &stubExtractor{text: resumeText}, ServerConfig{})

	w := serve(s, multipartRequest(t, "/resume/ai-analysis", "resume.pdf", []byte("data"),
		map[string]string{"jobDescription": jobDescription}))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			OverallScore int    `json:"overallScore"`
			Error        string `json:"error"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Zero(t, resp.Data.OverallScore)
	assert.Equal(t, "AI analysis failed: AI analysis is not enabled", resp.Data.Error)
}

func TestStats(t *testing.T) {
	s := newTestServer(t, &stubExtractor{}, ServerConfig{Version: "1.2.3"})

	w := serve(s, httptest.NewRequest(http.MethodGet, apiPrefix+"/stats", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "1.2.3", resp["version"])
	assert.Equal(t, map[string]any{"configured": false}, resp["generator"])
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, &stubExtractor{}, ServerConfig{})
	w := serve(s, httptest.NewRequest(http.MethodGet, apiPrefix+"/resume/enhance", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, &stubExtractor{}, ServerConfig{CORSOrigins: []string{"http://localhost:5173"}})

	t.Run("preflight from allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, apiPrefix+"/resume/enhance", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", "POST")
		req.Header.Set("Access-Control-Request-Headers", "Content-Type, X-Custom")

		w := serve(s, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type, X-Custom", w.Header().Get("Access-Control-Allow-Headers"))
	})

	t.Run("simple request from allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, apiPrefix+"/health", nil)
		req.Header.Set("Origin", "http://localhost:5173")

		w := serve(s, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown origin gets no headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, apiPrefix+"/health", nil)
		req.Header.Set("Origin", "https://evil.example")

		w := serve(s, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("paths outside the API get no headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		req.Header.Set("Origin", "http://localhost:5173")

		w := serve(s, req)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRecoveryReturnsInternalError(t *testing.T) {
	s := newTestServer(t, &stubExtractor{}, ServerConfig{})
	h := s.withRecovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("nil map write")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, apiPrefix+"/health", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, errors.ErrCodeInternalError, resp.Error.Code)
	assert.Equal(t, internalErrorMessage, resp.Error.Message)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:        "client code passes through",
			err:         errors.NewValidationError(errors.ErrCodeInvalidFileType, "bad type", nil),
			wantStatus:  http.StatusBadRequest,
			wantCode:    errors.ErrCodeInvalidFileType,
			wantMessage: "bad type",
		},
		{
			name:        "internal validation code becomes invalid request",
			err:         errors.NewValidationError(errors.ErrCodeFileNotFound, "no file", nil),
			wantStatus:  http.StatusBadRequest,
			wantCode:    errors.ErrCodeInvalidRequest,
			wantMessage: "no file",
		},
		{
			name:        "processing error keeps message",
			err:         errors.NewProcessingError(errors.ErrCodeRenderFailed, "render failed", nil),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    errors.ErrCodeProcessingError,
			wantMessage: "render failed",
		},
		{
			name:        "internal error is generic",
			err:         errors.NewInternalError(errors.ErrCodeInternalError, "nil pointer", nil),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    errors.ErrCodeInternalError,
			wantMessage: internalErrorMessage,
		},
		{
			name:        "plain error is generic",
			err:         fmt.Errorf("boom"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    errors.ErrCodeInternalError,
			wantMessage: internalErrorMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code, message := classify(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantMessage, message)
		})
	}
}
