package ai

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"

	"atsresume/internal/config"
	"atsresume/internal/errors"
)

type reply struct {
	text string
	err  error
}

// fakeModels answers GenerateContent from a queue of replies
type fakeModels struct {
	replies []reply
	calls   int
	configs []*genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.configs = append(f.configs, cfg)
	r := f.replies[min(f.calls, len(f.replies)-1)]
	f.calls++
	if r.err != nil {
		return nil, r.err
	}
	resp := &genai.GenerateContentResponse{
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     10,
			CandidatesTokenCount: 5,
			TotalTokenCount:      15,
		},
	}
	if r.text != "" {
		resp.Candidates = []*genai.Candidate{{Content: genai.NewContentFromText(r.text, genai.RoleModel)}}
	}
	return resp, nil
}

func testGeminiConfig() config.GeminiConfig {
	return config.GeminiConfig{
		Model:           "gemini-2.0-flash",
		Temperature:     0.4,
		MaxOutputTokens: 2048,
		MaxRetries:      2,
	}
}

func newTestGenerator(models contentAPI, cfg config.GeminiConfig) *GeminiGenerator {
	g := newGenerator(models, cfg, nil, nil)
	g.backoff = func(int) time.Duration { return 0 }
	return g
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{name: "plain object", response: `{"a":1}`, want: `{"a":1}`},
		{name: "json fence", response: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "bare fence", response: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "surrounding prose", response: "Here you go: {\"a\":{\"b\":2}} hope it helps", want: `{"a":{"b":2}}`},
		{name: "no object", response: "  nothing here  ", want: "nothing here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.response))
		})
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "cancelled", err: context.Canceled, want: false},
		{name: "rate limited", err: genai.APIError{Code: http.StatusTooManyRequests}, want: true},
		{name: "unavailable", err: genai.APIError{Code: http.StatusServiceUnavailable}, want: true},
		{name: "bad request", err: genai.APIError{Code: http.StatusBadRequest}, want: false},
		{name: "wrapped gateway timeout", err: fmt.Errorf("call: %w", &googleapi.Error{Code: http.StatusGatewayTimeout}), want: true},
		{name: "plain error", err: fmt.Errorf("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableError(tt.err))
		})
	}
}

func TestGenerateRetriesTransientErrors(t *testing.T) {
	models := &fakeModels{replies: []reply{
		{err: genai.APIError{Code: http.StatusServiceUnavailable, Message: "overloaded"}},
		{err: genai.APIError{Code: http.StatusServiceUnavailable, Message: "overloaded"}},
		{text: "Dear Hiring Manager"},
	}}
	g := newTestGenerator(models, testGeminiConfig())

	text, err := g.Generate(context.Background(), "system", "user")
	require.NoError(t, err)
	assert.Equal(t, "Dear Hiring Manager", text)
	assert.Equal(t, 3, models.calls)
}

func TestGenerateStopsOnPermanentError(t *testing.T) {
	models := &fakeModels{replies: []reply{
		{err: genai.APIError{Code: http.StatusBadRequest, Message: "invalid argument"}},
	}}
	g := newTestGenerator(models, testGeminiConfig())

	_, err := g.Generate(context.Background(), "system", "user")
	require.Error(t, err)
	assert.Equal(t, 1, models.calls)

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeAIServiceFailed, appErr.Code)
	assert.Equal(t, "Gemini API error: 400 - invalid argument", appErr.Message)
}

func TestGenerateGivesUpAfterMaxRetries(t *testing.T) {
	models := &fakeModels{replies: []reply{
		{err: genai.APIError{Code: http.StatusInternalServerError, Message: "internal"}},
	}}
	cfg := testGeminiConfig()
	cfg.MaxRetries = 1
	g := newTestGenerator(models, cfg)

	_, err := g.Generate(context.Background(), "", "user")
	require.Error(t, err)
	assert.Equal(t, 2, models.calls)
}

func TestGenerateEmptyAnswer(t *testing.T) {
	models := &fakeModels{replies: []reply{{}}}
	cfg := testGeminiConfig()
	cfg.MaxRetries = 0
	g := newTestGenerator(models, cfg)

	_, err := g.Generate(context.Background(), "system", "user")
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeAIServiceFailed, appErr.Code)
	assert.Contains(t, appErr.Message, "no content")
}

func TestGenerateTimeout(t *testing.T) {
	models := &fakeModels{replies: []reply{{err: context.DeadlineExceeded}}}
	cfg := testGeminiConfig()
	cfg.MaxRetries = 0
	g := newTestGenerator(models, cfg)

	_, err := g.Generate(context.Background(), "system", "user")
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeAITimeout, appErr.Code)
}

func TestGenerateJSONRequestsJSONAndStripsFence(t *testing.T) {
	models := &fakeModels{replies: []reply{{text: "```json\n{\"overallScore\": 70}\n```"}}}
	g := newTestGenerator(models, testGeminiConfig())

	text, err := g.GenerateJSON(context.Background(), "be strict", "user")
	require.NoError(t, err)
	assert.Equal(t, `{"overallScore": 70}`, text)

	require.Len(t, models.configs, 1)
	cfg := models.configs[0]
	assert.Equal(t, "application/json", cfg.ResponseMIMEType)
	assert.Equal(t, int32(2048), cfg.MaxOutputTokens)
	require.NotNil(t, cfg.Temperature)
	assert.InDelta(t, 0.4, *cfg.Temperature, 0.0001)
	require.NotNil(t, cfg.SystemInstruction)
	require.NotEmpty(t, cfg.SystemInstruction.Parts)
	assert.Equal(t, "be strict", cfg.SystemInstruction.Parts[0].Text)
}

func TestNewGeminiGeneratorRequiresKey(t *testing.T) {
	_, err := NewGeminiGenerator(context.Background(), testGeminiConfig(), nil, nil)
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeMissingAPIKey, appErr.Code)
	assert.Equal(t, errors.ErrorTypeConfig, appErr.Type)
}

func TestGeneratorStats(t *testing.T) {
	cfg := testGeminiConfig()
	cfg.RequestsPerMinute = 60
	cfg.CircuitBreaker = breakerConfig()
	g := newTestGenerator(&fakeModels{replies: []reply{{text: "ok"}}}, cfg)

	stats := g.Stats()
	assert.Equal(t, "gemini", stats["provider"])
	assert.Equal(t, "gemini-2.0-flash", stats["model"])
	assert.Equal(t, true, stats["healthy"])
	assert.Equal(t, 60, stats["requestsPerMinute"])
	assert.Contains(t, stats, "availableTokens")
}

func TestExponentialBackoff(t *testing.T) {
	assert.GreaterOrEqual(t, exponentialBackoff(1), time.Second)
	assert.Less(t, exponentialBackoff(1), 1100*time.Millisecond+time.Millisecond)
	assert.GreaterOrEqual(t, exponentialBackoff(3), 4*time.Second)
	assert.Equal(t, 30*time.Second, exponentialBackoff(10))
}

func TestNewLimiter(t *testing.T) {
	assert.Nil(t, newLimiter(0))
	limiter := newLimiter(120)
	require.NotNil(t, limiter)
	assert.Equal(t, 12, limiter.Burst())
	assert.Equal(t, 1, newLimiter(5).Burst())
}
