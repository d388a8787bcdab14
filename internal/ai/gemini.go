package ai

import (
	"context"
	"crypto/rand"
	stderrors "errors"
	"fmt"
	"math"
	"math/big"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"

	"atsresume/internal/config"
	"atsresume/internal/errors"
	"atsresume/internal/observability"
)

// contentAPI is the slice of genai.Models the generator calls
type contentAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator implements Generator on the Gemini API
type GeminiGenerator struct {
	models  contentAPI
	cfg     config.GeminiConfig
	breaker *CircuitBreaker
	limiter *rate.Limiter
	metrics *observability.Metrics
	logger  *errors.Logger
	backoff func(attempt int) time.Duration
}

var _ Generator = (*GeminiGenerator)(nil)

// NewGeminiGenerator creates a generator for cfg. The API key must be set.
func NewGeminiGenerator(ctx context.Context, cfg config.GeminiConfig, metrics *observability.Metrics, logger *errors.Logger) (*GeminiGenerator, error) {
	if strings.TrimSpace(cfg.API.Key) == "" {
		return nil, errors.NewConfigError(errors.ErrCodeMissingAPIKey, "Gemini API key is required", nil)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.API.Key,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: newHTTPClient(cfg),
	})
	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed, "Failed to create Gemini client", err)
	}

	return newGenerator(client.Models, cfg, metrics, logger), nil
}

func newGenerator(models contentAPI, cfg config.GeminiConfig, metrics *observability.Metrics, logger *errors.Logger) *GeminiGenerator {
	if logger == nil {
		logger = errors.Discard()
	}

	logger.Debug("Initializing Gemini generator",
		"model", cfg.Model,
		"temperature", cfg.Temperature,
		"max_output_tokens", cfg.MaxOutputTokens,
		"max_retries", cfg.MaxRetries,
		"requests_per_minute", cfg.RequestsPerMinute)

	return &GeminiGenerator{
		models:  models,
		cfg:     cfg,
		breaker: NewCircuitBreaker("gemini", cfg.CircuitBreaker, logger),
		limiter: newLimiter(cfg.RequestsPerMinute),
		metrics: metrics,
		logger:  logger,
		backoff: exponentialBackoff,
	}
}

// newHTTPClient applies the connect and response timeouts. net/http has no
// separate upload timeout, so the write budget is folded into the overall deadline.
func newHTTPClient(cfg config.GeminiConfig) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: cfg.ConnectTimeout, KeepAlive: 30 * time.Second}).DialContext
	transport.TLSHandshakeTimeout = cfg.ConnectTimeout
	transport.ResponseHeaderTimeout = cfg.ReadTimeout

	return &http.Client{
		Transport: transport,
		Timeout:   cfg.ConnectTimeout + cfg.WriteTimeout + cfg.ReadTimeout,
	}
}

// newLimiter spreads requestsPerMinute evenly; zero disables throttling
func newLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60), max(1, requestsPerMinute/10))
}

// Generate returns the model's text answer
func (g *GeminiGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	return g.generate(ctx, "generate", system, user, "")
}

// GenerateJSON asks for a JSON answer and trims anything around the object
func (g *GeminiGenerator) GenerateJSON(ctx context.Context, system, user string) (string, error) {
	text, err := g.generate(ctx, "generate_json", system, user, "application/json")
	if err != nil {
		return "", err
	}
	return ExtractJSON(text), nil
}

func (g *GeminiGenerator) generate(ctx context.Context, operation, system, user, mimeType string) (string, error) {
	tracer := otel.Tracer("atsresume.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini."+operation)
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.cfg.Model),
		attribute.Float64("ai.temperature", float64(g.cfg.Temperature)),
		attribute.Int("input.user_length", len(user)),
	)

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			span.RecordError(err)
			return "", errors.NewAIError(errors.ErrCodeAITimeout, "Generator request cancelled while throttled", err)
		}
	}

	temperature := g.cfg.Temperature
	genCfg := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		MaxOutputTokens:  g.cfg.MaxOutputTokens,
		ResponseMIMEType: mimeType,
	}
	if system != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	start := time.Now()
	result, err := g.breaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return g.executeWithRetry(ctx, operation, func() (*genai.GenerateContentResponse, error) {
			return g.models.GenerateContent(ctx, g.cfg.Model, genai.Text(user), genCfg)
		})
	})

	var text string
	if err == nil {
		text = strings.TrimSpace(result.Text())
		if text == "" {
			err = fmt.Errorf("no content in Gemini response")
		}
	}

	g.metrics.TrackGeneration(ctx, operation, time.Since(start), extractTokenUsage(result), err)

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return "", classifyError(err)
	}

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("output.length", len(text)),
	)
	return text, nil
}

// classifyError maps a generation failure to an AppError carrying the
// provider status and body when there is one
func classifyError(err error) error {
	if code, body, ok := apiErrorDetails(err); ok {
		return errors.NewAIError(errors.ErrCodeAIServiceFailed,
			fmt.Sprintf("Gemini API error: %d - %s", code, body), err)
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewAIError(errors.ErrCodeAITimeout, "Gemini API call timed out", err)
	}
	return errors.NewAIError(errors.ErrCodeAIServiceFailed, "Gemini API call failed: "+err.Error(), err)
}

func apiErrorDetails(err error) (int, string, bool) {
	var apiErr genai.APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.Code, apiErr.Message, true
	}
	var apiErrPtr *genai.APIError
	if stderrors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, apiErrPtr.Message, true
	}
	var gErr *googleapi.Error
	if stderrors.As(err, &gErr) {
		return gErr.Code, gErr.Body, true
	}
	return 0, "", false
}

// executeWithRetry runs fn, retrying transient failures with exponential backoff
func (g *GeminiGenerator) executeWithRetry(ctx context.Context, operation string, fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	var lastErr error
	maxRetries := max(g.cfg.MaxRetries, 0)

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			g.logger.Warn("Retrying generator call",
				"operation", operation,
				"attempt", attempt,
				"max_retries", maxRetries,
				"error", lastErr.Error())

			select {
			case <-time.After(g.backoff(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := fn()
		if err == nil {
			if attempt > 0 {
				g.logger.Info("Generator call succeeded after retry",
					"operation", operation,
					"total_attempts", attempt+1)
			}
			return result, nil
		}

		lastErr = err
		if !isRetryableError(err) {
			g.logger.Debug("Error is not retryable, stopping retry attempts",
				"operation", operation,
				"error", err.Error())
			break
		}
	}

	g.logger.LogError(lastErr, "Generator call failed after all retry attempts",
		"operation", operation,
		"max_retries", maxRetries)
	return nil, fmt.Errorf("operation '%s' failed: %w", operation, lastErr)
}

// exponentialBackoff waits 2^(attempt-1) seconds plus up to 10% jitter, capped at 30s
func exponentialBackoff(attempt int) time.Duration {
	baseDelay := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
	jitter := time.Duration(0)
	if jitterMax := int64(float64(baseDelay) * 0.1); jitterMax > 0 {
		if n, err := rand.Int(rand.Reader, big.NewInt(jitterMax)); err == nil {
			jitter = time.Duration(n.Int64())
		}
	}
	return min(baseDelay+jitter, 30*time.Second)
}

// isRetryableError reports whether err is a network failure or a transient provider status
func isRetryableError(err error) bool {
	if err == nil || stderrors.Is(err, context.Canceled) {
		return false
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return true
	}

	if code, _, ok := apiErrorDetails(err); ok {
		switch code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}
	return false
}

// extractTokenUsage reads token counts from the response metadata
func extractTokenUsage(result *genai.GenerateContentResponse) *observability.TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}
	usage := result.UsageMetadata
	return &observability.TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}

// Stats reports the generator model, breaker and throttle state
func (g *GeminiGenerator) Stats() map[string]any {
	stats := map[string]any{
		"provider":       "gemini",
		"model":          g.cfg.Model,
		"circuitBreaker": g.breaker.Stats(),
		"healthy":        g.breaker.IsHealthy(),
	}
	if g.limiter != nil {
		stats["requestsPerMinute"] = g.cfg.RequestsPerMinute
		stats["availableTokens"] = g.limiter.Tokens()
	}
	return stats
}
