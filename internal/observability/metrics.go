package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Metrics holds the service instruments. A nil *Metrics records nothing.
type Metrics struct {
	// Generator calls
	GenerationDuration metric.Float64Histogram
	GenerationRequests metric.Int64Counter
	GenerationErrors   metric.Int64Counter
	GenerationTokens   metric.Int64Histogram

	// Business
	ResumesScored      metric.Int64Counter
	ResumesEnhanced    metric.Int64Counter
	DocumentsConverted metric.Int64Counter
	CoverLetters       metric.Int64Counter
	ATSScore           metric.Int64Histogram

	// TLS
	CertReloads metric.Int64Counter
}

// TokenUsage is the token accounting reported by the generator
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// NewMetrics creates every instrument on meter
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.GenerationDuration, err = meter.Float64Histogram(
		"atsresume_generation_duration_seconds",
		metric.WithDescription("Time spent waiting on the text generator"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create generation duration metric: %w", err)
	}
	if m.GenerationRequests, err = meter.Int64Counter(
		"atsresume_generation_requests_total",
		metric.WithDescription("Total number of generator requests"),
	); err != nil {
		return nil, fmt.Errorf("failed to create generation request metric: %w", err)
	}
	if m.GenerationErrors, err = meter.Int64Counter(
		"atsresume_generation_errors_total",
		metric.WithDescription("Total number of failed generator requests"),
	); err != nil {
		return nil, fmt.Errorf("failed to create generation error metric: %w", err)
	}
	if m.GenerationTokens, err = meter.Int64Histogram(
		"atsresume_generation_tokens",
		metric.WithDescription("Tokens used per generator request by token type"),
		metric.WithUnit("{token}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create token usage metric: %w", err)
	}

	if m.ResumesScored, err = meter.Int64Counter(
		"atsresume_resumes_scored_total",
		metric.WithDescription("Total number of résumés scored"),
	); err != nil {
		return nil, fmt.Errorf("failed to create resumes scored metric: %w", err)
	}
	if m.ResumesEnhanced, err = meter.Int64Counter(
		"atsresume_resumes_enhanced_total",
		metric.WithDescription("Total number of résumés enhanced"),
	); err != nil {
		return nil, fmt.Errorf("failed to create resumes enhanced metric: %w", err)
	}
	if m.DocumentsConverted, err = meter.Int64Counter(
		"atsresume_documents_converted_total",
		metric.WithDescription("Total number of documents converted to ATS-friendly PDF"),
	); err != nil {
		return nil, fmt.Errorf("failed to create documents converted metric: %w", err)
	}
	if m.CoverLetters, err = meter.Int64Counter(
		"atsresume_cover_letters_total",
		metric.WithDescription("Total number of cover letters generated"),
	); err != nil {
		return nil, fmt.Errorf("failed to create cover letters metric: %w", err)
	}
	if m.ATSScore, err = meter.Int64Histogram(
		"atsresume_ats_score",
		metric.WithDescription("Distribution of overall ATS scores"),
		metric.WithExplicitBucketBoundaries(10, 20, 30, 40, 50, 60, 70, 80, 90, 100),
	); err != nil {
		return nil, fmt.Errorf("failed to create ATS score metric: %w", err)
	}

	if m.CertReloads, err = meter.Int64Counter(
		"atsresume_cert_reloads_total",
		metric.WithDescription("Total number of TLS certificate reloads"),
	); err != nil {
		return nil, fmt.Errorf("failed to create certificate reload metric: %w", err)
	}

	return m, nil
}

// TrackGeneration records one generator call and tags the active span
func (m *Metrics) TrackGeneration(ctx context.Context, operation string, duration time.Duration, usage *TokenUsage, err error) {
	span := oteltrace.SpanFromContext(ctx)
	if usage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", usage.InputTokens),
			attribute.Int64("ai.tokens.output", usage.OutputTokens),
			attribute.Int64("ai.tokens.total", usage.TotalTokens),
		)
	}
	if m == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.Bool("success", err == nil),
	}
	opt := metric.WithAttributes(attrs...)

	m.GenerationDuration.Record(ctx, duration.Seconds(), opt)
	m.GenerationRequests.Add(ctx, 1, opt)
	if err != nil {
		m.GenerationErrors.Add(ctx, 1, opt)
	}
	if usage == nil {
		return
	}

	for _, tokens := range []struct {
		kind  string
		value int64
	}{
		{"input", usage.InputTokens},
		{"output", usage.OutputTokens},
		{"total", usage.TotalTokens},
	} {
		m.GenerationTokens.Record(ctx, tokens.value, metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("token_type", tokens.kind),
		))
	}
}

// RecordScored counts a scored résumé and records its overall score
func (m *Metrics) RecordScored(ctx context.Context, score int, source string) {
	if m == nil {
		return
	}
	opt := metric.WithAttributes(attribute.String("source", source))
	m.ResumesScored.Add(ctx, 1, opt)
	m.ATSScore.Record(ctx, int64(score), opt)
}

// RecordEnhanced counts an enhancement; polished reports whether the generator pass was accepted
func (m *Metrics) RecordEnhanced(ctx context.Context, output string, polished bool) {
	if m == nil {
		return
	}
	m.ResumesEnhanced.Add(ctx, 1, metric.WithAttributes(
		attribute.String("output", output),
		attribute.Bool("polished", polished),
	))
}

// RecordConverted counts a document converted to an ATS-friendly PDF
func (m *Metrics) RecordConverted(ctx context.Context, success bool) {
	if m == nil {
		return
	}
	m.DocumentsConverted.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
}

// RecordCoverLetter counts a cover letter by where its text came from
func (m *Metrics) RecordCoverLetter(ctx context.Context, source string) {
	if m == nil {
		return
	}
	m.CoverLetters.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
}

// RecordCertReload counts a TLS key pair reload attempt
func (m *Metrics) RecordCertReload(ctx context.Context, success bool) {
	if m == nil {
		return
	}
	m.CertReloads.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
}
