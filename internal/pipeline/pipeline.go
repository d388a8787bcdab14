// Package pipeline runs the résumé flows end to end: extract, segment,
// match, score, rewrite and render, plus the cover letter and the optional
// generator passes. Each call is sequential and shares no state with others.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"atsresume/internal/ai"
	"atsresume/internal/catalog"
	"atsresume/internal/config"
	"atsresume/internal/coverletter"
	"atsresume/internal/errors"
	"atsresume/internal/extract"
	"atsresume/internal/industry"
	"atsresume/internal/library"
	"atsresume/internal/matcher"
	"atsresume/internal/observability"
	"atsresume/internal/render"
	"atsresume/internal/rewriter"
	"atsresume/internal/scorer"
	"atsresume/internal/segmenter"
	"atsresume/internal/types"
)

const (
	// SourceGenerator marks a cover letter written by the generator
	SourceGenerator = "generator"

	aiNotConfigured = "AI generator is not configured"
)

// Pipeline wires the core components. It is safe for concurrent use.
type Pipeline struct {
	extractor extract.TextExtractor
	segmenter *segmenter.Segmenter
	matcher   *matcher.Matcher
	scorer    *scorer.Scorer
	rewriter  *rewriter.Rewriter
	renderer  render.Renderer
	letters   *coverletter.Writer
	ai        *ai.Service
	features  config.FeaturesConfig
	metrics   *observability.Metrics
	logger    *errors.Logger
	tracer    trace.Tracer
}

type options struct {
	extractor extract.TextExtractor
	ai        *ai.Service
	features  config.FeaturesConfig
	metrics   *observability.Metrics
	now       func() time.Time
}

// Option configures a Pipeline
type Option func(*options)

// WithExtractor replaces the PDF/DOCX extractor
func WithExtractor(e extract.TextExtractor) Option {
	return func(o *options) { o.extractor = e }
}

// WithAI enables the generator passes switched on in features
func WithAI(svc *ai.Service, features config.FeaturesConfig) Option {
	return func(o *options) {
		o.ai = svc
		o.features = features
	}
}

// WithMetrics records business metrics
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithClock fixes "today" for date ranges and letter dates
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New builds a pipeline on a loaded catalog and content library
func New(cat *catalog.Catalog, lib *library.Library, renderer render.Renderer, logger *errors.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = errors.Discard()
	}
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.extractor == nil {
		o.extractor = extract.New(logger)
	}

	m := matcher.New(cat)
	return &Pipeline{
		extractor: o.extractor,
		segmenter: segmenter.New(cat, logger),
		matcher:   m,
		scorer:    scorer.New(m, cat),
		rewriter:  rewriter.New(cat, lib, logger, rewriter.WithClock(o.now)),
		renderer:  renderer,
		letters:   coverletter.New(m, coverletter.WithClock(o.now)),
		ai:        o.ai,
		features:  o.features,
		metrics:   o.metrics,
		logger:    logger,
		tracer:    otel.Tracer("atsresume.pipeline"),
	}
}

// Default loads the embedded catalog, library and render settings. A load
// failure is fatal for the caller.
func Default(logger *errors.Logger, opts ...Option) (*Pipeline, error) {
	cat, err := catalog.Default()
	if err != nil {
		return nil, err
	}
	lib, err := library.Default()
	if err != nil {
		return nil, err
	}
	settings, err := render.DefaultSettings()
	if err != nil {
		return nil, err
	}
	return New(cat, lib, render.New(settings, logger), logger, opts...), nil
}

// Features reports which generator passes are active
func (p *Pipeline) Features() config.FeaturesConfig {
	if p.ai == nil {
		return config.FeaturesConfig{}
	}
	return p.features
}

// AI returns the generator service, or nil
func (p *Pipeline) AI() *ai.Service {
	return p.ai
}

// ExtractText reads an uploaded document. Unsupported types are validation
// errors; any other failure is a processing error carrying the extractor message.
func (p *Pipeline) ExtractText(ctx context.Context, data []byte, filename string) (string, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.extract")
	defer span.End()
	span.SetAttributes(attribute.String("file.name", filename), attribute.Int("file.size", len(data)))

	text, err := p.extractor.Extract(ctx, data, filename)
	if err != nil {
		span.RecordError(err)
		if _, ok := errors.AsAppError(err); ok {
			return "", err
		}
		return "", errors.NewProcessingError(errors.ErrCodeProcessingError, err.Error(), err)
	}
	return text, nil
}

// Score computes the deterministic ATS score. source tags the metric.
func (p *Pipeline) Score(ctx context.Context, resumeText, jobDescription, source string) *types.ScoreReport {
	ctx, span := p.tracer.Start(ctx, "pipeline.score")
	defer span.End()

	report := p.scorer.Score(resumeText, NormalizeJobDescription(jobDescription))
	span.SetAttributes(attribute.Int("ats.score", report.OverallScore))
	p.metrics.RecordScored(ctx, report.OverallScore, source)
	return report
}

// Analyze matches keywords, scores, and lists suggestions for the missing keywords
func (p *Pipeline) Analyze(ctx context.Context, resumeText, jobDescription string) *types.EnhanceReport {
	ctx, span := p.tracer.Start(ctx, "pipeline.analyze")
	defer span.End()

	jd := NormalizeJobDescription(jobDescription)
	match := p.matcher.Match(resumeText, jd)
	score := p.scorer.ScoreWithMatch(resumeText, match)
	p.metrics.RecordScored(ctx, score.OverallScore, "enhance")

	span.SetAttributes(
		attribute.Int("ats.score", score.OverallScore),
		attribute.Int("keywords.matched", len(match.Matched)),
		attribute.Int("keywords.missing", len(match.Missing)),
	)

	return &types.EnhanceReport{
		ATSScore:        score.OverallScore,
		MatchedKeywords: match.Matched,
		MissingKeywords: match.Missing,
		Suggestions:     Suggestions(match.Missing),
		SectionAnalysis: score.Breakdown,
		Industry:        industry.Detect(jd),
		Score:           score,
		Match:           &match,
	}
}

// Suggestions turns missing keywords into advice lines
func Suggestions(missing []string) []string {
	if len(missing) == 0 {
		return []string{"Your resume has excellent keyword alignment with the job description"}
	}
	out := make([]string, 0, len(missing)+1)
	for _, kw := range missing {
		out = append(out, fmt.Sprintf("Add %q to your skills or experience section", kw))
	}
	if len(missing) > 3 {
		out = append(out, "Consider tailoring your resume more closely to this specific job description")
	}
	return out
}

// Rewrite segments the text and runs the deterministic rewrite. With polish
// set and a generator configured, the result then goes through the
// generator pass, which keeps the deterministic model when it fails.
func (p *Pipeline) Rewrite(ctx context.Context, resumeText, jobDescription string, polish bool) *types.Resume {
	ctx, span := p.tracer.Start(ctx, "pipeline.rewrite")
	defer span.End()

	jd := NormalizeJobDescription(jobDescription)
	model := p.segmenter.Parse(resumeText)
	match := p.matcher.Match(resumeText, jd)
	enhanced := p.rewriter.Enhance(model, match, jd)

	if polish && p.ai != nil {
		enhanced = p.ai.Polish(ctx, ai.PolishInput{
			Resume:         enhanced,
			JobDescription: jd,
			Industry:       industry.Detect(jd),
			Match:          match,
		})
	}

	span.SetAttributes(
		attribute.Bool("resume.fresher", enhanced.IsFresher),
		attribute.Bool("resume.degraded", enhanced.EnhancementError != ""),
	)
	if enhanced.EnhancementError != "" {
		p.logger.Warn("Résumé enhanced with degraded result", "reason", enhanced.EnhancementError)
	}
	return enhanced
}

// Parse segments résumé text without rewriting it
func (p *Pipeline) Parse(resumeText string) *types.Resume {
	return p.segmenter.Parse(resumeText)
}

// EnhancePDF rewrites the résumé and renders it. The file name comes from
// the candidate's full name.
func (p *Pipeline) EnhancePDF(ctx context.Context, resumeText, jobDescription string) ([]byte, string, error) {
	polish := p.Features().AIPolish
	enhanced := p.Rewrite(ctx, resumeText, jobDescription, polish)

	pdf, err := p.RenderResume(ctx, enhanced)
	if err != nil {
		return nil, "", err
	}
	p.metrics.RecordEnhanced(ctx, "pdf", polish && enhanced.EnhancementError == "")
	return pdf, render.EnhancedFileName(enhanced.PersonalInfo.FullName), nil
}

// RenderResume draws an already enhanced model
func (p *Pipeline) RenderResume(ctx context.Context, resume *types.Resume) ([]byte, error) {
	_, span := p.tracer.Start(ctx, "pipeline.render")
	defer span.End()

	pdf, err := p.renderer.RenderResume(resume)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("pdf.bytes", len(pdf)))
	return pdf, nil
}

// Convert cleans and linearizes résumé text and renders it as a single
// column PDF named after the upload
func (p *Pipeline) Convert(ctx context.Context, resumeText, originalName string) ([]byte, string, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.convert")
	defer span.End()

	pdf, err := p.renderer.RenderPlain(render.Convert(resumeText))
	p.metrics.RecordConverted(ctx, err == nil)
	if err != nil {
		span.RecordError(err)
		return nil, "", err
	}
	return pdf, render.ConvertedFileName(originalName), nil
}

// CoverLetter writes a cover letter. With useAI set and a generator
// configured the generator writes it; on failure the template letter is
// returned with Error set.
func (p *Pipeline) CoverLetter(ctx context.Context, resumeText, jobDescription string, useAI bool) types.CoverLetter {
	ctx, span := p.tracer.Start(ctx, "pipeline.cover_letter")
	defer span.End()

	jd := NormalizeJobDescription(jobDescription)
	facts := p.letters.Facts(resumeText, jd)
	letter := types.CoverLetter{
		CandidateName: facts.CandidateName,
		TargetRole:    facts.TargetRole,
		CompanyName:   facts.CompanyName,
	}

	if useAI && p.ai != nil {
		text, err := p.ai.CoverLetter(ctx, ai.CoverLetterInput{
			ResumeText:     resumeText,
			JobDescription: jd,
			CandidateName:  facts.CandidateName,
			TargetRole:     facts.TargetRole,
			CompanyName:    facts.CompanyName,
			Skills:         facts.Skills,
			Requirements:   facts.Requirements,
		})
		if err == nil {
			letter.CoverLetterText = text
			letter.Source = SourceGenerator
			p.metrics.RecordCoverLetter(ctx, letter.Source)
			return letter
		}
		p.logger.LogError(err, "AI cover letter failed, using template")
		letter.Error = "AI cover letter generation failed: " + errorMessage(err)
	}

	letter.CoverLetterText = p.letters.Write(facts)
	letter.Source = coverletter.SourceTemplate
	span.SetAttributes(attribute.String("cover_letter.source", letter.Source))
	p.metrics.RecordCoverLetter(ctx, letter.Source)
	return letter
}

// AIAnalysis asks the generator for a free-form score. Without a generator
// the result is a zero score with Error set.
func (p *Pipeline) AIAnalysis(ctx context.Context, resumeText, jobDescription string) types.AIAnalysis {
	if p.ai == nil {
		return types.AIAnalysis{
			Strengths:    []string{},
			Improvements: []string{},
			Error:        "AI analysis failed: " + aiNotConfigured,
		}
	}
	jd := NormalizeJobDescription(jobDescription)
	return p.ai.Analyze(ctx, resumeText, jd, industry.Detect(jd))
}

func errorMessage(err error) string {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr.Message
	}
	return err.Error()
}
