package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"atsresume/internal/config"
	"atsresume/internal/errors"
	"atsresume/internal/types"
)

// PolishFallbackMessage is set on the résumé when the generator pass is rejected
const PolishFallbackMessage = "AI enhancement temporarily unavailable. Original resume data used."

// Service runs the generator-backed operations on top of the deterministic results
type Service struct {
	gen     Generator
	prompts config.LoadedPrompts
	guide   Guidance
	logger  *errors.Logger
}

// NewService wires a generator with optional prompt overrides
func NewService(gen Generator, prompts config.LoadedPrompts, guide Guidance, logger *errors.Logger) *Service {
	if logger == nil {
		logger = errors.Discard()
	}
	return &Service{gen: gen, prompts: prompts, guide: guide, logger: logger}
}

// Generator returns the underlying generator
func (s *Service) Generator() Generator {
	return s.gen
}

// PolishInput is a deterministic enhancement and the context it was built from
type PolishInput struct {
	Resume         *types.Resume
	JobDescription string
	Industry       string
	Match          types.MatchResult
}

// Polish asks the generator to rewrite the deterministic model. The answer is
// accepted only when it decodes and keeps the candidate name and the number of
// experience entries; otherwise the input model is returned with
// EnhancementError set.
func (s *Service) Polish(ctx context.Context, in PolishInput) *types.Resume {
	base := in.Resume
	if base == nil {
		base = types.NewResume()
	}

	polished, err := s.polish(ctx, in, base)
	if err != nil {
		s.logger.LogError(err, "AI polish rejected, keeping deterministic result",
			"industry", in.Industry)
		out := base.Clone()
		out.EnhancementError = PolishFallbackMessage
		return out
	}

	s.logger.Debug("AI polish accepted",
		"experience_entries", len(polished.Experience),
		"skill_categories", polished.Skills.Len())
	return polished
}

func (s *Service) polish(ctx context.Context, in PolishInput, base *types.Resume) (*types.Resume, error) {
	if s.gen == nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed, "no generator configured", nil)
	}

	payload, err := json.MarshalIndent(base, "", "  ")
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeInternalError, "failed to encode resume for polish", err)
	}

	system := resolvePrompt(s.prompts.Polish, polishSystemPrompt(s.guide, in.Industry, base.IsFresher))
	user := polishUserPrompt(string(payload), in.JobDescription, in.Match.Matched, in.Match.Missing)

	answer, err := s.gen.GenerateJSON(ctx, system, user)
	if err != nil {
		return nil, err
	}

	var polished types.Resume
	if err := json.Unmarshal([]byte(answer), &polished); err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed, "generator returned invalid resume JSON", err)
	}
	if err := validatePolished(base, &polished); err != nil {
		return nil, err
	}

	// Contact details and the flags computed deterministically are not the
	// generator's to change.
	polished.PersonalInfo = base.Clone().PersonalInfo
	polished.Declaration = base.Declaration
	polished.IsFresher = base.IsFresher
	polished.SuggestedCertifications = base.Clone().SuggestedCertifications
	polished.EnhancementError = base.EnhancementError
	if base.Experience != nil && polished.Experience == nil {
		polished.Experience = []types.ExperienceEntry{}
	}
	if base.Projects != nil && polished.Projects == nil {
		polished.Projects = []types.ProjectEntry{}
	}
	return &polished, nil
}

func validatePolished(base, polished *types.Resume) error {
	want := strings.TrimSpace(base.PersonalInfo.FullName)
	got := strings.TrimSpace(polished.PersonalInfo.FullName)
	if !strings.EqualFold(want, got) {
		return errors.NewValidationError(errors.ErrCodeAIServiceFailed,
			fmt.Sprintf("generator changed the candidate name from %q to %q", want, got), nil)
	}
	if len(base.Experience) != len(polished.Experience) {
		return errors.NewValidationError(errors.ErrCodeAIServiceFailed,
			fmt.Sprintf("generator changed the experience count from %d to %d", len(base.Experience), len(polished.Experience)), nil)
	}
	return nil
}

// Analyze asks the generator for a free-form score. Failures come back as a
// zero score with Error set.
func (s *Service) Analyze(ctx context.Context, resumeText, jobDescription, industry string) types.AIAnalysis {
	analysis, err := s.analyze(ctx, resumeText, jobDescription, industry)
	if err != nil {
		s.logger.LogError(err, "AI analysis failed")
		return types.AIAnalysis{
			OverallScore: 0,
			Strengths:    []string{},
			Improvements: []string{},
			Error:        "AI analysis failed: " + errorMessage(err),
		}
	}
	return analysis
}

func (s *Service) analyze(ctx context.Context, resumeText, jobDescription, industry string) (types.AIAnalysis, error) {
	if s.gen == nil {
		return types.AIAnalysis{}, errors.NewAIError(errors.ErrCodeAIServiceFailed, "no generator configured", nil)
	}

	system := resolvePrompt(s.prompts.Analysis, defaultAnalysisSystemPrompt)
	answer, err := s.gen.GenerateJSON(ctx, system, analysisUserPrompt(resumeText, jobDescription, industry))
	if err != nil {
		return types.AIAnalysis{}, err
	}

	var analysis types.AIAnalysis
	if err := json.Unmarshal([]byte(answer), &analysis); err != nil {
		return types.AIAnalysis{}, errors.NewAIError(errors.ErrCodeAIServiceFailed, "generator returned invalid analysis JSON", err)
	}
	analysis.OverallScore = max(0, min(100, analysis.OverallScore))
	if analysis.Strengths == nil {
		analysis.Strengths = []string{}
	}
	if analysis.Improvements == nil {
		analysis.Improvements = []string{}
	}
	analysis.Error = ""
	return analysis, nil
}

// CoverLetterInput carries the facts extracted for a cover letter
type CoverLetterInput struct {
	ResumeText     string
	JobDescription string
	CandidateName  string
	TargetRole     string
	CompanyName    string
	Skills         []string
	Requirements   []string
}

// CoverLetter asks the generator for a letter. Callers fall back to the
// template letter on error.
func (s *Service) CoverLetter(ctx context.Context, in CoverLetterInput) (string, error) {
	if s.gen == nil {
		return "", errors.NewAIError(errors.ErrCodeAIServiceFailed, "no generator configured", nil)
	}

	system := resolvePrompt(s.prompts.CoverLetter, defaultCoverLetterSystemPrompt)
	text, err := s.gen.Generate(ctx, system, coverLetterUserPrompt(in))
	if err != nil {
		return "", err
	}
	if text = strings.TrimSpace(text); text == "" {
		return "", errors.NewAIError(errors.ErrCodeAIServiceFailed, "generator returned an empty cover letter", nil)
	}
	return text, nil
}

func errorMessage(err error) string {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr.Message
	}
	return err.Error()
}
