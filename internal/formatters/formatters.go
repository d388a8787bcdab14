package formatters

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"

	"atsresume/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "ScoreReport", &ScoreTextFormatter{})
	registry.RegisterFormatter("markdown", "ScoreReport", &ScoreMarkdownFormatter{})
	registry.RegisterFormatter("text", "EnhanceReport", &EnhanceTextFormatter{})
	registry.RegisterFormatter("markdown", "EnhanceReport", &EnhanceMarkdownFormatter{})
	registry.RegisterFormatter("text", "CoverLetter", &CoverLetterFormatter{})
	registry.RegisterFormatter("markdown", "CoverLetter", &CoverLetterFormatter{markdown: true})
	registry.RegisterFormatter("text", "AIAnalysis", &AIAnalysisFormatter{})
	registry.RegisterFormatter("markdown", "AIAnalysis", &AIAnalysisFormatter{markdown: true})
	registry.RegisterFormatter("text", "BatchScore", &BatchFormatter{})
	registry.RegisterFormatter("markdown", "BatchScore", &BatchFormatter{markdown: true})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case *types.ScoreReport:
		return "ScoreReport"
	case *types.EnhanceReport:
		return "EnhanceReport"
	case types.CoverLetter:
		return "CoverLetter"
	case types.AIAnalysis:
		return "AIAnalysis"
	case []types.BatchScore:
		return "BatchScore"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// ScoreTextFormatter handles text formatting for score reports
type ScoreTextFormatter struct{}

func (stf *ScoreTextFormatter) Format(data any) (string, error) {
	report, ok := data.(*types.ScoreReport)
	if !ok {
		return "", fmt.Errorf("expected *ScoreReport, got %T", data)
	}

	var output strings.Builder
	output.WriteString("=== ATS SCORE ===\n")
	fmt.Fprintf(&output, "Overall: %d/100\n", report.OverallScore)
	fmt.Fprintf(&output, "Keyword match: %.1f\n", report.KeywordMatchScore)
	fmt.Fprintf(&output, "Formatting: %.1f\n", report.FormattingScore)
	fmt.Fprintf(&output, "Section completeness: %.1f\n\n", report.SectionCompletenessScore)
	writeBreakdownText(&output, report.Breakdown)
	return output.String(), nil
}

func (stf *ScoreTextFormatter) SupportedType() string {
	return "ScoreReport"
}

// ScoreMarkdownFormatter handles markdown formatting for score reports
type ScoreMarkdownFormatter struct{}

func (smf *ScoreMarkdownFormatter) Format(data any) (string, error) {
	report, ok := data.(*types.ScoreReport)
	if !ok {
		return "", fmt.Errorf("expected *ScoreReport, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# ATS Score\n\n")
	fmt.Fprintf(&output, "**Overall:** %d/100\n\n", report.OverallScore)
	output.WriteString("| Axis | Score |\n|---|---|\n")
	fmt.Fprintf(&output, "| Keyword match | %.1f |\n", report.KeywordMatchScore)
	fmt.Fprintf(&output, "| Formatting | %.1f |\n", report.FormattingScore)
	fmt.Fprintf(&output, "| Section completeness | %.1f |\n\n", report.SectionCompletenessScore)
	writeBreakdownMarkdown(&output, report.Breakdown)
	return output.String(), nil
}

func (smf *ScoreMarkdownFormatter) SupportedType() string {
	return "ScoreReport"
}

// EnhanceTextFormatter handles text formatting for keyword analyses
type EnhanceTextFormatter struct{}

func (etf *EnhanceTextFormatter) Format(data any) (string, error) {
	report, ok := data.(*types.EnhanceReport)
	if !ok {
		return "", fmt.Errorf("expected *EnhanceReport, got %T", data)
	}

	var output strings.Builder
	output.WriteString("=== RESUME ANALYSIS ===\n")
	fmt.Fprintf(&output, "ATS score: %d/100\n", report.ATSScore)
	if report.Industry != "" {
		fmt.Fprintf(&output, "Industry: %s\n", report.Industry)
	}
	output.WriteString("\n")
	fmt.Fprintf(&output, "Matched keywords: %s\n", joinOrNone(report.MatchedKeywords))
	fmt.Fprintf(&output, "Missing keywords: %s\n\n", joinOrNone(report.MissingKeywords))

	output.WriteString("=== SUGGESTIONS ===\n")
	for _, s := range report.Suggestions {
		fmt.Fprintf(&output, "- %s\n", s)
	}
	output.WriteString("\n")
	writeBreakdownText(&output, report.SectionAnalysis)
	return output.String(), nil
}

func (etf *EnhanceTextFormatter) SupportedType() string {
	return "EnhanceReport"
}

// EnhanceMarkdownFormatter handles markdown formatting for keyword analyses
type EnhanceMarkdownFormatter struct{}

func (emf *EnhanceMarkdownFormatter) Format(data any) (string, error) {
	report, ok := data.(*types.EnhanceReport)
	if !ok {
		return "", fmt.Errorf("expected *EnhanceReport, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# Resume Analysis\n\n")
	fmt.Fprintf(&output, "**ATS score:** %d/100\n\n", report.ATSScore)
	if report.Industry != "" {
		fmt.Fprintf(&output, "**Industry:** %s\n\n", report.Industry)
	}
	fmt.Fprintf(&output, "**Matched keywords:** %s\n\n", joinOrNone(report.MatchedKeywords))
	fmt.Fprintf(&output, "**Missing keywords:** %s\n\n", joinOrNone(report.MissingKeywords))

	output.WriteString("## Suggestions\n\n")
	for _, s := range report.Suggestions {
		fmt.Fprintf(&output, "- %s\n", s)
	}
	output.WriteString("\n")
	writeBreakdownMarkdown(&output, report.SectionAnalysis)
	return output.String(), nil
}

func (emf *EnhanceMarkdownFormatter) SupportedType() string {
	return "EnhanceReport"
}

// CoverLetterFormatter prints the letter, with a heading in markdown
type CoverLetterFormatter struct {
	markdown bool
}

func (cf *CoverLetterFormatter) Format(data any) (string, error) {
	letter, ok := data.(types.CoverLetter)
	if !ok {
		return "", fmt.Errorf("expected CoverLetter, got %T", data)
	}

	var output strings.Builder
	if cf.markdown {
		fmt.Fprintf(&output, "# Cover Letter: %s at %s\n\n", letter.TargetRole, letter.CompanyName)
	}
	output.WriteString(letter.CoverLetterText)
	output.WriteString("\n")
	if letter.Error != "" {
		fmt.Fprintf(&output, "\nNote: %s\n", letter.Error)
	}
	return output.String(), nil
}

func (cf *CoverLetterFormatter) SupportedType() string {
	return "CoverLetter"
}

// AIAnalysisFormatter handles generator reviews
type AIAnalysisFormatter struct {
	markdown bool
}

func (af *AIAnalysisFormatter) Format(data any) (string, error) {
	analysis, ok := data.(types.AIAnalysis)
	if !ok {
		return "", fmt.Errorf("expected AIAnalysis, got %T", data)
	}

	heading, sub, bold := "=== AI REVIEW ===\n", "%s:\n", "Score: %d/100\n\n"
	if af.markdown {
		heading, sub, bold = "# AI Review\n\n", "## %s\n\n", "**Score:** %d/100\n\n"
	}

	var output strings.Builder
	output.WriteString(heading)
	if analysis.Error != "" {
		fmt.Fprintf(&output, "%s\n", analysis.Error)
		return output.String(), nil
	}
	fmt.Fprintf(&output, bold, analysis.OverallScore)
	output.WriteString(analysis.Summary)
	output.WriteString("\n\n")

	fmt.Fprintf(&output, sub, "Strengths")
	for _, s := range analysis.Strengths {
		fmt.Fprintf(&output, "- %s\n", s)
	}
	output.WriteString("\n")
	fmt.Fprintf(&output, sub, "Improvements")
	for _, s := range analysis.Improvements {
		fmt.Fprintf(&output, "- %s\n", s)
	}
	return output.String(), nil
}

func (af *AIAnalysisFormatter) SupportedType() string {
	return "AIAnalysis"
}

// BatchFormatter prints one line or table row per scored file
type BatchFormatter struct {
	markdown bool
}

func (bf *BatchFormatter) Format(data any) (string, error) {
	results, ok := data.([]types.BatchScore)
	if !ok {
		return "", fmt.Errorf("expected []BatchScore, got %T", data)
	}

	var output strings.Builder
	if bf.markdown {
		output.WriteString("# Batch ATS Scores\n\n| File | Score | Keywords | Formatting | Sections |\n|---|---|---|---|---|\n")
	} else {
		output.WriteString("=== BATCH ATS SCORES ===\n")
	}

	for _, r := range results {
		switch {
		case r.Error != "" && bf.markdown:
			fmt.Fprintf(&output, "| %s | error: %s | | | |\n", r.File, r.Error)
		case r.Error != "":
			fmt.Fprintf(&output, "%s: error: %s\n", r.File, r.Error)
		case bf.markdown:
			fmt.Fprintf(&output, "| %s | %d | %.1f | %.1f | %.1f |\n", r.File, r.Report.OverallScore,
				r.Report.KeywordMatchScore, r.Report.FormattingScore, r.Report.SectionCompletenessScore)
		default:
			fmt.Fprintf(&output, "%s: %d/100\n", r.File, r.Report.OverallScore)
		}
	}
	return output.String(), nil
}

func (bf *BatchFormatter) SupportedType() string {
	return "BatchScore"
}

func writeBreakdownText(output *strings.Builder, b types.ScoreBreakdown) {
	output.WriteString("=== BREAKDOWN ===\n")
	fmt.Fprintf(output, "Skills (%d): %s\n", b.Skills.Score, b.Skills.Feedback)
	fmt.Fprintf(output, "Experience (%d): %s\n", b.Experience.Score, b.Experience.Feedback)
	fmt.Fprintf(output, "Formatting (%d): %s\n", b.Formatting.Score, b.Formatting.Feedback)
	for _, issue := range b.Formatting.Issues {
		fmt.Fprintf(output, "  - %s\n", issue)
	}
	fmt.Fprintf(output, "Sections (%d): %s\n", b.SectionCompleteness.Score, b.SectionCompleteness.Feedback)
	for _, name := range sortedKeys(b.SectionCompleteness.Sections) {
		mark := "missing"
		if b.SectionCompleteness.Sections[name] {
			mark = "found"
		}
		fmt.Fprintf(output, "  - %s: %s\n", name, mark)
	}
}

func writeBreakdownMarkdown(output *strings.Builder, b types.ScoreBreakdown) {
	output.WriteString("## Breakdown\n\n")
	fmt.Fprintf(output, "- **Skills (%d):** %s\n", b.Skills.Score, b.Skills.Feedback)
	fmt.Fprintf(output, "- **Experience (%d):** %s\n", b.Experience.Score, b.Experience.Feedback)
	fmt.Fprintf(output, "- **Formatting (%d):** %s\n", b.Formatting.Score, b.Formatting.Feedback)
	for _, issue := range b.Formatting.Issues {
		fmt.Fprintf(output, "  - %s\n", issue)
	}
	fmt.Fprintf(output, "- **Sections (%d):** %s\n", b.SectionCompleteness.Score, b.SectionCompleteness.Feedback)
	for _, name := range sortedKeys(b.SectionCompleteness.Sections) {
		mark := "[ ]"
		if b.SectionCompleteness.Sections[name] {
			mark = "[x]"
		}
		fmt.Fprintf(output, "  - %s %s\n", mark, name)
	}
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
