package types

// MatchResult is the outcome of comparing résumé text against a job description
type MatchResult struct {
	Matched         []string `json:"matched"`
	Missing         []string `json:"missing"`
	MatchPercentage float64  `json:"matchPercentage"`
}

// Extracted returns matched followed by missing
func (m MatchResult) Extracted() []string {
	out := make([]string, 0, len(m.Matched)+len(m.Missing))
	out = append(out, m.Matched...)
	return append(out, m.Missing...)
}

// ScoreReport is the deterministic ATS score for one résumé/job pair
type ScoreReport struct {
	OverallScore             int            `json:"overallScore"`
	KeywordMatchScore        float64        `json:"keywordMatchScore"`
	FormattingScore          float64        `json:"formattingScore"`
	SectionCompletenessScore float64        `json:"sectionCompletenessScore"`
	Breakdown                ScoreBreakdown `json:"breakdown"`
}

// ScoreBreakdown explains each axis of the score
type ScoreBreakdown struct {
	Skills              SkillsBreakdown     `json:"skills"`
	Experience          ExperienceBreakdown `json:"experience"`
	Formatting          FormattingBreakdown `json:"formatting"`
	SectionCompleteness SectionBreakdown    `json:"sectionCompleteness"`
}

type SkillsBreakdown struct {
	Score    int      `json:"score"`
	Matched  []string `json:"matched"`
	Missing  []string `json:"missing"`
	Feedback string   `json:"feedback"`
}

type ExperienceBreakdown struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

type FormattingBreakdown struct {
	Score    int      `json:"score"`
	Issues   []string `json:"issues"`
	Feedback string   `json:"feedback"`
}

// SectionBreakdown maps capitalized section names to presence
type SectionBreakdown struct {
	Score    int             `json:"score"`
	Sections map[string]bool `json:"sections"`
	Feedback string          `json:"feedback"`
}

// EnhanceReport is the keyword-level analysis returned by the enhance operation
type EnhanceReport struct {
	ATSScore        int            `json:"atsScore"`
	MatchedKeywords []string       `json:"matchedKeywords"`
	MissingKeywords []string       `json:"missingKeywords"`
	Suggestions     []string       `json:"suggestions"`
	SectionAnalysis ScoreBreakdown `json:"sectionAnalysis"`
	Industry        string         `json:"industry,omitempty"`
	Score           *ScoreReport   `json:"-"`
	Match           *MatchResult   `json:"-"`
}

// CoverLetter is a generated cover letter with the fields it was built from
type CoverLetter struct {
	CoverLetterText string `json:"coverLetterText"`
	CandidateName   string `json:"candidateName"`
	TargetRole      string `json:"targetRole"`
	CompanyName     string `json:"companyName"`
	Source          string `json:"source,omitempty"`
	Error           string `json:"error,omitempty"`
}

// AIAnalysis is the generator's free-form assessment of a résumé
type AIAnalysis struct {
	OverallScore int      `json:"overallScore"`
	Summary      string   `json:"summary"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
	Error        string   `json:"error,omitempty"`
}

// BatchScore is one file's result in a batch scoring run
type BatchScore struct {
	File   string       `json:"file"`
	Report *ScoreReport `json:"report,omitempty"`
	Error  string       `json:"error,omitempty"`
}
