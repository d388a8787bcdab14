package ai

import (
	"fmt"
	"strings"

	"atsresume/internal/library"
)

// Guidance is the part of the content library the prompts quote
type Guidance interface {
	ActionVerbs(industry string) []string
	BannedBulletStarters() []string
	SummaryStartWith() []string
	RegionalFieldsToStrip() []library.StripField
}

const (
	maxPromptVerbs    = 20
	maxPromptStarters = 6
)

// polishSystemPrompt builds the rewrite rules for one industry and level
func polishSystemPrompt(guide Guidance, industry string, fresher bool) string {
	level := "Experienced (2+ years)"
	order := "Summary, Skills, Experience, Projects, Education, Certifications, Achievements"
	if fresher {
		level = "Fresher (0-2 years)"
		order = "Summary, Education, Skills, Projects, Experience, Certifications, Achievements"
	}

	var sb strings.Builder
	sb.WriteString("You rewrite résumés so applicant tracking systems parse and rank them well.\n\n")

	sb.WriteString("Never fabricate:\n")
	sb.WriteString("- Do not add employers, titles, projects, dates, degrees, certifications or achievements that are not in the input.\n")
	sb.WriteString("- Do not add metrics, percentages or numbers that are not in the input.\n")
	sb.WriteString("- Keep company names, dates, project names and education details exactly as given.\n")
	sb.WriteString("- Keep the same number of experience entries, in the same order, and keep fullName unchanged.\n\n")

	sb.WriteString("You may:\n")
	sb.WriteString("- Rewrite bullets to open with a strong action verb and read clearly.\n")
	sb.WriteString("- Fix grammar and spelling.\n")
	sb.WriteString("- Regroup skills into clear categories. Missing job keywords belong in skills only.\n")
	sb.WriteString("- Tighten the professional summary using the candidate's real background.\n\n")

	fmt.Fprintf(&sb, "Industry: %s\nExperience level: %s\n\n", industry, level)

	sb.WriteString("Summary: two or three sentences under 60 words, no first person.")
	if guide == nil {
		guide = noGuidance{}
	}
	if starters := guide.SummaryStartWith(); len(starters) > 0 {
		fmt.Fprintf(&sb, " Open with one of: %s.", strings.Join(starters[:min(maxPromptStarters, len(starters))], ", "))
	}
	sb.WriteString("\n\n")

	sb.WriteString("Bullets: under 120 characters each, at most five per job and three per project.")
	if verbs := guide.ActionVerbs(industry); len(verbs) > 0 {
		fmt.Fprintf(&sb, " Prefer these verbs: %s.", strings.Join(verbs[:min(maxPromptVerbs, len(verbs))], ", "))
	}
	if banned := guide.BannedBulletStarters(); len(banned) > 0 {
		fmt.Fprintf(&sb, " Never start with: %s.", strings.Join(banned, ", "))
	}
	sb.WriteString("\n\n")

	if fields := guide.RegionalFieldsToStrip(); len(fields) > 0 {
		sb.WriteString("Remove these personal fields:\n")
		for _, f := range fields {
			fmt.Fprintf(&sb, "- %s (%s)\n", f.Field, f.Reason)
		}
		sb.WriteString("Also drop any declaration or objective statement.\n\n")
	}

	fmt.Fprintf(&sb, "Section order when rendered: %s.\n\n", order)

	sb.WriteString("Answer with one JSON object and nothing else, shaped exactly like the input résumé JSON:\n")
	sb.WriteString(`{"personalInfo":{"fullName":"","email":"","phone":"","linkedin":"","location":""},`)
	sb.WriteString(`"summary":"","education":[{"degree":"","institution":"","year":"","score":""}],`)
	sb.WriteString(`"skills":{"Category":"Skill1, Skill2"},`)
	sb.WriteString(`"experience":[{"title":"","company":"","location":"","dates":"","bullets":[""]}],`)
	sb.WriteString(`"projects":[{"name":"","techStack":"","bullets":[""]}],`)
	sb.WriteString(`"certifications":[],"achievements":[]}`)
	sb.WriteString("\n")
	return sb.String()
}

func polishUserPrompt(resumeJSON, jobDescription string, matched, missing []string) string {
	var sb strings.Builder
	sb.WriteString("Polish this résumé for the job below.\n\n")
	sb.WriteString("Résumé JSON:\n-----\n")
	sb.WriteString(resumeJSON)
	sb.WriteString("\n-----\n\nJob description:\n-----\n")
	sb.WriteString(jobDescription)
	sb.WriteString("\n-----\n")
	if len(matched) > 0 {
		fmt.Fprintf(&sb, "\nKeywords already present: %s\n", strings.Join(matched, ", "))
	}
	if len(missing) > 0 {
		fmt.Fprintf(&sb, "Keywords to add to skills: %s\n", strings.Join(missing, ", "))
	}
	return sb.String()
}

const defaultAnalysisSystemPrompt = `You review résumés the way an applicant tracking system and a recruiter would.
Compare the résumé with the job description and judge keyword coverage, section structure, clarity and relevance of experience.
Different résumés must get different scores; never fall back to a generic score.

Answer with one JSON object and nothing else:
{"overallScore": <integer 0-100>, "summary": "<two sentences>", "strengths": ["..."], "improvements": ["..."]}
List at most five strengths and five improvements, each a single concrete sentence.`

func analysisUserPrompt(resumeText, jobDescription, industry string) string {
	return fmt.Sprintf("Industry: %s\n\nRésumé:\n-----\n%s\n-----\n\nJob description:\n-----\n%s\n-----\n",
		industry, resumeText, jobDescription)
}

const defaultCoverLetterSystemPrompt = `You write concise, specific cover letters.
Use only facts from the résumé; never invent employers, skills, numbers or credentials.
Write four short paragraphs: an opening naming the role and company, the most relevant experience,
how the candidate's skills meet the stated requirements, and a closing with a call to action.
Keep it under 350 words. Return plain text only, starting with the greeting and ending with the candidate's name.`

func coverLetterUserPrompt(in CoverLetterInput) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Candidate: %s\nTarget role: %s\nCompany: %s\n", in.CandidateName, in.TargetRole, in.CompanyName)
	if len(in.Skills) > 0 {
		fmt.Fprintf(&sb, "Key skills: %s\n", strings.Join(in.Skills, ", "))
	}
	if len(in.Requirements) > 0 {
		fmt.Fprintf(&sb, "Stated requirements: %s\n", strings.Join(in.Requirements, "; "))
	}
	sb.WriteString("\nRésumé:\n-----\n")
	sb.WriteString(in.ResumeText)
	sb.WriteString("\n-----\n\nJob description:\n-----\n")
	sb.WriteString(in.JobDescription)
	sb.WriteString("\n-----\n")
	return sb.String()
}

// resolvePrompt prefers a prompt loaded from file over the built-in one
func resolvePrompt(loadedFromFile, fromDefault string) string {
	if loadedFromFile != "" {
		return loadedFromFile
	}
	return fromDefault
}

type noGuidance struct{}

func (noGuidance) ActionVerbs(string) []string                { return nil }
func (noGuidance) BannedBulletStarters() []string             { return nil }
func (noGuidance) SummaryStartWith() []string                 { return nil }
func (noGuidance) RegionalFieldsToStrip() []library.StripField { return nil }
