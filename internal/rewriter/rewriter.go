// Package rewriter turns a segmented résumé plus job-description context into
// an ATS-optimized model without calling any external service.
package rewriter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"atsresume/internal/errors"
	"atsresume/internal/industry"
	"atsresume/internal/library"
	"atsresume/internal/segmenter"
	"atsresume/internal/types"
)

// Taxonomy resolves a skill to its catalog category
type Taxonomy interface {
	CategoryOf(skill string) (string, bool)
}

// Content is the part of the content library the rewriter consults
type Content interface {
	SummaryTemplates(industry, level string) []string
	ActionVerbs(industry string) []string
	Certifications(industry string) []string
	DegreeAbbreviation(abbr string) string
	SummaryNeverUse() []string
	BannedBulletStarters() []string
	RegionalFieldsToStrip() []library.StripField
}

// FresherYears is the cumulative experience below which a candidate is a fresher
const FresherYears = 2

const maxSuggestedCertifications = 3

// Rewriter is safe for concurrent use; all state lives in the copy it returns
type Rewriter struct {
	taxonomy Taxonomy
	content  Content
	logger   *errors.Logger
	now      func() time.Time
}

// Option configures a Rewriter
type Option func(*Rewriter)

// WithClock overrides the clock used to resolve "present" in date ranges
func WithClock(now func() time.Time) Option {
	return func(r *Rewriter) {
		r.now = now
	}
}

func New(taxonomy Taxonomy, content Content, logger *errors.Logger, opts ...Option) *Rewriter {
	if logger == nil {
		logger = errors.Discard()
	}
	r := &Rewriter{taxonomy: taxonomy, content: content, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// state is threaded through the steps of one Enhance call
type state struct {
	resume   *types.Resume
	match    types.MatchResult
	jd       string
	industry string
	fresher  bool
	years    int
}

type step struct {
	name string
	run  func(*state)
}

// Enhance rewrites a deep copy of model. Steps run in a fixed order; if one
// panics the copy is rolled back to its state before that step and returned
// with EnhancementError set.
func (r *Rewriter) Enhance(model *types.Resume, match types.MatchResult, jobDescription string) *types.Resume {
	if model == nil {
		model = types.NewResume()
	}
	st := &state{
		resume:   model.Clone(),
		match:    match,
		jd:       jobDescription,
		industry: industry.Default,
		fresher:  true,
	}

	steps := []step{
		{name: "detect industry", run: r.detectIndustry},
		{name: "classify experience", run: r.classifyExperience},
		{name: "insert missing keywords", run: r.insertMissingKeywords},
		{name: "enhance summary", run: r.enhanceSummary},
		{name: "repair bullets", run: r.repairBullets},
		{name: "strip personal fields", run: r.stripPersonalFields},
		{name: "ensure sections", run: r.ensureSections},
		{name: "suggest certifications", run: r.suggestCertifications},
	}

	for _, s := range steps {
		snapshot := st.resume.Clone()
		if err := runStep(s, st); err != nil {
			r.logger.LogError(err, "Resume enhancement step failed", "step", s.name)
			st.resume = snapshot
			st.resume.EnhancementError = fmt.Sprintf("Enhancement stopped at %q; partial result returned", s.name)
			break
		}
	}

	st.resume.IsFresher = st.fresher
	r.logger.Debug("Resume enhanced",
		"industry", st.industry,
		"fresher", st.fresher,
		"years", st.years)
	return st.resume
}

func runStep(s step, st *state) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.NewProcessingError(errors.ErrCodeProcessingError,
				fmt.Sprintf("step %q panicked", s.name), fmt.Errorf("%v", p))
		}
	}()
	s.run(st)
	return nil
}

func (r *Rewriter) detectIndustry(st *state) {
	st.industry = industry.Detect(st.jd)
}

func (r *Rewriter) classifyExperience(st *state) {
	st.years = ExperienceYears(st.resume.Experience, r.now().Year())
	st.fresher = len(st.resume.Experience) == 0 || st.years < FresherYears
}

// ExperienceYears sums end minus start over every entry whose dates hold a
// four-digit year range. Open-ended ranges end in currentYear.
func ExperienceYears(entries []types.ExperienceEntry, currentYear int) int {
	total := 0
	for _, e := range entries {
		m := segmenter.YearRange.FindStringSubmatch(e.Dates)
		if m == nil {
			continue
		}
		start, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		end, err := strconv.Atoi(m[2])
		if err != nil {
			end = currentYear
		}
		if end > start {
			total += end - start
		}
	}
	return total
}

func (r *Rewriter) stripPersonalFields(st *state) {
	info := &st.resume.PersonalInfo
	for _, key := range regionalFields {
		info.RemoveField(key)
	}
	for _, field := range r.content.RegionalFieldsToStrip() {
		info.RemoveField(field.Field)
	}
	st.resume.Declaration = ""
}

// regionalFields are always removed, whatever the content library lists
var regionalFields = []string{
	"dateOfBirth", "dob", "date_of_birth",
	"gender", "sex",
	"maritalStatus", "marital_status",
	"fatherName", "father_name", "fathersName",
	"nationality",
	"passportNumber", "passport",
	"photo", "photograph",
	"declaration",
}

func (r *Rewriter) ensureSections(st *state) {
	res := st.resume
	if res.Skills.Len() == 0 && len(st.match.Matched) > 0 {
		res.Skills.Set("Technical Skills", strings.Join(st.match.Matched, ", "))
	}
	if len(res.Experience) == 0 && st.fresher {
		res.Experience = nil
	}
	if len(res.Projects) == 0 {
		res.Projects = nil
	}
	if len(res.Education) == 0 {
		res.Education = []types.EducationEntry{{}}
	}
}

func (r *Rewriter) suggestCertifications(st *state) {
	if len(st.resume.Certifications) > 0 {
		return
	}
	certs := r.content.Certifications(st.industry)
	if len(certs) > maxSuggestedCertifications {
		certs = certs[:maxSuggestedCertifications]
	}
	st.resume.SuggestedCertifications = certs
}
