// Package library serves the industry-indexed résumé content: summary
// templates, action verbs, certifications, education tables and the rules
// for phrases that should not appear in a résumé.
package library

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"atsresume/internal/common"
	"atsresume/internal/errors"
)

//go:embed content.json
var defaultDocument []byte

//go:embed content.schema.json
var schemaDocument []byte

// Levels accepted by SummaryTemplates
const (
	LevelFresher     = "fresher"
	LevelExperienced = "experienced"
)

// Kinds accepted by BulletTemplates
const (
	BulletsFresherProjects = "fresher_projects"
	BulletsExperiencedWork = "experienced_work"
)

// VerbGroup is a named set of action verbs for one industry
type VerbGroup struct {
	Name  string
	Verbs []string
}

// StripField is a personal field that should be removed, with the reason
type StripField struct {
	Field  string
	Reason string
}

// Library is read-only after construction. Accessors return copies.
type Library struct {
	summaries      map[string]map[string][]string
	bullets        map[string]map[string][]string
	verbs          map[string][]VerbGroup
	certifications map[string][]string
	degrees        map[string]string
	coursework     map[string][]string
	neverUse       []string
	startWith      []string
	bannedStarters []string
	stripFields    []StripField
}

type document struct {
	SummaryTemplates         map[string]map[string][]string `json:"summaryTemplates"`
	BulletTemplates          map[string]map[string][]string `json:"bulletTemplates"`
	ActionVerbsByIndustry    map[string]json.RawMessage     `json:"actionVerbsByIndustry"`
	CertificationsByIndustry map[string][]string            `json:"certificationsByIndustry"`
	EducationFormats         struct {
		DegreeAbbreviations map[string]string   `json:"degreeAbbreviations"`
		RelevantCoursework  map[string][]string `json:"relevantCoursework"`
	} `json:"educationFormats"`
	SectionContentRules struct {
		Summary struct {
			NeverUse  []string `json:"neverUse"`
			StartWith []string `json:"startWith"`
		} `json:"summary"`
		Experience struct {
			NeverStartWith []string `json:"neverStartWith"`
		} `json:"experience"`
	} `json:"sectionContentRules"`
	IndianResumeSpecifics json.RawMessage `json:"indianResumeSpecifics"`
}

// Default builds the library from the embedded content document
func Default() (*Library, error) {
	return New(defaultDocument)
}

// New validates doc against the content schema and builds a library
func New(doc []byte) (*Library, error) {
	if err := common.ValidateDocument("content library", schemaDocument, doc); err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeCatalogLoadFailed, "invalid content library", err)
	}

	var d document
	if err := json.Unmarshal(doc, &d); err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeCatalogLoadFailed, "cannot parse content library", err)
	}

	lib := &Library{
		summaries:      d.SummaryTemplates,
		bullets:        d.BulletTemplates,
		verbs:          map[string][]VerbGroup{},
		certifications: d.CertificationsByIndustry,
		degrees:        d.EducationFormats.DegreeAbbreviations,
		coursework:     d.EducationFormats.RelevantCoursework,
		neverUse:       d.SectionContentRules.Summary.NeverUse,
		startWith:      d.SectionContentRules.Summary.StartWith,
	}

	for industry, raw := range d.ActionVerbsByIndustry {
		groups, err := common.DecodeOrderedLists(raw)
		if err != nil {
			return nil, errors.NewConfigError(errors.ErrCodeCatalogLoadFailed,
				fmt.Sprintf("cannot read action verbs for %s", industry), err)
		}
		for _, g := range groups {
			lib.verbs[industry] = append(lib.verbs[industry], VerbGroup{Name: g.Key, Verbs: g.Values})
		}
	}

	for _, s := range d.SectionContentRules.Experience.NeverStartWith {
		lib.bannedStarters = append(lib.bannedStarters, strings.ToLower(strings.TrimSpace(s)))
	}

	fields, err := common.DecodeOrderedStrings(d.IndianResumeSpecifics)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeCatalogLoadFailed, "cannot read indianResumeSpecifics", err)
	}
	for _, f := range fields {
		lib.stripFields = append(lib.stripFields, StripField{Field: f.Key, Reason: f.Value})
	}

	return lib, nil
}

// SummaryTemplates returns the templates for an industry and level
func (l *Library) SummaryTemplates(industry, level string) []string {
	return cloneList(l.summaries[industry][level])
}

// BulletTemplates returns the bullet skeletons for an industry and kind
func (l *Library) BulletTemplates(industry, kind string) []string {
	return cloneList(l.bullets[industry][kind])
}

// ActionVerbGroups returns the verb groups of an industry in document order
func (l *Library) ActionVerbGroups(industry string) []VerbGroup {
	groups := l.verbs[industry]
	out := make([]VerbGroup, len(groups))
	for i, g := range groups {
		out[i] = VerbGroup{Name: g.Name, Verbs: slices.Clone(g.Verbs)}
	}
	return out
}

// ActionVerbs flattens the verb groups of an industry in group order
func (l *Library) ActionVerbs(industry string) []string {
	out := []string{}
	for _, g := range l.verbs[industry] {
		out = append(out, g.Verbs...)
	}
	return out
}

func (l *Library) Certifications(industry string) []string {
	return cloneList(l.certifications[industry])
}

// DegreeAbbreviation expands a degree abbreviation, or returns it unchanged
func (l *Library) DegreeAbbreviation(abbr string) string {
	if full, ok := l.degrees[abbr]; ok {
		return full
	}
	return abbr
}

func (l *Library) RelevantCoursework(industry string) []string {
	return cloneList(l.coursework[industry])
}

// SummaryNeverUse lists phrases that must be removed from a summary
func (l *Library) SummaryNeverUse() []string {
	return cloneList(l.neverUse)
}

func (l *Library) SummaryStartWith() []string {
	return cloneList(l.startWith)
}

// BannedBulletStarters lists lowercased phrases a bullet must not open with
func (l *Library) BannedBulletStarters() []string {
	return cloneList(l.bannedStarters)
}

// RegionalFieldsToStrip lists personal fields to remove, in document order
func (l *Library) RegionalFieldsToStrip() []StripField {
	return slices.Clone(l.stripFields)
}

// Industries lists the industries that have summary templates, sorted
func (l *Library) Industries() []string {
	out := make([]string, 0, len(l.summaries))
	for industry := range l.summaries {
		out = append(out, industry)
	}
	slices.Sort(out)
	return out
}

func cloneList(in []string) []string {
	if in == nil {
		return []string{}
	}
	return slices.Clone(in)
}
