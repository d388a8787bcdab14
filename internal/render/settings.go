package render

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"atsresume/internal/errors"
)

//go:embed settings.yaml
var defaultSettings []byte

// Section keys understood by the renderer
const (
	SectionSummary        = "summary"
	SectionEducation      = "education"
	SectionSkills         = "skills"
	SectionProjects       = "projects"
	SectionExperience     = "experience"
	SectionCertifications = "certifications"
	SectionAchievements   = "achievements"
)

type Margins struct {
	Top    float64 `yaml:"top" validate:"gt=0,lt=200"`
	Bottom float64 `yaml:"bottom" validate:"gt=0,lt=200"`
	Left   float64 `yaml:"left" validate:"gt=0,lt=200"`
	Right  float64 `yaml:"right" validate:"gt=0,lt=200"`
}

type PageSettings struct {
	Size     string  `yaml:"size" validate:"required,oneof=A4 Letter"`
	Margins  Margins `yaml:"margins"`
	Compress bool    `yaml:"compress"`
}

type Colors struct {
	Text string `yaml:"text" validate:"required,hexcolor"`
	Line string `yaml:"line" validate:"required,hexcolor"`
}

type FontSizes struct {
	CandidateName  float64 `yaml:"candidateName" validate:"gt=0,lte=48"`
	ContactInfo    float64 `yaml:"contactInfo" validate:"gt=0,lte=48"`
	SectionHeading float64 `yaml:"sectionHeading" validate:"gt=0,lte=48"`
	JobTitle       float64 `yaml:"jobTitle" validate:"gt=0,lte=48"`
	BodyText       float64 `yaml:"bodyText" validate:"gt=0,lte=48"`
	CompanyName    float64 `yaml:"companyName" validate:"gt=0,lte=48"`
	DateRange      float64 `yaml:"dateRange" validate:"gt=0,lte=48"`
	SkillCategory  float64 `yaml:"skillCategory" validate:"gt=0,lte=48"`
	SkillValues    float64 `yaml:"skillValues" validate:"gt=0,lte=48"`
	ProjectTitle   float64 `yaml:"projectTitle" validate:"gt=0,lte=48"`
}

type Spacing struct {
	LineSpacing           float64 `yaml:"lineSpacing" validate:"gte=1,lte=3"`
	AfterCandidateName    float64 `yaml:"afterCandidateName" validate:"gte=0"`
	AfterContactInfo      float64 `yaml:"afterContactInfo" validate:"gte=0"`
	BeforeSectionHeading  float64 `yaml:"beforeSectionHeading" validate:"gte=0"`
	AfterSectionHeading   float64 `yaml:"afterSectionHeading" validate:"gte=0"`
	BetweenBulletPoints   float64 `yaml:"betweenBulletPoints" validate:"gte=0"`
	BetweenJobEntries     float64 `yaml:"betweenJobEntries" validate:"gte=0"`
	BetweenProjectEntries float64 `yaml:"betweenProjectEntries" validate:"gte=0"`
}

// SectionOrder lists every section once per experience level
type SectionOrder struct {
	Fresher     []string `yaml:"fresher" validate:"len=7,unique,dive,oneof=summary education skills projects experience certifications achievements"`
	Experienced []string `yaml:"experienced" validate:"len=7,unique,dive,oneof=summary education skills projects experience certifications achievements"`
}

// For returns the order for the given level
func (o SectionOrder) For(fresher bool) []string {
	if fresher {
		return append([]string(nil), o.Fresher...)
	}
	return append([]string(nil), o.Experienced...)
}

type Bullets struct {
	Symbol      string  `yaml:"symbol" validate:"required"`
	Indentation float64 `yaml:"indentation" validate:"gte=0"`
}

type FileNaming struct {
	Pattern string `yaml:"pattern" validate:"required,endswith=.pdf"`
}

// ConvertSettings drive the plain single-column output of the ATS converter
type ConvertSettings struct {
	PageSize   string  `yaml:"pageSize" validate:"required,oneof=A4 Letter"`
	Margin     float64 `yaml:"margin" validate:"gt=0,lt=200"`
	BodySize   float64 `yaml:"bodySize" validate:"gt=0,lte=48"`
	HeaderSize float64 `yaml:"headerSize" validate:"gt=0,lte=48"`
	Leading    float64 `yaml:"leading" validate:"gt=0"`
}

// Settings is the rendering configuration loaded from settings.yaml
type Settings struct {
	Page         PageSettings      `yaml:"page"`
	Colors       Colors            `yaml:"colors"`
	FontSizes    FontSizes         `yaml:"fontSizes"`
	Spacing      Spacing           `yaml:"spacing"`
	SectionOrder SectionOrder      `yaml:"sectionOrder"`
	Headings     map[string]string `yaml:"sectionHeadings" validate:"required,dive,keys,oneof=summary education skills projects experience certifications achievements,endkeys,required"`
	Bullets      Bullets           `yaml:"bullets"`
	FileNaming   FileNaming        `yaml:"fileNaming"`
	Convert      ConvertSettings   `yaml:"convert"`
}

// Heading returns the printed heading of a section, defaulting to its key in upper case
func (s *Settings) Heading(section string) string {
	if h, ok := s.Headings[section]; ok && h != "" {
		return h
	}
	return strings.ToUpper(section)
}

// DefaultSettings returns the embedded settings
func DefaultSettings() (*Settings, error) {
	return LoadSettings(defaultSettings)
}

// LoadSettings parses and validates a settings document
func LoadSettings(doc []byte) (*Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(doc, &s); err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "Failed to parse render settings", err)
	}
	if err := validator.New().Struct(&s); err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Invalid render settings: %v", err), err)
	}
	return &s, nil
}

// rgb parses a validated #rrggbb or #rgb color
func rgb(hex string) (int, int, int) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return 0, 0, 0
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}
