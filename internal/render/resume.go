// Package render produces printable PDF documents from the structured résumé
// model and from linearized plain text.
package render

import (
	"bytes"
	"strings"

	"github.com/go-pdf/fpdf"

	"atsresume/internal/errors"
	"atsresume/internal/types"
)

const fontFamily = "Helvetica"

// Renderer turns résumé models and converted text into PDF bytes
type Renderer interface {
	RenderResume(resume *types.Resume) ([]byte, error)
	RenderPlain(text string) ([]byte, error)
}

// PDFRenderer draws with the PDF core fonts only, so output carries no
// embedded font files and every glyph is machine-readable
type PDFRenderer struct {
	settings *Settings
	logger   *errors.Logger
}

func New(settings *Settings, logger *errors.Logger) *PDFRenderer {
	if logger == nil {
		logger = errors.Discard()
	}
	return &PDFRenderer{settings: settings, logger: logger}
}

// Settings returns the settings the renderer was built with
func (r *PDFRenderer) Settings() *Settings {
	return r.settings
}

// resumeDoc carries the drawing state of one document
type resumeDoc struct {
	pdf   *fpdf.Fpdf
	s     *Settings
	tr    func(string) string
	width float64
}

// RenderResume draws the model in the level-dependent section order.
// Empty sections are skipped.
func (r *PDFRenderer) RenderResume(resume *types.Resume) ([]byte, error) {
	s := r.settings
	pdf := fpdf.New("P", "pt", s.Page.Size, "")
	pdf.SetCompression(s.Page.Compress)
	pdf.SetMargins(s.Page.Margins.Left, s.Page.Margins.Top, s.Page.Margins.Right)
	pdf.SetAutoPageBreak(true, s.Page.Margins.Bottom)
	pdf.SetCreator("atsresume", false)
	pdf.SetTitle(resume.PersonalInfo.FullName, true)
	pdf.AddPage()

	pageWidth, _ := pdf.GetPageSize()
	d := &resumeDoc{
		pdf:   pdf,
		s:     s,
		tr:    pdf.UnicodeTranslatorFromDescriptor(""),
		width: pageWidth - s.Page.Margins.Left - s.Page.Margins.Right,
	}
	pdf.SetTextColor(rgb(s.Colors.Text))
	pdf.SetDrawColor(rgb(s.Colors.Line))

	d.header(resume.PersonalInfo)

	order := s.SectionOrder.For(resume.IsFresher)
	for _, section := range order {
		switch section {
		case SectionSummary:
			if strings.TrimSpace(resume.Summary) != "" {
				d.heading(SectionSummary)
				d.paragraph(strings.TrimSpace(resume.Summary), s.FontSizes.BodyText, "J")
			}
		case SectionEducation:
			if len(resume.Education) > 0 && !emptyEducation(resume.Education) {
				d.education(resume.Education)
			}
		case SectionSkills:
			if resume.Skills.Len() > 0 {
				d.skills(resume.Skills)
			}
		case SectionExperience:
			if len(resume.Experience) > 0 {
				d.experience(resume.Experience)
			}
		case SectionProjects:
			if len(resume.Projects) > 0 {
				d.projects(resume.Projects)
			}
		case SectionCertifications:
			if len(resume.Certifications) > 0 {
				d.list(SectionCertifications, resume.Certifications)
			}
		case SectionAchievements:
			if len(resume.Achievements) > 0 {
				d.list(SectionAchievements, resume.Achievements)
			}
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.NewProcessingError(errors.ErrCodeRenderFailed, "Failed to generate resume PDF", err)
	}
	r.logger.Debug("Rendered resume PDF",
		"fresher", resume.IsFresher,
		"sections", strings.Join(order, ","),
		"bytes", buf.Len())
	return buf.Bytes(), nil
}

func emptyEducation(entries []types.EducationEntry) bool {
	for _, e := range entries {
		if e != (types.EducationEntry{}) {
			return false
		}
	}
	return true
}

func (d *resumeDoc) lineHeight(size float64) float64 {
	return size * d.s.Spacing.LineSpacing
}

func (d *resumeDoc) header(info types.PersonalInfo) {
	sizes := d.s.FontSizes
	if name := strings.TrimSpace(info.FullName); name != "" {
		d.pdf.SetFont(fontFamily, "B", sizes.CandidateName)
		d.pdf.CellFormat(0, d.lineHeight(sizes.CandidateName), d.tr(name), "", 1, "C", false, 0, "")
		d.pdf.Ln(d.s.Spacing.AfterCandidateName)
	}

	var parts []string
	for _, v := range []string{info.Email, info.Phone, info.LinkedIn, info.Location, info.Extra["github"], info.Extra["portfolio"]} {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) > 0 {
		d.pdf.SetFont(fontFamily, "", sizes.ContactInfo)
		d.pdf.MultiCell(0, d.lineHeight(sizes.ContactInfo), d.tr(strings.Join(parts, " | ")), "", "C", false)
		d.pdf.Ln(d.s.Spacing.AfterContactInfo)
	}
	d.rule(1)
}

func (d *resumeDoc) rule(width float64) {
	left, _, _, _ := d.pdf.GetMargins()
	y := d.pdf.GetY()
	d.pdf.SetLineWidth(width)
	d.pdf.Line(left, y, left+d.width, y)
	d.pdf.Ln(2)
}

func (d *resumeDoc) heading(section string) {
	d.pdf.Ln(d.s.Spacing.BeforeSectionHeading)
	size := d.s.FontSizes.SectionHeading
	d.pdf.SetFont(fontFamily, "B", size)
	d.pdf.CellFormat(0, d.lineHeight(size), d.tr(strings.ToUpper(d.s.Heading(section))), "", 1, "L", false, 0, "")
	d.rule(0.5)
	d.pdf.Ln(d.s.Spacing.AfterSectionHeading)
}

func (d *resumeDoc) paragraph(text string, size float64, align string) {
	d.pdf.SetFont(fontFamily, "", size)
	d.pdf.MultiCell(0, d.lineHeight(size), d.tr(text), "", align, false)
}

// leftRight draws one row with text on the left and a date on the right
func (d *resumeDoc) leftRight(left string, leftStyle string, leftSize float64, right string) {
	h := d.lineHeight(leftSize)
	rightWidth := d.width * 0.25
	d.pdf.SetFont(fontFamily, leftStyle, leftSize)
	d.pdf.CellFormat(d.width-rightWidth, h, d.tr(left), "", 0, "L", false, 0, "")
	d.pdf.SetFont(fontFamily, "", d.s.FontSizes.DateRange)
	d.pdf.CellFormat(rightWidth, h, d.tr(right), "", 1, "R", false, 0, "")
}

func (d *resumeDoc) bullet(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	size := d.s.FontSizes.BodyText
	left, _, _, _ := d.pdf.GetMargins()
	indent := d.s.Bullets.Indentation

	d.pdf.SetFont(fontFamily, "", size)
	d.pdf.SetX(left + indent)
	marker := d.tr(d.s.Bullets.Symbol) + "  "
	markerWidth := d.pdf.GetStringWidth(marker)
	d.pdf.CellFormat(markerWidth, d.lineHeight(size), marker, "", 0, "L", false, 0, "")
	d.pdf.MultiCell(d.width-indent-markerWidth, d.lineHeight(size), d.tr(text), "", "L", false)
	d.pdf.Ln(d.s.Spacing.BetweenBulletPoints)
}

func (d *resumeDoc) education(entries []types.EducationEntry) {
	d.heading(SectionEducation)
	sizes := d.s.FontSizes
	for i, e := range entries {
		if e.Degree != "" {
			if e.Year != "" {
				d.leftRight(e.Degree, "B", sizes.JobTitle, e.Year)
			} else {
				d.pdf.SetFont(fontFamily, "B", sizes.JobTitle)
				d.pdf.MultiCell(0, d.lineHeight(sizes.JobTitle), d.tr(e.Degree), "", "L", false)
			}
		}
		if e.Institution != "" {
			d.paragraph(e.Institution, sizes.CompanyName, "L")
		}
		if e.Score != "" {
			d.paragraph(e.Score, sizes.BodyText, "L")
		}
		if i < len(entries)-1 {
			d.pdf.Ln(d.s.Spacing.BetweenJobEntries)
		}
	}
}

func (d *resumeDoc) skills(skills types.Skills) {
	d.heading(SectionSkills)
	sizes := d.s.FontSizes
	h := d.lineHeight(sizes.SkillValues)
	for _, entry := range skills.Entries() {
		d.pdf.SetFont(fontFamily, "B", sizes.SkillCategory)
		d.pdf.Write(h, d.tr(entry.Name+": "))
		d.pdf.SetFont(fontFamily, "", sizes.SkillValues)
		d.pdf.Write(h, d.tr(entry.Values))
		d.pdf.Ln(h + 2)
	}
}

func (d *resumeDoc) experience(entries []types.ExperienceEntry) {
	d.heading(SectionExperience)
	sizes := d.s.FontSizes
	for i, job := range entries {
		if job.Title != "" {
			d.pdf.SetFont(fontFamily, "B", sizes.JobTitle)
			d.pdf.MultiCell(0, d.lineHeight(sizes.JobTitle), d.tr(job.Title), "", "L", false)
		}

		company := job.Company
		if job.Location != "" {
			if company != "" {
				company += ", "
			}
			company += job.Location
		}
		if job.Dates != "" {
			d.leftRight(company, "", sizes.CompanyName, job.Dates)
		} else if company != "" {
			d.paragraph(company, sizes.CompanyName, "L")
		}

		for _, b := range job.Bullets {
			d.bullet(b)
		}
		if i < len(entries)-1 {
			d.pdf.Ln(d.s.Spacing.BetweenJobEntries)
		}
	}
}

func (d *resumeDoc) projects(entries []types.ProjectEntry) {
	d.heading(SectionProjects)
	sizes := d.s.FontSizes
	h := d.lineHeight(sizes.ProjectTitle)
	for i, p := range entries {
		d.pdf.SetFont(fontFamily, "B", sizes.ProjectTitle)
		d.pdf.Write(h, d.tr(p.Name))
		if p.TechStack != "" {
			d.pdf.SetFont(fontFamily, "", sizes.BodyText)
			d.pdf.Write(h, d.tr(" | "+p.TechStack))
		}
		d.pdf.Ln(h)

		for _, b := range p.Bullets {
			d.bullet(b)
		}
		if i < len(entries)-1 {
			d.pdf.Ln(d.s.Spacing.BetweenProjectEntries)
		}
	}
}

func (d *resumeDoc) list(section string, items []string) {
	d.heading(section)
	for _, item := range items {
		d.bullet(item)
	}
}
