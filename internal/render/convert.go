package render

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/go-pdf/fpdf"

	"atsresume/internal/errors"
)

// headerGroup maps header aliases to the standard heading that replaces them
type headerGroup struct {
	aliases []string
	heading string
}

var headerGroups = []headerGroup{
	{aliases: []string{"summary", "objective", "profile", "about me", "professional summary", "career objective"}, heading: "PROFESSIONAL SUMMARY"},
	{aliases: []string{"experience", "work experience", "employment", "professional experience", "work history"}, heading: "WORK EXPERIENCE"},
	{aliases: []string{"education", "academic", "qualifications", "academic background"}, heading: "EDUCATION"},
	{aliases: []string{"skills", "technical skills", "core competencies", "key skills", "proficiencies"}, heading: "SKILLS"},
	{aliases: []string{"certifications", "certificates", "licenses", "credentials"}, heading: "CERTIFICATIONS"},
	{aliases: []string{"projects", "key projects", "notable projects"}, heading: "PROJECTS"},
	{aliases: []string{"awards", "honors", "achievements", "accomplishments"}, heading: "AWARDS & ACHIEVEMENTS"},
	{aliases: []string{"languages", "language proficiency"}, heading: "LANGUAGES"},
	{aliases: []string{"references"}, heading: "REFERENCES"},
}

var (
	tableRow       = regexp.MustCompile(`\|.*\|.*\|`)
	tabColumns     = regexp.MustCompile(`\t{2,}`)
	columnGap      = regexp.MustCompile(`[ \t]{4,}`)
	decorBullets   = regexp.MustCompile("[•●○▪▫‣⁃]")
	imageMarker    = regexp.MustCompile(`(?i)\[image[^\]]*]`)
	imageTag       = regexp.MustCompile(`(?i)<img[^>]*>`)
	htmlTag        = regexp.MustCompile(`<[^>]+>`)
	repeatedSpaces = regexp.MustCompile(` {2,}`)
	blankRuns      = regexp.MustCompile(`\n{3,}`)
	headerDecor    = regexp.MustCompile(`^[-=_*#:]+|[-=_*#:]+$`)
)

// IsStandardHeading reports whether line is one of the headings NormalizeHeaders emits
func IsStandardHeading(line string) bool {
	for _, g := range headerGroups {
		if line == g.heading {
			return true
		}
	}
	return false
}

// CleanText removes table rows, image references and markup, collapses
// multi-column layouts into one column and swaps decorative bullets for "-".
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = tableRow.ReplaceAllString(text, "")
	text = tabColumns.ReplaceAllString(text, "\n")
	text = splitColumns(text)
	text = decorBullets.ReplaceAllString(text, "-")
	text = imageMarker.ReplaceAllString(text, "")
	text = imageTag.ReplaceAllString(text, "")
	text = htmlTag.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "\t", " ")
	text = repeatedSpaces.ReplaceAllString(text, " ")
	text = blankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// splitColumns breaks a line at a wide gap when the gap is followed by a
// single token and another wide gap, which is how side-by-side columns
// show up in extracted text
func splitColumns(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		gaps := columnGap.FindAllStringIndex(line, -1)
		if len(gaps) < 2 {
			continue
		}
		var b strings.Builder
		last := 0
		for j := 0; j < len(gaps)-1; j++ {
			between := line[gaps[j][1]:gaps[j+1][0]]
			trailing := gaps[j+1][1] < len(line)
			if between == "" || strings.ContainsAny(between, " \t") || !trailing {
				continue
			}
			b.WriteString(line[last:gaps[j][0]])
			b.WriteString("\n")
			last = gaps[j][1]
		}
		b.WriteString(line[last:])
		lines[i] = b.String()
	}
	return strings.Join(lines, "\n")
}

// matchHeading returns the standard heading a line opens, and any text that
// followed an "alias:" prefix on the same line
func matchHeading(line string) (heading, rest string, ok bool) {
	cleaned := strings.TrimSpace(headerDecor.ReplaceAllString(strings.TrimSpace(line), ""))
	if cleaned == "" || len(cleaned) > 50 {
		return "", "", false
	}
	lower := strings.ToLower(cleaned)
	for _, g := range headerGroups {
		for _, alias := range g.aliases {
			if lower == alias {
				return g.heading, "", true
			}
			if strings.HasPrefix(lower, alias+":") {
				return g.heading, strings.TrimSpace(cleaned[len(alias)+1:]), true
			}
		}
	}
	return "", "", false
}

// NormalizeHeaders replaces recognized section header lines with standard
// headings surrounded by blank lines
func NormalizeHeaders(text string) string {
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		heading, rest, ok := matchHeading(line)
		if !ok {
			b.WriteString(line)
			b.WriteString("\n")
			continue
		}
		b.WriteString("\n")
		b.WriteString(heading)
		b.WriteString("\n")
		if rest != "" {
			b.WriteString(rest)
			b.WriteString("\n")
		}
	}
	return strings.TrimSpace(b.String())
}

// Linearize trims every line and keeps at most one blank line between blocks
func Linearize(text string) string {
	var out []string
	blank := false
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			blank = len(out) > 0
			continue
		}
		if blank {
			out = append(out, "")
			blank = false
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// Convert runs the full text pipeline: clean, normalize headers, linearize
func Convert(text string) string {
	return Linearize(NormalizeHeaders(CleanText(text)))
}

// RenderPlain typesets converted text in one column. Standard headings are
// bold and larger. Long lines wrap at the margin.
func (r *PDFRenderer) RenderPlain(text string) ([]byte, error) {
	c := r.settings.Convert
	pdf := fpdf.New("P", "pt", c.PageSize, "")
	pdf.SetCompression(r.settings.Page.Compress)
	pdf.SetMargins(c.Margin, c.Margin, c.Margin)
	pdf.SetAutoPageBreak(true, c.Margin)
	pdf.SetCreator("atsresume", false)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	lines := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			pdf.Ln(c.Leading)
			continue
		}
		if IsStandardHeading(line) {
			pdf.SetFont(fontFamily, "B", c.HeaderSize)
		} else {
			pdf.SetFont(fontFamily, "", c.BodySize)
		}
		pdf.MultiCell(0, c.Leading, tr(line), "", "L", false)
		lines++
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.NewProcessingError(errors.ErrCodeRenderFailed, "Failed to generate ATS-friendly PDF", err)
	}
	r.logger.Debug("Rendered converted PDF", "lines", lines, "pages", pdf.PageCount(), "bytes", buf.Len())
	return buf.Bytes(), nil
}
