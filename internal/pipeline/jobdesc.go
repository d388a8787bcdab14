package pipeline

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var htmlTag = regexp.MustCompile(`(?i)</?(?:p|br|div|li|ul|ol|h[1-6]|span|strong|b|em|i|a|table|tr|td|section|article|body|html)\b[^>]*>`)

// NormalizeJobDescription reduces a job description pasted as HTML to plain
// text, one block element per line. Plain text is returned unchanged.
func NormalizeJobDescription(jd string) string {
	if !htmlTag.MatchString(jd) {
		return jd
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(jd))
	if err != nil {
		return jd
	}

	doc.Find("script, style, noscript").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("li").PrependHtml("- ")
	doc.Find("p, div, li, h1, h2, h3, h4, h5, h6, tr, section, article").AppendHtml("\n")

	return cleanWhitespace(doc.Text())
}

func cleanWhitespace(text string) string {
	var cleaned []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
