// Package ai wraps the text generator used to polish résumés, write cover
// letters and produce free-form analyses. Every caller degrades to the
// deterministic result when generation fails.
package ai

import (
	"context"
	"strings"
)

// Generator produces text from a system instruction and a user prompt
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
	GenerateJSON(ctx context.Context, system, user string) (string, error)
}

// ExtractJSON strips a markdown code fence and keeps the text from the first
// '{' through the last '}'. Text without a brace pair is returned trimmed.
func ExtractJSON(response string) string {
	s := strings.TrimSpace(response)
	if rest, ok := strings.CutPrefix(s, "```json"); ok {
		s = rest
	} else if rest, ok := strings.CutPrefix(s, "```"); ok {
		s = rest
	}
	s = strings.TrimSpace(strings.TrimSuffix(s, "```"))

	first := strings.IndexByte(s, '{')
	last := strings.LastIndexByte(s, '}')
	if first >= 0 && last > first {
		s = s[first : last+1]
	}
	return s
}
