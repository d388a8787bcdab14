package matcher

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atsresume/internal/catalog"
)

func newMatcher(t *testing.T) *Matcher {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	return New(c)
}

func TestMatchResolvesSynonyms(t *testing.T) {
	m := newMatcher(t)

	result := m.Match(
		"Experienced with AWS, React.js, and Node.",
		"Need Amazon Web Services, ReactJS, and Kubernetes.",
	)

	assert.Equal(t, []string{"Amazon Web Services", "React"}, result.Matched)
	assert.Equal(t, []string{"Kubernetes"}, result.Missing)
	assert.InDelta(t, 66.7, result.MatchPercentage, 0.001)
}

func TestMatchRespectsWordBoundaries(t *testing.T) {
	m := newMatcher(t)

	result := m.Match("JavaScript and TypeScript", "Java expertise required")

	assert.Contains(t, result.Missing, "Java")
	assert.NotContains(t, result.Matched, "Java")
	assert.Equal(t, 0.0, result.MatchPercentage)

	result = m.Match("JavaScript and TypeScript", "Java and JavaScript expertise required")
	assert.Equal(t, []string{"JavaScript"}, result.Matched)
	assert.Equal(t, []string{"Java"}, result.Missing)
	assert.InDelta(t, 50.0, result.MatchPercentage, 0.001)
}

func TestMatchWithoutKeywords(t *testing.T) {
	m := newMatcher(t)

	result := m.Match("anything", "We are looking for a great person to join us.")
	assert.Empty(t, result.Matched)
	assert.Empty(t, result.Missing)
	assert.Equal(t, 0.0, result.MatchPercentage)
	assert.NotNil(t, result.Matched)
}

func TestMatchedAndMissingPartitionExtraction(t *testing.T) {
	m := newMatcher(t)
	jd := "Senior engineer: Go Lang, Python, Docker, Kubernetes (K8s), PostgreSQL, CI/CD, Kafka and REST APIs."
	resume := "Python developer. Shipped services on k8s with postgres and github actions for ci/cd."

	result := m.Match(resume, jd)
	extracted := m.Extract(jd)

	var displays []string
	for _, kw := range extracted {
		displays = append(displays, kw.Display)
	}
	assert.Equal(t, displays, result.Extracted())
	for _, kw := range result.Matched {
		assert.NotContains(t, result.Missing, kw)
	}
	assert.Contains(t, result.Matched, "Kubernetes")
	assert.Contains(t, result.Matched, "PostgreSQL")
	assert.Contains(t, result.Matched, "CI/CD")
	assert.Contains(t, result.Missing, "Kafka")
}

func TestExtractPrefersShortRegisteredForm(t *testing.T) {
	m := newMatcher(t)

	kws := m.Extract("Experience with kafka and aws")
	require.Len(t, kws, 2)
	assert.Equal(t, Keyword{Canonical: "Apache Kafka", Display: "Kafka"}, kws[0])
	assert.Equal(t, Keyword{Canonical: "Amazon Web Services", Display: "AWS"}, kws[1])
}

func TestExtractSkipsTokensCoveredByMultiWordAlias(t *testing.T) {
	m := newMatcher(t)

	kws := m.Extract("Spring Boot microservices")
	var canon []string
	for _, kw := range kws {
		canon = append(canon, kw.Canonical)
	}
	assert.Contains(t, canon, "Spring Boot")
	assert.NotContains(t, canon, "Spring")
	assert.Contains(t, canon, "Microservices")
}

func TestContainsWholeWord(t *testing.T) {
	m := newMatcher(t)

	tests := []struct {
		name   string
		text   string
		target string
		want   bool
	}{
		{name: "prefix of longer word", text: "javascript developer", target: "java", want: false},
		{name: "plus signs", text: "uses c++ daily", target: "c++", want: true},
		{name: "slash", text: "worked with ci/cd", target: "ci/cd", want: true},
		{name: "leading dot", text: "built on .net core", target: ".net", want: true},
		{name: "hash", text: "c# and f#", target: "c#", want: true},
		{name: "string edges", text: "go", target: "go", want: true},
		{name: "digit suffix", text: "python3 scripts", target: "python", want: false},
		{name: "later occurrence qualifies", text: "javascript, then java", target: "java", want: true},
		{name: "overlapping candidates", text: "aaa aa", target: "aa", want: true},
		{name: "absent", text: "rust", target: "go", want: false},
		{name: "empty target", text: "rust", target: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.ContainsWholeWord(tt.text, tt.target))
			// Same answer once the pattern is cached.
			assert.Equal(t, tt.want, m.ContainsWholeWord(tt.text, tt.target))
		})
	}
}

func TestMatchIsDeterministicAndConcurrent(t *testing.T) {
	m := newMatcher(t)
	resume := strings.Repeat("Go Lang, Docker, React.js and Terraform. ", 5)
	jd := "Golang, Docker, React, Terraform, Ansible, Kubernetes"

	want := m.Match(resume, jd)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, m.Match(resume, jd))
		}()
	}
	wg.Wait()
}

func TestStopWords(t *testing.T) {
	assert.True(t, IsStopWord("required"))
	assert.True(t, IsStopWord("engineer"))
	assert.False(t, IsStopWord("docker"))
}
