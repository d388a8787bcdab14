package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadDefault(t *testing.T) *Catalog {
	t.Helper()
	c, err := Default()
	require.NoError(t, err)
	return c
}

func TestEveryAliasResolvesToItsCanonical(t *testing.T) {
	c := loadDefault(t)

	aliases := c.Aliases()
	require.NotEmpty(t, aliases)
	for _, alias := range aliases {
		canonical, ok := c.CanonicalOf(alias)
		require.True(t, ok, "alias %q has no canonical", alias)
		assert.Contains(t, c.AllFormsOf(canonical), alias, "canonical %q does not cover %q", canonical, alias)
	}
}

func TestMultiWordSkillsLongestFirst(t *testing.T) {
	c := loadDefault(t)

	words := c.MultiWordSkills()
	require.NotEmpty(t, words)
	for i := 1; i < len(words); i++ {
		assert.GreaterOrEqual(t, len(words[i-1]), len(words[i]), "%q before %q", words[i-1], words[i])
	}
	assert.Contains(t, words, "amazon web services")
	assert.Contains(t, words, "ci/cd")
	assert.NotContains(t, words, "kubernetes")
}

func TestCanonicalAndDisplayForms(t *testing.T) {
	c := loadDefault(t)

	tests := []struct {
		name      string
		input     string
		canonical string
		display   string
	}{
		{name: "synonym resolves", input: "aws", canonical: "Amazon Web Services", display: "AWS"},
		{name: "display skips synonyms", input: "kafka", canonical: "Apache Kafka", display: "Kafka"},
		{name: "dotted alias", input: "REACT.JS", canonical: "React", display: "React.js"},
		{name: "plain skill", input: "docker", canonical: "Docker", display: "Docker"},
		{name: "slash alias", input: "ci/cd", canonical: "Continuous Deployment", display: "CI/CD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			canonical, ok := c.CanonicalOf(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.canonical, canonical)

			display, ok := c.DisplayFormOf(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.display, display)
		})
	}

	_, ok := c.CanonicalOf("expertise")
	assert.False(t, ok)
}

func TestDisplayFormUpgrade(t *testing.T) {
	doc := []byte(`{
		"skillCategories": {"tools": ["npm", "kafka"]},
		"synonymMap": {"Apache Kafka": ["Kafka"], "Node Package Manager": ["NPM"]},
		"sectionHeaders": {"skills": ["Skills"]}
	}`)
	c, err := New(doc)
	require.NoError(t, err)

	display, _ := c.DisplayFormOf("kafka")
	assert.Equal(t, "Kafka", display, "mixed case replaces all-lowercase")
	display, _ = c.DisplayFormOf("npm")
	assert.Equal(t, "NPM", display)
}

func TestFirstMixedCaseRegistrationWins(t *testing.T) {
	doc := []byte(`{
		"skillCategories": {"a": ["GraphQL"], "b": ["GRAPHQL", "graphql"]},
		"synonymMap": {},
		"sectionHeaders": {"skills": ["skills"]}
	}`)
	c, err := New(doc)
	require.NoError(t, err)

	display, _ := c.DisplayFormOf("graphql")
	assert.Equal(t, "GraphQL", display)
}

func TestAllFormsFallbacks(t *testing.T) {
	c := loadDefault(t)

	assert.ElementsMatch(t, []string{"amazon web services", "aws", "amazon aws"}, c.AllFormsOf("Amazon Web Services"))
	assert.ElementsMatch(t, []string{"amazon web services", "aws", "amazon aws"}, c.AllFormsOf("AWS"))
	assert.Equal(t, []string{"something else"}, c.AllFormsOf("Something Else"))

	forms := c.AllFormsOf("React")
	forms[0] = "mutated"
	assert.NotContains(t, c.AllFormsOf("React"), "mutated")
}

func TestSectionHeaders(t *testing.T) {
	c := loadDefault(t)

	required := c.RequiredSections()
	assert.Equal(t, []string{"contact", "summary", "experience", "education", "skills", "certifications", "projects"}, required[:7])

	lookup := c.SectionLookup()
	assert.Equal(t, "experience", lookup["work experience"])
	assert.Equal(t, "summary", lookup["career objective"])
	lookup["work experience"] = "changed"
	assert.Equal(t, "experience", c.SectionLookup()["work experience"])

	assert.Contains(t, c.SectionAliases("skills"), "technical skills")
	assert.Nil(t, c.SectionAliases("unknown"))
}

func TestCategoryOf(t *testing.T) {
	c := loadDefault(t)

	cat, ok := c.CategoryOf("PostgreSQL")
	require.True(t, ok)
	assert.Equal(t, "databases", cat)

	cat, ok = c.CategoryOf("Amazon Web Services")
	require.True(t, ok)
	assert.Equal(t, "cloudDevOps", cat)

	_, ok = c.CategoryOf("knitting")
	assert.False(t, ok)
}

func TestNewRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "not json", doc: `{{`},
		{name: "missing tree", doc: `{"skillCategories": {}, "synonymMap": {}}`},
		{name: "wrong value type", doc: `{"skillCategories": {"a": "Go"}, "synonymMap": {}, "sectionHeaders": {"skills": ["skills"]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}
