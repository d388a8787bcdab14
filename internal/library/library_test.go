package library

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var industries = []string{
	"IT_Software", "Data_Science_AI", "Mechanical_Engineering", "Civil_Engineering",
	"Electrical_Engineering", "Electronics_Communication", "Pharmacy", "UI_UX_Design",
	"Graphic_Design_VFX", "Digital_Marketing",
}

func TestDefaultCoversEveryIndustry(t *testing.T) {
	lib, err := Default()
	require.NoError(t, err)

	assert.ElementsMatch(t, industries, lib.Industries())
	for _, industry := range industries {
		t.Run(industry, func(t *testing.T) {
			assert.NotEmpty(t, lib.SummaryTemplates(industry, LevelFresher))
			assert.NotEmpty(t, lib.SummaryTemplates(industry, LevelExperienced))
			assert.NotEmpty(t, lib.ActionVerbs(industry))
			assert.NotEmpty(t, lib.Certifications(industry))
			assert.NotEmpty(t, lib.RelevantCoursework(industry))
			assert.NotEmpty(t, lib.BulletTemplates(industry, BulletsExperiencedWork))
		})
	}
}

func TestActionVerbsFollowGroupOrder(t *testing.T) {
	lib, err := Default()
	require.NoError(t, err)

	groups := lib.ActionVerbGroups("IT_Software")
	require.NotEmpty(t, groups)
	assert.Equal(t, "development", groups[0].Name)

	verbs := lib.ActionVerbs("IT_Software")
	assert.Equal(t, groups[0].Verbs[0], verbs[0])
	assert.Len(t, verbs, len(groups[0].Verbs)+len(groups[1].Verbs)+len(groups[2].Verbs))
}

func TestAbsentKeysGiveEmptyCollections(t *testing.T) {
	lib, err := Default()
	require.NoError(t, err)

	assert.Equal(t, []string{}, lib.SummaryTemplates("Astronomy", LevelFresher))
	assert.Equal(t, []string{}, lib.SummaryTemplates("IT_Software", "principal"))
	assert.Equal(t, []string{}, lib.ActionVerbs("Astronomy"))
	assert.Empty(t, lib.ActionVerbGroups("Astronomy"))
	assert.Equal(t, []string{}, lib.Certifications("Astronomy"))
	assert.Equal(t, "B.Arch", lib.DegreeAbbreviation("B.Arch"))
	assert.Equal(t, "Bachelor of Technology", lib.DegreeAbbreviation("B.Tech"))
}

func TestContentRules(t *testing.T) {
	lib, err := Default()
	require.NoError(t, err)

	assert.Contains(t, lib.BannedBulletStarters(), "responsible for")
	for _, s := range lib.BannedBulletStarters() {
		assert.Equal(t, strings.ToLower(s), s)
	}
	assert.Contains(t, lib.SummaryNeverUse(), "team player")
	assert.NotEmpty(t, lib.SummaryStartWith())

	fields := lib.RegionalFieldsToStrip()
	require.NotEmpty(t, fields)
	assert.Equal(t, "dateOfBirth", fields[0].Field)
	assert.NotEmpty(t, fields[0].Reason)
}

func TestMinimalDocument(t *testing.T) {
	lib, err := New([]byte(`{
		"summaryTemplates": {"X": {"fresher": ["a"]}},
		"actionVerbsByIndustry": {"X": {"second": ["B"], "first": ["A"]}},
		"sectionContentRules": {}
	}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "A"}, lib.ActionVerbs("X"))
	assert.Empty(t, lib.RegionalFieldsToStrip())
	assert.Equal(t, []string{}, lib.BannedBulletStarters())
}

func TestNewRejectsInvalidDocument(t *testing.T) {
	_, err := New([]byte(`{"summaryTemplates": []}`))
	assert.Error(t, err)

	_, err = New([]byte(`not json`))
	assert.Error(t, err)
}
