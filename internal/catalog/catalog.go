// Package catalog holds the skill taxonomy: skill categories, synonym groups
// and section header aliases. A Catalog is immutable once built.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"

	"atsresume/internal/common"
	"atsresume/internal/errors"
)

//go:embed keywords.json
var defaultDocument []byte

//go:embed keywords.schema.json
var schemaDocument []byte

// SectionHeader is a standard section name with its lowercased aliases
type SectionHeader struct {
	Name    string
	Aliases []string
}

// Category is a named skill group as listed in the catalog document
type Category struct {
	Name   string
	Skills []string
}

// Catalog resolves skill aliases to canonical names and display forms
type Catalog struct {
	known        map[string]struct{}
	displayForms map[string]string
	canonicals   map[string]string
	forms        map[string][]string
	categoryOf   map[string]string
	multiWord    []string
	categories   []Category
	sections     []SectionHeader
	sectionOf    map[string]string
}

type document struct {
	SkillCategories json.RawMessage `json:"skillCategories"`
	SynonymMap      json.RawMessage `json:"synonymMap"`
	SectionHeaders  json.RawMessage `json:"sectionHeaders"`
}

// Default builds the catalog from the embedded keywords document
func Default() (*Catalog, error) {
	return New(defaultDocument)
}

// New validates doc and builds a catalog from it
func New(doc []byte) (*Catalog, error) {
	if err := common.ValidateDocument("keyword catalog", schemaDocument, doc); err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeCatalogLoadFailed, "invalid keyword catalog", err)
	}

	var d document
	if err := json.Unmarshal(doc, &d); err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeCatalogLoadFailed, "cannot parse keyword catalog", err)
	}

	categories, err := common.DecodeOrderedLists(d.SkillCategories)
	if err != nil {
		return nil, loadError("skillCategories", err)
	}
	synonyms, err := common.DecodeOrderedLists(d.SynonymMap)
	if err != nil {
		return nil, loadError("synonymMap", err)
	}
	headers, err := common.DecodeOrderedLists(d.SectionHeaders)
	if err != nil {
		return nil, loadError("sectionHeaders", err)
	}

	c := &Catalog{
		known:        map[string]struct{}{},
		displayForms: map[string]string{},
		canonicals:   map[string]string{},
		forms:        map[string][]string{},
		categoryOf:   map[string]string{},
		sectionOf:    map[string]string{},
	}

	for _, cat := range categories {
		group := Category{Name: cat.Key}
		for _, skill := range cat.Values {
			skill = strings.TrimSpace(skill)
			c.register(skill)
			group.Skills = append(group.Skills, skill)
			if _, seen := c.categoryOf[strings.ToLower(skill)]; !seen {
				c.categoryOf[strings.ToLower(skill)] = cat.Key
			}
		}
		c.categories = append(c.categories, group)
	}

	for _, group := range synonyms {
		canonical := strings.TrimSpace(group.Key)
		c.register(canonical)
		c.canonicals[strings.ToLower(canonical)] = canonical
		c.addForm(canonical, strings.ToLower(canonical))
		for _, syn := range group.Values {
			syn = strings.TrimSpace(syn)
			c.canonicals[strings.ToLower(syn)] = canonical
			c.addForm(canonical, strings.ToLower(syn))
			c.register(syn)
		}
	}

	for _, h := range headers {
		header := SectionHeader{Name: h.Key}
		for _, alias := range h.Values {
			alias = strings.ToLower(strings.TrimSpace(alias))
			header.Aliases = append(header.Aliases, alias)
			if _, taken := c.sectionOf[alias]; !taken {
				c.sectionOf[alias] = h.Key
			}
		}
		c.sections = append(c.sections, header)
	}

	// Stable so equal-length aliases keep registration order.
	sort.SliceStable(c.multiWord, func(i, j int) bool {
		return len(c.multiWord[i]) > len(c.multiWord[j])
	})

	return c, nil
}

func loadError(tree string, err error) error {
	return errors.NewConfigError(errors.ErrCodeCatalogLoadFailed,
		fmt.Sprintf("cannot read %s from keyword catalog", tree), err)
}

func (c *Catalog) register(skill string) {
	if skill == "" {
		return
	}
	lower := strings.ToLower(skill)
	c.known[lower] = struct{}{}

	existing, ok := c.displayForms[lower]
	switch {
	case !ok:
		c.displayForms[lower] = skill
	case skill != lower && existing == lower:
		c.displayForms[lower] = skill
	}

	if strings.ContainsAny(skill, " -/.") && !slices.Contains(c.multiWord, lower) {
		c.multiWord = append(c.multiWord, lower)
	}
}

func (c *Catalog) addForm(canonical, form string) {
	if !slices.Contains(c.forms[canonical], form) {
		c.forms[canonical] = append(c.forms[canonical], form)
	}
}

// IsKnownSkill reports whether text is a registered alias, ignoring case
func (c *Catalog) IsKnownSkill(text string) bool {
	_, ok := c.known[strings.ToLower(text)]
	return ok
}

// CanonicalOf resolves text through the synonym map, then falls back to the
// display form of a plain registered skill.
func (c *Catalog) CanonicalOf(text string) (string, bool) {
	lower := strings.ToLower(text)
	if canonical, ok := c.canonicals[lower]; ok {
		return canonical, true
	}
	if _, ok := c.known[lower]; ok {
		return c.displayForms[lower], true
	}
	return "", false
}

// DisplayFormOf returns the registered casing of this exact alias without
// following synonyms, so "kafka" gives "Kafka" and not "Apache Kafka".
func (c *Catalog) DisplayFormOf(text string) (string, bool) {
	form, ok := c.displayForms[strings.ToLower(text)]
	return form, ok
}

// AllFormsOf returns every lowercased alias of canonical, itself included
func (c *Catalog) AllFormsOf(canonical string) []string {
	if forms, ok := c.forms[canonical]; ok {
		return slices.Clone(forms)
	}
	lower := strings.ToLower(canonical)
	if resolved, ok := c.canonicals[lower]; ok {
		if forms, ok := c.forms[resolved]; ok {
			return slices.Clone(forms)
		}
	}
	return []string{lower}
}

// MultiWordSkills returns aliases containing a space, dash, slash or dot, longest first
func (c *Catalog) MultiWordSkills() []string {
	return slices.Clone(c.multiWord)
}

// CategoryOf returns the catalog category a skill was first listed under.
// Synonyms resolve through their canonical when the alias itself is not listed.
func (c *Catalog) CategoryOf(skill string) (string, bool) {
	lower := strings.ToLower(skill)
	if cat, ok := c.categoryOf[lower]; ok {
		return cat, true
	}
	canonical, ok := c.CanonicalOf(skill)
	if !ok {
		return "", false
	}
	for _, form := range c.AllFormsOf(canonical) {
		if cat, ok := c.categoryOf[form]; ok {
			return cat, true
		}
	}
	return "", false
}

// Categories returns the skill categories in document order
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	for i, cat := range c.categories {
		out[i] = Category{Name: cat.Name, Skills: slices.Clone(cat.Skills)}
	}
	return out
}

// Aliases returns every registered alias, lowercased and sorted
func (c *Catalog) Aliases() []string {
	return slices.Sorted(maps.Keys(c.known))
}

// SectionHeaders returns the section definitions in document order
func (c *Catalog) SectionHeaders() []SectionHeader {
	out := make([]SectionHeader, len(c.sections))
	for i, h := range c.sections {
		out[i] = SectionHeader{Name: h.Name, Aliases: slices.Clone(h.Aliases)}
	}
	return out
}

// RequiredSections returns the standard section names in document order
func (c *Catalog) RequiredSections() []string {
	names := make([]string, len(c.sections))
	for i, h := range c.sections {
		names[i] = h.Name
	}
	return names
}

// SectionAliases returns the aliases of one section, or nil when unknown
func (c *Catalog) SectionAliases(name string) []string {
	for _, h := range c.sections {
		if h.Name == name {
			return slices.Clone(h.Aliases)
		}
	}
	return nil
}

// SectionLookup returns a copy of the alias to section name map.
// When an alias is listed under two sections the first one wins.
func (c *Catalog) SectionLookup() map[string]string {
	return maps.Clone(c.sectionOf)
}
