package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// SkillCategory is one "Category: a, b, c" line of a skills section
type SkillCategory struct {
	Name   string
	Values string
}

// Skills keeps skill categories in insertion order. The zero value is empty and usable.
type Skills struct {
	entries []SkillCategory
}

// NewSkills builds Skills from ordered categories
func NewSkills(categories ...SkillCategory) Skills {
	var s Skills
	for _, c := range categories {
		s.Set(c.Name, c.Values)
	}
	return s
}

func (s *Skills) Len() int {
	return len(s.entries)
}

// Keys returns category names in order
func (s *Skills) Keys() []string {
	keys := make([]string, len(s.entries))
	for i, e := range s.entries {
		keys[i] = e.Name
	}
	return keys
}

// Entries returns a copy of the ordered categories
func (s *Skills) Entries() []SkillCategory {
	out := make([]SkillCategory, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Skills) Get(name string) (string, bool) {
	for _, e := range s.entries {
		if e.Name == name {
			return e.Values, true
		}
	}
	return "", false
}

// Set replaces the values of an existing category or appends a new one
func (s *Skills) Set(name, values string) {
	for i := range s.entries {
		if s.entries[i].Name == name {
			s.entries[i].Values = values
			return
		}
	}
	s.entries = append(s.entries, SkillCategory{Name: name, Values: values})
}

// Merge appends values to a category, joining with ", "
func (s *Skills) Merge(name, values string) {
	if existing, ok := s.Get(name); ok && existing != "" {
		s.Set(name, existing+", "+values)
		return
	}
	s.Set(name, values)
}

// Contains reports whether any category lists skill, ignoring case
func (s *Skills) Contains(skill string) bool {
	needle := strings.ToLower(strings.TrimSpace(skill))
	for _, e := range s.entries {
		for _, v := range strings.Split(e.Values, ",") {
			if strings.ToLower(strings.TrimSpace(v)) == needle {
				return true
			}
		}
	}
	return false
}

// Text flattens all categories into one lowercased string
func (s *Skills) Text() string {
	var b strings.Builder
	for _, e := range s.entries {
		b.WriteString(e.Name)
		b.WriteString(": ")
		b.WriteString(e.Values)
		b.WriteString("\n")
	}
	return b.String()
}

func (s Skills) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range s.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.Values)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object while keeping key order. Array values are joined with ", ".
func (s *Skills) UnmarshalJSON(data []byte) error {
	s.entries = nil
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("skills: expected object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}

		var str string
		if err := json.Unmarshal(raw, &str); err == nil {
			s.Set(key, str)
			continue
		}
		var list []string
		if err := json.Unmarshal(raw, &list); err == nil {
			s.Set(key, strings.Join(list, ", "))
			continue
		}
		return fmt.Errorf("skills: category %q must be a string or list of strings", key)
	}

	_, err = dec.Token()
	return err
}
