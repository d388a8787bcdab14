package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// SchemaError lists every violation found while validating a document
type SchemaError struct {
	Document string
	Fields   []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s failed schema validation: %s", e.Document, strings.Join(e.Fields, "; "))
}

// ValidateDocument checks doc against a JSON schema. name is used in error messages.
func ValidateDocument(name string, schema, doc []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schema),
		gojsonschema.NewBytesLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("%s: cannot load document or schema: %w", name, err)
	}
	if result.Valid() {
		return nil
	}

	schemaErr := &SchemaError{Document: name}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		schemaErr.Fields = append(schemaErr.Fields, field+": "+desc.Description())
	}
	return schemaErr
}

// KeyedList is one entry of a JSON object whose values are string arrays
type KeyedList struct {
	Key    string
	Values []string
}

// DecodeOrderedLists reads a JSON object of string arrays, keeping key order.
// A null or empty input yields no entries.
func DecodeOrderedLists(raw json.RawMessage) ([]KeyedList, error) {
	var out []KeyedList
	err := walkObject(raw, func(key string, value json.RawMessage) error {
		var values []string
		if err := json.Unmarshal(value, &values); err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		out = append(out, KeyedList{Key: key, Values: values})
		return nil
	})
	return out, err
}

// KeyedString is one entry of a JSON object whose values are strings
type KeyedString struct {
	Key   string
	Value string
}

// DecodeOrderedStrings reads a JSON object of strings, keeping key order
func DecodeOrderedStrings(raw json.RawMessage) ([]KeyedString, error) {
	var out []KeyedString
	err := walkObject(raw, func(key string, value json.RawMessage) error {
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		out = append(out, KeyedString{Key: key, Value: s})
		return nil
	})
	return out, err
}

func walkObject(raw json.RawMessage, visit func(key string, value json.RawMessage) error) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return err
		}
		if err := visit(key, value); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}
