package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/buger/jsonparser"
)

// ErrNoIDField is returned when a collection payload has no id-field key
var ErrNoIDField = errors.New("collection payload has no id field")

// ParseCollection decodes the single-key {"<idField>": [docs...]} payload.
// Documents are kept as raw JSON so key order survives.
func ParseCollection(body []byte) (Collection, error) {
	var coll Collection
	seen := false

	err := jsonparser.ObjectEach(body, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		if seen {
			// Only the first key carries documents
			return nil
		}
		seen = true
		if dataType != jsonparser.Array {
			return fmt.Errorf("documents for id field %q: expected array, got %s", key, dataType)
		}
		docs, err := SplitArray(value)
		if err != nil {
			return err
		}
		coll.IDField = string(key)
		coll.Documents = docs
		return nil
	})
	if err != nil {
		return Collection{}, fmt.Errorf("failed to parse collection: %w", err)
	}
	if !seen {
		return Collection{}, ErrNoIDField
	}
	return coll, nil
}

// SplitArray splits a JSON array into its raw elements
func SplitArray(value []byte) ([]json.RawMessage, error) {
	docs := []json.RawMessage{}
	var inner error

	_, err := jsonparser.ArrayEach(value, func(v []byte, dataType jsonparser.ValueType, _ int, err error) {
		if inner != nil {
			return
		}
		if err != nil {
			inner = err
			return
		}
		raw, err := rawValue(v, dataType)
		if err != nil {
			inner = err
			return
		}
		docs = append(docs, raw)
	})
	if err != nil {
		return nil, err
	}
	if inner != nil {
		return nil, inner
	}
	return docs, nil
}

// FieldValue returns the textual value of a top-level field of doc.
// Strings are unquoted; numbers and booleans keep their literal text.
func FieldValue(doc []byte, field string) (string, bool) {
	v, dataType, _, err := jsonparser.Get(doc, field)
	if err != nil {
		return "", false
	}
	switch dataType {
	case jsonparser.String:
		s, err := jsonparser.ParseString(v)
		if err != nil {
			return string(v), true
		}
		return s, true
	case jsonparser.Number, jsonparser.Boolean:
		return string(v), true
	default:
		return "", false
	}
}

// rawValue restores the quotes jsonparser strips from string values
func rawValue(v []byte, dataType jsonparser.ValueType) (json.RawMessage, error) {
	if dataType != jsonparser.String {
		return bytes.Clone(v), nil
	}
	s, err := jsonparser.ParseString(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(s)
}
