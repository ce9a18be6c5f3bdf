package gateway

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCollection(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		idField string
		docs    []string
		wantErr error
	}{
		{
			name:    "objects keep key order",
			body:    `{"id":[{"z":1,"a":2}]}`,
			idField: "id",
			docs:    []string{`{"z":1,"a":2}`},
		},
		{
			name:    "empty collection",
			body:    `{"id":[]}`,
			idField: "id",
			docs:    []string{},
		},
		{
			name:    "scalar elements restore quotes",
			body:    `{"key":["a\"b", 3, true, null]}`,
			idField: "key",
			docs:    []string{`"a\"b"`, `3`, `true`, `null`},
		},
		{
			name:    "extra keys are ignored",
			body:    `{"id":[{"id":"1"}],"other":[]}`,
			idField: "id",
			docs:    []string{`{"id":"1"}`},
		},
		{
			name:    "no key",
			body:    `{}`,
			wantErr: ErrNoIDField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coll, err := ParseCollection([]byte(tt.body))
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.idField, coll.IDField)

			got := make([]string, len(coll.Documents))
			for i, d := range coll.Documents {
				got[i] = string(d)
			}
			assert.Equal(t, tt.docs, got)
		})
	}
}

func TestParseCollection_RejectsNonArray(t *testing.T) {
	_, err := ParseCollection([]byte(`{"id":"nope"}`))
	assert.Error(t, err)
}

func TestFieldValue(t *testing.T) {
	doc := []byte(`{"id":"aé","n":42,"ok":true,"nested":{"id":"x"},"nil":null}`)

	v, ok := FieldValue(doc, "id")
	assert.True(t, ok)
	assert.Equal(t, "aé", v)

	v, ok = FieldValue(doc, "n")
	assert.True(t, ok)
	assert.Equal(t, "42", v)

	v, ok = FieldValue(doc, "ok")
	assert.True(t, ok)
	assert.Equal(t, "true", v)

	_, ok = FieldValue(doc, "nested")
	assert.False(t, ok)

	_, ok = FieldValue(doc, "nil")
	assert.False(t, ok)

	_, ok = FieldValue(doc, "missing")
	assert.False(t, ok)
}
