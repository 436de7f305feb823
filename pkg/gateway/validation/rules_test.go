package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var newsRules = Rules{
	RequiredString("title", "Title is required"),
	RequiredString("content", "Content is required"),
}

func TestRules_Check(t *testing.T) {
	tests := []struct {
		name      string
		body      map[string]any
		wantField string
	}{
		{name: "valid", body: map[string]any{"title": "A", "content": "B"}},
		{name: "missing title", body: map[string]any{"content": "B"}, wantField: "title"},
		{name: "empty title", body: map[string]any{"title": "", "content": "B"}, wantField: "title"},
		{name: "non-string title", body: map[string]any{"title": 12.0, "content": "B"}, wantField: "title"},
		{name: "first failure wins", body: map[string]any{}, wantField: "title"},
		{name: "missing content", body: map[string]any{"title": "A"}, wantField: "content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newsRules.Check(tt.body)
			if tt.wantField == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.body, got)
				return
			}
			var verr *Error
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
			assert.Nil(t, got)
		})
	}
}

func TestRules_Trimmed(t *testing.T) {
	rules := Rules{RequiredTrimmed("username", "")}

	_, err := rules.Check(map[string]any{"username": "   "})
	require.Error(t, err)
	assert.Equal(t, "Username is required", err.Error())

	_, err = rules.Check(map[string]any{"username": " admin "})
	assert.NoError(t, err)
}

func TestRules_TagExpression(t *testing.T) {
	rules := Rules{{Field: "title", Tag: "required,max=3", Message: "Title too long"}}

	_, err := rules.Check(map[string]any{"title": "abcd"})
	require.Error(t, err)
	assert.Equal(t, "Title too long", err.Error())
}

func TestDecodeJSON(t *testing.T) {
	body, err := DecodeJSON(strings.NewReader(`{"title":"A"}`))
	require.NoError(t, err)
	assert.Equal(t, "A", String(body, "title"))
	assert.Equal(t, "", String(body, "missing"))

	_, err = DecodeJSON(strings.NewReader(`{"title":`))
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Malformed JSON in request body", verr.Message)

	_, err = DecodeJSON(strings.NewReader(``))
	require.ErrorAs(t, err, &verr)

	_, err = DecodeJSON(strings.NewReader(`null`))
	require.ErrorAs(t, err, &verr)
}
