package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONToleratesSurroundingNoise(t *testing.T) {
	got, err := ExtractJSON(`noise{"summary":"a","recommendations":[]}trailing`)
	require.NoError(t, err)
	assert.Equal(t, &Result{Summary: "a", Recommendations: []Recommendation{}}, got)
}

func TestExtractJSONCodeFence(t *testing.T) {
	text := "```json\n{\"summary\":\"Strong\",\"recommendations\":[{\"title\":\"Learn Go\",\"page_content\":\"- do it\"}]}\n```"
	got, err := ExtractJSON(text)
	require.NoError(t, err)
	assert.Equal(t, "Strong", got.Summary)
	require.Len(t, got.Recommendations, 1)
	assert.Equal(t, Recommendation{Title: "Learn Go", PageContent: "- do it"}, got.Recommendations[0])
}

func TestExtractJSONDefaults(t *testing.T) {
	got, err := ExtractJSON(`{}`)
	require.NoError(t, err)
	assert.Equal(t, "", got.Summary)
	assert.NotNil(t, got.Recommendations)
	assert.Empty(t, got.Recommendations)
}

func TestExtractJSONNestedBracesInStrings(t *testing.T) {
	// balanced braces inside strings are fine because the span is still one object
	got, err := ExtractJSON(`{"summary":"use {curly} braces","recommendations":[]}`)
	require.NoError(t, err)
	assert.Equal(t, "use {curly} braces", got.Summary)
}

func TestExtractJSONFailures(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"no braces", "not json at all"},
		{"empty", ""},
		{"reversed braces", "} then {"},
		{"broken object", `{"summary": "a",}`},
		// known limitation of the first/last brace scan
		{"two objects", `{"summary":"a"} and {"summary":"b"}`},
		{"brace in trailing commentary", `{"summary":"a","recommendations":[]} hope this helps :}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractJSON(tt.text)
			var malformed *MalformedModelOutput
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, tt.text, malformed.RawText)
		})
	}
}

func TestExtractJSONFieldTypeDrift(t *testing.T) {
	got, err := ExtractJSON(`{"summary":"ok","recommendations":[{"title":"Plan","page_content":["step 1","step 2"]}]}`)
	require.NoError(t, err)
	assert.Equal(t, "ok", got.Summary)
	require.Len(t, got.Recommendations, 1)
	assert.Equal(t, Recommendation{Title: "Plan", PageContent: "step 1\nstep 2"}, got.Recommendations[0])
}

func TestExtractJSONLenientMapping(t *testing.T) {
	tests := []struct {
		name string
		text string
		want *Result
	}{
		{
			name: "numeric summary",
			text: `{"summary": 42}`,
			want: &Result{Summary: "42", Recommendations: []Recommendation{}},
		},
		{
			name: "summary as bullet list",
			text: `{"summary":["Strong Go","Weak on testing"]}`,
			want: &Result{Summary: "Strong Go\nWeak on testing", Recommendations: []Recommendation{}},
		},
		{
			name: "recommendations as strings",
			text: `{"summary":"s","recommendations":["Learn Rust", null]}`,
			want: &Result{Summary: "s", Recommendations: []Recommendation{{Title: "Learn Rust"}}},
		},
		{
			name: "single recommendation object",
			text: `{"summary":"s","recommendations":{"title":"Mentor","page_content":"weekly"}}`,
			want: &Result{Summary: "s", Recommendations: []Recommendation{{Title: "Mentor", PageContent: "weekly"}}},
		},
		{
			name: "null recommendations",
			text: `{"summary":"s","recommendations":null}`,
			want: &Result{Summary: "s", Recommendations: []Recommendation{}},
		},
		{
			name: "nested object content",
			text: `{"recommendations":[{"title":"Plan","page_content":{"week":1}}]}`,
			want: &Result{Recommendations: []Recommendation{{Title: "Plan", PageContent: `{"week":1}`}}},
		},
		{
			name: "large number keeps its literal",
			text: `{"summary": 1000000, "recommendations": [{"title": true}]}`,
			want: &Result{Summary: "1000000", Recommendations: []Recommendation{{Title: "true"}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
