package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompletionText(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "gemini candidate parts",
			body: `{"candidates":[{"content":{"parts":[{"text":"first"},{"text":"second"}]}}]}`,
			want: "first",
		},
		{
			name: "skips empty leading part",
			body: `{"candidates":[{"content":{"parts":[{"inlineData":{}},{"text":"  "},{"text":"real"}]}}]}`,
			want: "real",
		},
		{
			name: "candidate text",
			body: `{"candidates":[{"text":"flat"}]}`,
			want: "flat",
		},
		{
			name: "candidate output",
			body: `{"candidates":[{"output":"legacy"}]}`,
			want: "legacy",
		},
		{
			name: "output_text wins over output",
			body: `{"output_text":"aggregated","output":"other"}`,
			want: "aggregated",
		},
		{
			name: "output string",
			body: `{"output":"plain"}`,
			want: "plain",
		},
		{
			name: "output nested content",
			body: `{"output":[{"type":"reasoning"},{"content":[{"type":"output_text","text":"nested"}]}]}`,
			want: "nested",
		},
		{
			name: "top level text",
			body: `{"text":"bare"}`,
			want: "bare",
		},
		{
			name: "unknown shape falls back to raw body",
			body: `{"promptFeedback":{"blockReason":"SAFETY"}}`,
			want: `{"promptFeedback":{"blockReason":"SAFETY"}}`,
		},
		{
			name: "non json body",
			body: `upstream said no`,
			want: `upstream said no`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompletionText([]byte(tt.body)))
		})
	}
}

func TestUpstreamErrorMessage(t *testing.T) {
	assert.Equal(t, "model API returned 500: boom", (&UpstreamError{Status: 500, Body: "boom"}).Error())
	assert.Equal(t, "model API call failed: dial tcp", (&UpstreamError{Body: "dial tcp"}).Error())
}
