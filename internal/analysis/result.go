package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type Recommendation struct {
	Title       string `json:"title"`
	PageContent string `json:"page_content"`
}

type Result struct {
	Summary         string           `json:"summary"`
	Recommendations []Recommendation `json:"recommendations"`
}

// MalformedModelOutput carries the model text that held no parseable object.
type MalformedModelOutput struct {
	RawText string
	Cause   error
}

func (e *MalformedModelOutput) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("LLM returned non-JSON or unparsable JSON: %v", e.Cause)
	}
	return "LLM returned non-JSON or unparsable JSON"
}

func (e *MalformedModelOutput) Unwrap() error { return e.Cause }

// ExtractJSON parses the span from the first '{' to the last '}' of text.
//
// The scan is naive: two separate objects in one reply, or an unmatched brace
// inside commentary, make the span unparseable and the call fails rather than
// guessing which object was meant. Once the span is a valid object its fields
// are mapped leniently: arrays become newline-joined text and scalars their
// literal form, so a reply that drifts from the schema still yields a Result.
func ExtractJSON(text string) (*Result, error) {
	first := strings.IndexByte(text, '{')
	last := strings.LastIndexByte(text, '}')
	if first == -1 || last == -1 || last < first {
		return nil, &MalformedModelOutput{RawText: text, Cause: fmt.Errorf("no JSON object found")}
	}

	span := []byte(text[first : last+1])
	if !json.Valid(span) {
		var v any
		return nil, &MalformedModelOutput{RawText: text, Cause: json.Unmarshal(span, &v)}
	}
	dec := json.NewDecoder(bytes.NewReader(span))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, &MalformedModelOutput{RawText: text, Cause: err}
	}

	return &Result{
		Summary:         textOf(fields["summary"]),
		Recommendations: recommendationsOf(fields["recommendations"]),
	}, nil
}

func recommendationsOf(v any) []Recommendation {
	var items []any
	switch x := v.(type) {
	case []any:
		items = x
	case map[string]any:
		items = []any{x}
	}
	out := make([]Recommendation, 0, len(items))
	for _, item := range items {
		switch x := item.(type) {
		case map[string]any:
			out = append(out, Recommendation{
				Title:       textOf(x["title"]),
				PageContent: textOf(x["page_content"]),
			})
		case nil:
		default:
			out = append(out, Recommendation{Title: textOf(x)})
		}
	}
	return out
}

// textOf flattens a decoded JSON value into display text.
func textOf(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case []any:
		lines := make([]string, 0, len(x))
		for _, item := range x {
			if line := textOf(item); line != "" {
				lines = append(lines, line)
			}
		}
		return strings.Join(lines, "\n")
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
