package llm

import (
	"encoding/json"
	"strings"
)

// CompletionText pulls the first textual completion out of a vendor response.
// Known shapes are tried in a fixed order:
//
//  1. candidates[0].content.parts[].text
//  2. candidates[0].text, candidates[0].output
//  3. output_text
//  4. output, either a string or a list of items carrying content[].text
//  5. text
//
// When nothing matches, the raw body is returned so the caller always has
// something to show.
func CompletionText(body []byte) string {
	var root map[string]any
	if err := json.Unmarshal(body, &root); err != nil {
		return string(body)
	}

	if cand := firstMap(root["candidates"]); cand != nil {
		if content, ok := cand["content"].(map[string]any); ok {
			if text := textFromParts(content["parts"]); text != "" {
				return text
			}
		}
		if text := nonEmptyString(cand["text"]); text != "" {
			return text
		}
		if text := nonEmptyString(cand["output"]); text != "" {
			return text
		}
	}

	if text := nonEmptyString(root["output_text"]); text != "" {
		return text
	}

	switch out := root["output"].(type) {
	case string:
		if out != "" {
			return out
		}
	case []any:
		for _, item := range out {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if text := textFromParts(m["content"]); text != "" {
				return text
			}
		}
	}

	if text := nonEmptyString(root["text"]); text != "" {
		return text
	}
	return string(body)
}

func firstMap(v any) map[string]any {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return nil
	}
	m, _ := list[0].(map[string]any)
	return m
}

// textFromParts returns the first non-empty text of a parts/content list.
func textFromParts(v any) string {
	list, ok := v.([]any)
	if !ok {
		return ""
	}
	for _, p := range list {
		m, ok := p.(map[string]any)
		if !ok {
			continue
		}
		if text := nonEmptyString(m["text"]); text != "" {
			return text
		}
	}
	return ""
}

func nonEmptyString(v any) string {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return ""
	}
	return s
}
