package llm

import (
	"encoding/json"
	"strings"
)

// StripFences removes a surrounding ``` or ```json code fence.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "```json"):
		s = s[len("```json"):]
	case strings.HasPrefix(s, "```"):
		s = s[len("```"):]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ExtractObject strips fences and cuts s to its outermost {...} span.
// Text without a complete object is returned fence-stripped.
func ExtractObject(s string) string {
	return extractSpan(StripFences(s), '{', '}')
}

// ExtractArray is ExtractObject for a top-level JSON array.
func ExtractArray(s string) string {
	return extractSpan(StripFences(s), '[', ']')
}

func extractSpan(s string, open, close byte) string {
	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, close)
	if start >= 0 && end > start {
		return strings.TrimSpace(s[start : end+1])
	}
	return s
}

// DecodeObject decodes a model reply holding a JSON object into v, tolerating
// code fences and surrounding prose. Every key in required must be present.
func DecodeObject(raw string, v any, required ...string) error {
	body := ExtractObject(raw)

	if len(required) > 0 {
		var keys map[string]json.RawMessage
		if err := json.Unmarshal([]byte(body), &keys); err != nil {
			return &UpstreamFormatError{Reason: "invalid JSON", Raw: raw, Err: err}
		}
		for _, k := range required {
			if _, ok := keys[k]; !ok {
				return &UpstreamFormatError{Reason: "missing field " + k, Raw: raw}
			}
		}
	}

	if err := json.Unmarshal([]byte(body), v); err != nil {
		return &UpstreamFormatError{Reason: "invalid JSON", Raw: raw, Err: err}
	}
	return nil
}

// DecodeArray decodes a model reply holding a JSON array into v.
func DecodeArray(raw string, v any) error {
	if err := json.Unmarshal([]byte(ExtractArray(raw)), v); err != nil {
		return &UpstreamFormatError{Reason: "invalid JSON array", Raw: raw, Err: err}
	}
	return nil
}
