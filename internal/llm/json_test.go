package llm

import (
	"errors"
	"testing"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}```", `{"a":1}`},
		{`  {"a":1}  `, `{"a":1}`},
		{"plain text", "plain text"},
	}
	for _, tt := range tests {
		if got := StripFences(tt.in); got != tt.want {
			t.Errorf("StripFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractObject(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`Here you go: {"a": {"b": 2}} Enjoy!`, `{"a": {"b": 2}}`},
		{"```json\nSure! {\"x\": true}\n```", `{"x": true}`},
		{"no json here", "no json here"},
		{"} backwards {", "} backwards {"},
	}
	for _, tt := range tests {
		if got := ExtractObject(tt.in); got != tt.want {
			t.Errorf("ExtractObject(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDecodeObject(t *testing.T) {
	var out struct {
		Items []string `json:"items"`
		Total float64  `json:"estimated_total"`
	}
	raw := "```json\n{\"items\": [\"a\", \"b\"], \"estimated_total\": 2}\n```"
	if err := DecodeObject(raw, &out, "items", "estimated_total"); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Items) != 2 || out.Total != 2 {
		t.Errorf("out = %+v", out)
	}
}

func TestDecodeObjectErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "I cannot help with that"},
		{"missing key", `{"items": []}`},
		{"truncated", `{"items": [`},
	}
	for _, tt := range tests {
		var out map[string]any
		err := DecodeObject(tt.raw, &out, "items", "estimated_total")
		var fe *UpstreamFormatError
		if !errors.As(err, &fe) {
			t.Errorf("%s: err = %v, want *UpstreamFormatError", tt.name, err)
		}
	}
}

func TestDecodeArray(t *testing.T) {
	var out []string
	if err := DecodeArray(`Tags: ["a", "b"]`, &out); err != nil {
		t.Fatalf("decode array: %v", err)
	}
	if len(out) != 2 {
		t.Errorf("len = %d, want 2", len(out))
	}
}
