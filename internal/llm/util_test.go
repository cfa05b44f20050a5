package llm

import (
	"testing"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json code block",
			input:    "```json\n{\"icp\": {}}\n```",
			expected: `{"icp": {}}`,
		},
		{
			name:     "generic code block with language",
			input:    "```javascript\n{\"icp\": {}}\n```",
			expected: `{"icp": {}}`,
		},
		{
			name:     "plain JSON",
			input:    `{"industry": "Fintech"}`,
			expected: `{"industry": "Fintech"}`,
		},
		{
			name:     "conversational preamble",
			input:    "Sure! Here is the ICP you asked for:\n\n{\"industry\": \"Fintech\"}",
			expected: `{"industry": "Fintech"}`,
		},
		{
			name:     "trailing chatter",
			input:    "{\"industry\": \"Fintech\"}\n\nLet me know if you want more personas.",
			expected: `{"industry": "Fintech"}`,
		},
		{
			name:     "array with preamble",
			input:    "Pain points:\n[\"churn\", \"manual work\"]",
			expected: `["churn", "manual work"]`,
		},
		{
			name:     "escaped quotes inside strings",
			input:    "Result: {\"title\": \"Head of \\\"Growth\\\"\"}",
			expected: `{"title": "Head of \"Growth\""}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CleanJSONBlock(tt.input)
			if result != tt.expected {
				t.Errorf("CleanJSONBlock() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "nested object",
			input:    `{"icp": {"industry": "Health"}}`,
			expected: `{"icp": {"industry": "Health"}}`,
		},
		{
			name:     "object after prose",
			input:    `The answer is {"a": 1} and {"b": 2}`,
			expected: `{"a": 1}`,
		},
		{
			name:     "braces inside strings",
			input:    `{"search_terms": "CTO {remote}"}`,
			expected: `{"search_terms": "CTO {remote}"}`,
		},
		{
			name:     "unbalanced first brace then valid object",
			input:    `oops { not closed {"ok": true}`,
			expected: `{"ok": true}`,
		},
		{
			name:     "truncated object",
			input:    `{"icp": {"industry": "Health"`,
			expected: "",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "no object",
			input:    "I cannot help with that.",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ExtractJSONObject(tt.input)
			if result != tt.expected {
				t.Errorf("ExtractJSONObject() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"array of objects", `[{"name": "Bob"}, {"name": "Eve"}] trailing`, `[{"name": "Bob"}, {"name": "Eve"}]`},
		{"not starting with bracket", "x[1]", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractJSONArray(tt.input)
			if result != tt.expected {
				t.Errorf("extractJSONArray() = %q, want %q", result, tt.expected)
			}
		})
	}
}
