package openai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "clean json untouched",
			input: `{"description": "A museum", "duration_min": 90}`,
			want:  `{"description": "A museum", "duration_min": 90}`,
		},
		{
			name:  "json fence stripped",
			input: "```json\n{\"description\": \"A museum\"}\n```",
			want:  `{"description": "A museum"}`,
		},
		{
			name:  "bare fence stripped",
			input: "```\n{\"description\": \"A museum\"}\n```",
			want:  `{"description": "A museum"}`,
		},
		{
			name:  "prose around object dropped",
			input: "Here is the requested JSON:\n{\"tips\": [\"go early\"]}\nLet me know if you need anything else.",
			want:  `{"tips": ["go early"]}`,
		},
		{
			name:  "trailing comma in object",
			input: `{"description": "A museum", "duration_min": 90,}`,
			want:  `{"description": "A museum", "duration_min": 90}`,
		},
		{
			name:  "trailing comma in array",
			input: `{"tips": ["go early", "bring cash",]}`,
			want:  `{"tips": ["go early", "bring cash"]}`,
		},
		{
			name:  "trailing comma before newline",
			input: "{\"tips\": [\"go early\"],\n}",
			want:  "{\"tips\": [\"go early\"]\n}",
		},
		{
			name:  "comma inside string kept",
			input: `{"description": "Wine, bread, and views,"}`,
			want:  `{"description": "Wine, bread, and views,"}`,
		},
		{
			name:  "missing opening quote on key",
			input: `{description": "A museum", duration_min": 90}`,
			want:  `{"description": "A museum", "duration_min": 90}`,
		},
		{
			name:  "fence and prose and trailing comma together",
			input: "Sure! Here you go:\n```json\n{\"best_time\": \"morning\",}\n```",
			want:  `{"best_time": "morning"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeJSON(tt.input)
			assert.Equal(t, tt.want, got)

			var doc map[string]any
			require.NoError(t, json.Unmarshal([]byte(got), &doc),
				"sanitized output must be parseable")
		})
	}
}

func TestExtractJSONObject_NoBraces(t *testing.T) {
	assert.Equal(t, "no json here", extractJSONObject("no json here"))
}

func TestStripTrailingCommas_EscapedQuote(t *testing.T) {
	input := `{"description": "He said \"wait,\" twice,", "n": 1,}`
	want := `{"description": "He said \"wait,\" twice,", "n": 1}`
	assert.Equal(t, want, stripTrailingCommas(input))
}
