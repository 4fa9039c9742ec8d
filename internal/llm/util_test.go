package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain json untouched",
			input: `{"category": "FloWorx/Urgent"}`,
			want:  `{"category": "FloWorx/Urgent"}`,
		},
		{
			name:  "json fence",
			input: "```json\n{\"category\": \"FloWorx/Urgent\"}\n```",
			want:  `{"category": "FloWorx/Urgent"}`,
		},
		{
			name:  "bare fence",
			input: "```\n{\"confidence\": 0.9}\n```",
			want:  `{"confidence": 0.9}`,
		},
		{
			name:  "fence with whitespace",
			input: "  ```json\n{}\n```  ",
			want:  "{}",
		},
		{
			name:  "fence with language id line",
			input: "```\njson\n{\"a\": 1}\n```",
			want:  `{"a": 1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSONBlock(tt.input))
		})
	}
}
