package mail

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "collapses spaces and tabs",
			input: "hello \t  world",
			want:  "hello world",
		},
		{
			name:  "keeps single paragraph break",
			input: "para one\n\npara two",
			want:  "para one\n\npara two",
		},
		{
			name:  "collapses blank line runs",
			input: "para one\n\n\n\n\npara two",
			want:  "para one\n\npara two",
		},
		{
			name:  "trims edges",
			input: "\n\n  text  \n\n",
			want:  "text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeText(tt.input))
		})
	}
}

func TestTruncateForPrompt(t *testing.T) {
	short := "short body"
	assert.Equal(t, short, TruncateForPrompt(short))

	long := strings.Repeat("quoted reply line\n", 500)
	got := TruncateForPrompt(long)
	assert.Less(t, len([]rune(got)), len([]rune(long)))
	assert.True(t, strings.HasSuffix(got, "[truncated]"))
}

func TestStripHTML_RemovesHiddenPreheader(t *testing.T) {
	html := `<html><body>
		<span style="display:none">preview text junk</span>
		<p>Real content here.</p>
	</body></html>`

	text, err := StripHTML(html)
	assert.NoError(t, err)
	assert.Contains(t, text, "Real content here.")
	assert.NotContains(t, text, "preview text junk")
}
