package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_KnownPrompts(t *testing.T) {
	prompt, err := Get("classification.json", "classify_email")
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.Categories}}")
	assert.Contains(t, prompt, "{{.Body}}")

	draft, err := Get("drafts.json", "draft_reply")
	require.NoError(t, err)
	assert.Contains(t, draft, "{{.Assignee}}")
}

func TestGet_Errors(t *testing.T) {
	_, err := Get("missing.json", "classify_email")
	assert.Error(t, err)

	_, err = Get("classification.json", "no_such_key")
	assert.Error(t, err)
}

func TestMustGet_PanicsOnMissing(t *testing.T) {
	assert.Panics(t, func() {
		MustGet("classification.json", "no_such_key")
	})
}

func TestFormat(t *testing.T) {
	result := Format("Hello {{.Name}}, welcome to {{.Business}}", map[string]string{
		"Name":     "Jen",
		"Business": "The Hot Tub Man",
	})
	assert.Equal(t, "Hello Jen, welcome to The Hot Tub Man", result)

	// Unknown placeholders are left alone.
	result = Format("{{.Kept}}", map[string]string{"Other": "x"})
	assert.Equal(t, "{{.Kept}}", result)
}
