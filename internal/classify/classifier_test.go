package classify

import (
	"context"
	"errors"
	"testing"

	"github.com/floworx/triage-agent/internal/llm"
	"github.com/floworx/triage-agent/internal/taxonomy"
	"github.com/floworx/triage-agent/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLLM returns a canned JSON response or error.
type fakeLLM struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeLLM) GenerateContent(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func (f *fakeLLM) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func (f *fakeLLM) GetModel(llm.ModelTier) string { return "fake-model" }
func (f *fakeLLM) Close() error                  { return nil }

func newTestClassifier(t *testing.T, client llm.Client) *Classifier {
	t.Helper()
	tax, err := taxonomy.Generate(taxonomy.IndustryHotTubSpa, testTeam(), nil)
	require.NoError(t, err)

	c, err := New(client, tax, testTeam(), BusinessInfo{Name: "The Hot Tub Man", Industry: "hot tub & spa"})
	require.NoError(t, err)
	return c
}

func customerMessage() *types.EmailMessage {
	return &types.EmailMessage{
		From:     types.Address{Email: "dave@example.com"},
		Subject:  "Jets seem weak",
		BodyText: "The jets in my spa are weaker than they used to be. Any ideas?",
	}
}

func TestClassify_RuleHitSkipsLLM(t *testing.T) {
	fake := &fakeLLM{}
	c := newTestClassifier(t, fake)

	msg := &types.EmailMessage{
		From:    types.Address{Email: "orders@balboa.com"},
		Subject: "Shipment notice",
	}
	result, err := c.Classify(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, types.SourceRule, result.Source)
	assert.Empty(t, fake.prompts, "LLM should not be called on a rule hit")
}

func TestClassify_LLMResult(t *testing.T) {
	fake := &fakeLLM{response: `{
		"category": "FloWorx/Support/Service Request",
		"confidence": 0.82,
		"urgency": "normal",
		"is_supplier": false,
		"reasoning": "customer reporting weak jets"
	}`}
	c := newTestClassifier(t, fake)

	result, err := c.Classify(context.Background(), customerMessage())
	require.NoError(t, err)
	assert.Equal(t, "FloWorx/Support/Service Request", result.Category)
	assert.Equal(t, types.SourceLLM, result.Source)
	require.NoError(t, result.Validate())

	// Prompt carries the taxonomy and team roster.
	require.Len(t, fake.prompts, 1)
	assert.Contains(t, fake.prompts[0], "FloWorx/Support/Service Request")
	assert.Contains(t, fake.prompts[0], "Balboa")
}

func TestClassify_FallbackCases(t *testing.T) {
	tests := []struct {
		name string
		fake *fakeLLM
	}{
		{"llm error", &fakeLLM{err: errors.New("rate limited")}},
		{"invalid json", &fakeLLM{response: "not json at all"}},
		{"schema violation", &fakeLLM{response: `{"category": "FloWorx/Misc"}`}},
		{"unknown category", &fakeLLM{response: `{"category": "FloWorx/Imaginary", "confidence": 0.9, "urgency": "normal", "is_supplier": false}`}},
		{"low confidence", &fakeLLM{response: `{"category": "FloWorx/Misc", "confidence": 0.1, "urgency": "normal", "is_supplier": false}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClassifier(t, tt.fake)
			result, err := c.Classify(context.Background(), customerMessage())
			require.NoError(t, err, "classification must not fail the pipeline")
			assert.Equal(t, taxonomy.DefaultCategory, result.Category)
			assert.Equal(t, types.SourceFallback, result.Source)
			require.NoError(t, result.Validate())
		})
	}
}

func TestClassify_EmptyMessageFallsBack(t *testing.T) {
	fake := &fakeLLM{}
	c := newTestClassifier(t, fake)

	result, err := c.Classify(context.Background(), &types.EmailMessage{})
	require.NoError(t, err)
	assert.Equal(t, types.SourceFallback, result.Source)
	assert.Empty(t, fake.prompts)
}

func TestClassify_NilMessage(t *testing.T) {
	c := newTestClassifier(t, &fakeLLM{})
	_, err := c.Classify(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilMessage)
}

func TestNew_RequiresTaxonomy(t *testing.T) {
	_, err := New(&fakeLLM{}, nil, nil, BusinessInfo{})
	assert.ErrorIs(t, err, ErrNilTaxonomy)
}
