package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/floworx/triage-agent/internal/llm"
	"github.com/floworx/triage-agent/internal/mail"
	"github.com/floworx/triage-agent/internal/prompts"
	"github.com/floworx/triage-agent/internal/schemas"
	"github.com/floworx/triage-agent/internal/taxonomy"
	"github.com/floworx/triage-agent/internal/types"
)

// minLLMConfidence is the floor below which LLM output is treated as a miss.
const minLLMConfidence = 0.4

// BusinessInfo carries the business context injected into prompts.
type BusinessInfo struct {
	Name     string
	Industry string
}

// Classifier classifies emails against one business taxonomy.
type Classifier struct {
	client   llm.Client
	rules    *RuleEngine
	tax      *types.Taxonomy
	team     *types.Team
	business BusinessInfo
}

// New creates a classifier. The taxonomy is required; team may be nil.
func New(client llm.Client, tax *types.Taxonomy, team *types.Team, business BusinessInfo) (*Classifier, error) {
	if tax == nil || tax.Root == nil {
		return nil, ErrNilTaxonomy
	}
	return &Classifier{
		client:   client,
		rules:    NewRuleEngine(team),
		tax:      tax,
		team:     team,
		business: business,
	}, nil
}

// Classify assigns a category to the message. The returned result is always
// usable: a rule hit, a schema-valid LLM result whose category exists in the
// taxonomy, or the default-category fallback. Only a nil message is an error.
func (c *Classifier) Classify(ctx context.Context, msg *types.EmailMessage) (*types.ClassificationResult, error) {
	if msg == nil {
		return nil, ErrNilMessage
	}

	if result := c.rules.Evaluate(msg); result != nil {
		return result, nil
	}

	if !msg.HasBody() {
		return c.fallback("message has no classifiable text"), nil
	}

	result, err := c.classifyWithLLM(ctx, msg)
	if err != nil {
		log.Printf("[classify] LLM classification failed, using fallback: %v", err)
		return c.fallback(err.Error()), nil
	}

	return result, nil
}

// classifyWithLLM runs the LLM stage and validates its output.
func (c *Classifier) classifyWithLLM(ctx context.Context, msg *types.EmailMessage) (*types.ClassificationResult, error) {
	template, err := prompts.Get("classification.json", "classify_email")
	if err != nil {
		return nil, err
	}

	prompt := prompts.Format(template, map[string]string{
		"BusinessName":    c.business.Name,
		"Industry":        c.business.Industry,
		"Categories":      c.categoryList(),
		"TeamContext":     c.teamContext(),
		"DefaultCategory": taxonomy.DefaultCategory,
		"From":            msg.From.String(),
		"Subject":         msg.Subject,
		"Body":            mail.TruncateForPrompt(msg.BodyText),
	})

	raw, err := c.client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return nil, fmt.Errorf("LLM request failed: %w", err)
	}

	if err := schemas.Validate(schemas.ClassificationResultSchema, []byte(raw)); err != nil {
		return nil, fmt.Errorf("LLM output failed schema validation: %w", err)
	}

	var result types.ClassificationResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("failed to parse LLM output: %w", err)
	}
	result.Source = types.SourceLLM

	// The category must exist in the taxonomy; the LLM occasionally invents
	// plausible-looking paths.
	if c.tax.Find(result.Category) == nil {
		return nil, fmt.Errorf("LLM returned unknown category %q", result.Category)
	}

	if result.Confidence < minLLMConfidence {
		return nil, fmt.Errorf("LLM confidence %.2f below threshold", result.Confidence)
	}

	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("invalid classification: %w", err)
	}

	return &result, nil
}

// fallback builds the default-category result.
func (c *Classifier) fallback(reason string) *types.ClassificationResult {
	return &types.ClassificationResult{
		Category:   taxonomy.DefaultCategory,
		Confidence: 0.1,
		Urgency:    types.UrgencyNormal,
		Reasoning:  reason,
		Source:     types.SourceFallback,
	}
}

// categoryList renders the taxonomy leaf paths for the prompt. Parents with
// children are listed too; the LLM may choose either level.
func (c *Classifier) categoryList() string {
	var sb strings.Builder
	for _, path := range c.tax.Paths() {
		if path == taxonomy.RootName {
			continue // the bare root is not a valid classification target
		}
		sb.WriteString("- ")
		sb.WriteString(path)
		sb.WriteString("\n")
	}
	return sb.String()
}

// teamContext renders manager specialties and supplier domains for the prompt.
func (c *Classifier) teamContext() string {
	if c.team == nil {
		return "No team roster configured."
	}

	var sb strings.Builder
	if len(c.team.Managers) > 0 {
		var lines []string
		for _, m := range c.team.Managers {
			line := "- " + m.Name
			if len(m.Specialties) > 0 {
				line += ": " + strings.Join(m.Specialties, ", ")
			}
			lines = append(lines, line)
		}
		sb.WriteString(prompts.Format(prompts.MustGet("classification.json", "team_context_managers"),
			map[string]string{"Managers": strings.Join(lines, "\n")}))
		sb.WriteString("\n")
	}
	if len(c.team.Suppliers) > 0 {
		var lines []string
		for _, s := range c.team.Suppliers {
			lines = append(lines, "- "+s.Name+": "+strings.Join(s.Domains, ", "))
		}
		sb.WriteString(prompts.Format(prompts.MustGet("classification.json", "team_context_suppliers"),
			map[string]string{"Suppliers": strings.Join(lines, "\n")}))
	}
	if sb.Len() == 0 {
		return "No team roster configured."
	}
	return sb.String()
}
