// Package classify assigns each email a category from the business taxonomy.
// Deterministic rules run first; the LLM only sees mail the rules could not
// place, and unusable LLM output falls back to the default category. A
// classification failure therefore never stops the triage pipeline.
package classify

import (
	"strings"

	"github.com/floworx/triage-agent/internal/taxonomy"
	"github.com/floworx/triage-agent/internal/types"
)

// ruleConfidence is the confidence reported for deterministic rule hits.
const ruleConfidence = 0.98

// urgentKeywords trigger the Urgent category from the subject line.
// Body-only mentions are left to the LLM; quoted threads repeat the word
// "urgent" far too often.
var urgentKeywords = []string{
	"urgent", "emergency", "asap", "right away",
	"no heat", "not heating", "leaking", "leak",
	"sparking", "burning smell",
}

// billingKeywords map to Billing/Invoices.
var billingKeywords = []string{
	"invoice", "past due", "payment received", "receipt", "statement",
}

// salesKeywords map to Sales/New Inquiry.
var salesKeywords = []string{
	"quote", "pricing", "price list", "how much", "estimate", "interested in buying",
}

// RuleEngine evaluates deterministic classification rules against a message.
type RuleEngine struct {
	team *types.Team
}

// NewRuleEngine creates a rule engine for a business team roster.
// A nil team disables the supplier rule but keeps keyword rules.
func NewRuleEngine(team *types.Team) *RuleEngine {
	return &RuleEngine{team: team}
}

// Evaluate runs the rules in precedence order: supplier domain, urgency,
// billing, sales. Returns nil when no rule hits, handing the message to
// the LLM stage.
func (e *RuleEngine) Evaluate(msg *types.EmailMessage) *types.ClassificationResult {
	if msg == nil {
		return nil
	}

	if e.team != nil {
		if supplier := e.team.SupplierForDomain(msg.From.Domain()); supplier != nil {
			return &types.ClassificationResult{
				Category:      taxonomy.SupplierCategory(supplier.Name),
				Confidence:    ruleConfidence,
				Urgency:       types.UrgencyNormal,
				IsSupplier:    true,
				MatchedEntity: supplier.Name,
				Reasoning:     "sender domain matches supplier " + supplier.Name,
				Source:        types.SourceRule,
			}
		}
	}

	subject := strings.ToLower(msg.Subject)

	if kw := firstMatch(subject, urgentKeywords); kw != "" {
		return &types.ClassificationResult{
			Category:   taxonomy.RootName + "/Urgent",
			Confidence: ruleConfidence,
			Urgency:    types.UrgencyHigh,
			Reasoning:  "subject contains urgency keyword " + strconvQuote(kw),
			Source:     types.SourceRule,
		}
	}

	if kw := firstMatch(subject, billingKeywords); kw != "" {
		return &types.ClassificationResult{
			Category:   taxonomy.RootName + "/Billing/Invoices",
			Confidence: ruleConfidence,
			Urgency:    types.UrgencyNormal,
			Reasoning:  "subject contains billing keyword " + strconvQuote(kw),
			Source:     types.SourceRule,
		}
	}

	if kw := firstMatch(subject, salesKeywords); kw != "" {
		return &types.ClassificationResult{
			Category:   taxonomy.RootName + "/Sales/New Inquiry",
			Confidence: ruleConfidence,
			Urgency:    types.UrgencyNormal,
			Reasoning:  "subject contains sales keyword " + strconvQuote(kw),
			Source:     types.SourceRule,
		}
	}

	return nil
}

// firstMatch returns the first keyword contained in text, or "".
func firstMatch(text string, keywords []string) string {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return kw
		}
	}
	return ""
}

func strconvQuote(s string) string {
	return `"` + s + `"`
}
