package types

import "fmt"

// Classification sources, in precedence order.
const (
	SourceRule     = "rule"     // deterministic rule hit, LLM skipped
	SourceLLM      = "llm"      // LLM output that passed schema validation
	SourceFallback = "fallback" // rule miss + unusable LLM output
)

// Urgency levels for a classified message.
const (
	UrgencyLow    = "low"
	UrgencyNormal = "normal"
	UrgencyHigh   = "high"
)

// ClassificationResult is the outcome of classifying one email against a
// business taxonomy. Category is always a full label path that exists in
// the taxonomy; the classifier guarantees this by falling back to the
// default category rather than emitting an unknown path.
type ClassificationResult struct {
	Category      string  `json:"category"`
	Confidence    float64 `json:"confidence"`
	Urgency       string  `json:"urgency"`
	IsSupplier    bool    `json:"is_supplier"`
	MatchedEntity string  `json:"matched_entity,omitempty"` // manager or supplier name when a team branch matched
	Reasoning     string  `json:"reasoning,omitempty"`
	Source        string  `json:"source"`
}

// Validate checks structural validity of a classification result.
func (c *ClassificationResult) Validate() error {
	if c.Category == "" {
		return fmt.Errorf("classification missing category")
	}
	if c.Confidence < 0 || c.Confidence > 1 {
		return fmt.Errorf("confidence out of range: %f", c.Confidence)
	}
	switch c.Urgency {
	case UrgencyLow, UrgencyNormal, UrgencyHigh:
	default:
		return fmt.Errorf("unknown urgency: %q", c.Urgency)
	}
	switch c.Source {
	case SourceRule, SourceLLM, SourceFallback:
	default:
		return fmt.Errorf("unknown classification source: %q", c.Source)
	}
	return nil
}
