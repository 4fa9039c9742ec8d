package workflow

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/floworx/triage-agent/internal/schemas"
	"github.com/floworx/triage-agent/internal/taxonomy"
	"github.com/floworx/triage-agent/internal/types"
)

// placeholderPattern matches injection tokens. n8n's own expressions look
// like {{ $json.field }}; the uppercase no-space form keeps the two
// namespaces disjoint.
var placeholderPattern = regexp.MustCompile(`\{\{[A-Z][A-Z0-9_]*\}\}`)

// Inject resolves every placeholder in the template with values from the
// config and validates the result against the workflow schema. Injection is
// strict: any token left unresolved fails the whole deploy.
func Inject(template []byte, cfg *types.WorkflowConfig) ([]byte, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	values, err := placeholderValues(cfg)
	if err != nil {
		return nil, err
	}

	doc := string(template)
	for token, value := range values {
		doc = strings.ReplaceAll(doc, "{{"+token+"}}", jsonEscape(value))
	}

	if leftover := placeholderPattern.FindAllString(doc, -1); len(leftover) > 0 {
		sort.Strings(leftover)
		return nil, fmt.Errorf("%w: %s", ErrUnresolvedPlaceholder, strings.Join(dedupe(leftover), ", "))
	}

	if vErr := schemas.Validate(schemas.WorkflowDocumentSchema, []byte(doc)); vErr != nil {
		return nil, fmt.Errorf("injected workflow failed validation: %w", vErr)
	}

	return []byte(doc), nil
}

func placeholderValues(cfg *types.WorkflowConfig) (map[string]string, error) {
	labelMap, err := json.Marshal(cfg.LabelIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode label map: %w", err)
	}
	managers, err := json.Marshal(cfg.Managers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode managers: %w", err)
	}
	suppliers, err := json.Marshal(cfg.Suppliers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode suppliers: %w", err)
	}

	defaultLabelID := cfg.LabelIDs[taxonomy.DefaultCategory]
	if defaultLabelID == "" {
		return nil, fmt.Errorf("label map has no ID for %q; provision the mailbox first", taxonomy.DefaultCategory)
	}

	timezone := cfg.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	return map[string]string{
		"WORKFLOW_NAME":    fmt.Sprintf("%s email triage", cfg.BusinessName),
		"BUSINESS_NAME":    cfg.BusinessName,
		"INDUSTRY":         cfg.Industry,
		"MAILBOX_ADDRESS":  cfg.Mailbox,
		"MAILBOX_ID":       cfg.MailboxID,
		"PROVIDER":         cfg.Provider,
		"TIMEZONE":         timezone,
		"AGENT_BASE_URL":   cfg.AgentBaseURL,
		"CREDENTIAL_REF":   cfg.CredentialRef,
		"LABEL_MAP_JSON":   string(labelMap),
		"MANAGERS_JSON":    string(managers),
		"SUPPLIERS_JSON":   string(suppliers),
		"DEFAULT_LABEL_ID": defaultLabelID,
	}, nil
}

// jsonEscape escapes a value for substitution inside a JSON string literal
func jsonEscape(value string) string {
	encoded, _ := json.Marshal(value)
	// Trim the surrounding quotes json.Marshal adds.
	return string(encoded[1 : len(encoded)-1])
}

func dedupe(sorted []string) []string {
	out := sorted[:0]
	for i, s := range sorted {
		if i == 0 || s != sorted[i-1] {
			out = append(out, s)
		}
	}
	return out
}
