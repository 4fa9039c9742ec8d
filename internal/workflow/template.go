// Package workflow turns a per-business configuration into a deployed n8n
// workflow. Templates are embedded and versioned; configuration is injected
// into {{TOKEN}} placeholders, validated against the workflow schema, and
// pushed to n8n. Deploys are content-addressed, so an unchanged config is
// never redeployed.
package workflow

import (
	"embed"
	"fmt"
)

//go:embed templates/*.json
var templateFS embed.FS

// CurrentTemplateVersion is the template new deployments use
const CurrentTemplateVersion = "email_triage_v2"

// LoadTemplate returns the raw template document for a version
func LoadTemplate(version string) ([]byte, error) {
	data, err := templateFS.ReadFile("templates/" + version + ".json")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, version)
	}
	return data, nil
}
