package db

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Business represents a customer business profile
type Business struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	NameNormalized   string    `json:"name_normalized"`
	Industry         string    `json:"industry"`
	Timezone         string    `json:"timezone"`
	DefaultRecipient string    `json:"default_recipient"`
	DefaultName      string    `json:"default_name"`
	VoiceSummary     *string   `json:"voice_summary,omitempty"`
	CustomCategories []string  `json:"custom_categories"`
	OnboardingStatus string    `json:"onboarding_status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Onboarding status constants
const (
	OnboardingStatusPending     = "pending"      // profile created, nothing provisioned
	OnboardingStatusProvisioned = "provisioned"  // labels exist in the provider
	OnboardingStatusDeployed    = "deployed"     // workflow deployed and active
)

var normalizePattern = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeName produces a canonical lookup key for a business name:
// lowercase, alphanumerics only.
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return normalizePattern.ReplaceAllString(name, "")
}
