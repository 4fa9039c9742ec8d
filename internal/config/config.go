// Package config provides configuration loading and validation for the service.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the service configuration that can be loaded from a JSON
// file. All fields are optional; missing values use defaults or must be
// provided via CLI flags or environment variables.
type Config struct {
	// Connections
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	GeminiKey   string `json:"gemini_api_key,omitempty"`
	N8NBaseURL  string `json:"n8n_base_url,omitempty"` // n8n REST API base URL
	N8NAPIKey   string `json:"n8n_api_key,omitempty"`

	// AgentBaseURL is the public URL of this service, injected into deployed
	// workflows so they can call back into the triage API.
	AgentBaseURL string `json:"agent_base_url,omitempty"`

	// OAuth app credentials
	GoogleClientID        string `json:"google_client_id,omitempty"`
	GoogleClientSecret    string `json:"google_client_secret,omitempty"`
	MicrosoftClientID     string `json:"microsoft_client_id,omitempty"`
	MicrosoftClientSecret string `json:"microsoft_client_secret,omitempty"`
	MicrosoftTenant       string `json:"microsoft_tenant,omitempty"` // defaults to "common"

	// Behavior
	MaxMessagesPerRun int  `json:"max_messages_per_run,omitempty"` // triage batch cap
	ProvisionWorkers  int  `json:"provision_workers,omitempty"`    // concurrent label creates per depth level
	Verbose           bool `json:"verbose,omitempty"`
}

// Load loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv builds a Config from environment variables. Values already set on
// the receiver are kept; env only fills blanks, so a config file merged with
// env behaves like flag > file > env.
func (c *Config) FromEnv() *Config {
	fill := func(dst *string, key string) {
		if *dst == "" {
			*dst = os.Getenv(key)
		}
	}
	fill(&c.DatabaseURL, "DATABASE_URL")
	fill(&c.GeminiKey, "GEMINI_API_KEY")
	fill(&c.N8NBaseURL, "N8N_BASE_URL")
	fill(&c.N8NAPIKey, "N8N_API_KEY")
	fill(&c.AgentBaseURL, "AGENT_BASE_URL")
	fill(&c.GoogleClientID, "GOOGLE_CLIENT_ID")
	fill(&c.GoogleClientSecret, "GOOGLE_CLIENT_SECRET")
	fill(&c.MicrosoftClientID, "MICROSOFT_CLIENT_ID")
	fill(&c.MicrosoftClientSecret, "MICROSOFT_CLIENT_SECRET")
	fill(&c.MicrosoftTenant, "MICROSOFT_TENANT")
	return c
}

// Validate checks that the configuration has valid values.
// Connection strings are not required here; commands that need them check
// for their presence individually.
func (c *Config) Validate() error {
	if c.MaxMessagesPerRun < 0 {
		return fmt.Errorf("config error: 'max_messages_per_run' must be non-negative")
	}
	if c.ProvisionWorkers < 0 {
		return fmt.Errorf("config error: 'provision_workers' must be non-negative")
	}
	return nil
}

// WithDefaults returns the config with zero-valued behavior fields replaced
// by service defaults.
func (c *Config) WithDefaults() *Config {
	if c.MaxMessagesPerRun == 0 {
		c.MaxMessagesPerRun = 50
	}
	if c.ProvisionWorkers == 0 {
		c.ProvisionWorkers = 4
	}
	if c.MicrosoftTenant == "" {
		c.MicrosoftTenant = "common"
	}
	return c
}
