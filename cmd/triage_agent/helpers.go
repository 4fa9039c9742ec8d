package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/floworx/triage-agent/internal/config"
	"github.com/floworx/triage-agent/internal/db"
	"github.com/floworx/triage-agent/internal/oauth"
	"github.com/floworx/triage-agent/internal/pipeline"
	"github.com/floworx/triage-agent/internal/providers/gmail"
	"github.com/floworx/triage-agent/internal/providers/outlook"
	"github.com/floworx/triage-agent/internal/provision"
	"github.com/floworx/triage-agent/internal/taxonomy"
	"github.com/floworx/triage-agent/internal/types"
)

// mailClient is the combined provider surface the CLI drives
type mailClient interface {
	provision.Provider
	pipeline.Mailer
}

// loadConfig merges an optional config file with environment variables and
// service defaults. Flag > file > env, matching the server.
func loadConfig(path string) (*config.Config, error) {
	cfg := &config.Config{}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg = cfg.FromEnv().WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openDB connects to PostgreSQL using the configured URL
func openDB(ctx context.Context, cfg *config.Config) (*db.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("database URL is required (set DATABASE_URL or database_url in config)")
	}
	return db.Connect(ctx, cfg.DatabaseURL)
}

// businessContext bundles what most commands need about one business
type businessContext struct {
	Business *db.Business
	Team     *types.Team
	Taxonomy *types.Taxonomy
}

// loadBusinessContext fetches the business, its roster, and the generated
// taxonomy.
func loadBusinessContext(ctx context.Context, database *db.DB, businessID uuid.UUID) (*businessContext, error) {
	business, err := database.GetBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if business == nil {
		return nil, fmt.Errorf("business not found: %s", businessID)
	}

	team, err := database.LoadTeam(ctx, businessID)
	if err != nil {
		return nil, err
	}

	tax, err := taxonomy.Generate(business.Industry, team, business.CustomCategories)
	if err != nil {
		return nil, err
	}

	return &businessContext{Business: business, Team: team, Taxonomy: tax}, nil
}

// mailClientFor builds a provider client for the mailbox using its stored
// OAuth token.
func mailClientFor(ctx context.Context, cfg *config.Config, database *db.DB, mailbox *db.Mailbox) (mailClient, error) {
	manager := oauth.NewManager(cfg, database)
	httpClient, err := manager.ClientFor(ctx, mailbox)
	if err != nil {
		return nil, err
	}

	switch mailbox.Provider {
	case db.ProviderGmail:
		return gmail.NewClient(ctx, httpClient)
	case db.ProviderOutlook:
		return outlook.NewClient(httpClient), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", mailbox.Provider)
	}
}

// loadMailbox fetches a mailbox by ID string
func loadMailbox(ctx context.Context, database *db.DB, idStr string) (*db.Mailbox, error) {
	mailboxID, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid mailbox ID %q: %w", idStr, err)
	}
	mailbox, err := database.GetMailbox(ctx, mailboxID)
	if err != nil {
		return nil, err
	}
	if mailbox == nil {
		return nil, fmt.Errorf("mailbox not found: %s", mailboxID)
	}
	return mailbox, nil
}
