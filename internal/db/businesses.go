package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// -----------------------------------------------------------------------------
// Business Methods
// -----------------------------------------------------------------------------

const businessColumns = `id, name, name_normalized, industry, timezone,
	default_recipient, default_name, voice_summary, custom_categories, onboarding_status, created_at, updated_at`

func scanBusiness(row pgx.Row) (*Business, error) {
	var b Business
	err := row.Scan(&b.ID, &b.Name, &b.NameNormalized, &b.Industry, &b.Timezone,
		&b.DefaultRecipient, &b.DefaultName, &b.VoiceSummary, &b.CustomCategories,
		&b.OnboardingStatus, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan business: %w", err)
	}
	return &b, nil
}

// CreateBusiness creates a business profile. Every NOT NULL column is
// supplied explicitly; onboarding always starts at 'pending'.
func (db *DB) CreateBusiness(ctx context.Context, name, industry, timezone, defaultName, defaultRecipient string, customCategories []string) (*Business, error) {
	normalized := NormalizeName(name)
	if normalized == "" {
		return nil, fmt.Errorf("business name cannot be empty")
	}
	if defaultRecipient == "" {
		return nil, fmt.Errorf("default recipient cannot be empty")
	}
	if timezone == "" {
		timezone = "UTC"
	}
	if customCategories == nil {
		customCategories = []string{}
	}

	return scanBusiness(db.pool.QueryRow(ctx,
		`INSERT INTO businesses (name, name_normalized, industry, timezone, default_recipient, default_name, custom_categories, onboarding_status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+businessColumns,
		name, normalized, industry, timezone, defaultRecipient, defaultName, customCategories, OnboardingStatusPending,
	))
}

// GetBusiness retrieves a business by ID
func (db *DB) GetBusiness(ctx context.Context, id uuid.UUID) (*Business, error) {
	return scanBusiness(db.pool.QueryRow(ctx,
		`SELECT `+businessColumns+` FROM businesses WHERE id = $1`, id))
}

// GetBusinessByNormalizedName retrieves a business by its normalized name
func (db *DB) GetBusinessByNormalizedName(ctx context.Context, normalized string) (*Business, error) {
	return scanBusiness(db.pool.QueryRow(ctx,
		`SELECT `+businessColumns+` FROM businesses WHERE name_normalized = $1`, normalized))
}

// ListBusinesses retrieves businesses with pagination
func (db *DB) ListBusinesses(ctx context.Context, limit, offset int) ([]Business, int, error) {
	var total int
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM businesses`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count businesses: %w", err)
	}

	rows, err := db.pool.Query(ctx,
		`SELECT `+businessColumns+` FROM businesses ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list businesses: %w", err)
	}
	defer rows.Close()

	var businesses []Business
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, 0, err
		}
		businesses = append(businesses, *b)
	}
	return businesses, total, nil
}

// UpdateOnboardingStatus advances a business through the onboarding states
func (db *DB) UpdateOnboardingStatus(ctx context.Context, id uuid.UUID, status string) error {
	switch status {
	case OnboardingStatusPending, OnboardingStatusProvisioned, OnboardingStatusDeployed:
	default:
		return fmt.Errorf("invalid onboarding status: %q", status)
	}

	result, err := db.pool.Exec(ctx,
		`UPDATE businesses SET onboarding_status = $1, updated_at = NOW() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update onboarding status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("business not found: %s", id)
	}
	return nil
}

// UpdateVoiceSummary stores the owner's communication style summary
func (db *DB) UpdateVoiceSummary(ctx context.Context, id uuid.UUID, summary string) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE businesses SET voice_summary = $1, updated_at = NOW() WHERE id = $2`,
		summary, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update voice summary: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("business not found: %s", id)
	}
	return nil
}

// UpdateCustomCategories replaces the business's user-defined top-level
// categories. The taxonomy is regenerated from the row on every read, so the
// new set takes effect on the next provision or triage pass.
func (db *DB) UpdateCustomCategories(ctx context.Context, id uuid.UUID, categories []string) error {
	if categories == nil {
		categories = []string{}
	}

	result, err := db.pool.Exec(ctx,
		`UPDATE businesses SET custom_categories = $1, updated_at = NOW() WHERE id = $2`,
		categories, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update custom categories: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("business not found: %s", id)
	}
	return nil
}

// DeleteBusiness deletes a business and all its dependent rows (via cascade)
func (db *DB) DeleteBusiness(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM businesses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete business: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("business not found: %s", id)
	}
	return nil
}
