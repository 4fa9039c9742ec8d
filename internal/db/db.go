// Package db provides PostgreSQL database access for the triage service.
package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// CreateTriageRun creates a new triage run record and returns its ID
func (db *DB) CreateTriageRun(ctx context.Context, businessID, mailboxID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO triage_runs (business_id, mailbox_id, status)
		 VALUES ($1, $2, 'running')
		 RETURNING id`,
		businessID, mailboxID,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create triage run: %w", err)
	}
	return id, nil
}

// CompleteTriageRun marks a triage run as completed with message counts
func (db *DB) CompleteTriageRun(ctx context.Context, runID uuid.UUID, status string, processed, failed int) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE triage_runs
		 SET status = $1, messages_processed = $2, messages_failed = $3, completed_at = NOW()
		 WHERE id = $4`,
		status, processed, failed, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete triage run: %w", err)
	}
	return nil
}

// GetTriageRun retrieves a triage run by ID
func (db *DB) GetTriageRun(ctx context.Context, runID uuid.UUID) (*TriageRun, error) {
	var run TriageRun
	err := db.pool.QueryRow(ctx,
		`SELECT id, business_id, mailbox_id, status, messages_processed, messages_failed, created_at, completed_at
		 FROM triage_runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.BusinessID, &run.MailboxID, &run.Status,
		&run.MessagesProcessed, &run.MessagesFailed, &run.CreatedAt, &run.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get triage run: %w", err)
	}
	return &run, nil
}

// ListTriageRuns retrieves recent triage runs for a business
func (db *DB) ListTriageRuns(ctx context.Context, businessID uuid.UUID, limit int) ([]TriageRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, business_id, mailbox_id, status, messages_processed, messages_failed, created_at, completed_at
		 FROM triage_runs WHERE business_id = $1 ORDER BY created_at DESC LIMIT $2`,
		businessID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list triage runs: %w", err)
	}
	defer rows.Close()

	var runs []TriageRun
	for rows.Next() {
		var run TriageRun
		if err := rows.Scan(&run.ID, &run.BusinessID, &run.MailboxID, &run.Status,
			&run.MessagesProcessed, &run.MessagesFailed, &run.CreatedAt, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan triage run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// SaveArtifact stores a JSON artifact for a triage run step
func (db *DB) SaveArtifact(ctx context.Context, runID uuid.UUID, step, category string, content any) error {
	jsonBytes, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO run_artifacts (run_id, step, category, content)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (run_id, step) DO UPDATE SET category = $3, content = $4, created_at = NOW()`,
		runID, step, category, jsonBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to save artifact %s: %w", step, err)
	}
	return nil
}

// GetArtifact retrieves a JSON artifact by run ID and step
func (db *DB) GetArtifact(ctx context.Context, runID uuid.UUID, step string) ([]byte, error) {
	var content []byte
	err := db.pool.QueryRow(ctx,
		`SELECT content FROM run_artifacts WHERE run_id = $1 AND step = $2`,
		runID, step,
	).Scan(&content)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get artifact %s: %w", step, err)
	}
	return content, nil
}

// ListArtifacts retrieves artifact summaries for a run
func (db *DB) ListArtifacts(ctx context.Context, runID uuid.UUID) ([]ArtifactSummary, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, step, COALESCE(category, ''), created_at
		 FROM run_artifacts WHERE run_id = $1 ORDER BY created_at ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []ArtifactSummary
	for rows.Next() {
		var a ArtifactSummary
		if err := rows.Scan(&a.ID, &a.Step, &a.Category, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, nil
}
