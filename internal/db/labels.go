package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// -----------------------------------------------------------------------------
// Business Label Methods
// -----------------------------------------------------------------------------

const labelColumns = `id, business_id, mailbox_id, path, color, provider_label_id,
	status, sort_order, verified_at, created_at, updated_at`

func scanLabel(row pgx.Row) (*BusinessLabel, error) {
	var l BusinessLabel
	err := row.Scan(&l.ID, &l.BusinessID, &l.MailboxID, &l.Path, &l.Color,
		&l.ProviderLabelID, &l.Status, &l.SortOrder, &l.VerifiedAt, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan label: %w", err)
	}
	return &l, nil
}

// UpsertLabel records a taxonomy path for a mailbox. Existing rows keep
// their provider label ID; only color and sort order follow the taxonomy.
func (db *DB) UpsertLabel(ctx context.Context, businessID, mailboxID uuid.UUID, path, color string, sortOrder int) (*BusinessLabel, error) {
	if path == "" {
		return nil, fmt.Errorf("label path cannot be empty")
	}
	if color == "" {
		color = "#999999"
	}

	return scanLabel(db.pool.QueryRow(ctx,
		`INSERT INTO business_labels (business_id, mailbox_id, path, color, status, sort_order)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (mailbox_id, path)
		 DO UPDATE SET color = $4, sort_order = $6, updated_at = NOW()
		 RETURNING `+labelColumns,
		businessID, mailboxID, path, color, LabelStatusPending, sortOrder,
	))
}

// GetLabelByPath retrieves a label row by mailbox and path
func (db *DB) GetLabelByPath(ctx context.Context, mailboxID uuid.UUID, path string) (*BusinessLabel, error) {
	return scanLabel(db.pool.QueryRow(ctx,
		`SELECT `+labelColumns+` FROM business_labels WHERE mailbox_id = $1 AND path = $2`,
		mailboxID, path))
}

// ListLabels retrieves all label rows for a mailbox in provisioning order
func (db *DB) ListLabels(ctx context.Context, mailboxID uuid.UUID) ([]BusinessLabel, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+labelColumns+` FROM business_labels WHERE mailbox_id = $1 ORDER BY sort_order ASC`,
		mailboxID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	defer rows.Close()

	var labels []BusinessLabel
	for rows.Next() {
		l, err := scanLabel(rows)
		if err != nil {
			return nil, err
		}
		labels = append(labels, *l)
	}
	return labels, nil
}

// SetLabelProviderID stores a verified provider label ID. Status marks
// whether this was a fresh sync or a repair of a stale ID.
func (db *DB) SetLabelProviderID(ctx context.Context, id uuid.UUID, providerLabelID, status string) error {
	if providerLabelID == "" {
		return fmt.Errorf("provider label ID cannot be empty")
	}
	switch status {
	case LabelStatusSynced, LabelStatusRepaired:
	default:
		return fmt.Errorf("invalid label status: %q", status)
	}

	result, err := db.pool.Exec(ctx,
		`UPDATE business_labels
		 SET provider_label_id = $1, status = $2, verified_at = NOW(), updated_at = NOW()
		 WHERE id = $3`,
		providerLabelID, status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to set provider label ID: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("label not found: %s", id)
	}
	return nil
}

// LabelIDMap returns path -> provider label ID for all synced labels of a
// mailbox. This is the map injected into workflow templates.
func (db *DB) LabelIDMap(ctx context.Context, mailboxID uuid.UUID) (map[string]string, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT path, provider_label_id FROM business_labels
		 WHERE mailbox_id = $1 AND provider_label_id IS NOT NULL`,
		mailboxID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load label ID map: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]string)
	for rows.Next() {
		var path, providerID string
		if err := rows.Scan(&path, &providerID); err != nil {
			return nil, fmt.Errorf("failed to scan label ID: %w", err)
		}
		ids[path] = providerID
	}
	return ids, nil
}

// DeleteLabelsNotIn removes label rows whose paths are no longer in the
// taxonomy (e.g. a manager left the team). Provider-side labels are left
// in place; only the mapping is dropped.
func (db *DB) DeleteLabelsNotIn(ctx context.Context, mailboxID uuid.UUID, keepPaths []string) (int, error) {
	result, err := db.pool.Exec(ctx,
		`DELETE FROM business_labels WHERE mailbox_id = $1 AND NOT (path = ANY($2))`,
		mailboxID, keepPaths,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune labels: %w", err)
	}
	return int(result.RowsAffected()), nil
}
