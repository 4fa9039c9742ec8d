package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// -----------------------------------------------------------------------------
// Mailbox Methods
// -----------------------------------------------------------------------------

const mailboxColumns = `id, business_id, provider, address, status, token_json,
	history_mark, last_synced_at, created_at, updated_at`

func scanMailbox(row pgx.Row) (*Mailbox, error) {
	var m Mailbox
	err := row.Scan(&m.ID, &m.BusinessID, &m.Provider, &m.Address, &m.Status,
		&m.TokenJSON, &m.HistoryMark, &m.LastSyncedAt, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan mailbox: %w", err)
	}
	return &m, nil
}

// CreateMailbox registers a connected mailbox with its initial OAuth token.
// Re-connecting the same address for a business replaces the stored token.
func (db *DB) CreateMailbox(ctx context.Context, businessID uuid.UUID, provider, address string, tokenJSON []byte) (*Mailbox, error) {
	if !ValidProvider(provider) {
		return nil, fmt.Errorf("invalid provider: %q", provider)
	}
	if address == "" {
		return nil, fmt.Errorf("mailbox address cannot be empty")
	}
	if len(tokenJSON) == 0 {
		return nil, fmt.Errorf("token cannot be empty")
	}

	return scanMailbox(db.pool.QueryRow(ctx,
		`INSERT INTO mailboxes (business_id, provider, address, status, token_json)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (business_id, address)
		 DO UPDATE SET provider = $2, status = $4, token_json = $5, updated_at = NOW()
		 RETURNING `+mailboxColumns,
		businessID, provider, address, MailboxStatusConnected, tokenJSON,
	))
}

// GetMailbox retrieves a mailbox by ID
func (db *DB) GetMailbox(ctx context.Context, id uuid.UUID) (*Mailbox, error) {
	return scanMailbox(db.pool.QueryRow(ctx,
		`SELECT `+mailboxColumns+` FROM mailboxes WHERE id = $1`, id))
}

// ListMailboxes retrieves all mailboxes for a business
func (db *DB) ListMailboxes(ctx context.Context, businessID uuid.UUID) ([]Mailbox, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+mailboxColumns+` FROM mailboxes WHERE business_id = $1 ORDER BY created_at ASC`,
		businessID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list mailboxes: %w", err)
	}
	defer rows.Close()

	var mailboxes []Mailbox
	for rows.Next() {
		m, err := scanMailbox(rows)
		if err != nil {
			return nil, err
		}
		mailboxes = append(mailboxes, *m)
	}
	return mailboxes, nil
}

// UpdateMailboxToken persists a refreshed OAuth token. Called immediately
// after every token rotation; a rotated refresh token that is not stored
// before first use strands the mailbox.
func (db *DB) UpdateMailboxToken(ctx context.Context, id uuid.UUID, tokenJSON []byte) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE mailboxes SET token_json = $1, status = $2, updated_at = NOW() WHERE id = $3`,
		tokenJSON, MailboxStatusConnected, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update mailbox token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("mailbox not found: %s", id)
	}
	return nil
}

// MarkMailboxDisconnected flags a mailbox whose refresh token is no longer
// valid. Triage skips disconnected mailboxes instead of retry-looping.
func (db *DB) MarkMailboxDisconnected(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE mailboxes SET status = $1, updated_at = NOW() WHERE id = $2`,
		MailboxStatusDisconnected, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark mailbox disconnected: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("mailbox not found: %s", id)
	}
	return nil
}

// UpdateMailboxSyncState stores the provider sync cursor after a triage run
func (db *DB) UpdateMailboxSyncState(ctx context.Context, id uuid.UUID, historyMark string) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE mailboxes SET history_mark = $1, last_synced_at = NOW(), updated_at = NOW() WHERE id = $2`,
		historyMark, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update mailbox sync state: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("mailbox not found: %s", id)
	}
	return nil
}

// DeleteMailbox removes a mailbox connection
func (db *DB) DeleteMailbox(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM mailboxes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete mailbox: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("mailbox not found: %s", id)
	}
	return nil
}
