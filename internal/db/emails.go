package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/floworx/triage-agent/internal/types"
)

// -----------------------------------------------------------------------------
// Triaged Email Methods
// -----------------------------------------------------------------------------

const triagedEmailColumns = `id, run_id, mailbox_id, provider_message_id, from_address,
	subject, category, confidence, urgency, source, assignee_name, assignee_email,
	route_reason, status, created_at`

func scanTriagedEmail(row pgx.Row) (*TriagedEmail, error) {
	var e TriagedEmail
	err := row.Scan(&e.ID, &e.RunID, &e.MailboxID, &e.ProviderMessageID, &e.FromAddress,
		&e.Subject, &e.Category, &e.Confidence, &e.Urgency, &e.Source,
		&e.AssigneeName, &e.AssigneeEmail, &e.RouteReason, &e.Status, &e.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan triaged email: %w", err)
	}
	return &e, nil
}

// RecordTriagedEmail persists the classification and routing outcome for one
// message. Conflicts on (mailbox_id, provider_message_id) mean the message was
// already triaged; the original row wins and the caller sees the stored copy.
func (db *DB) RecordTriagedEmail(ctx context.Context, runID, mailboxID uuid.UUID, msg *types.EmailMessage, cls *types.ClassificationResult, route *types.RoutingDecision, status string) (*TriagedEmail, error) {
	if msg == nil || cls == nil || route == nil {
		return nil, fmt.Errorf("message, classification and routing are all required")
	}
	if msg.MessageID == "" {
		return nil, fmt.Errorf("provider message ID cannot be empty")
	}
	switch status {
	case EmailStatusClassified, EmailStatusSkipped, EmailStatusFailed:
	default:
		return nil, fmt.Errorf("invalid email status: %q", status)
	}

	return scanTriagedEmail(db.pool.QueryRow(ctx,
		`INSERT INTO triaged_emails (run_id, mailbox_id, provider_message_id, from_address,
			subject, category, confidence, urgency, source, assignee_name, assignee_email,
			route_reason, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 ON CONFLICT (mailbox_id, provider_message_id) DO UPDATE SET run_id = triaged_emails.run_id
		 RETURNING `+triagedEmailColumns,
		runID, mailboxID, msg.MessageID, msg.From.Email,
		msg.Subject, cls.Category, cls.Confidence, string(cls.Urgency), string(cls.Source),
		route.AssigneeName, route.AssigneeEmail, string(route.Reason), status,
	))
}

// WasTriaged reports whether a provider message has already been processed
func (db *DB) WasTriaged(ctx context.Context, mailboxID uuid.UUID, providerMessageID string) (bool, error) {
	var exists bool
	err := db.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM triaged_emails WHERE mailbox_id = $1 AND provider_message_id = $2)`,
		mailboxID, providerMessageID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check triaged email: %w", err)
	}
	return exists, nil
}

// ListTriagedEmails retrieves the outcomes recorded for one run
func (db *DB) ListTriagedEmails(ctx context.Context, runID uuid.UUID) ([]TriagedEmail, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+triagedEmailColumns+` FROM triaged_emails WHERE run_id = $1 ORDER BY created_at ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list triaged emails: %w", err)
	}
	defer rows.Close()

	var emails []TriagedEmail
	for rows.Next() {
		e, err := scanTriagedEmail(rows)
		if err != nil {
			return nil, err
		}
		emails = append(emails, *e)
	}
	return emails, nil
}

// CategoryCounts aggregates triaged volume per category for a mailbox.
// Used by the run summary artifact.
func (db *DB) CategoryCounts(ctx context.Context, mailboxID uuid.UUID) (map[string]int, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT category, COUNT(*) FROM triaged_emails WHERE mailbox_id = $1 GROUP BY category`,
		mailboxID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count categories: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, fmt.Errorf("failed to scan category count: %w", err)
		}
		counts[category] = n
	}
	return counts, nil
}
