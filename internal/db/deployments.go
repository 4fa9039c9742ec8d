package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// -----------------------------------------------------------------------------
// Workflow Deployment Methods
// -----------------------------------------------------------------------------

const deploymentColumns = `id, business_id, mailbox_id, template_version, config_hash,
	n8n_workflow_id, status, deployed_at, created_at, updated_at`

func scanDeployment(row pgx.Row) (*WorkflowDeployment, error) {
	var d WorkflowDeployment
	err := row.Scan(&d.ID, &d.BusinessID, &d.MailboxID, &d.TemplateVersion, &d.ConfigHash,
		&d.N8NWorkflowID, &d.Status, &d.DeployedAt, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan deployment: %w", err)
	}
	return &d, nil
}

// RecordDeployment creates or updates the deployment row for a mailbox.
// One active workflow per mailbox; re-deploying replaces the record.
func (db *DB) RecordDeployment(ctx context.Context, businessID, mailboxID uuid.UUID, templateVersion, configHash, n8nWorkflowID, status string) (*WorkflowDeployment, error) {
	if configHash == "" {
		return nil, fmt.Errorf("config hash cannot be empty")
	}
	if n8nWorkflowID == "" {
		return nil, fmt.Errorf("n8n workflow ID cannot be empty")
	}
	switch status {
	case DeploymentStatusActive, DeploymentStatusInactive, DeploymentStatusFailed:
	default:
		return nil, fmt.Errorf("invalid deployment status: %q", status)
	}

	return scanDeployment(db.pool.QueryRow(ctx,
		`INSERT INTO workflow_deployments (business_id, mailbox_id, template_version,
			config_hash, n8n_workflow_id, status, deployed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW())
		 ON CONFLICT (mailbox_id)
		 DO UPDATE SET template_version = $3, config_hash = $4, n8n_workflow_id = $5,
			status = $6, deployed_at = NOW(), updated_at = NOW()
		 RETURNING `+deploymentColumns,
		businessID, mailboxID, templateVersion, configHash, n8nWorkflowID, status,
	))
}

// GetDeployment retrieves the deployment record for a mailbox
func (db *DB) GetDeployment(ctx context.Context, mailboxID uuid.UUID) (*WorkflowDeployment, error) {
	return scanDeployment(db.pool.QueryRow(ctx,
		`SELECT `+deploymentColumns+` FROM workflow_deployments WHERE mailbox_id = $1`,
		mailboxID))
}

// ListDeployments retrieves all deployment records for a business
func (db *DB) ListDeployments(ctx context.Context, businessID uuid.UUID) ([]WorkflowDeployment, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+deploymentColumns+` FROM workflow_deployments WHERE business_id = $1 ORDER BY created_at ASC`,
		businessID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list deployments: %w", err)
	}
	defer rows.Close()

	var deployments []WorkflowDeployment
	for rows.Next() {
		d, err := scanDeployment(rows)
		if err != nil {
			return nil, err
		}
		deployments = append(deployments, *d)
	}
	return deployments, nil
}

// UpdateDeploymentStatus flips a deployment between active and inactive
func (db *DB) UpdateDeploymentStatus(ctx context.Context, mailboxID uuid.UUID, status string) error {
	switch status {
	case DeploymentStatusActive, DeploymentStatusInactive, DeploymentStatusFailed:
	default:
		return fmt.Errorf("invalid deployment status: %q", status)
	}

	result, err := db.pool.Exec(ctx,
		`UPDATE workflow_deployments SET status = $1, updated_at = NOW() WHERE mailbox_id = $2`,
		status, mailboxID,
	)
	if err != nil {
		return fmt.Errorf("failed to update deployment status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("deployment not found for mailbox: %s", mailboxID)
	}
	return nil
}
