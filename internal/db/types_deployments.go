package db

import (
	"time"

	"github.com/google/uuid"
)

// Workflow deployment status constants
const (
	DeploymentStatusActive   = "active"
	DeploymentStatusInactive = "inactive"
	DeploymentStatusFailed   = "failed"
)

// WorkflowDeployment tracks the n8n workflow deployed for a mailbox.
// ConfigHash is the content hash of the injected configuration; deploys
// with an unchanged hash are skipped.
type WorkflowDeployment struct {
	ID              uuid.UUID `json:"id"`
	BusinessID      uuid.UUID `json:"business_id"`
	MailboxID       uuid.UUID `json:"mailbox_id"`
	TemplateVersion string    `json:"template_version"`
	ConfigHash      string    `json:"config_hash"`
	N8NWorkflowID   string    `json:"n8n_workflow_id"`
	Status          string    `json:"status"`
	DeployedAt      time.Time `json:"deployed_at"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
