package db

import (
	"time"

	"github.com/google/uuid"
)

// TriageRun represents one triage pipeline execution for a mailbox
type TriageRun struct {
	ID                uuid.UUID  `json:"id"`
	BusinessID        uuid.UUID  `json:"business_id"`
	MailboxID         uuid.UUID  `json:"mailbox_id"`
	Status            string     `json:"status"`
	MessagesProcessed int        `json:"messages_processed"`
	MessagesFailed    int        `json:"messages_failed"`
	CreatedAt         time.Time  `json:"created_at"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
}

// ArtifactSummary is a lightweight view of a run artifact for listing
type ArtifactSummary struct {
	ID        uuid.UUID `json:"id"`
	Step      string    `json:"step"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

// Run status constants
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Artifact step constants for known artifact types
const (
	StepFetchMessages   = "fetch_messages"
	StepParseMessages   = "parse_messages"
	StepClassify        = "classify"
	StepRoute           = "route"
	StepApplyLabels     = "apply_labels"
	StepDraftReplies    = "draft_replies"
	StepRunSummary      = "run_summary"
)

// Artifact category constants
const (
	CategoryIngestion      = "ingestion"
	CategoryClassification = "classification"
	CategoryRouting        = "routing"
	CategoryProvisioning   = "provisioning"
	CategoryDrafting       = "drafting"
)
