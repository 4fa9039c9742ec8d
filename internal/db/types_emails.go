package db

import (
	"time"

	"github.com/google/uuid"
)

// Triage outcome status constants
const (
	EmailStatusClassified = "classified" // label applied, routing recorded
	EmailStatusSkipped    = "skipped"    // already triaged in a previous run
	EmailStatusFailed     = "failed"     // provider rejected the label apply
)

// TriagedEmail records the outcome of one message through the pipeline.
// ProviderMessageID is unique per mailbox so re-running a triage window
// never double-processes a message.
type TriagedEmail struct {
	ID                uuid.UUID `json:"id"`
	RunID             uuid.UUID `json:"run_id"`
	MailboxID         uuid.UUID `json:"mailbox_id"`
	ProviderMessageID string    `json:"provider_message_id"`
	FromAddress       string    `json:"from_address"`
	Subject           string    `json:"subject"`
	Category          string    `json:"category"`
	Confidence        float64   `json:"confidence"`
	Urgency           string    `json:"urgency"`
	Source            string    `json:"source"`
	AssigneeName      string    `json:"assignee_name"`
	AssigneeEmail     string    `json:"assignee_email"`
	RouteReason       string    `json:"route_reason"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
}
