package db

import (
	"time"

	"github.com/google/uuid"
)

// Label sync status constants
const (
	LabelStatusPending  = "pending"  // path known, not yet created in the provider
	LabelStatusSynced   = "synced"   // provider ID verified
	LabelStatusRepaired = "repaired" // stored ID was stale and re-resolved by name
)

// BusinessLabel represents one provisioned category for a business.
// ProviderLabelID is the Gmail label ID or Outlook folder ID; it is nil
// until provisioning creates or adopts the label, and is re-verified on
// every provisioning pass.
type BusinessLabel struct {
	ID              uuid.UUID  `json:"id"`
	BusinessID      uuid.UUID  `json:"business_id"`
	MailboxID       uuid.UUID  `json:"mailbox_id"`
	Path            string     `json:"path"`
	Color           string     `json:"color"`
	ProviderLabelID *string    `json:"provider_label_id,omitempty"`
	Status          string     `json:"status"`
	SortOrder       int        `json:"sort_order"`
	VerifiedAt      *time.Time `json:"verified_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
