package db

import (
	"time"

	"github.com/google/uuid"
)

// Mailbox provider constants
const (
	ProviderGmail   = "gmail"
	ProviderOutlook = "outlook"
)

// Mailbox connection status constants
const (
	MailboxStatusConnected    = "connected"
	MailboxStatusDisconnected = "disconnected" // refresh token revoked or expired
)

// Mailbox represents a connected email account for a business.
// The OAuth token lives here as an encrypted-at-rest JSON blob; the oauth
// package owns its refresh lifecycle.
type Mailbox struct {
	ID           uuid.UUID  `json:"id"`
	BusinessID   uuid.UUID  `json:"business_id"`
	Provider     string     `json:"provider"`
	Address      string     `json:"address"`
	Status       string     `json:"status"`
	TokenJSON    []byte     `json:"-"` // never serialized in API responses
	HistoryMark  *string    `json:"history_mark,omitempty"` // provider sync cursor
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ValidProvider reports whether the provider string is supported.
func ValidProvider(provider string) bool {
	return provider == ProviderGmail || provider == ProviderOutlook
}
