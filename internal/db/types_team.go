package db

import (
	"time"

	"github.com/google/uuid"
)

// TeamMember represents one manager row for a business
type TeamMember struct {
	ID          uuid.UUID `json:"id"`
	BusinessID  uuid.UUID `json:"business_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Specialties []string  `json:"specialties"`
	OnCall      bool      `json:"on_call"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SupplierRecord represents one known supplier for a business.
// Owner names the manager who handles this vendor's mail; it may be empty.
type SupplierRecord struct {
	ID         uuid.UUID `json:"id"`
	BusinessID uuid.UUID `json:"business_id"`
	Name       string    `json:"name"`
	Domains    []string  `json:"domains"`
	Owner      string    `json:"owner,omitempty"`
	Contact    string    `json:"contact,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
