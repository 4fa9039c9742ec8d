// Package provision reconciles a business's category taxonomy against the
// labels that actually exist in the connected mailbox. It plans a diff,
// applies it parent-before-child, and verifies stored provider IDs on every
// pass, repairing IDs that went stale.
package provision

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/floworx/triage-agent/internal/db"
	"github.com/floworx/triage-agent/internal/types"
)

// Provider is the mailbox label surface provisioning drives. Gmail and
// Outlook clients both satisfy it.
type Provider interface {
	ListLabels(ctx context.Context) ([]types.RemoteLabel, error)
	CreateLabel(ctx context.Context, path, color, parentID string) (*types.RemoteLabel, error)
	UpdateLabelColor(ctx context.Context, id, color string) error
	GetLabel(ctx context.Context, id string) (*types.RemoteLabel, error)
}

// LabelStore is the subset of db.DB provisioning persists through
type LabelStore interface {
	UpsertLabel(ctx context.Context, businessID, mailboxID uuid.UUID, path, color string, sortOrder int) (*db.BusinessLabel, error)
	ListLabels(ctx context.Context, mailboxID uuid.UUID) ([]db.BusinessLabel, error)
	SetLabelProviderID(ctx context.Context, id uuid.UUID, providerLabelID, status string) error
	DeleteLabelsNotIn(ctx context.Context, mailboxID uuid.UUID, keepPaths []string) (int, error)
}

// Provisioner reconciles one mailbox
type Provisioner struct {
	provider Provider
	store    LabelStore
	workers  int
}

// New creates a Provisioner. workers bounds concurrent provider calls
// within one nesting level; levels themselves run sequentially so parents
// always exist before their children.
func New(provider Provider, store LabelStore, workers int) *Provisioner {
	if workers < 1 {
		workers = 1
	}
	return &Provisioner{provider: provider, store: store, workers: workers}
}

// parentPath returns the parent of a taxonomy path, or "" for roots
func parentPath(path string) string {
	idx := strings.LastIndex(path, types.PathSeparator)
	if idx < 0 {
		return ""
	}
	return path[:idx]
}

// pathDepth counts nesting levels, with roots at depth 0
func pathDepth(path string) int {
	return strings.Count(path, types.PathSeparator)
}
