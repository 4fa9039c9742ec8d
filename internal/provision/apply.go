package provision

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/floworx/triage-agent/internal/db"
)

// ApplyResult summarizes one reconciliation pass
type ApplyResult struct {
	Created   int `json:"created"`
	Adopted   int `json:"adopted"`
	Recolored int `json:"recolored"`
	Pruned    int `json:"pruned"`
}

// Apply executes a plan against the provider and records every verified
// provider ID. Levels run in depth order so a parent's ID exists before any
// of its children are created; within a level, provider calls run
// concurrently up to the worker limit.
func (p *Provisioner) Apply(ctx context.Context, businessID, mailboxID uuid.UUID, plan *Plan) (*ApplyResult, error) {
	if plan == nil || len(plan.Items) == 0 {
		return &ApplyResult{}, nil
	}

	// Persist every row first so the mapping table always reflects the
	// full taxonomy, even if the provider fails partway.
	rowIDs := make(map[string]uuid.UUID, len(plan.Items))
	keepPaths := make([]string, 0, len(plan.Items))
	for i, item := range plan.Items {
		row, err := p.store.UpsertLabel(ctx, businessID, mailboxID, item.Path, item.Color, i)
		if err != nil {
			return nil, fmt.Errorf("failed to persist label %q: %w", item.Path, err)
		}
		rowIDs[item.Path] = row.ID
		keepPaths = append(keepPaths, item.Path)
	}

	maxDepth := 0
	for _, item := range plan.Items {
		if item.Depth > maxDepth {
			maxDepth = item.Depth
		}
	}

	var mu sync.Mutex
	providerIDs := make(map[string]string)
	result := &ApplyResult{}

	for depth := 0; depth <= maxDepth; depth++ {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.workers)

		for _, item := range plan.Items {
			if item.Depth != depth {
				continue
			}

			g.Go(func() error {
				providerID, counted, err := p.applyItem(gctx, item, providerIDs, &mu)
				if err != nil {
					return err
				}

				mu.Lock()
				providerIDs[item.Path] = providerID
				switch counted {
				case ActionCreate:
					result.Created++
				case ActionAdopt:
					result.Adopted++
				case ActionRecolor:
					result.Recolored++
				}
				mu.Unlock()

				return p.store.SetLabelProviderID(gctx, rowIDs[item.Path], providerID, db.LabelStatusSynced)
			})
		}

		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	pruned, err := p.store.DeleteLabelsNotIn(ctx, mailboxID, keepPaths)
	if err != nil {
		return nil, err
	}
	result.Pruned = pruned

	return result, nil
}

func (p *Provisioner) applyItem(ctx context.Context, item PlannedLabel, providerIDs map[string]string, mu *sync.Mutex) (string, string, error) {
	switch item.Action {
	case ActionCreate:
		parentID := ""
		if parent := parentPath(item.Path); parent != "" {
			mu.Lock()
			parentID = providerIDs[parent]
			mu.Unlock()
			if parentID == "" {
				return "", "", fmt.Errorf("%w: %s", ErrParentNotProvisioned, item.Path)
			}
		}
		created, err := p.provider.CreateLabel(ctx, item.Path, item.Color, parentID)
		if err != nil {
			return "", "", err
		}
		return created.ID, ActionCreate, nil

	case ActionRecolor:
		if err := p.provider.UpdateLabelColor(ctx, item.RemoteID, item.Color); err != nil {
			return "", "", err
		}
		return item.RemoteID, ActionRecolor, nil

	default:
		return item.RemoteID, ActionAdopt, nil
	}
}
