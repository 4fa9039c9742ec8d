package provision

import (
	"context"
	"fmt"
	"strings"

	"github.com/floworx/triage-agent/internal/types"
)

// Label plan action constants
const (
	ActionCreate  = "create"  // label missing in the provider
	ActionAdopt   = "adopt"   // label exists remotely; record its ID
	ActionRecolor = "recolor" // label exists but with the wrong color
)

// PlannedLabel is one taxonomy path with the action needed to reconcile it
type PlannedLabel struct {
	Path     string `json:"path"`
	Color    string `json:"color"`
	Depth    int    `json:"depth"`
	Action   string `json:"action"`
	RemoteID string `json:"remote_id,omitempty"` // set for adopt and recolor
}

// Plan is the full diff between the taxonomy and the mailbox, in
// parent-before-child order.
type Plan struct {
	Items    []PlannedLabel `json:"items"`
	Creates  int            `json:"creates"`
	Adopts   int            `json:"adopts"`
	Recolors int            `json:"recolors"`
}

// BuildPlan diffs the desired taxonomy against the labels currently in the
// mailbox. Matching is by path, case-insensitive; a label someone renamed
// only by case is adopted, not duplicated.
func (p *Provisioner) BuildPlan(ctx context.Context, tax *types.Taxonomy) (*Plan, error) {
	if tax == nil {
		return nil, ErrNilTaxonomy
	}

	remote, err := p.provider.ListLabels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list provider labels: %w", err)
	}

	byPath := make(map[string]types.RemoteLabel, len(remote))
	for _, r := range remote {
		byPath[strings.ToLower(r.Path)] = r
	}

	plan := &Plan{}
	tax.Walk(func(path string, node *types.CategoryNode) {
		item := PlannedLabel{
			Path:  path,
			Color: node.Color,
			Depth: pathDepth(path),
		}

		existing, found := byPath[strings.ToLower(path)]
		switch {
		case !found:
			item.Action = ActionCreate
			plan.Creates++
		case existing.Color != "" && node.Color != "" && !strings.EqualFold(existing.Color, node.Color):
			item.Action = ActionRecolor
			item.RemoteID = existing.ID
			plan.Recolors++
		default:
			item.Action = ActionAdopt
			item.RemoteID = existing.ID
			plan.Adopts++
		}
		plan.Items = append(plan.Items, item)
	})

	return plan, nil
}
