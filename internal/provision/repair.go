package provision

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/floworx/triage-agent/internal/db"
)

// RepairReport summarizes one verification pass over stored provider IDs
type RepairReport struct {
	Checked  int      `json:"checked"`
	Healthy  int      `json:"healthy"`
	Repaired []string `json:"repaired,omitempty"` // paths whose IDs were re-resolved
	Missing  []string `json:"missing,omitempty"`  // paths gone from the provider entirely
}

// Verify checks every stored provider label ID against the mailbox. IDs go
// stale when a label is deleted and recreated by hand; a stale ID makes the
// pipeline file mail into nothing. Stale IDs are re-resolved by path, and
// paths missing remotely are reported so the next Apply recreates them.
func (p *Provisioner) Verify(ctx context.Context, mailboxID uuid.UUID) (*RepairReport, error) {
	stored, err := p.store.ListLabels(ctx, mailboxID)
	if err != nil {
		return nil, err
	}

	report := &RepairReport{}
	var remoteByPath map[string]string // lazily fetched on first stale ID

	for _, label := range stored {
		if label.ProviderLabelID == nil {
			continue
		}
		report.Checked++

		remote, err := p.provider.GetLabel(ctx, *label.ProviderLabelID)
		if err != nil {
			return nil, fmt.Errorf("failed to verify label %q: %w", label.Path, err)
		}
		if remote != nil {
			report.Healthy++
			continue
		}

		if remoteByPath == nil {
			remoteByPath, err = p.remotePathIndex(ctx)
			if err != nil {
				return nil, err
			}
		}

		resolvedID, found := remoteByPath[strings.ToLower(label.Path)]
		if !found {
			report.Missing = append(report.Missing, label.Path)
			continue
		}

		if err := p.store.SetLabelProviderID(ctx, label.ID, resolvedID, db.LabelStatusRepaired); err != nil {
			return nil, err
		}
		report.Repaired = append(report.Repaired, label.Path)
	}

	return report, nil
}

func (p *Provisioner) remotePathIndex(ctx context.Context) (map[string]string, error) {
	remote, err := p.provider.ListLabels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list provider labels: %w", err)
	}
	index := make(map[string]string, len(remote))
	for _, r := range remote {
		index[strings.ToLower(r.Path)] = r.ID
	}
	return index, nil
}
