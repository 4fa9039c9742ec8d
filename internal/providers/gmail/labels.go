package gmail

import (
	"context"
	"fmt"

	gmailv1 "google.golang.org/api/gmail/v1"

	"github.com/floworx/triage-agent/internal/taxonomy"
	"github.com/floworx/triage-agent/internal/types"
)

// labelTextColor is the text color paired with every background. Gmail
// rejects label colors outside its fixed palette.
const labelTextColor = "#ffffff"

// ListLabels returns all user-created labels in the mailbox. System labels
// (INBOX, SPAM, ...) are excluded.
func (c *Client) ListLabels(ctx context.Context) ([]types.RemoteLabel, error) {
	resp, err := c.svc.Users.Labels.List(user).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list gmail labels: %w", err)
	}

	var labels []types.RemoteLabel
	for _, l := range resp.Labels {
		if l.Type != "user" {
			continue
		}
		remote := types.RemoteLabel{ID: l.Id, Path: l.Name}
		if l.Color != nil {
			remote.Color = l.Color.BackgroundColor
		}
		labels = append(labels, remote)
	}
	return labels, nil
}

// CreateLabel creates a label. Gmail nests by name, so parentID is unused.
func (c *Client) CreateLabel(ctx context.Context, path, color, parentID string) (*types.RemoteLabel, error) {
	_ = parentID

	label := &gmailv1.Label{
		Name:                  path,
		LabelListVisibility:   "labelShow",
		MessageListVisibility: "show",
	}
	if color != "" {
		label.Color = &gmailv1.LabelColor{
			BackgroundColor: taxonomy.SafeColor(color),
			TextColor:       labelTextColor,
		}
	}

	created, err := c.svc.Users.Labels.Create(user, label).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail label %q: %w", path, err)
	}

	remote := &types.RemoteLabel{ID: created.Id, Path: created.Name}
	if created.Color != nil {
		remote.Color = created.Color.BackgroundColor
	}
	return remote, nil
}

// UpdateLabelColor patches the color of an existing label
func (c *Client) UpdateLabelColor(ctx context.Context, id, color string) error {
	_, err := c.svc.Users.Labels.Patch(user, id, &gmailv1.Label{
		Color: &gmailv1.LabelColor{
			BackgroundColor: taxonomy.SafeColor(color),
			TextColor:       labelTextColor,
		},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to update gmail label color: %w", err)
	}
	return nil
}

// GetLabel fetches a label by its provider ID. Returns (nil, nil) when the
// ID no longer exists, which is how stale stored IDs surface.
func (c *Client) GetLabel(ctx context.Context, id string) (*types.RemoteLabel, error) {
	l, err := c.svc.Users.Labels.Get(user, id).Context(ctx).Do()
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get gmail label %s: %w", id, err)
	}

	remote := &types.RemoteLabel{ID: l.Id, Path: l.Name}
	if l.Color != nil {
		remote.Color = l.Color.BackgroundColor
	}
	return remote, nil
}
