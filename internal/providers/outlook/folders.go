package outlook

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/floworx/triage-agent/internal/types"
)

type mailFolder struct {
	ID               string `json:"id"`
	DisplayName      string `json:"displayName"`
	ChildFolderCount int    `json:"childFolderCount"`
}

type folderList struct {
	Value []mailFolder `json:"value"`
}

// ListLabels walks the folder tree and returns every folder as a
// "Parent/Child" path. Outlook folders have no color.
func (c *Client) ListLabels(ctx context.Context) ([]types.RemoteLabel, error) {
	return c.walkFolders(ctx, "/me/mailFolders?$top=200", "")
}

func (c *Client) walkFolders(ctx context.Context, path, prefix string) ([]types.RemoteLabel, error) {
	body, err := c.do(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}

	var list folderList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to decode folder list: %w", err)
	}

	var labels []types.RemoteLabel
	for _, f := range list.Value {
		fullPath := f.DisplayName
		if prefix != "" {
			fullPath = prefix + types.PathSeparator + f.DisplayName
		}
		labels = append(labels, types.RemoteLabel{ID: f.ID, Path: fullPath})

		if f.ChildFolderCount > 0 {
			children, err := c.walkFolders(ctx,
				fmt.Sprintf("/me/mailFolders/%s/childFolders?$top=200", f.ID), fullPath)
			if err != nil {
				return nil, err
			}
			labels = append(labels, children...)
		}
	}
	return labels, nil
}

// CreateLabel creates a folder. Nesting needs the parent folder's ID; the
// provisioner creates parents before children so parentID is always known.
func (c *Client) CreateLabel(ctx context.Context, path, color, parentID string) (*types.RemoteLabel, error) {
	_ = color // folders carry no color

	segments := strings.Split(path, types.PathSeparator)
	leaf := segments[len(segments)-1]

	endpoint := "/me/mailFolders"
	if parentID != "" {
		endpoint = fmt.Sprintf("/me/mailFolders/%s/childFolders", parentID)
	}

	body, err := c.do(ctx, "POST", endpoint, map[string]string{"displayName": leaf})
	if err != nil {
		return nil, fmt.Errorf("failed to create folder %q: %w", path, err)
	}
	if body == nil {
		return nil, fmt.Errorf("failed to create folder %q: parent not found", path)
	}

	var created mailFolder
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("failed to decode created folder: %w", err)
	}
	return &types.RemoteLabel{ID: created.ID, Path: path}, nil
}

// UpdateLabelColor is a no-op; Outlook folders have no color attribute
func (c *Client) UpdateLabelColor(ctx context.Context, id, color string) error {
	return nil
}

// GetLabel fetches a folder by ID. Returns (nil, nil) when the ID no longer
// exists. Path holds only the folder's display name; callers that need the
// full path resolve it through ListLabels.
func (c *Client) GetLabel(ctx context.Context, id string) (*types.RemoteLabel, error) {
	body, err := c.do(ctx, "GET", "/me/mailFolders/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get folder %s: %w", id, err)
	}
	if body == nil {
		return nil, nil
	}

	var f mailFolder
	if err := json.Unmarshal(body, &f); err != nil {
		return nil, fmt.Errorf("failed to decode folder: %w", err)
	}
	return &types.RemoteLabel{ID: f.ID, Path: f.DisplayName}, nil
}
