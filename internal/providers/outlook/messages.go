package outlook

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/floworx/triage-agent/internal/types"
)

type messageList struct {
	Value []struct {
		ID string `json:"id"`
	} `json:"value"`
}

// ListUnreadMessages returns up to max unread inbox message IDs
func (c *Client) ListUnreadMessages(ctx context.Context, max int) ([]string, error) {
	path := fmt.Sprintf("/me/mailFolders/inbox/messages?$filter=%s&$select=id&$top=%d",
		url.QueryEscape("isRead eq false"), max)

	body, err := c.do(ctx, "GET", path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	if body == nil {
		return nil, nil
	}

	var list messageList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to decode message list: %w", err)
	}

	ids := make([]string, 0, len(list.Value))
	for _, m := range list.Value {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

// GetRawMessage fetches the full MIME content of a message. Graph has no
// thread handle on the raw endpoint; the message ID doubles as the reply
// target.
func (c *Client) GetRawMessage(ctx context.Context, id string) (*types.RawMessage, error) {
	body, err := c.do(ctx, "GET", "/me/messages/"+id+"/$value", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}
	if body == nil {
		return nil, fmt.Errorf("message not found: %s", id)
	}
	return &types.RawMessage{ID: id, ThreadID: id, Raw: body}, nil
}

// ApplyLabel moves the message into the destination folder. Moving is the
// Outlook equivalent of labeling; the message leaves the inbox.
func (c *Client) ApplyLabel(ctx context.Context, messageID, folderID string) error {
	body, err := c.do(ctx, "POST", "/me/messages/"+messageID+"/move",
		map[string]string{"destinationId": folderID})
	if err != nil {
		return fmt.Errorf("failed to move message %s: %w", messageID, err)
	}
	if body == nil {
		return fmt.Errorf("message or folder not found moving %s", messageID)
	}
	return nil
}

// CreateReplyDraft creates a reply draft on the message and fills in the
// body. The draft stays in Drafts for the owner to review.
func (c *Client) CreateReplyDraft(ctx context.Context, msg *types.EmailMessage, draftBody string) error {
	created, err := c.do(ctx, "POST", "/me/messages/"+msg.MessageID+"/createReply", nil)
	if err != nil {
		return fmt.Errorf("failed to create reply draft: %w", err)
	}
	if created == nil {
		return fmt.Errorf("message not found creating reply: %s", msg.MessageID)
	}

	var draft struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(created, &draft); err != nil {
		return fmt.Errorf("failed to decode reply draft: %w", err)
	}

	_, err = c.do(ctx, "PATCH", "/me/messages/"+draft.ID, map[string]any{
		"body": map[string]string{
			"contentType": "text",
			"content":     draftBody,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to set reply draft body: %w", err)
	}
	return nil
}
