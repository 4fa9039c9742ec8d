package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	gmailv1 "google.golang.org/api/gmail/v1"

	"github.com/floworx/triage-agent/internal/types"
)

// triageQuery selects the messages a triage run considers
const triageQuery = "in:inbox is:unread"

// ListUnreadMessages returns up to max unread inbox message IDs
func (c *Client) ListUnreadMessages(ctx context.Context, max int) ([]string, error) {
	resp, err := c.svc.Users.Messages.List(user).
		Q(triageQuery).
		MaxResults(int64(max)).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list gmail messages: %w", err)
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		ids = append(ids, m.Id)
	}
	return ids, nil
}

// GetRawMessage fetches the full RFC 822 content of a message
func (c *Client) GetRawMessage(ctx context.Context, id string) (*types.RawMessage, error) {
	msg, err := c.svc.Users.Messages.Get(user, id).Format("raw").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get gmail message %s: %w", id, err)
	}

	raw, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(msg.Raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode gmail message %s: %w", id, err)
	}
	return &types.RawMessage{ID: msg.Id, ThreadID: msg.ThreadId, Raw: raw}, nil
}

// ApplyLabel adds a label to a message without touching read state
func (c *Client) ApplyLabel(ctx context.Context, messageID, labelID string) error {
	_, err := c.svc.Users.Messages.Modify(user, messageID, &gmailv1.ModifyMessageRequest{
		AddLabelIds: []string{labelID},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to apply gmail label to %s: %w", messageID, err)
	}
	return nil
}

// CreateReplyDraft saves a reply draft on the message's thread. The draft
// is never sent; the owner reviews it in their mailbox.
func (c *Client) CreateReplyDraft(ctx context.Context, msg *types.EmailMessage, body string) error {
	subject := msg.Subject
	if !strings.HasPrefix(strings.ToLower(subject), "re:") {
		subject = "Re: " + subject
	}
	rfc822 := fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		msg.From.String(), subject, body)

	_, err := c.svc.Users.Drafts.Create(user, &gmailv1.Draft{
		Message: &gmailv1.Message{
			ThreadId: msg.ThreadID,
			Raw:      base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString([]byte(rfc822)),
		},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to create gmail draft: %w", err)
	}
	return nil
}
