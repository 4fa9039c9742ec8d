// Package gmail adapts the Gmail API to the provider operations the
// provisioning and triage pipelines need. Labels are Gmail's flat namespace
// with "Parent/Child" names; nesting is by name only, so no parent IDs.
package gmail

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	gmailv1 "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// user is the authenticated mailbox owner in every Gmail API call
const user = "me"

// Client wraps a Gmail service for one mailbox
type Client struct {
	svc *gmailv1.Service
}

// NewClient creates a Gmail client over an authenticated HTTP client,
// typically one built by the oauth manager.
func NewClient(ctx context.Context, httpClient *http.Client) (*Client, error) {
	svc, err := gmailv1.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// isNotFound reports whether the API rejected a label or message ID
func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusNotFound
	}
	return false
}
