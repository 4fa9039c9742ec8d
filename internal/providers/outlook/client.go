// Package outlook adapts the Microsoft Graph mail API to the provider
// operations the provisioning and triage pipelines need. Outlook folders
// nest by parent folder ID and carry no color.
package outlook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

const defaultBaseURL = "https://graph.microsoft.com/v1.0"

// maxRetries bounds how often a throttled request is retried
const maxRetries = 3

// Client is a thin Microsoft Graph mail client for one mailbox
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a Graph client over an authenticated HTTP client
func NewClient(httpClient *http.Client) *Client {
	return &Client{httpClient: httpClient, baseURL: defaultBaseURL}
}

// NewClientWithBaseURL creates a client against a non-default Graph
// endpoint. Tests point this at a local server.
func NewClientWithBaseURL(httpClient *http.Client, baseURL string) *Client {
	return &Client{httpClient: httpClient, baseURL: baseURL}
}

// graphError is the error envelope Graph returns on non-2xx responses
type graphError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// do issues a Graph request, retrying on 429 per the Retry-After header.
// A 404 returns (nil, nil) so callers can treat missing IDs as absence.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode graph request: %w", err)
		}
	}

	for attempt := 0; ; attempt++ {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to build graph request: %w", err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("graph request failed: %w", err)
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read graph response: %w", err)
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return respBody, nil
		case resp.StatusCode == http.StatusNotFound:
			return nil, nil
		case resp.StatusCode == http.StatusTooManyRequests && attempt < maxRetries:
			wait := retryAfter(resp)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			continue
		}

		var ge graphError
		if json.Unmarshal(respBody, &ge) == nil && ge.Error.Code != "" {
			return nil, fmt.Errorf("graph %s %s: %s: %s", method, path, ge.Error.Code, ge.Error.Message)
		}
		return nil, fmt.Errorf("graph %s %s: unexpected status %d", method, path, resp.StatusCode)
	}
}

// retryAfter reads the throttle delay from the response, defaulting to 2s
func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return 2 * time.Second
}
