// Package types provides type definitions for structured data used throughout the triage service.
package types

import (
	"strings"
	"time"
)

// Address represents a parsed email address with an optional display name.
type Address struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// Domain returns the lowercased domain portion of the address, or "" if the
// address is malformed.
func (a Address) Domain() string {
	at := strings.LastIndex(a.Email, "@")
	if at < 0 || at == len(a.Email)-1 {
		return ""
	}
	return strings.ToLower(a.Email[at+1:])
}

// String formats the address as "Name <email>" or just the bare address.
func (a Address) String() string {
	if a.Name == "" {
		return a.Email
	}
	return a.Name + " <" + a.Email + ">"
}

// EmailMessage is a provider-independent view of a single email message.
// BodyText is the plain-text body after HTML stripping and normalization;
// it is the text the classifier sees.
type EmailMessage struct {
	MessageID  string            `json:"message_id"`
	ThreadID   string            `json:"thread_id,omitempty"`
	From       Address           `json:"from"`
	To         []Address         `json:"to,omitempty"`
	Subject    string            `json:"subject"`
	Snippet    string            `json:"snippet,omitempty"`
	BodyText   string            `json:"body_text"`
	ReceivedAt time.Time         `json:"received_at"`
	Headers    map[string]string `json:"headers,omitempty"`
}

// HasBody reports whether the message carries any classifiable text.
func (m *EmailMessage) HasBody() bool {
	return strings.TrimSpace(m.BodyText) != "" || strings.TrimSpace(m.Subject) != ""
}

// RawMessage is a message as fetched from the provider, before parsing.
// ID and ThreadID are provider identifiers, not RFC 822 header values.
type RawMessage struct {
	ID       string `json:"id"`
	ThreadID string `json:"thread_id,omitempty"`
	Raw      []byte `json:"-"`
}
