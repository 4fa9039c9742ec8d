// Package oauth owns the OAuth token lifecycle for connected mailboxes.
//
// Tokens are refreshed proactively: a token inside the expiry skew window is
// treated as already expired, so a triage run never starts API calls with a
// token about to lapse mid-run. Rotated tokens are persisted before first
// use; a refresh token that rotates and is lost strands the mailbox.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/microsoft"

	"github.com/floworx/triage-agent/internal/config"
	"github.com/floworx/triage-agent/internal/db"
)

// expirySkew is how early a token is considered expired. Providers reject
// tokens slightly before their advertised expiry under clock drift.
const expirySkew = 5 * time.Minute

var gmailScopes = []string{
	"https://www.googleapis.com/auth/gmail.modify",
	"https://www.googleapis.com/auth/gmail.labels",
}

var outlookScopes = []string{
	"https://graph.microsoft.com/Mail.ReadWrite",
	"offline_access",
}

// TokenStore is the subset of db.DB the manager needs to persist
// token state.
type TokenStore interface {
	UpdateMailboxToken(ctx context.Context, id uuid.UUID, tokenJSON []byte) error
	MarkMailboxDisconnected(ctx context.Context, id uuid.UUID) error
}

// Manager builds authenticated HTTP clients for connected mailboxes and
// persists every token rotation back to the store.
type Manager struct {
	store     TokenStore
	google    *oauth2.Config
	microsoft *oauth2.Config
}

// NewManager creates a Manager from the application config
func NewManager(cfg *config.Config, store TokenStore) *Manager {
	return &Manager{
		store: store,
		google: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       gmailScopes,
		},
		microsoft: &oauth2.Config{
			ClientID:     cfg.MicrosoftClientID,
			ClientSecret: cfg.MicrosoftClientSecret,
			Endpoint:     microsoft.AzureADEndpoint(cfg.MicrosoftTenant),
			Scopes:       outlookScopes,
		},
	}
}

func (m *Manager) configFor(provider string) (*oauth2.Config, error) {
	switch provider {
	case db.ProviderGmail:
		return m.google, nil
	case db.ProviderOutlook:
		return m.microsoft, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
}

// ExchangeCode trades an authorization code for a token and returns it as
// JSON ready for db.CreateMailbox.
func (m *Manager) ExchangeCode(ctx context.Context, provider, code, redirectURI string) ([]byte, error) {
	cfg, err := m.configFor(provider)
	if err != nil {
		return nil, err
	}

	tok, err := cfg.Exchange(ctx, code, oauth2.SetAuthURLParam("redirect_uri", redirectURI))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	if tok.RefreshToken == "" {
		return nil, fmt.Errorf("provider returned no refresh token; request offline access")
	}

	tokenJSON, err := json.Marshal(tok)
	if err != nil {
		return nil, fmt.Errorf("failed to encode token: %w", err)
	}
	return tokenJSON, nil
}

// ClientFor returns an HTTP client that authenticates as the mailbox owner.
// The client refreshes tokens transparently and persists every rotation.
func (m *Manager) ClientFor(ctx context.Context, mailbox *db.Mailbox) (*http.Client, error) {
	src, err := m.TokenSourceFor(ctx, mailbox)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, src), nil
}

// TokenSourceFor returns the persisting token source for a mailbox
func (m *Manager) TokenSourceFor(ctx context.Context, mailbox *db.Mailbox) (oauth2.TokenSource, error) {
	if mailbox == nil {
		return nil, fmt.Errorf("mailbox is required")
	}
	if mailbox.Status == db.MailboxStatusDisconnected {
		return nil, fmt.Errorf("%w: %s", ErrMailboxDisconnected, mailbox.Address)
	}
	if len(mailbox.TokenJSON) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoToken, mailbox.Address)
	}

	cfg, err := m.configFor(mailbox.Provider)
	if err != nil {
		return nil, err
	}

	var tok oauth2.Token
	if err := json.Unmarshal(mailbox.TokenJSON, &tok); err != nil {
		return nil, fmt.Errorf("failed to decode stored token: %w", err)
	}

	return &persistingSource{
		ctx:       ctx,
		store:     m.store,
		mailboxID: mailbox.ID,
		address:   mailbox.Address,
		base:      cfg.TokenSource(ctx, &tok),
		current:   &tok,
	}, nil
}

// persistingSource wraps the provider token source with skewed expiry checks
// and write-through persistence of rotated tokens.
type persistingSource struct {
	ctx       context.Context
	store     TokenStore
	mailboxID uuid.UUID
	address   string

	mu      sync.Mutex
	base    oauth2.TokenSource
	current *oauth2.Token
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && s.current.AccessToken != "" &&
		time.Until(s.current.Expiry) > expirySkew {
		return s.current, nil
	}

	tok, err := s.base.Token()
	if err != nil {
		if isInvalidGrant(err) {
			if dbErr := s.store.MarkMailboxDisconnected(s.ctx, s.mailboxID); dbErr != nil {
				log.Printf("oauth: failed to mark mailbox %s disconnected: %v", s.address, dbErr)
			}
			return nil, fmt.Errorf("%w: %s", ErrTokenRevoked, s.address)
		}
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	// Some providers rotate the refresh token on every refresh. Persist
	// before handing the token out so a crash cannot lose the rotation.
	if s.current == nil || tok.AccessToken != s.current.AccessToken ||
		tok.RefreshToken != s.current.RefreshToken {
		tokenJSON, mErr := json.Marshal(tok)
		if mErr != nil {
			return nil, fmt.Errorf("failed to encode refreshed token: %w", mErr)
		}
		if dbErr := s.store.UpdateMailboxToken(s.ctx, s.mailboxID, tokenJSON); dbErr != nil {
			return nil, fmt.Errorf("failed to persist refreshed token: %w", dbErr)
		}
	}

	s.current = tok
	return tok, nil
}

// isInvalidGrant detects a revoked or expired refresh token
func isInvalidGrant(err error) bool {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		if re.ErrorCode == "invalid_grant" {
			return true
		}
		return strings.Contains(string(re.Body), "invalid_grant")
	}
	return false
}
