package server

import (
	"encoding/json"
	"net/http"

	"github.com/floworx/triage-agent/internal/db"
)

// ConnectMailboxRequest is the request body for connecting a mailbox.
// Either an OAuth authorization code or a raw token JSON blob must be
// supplied; the code path is what the onboarding UI uses, the token path
// exists for migrations.
type ConnectMailboxRequest struct {
	Provider    string          `json:"provider"`
	Address     string          `json:"address"`
	Code        string          `json:"code,omitempty"`
	RedirectURI string          `json:"redirect_uri,omitempty"`
	TokenJSON   json.RawMessage `json:"token_json,omitempty"`
}

// handleConnectMailbox connects an email account to a business
func (s *Server) handleConnectMailbox(w http.ResponseWriter, r *http.Request) {
	businessID, ok := s.pathUUID(w, r, "id", "business ID")
	if !ok {
		return
	}

	var req ConnectMailboxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if !db.ValidProvider(req.Provider) {
		s.errorResponse(w, http.StatusBadRequest, "Unsupported provider: "+req.Provider)
		return
	}
	if req.Address == "" {
		s.errorResponse(w, http.StatusBadRequest, "Mailbox address is required")
		return
	}

	business, err := s.db.GetBusiness(r.Context(), businessID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if business == nil {
		s.errorResponse(w, http.StatusNotFound, "Business not found")
		return
	}

	var tokenJSON []byte
	switch {
	case req.Code != "":
		tokenJSON, err = s.oauth.ExchangeCode(r.Context(), req.Provider, req.Code, req.RedirectURI)
		if err != nil {
			s.errorResponse(w, http.StatusBadGateway, "OAuth exchange failed: "+err.Error())
			return
		}
	case len(req.TokenJSON) > 0:
		tokenJSON = req.TokenJSON
	default:
		s.errorResponse(w, http.StatusBadRequest, "Either code or token_json is required")
		return
	}

	mailbox, err := s.db.CreateMailbox(r.Context(), businessID, req.Provider, req.Address, tokenJSON)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusCreated, mailbox)
}

// handleListMailboxes lists the mailboxes connected to a business
func (s *Server) handleListMailboxes(w http.ResponseWriter, r *http.Request) {
	businessID, ok := s.pathUUID(w, r, "id", "business ID")
	if !ok {
		return
	}

	mailboxes, err := s.db.ListMailboxes(r.Context(), businessID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"mailboxes": mailboxes})
}

// handleGetMailbox retrieves a mailbox by ID
func (s *Server) handleGetMailbox(w http.ResponseWriter, r *http.Request) {
	mailboxID, ok := s.pathUUID(w, r, "id", "mailbox ID")
	if !ok {
		return
	}

	mailbox, err := s.db.GetMailbox(r.Context(), mailboxID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if mailbox == nil {
		s.errorResponse(w, http.StatusNotFound, "Mailbox not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, mailbox)
}

// handleDisconnectMailbox removes a mailbox and its stored token
func (s *Server) handleDisconnectMailbox(w http.ResponseWriter, r *http.Request) {
	mailboxID, ok := s.pathUUID(w, r, "id", "mailbox ID")
	if !ok {
		return
	}

	if err := s.db.DeleteMailbox(r.Context(), mailboxID); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleListLabels lists the provisioned labels for a mailbox
func (s *Server) handleListLabels(w http.ResponseWriter, r *http.Request) {
	mailboxID, ok := s.pathUUID(w, r, "id", "mailbox ID")
	if !ok {
		return
	}

	labels, err := s.db.ListLabels(r.Context(), mailboxID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"labels": labels})
}

// handleMailboxStats returns per-category triage counts for a mailbox
func (s *Server) handleMailboxStats(w http.ResponseWriter, r *http.Request) {
	mailboxID, ok := s.pathUUID(w, r, "id", "mailbox ID")
	if !ok {
		return
	}

	counts, err := s.db.CategoryCounts(r.Context(), mailboxID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"by_category": counts})
}
