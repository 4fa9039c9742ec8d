package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/floworx/triage-agent/internal/db"
	"github.com/floworx/triage-agent/internal/oauth"
	"github.com/floworx/triage-agent/internal/provision"
	"github.com/floworx/triage-agent/internal/taxonomy"
	"github.com/floworx/triage-agent/internal/types"
)

// provisionerFor loads everything one provisioning pass needs: the mailbox,
// its business, the generated taxonomy, and a provider client.
func (s *Server) provisionerFor(ctx context.Context, w http.ResponseWriter, mailbox *db.Mailbox) (*provision.Provisioner, *types.Taxonomy, bool) {
	business, err := s.db.GetBusiness(ctx, mailbox.BusinessID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return nil, nil, false
	}
	if business == nil {
		s.errorResponse(w, http.StatusNotFound, "Business not found")
		return nil, nil, false
	}

	team, err := s.db.LoadTeam(ctx, mailbox.BusinessID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return nil, nil, false
	}

	tax, err := taxonomy.Generate(business.Industry, team, business.CustomCategories)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to generate taxonomy: "+err.Error())
		return nil, nil, false
	}

	client, err := s.mailClientFor(ctx, mailbox)
	if err != nil {
		s.providerErrorResponse(w, err)
		return nil, nil, false
	}

	return provision.New(client, s.db, s.app.ProvisionWorkers), tax, true
}

// providerErrorResponse maps OAuth/provider connection failures to HTTP
// statuses. A revoked grant means the user must reconnect the mailbox.
func (s *Server) providerErrorResponse(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, oauth.ErrTokenRevoked), errors.Is(err, oauth.ErrMailboxDisconnected):
		s.errorResponse(w, http.StatusConflict, "Mailbox disconnected; reconnect it to continue: "+err.Error())
	case errors.Is(err, oauth.ErrNoToken):
		s.errorResponse(w, http.StatusConflict, "Mailbox has no stored token; reconnect it to continue")
	default:
		s.errorResponse(w, http.StatusBadGateway, "Provider error: "+err.Error())
	}
}

// loadMailbox fetches a mailbox by path ID, writing error responses on failure
func (s *Server) loadMailbox(w http.ResponseWriter, r *http.Request) (*db.Mailbox, bool) {
	mailboxID, ok := s.pathUUID(w, r, "id", "mailbox ID")
	if !ok {
		return nil, false
	}

	mailbox, err := s.db.GetMailbox(r.Context(), mailboxID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return nil, false
	}
	if mailbox == nil {
		s.errorResponse(w, http.StatusNotFound, "Mailbox not found")
		return nil, false
	}
	return mailbox, true
}

// handleProvisionPlan returns the label diff without applying it
func (s *Server) handleProvisionPlan(w http.ResponseWriter, r *http.Request) {
	mailbox, ok := s.loadMailbox(w, r)
	if !ok {
		return
	}

	provisioner, tax, ok := s.provisionerFor(r.Context(), w, mailbox)
	if !ok {
		return
	}

	plan, err := provisioner.BuildPlan(r.Context(), tax)
	if err != nil {
		s.providerErrorResponse(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, plan)
}

// handleProvisionApply reconciles the mailbox's labels against the taxonomy
func (s *Server) handleProvisionApply(w http.ResponseWriter, r *http.Request) {
	mailbox, ok := s.loadMailbox(w, r)
	if !ok {
		return
	}

	provisioner, tax, ok := s.provisionerFor(r.Context(), w, mailbox)
	if !ok {
		return
	}

	plan, err := provisioner.BuildPlan(r.Context(), tax)
	if err != nil {
		s.providerErrorResponse(w, err)
		return
	}

	result, err := provisioner.Apply(r.Context(), mailbox.BusinessID, mailbox.ID, plan)
	if err != nil {
		s.providerErrorResponse(w, err)
		return
	}

	if err := s.db.UpdateOnboardingStatus(r.Context(), mailbox.BusinessID, db.OnboardingStatusProvisioned); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}

// handleProvisionVerify checks stored provider label IDs and repairs stale ones
func (s *Server) handleProvisionVerify(w http.ResponseWriter, r *http.Request) {
	mailbox, ok := s.loadMailbox(w, r)
	if !ok {
		return
	}

	client, err := s.mailClientFor(r.Context(), mailbox)
	if err != nil {
		s.providerErrorResponse(w, err)
		return
	}

	provisioner := provision.New(client, s.db, s.app.ProvisionWorkers)
	report, err := provisioner.Verify(r.Context(), mailbox.ID)
	if err != nil {
		s.providerErrorResponse(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, report)
}
