package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/floworx/triage-agent/internal/db"
	"github.com/floworx/triage-agent/internal/types"
	"github.com/floworx/triage-agent/internal/workflow"
)

// workflowConfigFor assembles the injection config for a mailbox from its
// business profile, team roster, and provisioned label map.
func (s *Server) workflowConfigFor(ctx context.Context, mailbox *db.Mailbox) (*types.WorkflowConfig, error) {
	business, err := s.db.GetBusiness(ctx, mailbox.BusinessID)
	if err != nil {
		return nil, err
	}
	if business == nil {
		return nil, fmt.Errorf("business not found: %s", mailbox.BusinessID)
	}

	team, err := s.db.LoadTeam(ctx, mailbox.BusinessID)
	if err != nil {
		return nil, err
	}

	labelIDs, err := s.db.LabelIDMap(ctx, mailbox.ID)
	if err != nil {
		return nil, err
	}

	return &types.WorkflowConfig{
		BusinessName:  business.Name,
		Industry:      business.Industry,
		Mailbox:       mailbox.Address,
		MailboxID:     mailbox.ID.String(),
		Provider:      mailbox.Provider,
		Timezone:      business.Timezone,
		AgentBaseURL:  s.app.AgentBaseURL,
		LabelIDs:      labelIDs,
		Managers:      team.Managers,
		Suppliers:     team.Suppliers,
		CredentialRef: mailbox.Provider + "-" + mailbox.ID.String(),
	}, nil
}

// handleDeployWorkflow injects and deploys the triage workflow for a mailbox
func (s *Server) handleDeployWorkflow(w http.ResponseWriter, r *http.Request) {
	mailbox, ok := s.loadMailbox(w, r)
	if !ok {
		return
	}

	if s.app.N8NBaseURL == "" || s.app.N8NAPIKey == "" {
		s.errorResponse(w, http.StatusServiceUnavailable, "n8n is not configured")
		return
	}

	cfg, err := s.workflowConfigFor(r.Context(), mailbox)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to build workflow config: "+err.Error())
		return
	}

	deployer := workflow.NewDeployer(s.db, workflow.NewN8NClient(s.app.N8NBaseURL, s.app.N8NAPIKey))
	outcome, err := deployer.Deploy(r.Context(), mailbox.BusinessID, mailbox.ID, cfg)
	if err != nil {
		if errors.Is(err, workflow.ErrUnresolvedPlaceholder) {
			s.errorResponse(w, http.StatusConflict, "Workflow config incomplete: "+err.Error())
			return
		}
		s.errorResponse(w, http.StatusBadGateway, "Deploy failed: "+err.Error())
		return
	}

	if !outcome.Skipped {
		if err := s.db.UpdateOnboardingStatus(r.Context(), mailbox.BusinessID, db.OnboardingStatusDeployed); err != nil {
			s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
			return
		}
	}

	s.jsonResponse(w, http.StatusOK, outcome)
}

// handleGetDeployment returns the current workflow deployment for a mailbox
func (s *Server) handleGetDeployment(w http.ResponseWriter, r *http.Request) {
	mailboxID, ok := s.pathUUID(w, r, "id", "mailbox ID")
	if !ok {
		return
	}

	deployment, err := s.db.GetDeployment(r.Context(), mailboxID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if deployment == nil {
		s.errorResponse(w, http.StatusNotFound, "No deployment for mailbox")
		return
	}

	s.jsonResponse(w, http.StatusOK, deployment)
}

// handleListDeployments lists workflow deployments for a business
func (s *Server) handleListDeployments(w http.ResponseWriter, r *http.Request) {
	businessID, ok := s.pathUUID(w, r, "id", "business ID")
	if !ok {
		return
	}

	deployments, err := s.db.ListDeployments(r.Context(), businessID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"deployments": deployments})
}
