package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/floworx/triage-agent/internal/classify"
	"github.com/floworx/triage-agent/internal/db"
	"github.com/floworx/triage-agent/internal/pipeline"
	"github.com/floworx/triage-agent/internal/pipeline/steps"
	"github.com/floworx/triage-agent/internal/routing"
	"github.com/floworx/triage-agent/internal/taxonomy"
)

// TriageRequest is the optional request body for a triage run
type TriageRequest struct {
	MaxMessages int  `json:"max_messages,omitempty"`
	Drafts      bool `json:"drafts,omitempty"` // generate reply drafts for sales leads
	Verbose     bool `json:"verbose,omitempty"`
}

// triageOptions assembles pipeline run options for a mailbox
func (s *Server) triageOptions(ctx context.Context, w http.ResponseWriter, mailbox *db.Mailbox, req *TriageRequest) (*pipeline.RunOptions, bool) {
	if s.llm == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "LLM is not configured")
		return nil, false
	}

	business, err := s.db.GetBusiness(ctx, mailbox.BusinessID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return nil, false
	}
	if business == nil {
		s.errorResponse(w, http.StatusNotFound, "Business not found")
		return nil, false
	}

	team, err := s.db.LoadTeam(ctx, mailbox.BusinessID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return nil, false
	}

	tax, err := taxonomy.Generate(business.Industry, team, business.CustomCategories)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to generate taxonomy: "+err.Error())
		return nil, false
	}

	classifier, err := classify.New(s.llm, tax, team, classify.BusinessInfo{
		Name:     business.Name,
		Industry: business.Industry,
	})
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to create classifier: "+err.Error())
		return nil, false
	}

	router, err := routing.NewEngine(team, business.DefaultName, business.DefaultRecipient)
	if err != nil {
		s.errorResponse(w, http.StatusConflict, "Routing not configured: "+err.Error())
		return nil, false
	}

	labelIDs, err := s.db.LabelIDMap(ctx, mailbox.ID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return nil, false
	}
	if len(labelIDs) == 0 {
		s.errorResponse(w, http.StatusConflict, "Mailbox has no provisioned labels; provision it first")
		return nil, false
	}

	mailer, err := s.mailClientFor(ctx, mailbox)
	if err != nil {
		s.providerErrorResponse(w, err)
		return nil, false
	}

	var drafter *pipeline.Drafter
	if req.Drafts {
		voice := ""
		if business.VoiceSummary != nil {
			voice = *business.VoiceSummary
		}
		drafter, err = pipeline.NewDrafter(s.llm, business.Name, business.Industry, voice)
		if err != nil {
			s.errorResponse(w, http.StatusInternalServerError, "Failed to create drafter: "+err.Error())
			return nil, false
		}
	}

	maxMessages := req.MaxMessages
	if maxMessages <= 0 {
		maxMessages = s.app.MaxMessagesPerRun
	}

	return &pipeline.RunOptions{
		BusinessID:  mailbox.BusinessID,
		MailboxID:   mailbox.ID,
		Mailer:      mailer,
		Classifier:  classifier,
		Router:      router,
		Store:       s.db,
		LabelIDs:    labelIDs,
		MaxMessages: maxMessages,
		Drafter:     drafter,
		Verbose:     req.Verbose,
	}, true
}

// decodeTriageRequest reads the optional request body; an empty body is fine
func decodeTriageRequest(r *http.Request) *TriageRequest {
	var req TriageRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	return &req
}

// handleTriage runs one triage pass over a mailbox and returns the summary
func (s *Server) handleTriage(w http.ResponseWriter, r *http.Request) {
	mailbox, ok := s.loadMailbox(w, r)
	if !ok {
		return
	}

	opts, ok := s.triageOptions(r.Context(), w, mailbox, decodeTriageRequest(r))
	if !ok {
		return
	}

	result, err := pipeline.Run(r.Context(), *opts)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Triage run failed: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}

// handleTriageStream runs a triage pass streaming progress over SSE
func (s *Server) handleTriageStream(w http.ResponseWriter, r *http.Request) {
	mailbox, ok := s.loadMailbox(w, r)
	if !ok {
		return
	}

	opts, ok := s.triageOptions(r.Context(), w, mailbox, decodeTriageRequest(r))
	if !ok {
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	opts.OnProgress = func(event pipeline.ProgressEvent) {
		sse.WriteEvent("progress", event) //nolint:errcheck
	}

	result, err := pipeline.Run(r.Context(), *opts)
	if err != nil {
		sse.WriteError(err.Error())
		return
	}

	sse.WriteEvent("summary", result) //nolint:errcheck
	sse.WriteComplete(result.RunID.String(), db.RunStatusCompleted)
}

// handleListRuns lists triage runs for a business
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	businessID, ok := s.pathUUID(w, r, "id", "business ID")
	if !ok {
		return
	}

	limit := parseQueryInt(r, "limit", 20, 100)
	runs, err := s.db.ListTriageRuns(r.Context(), businessID, limit)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"runs": runs})
}

// handleGetRun retrieves a triage run by ID
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID, ok := s.pathUUID(w, r, "id", "run ID")
	if !ok {
		return
	}

	run, err := s.db.GetTriageRun(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if run == nil {
		s.errorResponse(w, http.StatusNotFound, "Run not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, run)
}

// handleListArtifacts lists the artifacts recorded for a run
func (s *Server) handleListArtifacts(w http.ResponseWriter, r *http.Request) {
	runID, ok := s.pathUUID(w, r, "id", "run ID")
	if !ok {
		return
	}

	artifacts, err := s.db.ListArtifacts(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"artifacts": artifacts})
}

// handleGetArtifact retrieves one artifact's content by run and step
func (s *Server) handleGetArtifact(w http.ResponseWriter, r *http.Request) {
	runID, ok := s.pathUUID(w, r, "id", "run ID")
	if !ok {
		return
	}

	step := r.PathValue("step")
	if step == "" {
		s.errorResponse(w, http.StatusBadRequest, "Artifact step is required")
		return
	}
	if _, err := steps.GetStepDefinition(step); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Unknown artifact step: "+step)
		return
	}

	content, err := s.db.GetArtifact(r.Context(), runID, step)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if content == nil {
		s.errorResponse(w, http.StatusNotFound, "Artifact not found")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(content) //nolint:errcheck
}

// handleListSteps returns the pipeline step graph in execution order, for
// dashboards that render run artifacts.
func (s *Server) handleListSteps(w http.ResponseWriter, r *http.Request) {
	order, err := steps.ExecutionOrder()
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Step registry error: "+err.Error())
		return
	}

	defs := make([]steps.StepDefinition, 0, len(order))
	for _, name := range order {
		def, _ := steps.GetStepDefinition(name)
		defs = append(defs, def)
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"steps": defs})
}

// handleListRunEmails lists the triaged emails recorded for a run
func (s *Server) handleListRunEmails(w http.ResponseWriter, r *http.Request) {
	runID, ok := s.pathUUID(w, r, "id", "run ID")
	if !ok {
		return
	}

	emails, err := s.db.ListTriagedEmails(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"emails": emails})
}
