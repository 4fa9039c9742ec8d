package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/floworx/triage-agent/internal/db"
	"github.com/floworx/triage-agent/internal/taxonomy"
)

// parseQueryInt parses an integer query parameter with default and max values
func parseQueryInt(r *http.Request, key string, defaultValue, maxValue int) int {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val < 0 {
		return defaultValue
	}
	if maxValue > 0 && val > maxValue {
		return maxValue
	}
	return val
}

// pathUUID parses a UUID path parameter, writing a 400 response on failure
func (s *Server) pathUUID(w http.ResponseWriter, r *http.Request, key, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(key))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid "+label)
		return uuid.Nil, false
	}
	return id, true
}

// CreateBusinessRequest is the request body for creating a business profile
type CreateBusinessRequest struct {
	Name             string   `json:"name"`
	Industry         string   `json:"industry"`
	Timezone         string   `json:"timezone"`
	DefaultName      string   `json:"default_name"`
	DefaultRecipient string   `json:"default_recipient"`
	CustomCategories []string `json:"custom_categories"`
}

// handleCreateBusiness creates a new business profile
func (s *Server) handleCreateBusiness(w http.ResponseWriter, r *http.Request) {
	var req CreateBusinessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Name == "" {
		s.errorResponse(w, http.StatusBadRequest, "Business name is required")
		return
	}
	if req.DefaultRecipient == "" {
		s.errorResponse(w, http.StatusBadRequest, "Default recipient is required")
		return
	}
	if req.Industry == "" {
		req.Industry = taxonomy.IndustryGeneric
	}
	// Fail now rather than at provisioning time.
	if _, err := taxonomy.Generate(req.Industry, nil, req.CustomCategories); err != nil {
		if errors.Is(err, taxonomy.ErrUnknownIndustry) {
			s.errorResponse(w, http.StatusBadRequest, "Unknown industry: "+req.Industry)
		} else {
			s.errorResponse(w, http.StatusBadRequest, "Invalid custom categories: "+err.Error())
		}
		return
	}
	if req.Timezone == "" {
		req.Timezone = "America/New_York"
	}

	existing, err := s.db.GetBusinessByNormalizedName(r.Context(), db.NormalizeName(req.Name))
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if existing != nil {
		s.errorResponse(w, http.StatusConflict, "Business already exists: "+req.Name)
		return
	}

	business, err := s.db.CreateBusiness(r.Context(), req.Name, req.Industry, req.Timezone, req.DefaultName, req.DefaultRecipient, req.CustomCategories)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusCreated, business)
}

// handleListBusinesses lists business profiles with pagination
func (s *Server) handleListBusinesses(w http.ResponseWriter, r *http.Request) {
	limit := parseQueryInt(r, "limit", 50, 100)
	offset := parseQueryInt(r, "offset", 0, 0)

	businesses, total, err := s.db.ListBusinesses(r.Context(), limit, offset)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"businesses": businesses,
		"total":      total,
		"limit":      limit,
		"offset":     offset,
	})
}

// handleGetBusiness retrieves a business by ID
func (s *Server) handleGetBusiness(w http.ResponseWriter, r *http.Request) {
	businessID, ok := s.pathUUID(w, r, "id", "business ID")
	if !ok {
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

	s.jsonResponse(w, http.StatusOK, business)
}

// handleDeleteBusiness deletes a business profile
func (s *Server) handleDeleteBusiness(w http.ResponseWriter, r *http.Request) {
	businessID, ok := s.pathUUID(w, r, "id", "business ID")
	if !ok {
		return
	}

	if err := s.db.DeleteBusiness(r.Context(), businessID); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleUpdateVoice updates the business voice summary used by reply drafting
func (s *Server) handleUpdateVoice(w http.ResponseWriter, r *http.Request) {
	businessID, ok := s.pathUUID(w, r, "id", "business ID")
	if !ok {
		return
	}

	var req struct {
		VoiceSummary string `json:"voice_summary"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.VoiceSummary == "" {
		s.errorResponse(w, http.StatusBadRequest, "Voice summary is required")
		return
	}

	if err := s.db.UpdateVoiceSummary(r.Context(), businessID, req.VoiceSummary); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "updated"})
}

// handleGetTaxonomy returns the generated label taxonomy for a business,
// built from its industry and current team roster.
func (s *Server) handleGetTaxonomy(w http.ResponseWriter, r *http.Request) {
	businessID, ok := s.pathUUID(w, r, "id", "business ID")
	if !ok {
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

	team, err := s.db.LoadTeam(r.Context(), businessID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	tax, err := taxonomy.Generate(business.Industry, team, business.CustomCategories)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to generate taxonomy: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, tax)
}

// handleUpdateCategories replaces the business's custom top-level categories.
// Existing base category names are merged away at generation time, so sending
// a name like "Urgent" is accepted but has no effect.
func (s *Server) handleUpdateCategories(w http.ResponseWriter, r *http.Request) {
	businessID, ok := s.pathUUID(w, r, "id", "business ID")
	if !ok {
		return
	}

	var req struct {
		CustomCategories []string `json:"custom_categories"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	// Category name validation is industry-independent, so the check runs
	// before the business row is loaded.
	if _, err := taxonomy.Generate(taxonomy.IndustryGeneric, nil, req.CustomCategories); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid custom categories: "+err.Error())
		return
	}

	if err := s.db.UpdateCustomCategories(r.Context(), businessID, req.CustomCategories); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "updated"})
}
