package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/floworx/triage-agent/internal/types"
)

// handleUpsertManager creates or updates a manager on the business roster
func (s *Server) handleUpsertManager(w http.ResponseWriter, r *http.Request) {
	businessID, ok := s.pathUUID(w, r, "id", "business ID")
	if !ok {
		return
	}

	var req types.Manager
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	roster := &types.Team{Managers: []types.Manager{req}}
	if err := roster.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid manager: "+err.Error())
		return
	}

	member, err := s.db.UpsertManager(r.Context(), businessID, req.Name, req.Email, req.Specialties, req.OnCall)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, member)
}

// handleListManagers lists the managers on the business roster
func (s *Server) handleListManagers(w http.ResponseWriter, r *http.Request) {
	businessID, ok := s.pathUUID(w, r, "id", "business ID")
	if !ok {
		return
	}

	managers, err := s.db.ListManagers(r.Context(), businessID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"managers": managers})
}

// handleDeleteManager removes a manager from the business roster
func (s *Server) handleDeleteManager(w http.ResponseWriter, r *http.Request) {
	businessID, ok := s.pathUUID(w, r, "id", "business ID")
	if !ok {
		return
	}

	name := strings.TrimSpace(r.PathValue("name"))
	if name == "" {
		s.errorResponse(w, http.StatusBadRequest, "Manager name is required")
		return
	}

	if err := s.db.DeleteManager(r.Context(), businessID, name); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleUpsertSupplier creates or updates a supplier on the business roster
func (s *Server) handleUpsertSupplier(w http.ResponseWriter, r *http.Request) {
	businessID, ok := s.pathUUID(w, r, "id", "business ID")
	if !ok {
		return
	}

	var req types.Supplier
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	roster := &types.Team{Suppliers: []types.Supplier{req}}
	if err := roster.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid supplier: "+err.Error())
		return
	}

	supplier, err := s.db.UpsertSupplier(r.Context(), businessID, req.Name, req.Domains, req.Owner, req.Contact)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, supplier)
}

// handleListSuppliers lists the suppliers on the business roster
func (s *Server) handleListSuppliers(w http.ResponseWriter, r *http.Request) {
	businessID, ok := s.pathUUID(w, r, "id", "business ID")
	if !ok {
		return
	}

	suppliers, err := s.db.ListSuppliers(r.Context(), businessID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"suppliers": suppliers})
}

// handleDeleteSupplier removes a supplier from the business roster
func (s *Server) handleDeleteSupplier(w http.ResponseWriter, r *http.Request) {
	businessID, ok := s.pathUUID(w, r, "id", "business ID")
	if !ok {
		return
	}

	name := strings.TrimSpace(r.PathValue("name"))
	if name == "" {
		s.errorResponse(w, http.StatusBadRequest, "Supplier name is required")
		return
	}

	if err := s.db.DeleteSupplier(r.Context(), businessID, name); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}
