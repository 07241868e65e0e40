package care

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carebow/triage-engine/internal/auth"
	"github.com/carebow/triage-engine/internal/platform/logger"
	"github.com/carebow/triage-engine/internal/triage"
)

type Handler struct {
	svc Service
	log *logger.Logger
}

func NewHandler(svc Service, log *logger.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

type CoordinationRequest struct {
	AssessmentID      string `json:"assessmentId"`
	PreferredCareType string `json:"preferredCareType,omitempty"`
	Location          string `json:"location,omitempty"`
}

func (h *Handler) HandleCoordinate(w http.ResponseWriter, r *http.Request) {
	var req CoordinationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	assessmentID, err := uuid.Parse(req.AssessmentID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid assessment id")
		return
	}

	profileID, ok := auth.ProfileID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	result, err := h.svc.Coordinate(r.Context(), profileID, CoordinationInput{
		AssessmentID:      assessmentID,
		PreferredCareType: req.PreferredCareType,
		Location:          req.Location,
	})
	if err != nil {
		h.writeServiceError(w, "care coordination failed", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleListPathways(w http.ResponseWriter, r *http.Request) {
	profileID, ok := auth.ProfileID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	assessmentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid assessment id")
		return
	}

	pathways, err := h.svc.ListPathways(r.Context(), profileID, assessmentID)
	if err != nil {
		h.writeServiceError(w, "pathway listing failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"recommendations": pathways})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, msg string, err error) {
	if errors.Is(err, triage.ErrNotFound) || errors.Is(err, triage.ErrAccessDenied) {
		writeError(w, http.StatusForbidden, "Assessment not found or access denied")
		return
	}
	h.log.Error(msg, "error", err)
	writeError(w, http.StatusInternalServerError, "An error occurred during care coordination")
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/care/coordinate", h.HandleCoordinate)
	r.Get("/assessments/{id}/pathways", h.HandleListPathways)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
