package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carebow/triage-engine/internal/auth"
	"github.com/carebow/triage-engine/internal/care"
	"github.com/carebow/triage-engine/internal/platform/logger"
	"github.com/carebow/triage-engine/internal/triage"
)

type Handler struct {
	svc     *Service
	careSvc care.Service
	log     *logger.Logger
}

func NewHandler(svc *Service, careSvc care.Service, log *logger.Logger) *Handler {
	return &Handler{svc: svc, careSvc: careSvc, log: log}
}

// HandleAssessmentReport streams the PDF for an owned, completed assessment.
func (h *Handler) HandleAssessmentReport(w http.ResponseWriter, r *http.Request) {
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

	assessment, err := h.careSvc.GetAssessment(r.Context(), profileID, assessmentID)
	if err != nil {
		if errors.Is(err, triage.ErrNotFound) || errors.Is(err, triage.ErrAccessDenied) {
			writeError(w, http.StatusForbidden, "Assessment not found or access denied")
			return
		}
		h.log.Error("assessment fetch failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An error occurred generating the report")
		return
	}

	pathways, err := h.careSvc.ListPathways(r.Context(), profileID, assessmentID)
	if err != nil {
		h.log.Error("pathway fetch failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An error occurred generating the report")
		return
	}

	pdf, err := h.svc.Generate(assessment, pathways)
	if err != nil {
		h.log.Error("report generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An error occurred generating the report")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=report_%s.pdf", assessment.ID))
	w.Write(pdf)
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/assessments/{id}/report", h.HandleAssessmentReport)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
