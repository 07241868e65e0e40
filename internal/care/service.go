package care

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/carebow/triage-engine/internal/platform/logger"
	"github.com/carebow/triage-engine/internal/triage"
)

// CaregiverDirectory is the availability collaborator. Implementations
// return only scheduling-safe provider data.
type CaregiverDirectory interface {
	AvailableCaregivers(ctx context.Context, location string, limit int) ([]Caregiver, error)
}

// AssessmentStore is the slice of the triage persistence layer this package
// needs: ownership-scoped assessment reads.
type AssessmentStore interface {
	GetAssessment(ctx context.Context, id, profileID uuid.UUID) (*triage.SymptomAssessment, error)
}

// CoordinationInput asks for care options for a completed assessment.
type CoordinationInput struct {
	AssessmentID      uuid.UUID
	PreferredCareType string
	Location          string
}

// CoordinationResult is the care-coordination response payload.
type CoordinationResult struct {
	Success             bool      `json:"success"`
	UrgencyLevel        string    `json:"urgencyLevel"`
	Recommendations     []Pathway `json:"recommendations"`
	CoordinationMessage string    `json:"coordinationMessage"`
	NextSteps           []string  `json:"nextSteps"`
}

type Service interface {
	Coordinate(ctx context.Context, profileID uuid.UUID, in CoordinationInput) (*CoordinationResult, error)
	GetAssessment(ctx context.Context, profileID, assessmentID uuid.UUID) (*triage.SymptomAssessment, error)
	ListPathways(ctx context.Context, profileID, assessmentID uuid.UUID) ([]Pathway, error)
}

type service struct {
	repo        Repository
	assessments AssessmentStore
	directory   CaregiverDirectory
	log         *logger.Logger
}

func NewService(repo Repository, assessments AssessmentStore, directory CaregiverDirectory, log *logger.Logger) Service {
	return &service{
		repo:        repo,
		assessments: assessments,
		directory:   directory,
		log:         log,
	}
}

const caregiverQueryLimit = 5

// Coordinate loads the assessment (enforcing ownership), routes its urgency
// tier to a pathway set, persists the whole batch and composes the
// user-facing coordination message. A failed batch insert fails the call:
// the caller retries rather than showing a truncated option set.
func (s *service) Coordinate(ctx context.Context, profileID uuid.UUID, in CoordinationInput) (*CoordinationResult, error) {
	assessment, err := s.assessments.GetAssessment(ctx, in.AssessmentID, profileID)
	if err != nil {
		return nil, err
	}
	urgency := assessment.UrgencyClassification

	// Emergency routing never waits on a caregiver lookup.
	var caregivers []Caregiver
	if urgency != triage.UrgencyEmergency {
		caregivers, err = s.directory.AvailableCaregivers(ctx, in.Location, caregiverQueryLimit)
		if err != nil {
			// Availability is advisory; routing still works without it.
			s.log.Warn("caregiver lookup failed", "error", err)
			caregivers = nil
		}
	}

	pathways := BuildPathways(urgency, caregivers)
	for i := range pathways {
		pathways[i].AssessmentID = assessment.ID
		pathways[i].ProfileID = profileID
	}

	if err := s.repo.CreatePathways(ctx, pathways); err != nil {
		return nil, fmt.Errorf("failed to store care recommendations: %w", err)
	}

	return &CoordinationResult{
		Success:             true,
		UrgencyLevel:        urgency.String(),
		Recommendations:     pathways,
		CoordinationMessage: CoordinationMessage(pathways),
		NextSteps:           NextSteps(urgency),
	}, nil
}

func (s *service) GetAssessment(ctx context.Context, profileID, assessmentID uuid.UUID) (*triage.SymptomAssessment, error) {
	return s.assessments.GetAssessment(ctx, assessmentID, profileID)
}

func (s *service) ListPathways(ctx context.Context, profileID, assessmentID uuid.UUID) ([]Pathway, error) {
	if _, err := s.assessments.GetAssessment(ctx, assessmentID, profileID); err != nil {
		return nil, err
	}
	return s.repo.ListPathways(ctx, assessmentID, profileID)
}
