package care

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/carebow/triage-engine/internal/platform/logger"
	"github.com/carebow/triage-engine/internal/triage"
)

type fakeAssessmentStore struct {
	assessment *triage.SymptomAssessment
	err        error
}

func (s *fakeAssessmentStore) GetAssessment(_ context.Context, id, profileID uuid.UUID) (*triage.SymptomAssessment, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.assessment == nil || s.assessment.ID != id {
		return nil, triage.ErrNotFound
	}
	if s.assessment.ProfileID != profileID {
		return nil, triage.ErrAccessDenied
	}
	return s.assessment, nil
}

type fakeDirectory struct {
	caregivers []Caregiver
	err        error
	calls      int
}

func (d *fakeDirectory) AvailableCaregivers(_ context.Context, _ string, _ int) ([]Caregiver, error) {
	d.calls++
	return d.caregivers, d.err
}

type fakePathwayRepo struct {
	stored    []Pathway
	insertErr error
}

func (r *fakePathwayRepo) CreatePathways(_ context.Context, pathways []Pathway) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.stored = append(r.stored, pathways...)
	return nil
}

func (r *fakePathwayRepo) ListPathways(_ context.Context, assessmentID, profileID uuid.UUID) ([]Pathway, error) {
	var out []Pathway
	for _, p := range r.stored {
		if p.AssessmentID == assessmentID && p.ProfileID == profileID {
			out = append(out, p)
		}
	}
	return out, nil
}

func testAssessment(urgency triage.Urgency) *triage.SymptomAssessment {
	return &triage.SymptomAssessment{
		ID:                    uuid.New(),
		SessionID:             uuid.New(),
		ProfileID:             uuid.New(),
		UrgencyClassification: urgency,
	}
}

func TestCoordinate_RoutineStoresAllPathways(t *testing.T) {
	assessment := testAssessment(triage.UrgencyRoutine)
	repo := &fakePathwayRepo{}
	dir := &fakeDirectory{caregivers: testCaregivers(2)}
	svc := NewService(repo, &fakeAssessmentStore{assessment: assessment}, dir, logger.NewNop())

	result, err := svc.Coordinate(context.Background(), assessment.ProfileID, CoordinationInput{
		AssessmentID: assessment.ID,
	})
	if err != nil {
		t.Fatalf("Coordinate error: %v", err)
	}
	if result.UrgencyLevel != "routine" {
		t.Fatalf("urgencyLevel = %q", result.UrgencyLevel)
	}
	if len(result.Recommendations) != 3 {
		t.Fatalf("expected 3 pathways, got %d", len(result.Recommendations))
	}
	if len(repo.stored) != 3 {
		t.Fatalf("stored %d pathways, want 3", len(repo.stored))
	}
	for _, p := range repo.stored {
		if p.AssessmentID != assessment.ID || p.ProfileID != assessment.ProfileID {
			t.Fatalf("pathway not bound to assessment owner: %+v", p)
		}
	}
}

func TestCoordinate_EmergencySkipsDirectory(t *testing.T) {
	assessment := testAssessment(triage.UrgencyEmergency)
	dir := &fakeDirectory{err: errors.New("directory must not be consulted")}
	svc := NewService(&fakePathwayRepo{}, &fakeAssessmentStore{assessment: assessment}, dir, logger.NewNop())

	result, err := svc.Coordinate(context.Background(), assessment.ProfileID, CoordinationInput{
		AssessmentID: assessment.ID,
	})
	if err != nil {
		t.Fatalf("Coordinate error: %v", err)
	}
	if dir.calls != 0 {
		t.Fatalf("directory consulted %d times on the emergency path", dir.calls)
	}
	if len(result.Recommendations) != 1 || result.Recommendations[0].PathwayType != PathwayEmergency {
		t.Fatalf("unexpected emergency routing: %+v", result.Recommendations)
	}
}

func TestCoordinate_DirectoryFailureIsAdvisory(t *testing.T) {
	assessment := testAssessment(triage.UrgencyUrgent)
	svc := NewService(&fakePathwayRepo{}, &fakeAssessmentStore{assessment: assessment},
		&fakeDirectory{err: errors.New("timeout")}, logger.NewNop())

	result, err := svc.Coordinate(context.Background(), assessment.ProfileID, CoordinationInput{
		AssessmentID: assessment.ID,
	})
	if err != nil {
		t.Fatalf("directory failure must not fail coordination: %v", err)
	}
	// Without availability data the urgent tier degrades to teleconsult only.
	if len(result.Recommendations) != 1 || result.Recommendations[0].PathwayType != PathwayTeleconsult {
		t.Fatalf("unexpected degraded routing: %+v", result.Recommendations)
	}
}

func TestCoordinate_BatchInsertFailureFailsCall(t *testing.T) {
	assessment := testAssessment(triage.UrgencyRoutine)
	svc := NewService(&fakePathwayRepo{insertErr: errors.New("deadlock")},
		&fakeAssessmentStore{assessment: assessment}, &fakeDirectory{}, logger.NewNop())

	_, err := svc.Coordinate(context.Background(), assessment.ProfileID, CoordinationInput{
		AssessmentID: assessment.ID,
	})
	if err == nil {
		t.Fatalf("batch insert failure must fail the call")
	}
}

func TestCoordinate_ForeignAssessmentRejected(t *testing.T) {
	assessment := testAssessment(triage.UrgencyRoutine)
	svc := NewService(&fakePathwayRepo{}, &fakeAssessmentStore{assessment: assessment},
		&fakeDirectory{}, logger.NewNop())

	_, err := svc.Coordinate(context.Background(), uuid.New(), CoordinationInput{
		AssessmentID: assessment.ID,
	})
	if !errors.Is(err, triage.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}

func TestListPathways_RequiresOwnership(t *testing.T) {
	assessment := testAssessment(triage.UrgencySelfCare)
	repo := &fakePathwayRepo{stored: []Pathway{{
		ID: uuid.New(), AssessmentID: assessment.ID, ProfileID: assessment.ProfileID,
		PathwayType: PathwaySelfCare,
	}}}
	svc := NewService(repo, &fakeAssessmentStore{assessment: assessment}, &fakeDirectory{}, logger.NewNop())

	pathways, err := svc.ListPathways(context.Background(), assessment.ProfileID, assessment.ID)
	if err != nil {
		t.Fatalf("ListPathways error: %v", err)
	}
	if len(pathways) != 1 {
		t.Fatalf("expected 1 pathway, got %d", len(pathways))
	}

	if _, err := svc.ListPathways(context.Background(), uuid.New(), assessment.ID); !errors.Is(err, triage.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}
