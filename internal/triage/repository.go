package triage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound means no record exists with the given id.
	ErrNotFound = errors.New("record not found")
	// ErrAccessDenied means the record exists but belongs to another
	// profile. Callers must surface this as an authorization failure,
	// never as the record itself.
	ErrAccessDenied = errors.New("access denied")
)

type Repository interface {
	CreateSession(ctx context.Context, s *DiagnosticSession) error
	GetSession(ctx context.Context, id, profileID uuid.UUID) (*DiagnosticSession, error)
	UpdateSession(ctx context.Context, s *DiagnosticSession) error
	CreateAssessment(ctx context.Context, a *SymptomAssessment) error
	GetAssessment(ctx context.Context, id, profileID uuid.UUID) (*SymptomAssessment, error)
}

type postgresRepo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

// conversationData is the JSONB envelope the history column stores.
type conversationData struct {
	History []Message `json:"history"`
}

func (r *postgresRepo) CreateSession(ctx context.Context, s *DiagnosticSession) error {
	historyJSON, err := json.Marshal(conversationData{History: s.History})
	if err != nil {
		return err
	}
	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO diagnostic_sessions
			(id, profile_id, primary_complaint, conversation_data, urgency_level, stage, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID, s.ProfileID, s.PrimaryComplaint, historyJSON,
		s.UrgencyLevel.String(), s.Stage.String(), s.Status, s.CreatedAt, s.UpdatedAt)
	return err
}

func (r *postgresRepo) GetSession(ctx context.Context, id, profileID uuid.UUID) (*DiagnosticSession, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, profile_id, primary_complaint, conversation_data, urgency_level, stage, status, created_at, updated_at
		FROM diagnostic_sessions WHERE id = $1`, id)

	var s DiagnosticSession
	var historyJSON []byte
	var urgency, stage string
	err := row.Scan(&s.ID, &s.ProfileID, &s.PrimaryComplaint, &historyJSON,
		&urgency, &stage, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if s.ProfileID != profileID {
		return nil, ErrAccessDenied
	}

	var data conversationData
	if len(historyJSON) > 0 {
		if err := json.Unmarshal(historyJSON, &data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal conversation data: %w", err)
		}
	}
	s.History = data.History
	s.UrgencyLevel = ParseUrgency(urgency)
	s.Stage = ParseStage(stage)
	return &s, nil
}

func (r *postgresRepo) UpdateSession(ctx context.Context, s *DiagnosticSession) error {
	historyJSON, err := json.Marshal(conversationData{History: s.History})
	if err != nil {
		return err
	}
	s.UpdatedAt = time.Now()

	res, err := r.db.ExecContext(ctx, `
		UPDATE diagnostic_sessions
		SET conversation_data = $1, urgency_level = $2, stage = $3, status = $4, updated_at = $5
		WHERE id = $6 AND profile_id = $7`,
		historyJSON, s.UrgencyLevel.String(), s.Stage.String(), s.Status, s.UpdatedAt,
		s.ID, s.ProfileID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresRepo) CreateAssessment(ctx context.Context, a *SymptomAssessment) error {
	symptomsJSON, err := json.Marshal(a.SymptomsReported)
	if err != nil {
		return err
	}
	diagnosesJSON, err := json.Marshal(a.DifferentialDiagnoses)
	if err != nil {
		return err
	}
	redFlagsJSON, err := json.Marshal(a.RedFlags)
	if err != nil {
		return err
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	var timeframe sql.NullString
	if a.FollowUpTimeframe != "" {
		timeframe = sql.NullString{String: a.FollowUpTimeframe, Valid: true}
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO symptom_assessments
			(id, session_id, profile_id, symptoms_reported, differential_diagnoses, red_flags,
			 assessment_reasoning, confidence_level, urgency_classification, follow_up_needed,
			 follow_up_timeframe, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		a.ID, a.SessionID, a.ProfileID, symptomsJSON, diagnosesJSON, redFlagsJSON,
		a.AssessmentReasoning, a.ConfidenceLevel, a.UrgencyClassification.String(),
		a.FollowUpNeeded, timeframe, a.CreatedAt)
	return err
}

func (r *postgresRepo) GetAssessment(ctx context.Context, id, profileID uuid.UUID) (*SymptomAssessment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, session_id, profile_id, symptoms_reported, differential_diagnoses, red_flags,
		       assessment_reasoning, confidence_level, urgency_classification, follow_up_needed,
		       follow_up_timeframe, created_at
		FROM symptom_assessments WHERE id = $1`, id)

	var a SymptomAssessment
	var symptomsJSON, diagnosesJSON, redFlagsJSON []byte
	var urgency string
	var timeframe sql.NullString
	err := row.Scan(&a.ID, &a.SessionID, &a.ProfileID, &symptomsJSON, &diagnosesJSON, &redFlagsJSON,
		&a.AssessmentReasoning, &a.ConfidenceLevel, &urgency, &a.FollowUpNeeded,
		&timeframe, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if a.ProfileID != profileID {
		return nil, ErrAccessDenied
	}

	if len(symptomsJSON) > 0 {
		if err := json.Unmarshal(symptomsJSON, &a.SymptomsReported); err != nil {
			return nil, fmt.Errorf("failed to unmarshal symptoms: %w", err)
		}
	}
	if len(diagnosesJSON) > 0 {
		if err := json.Unmarshal(diagnosesJSON, &a.DifferentialDiagnoses); err != nil {
			return nil, fmt.Errorf("failed to unmarshal diagnoses: %w", err)
		}
	}
	if len(redFlagsJSON) > 0 {
		if err := json.Unmarshal(redFlagsJSON, &a.RedFlags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal red flags: %w", err)
		}
	}
	a.UrgencyClassification = ParseUrgency(urgency)
	a.FollowUpTimeframe = timeframe.String
	return &a, nil
}
