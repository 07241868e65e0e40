package triage

import (
	"time"

	"github.com/google/uuid"
)

// Urgency is the ordered severity classification driving which care
// pathways are offered. The zero value is the least severe tier.
type Urgency int

const (
	UrgencySelfCare Urgency = iota
	UrgencyRoutine
	UrgencyUrgent
	UrgencyEmergency
)

func (u Urgency) String() string {
	switch u {
	case UrgencyEmergency:
		return "emergency"
	case UrgencyUrgent:
		return "urgent"
	case UrgencyRoutine:
		return "routine"
	default:
		return "self_care"
	}
}

// ParseUrgency maps the stored/wire form back to a tier. Unknown values
// collapse to self_care, the least severe tier.
func ParseUrgency(s string) Urgency {
	switch s {
	case "emergency":
		return UrgencyEmergency
	case "urgent", "high":
		return UrgencyUrgent
	case "routine", "medium", "moderate":
		return UrgencyRoutine
	default:
		return UrgencySelfCare
	}
}

// MaxUrgency keeps session urgency monotonic: once a session is classified
// emergency, later turns never downgrade it.
func MaxUrgency(a, b Urgency) Urgency {
	if a > b {
		return a
	}
	return b
}

// Stage is a conversation's position in the fixed assessment progression.
// Transitions are forward-only within a session.
type Stage int

const (
	StageGreeting Stage = iota
	StageSymptomGathering
	StageTriage
	StageRecommendations
)

func (s Stage) String() string {
	switch s {
	case StageRecommendations:
		return "recommendations"
	case StageTriage:
		return "triage"
	case StageSymptomGathering:
		return "symptom_gathering"
	default:
		return "greeting"
	}
}

func ParseStage(s string) Stage {
	switch s {
	case "recommendations":
		return StageRecommendations
	case "triage":
		return StageTriage
	case "symptom_gathering":
		return StageSymptomGathering
	default:
		return StageGreeting
	}
}

// MaxStage enforces the no-backward-transition rule.
func MaxStage(a, b Stage) Stage {
	if a > b {
		return a
	}
	return b
}

// Personality selects a tone/vocabulary variant for composed responses.
// It is a closed set; unknown inputs are rejected at the validation
// boundary rather than silently falling back.
type Personality int

const (
	PersonalityCaringNurse Personality = iota
	PersonalityFamilyDoctor
	PersonalityAyurvedicPractitioner
)

func (p Personality) String() string {
	switch p {
	case PersonalityFamilyDoctor:
		return "family_doctor"
	case PersonalityAyurvedicPractitioner:
		return "ayurvedic_practitioner"
	default:
		return "caring_nurse"
	}
}

// ParsePersonality returns false for anything outside the closed set.
func ParsePersonality(s string) (Personality, bool) {
	switch s {
	case "", "caring_nurse":
		return PersonalityCaringNurse, true
	case "family_doctor":
		return PersonalityFamilyDoctor, true
	case "ayurvedic_practitioner":
		return PersonalityAyurvedicPractitioner, true
	default:
		return PersonalityCaringNurse, false
	}
}

type Message struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// UserContext carries optional profile details supplied with a turn.
type UserContext struct {
	Age                int      `json:"age,omitempty"`
	Gender             string   `json:"gender,omitempty"`
	MedicalHistory     []string `json:"medicalHistory,omitempty"`
	CurrentMedications []string `json:"currentMedications,omitempty"`
	Location           string   `json:"location,omitempty"`
}

// DiagnosticSession is the aggregate root for one triage conversation.
type DiagnosticSession struct {
	ID               uuid.UUID `json:"id" db:"id"`
	ProfileID        uuid.UUID `json:"profile_id" db:"profile_id"`
	PrimaryComplaint string    `json:"primary_complaint" db:"primary_complaint"`

	// Episodic memory: append-only conversation history.
	History []Message `json:"history" db:"conversation_data"`

	UrgencyLevel Urgency `json:"urgency_level" db:"urgency_level"`
	Stage        Stage   `json:"stage" db:"stage"`

	Status    string    `json:"status" db:"status"` // "active" or "completed"
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

const (
	SessionStatusActive    = "active"
	SessionStatusCompleted = "completed"
)

// ConditionMatch is one ranked differential diagnosis entry.
type ConditionMatch struct {
	Condition       string   `json:"condition"`
	Probability     int      `json:"probability"` // percent, capped at 95
	Description     string   `json:"description"`
	Recommendations []string `json:"recommendations"`
}

// ReportedSymptoms preserves both the raw complaint text and the
// structured context it arrived with.
type ReportedSymptoms struct {
	Primary string      `json:"primary"`
	Context UserContext `json:"context"`
}

// SymptomAssessment is the finalized analysis for a completed session.
// Created once when the analyze operation runs; immutable afterward.
type SymptomAssessment struct {
	ID                    uuid.UUID        `json:"id" db:"id"`
	SessionID             uuid.UUID        `json:"session_id" db:"session_id"`
	ProfileID             uuid.UUID        `json:"profile_id" db:"profile_id"`
	SymptomsReported      ReportedSymptoms `json:"symptoms_reported" db:"symptoms_reported"`
	DifferentialDiagnoses []ConditionMatch `json:"differential_diagnoses" db:"differential_diagnoses"`
	RedFlags              []string         `json:"red_flags" db:"red_flags"`
	AssessmentReasoning   string           `json:"assessment_reasoning" db:"assessment_reasoning"`
	ConfidenceLevel       string           `json:"confidence_level" db:"confidence_level"` // high|medium|low
	UrgencyClassification Urgency          `json:"urgency_classification" db:"urgency_classification"`
	FollowUpNeeded        bool             `json:"follow_up_needed" db:"follow_up_needed"`
	FollowUpTimeframe     string           `json:"follow_up_timeframe,omitempty" db:"follow_up_timeframe"`
	CreatedAt             time.Time        `json:"created_at" db:"created_at"`
}

// TurnResult is the structured payload for one conversational turn.
type TurnResult struct {
	Response          string   `json:"response"`
	UrgencyLevel      string   `json:"urgencyLevel"`
	Stage             string   `json:"stage"`
	SuggestedActions  []string `json:"suggestedActions"`
	FollowUpQuestions []string `json:"followUpQuestions"`
	RiskFactors       []string `json:"riskFactors"`
	NextSteps         string   `json:"nextSteps"`
}
