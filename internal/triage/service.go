package triage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carebow/triage-engine/internal/platform/logger"
)

// TTSClient is the text-to-speech collaborator.
type TTSClient interface {
	Synthesize(ctx context.Context, text string, voiceID string) ([]byte, error)
}

// STTClient is the speech-to-text collaborator.
type STTClient interface {
	Transcribe(ctx context.Context, audioData []byte) (string, error)
}

// ChatInput is one conversational turn.
type ChatInput struct {
	SessionID   uuid.UUID // uuid.Nil starts a new session
	Message     string
	Personality Personality
	Profile     UserContext
}

// ChatOutput pairs the turn result with the session it was applied to.
type ChatOutput struct {
	SessionID uuid.UUID
	Turn      TurnResult
}

// AnalyzeInput is the explicit final-analysis action, distinct from a
// conversational turn.
type AnalyzeInput struct {
	SessionID uuid.UUID // uuid.Nil starts a new session
	Symptoms  string
	History   []Message
	Profile   UserContext
}

// AnalyzeOutput carries the analysis and, when the assessment completed,
// the stored assessment id.
type AnalyzeOutput struct {
	SessionID    uuid.UUID
	AssessmentID uuid.UUID // uuid.Nil when more info is still needed
	Analysis     AnalysisResult
}

type Service interface {
	Chat(ctx context.Context, profileID uuid.UUID, in ChatInput) (*ChatOutput, error)
	Analyze(ctx context.Context, profileID uuid.UUID, in AnalyzeInput) (*AnalyzeOutput, error)
	GetSession(ctx context.Context, profileID, sessionID uuid.UUID) (*DiagnosticSession, error)
	TranscribeAudio(ctx context.Context, audioData []byte) (string, error)
	SynthesizeSpeech(ctx context.Context, text string) ([]byte, error)
}

type service struct {
	repo       Repository
	llm        LLMClient
	tts        TTSClient
	stt        STTClient
	log        *logger.Logger
	llmTimeout time.Duration
}

func NewService(repo Repository, llm LLMClient, tts TTSClient, stt STTClient, log *logger.Logger, llmTimeout time.Duration) Service {
	if llmTimeout <= 0 {
		llmTimeout = 30 * time.Second
	}
	return &service{
		repo:       repo,
		llm:        llm,
		tts:        tts,
		stt:        stt,
		log:        log,
		llmTimeout: llmTimeout,
	}
}

// Chat applies one conversational turn: classify locally, run the matcher
// and stage tracker, compose from local templates and persist the session.
// No LLM is involved on this path.
func (s *service) Chat(ctx context.Context, profileID uuid.UUID, in ChatInput) (*ChatOutput, error) {
	message := Sanitize(in.Message, maxMessageLen)

	session, err := s.loadOrCreateSession(ctx, profileID, in.SessionID, message)
	if err != nil {
		return nil, err
	}

	urgency := MaxUrgency(session.UrgencyLevel, ClassifyUrgency(message, historyText(session.History)))

	if urgency == UrgencyEmergency {
		turn := ComposeTurn(ComposeInput{Urgency: UrgencyEmergency})
		s.applyTurn(session, message, turn.Response, UrgencyEmergency, StageRecommendations)
		// User safety information is never gated on storage success: if the
		// write fails we log and still hand the script back.
		if err := s.repo.UpdateSession(ctx, session); err != nil {
			s.log.Error("failed to persist emergency turn", "session_id", session.ID, "error", err)
		}
		return &ChatOutput{SessionID: session.ID, Turn: turn}, nil
	}

	symptoms := ExtractSymptoms(message)
	stage := MaxStage(session.Stage, NextStage(message, symptoms))
	conditions := MatchConditions(symptoms)
	remedies := LookupRemedies(symptoms)

	turn := ComposeTurn(ComposeInput{
		Message:     message,
		Urgency:     urgency,
		Stage:       stage,
		Personality: in.Personality,
		Symptoms:    symptoms,
		Conditions:  conditions,
		Remedies:    remedies,
		Profile:     in.Profile,
	})

	s.applyTurn(session, message, turn.Response, urgency, stage)
	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}
	return &ChatOutput{SessionID: session.ID, Turn: turn}, nil
}

// Analyze runs the explicit final analysis. The local classifier always runs
// first; an emergency never reaches the LLM. Upstream failures degrade to a
// locally composed analysis instead of failing the turn.
func (s *service) Analyze(ctx context.Context, profileID uuid.UUID, in AnalyzeInput) (*AnalyzeOutput, error) {
	symptoms := Sanitize(in.Symptoms, maxSymptomsLen)

	session, err := s.loadOrCreateSession(ctx, profileID, in.SessionID, symptoms)
	if err != nil {
		return nil, err
	}
	if len(in.History) > 0 && len(session.History) == 0 {
		session.History = in.History
	}

	urgency := MaxUrgency(session.UrgencyLevel, ClassifyUrgency(symptoms, historyText(session.History)))

	var analysis AnalysisResult
	if urgency == UrgencyEmergency {
		analysis = emergencyAnalysis()
	} else {
		analysis = s.runLLMAnalysis(ctx, symptoms, session.History, in.Profile)
		if analysis.PreliminaryAssessment != nil {
			urgency = MaxUrgency(urgency, ParseUrgency(analysis.PreliminaryAssessment.UrgencyLevel))
		}
	}

	// A session completes only when it gets an assessment. When the analysis
	// still needs more information the session stays active with its urgency
	// and history updated, ready for the next turn.
	completed := !analysis.NeedsMoreInfo && analysis.PreliminaryAssessment != nil

	stage := session.Stage
	if completed {
		stage = StageRecommendations
	}
	s.applyTurn(session, symptoms, analysis.Response, urgency, stage)
	if completed {
		session.Status = SessionStatusCompleted
	}
	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	out := &AnalyzeOutput{SessionID: session.ID, Analysis: analysis}

	if completed {
		assessment := buildAssessment(session, symptoms, in.Profile, urgency, analysis)
		if err := s.repo.CreateAssessment(ctx, assessment); err != nil {
			return nil, fmt.Errorf("failed to store assessment: %w", err)
		}
		out.AssessmentID = assessment.ID
	}
	return out, nil
}

func (s *service) GetSession(ctx context.Context, profileID, sessionID uuid.UUID) (*DiagnosticSession, error) {
	return s.repo.GetSession(ctx, sessionID, profileID)
}

func (s *service) TranscribeAudio(ctx context.Context, audioData []byte) (string, error) {
	return s.stt.Transcribe(ctx, audioData)
}

func (s *service) SynthesizeSpeech(ctx context.Context, text string) ([]byte, error) {
	return s.tts.Synthesize(ctx, text, "")
}

// runLLMAnalysis calls the model under a timeout and falls back to the
// local knowledge base when the call fails.
func (s *service) runLLMAnalysis(ctx context.Context, symptoms string, history []Message, profile UserContext) AnalysisResult {
	llmCtx, cancel := context.WithTimeout(ctx, s.llmTimeout)
	defer cancel()

	raw, err := s.llm.Chat(llmCtx, BuildAnalysisMessages(symptoms, history, profile))
	if err != nil {
		s.log.Warn("llm analysis failed, degrading to local templates", "error", err)
		return s.localAnalysis(symptoms, history, profile)
	}
	return ParseAnalysis(raw)
}

// localAnalysis composes an analysis from the fixed knowledge base alone.
func (s *service) localAnalysis(symptomsText string, history []Message, profile UserContext) AnalysisResult {
	symptoms := ExtractSymptoms(symptomsText)
	conditions := MatchConditions(symptoms)
	urgency := ClassifyUrgency(symptomsText, historyText(history))
	stage := NextStage(symptomsText, symptoms)

	turn := ComposeTurn(ComposeInput{
		Message:    symptomsText,
		Urgency:    urgency,
		Stage:      stage,
		Symptoms:   symptoms,
		Conditions: conditions,
		Remedies:   LookupRemedies(symptoms),
		Profile:    profile,
	})

	assessment := &AnalysisAssessment{
		UrgencyLevel:      urgency.String(),
		RedFlags:          turn.RiskFactors,
		RecommendedAction: turn.NextSteps,
	}
	for _, c := range conditions {
		assessment.PossibleConditions = append(assessment.PossibleConditions, struct {
			Condition  string  `json:"condition"`
			Confidence float64 `json:"confidence"`
			Reasoning  string  `json:"reasoning"`
		}{Condition: c.Condition, Confidence: float64(c.Probability) / 100, Reasoning: c.Description})
	}

	return AnalysisResult{
		Response:              turn.Response,
		FollowUpQuestions:     turn.FollowUpQuestions,
		PreliminaryAssessment: assessment,
		NeedsMoreInfo:         len(conditions) == 0,
	}
}

func emergencyAnalysis() AnalysisResult {
	return AnalysisResult{
		Response:          emergencyResponse,
		FollowUpQuestions: []string{},
		NeedsMoreInfo:     false,
		PreliminaryAssessment: &AnalysisAssessment{
			UrgencyLevel:      UrgencyEmergency.String(),
			RedFlags:          []string{"Emergency symptoms present"},
			RecommendedAction: "Seek immediate emergency medical care",
		},
	}
}

func buildAssessment(session *DiagnosticSession, symptoms string, profile UserContext, urgency Urgency, analysis AnalysisResult) *SymptomAssessment {
	pa := analysis.PreliminaryAssessment

	var diagnoses []ConditionMatch
	topConfidence := 0.0
	for _, c := range pa.PossibleConditions {
		if c.Confidence > topConfidence {
			topConfidence = c.Confidence
		}
		probability := int(c.Confidence * 100)
		if probability > probabilityCap {
			probability = probabilityCap
		}
		if probability < 0 {
			probability = 0
		}
		diagnoses = append(diagnoses, ConditionMatch{
			Condition:   c.Condition,
			Probability: probability,
			Description: c.Reasoning,
		})
	}

	confidence := "low"
	switch {
	case topConfidence > 0.7:
		confidence = "high"
	case topConfidence > 0.4:
		confidence = "medium"
	}

	followUpTimeframe := ""
	switch urgency {
	case UrgencyEmergency:
		followUpTimeframe = "immediate"
	case UrgencyUrgent:
		followUpTimeframe = "24hours"
	case UrgencyRoutine:
		followUpTimeframe = "week"
	}

	return &SymptomAssessment{
		ID:        uuid.New(),
		SessionID: session.ID,
		ProfileID: session.ProfileID,
		SymptomsReported: ReportedSymptoms{
			Primary: symptoms,
			Context: profile,
		},
		DifferentialDiagnoses: diagnoses,
		RedFlags:              pa.RedFlags,
		AssessmentReasoning:   analysis.Response,
		ConfidenceLevel:       confidence,
		UrgencyClassification: urgency,
		FollowUpNeeded:        urgency != UrgencySelfCare,
		FollowUpTimeframe:     followUpTimeframe,
	}
}

func (s *service) loadOrCreateSession(ctx context.Context, profileID, sessionID uuid.UUID, complaint string) (*DiagnosticSession, error) {
	if sessionID != uuid.Nil {
		return s.repo.GetSession(ctx, sessionID, profileID)
	}
	session := &DiagnosticSession{
		ID:               uuid.New(),
		ProfileID:        profileID,
		PrimaryComplaint: complaint,
		History:          []Message{},
		UrgencyLevel:     UrgencySelfCare,
		Stage:            StageGreeting,
		Status:           SessionStatusActive,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create diagnostic session: %w", err)
	}
	return session, nil
}

func (s *service) applyTurn(session *DiagnosticSession, userText, assistantText string, urgency Urgency, stage Stage) {
	now := time.Now()
	session.History = append(session.History,
		Message{Role: "user", Content: userText, Timestamp: now},
		Message{Role: "assistant", Content: assistantText, Timestamp: now},
	)
	session.UrgencyLevel = MaxUrgency(session.UrgencyLevel, urgency)
	session.Stage = MaxStage(session.Stage, stage)
}

func historyText(history []Message) string {
	var b strings.Builder
	for _, m := range history {
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	return b.String()
}
