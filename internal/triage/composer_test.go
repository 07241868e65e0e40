package triage

import (
	"strings"
	"testing"
)

func TestComposeTurn_EmergencyShortCircuit(t *testing.T) {
	// The fixed script wins regardless of personality, profile or stage.
	for _, p := range []Personality{PersonalityCaringNurse, PersonalityFamilyDoctor, PersonalityAyurvedicPractitioner} {
		turn := ComposeTurn(ComposeInput{
			Urgency:     UrgencyEmergency,
			Stage:       StageGreeting,
			Personality: p,
			Profile:     UserContext{Age: 80, MedicalHistory: []string{"diabetes"}},
		})
		if turn.UrgencyLevel != "emergency" {
			t.Fatalf("urgencyLevel = %q, want emergency", turn.UrgencyLevel)
		}
		if turn.Stage != "recommendations" {
			t.Fatalf("stage = %q, want recommendations", turn.Stage)
		}
		if !containsString(turn.SuggestedActions, "Call 911 immediately") {
			t.Fatalf("suggestedActions missing 911 action: %v", turn.SuggestedActions)
		}
		if len(turn.FollowUpQuestions) != 0 {
			t.Fatalf("emergency turn must have no follow-ups, got %v", turn.FollowUpQuestions)
		}
		if !strings.Contains(turn.Response, "call 911") {
			t.Fatalf("emergency script missing from response: %q", turn.Response)
		}
	}
}

func TestComposeTurn_PersonalityChangesToneOnly(t *testing.T) {
	in := ComposeInput{
		Message:    "I have a headache",
		Urgency:    UrgencySelfCare,
		Stage:      StageSymptomGathering,
		Symptoms:   []string{"headache", "ache"},
		Conditions: MatchConditions([]string{"headache"}),
		Remedies:   LookupRemedies([]string{"headache"}),
	}

	in.Personality = PersonalityCaringNurse
	nurse := ComposeTurn(in)
	in.Personality = PersonalityFamilyDoctor
	doctor := ComposeTurn(in)
	in.Personality = PersonalityAyurvedicPractitioner
	ayur := ComposeTurn(in)

	if nurse.Response == doctor.Response || doctor.Response == ayur.Response {
		t.Fatalf("personalities should produce distinct responses")
	}
	// The assessment itself must be identical across personalities.
	if nurse.UrgencyLevel != doctor.UrgencyLevel || nurse.Stage != doctor.Stage {
		t.Fatalf("personality changed classification")
	}
	if len(nurse.SuggestedActions) != len(doctor.SuggestedActions) {
		t.Fatalf("personality changed suggested actions")
	}
}

func TestComposeTurn_FollowUpsBySymptomCategory(t *testing.T) {
	pain := ComposeTurn(ComposeInput{
		Urgency: UrgencySelfCare, Stage: StageSymptomGathering,
		Symptoms: []string{"back", "pain"},
	})
	if !containsString(pain.FollowUpQuestions, "On a scale of 1-10, how severe is the pain?") {
		t.Fatalf("pain follow-ups missing severity question: %v", pain.FollowUpQuestions)
	}

	fever := ComposeTurn(ComposeInput{
		Urgency: UrgencySelfCare, Stage: StageSymptomGathering,
		Symptoms: []string{"fever"},
	})
	if !containsString(fever.FollowUpQuestions, "Are you experiencing chills?") {
		t.Fatalf("fever follow-ups missing chills question: %v", fever.FollowUpQuestions)
	}

	greeting := ComposeTurn(ComposeInput{Urgency: UrgencySelfCare, Stage: StageGreeting})
	if !containsString(greeting.FollowUpQuestions, "What symptoms are you experiencing?") {
		t.Fatalf("greeting follow-ups wrong: %v", greeting.FollowUpQuestions)
	}
}

func TestComposeTurn_SuggestedActionsByTier(t *testing.T) {
	urgent := ComposeTurn(ComposeInput{Urgency: UrgencyUrgent, Stage: StageTriage})
	if !containsString(urgent.SuggestedActions, "Seek medical care within 24 hours") {
		t.Fatalf("urgent actions wrong: %v", urgent.SuggestedActions)
	}
	routine := ComposeTurn(ComposeInput{Urgency: UrgencyRoutine, Stage: StageTriage})
	if !containsString(routine.SuggestedActions, "Consider teleconsult") {
		t.Fatalf("routine actions wrong: %v", routine.SuggestedActions)
	}
	selfCare := ComposeTurn(ComposeInput{Urgency: UrgencySelfCare, Stage: StageGreeting})
	if !containsString(selfCare.SuggestedActions, "Self-care measures") {
		t.Fatalf("self_care actions wrong: %v", selfCare.SuggestedActions)
	}
}

func TestIdentifyRiskFactors(t *testing.T) {
	risks := identifyRiskFactors([]string{"chest", "pain"}, UserContext{
		Age:            70,
		MedicalHistory: []string{"Type 2 Diabetes", "hypertension"},
	})
	for _, want := range []string{"Age over 65", "History of diabetes", "Chest pain symptoms"} {
		if !containsString(risks, want) {
			t.Fatalf("risk factors missing %q: %v", want, risks)
		}
	}
	if containsString(risks, "History of heart disease") {
		t.Fatalf("unexpected heart disease flag: %v", risks)
	}

	if got := identifyRiskFactors([]string{"headache"}, UserContext{Age: 30}); len(got) != 0 {
		t.Fatalf("expected no risk factors, got %v", got)
	}
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
