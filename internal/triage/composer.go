package triage

import (
	"fmt"
	"strings"
)

// Fixed emergency script. This path must never depend on LLM availability,
// personality or stage: every emergency classification gets exactly this.
const emergencyResponse = "Based on what you've described, this could be a medical emergency. " +
	"Please call 911 immediately or go to your nearest emergency room. Don't wait - " +
	"your symptoms require immediate professional medical attention."

var emergencyActions = []string{
	"Call 911 immediately",
	"Go to nearest emergency room",
	"Do not drive yourself",
	"Have someone stay with you",
}

// ComposeInput bundles everything the composer needs for one turn.
type ComposeInput struct {
	Message     string
	Urgency     Urgency
	Stage       Stage
	Personality Personality
	Symptoms    []string
	Conditions  []ConditionMatch
	Remedies    []string
	Profile     UserContext
}

// ComposeTurn builds the structured payload for a conversational turn from
// the local templates. Emergency short-circuits before any personality or
// stage logic runs.
func ComposeTurn(in ComposeInput) TurnResult {
	if in.Urgency == UrgencyEmergency {
		return TurnResult{
			Response:          emergencyResponse,
			UrgencyLevel:      UrgencyEmergency.String(),
			Stage:             StageRecommendations.String(),
			SuggestedActions:  emergencyActions,
			FollowUpQuestions: []string{},
			RiskFactors:       []string{"Emergency symptoms present"},
			NextSteps:         "Seek immediate emergency medical care",
		}
	}

	return TurnResult{
		Response:          personalityResponse(in),
		UrgencyLevel:      in.Urgency.String(),
		Stage:             in.Stage.String(),
		SuggestedActions:  suggestedActions(in.Urgency),
		FollowUpQuestions: followUpQuestions(in.Symptoms, in.Stage),
		RiskFactors:       identifyRiskFactors(in.Symptoms, in.Profile),
		NextSteps:         nextSteps(in.Urgency, in.Stage),
	}
}

// personalityResponse dispatches on the closed Personality set. Each variant
// changes tone and vocabulary only; the underlying assessment is identical.
func personalityResponse(in ComposeInput) string {
	switch in.Personality {
	case PersonalityFamilyDoctor:
		return doctorResponse(in.Urgency, in.Conditions)
	case PersonalityAyurvedicPractitioner:
		return ayurvedicResponse(in.Urgency, in.Remedies)
	default:
		return nurseResponse(in.Urgency, in.Conditions)
	}
}

func nurseResponse(urgency Urgency, conditions []ConditionMatch) string {
	if urgency == UrgencyUrgent {
		return "I'm concerned about what you're experiencing. Based on your symptoms, I strongly " +
			"recommend seeking medical care within the next 24 hours. While I can provide some " +
			"guidance, these symptoms may need professional evaluation. Let me ask you a few more " +
			"questions to better understand your situation."
	}
	if len(conditions) > 0 {
		top := conditions[0]
		return fmt.Sprintf("Thank you for sharing that with me. Based on what you've described, "+
			"this sounds like it could be related to %s. %s I'd like to ask you a few more "+
			"questions to better understand your symptoms and provide you with the most helpful "+
			"guidance.", top.Condition, top.Description)
	}
	return "I hear you, and I want to help you feel better. Let me ask you some questions to " +
		"better understand what you're experiencing so I can provide you with the most " +
		"appropriate guidance and care recommendations."
}

func doctorResponse(urgency Urgency, conditions []ConditionMatch) string {
	if urgency == UrgencyUrgent {
		return "Based on your presentation, I recommend prompt medical evaluation. These symptoms " +
			"warrant professional assessment within 24 hours. I'll help guide you through some " +
			"questions to better characterize your condition."
	}
	if len(conditions) > 0 {
		top := conditions[0]
		return fmt.Sprintf("Your symptoms are consistent with %s. %s Let me gather some "+
			"additional clinical information to provide you with appropriate recommendations.",
			top.Condition, top.Description)
	}
	return "I'd like to conduct a systematic review of your symptoms. This will help me provide " +
		"you with evidence-based recommendations and determine the most appropriate level of care."
}

func ayurvedicResponse(urgency Urgency, remedies []string) string {
	if urgency == UrgencyUrgent {
		return "While I can offer natural healing guidance, your symptoms suggest you should seek " +
			"conventional medical care promptly. Once you've addressed any urgent medical needs, " +
			"we can explore complementary Ayurvedic approaches to support your healing."
	}
	if len(remedies) > 0 {
		return fmt.Sprintf("From an Ayurvedic perspective, your symptoms suggest an imbalance that "+
			"can be addressed naturally. I have several time-tested remedies that may help, "+
			"including %s. Let me understand your constitution and current state better to "+
			"provide personalized guidance.", strings.ToLower(remedies[0][:1])+remedies[0][1:])
	}
	return "In Ayurveda, we believe in treating the root cause, not just the symptoms. Let me " +
		"understand your unique constitution and current imbalances to provide you with " +
		"personalized natural healing recommendations."
}

// followUpQuestions is keyed on detected symptom category, with a dedicated
// list for the greeting stage.
func followUpQuestions(symptoms []string, stage Stage) []string {
	if stage == StageGreeting {
		return []string{
			"What symptoms are you experiencing?",
			"How are you feeling today?",
			"What brings you here?",
		}
	}
	if hasToken(symptoms, "pain") || hasToken(symptoms, "ache") {
		return []string{
			"On a scale of 1-10, how severe is the pain?",
			"When did the pain start?",
			"What makes it better or worse?",
		}
	}
	if hasToken(symptoms, "fever") {
		return []string{
			"Have you taken your temperature?",
			"Are you experiencing chills?",
			"Any other symptoms like body aches?",
		}
	}
	return []string{
		"When did these symptoms start?",
		"Have you tried anything for relief?",
		"Are there any other symptoms?",
	}
}

// suggestedActions is keyed on urgency tier only.
func suggestedActions(urgency Urgency) []string {
	switch urgency {
	case UrgencyEmergency:
		return []string{"Call 911 immediately", "Go to emergency room", "Do not drive yourself"}
	case UrgencyUrgent:
		return []string{"Seek medical care within 24 hours", "Contact your doctor", "Monitor symptoms closely"}
	case UrgencyRoutine:
		return []string{"Consider teleconsult", "Rest and monitor symptoms", "Stay hydrated"}
	default:
		return []string{"Self-care measures", "Monitor for changes", "Rest and hydration"}
	}
}

// identifyRiskFactors combines profile flags with message-derived flags.
func identifyRiskFactors(symptoms []string, profile UserContext) []string {
	var risks []string
	if profile.Age > 65 {
		risks = append(risks, "Age over 65")
	}
	if hasHistory(profile, "diabetes") {
		risks = append(risks, "History of diabetes")
	}
	if hasHistory(profile, "heart disease") {
		risks = append(risks, "History of heart disease")
	}
	if hasToken(symptoms, "chest") && hasToken(symptoms, "pain") {
		risks = append(risks, "Chest pain symptoms")
	}
	return risks
}

func nextSteps(urgency Urgency, stage Stage) string {
	if urgency == UrgencyEmergency {
		return "Seek immediate emergency medical care"
	}
	if urgency == UrgencyUrgent {
		return "Schedule urgent medical evaluation"
	}
	if stage == StageRecommendations {
		return "Follow provided recommendations and monitor symptoms"
	}
	return "Continue health assessment"
}

func hasToken(symptoms []string, token string) bool {
	for _, s := range symptoms {
		if s == token {
			return true
		}
	}
	return false
}

func hasHistory(profile UserContext, condition string) bool {
	for _, h := range profile.MedicalHistory {
		if strings.Contains(strings.ToLower(h), condition) {
			return true
		}
	}
	return false
}
