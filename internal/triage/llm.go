package triage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// LLMClient is the upstream language-model collaborator. Declared here, on
// the consumer side, to decouple the engine from any provider SDK.
type LLMClient interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// AnalysisAssessment is the preliminary assessment block the LLM is asked
// to produce.
type AnalysisAssessment struct {
	PossibleConditions []struct {
		Condition  string  `json:"condition"`
		Confidence float64 `json:"confidence"`
		Reasoning  string  `json:"reasoning"`
	} `json:"possibleConditions"`
	UrgencyLevel      string   `json:"urgencyLevel"`
	RedFlags          []string `json:"redFlags"`
	RecommendedAction string   `json:"recommendedAction"`
}

// AnalysisResult is the structured contract every analysis reply must meet,
// whether it came from the LLM or from the local fallback.
type AnalysisResult struct {
	Response              string              `json:"response"`
	FollowUpQuestions     []string            `json:"followUpQuestions"`
	PreliminaryAssessment *AnalysisAssessment `json:"preliminaryAssessment"`
	NeedsMoreInfo         bool                `json:"needsMoreInfo"`
}

const analysisSystemPrompt = `You are CareBow AI, an empathetic health companion specializing in comprehensive symptom analysis. Help users feel heard, understood, and safely guided through their health concerns.

Your approach:
- Recognize signs of anxiety or fear and offer reassurance before analysis
- Ask 1-2 thoughtful follow-up questions about severity, triggers, and emotional state
- Consider age, gender, medical history, and cultural background
- Identify red flags with calm urgency, not alarm
- Prefer holistic guidance: conventional medical advice, traditional and natural remedies, mental-health support, and lifestyle changes
- Use natural language for possible conditions, avoiding clinical jargon

Patient Context:
%s

Respond in JSON format with:
{
  "response": "Your warm, empathetic response to the patient",
  "followUpQuestions": ["gentle question1", "caring question2"],
  "preliminaryAssessment": {
    "possibleConditions": [{"condition": "name in natural language", "confidence": 0.8, "reasoning": "why this makes sense"}],
    "urgencyLevel": "self_care|routine|urgent|emergency",
    "redFlags": ["concerning sign1"],
    "recommendedAction": "what they should do next, with emotional support"
  },
  "needsMoreInfo": true/false
}`

// BuildAnalysisMessages assembles the system prompt plus the conversation
// for the analysis call.
func BuildAnalysisMessages(symptoms string, history []Message, profile UserContext) []Message {
	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, Message{
		Role:    "system",
		Content: fmt.Sprintf(analysisSystemPrompt, profileContext(profile)),
	})
	messages = append(messages, history...)
	messages = append(messages, Message{Role: "user", Content: symptoms})
	return messages
}

func profileContext(profile UserContext) string {
	var b strings.Builder
	if profile.Age > 0 {
		fmt.Fprintf(&b, "Age: %d\n", profile.Age)
	}
	if profile.Gender != "" {
		fmt.Fprintf(&b, "Gender: %s\n", profile.Gender)
	}
	if len(profile.MedicalHistory) > 0 {
		fmt.Fprintf(&b, "Medical History: %s\n", strings.Join(profile.MedicalHistory, ", "))
	}
	if len(profile.CurrentMedications) > 0 {
		fmt.Fprintf(&b, "Current Medications: %s\n", strings.Join(profile.CurrentMedications, ", "))
	}
	if profile.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", profile.Location)
	}
	return b.String()
}

// ParseAnalysis decodes the model's reply defensively. A malformed reply is
// a first-class fallback branch, never an error: the raw text becomes the
// response and the assessment degrades to a safe routine-urgency default.
func ParseAnalysis(raw string) AnalysisResult {
	trimmed := strings.TrimSpace(raw)
	// Models sometimes wrap JSON in a markdown fence.
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")

	var result AnalysisResult
	if err := json.Unmarshal([]byte(trimmed), &result); err == nil && result.Response != "" {
		return result
	}

	return AnalysisResult{
		Response:      raw,
		NeedsMoreInfo: true,
		PreliminaryAssessment: &AnalysisAssessment{
			UrgencyLevel:      UrgencyRoutine.String(),
			RecommendedAction: "Please provide more specific information about your symptoms.",
		},
	}
}
