package triage

import "strings"

var salutations = map[string]bool{
	"hello": true, "hi": true, "hey": true, "namaste": true, "greetings": true,
}

// NextStage derives the conversation stage from the current message and its
// extracted symptom tokens. StageRecommendations is never returned here: it
// is entered only by the explicit analyze operation, so a conversation close
// never happens as a side effect of an ordinary turn.
func NextStage(message string, symptoms []string) Stage {
	if len(symptoms) == 0 || isSalutation(message) {
		return StageGreeting
	}
	if len(symptoms) >= 3 {
		return StageTriage
	}
	return StageSymptomGathering
}

// isSalutation matches on the leading word only; substring matching would
// trip on words like "this" or "chills".
func isSalutation(message string) bool {
	fields := strings.Fields(strings.ToLower(message))
	if len(fields) == 0 {
		return false
	}
	first := strings.Trim(fields[0], ".,!? ")
	return salutations[first]
}
