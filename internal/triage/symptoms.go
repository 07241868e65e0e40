package triage

import "strings"

// symptomPatterns are the fixed substring patterns used to pull symptom
// tokens out of free text. Order determines token order in the output.
var symptomPatterns = []string{
	"headache", "pain", "ache", "hurt", "sore", "fever", "nausea", "vomit",
	"cough", "tired", "fatigue", "dizzy", "weak", "stress", "anxiety",
	"stomach", "chest", "back", "joint", "muscle", "throat", "nose",
	"runny nose", "bloating", "heartburn",
}

// ExtractSymptoms returns the symptom tokens present in the message,
// deduplicated in first-seen pattern order.
func ExtractSymptoms(message string) []string {
	lower := strings.ToLower(message)
	var symptoms []string
	seen := make(map[string]bool)
	for _, pattern := range symptomPatterns {
		if strings.Contains(lower, pattern) && !seen[pattern] {
			seen[pattern] = true
			symptoms = append(symptoms, pattern)
		}
	}
	return symptoms
}
