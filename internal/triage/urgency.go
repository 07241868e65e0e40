package triage

import "strings"

// Single shared keyword table for urgency classification. The analyzer and
// chat surfaces must never diverge on these lists; any edit applies to both.
var emergencyKeywords = []string{
	"chest pain", "difficulty breathing", "can't breathe", "cant breathe",
	"shortness of breath", "severe pain", "unconscious", "stroke",
	"heart attack", "severe bleeding", "overdose", "suicide",
	"severe allergic reaction", "anaphylaxis",
}

var urgentKeywords = []string{
	"severe headache", "high fever", "persistent vomiting",
	"severe abdominal pain", "difficulty swallowing", "severe dizziness",
	"fainting", "severe injury",
}

// Pain-scale cues: only the top of the scale escalates to urgent; 7-8/10
// stays routine.
var severityCuesUrgent = []string{
	"severe", "unbearable", "worst pain", "10/10",
}

var severityCuesRoutine = []string{
	"moderate", "getting worse", "7/10", "8/10",
}

// ClassifyUrgency maps a message plus prior conversation text to an urgency
// tier using case-insensitive substring matching, evaluated in strict
// priority order. Pure and deterministic: it must run before any LLM call so
// emergency messages get a safe response even when the LLM is unavailable.
func ClassifyUrgency(message, history string) Urgency {
	msg := strings.ToLower(message)
	hist := strings.ToLower(history)

	for _, kw := range emergencyKeywords {
		if strings.Contains(msg, kw) || strings.Contains(hist, kw) {
			return UrgencyEmergency
		}
	}
	for _, kw := range urgentKeywords {
		if strings.Contains(msg, kw) || strings.Contains(hist, kw) {
			return UrgencyUrgent
		}
	}
	for _, cue := range severityCuesUrgent {
		if strings.Contains(msg, cue) {
			return UrgencyUrgent
		}
	}
	for _, cue := range severityCuesRoutine {
		if strings.Contains(msg, cue) {
			return UrgencyRoutine
		}
	}
	return UrgencySelfCare
}
