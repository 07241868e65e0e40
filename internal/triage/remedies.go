package triage

import "strings"

// Ayurvedic home-remedy table keyed by complaint. Keys are matched against
// symptom tokens bidirectionally (either side may be the substring).
var remedyTable = []struct {
	key      string
	remedies []string
}{
	{"headache", []string{
		"Apply peppermint oil to temples",
		"Drink ginger tea with honey",
		"Practice pranayama breathing",
		"Use cold compress on forehead",
	}},
	{"nausea", []string{
		"Sip ginger tea slowly",
		"Chew on fresh mint leaves",
		"Try fennel seed water",
		"Practice deep breathing",
	}},
	{"stress", []string{
		"Practice meditation for 10 minutes",
		"Drink chamomile tea",
		"Try ashwagandha supplement",
		"Practice yoga stretches",
	}},
	{"indigestion", []string{
		"Drink warm water with lemon",
		"Chew fennel seeds after meals",
		"Try cumin and coriander tea",
		"Avoid heavy, oily foods",
	}},
}

// LookupRemedies collects remedies for the given symptom tokens,
// deduplicated preserving first-seen order. An empty result is valid:
// callers offer no remedies rather than inventing them.
func LookupRemedies(symptoms []string) []string {
	var remedies []string
	seen := make(map[string]bool)
	for _, symptom := range symptoms {
		for _, entry := range remedyTable {
			if !containsEither(symptom, entry.key) {
				continue
			}
			for _, r := range entry.remedies {
				if !seen[r] {
					seen[r] = true
					remedies = append(remedies, r)
				}
			}
		}
	}
	return remedies
}

// containsEither reports whether a is a substring of b or b of a.
func containsEither(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}
