package triage

import "testing"

func TestMatchConditions_EmptyInput(t *testing.T) {
	if got := MatchConditions(nil); got != nil {
		t.Fatalf("expected nil for empty token list, got %v", got)
	}
	if got := MatchConditions([]string{}); got != nil {
		t.Fatalf("expected nil for empty slice, got %v", got)
	}
}

func TestMatchConditions_TensionHeadache(t *testing.T) {
	matches := MatchConditions(ExtractSymptoms("I have a mild headache"))
	if len(matches) == 0 {
		t.Fatalf("expected at least one match")
	}
	found := false
	for _, m := range matches {
		if m.Condition == "tension headache" {
			found = true
			if m.Probability < 70 {
				t.Fatalf("tension headache probability = %d, want >= 70", m.Probability)
			}
		}
	}
	if !found {
		t.Fatalf("tension headache not in matches: %v", matches)
	}
}

func TestMatchConditions_ProbabilityBounds(t *testing.T) {
	tokens := []string{"headache", "stress", "nausea", "cough", "runny nose", "sore", "fatigue", "stomach", "bloating", "heartburn", "dizzy"}
	for _, m := range MatchConditions(tokens) {
		if m.Probability < 0 || m.Probability > 95 {
			t.Fatalf("probability %d for %s outside [0,95]", m.Probability, m.Condition)
		}
	}
}

func TestMatchConditions_SortedDescending(t *testing.T) {
	matches := MatchConditions([]string{"headache", "stress", "runny nose"})
	for i := 1; i < len(matches); i++ {
		if matches[i].Probability > matches[i-1].Probability {
			t.Fatalf("matches not sorted: %v", matches)
		}
	}
}

func TestMatchConditions_TieBreaksByRegistrationOrder(t *testing.T) {
	// headache alone scores tension headache (70+10=80) and migraine
	// (60+10=70); add nausea so migraine gains a second hit (60+20=80)
	// and ties tension headache. The earlier KB entry must come first.
	matches := MatchConditions([]string{"headache", "nausea"})
	var tension, migraine int = -1, -1
	for i, m := range matches {
		switch m.Condition {
		case "tension headache":
			tension = i
		case "migraine":
			migraine = i
		}
	}
	if tension == -1 || migraine == -1 {
		t.Fatalf("expected both tension headache and migraine: %v", matches)
	}
	if tension > migraine {
		t.Fatalf("tie should break by registration order, got tension=%d migraine=%d", tension, migraine)
	}
}
