package triage

// conditionRecord is one fixed knowledge-base entry mapping a symptom set
// to a named condition, base probability and recommendations.
type conditionRecord struct {
	name            string
	symptoms        []string
	baseProbability int
	description     string
	recommendations []string
}

// conditionKB is registered in ranking-tiebreak order: when two conditions
// score the same probability, the earlier entry wins.
var conditionKB = []conditionRecord{
	{
		name:            "tension headache",
		symptoms:        []string{"headache", "stress", "tight feeling"},
		baseProbability: 70,
		description:     "Common type of headache often caused by stress or muscle tension",
		recommendations: []string{"Rest in quiet room", "Apply cold/warm compress", "Stay hydrated"},
	},
	{
		name:            "common cold",
		symptoms:        []string{"runny nose", "cough", "sore throat", "fatigue"},
		baseProbability: 80,
		description:     "Viral infection of upper respiratory tract",
		recommendations: []string{"Rest", "Increase fluid intake", "Use humidifier"},
	},
	{
		name:            "indigestion",
		symptoms:        []string{"stomach pain", "nausea", "bloating", "heartburn"},
		baseProbability: 75,
		description:     "Difficulty digesting food, often related to diet or stress",
		recommendations: []string{"Eat smaller meals", "Avoid spicy foods", "Stay upright after eating"},
	},
	{
		name:            "migraine",
		symptoms:        []string{"headache", "nausea", "dizzy", "light sensitivity"},
		baseProbability: 60,
		description:     "Recurrent headache disorder, often with nausea or sensitivity to light",
		recommendations: []string{"Rest in dark quiet room", "Stay hydrated", "Track triggers"},
	},
	{
		name:            "seasonal allergies",
		symptoms:        []string{"runny nose", "sore throat", "cough", "itchy eyes"},
		baseProbability: 65,
		description:     "Immune response to airborne allergens such as pollen or dust",
		recommendations: []string{"Limit outdoor exposure on high-pollen days", "Rinse sinuses", "Keep windows closed"},
	},
}

const probabilityCap = 95 // never assert a condition with full certainty

// MatchConditions scores the knowledge base against extracted symptom
// tokens. A token matches a condition symptom when either is a substring of
// the other. Each matching token adds 10 points to the base probability,
// capped at probabilityCap. Results are sorted by probability descending
// with registration order breaking ties. An empty token list yields nil.
func MatchConditions(symptoms []string) []ConditionMatch {
	if len(symptoms) == 0 {
		return nil
	}

	var matches []ConditionMatch
	for _, rec := range conditionKB {
		matchCount := 0
		for _, token := range symptoms {
			if overlaps(token, rec.symptoms) {
				matchCount++
			}
		}
		if matchCount == 0 {
			continue
		}
		probability := rec.baseProbability + 10*matchCount
		if probability > probabilityCap {
			probability = probabilityCap
		}
		matches = append(matches, ConditionMatch{
			Condition:       rec.name,
			Probability:     probability,
			Description:     rec.description,
			Recommendations: rec.recommendations,
		})
	}

	// Insertion sort keeps the KB registration order stable for ties.
	for i := 1; i < len(matches); i++ {
		for j := i; j > 0 && matches[j].Probability > matches[j-1].Probability; j-- {
			matches[j], matches[j-1] = matches[j-1], matches[j]
		}
	}
	return matches
}

func overlaps(token string, conditionSymptoms []string) bool {
	for _, cs := range conditionSymptoms {
		if containsEither(token, cs) {
			return true
		}
	}
	return false
}
