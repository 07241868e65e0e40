package triage

import (
	"errors"
	"strings"

	"github.com/hashicorp/go-multierror"
)

const (
	maxSymptomsLen = 2000
	maxMessageLen  = 1000
)

var validTones = map[string]bool{
	"": true, "gentle": true, "direct": true, "detailed": true, "short": true,
}

// ValidateChatInput checks a conversational turn before any processing.
// All problems are reported together rather than one at a time.
func ValidateChatInput(message, personality, tone string, profile UserContext) error {
	var result *multierror.Error
	if strings.TrimSpace(message) == "" {
		result = multierror.Append(result, errors.New("message is required"))
	} else if len(message) > maxMessageLen {
		result = multierror.Append(result, errors.New("message too long (max 1000 characters)"))
	}
	if _, ok := ParsePersonality(personality); !ok {
		result = multierror.Append(result, errors.New("invalid personality type"))
	}
	if !validTones[tone] {
		result = multierror.Append(result, errors.New("invalid tone type"))
	}
	if err := validateProfile(profile); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

// ValidateAnalyzeInput checks an analysis request.
func ValidateAnalyzeInput(symptoms string, profile UserContext) error {
	var result *multierror.Error
	if strings.TrimSpace(symptoms) == "" {
		result = multierror.Append(result, errors.New("symptoms are required"))
	} else if len(symptoms) > maxSymptomsLen {
		result = multierror.Append(result, errors.New("symptoms description too long (max 2000 characters)"))
	}
	if err := validateProfile(profile); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

func validateProfile(profile UserContext) error {
	if profile.Age < 0 || profile.Age > 150 {
		return errors.New("age must be between 0 and 150")
	}
	return nil
}

// Sanitize strips angle brackets, trims whitespace and truncates to the
// given limit. Applied to every free-text field before it is stored or fed
// into a prompt.
func Sanitize(s string, limit int) string {
	s = strings.NewReplacer("<", "", ">", "").Replace(s)
	s = strings.TrimSpace(s)
	if len(s) > limit {
		s = s[:limit]
	}
	return s
}
