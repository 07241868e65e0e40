// Package care maps a finalized urgency tier to an ordered set of care
// pathways and persists them for scheduling.
package care

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carebow/triage-engine/internal/triage"
)

// Caregiver is the safe subset of provider data the availability
// collaborator exposes.
type Caregiver struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Specialty string    `json:"specialty"`
	Location  string    `json:"location"`
}

const (
	PathwayEmergency   = "emergency"
	PathwayTeleconsult = "teleconsult"
	PathwayHomeVisit   = "home_visit"
	PathwayLabTest     = "lab_test"
	PathwaySelfCare    = "self_care"
)

const (
	StatusRecommended = "recommended"
)

// Pathway is one suggested care option with advisory wait/cost metadata.
// Wait and cost strings are fixed per tier; they are estimates shown to the
// user, not guarantees.
type Pathway struct {
	ID                 uuid.UUID   `json:"id"`
	AssessmentID       uuid.UUID   `json:"assessment_id"`
	ProfileID          uuid.UUID   `json:"profile_id"`
	PathwayType        string      `json:"pathway_type"`
	ProviderType       string      `json:"provider_type,omitempty"`
	PriorityLevel      string      `json:"priority_level"`
	Notes              string      `json:"notes"`
	EstimatedWaitTime  string      `json:"estimated_wait_time"`
	CostEstimate       string      `json:"cost_estimate"`
	AvailableProviders []Caregiver `json:"available_providers,omitempty"`
	Status             string      `json:"status"`
	CreatedAt          time.Time   `json:"created_at"`
}

const urgentHomeVisitProviderCap = 3

// BuildPathways produces the ordered pathway list for a tier. The first
// entry is always the recommended one. Emergency never consults caregiver
// availability.
//
// TODO: decide whether routine home-visit candidate lists should be capped
// like urgent ones (currently unbounded).
func BuildPathways(urgency triage.Urgency, caregivers []Caregiver) []Pathway {
	switch urgency {
	case triage.UrgencyEmergency:
		return []Pathway{{
			PathwayType:       PathwayEmergency,
			ProviderType:      "emergency",
			PriorityLevel:     "emergency",
			Notes:             "Immediate medical attention required. Please call emergency services or go to the nearest emergency room.",
			EstimatedWaitTime: "0 minutes",
			CostEstimate:      "Emergency care pricing",
		}}

	case triage.UrgencyUrgent:
		pathways := []Pathway{{
			PathwayType:       PathwayTeleconsult,
			ProviderType:      "doctor",
			PriorityLevel:     "urgent",
			Notes:             "Same-day medical consultation recommended. Available for immediate video consultation.",
			EstimatedWaitTime: "15-30 minutes",
			CostEstimate:      "$75-125",
		}}
		if len(caregivers) > 0 {
			attached := caregivers
			if len(attached) > urgentHomeVisitProviderCap {
				attached = attached[:urgentHomeVisitProviderCap]
			}
			pathways = append(pathways, Pathway{
				PathwayType:        PathwayHomeVisit,
				ProviderType:       "doctor",
				PriorityLevel:      "urgent",
				Notes:              "Medical professional can visit your home within 2-4 hours.",
				EstimatedWaitTime:  "2-4 hours",
				CostEstimate:       "$150-250",
				AvailableProviders: attached,
			})
		}
		return pathways

	case triage.UrgencyRoutine:
		pathways := []Pathway{{
			PathwayType:       PathwayTeleconsult,
			ProviderType:      "doctor",
			PriorityLevel:     "routine",
			Notes:             "Schedule a consultation within 24-48 hours with a qualified healthcare professional.",
			EstimatedWaitTime: "1-2 days",
			CostEstimate:      "$50-100",
		}}
		if len(caregivers) > 0 {
			pathways = append(pathways, Pathway{
				PathwayType:        PathwayHomeVisit,
				ProviderType:       "doctor",
				PriorityLevel:      "routine",
				Notes:              "Schedule a home visit with a healthcare professional at your convenience.",
				EstimatedWaitTime:  "1-3 days",
				CostEstimate:       "$100-200",
				AvailableProviders: caregivers,
			})
		}
		pathways = append(pathways, Pathway{
			PathwayType:       PathwayLabTest,
			ProviderType:      "lab",
			PriorityLevel:     "routine",
			Notes:             "Consider lab tests to confirm diagnosis. Home sample collection available.",
			EstimatedWaitTime: "1-2 days",
			CostEstimate:      "$25-150",
		})
		return pathways

	default: // self_care
		return []Pathway{
			{
				PathwayType:       PathwaySelfCare,
				PriorityLevel:     "routine",
				Notes:             "Self-care measures recommended. Monitor symptoms and seek care if they worsen.",
				EstimatedWaitTime: "Immediate",
				CostEstimate:      "$0-50 for OTC medications",
			},
			{
				PathwayType:       PathwayTeleconsult,
				ProviderType:      "nurse",
				PriorityLevel:     "routine",
				Notes:             "Optional follow-up consultation with a nurse for guidance and reassurance.",
				EstimatedWaitTime: "2-24 hours",
				CostEstimate:      "$25-50",
			},
		}
	}
}

// CoordinationMessage renders the pathway list as a human-readable summary
// that recommends the first (highest-priority) option.
func CoordinationMessage(pathways []Pathway) string {
	var b strings.Builder
	b.WriteString("Based on your symptoms and assessment, I've identified several care options for you:\n")
	for i, p := range pathways {
		fmt.Fprintf(&b, "\n%d. **%s**\n   - Wait Time: %s\n   - Estimated Cost: %s\n   - %s\n",
			i+1, strings.ToUpper(strings.ReplaceAll(p.PathwayType, "_", " ")),
			p.EstimatedWaitTime, p.CostEstimate, p.Notes)
	}
	fmt.Fprintf(&b, "\nI recommend starting with the **%s** option given your symptom urgency level.\n",
		strings.ReplaceAll(pathways[0].PathwayType, "_", " "))
	b.WriteString("\nWould you like me to help you schedule any of these care options?")
	return b.String()
}

// NextSteps returns the tier-appropriate action list for the coordination
// response.
func NextSteps(urgency triage.Urgency) []string {
	if urgency == triage.UrgencyEmergency {
		return []string{"Call emergency services immediately", "Go to nearest emergency room"}
	}
	return []string{"Choose preferred care option", "Schedule appointment", "Follow care instructions"}
}
