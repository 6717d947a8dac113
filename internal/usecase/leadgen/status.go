package leadgen

import "github.com/voxdesk-app/voxdesk/internal/domain/entities"

// DetermineStatus maps extraction signals to a lead lifecycle status.
// An appointment request with a reachable phone always wins.
func DetermineStatus(extracted Extracted) string {
	switch {
	case extracted.AppointmentRequested && extracted.Phone != "":
		return entities.LeadStatusAppointmentSet
	case extracted.Interested && extracted.Phone != "":
		return entities.LeadStatusInterested
	case extracted.Interested:
		return entities.LeadStatusContacted
	default:
		return entities.LeadStatusNew
	}
}

// DeterminePriority maps extraction signals to a follow-up priority.
func DeterminePriority(extracted Extracted) string {
	switch {
	case extracted.AppointmentRequested && extracted.FullName != "" && extracted.Phone != "":
		return entities.LeadPriorityHigh
	case extracted.Interested && extracted.Phone != "":
		return entities.LeadPriorityHigh
	case extracted.Interested:
		return entities.LeadPriorityMedium
	default:
		return entities.LeadPriorityLow
	}
}
