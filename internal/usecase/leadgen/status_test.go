package leadgen

import (
	"testing"

	"github.com/voxdesk-app/voxdesk/internal/domain/entities"
)

func TestDetermineStatus(t *testing.T) {
	cases := []struct {
		name      string
		extracted Extracted
		want      string
	}{
		{"appointment with phone", Extracted{AppointmentRequested: true, Phone: "5551234567"}, entities.LeadStatusAppointmentSet},
		{"appointment with phone not interested", Extracted{AppointmentRequested: true, Interested: false, Phone: "5551234567"}, entities.LeadStatusAppointmentSet},
		{"appointment without phone falls through", Extracted{AppointmentRequested: true}, entities.LeadStatusNew},
		{"interested with phone", Extracted{Interested: true, Phone: "5551234567"}, entities.LeadStatusInterested},
		{"interested without phone", Extracted{Interested: true}, entities.LeadStatusContacted},
		{"no signals", Extracted{}, entities.LeadStatusNew},
	}

	for _, c := range cases {
		if got := DetermineStatus(c.extracted); got != c.want {
			t.Errorf("%s: got %q, want %q", c.name, got, c.want)
		}
	}
}

func TestDeterminePriority(t *testing.T) {
	cases := []struct {
		name      string
		extracted Extracted
		want      string
	}{
		{"full identity with appointment", Extracted{AppointmentRequested: true, FullName: "Ayşe Yılmaz", Phone: "5551234567"}, entities.LeadPriorityHigh},
		{"interested with phone", Extracted{Interested: true, Phone: "5551234567"}, entities.LeadPriorityHigh},
		{"interested only", Extracted{Interested: true}, entities.LeadPriorityMedium},
		{"nothing", Extracted{}, entities.LeadPriorityLow},
		{"appointment without name", Extracted{AppointmentRequested: true, Phone: "5551234567"}, entities.LeadPriorityLow},
	}

	for _, c := range cases {
		if got := DeterminePriority(c.extracted); got != c.want {
			t.Errorf("%s: got %q, want %q", c.name, got, c.want)
		}
	}
}
