package resources

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// DefaultAppointmentStatus is shown for appointments the API returns without a status.
const DefaultAppointmentStatus = "Active"

// Appointment is a booked consultation.
type Appointment struct {
	ID                string    `json:"_id"`
	PlanName          string    `json:"planName"`
	FullName          string    `json:"fullName"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone"`
	Purpose           string    `json:"purpose"`
	MeetingPreference string    `json:"meetingPreference"`
	AppointmentDate   time.Time `json:"appointmentDate"`
	AppointmentTime   string    `json:"appointmentTime"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"createdAt"`
}

// DisplayName joins the plan and the client name.
func (a Appointment) DisplayName() string {
	return strings.TrimSpace(a.PlanName + " " + a.FullName)
}

// StatusOrDefault returns Status, or DefaultAppointmentStatus when empty.
func (a Appointment) StatusOrDefault() string {
	if a.Status == "" {
		return DefaultAppointmentStatus
	}
	return a.Status
}

// Appointments lists appointments. The list is read-only.
type Appointments struct {
	service
}

// List returns appointments matching params, which are passed through as
// query parameters.
func (a *Appointments) List(ctx context.Context, params url.Values) ([]Appointment, error) {
	return readData[[]Appointment](ctx, a.service, params)
}

// FilterAppointments keeps rows whose status equals status (when set) and
// whose searchable fields contain query, case-insensitively.
func FilterAppointments(rows []Appointment, query, status string) []Appointment {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Appointment, 0, len(rows))
	for _, row := range rows {
		if status != "" && row.StatusOrDefault() != status {
			continue
		}
		if q != "" && !row.matches(q) {
			continue
		}
		out = append(out, row)
	}
	return out
}

func (a Appointment) matches(q string) bool {
	for _, field := range []string{a.DisplayName(), a.FullName, a.Email, a.Phone, a.Purpose, a.MeetingPreference} {
		if field != "" && strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}
