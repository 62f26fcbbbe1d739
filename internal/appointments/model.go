package appointments

import (
	"regexp"
	"strings"
	"time"
)

// Status enumerates the lifecycle states of an appointment. Transitions are
// deliberately unconstrained: any status may move to any other.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is one of the enumerated statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// Badge maps a status to its display treatment. Adding a status means adding
// a case here; the default keeps unknown values visible rather than hidden.
func (s Status) Badge() (icon, colorClass string) {
	switch s {
	case StatusPending:
		return "clock", "amber"
	case StatusConfirmed:
		return "check-circle", "green"
	case StatusCancelled:
		return "x-circle", "red"
	default:
		return "help-circle", "gray"
	}
}

// Appointment is the sole persistent entity. The store assigns ID on insert;
// it is immutable afterwards.
type Appointment struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      Status    `json:"status"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	Date        string    `json:"date"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"created_at"`
}

// PartialUpdate carries the fields a targeted update may change. Nil fields
// are left untouched by the store.
type PartialUpdate struct {
	Status    *Status `json:"status,omitempty"`
	Date      *string `json:"date,omitempty"`
	StartTime *string `json:"start_time,omitempty"`
}

// ApplyTo merges the update onto a copy of appt, preserving all unchanged
// fields.
func (u PartialUpdate) ApplyTo(appt Appointment) Appointment {
	if u.Status != nil {
		appt.Status = *u.Status
	}
	if u.Date != nil {
		appt.Date = *u.Date
	}
	if u.StartTime != nil {
		appt.StartTime = *u.StartTime
	}
	return appt
}

var phonePattern = regexp.MustCompile(`^\+?\d{10,15}$`)

// CreateAppointmentRequest represents the request body for creating an appointment
type CreateAppointmentRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	PhoneNumber string `json:"phone_number"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Color       string `json:"color"`
}

// Validate checks every rule and reports all violated fields together, not
// just the first. Start/end ordering and overlaps are intentionally not
// checked. Returns nil when the request is valid.
func (r *CreateAppointmentRequest) Validate(now time.Time) ValidationError {
	errs := ValidationError{}

	if strings.TrimSpace(r.Title) == "" {
		errs["title"] = "title is required"
	}
	if r.Date == "" {
		errs["date"] = "date is required"
	} else if d, err := time.Parse("2006-01-02", r.Date); err != nil {
		errs["date"] = "date must be YYYY-MM-DD"
	} else if today := now.Format("2006-01-02"); d.Format("2006-01-02") < today {
		errs["date"] = "date must not be in the past"
	}
	if r.StartTime == "" {
		errs["start_time"] = "start time is required"
	}
	if r.EndTime == "" {
		errs["end_time"] = "end time is required"
	}
	if r.PhoneNumber != "" && !phonePattern.MatchString(r.PhoneNumber) {
		errs["phone_number"] = "phone number must be 10-15 digits with optional leading +"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
