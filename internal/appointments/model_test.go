package appointments

import (
	"testing"
	"time"
)

var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func validCreateRequest() CreateAppointmentRequest {
	return CreateAppointmentRequest{
		Title:       "Dental checkup",
		Description: "Six month cleaning",
		PhoneNumber: "+12345678901",
		Date:        "2025-06-20",
		StartTime:   "09:00",
		EndTime:     "09:30",
		Color:       "#4F46E5",
	}
}

func TestValidateAcceptsValidRequest(t *testing.T) {
	req := validCreateRequest()
	if verr := req.Validate(testNow); verr != nil {
		t.Fatalf("expected valid request, got %v", verr)
	}
}

func TestValidateReportsEveryViolation(t *testing.T) {
	req := CreateAppointmentRequest{
		Title:       "   ",
		Date:        "2025-06-14", // yesterday
		PhoneNumber: "12345",
	}
	verr := req.Validate(testNow)
	if verr == nil {
		t.Fatal("expected validation errors")
	}
	for _, field := range []string{"title", "date", "start_time", "end_time", "phone_number"} {
		if _, ok := verr[field]; !ok {
			t.Errorf("expected violation on %q, got %v", field, verr)
		}
	}
}

func TestValidateDateRules(t *testing.T) {
	tests := []struct {
		name    string
		date    string
		wantErr bool
	}{
		{"missing", "", true},
		{"malformed", "06/20/2025", true},
		{"yesterday", "2025-06-14", true},
		{"today", "2025-06-15", false},
		{"future", "2026-01-01", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			req.Date = tt.date
			verr := req.Validate(testNow)
			if _, ok := verr["date"]; ok != tt.wantErr {
				t.Errorf("date=%q: got %v, wantErr=%v", tt.date, verr, tt.wantErr)
			}
		})
	}
}

func TestValidatePhoneRules(t *testing.T) {
	tests := []struct {
		phone   string
		wantErr bool
	}{
		{"", false}, // optional
		{"12345", true},
		{"+12345678901", false},
		{"123456789012345", false},
		{"1234567890123456", true},
		{"+1 234 567 8901", true},
	}
	for _, tt := range tests {
		req := validCreateRequest()
		req.PhoneNumber = tt.phone
		verr := req.Validate(testNow)
		if _, ok := verr["phone_number"]; ok != tt.wantErr {
			t.Errorf("phone=%q: got %v, wantErr=%v", tt.phone, verr, tt.wantErr)
		}
	}
}

// Start/end ordering is deliberately unvalidated; an appointment that ends
// before it starts is accepted.
func TestValidateAllowsEndBeforeStart(t *testing.T) {
	req := validCreateRequest()
	req.StartTime = "15:00"
	req.EndTime = "09:00"
	if verr := req.Validate(testNow); verr != nil {
		t.Fatalf("expected no error for inverted times, got %v", verr)
	}
}

func TestStatusBadge(t *testing.T) {
	tests := []struct {
		status Status
		icon   string
		color  string
	}{
		{StatusPending, "clock", "amber"},
		{StatusConfirmed, "check-circle", "green"},
		{StatusCancelled, "x-circle", "red"},
		{Status("bogus"), "help-circle", "gray"},
	}
	for _, tt := range tests {
		icon, color := tt.status.Badge()
		if icon != tt.icon || color != tt.color {
			t.Errorf("Badge(%s) = %s/%s, want %s/%s", tt.status, icon, color, tt.icon, tt.color)
		}
	}
}

func TestPartialUpdateApplyToMergesOnlyChangedFields(t *testing.T) {
	original := Appointment{
		ID:          "id-1",
		Title:       "Consultation",
		Status:      StatusPending,
		PhoneNumber: "+12345678901",
		Date:        "2025-07-01",
		StartTime:   "10:00",
		EndTime:     "10:30",
		Color:       "#FF0000",
	}

	status := StatusConfirmed
	merged := PartialUpdate{Status: &status}.ApplyTo(original)
	if merged.Status != StatusConfirmed {
		t.Errorf("expected status confirmed, got %s", merged.Status)
	}
	if merged.Title != original.Title || merged.Date != original.Date || merged.StartTime != original.StartTime {
		t.Errorf("unchanged fields must be preserved: %+v", merged)
	}

	date, start := "2025-08-01", "14:00"
	merged = PartialUpdate{Date: &date, StartTime: &start}.ApplyTo(original)
	if merged.Date != date || merged.StartTime != start {
		t.Errorf("expected rescheduled fields, got %+v", merged)
	}
	if merged.Status != StatusPending || merged.EndTime != "10:30" {
		t.Errorf("unchanged fields must be preserved: %+v", merged)
	}
}
