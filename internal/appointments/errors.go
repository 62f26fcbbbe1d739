package appointments

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrAppointmentNotFound is returned when no row matches the identifier
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrEmptyUpdate is returned when a partial update carries no fields
	ErrEmptyUpdate = errors.New("update has no fields")
)

// ValidationError maps field names to their violation messages.
type ValidationError map[string]string

func (e ValidationError) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "invalid fields: " + strings.Join(fields, ", ")
}
