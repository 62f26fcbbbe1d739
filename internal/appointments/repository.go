package appointments

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for appointment storage. It mirrors the
// three capabilities of the hosted store: select-all, insert-one,
// update-by-id. No delete exists anywhere in the system.
type Repository interface {
	SelectAll(ctx context.Context) ([]*Appointment, error)
	GetByID(ctx context.Context, id string) (*Appointment, error)
	Insert(ctx context.Context, req *CreateAppointmentRequest) (*Appointment, error)
	UpdateByID(ctx context.Context, id string, update PartialUpdate) error
}

// InMemoryRepository is a Repository backed by an in-process map, used for
// development and tests.
type InMemoryRepository struct {
	mu           sync.RWMutex
	appointments map[string]*Appointment
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		appointments: make(map[string]*Appointment),
	}
}

// SelectAll returns every stored appointment ordered by creation time.
func (r *InMemoryRepository) SelectAll(ctx context.Context) ([]*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Appointment, 0, len(r.appointments))
	for _, appt := range r.appointments {
		copied := *appt
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// GetByID retrieves an appointment by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	appt, ok := r.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	copied := *appt
	return &copied, nil
}

// Insert stores a new appointment, assigning its identifier.
func (r *InMemoryRepository) Insert(ctx context.Context, req *CreateAppointmentRequest) (*Appointment, error) {
	appt := &Appointment{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Status:      StatusPending,
		PhoneNumber: req.PhoneNumber,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Color:       req.Color,
		CreatedAt:   time.Now().UTC(),
	}

	r.mu.Lock()
	r.appointments[appt.ID] = appt
	r.mu.Unlock()

	copied := *appt
	return &copied, nil
}

// UpdateByID applies a partial update to the stored row.
func (r *InMemoryRepository) UpdateByID(ctx context.Context, id string, update PartialUpdate) error {
	if update.Status == nil && update.Date == nil && update.StartTime == nil {
		return ErrEmptyUpdate
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.appointments[id]
	if !ok {
		return ErrAppointmentNotFound
	}
	merged := update.ApplyTo(*appt)
	r.appointments[id] = &merged
	return nil
}
