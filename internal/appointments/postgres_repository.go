package appointments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// db is the subset of pgxpool.Pool the repository uses; it allows injecting
// pgxmock in tests.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores appointments in the relational database.
type PostgresRepository struct {
	db db
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting mocks for tests.
func NewPostgresRepositoryWithDB(db db) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectColumns = `id, title, description, status, phone_number, date, start_time, end_time, color, created_at`

// SelectAll returns every appointment ordered by creation time.
func (r *PostgresRepository) SelectAll(ctx context.Context) ([]*Appointment, error) {
	query := `SELECT ` + selectColumns + ` FROM appointments ORDER BY created_at, id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("appointments: select all: %w", err)
	}
	defer rows.Close()

	var out []*Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("appointments: scan row: %w", err)
		}
		out = append(out, appt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: select all: %w", err)
	}
	return out, nil
}

// GetByID fetches a single appointment.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	query := `SELECT ` + selectColumns + ` FROM appointments WHERE id = $1`
	appt, err := scanAppointment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("appointments: select by id: %w", err)
	}
	return appt, nil
}

// Insert creates a new row; the repository assigns the identifier and the
// database stamps created_at.
func (r *PostgresRepository) Insert(ctx context.Context, req *CreateAppointmentRequest) (*Appointment, error) {
	id := uuid.New()
	query := `
		INSERT INTO appointments (id, title, description, status, phone_number, date, start_time, end_time, color)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.db.QueryRow(ctx, query,
		id,
		req.Title,
		req.Description,
		StatusPending,
		req.PhoneNumber,
		req.Date,
		req.StartTime,
		req.EndTime,
		req.Color,
	).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("appointments: insert failed: %w", err)
	}

	return &Appointment{
		ID:          id.String(),
		Title:       req.Title,
		Description: req.Description,
		Status:      StatusPending,
		PhoneNumber: req.PhoneNumber,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Color:       req.Color,
		CreatedAt:   createdAt,
	}, nil
}

// UpdateByID applies a partial update; untouched columns keep their values.
func (r *PostgresRepository) UpdateByID(ctx context.Context, id string, update PartialUpdate) error {
	sets := make([]string, 0, 3)
	args := []any{id}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if update.Status != nil {
		add("status", *update.Status)
	}
	if update.Date != nil {
		add("date", *update.Date)
	}
	if update.StartTime != nil {
		add("start_time", *update.StartTime)
	}
	if len(sets) == 0 {
		return ErrEmptyUpdate
	}

	query := "UPDATE appointments SET " + strings.Join(sets, ", ") + " WHERE id = $1"
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("appointments: update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}


type rowScanner interface {
	Scan(dest ...any) error
}

func scanAppointment(row rowScanner) (*Appointment, error) {
	var appt Appointment
	if err := row.Scan(
		&appt.ID,
		&appt.Title,
		&appt.Description,
		&appt.Status,
		&appt.PhoneNumber,
		&appt.Date,
		&appt.StartTime,
		&appt.EndTime,
		&appt.Color,
		&appt.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &appt, nil
}
