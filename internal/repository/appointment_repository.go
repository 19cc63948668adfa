package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/health-records-service/internal/domain"
)

// AppointmentRepository persists appointments. Ids are allocated by the
// store, strictly increasing from 1; listing by party covers both the
// subject and the counterpart side, ordered by id.
type AppointmentRepository interface {
	Create(ctx context.Context, appointment *domain.Appointment) error
	GetByID(ctx context.Context, id uint64) (*domain.Appointment, error)
	UpdateStatus(ctx context.Context, id uint64, status domain.AppointmentStatus) error
	ListByParty(ctx context.Context, partyID string) ([]domain.Appointment, error)
}

type appointmentRepository struct {
	pool *pgxpool.Pool
}

// NewAppointmentRepository instantiates repository.
func NewAppointmentRepository(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepository{pool: pool}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *domain.Appointment) error {
	const query = `
        INSERT INTO appointments (subject_id, counterpart_id, scheduled_at, status, created_at)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		appointment.SubjectID,
		appointment.CounterpartID,
		appointment.ScheduledAt,
		appointment.Status,
		appointment.CreatedAt,
	).Scan(&appointment.ID)
}

func (r *appointmentRepository) GetByID(ctx context.Context, id uint64) (*domain.Appointment, error) {
	const query = `
        SELECT id, subject_id, counterpart_id, scheduled_at, status, created_at
        FROM appointments WHERE id=$1`
	var appointment domain.Appointment
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&appointment.ID,
		&appointment.SubjectID,
		&appointment.CounterpartID,
		&appointment.ScheduledAt,
		&appointment.Status,
		&appointment.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id uint64, status domain.AppointmentStatus) error {
	const query = `UPDATE appointments SET status=$1 WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *appointmentRepository) ListByParty(ctx context.Context, partyID string) ([]domain.Appointment, error) {
	const query = `
        SELECT id, subject_id, counterpart_id, scheduled_at, status, created_at
        FROM appointments WHERE subject_id=$1 OR counterpart_id=$1 ORDER BY id`
	rows, err := r.pool.Query(ctx, query, partyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Appointment
	for rows.Next() {
		var appointment domain.Appointment
		if err := rows.Scan(
			&appointment.ID,
			&appointment.SubjectID,
			&appointment.CounterpartID,
			&appointment.ScheduledAt,
			&appointment.Status,
			&appointment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, appointment)
	}
	return result, rows.Err()
}
