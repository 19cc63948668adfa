package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/health-records-service/internal/domain"
)

// RecordRepository persists vault records plus the vault's one-slot
// authorized-writer configuration. Record ids are allocated by the store,
// strictly increasing from 1, and never reused.
type RecordRepository interface {
	Create(ctx context.Context, record *domain.Record) error
	Update(ctx context.Context, record *domain.Record) error
	GetByID(ctx context.Context, id uint64) (*domain.Record, error)
	ListBySubject(ctx context.Context, subjectID string) ([]domain.Record, error)

	GetAuthorizedWriter(ctx context.Context) (string, error)
	SetAuthorizedWriter(ctx context.Context, principalID string) error
}

type recordRepository struct {
	pool *pgxpool.Pool
}

// NewRecordRepository instantiates repository.
func NewRecordRepository(pool *pgxpool.Pool) RecordRepository {
	return &recordRepository{pool: pool}
}

func (r *recordRepository) Create(ctx context.Context, record *domain.Record) error {
	const query = `
        INSERT INTO medical_records (author_id, subject_id, diagnosis, treatment, created_at, active)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		record.AuthorID,
		record.SubjectID,
		record.Diagnosis,
		record.Treatment,
		record.CreatedAt,
		record.Active,
	).Scan(&record.ID)
}

func (r *recordRepository) Update(ctx context.Context, record *domain.Record) error {
	const query = `
        UPDATE medical_records SET diagnosis=$1, treatment=$2, active=$3
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query,
		record.Diagnosis,
		record.Treatment,
		record.Active,
		record.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *recordRepository) GetByID(ctx context.Context, id uint64) (*domain.Record, error) {
	const query = `
        SELECT id, author_id, subject_id, diagnosis, treatment, created_at, active
        FROM medical_records WHERE id=$1`
	var record domain.Record
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&record.ID,
		&record.AuthorID,
		&record.SubjectID,
		&record.Diagnosis,
		&record.Treatment,
		&record.CreatedAt,
		&record.Active,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *recordRepository) ListBySubject(ctx context.Context, subjectID string) ([]domain.Record, error) {
	const query = `
        SELECT id, author_id, subject_id, diagnosis, treatment, created_at, active
        FROM medical_records WHERE subject_id=$1 ORDER BY id`
	rows, err := r.pool.Query(ctx, query, subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Record
	for rows.Next() {
		var record domain.Record
		if err := rows.Scan(
			&record.ID,
			&record.AuthorID,
			&record.SubjectID,
			&record.Diagnosis,
			&record.Treatment,
			&record.CreatedAt,
			&record.Active,
		); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}

func (r *recordRepository) GetAuthorizedWriter(ctx context.Context) (string, error) {
	const query = `SELECT writer_id FROM vault_config WHERE slot=1`
	var writer string
	if err := r.pool.QueryRow(ctx, query).Scan(&writer); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return writer, nil
}

func (r *recordRepository) SetAuthorizedWriter(ctx context.Context, principalID string) error {
	// single slot by construction: slot is the table's only key and is fixed
	const query = `
        INSERT INTO vault_config (slot, writer_id)
        VALUES (1, $1)
        ON CONFLICT (slot) DO UPDATE SET writer_id=EXCLUDED.writer_id`
	_, err := r.pool.Exec(ctx, query, principalID)
	return err
}
