package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/health-records-service/internal/domain"
)

// ConsentRepository persists consent grants, one row per (subject, delegate)
// pair. Upsert carries the overwrite semantic: a new grant replaces the old
// window entirely.
type ConsentRepository interface {
	Get(ctx context.Context, subjectID, delegateID string) (*domain.ConsentGrant, error)
	Upsert(ctx context.Context, grant *domain.ConsentGrant) error
	ListBySubject(ctx context.Context, subjectID string) ([]domain.ConsentGrant, error)
}

type consentRepository struct {
	pool *pgxpool.Pool
}

// NewConsentRepository instantiates repository.
func NewConsentRepository(pool *pgxpool.Pool) ConsentRepository {
	return &consentRepository{pool: pool}
}

func (r *consentRepository) Get(ctx context.Context, subjectID, delegateID string) (*domain.ConsentGrant, error) {
	const query = `
        SELECT subject_id, delegate_id, expires_at, active, granted_at
        FROM consent_grants WHERE subject_id=$1 AND delegate_id=$2`
	var grant domain.ConsentGrant
	if err := r.pool.QueryRow(ctx, query, subjectID, delegateID).Scan(
		&grant.SubjectID,
		&grant.DelegateID,
		&grant.ExpiresAt,
		&grant.Active,
		&grant.GrantedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &grant, nil
}

func (r *consentRepository) Upsert(ctx context.Context, grant *domain.ConsentGrant) error {
	const query = `
        INSERT INTO consent_grants (subject_id, delegate_id, expires_at, active, granted_at)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (subject_id, delegate_id) DO UPDATE
            SET expires_at=EXCLUDED.expires_at, active=EXCLUDED.active, granted_at=EXCLUDED.granted_at`
	_, err := r.pool.Exec(ctx, query,
		grant.SubjectID,
		grant.DelegateID,
		grant.ExpiresAt,
		grant.Active,
		grant.GrantedAt,
	)
	return err
}

func (r *consentRepository) ListBySubject(ctx context.Context, subjectID string) ([]domain.ConsentGrant, error) {
	const query = `
        SELECT subject_id, delegate_id, expires_at, active, granted_at
        FROM consent_grants WHERE subject_id=$1 ORDER BY granted_at`
	rows, err := r.pool.Query(ctx, query, subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ConsentGrant
	for rows.Next() {
		var grant domain.ConsentGrant
		if err := rows.Scan(
			&grant.SubjectID,
			&grant.DelegateID,
			&grant.ExpiresAt,
			&grant.Active,
			&grant.GrantedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, grant)
	}
	return result, rows.Err()
}
