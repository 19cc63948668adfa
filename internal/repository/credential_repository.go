package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CredentialRepository stores login credentials for principals that
// authenticate against the HTTP surface. One credential per principal.
type CredentialRepository interface {
	Upsert(ctx context.Context, principalID, passwordHash string) error
	GetHash(ctx context.Context, principalID string) (string, error)
}

type credentialRepository struct {
	pool *pgxpool.Pool
}

// NewCredentialRepository instantiates repository.
func NewCredentialRepository(pool *pgxpool.Pool) CredentialRepository {
	return &credentialRepository{pool: pool}
}

func (r *credentialRepository) Upsert(ctx context.Context, principalID, passwordHash string) error {
	const query = `
        INSERT INTO credentials (principal_id, password_hash, updated_at)
        VALUES ($1,$2,NOW())
        ON CONFLICT (principal_id) DO UPDATE SET password_hash=EXCLUDED.password_hash, updated_at=NOW()`
	_, err := r.pool.Exec(ctx, query, principalID, passwordHash)
	return err
}

func (r *credentialRepository) GetHash(ctx context.Context, principalID string) (string, error) {
	const query = `SELECT password_hash FROM credentials WHERE principal_id=$1`
	var hash string
	if err := r.pool.QueryRow(ctx, query, principalID).Scan(&hash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return hash, nil
}
