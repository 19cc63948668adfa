package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/health-records-service/internal/domain"
)

// RoleRepository persists principals and their role grants. The principal
// row carries the single activity flag shared by all of that principal's
// roles; grants are separate rows keyed by (principal, role).
type RoleRepository interface {
	GetPrincipal(ctx context.Context, id string) (*domain.Principal, error)
	UpsertPrincipal(ctx context.Context, principal *domain.Principal) error
	SetActive(ctx context.Context, id string, active bool) error
	ListPrincipals(ctx context.Context) ([]domain.Principal, error)

	HasGrant(ctx context.Context, principalID string, role domain.Role) (bool, error)
	CreateGrant(ctx context.Context, binding *domain.RoleBinding) error
	DeleteGrant(ctx context.Context, principalID string, role domain.Role) error
	ListGrants(ctx context.Context, principalID string) ([]domain.RoleBinding, error)
}

type roleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository instantiates repository.
func NewRoleRepository(pool *pgxpool.Pool) RoleRepository {
	return &roleRepository{pool: pool}
}

func (r *roleRepository) GetPrincipal(ctx context.Context, id string) (*domain.Principal, error) {
	const query = `SELECT id, active, created_at FROM principals WHERE id=$1`
	var p domain.Principal
	if err := r.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.Active, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *roleRepository) UpsertPrincipal(ctx context.Context, principal *domain.Principal) error {
	const query = `
        INSERT INTO principals (id, active, created_at)
        VALUES ($1,$2,$3)
        ON CONFLICT (id) DO UPDATE SET active=EXCLUDED.active`
	_, err := r.pool.Exec(ctx, query, principal.ID, principal.Active, principal.CreatedAt)
	return err
}

func (r *roleRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE principals SET active=$1 WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, active, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *roleRepository) ListPrincipals(ctx context.Context) ([]domain.Principal, error) {
	const query = `SELECT id, active, created_at FROM principals ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Principal
	for rows.Next() {
		var p domain.Principal
		if err := rows.Scan(&p.ID, &p.Active, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *roleRepository) HasGrant(ctx context.Context, principalID string, role domain.Role) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM role_grants WHERE principal_id=$1 AND role=$2)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, principalID, role).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *roleRepository) CreateGrant(ctx context.Context, binding *domain.RoleBinding) error {
	const query = `
        INSERT INTO role_grants (principal_id, role, created_at)
        VALUES ($1,$2,$3)
        ON CONFLICT (principal_id, role) DO UPDATE SET created_at=EXCLUDED.created_at`
	_, err := r.pool.Exec(ctx, query, binding.PrincipalID, binding.Role, binding.CreatedAt)
	return err
}

func (r *roleRepository) DeleteGrant(ctx context.Context, principalID string, role domain.Role) error {
	const query = `DELETE FROM role_grants WHERE principal_id=$1 AND role=$2`
	cmd, err := r.pool.Exec(ctx, query, principalID, role)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *roleRepository) ListGrants(ctx context.Context, principalID string) ([]domain.RoleBinding, error) {
	const query = `SELECT principal_id, role, created_at FROM role_grants WHERE principal_id=$1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, principalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.RoleBinding
	for rows.Next() {
		var b domain.RoleBinding
		if err := rows.Scan(&b.PrincipalID, &b.Role, &b.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}
