package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/health-records-service/internal/domain"
)

// AuditRepository persists audit entries as an append-only log. Entries are
// never updated or deleted.
type AuditRepository interface {
	Append(ctx context.Context, entry *domain.AuditEntry) error
	List(ctx context.Context, limit, offset int) ([]domain.AuditEntry, error)
}

type auditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository instantiates repository.
func NewAuditRepository(pool *pgxpool.Pool) AuditRepository {
	return &auditRepository{pool: pool}
}

func (r *auditRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO audit_log (id, event_type, entity_id, actor_id, occurred_at, details)
        VALUES ($1,$2,$3,$4,$5,$6)`
	_, err = r.pool.Exec(ctx, query,
		entry.ID,
		entry.EventType,
		entry.EntityID,
		entry.ActorID,
		entry.OccurredAt,
		details,
	)
	return err
}

func (r *auditRepository) List(ctx context.Context, limit, offset int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, event_type, entity_id, actor_id, occurred_at, details
        FROM audit_log ORDER BY occurred_at DESC, id LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AuditEntry
	for rows.Next() {
		var entry domain.AuditEntry
		var details []byte
		if err := rows.Scan(
			&entry.ID,
			&entry.EventType,
			&entry.EntityID,
			&entry.ActorID,
			&entry.OccurredAt,
			&details,
		); err != nil {
			return nil, err
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &entry.Details); err != nil {
				return nil, err
			}
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
