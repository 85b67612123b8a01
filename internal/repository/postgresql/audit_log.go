package postgresql

import (
	"context"

	"github.com/peoplecore/leave-backend-go/internal/domain/audit"
	"github.com/peoplecore/leave-backend-go/internal/pkg/database"
)

type auditRepositoryImpl struct {
	db *database.DB
}

func NewAuditRepository(db *database.DB) audit.Repository {
	return &auditRepositoryImpl{db: db}
}

// Create appends an audit entry. Must be called inside the same transaction
// as the lifecycle mutation it documents.
func (r *auditRepositoryImpl) Create(ctx context.Context, entry audit.Entry) (audit.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO audit_log (id, actor_id, action, target_id, details, created_at)
		VALUES (uuidv7(), $1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		entry.ActorID, entry.Action, entry.TargetID, entry.Details,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return audit.Entry{}, err
	}

	return entry, nil
}

func (r *auditRepositoryImpl) GetByTarget(ctx context.Context, targetID string) ([]audit.Entry, error) {
	return r.list(ctx, `WHERE target_id = $1`, targetID)
}

func (r *auditRepositoryImpl) GetByActor(ctx context.Context, actorID string) ([]audit.Entry, error) {
	return r.list(ctx, `WHERE actor_id = $1`, actorID)
}

func (r *auditRepositoryImpl) list(ctx context.Context, where string, arg interface{}) ([]audit.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT id, actor_id, action, target_id, details, created_at
		FROM audit_log ` + where + ` ORDER BY created_at ASC`

	rows, err := q.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]audit.Entry, 0)
	for rows.Next() {
		var e audit.Entry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.TargetID, &e.Details, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
