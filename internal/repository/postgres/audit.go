package postgres

import (
	"context"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/clinisys/backoffice/internal/model"
	"github.com/clinisys/backoffice/internal/repository"
)

type auditRepository struct {
	db *sqlx.DB
}

func NewAuditRepository(db *sqlx.DB) repository.AuditRepository {
	return &auditRepository{db: db}
}

const insertActionLog = `
	INSERT INTO action_logs (user_id, action_type, entity, entity_id, details, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
`

func (r *auditRepository) Create(ctx context.Context, entry *model.ActionLog) error {
	return r.insert(ctx, r.db, entry)
}

// CreateTx writes the entry on the caller's executor so a mutation and its
// audit record commit or roll back together.
func (r *auditRepository) CreateTx(ctx context.Context, ext sqlx.ExtContext, entry *model.ActionLog) error {
	return r.insert(ctx, ext, entry)
}

func (r *auditRepository) insert(ctx context.Context, ext sqlx.ExtContext, entry *model.ActionLog) error {
	entry.CreatedAt = time.Now()

	_, err := ext.ExecContext(ctx, insertActionLog,
		entry.UserID,
		entry.ActionType,
		entry.Entity,
		entry.EntityID,
		entry.Details,
		entry.CreatedAt,
	)
	if err != nil {
		return MapError("action log", err)
	}
	return nil
}

func (r *auditRepository) List(ctx context.Context, filter *model.AuditFilter) ([]*model.ActionLog, error) {
	query := `SELECT * FROM action_logs WHERE TRUE`
	args := []interface{}{}

	if filter != nil {
		if filter.UserID != 0 {
			args = append(args, filter.UserID)
			query += ` AND user_id = $` + strconv.Itoa(len(args))
		}
		if filter.Entity != "" {
			args = append(args, filter.Entity)
			query += ` AND entity = $` + strconv.Itoa(len(args))
		}
		if filter.ActionType != "" {
			args = append(args, filter.ActionType)
			query += ` AND action_type = $` + strconv.Itoa(len(args))
		}
	}

	query += ` ORDER BY created_at DESC`
	if filter != nil && filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}

	var entries []*model.ActionLog
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, MapError("action log", err)
	}
	return entries, nil
}
