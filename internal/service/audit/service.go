// Package audit records every mutating operation with its actor, entity and
// outcome. The log is append-only; entries are browseable by admins through
// the generic gateway as the action_logs entity.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"github.com/clinisys/backoffice/internal/model"
	"github.com/clinisys/backoffice/internal/repository"
)

type Service struct {
	repo repository.AuditRepository
}

func NewService(repo repository.AuditRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) entry(actorID int64, action, entity string, entityID int64, details interface{}) *model.ActionLog {
	e := &model.ActionLog{
		ActionType: action,
		Entity:     entity,
	}
	if actorID != 0 {
		e.UserID = sql.NullInt64{Int64: actorID, Valid: true}
	}
	if entityID != 0 {
		e.EntityID = sql.NullInt64{Int64: entityID, Valid: true}
	}
	if details != nil {
		if data, err := json.Marshal(details); err == nil {
			e.Details = sql.NullString{String: string(data), Valid: true}
		}
	}
	return e
}

// Log records a mutation outside any transaction.
func (s *Service) Log(ctx context.Context, actorID int64, action, entity string, entityID int64, details interface{}) error {
	return s.repo.Create(ctx, s.entry(actorID, action, entity, entityID, details))
}

// LogTx records a mutation on the caller's transaction so the audit entry
// shares the mutation's fate.
func (s *Service) LogTx(ctx context.Context, tx *sqlx.Tx, actorID int64, action, entity string, entityID int64, details interface{}) error {
	return s.repo.CreateTx(ctx, tx, s.entry(actorID, action, entity, entityID, details))
}

// List returns audit entries matching the filter, newest first.
func (s *Service) List(ctx context.Context, filter *model.AuditFilter) ([]*model.ActionLog, error) {
	return s.repo.List(ctx, filter)
}
