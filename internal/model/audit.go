package model

import (
	"database/sql"
	"time"
)

// ActionLog is one append-only audit entry.
type ActionLog struct {
	ID         int64          `json:"id" db:"id"`
	UserID     sql.NullInt64  `json:"user_id" db:"user_id"`
	ActionType string         `json:"action_type" db:"action_type"`
	Entity     string         `json:"entity" db:"entity"`
	EntityID   sql.NullInt64  `json:"entity_id" db:"entity_id"`
	Details    sql.NullString `json:"details" db:"details"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
}

// AuditFilter narrows audit listings.
type AuditFilter struct {
	UserID     int64
	Entity     string
	ActionType string
	Limit      int
}
