package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/clinisys/backoffice/internal/model"
)

// UserRepository persists system users and doctor profiles.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*model.SystemUser, error)
	GetByID(ctx context.Context, id int64) (*model.SystemUser, error)
	CountUsers(ctx context.Context) (int64, error)

	// CreateUser inserts a system user. If doctor is non-nil the doctor
	// profile is created in the same transaction.
	CreateUser(ctx context.Context, user *model.SystemUser, doctor *model.Doctor) error
}

// KeyRepository persists alias encryption keys. Rotation and purge honor the
// at-most-one-active and never-purge-referenced invariants.
type KeyRepository interface {
	Active(ctx context.Context) (*model.EncryptionKey, error)
	Get(ctx context.Context, id int64) (*model.EncryptionKey, error)
	Rotate(ctx context.Context, material []byte) (*model.EncryptionKey, error)
	Purge(ctx context.Context, id int64) error
}

// AliasRepository persists patient aliases.
type AliasRepository interface {
	Create(ctx context.Context, alias *model.Alias) error
	Get(ctx context.Context, id int64) (*model.Alias, error)
	GetByPatient(ctx context.Context, patientID int64) (*model.Alias, error)
}

// AuditRepository persists append-only action log entries.
type AuditRepository interface {
	Create(ctx context.Context, entry *model.ActionLog) error
	CreateTx(ctx context.Context, ext sqlx.ExtContext, entry *model.ActionLog) error
	List(ctx context.Context, filter *model.AuditFilter) ([]*model.ActionLog, error)
}
