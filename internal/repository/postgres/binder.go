package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// RoleBinder executes functions inside a transaction bound to a
// least-privilege database role. SET LOCAL ROLE reverts automatically at
// commit or rollback, so the execution identity can never leak to another
// request sharing the pooled connection.
type RoleBinder struct {
	db *sqlx.DB
}

func NewRoleBinder(db *sqlx.DB) *RoleBinder {
	return &RoleBinder{db: db}
}

// WithRole runs fn in a transaction executing as dbRole.
func (b *RoleBinder) WithRole(ctx context.Context, dbRole string, fn func(tx *sqlx.Tx) error) error {
	tx, err := b.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if _, err := tx.ExecContext(ctx, "SET LOCAL ROLE "+pq.QuoteIdentifier(dbRole)); err != nil {
		tx.Rollback()
		return err
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
