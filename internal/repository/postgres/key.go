package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/jmoiron/sqlx"

	"github.com/clinisys/backoffice/internal/model"
	"github.com/clinisys/backoffice/internal/repository"
	"github.com/clinisys/backoffice/pkg/errors"
)

type keyRepository struct {
	db *sqlx.DB
}

func NewKeyRepository(db *sqlx.DB) repository.KeyRepository {
	return &keyRepository{db: db}
}

func (r *keyRepository) Active(ctx context.Context) (*model.EncryptionKey, error) {
	query := `SELECT * FROM encryption_keys WHERE is_active ORDER BY id DESC LIMIT 1`
	var key model.EncryptionKey
	if err := r.db.GetContext(ctx, &key, query); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NoActiveKey()
		}
		return nil, MapError("encryption key", err)
	}
	return &key, nil
}

func (r *keyRepository) Get(ctx context.Context, id int64) (*model.EncryptionKey, error) {
	query := `SELECT * FROM encryption_keys WHERE id = $1`
	var key model.EncryptionKey
	if err := r.db.GetContext(ctx, &key, query, id); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.KeyUnavailable(id)
		}
		return nil, MapError("encryption key", err)
	}
	return &key, nil
}

// Rotate deactivates the current active key and inserts a new active one in a
// single transaction, keeping the at-most-one-active invariant. Existing
// aliases are not re-encrypted; they keep referencing their original key.
func (r *keyRepository) Rotate(ctx context.Context, material []byte) (*model.EncryptionKey, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if _, err := tx.ExecContext(ctx, `UPDATE encryption_keys SET is_active = FALSE WHERE is_active`); err != nil {
		tx.Rollback()
		return nil, MapError("encryption key", err)
	}

	key := &model.EncryptionKey{KeyMaterial: material, IsActive: true}
	query := `
		INSERT INTO encryption_keys (key_material, is_active, created_at)
		VALUES ($1, TRUE, NOW())
		RETURNING id, created_at
	`
	if err := tx.QueryRowxContext(ctx, query, key.KeyMaterial).Scan(&key.ID, &key.CreatedAt); err != nil {
		tx.Rollback()
		return nil, MapError("encryption key", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, MapError("encryption key", err)
	}
	return key, nil
}

// Purge removes an inactive key, refusing while any alias still references
// it: purging a referenced key would orphan its ciphertexts permanently.
func (r *keyRepository) Purge(ctx context.Context, id int64) error {
	var refs int64
	if err := r.db.GetContext(ctx, &refs, `SELECT COUNT(*) FROM aliases WHERE key_id = $1`, id); err != nil {
		return MapError("encryption key", err)
	}
	if refs > 0 {
		return errors.Validation("encryption key is still referenced by aliases", nil)
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM encryption_keys WHERE id = $1 AND NOT is_active`, id)
	if err != nil {
		return MapError("encryption key", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NotFound("encryption key", nil)
	}
	return nil
}
