package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/clinisys/backoffice/internal/model"
	"github.com/clinisys/backoffice/internal/repository"
)

type aliasRepository struct {
	db *sqlx.DB
}

func NewAliasRepository(db *sqlx.DB) repository.AliasRepository {
	return &aliasRepository{db: db}
}

func (r *aliasRepository) Create(ctx context.Context, alias *model.Alias) error {
	alias.CreatedAt = time.Now()

	query := `
		INSERT INTO aliases (patient_id, encrypted_payload, key_id, iv, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	if err := r.db.QueryRowxContext(ctx, query,
		alias.PatientID,
		alias.EncryptedPayload,
		alias.KeyID,
		alias.IV,
		alias.CreatedAt,
	).Scan(&alias.ID); err != nil {
		return MapError("alias", err)
	}
	return nil
}

func (r *aliasRepository) Get(ctx context.Context, id int64) (*model.Alias, error) {
	query := `SELECT * FROM aliases WHERE id = $1`
	var alias model.Alias
	if err := r.db.GetContext(ctx, &alias, query, id); err != nil {
		return nil, MapError("alias", err)
	}
	return &alias, nil
}

func (r *aliasRepository) GetByPatient(ctx context.Context, patientID int64) (*model.Alias, error) {
	query := `SELECT * FROM aliases WHERE patient_id = $1`
	var alias model.Alias
	if err := r.db.GetContext(ctx, &alias, query, patientID); err != nil {
		return nil, MapError("alias", err)
	}
	return &alias, nil
}
