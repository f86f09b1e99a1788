package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/clinisys/backoffice/internal/model"
	"github.com/clinisys/backoffice/internal/repository"
)

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.SystemUser, error) {
	query := `SELECT * FROM system_users WHERE email = $1`
	var user model.SystemUser
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, MapError("system user", err)
	}
	return &user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.SystemUser, error) {
	query := `SELECT * FROM system_users WHERE id = $1`
	var user model.SystemUser
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, MapError("system user", err)
	}
	return &user, nil
}

func (r *userRepository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM system_users`); err != nil {
		return 0, MapError("system user", err)
	}
	return count, nil
}

func (r *userRepository) CreateUser(ctx context.Context, user *model.SystemUser, doctor *model.Doctor) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO system_users (email, hashed_password, full_name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	if err := tx.QueryRowxContext(ctx, query,
		user.Email,
		user.HashedPassword,
		user.FullName,
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID); err != nil {
		tx.Rollback()
		return MapError("system user", err)
	}

	if doctor != nil {
		doctor.UserID = user.ID
		doctor.CreatedAt = now

		query := `
			INSERT INTO doctors (user_id, first_name, last_name, specialization, license_number, phone, email, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id
		`
		if err := tx.QueryRowxContext(ctx, query,
			doctor.UserID,
			doctor.FirstName,
			doctor.LastName,
			doctor.Specialization,
			doctor.LicenseNumber,
			doctor.Phone,
			doctor.Email,
			doctor.CreatedAt,
		).Scan(&doctor.ID); err != nil {
			tx.Rollback()
			return MapError("doctor", err)
		}
	}

	return tx.Commit()
}
