package model

import (
	"database/sql"
	"time"
)

// SystemUser is an account that can sign in to the back office.
type SystemUser struct {
	ID             int64          `json:"id" db:"id"`
	Email          string         `json:"email" db:"email"`
	HashedPassword string         `json:"-" db:"hashed_password"`
	FullName       sql.NullString `json:"full_name" db:"full_name"`
	Role           string         `json:"role" db:"role"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
}

// Doctor is the clinical profile attached to a doctor-role system user.
type Doctor struct {
	ID             int64          `json:"id" db:"id"`
	UserID         int64          `json:"user_id" db:"user_id"`
	FirstName      sql.NullString `json:"first_name" db:"first_name"`
	LastName       sql.NullString `json:"last_name" db:"last_name"`
	Specialization sql.NullString `json:"specialization" db:"specialization"`
	LicenseNumber  string         `json:"license_number" db:"license_number"`
	Phone          sql.NullString `json:"phone" db:"phone"`
	Email          sql.NullString `json:"email" db:"email"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
}
