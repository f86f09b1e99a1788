// Package staff provisions back-office accounts: plain admins and doctors
// with their clinical profile, created together in one transaction. This is
// the only path that sets credential fields; the generic gateway ignores them.
package staff

import (
	"context"
	"database/sql"
	"strings"

	"github.com/clinisys/backoffice/internal/model"
	"github.com/clinisys/backoffice/internal/policy"
	"github.com/clinisys/backoffice/internal/repository"
	"github.com/clinisys/backoffice/internal/service/audit"
	"github.com/clinisys/backoffice/pkg/errors"
	"github.com/clinisys/backoffice/pkg/security"
)

// CreateEmployeeRequest carries the fields for a new admin or doctor account.
type CreateEmployeeRequest struct {
	Role           string `json:"role" binding:"required"`
	FullName       string `json:"full_name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required"`
	Specialization string `json:"specialization"`
	LicenseNumber  string `json:"license_number"`
	Phone          string `json:"phone"`
}

type Service struct {
	users   repository.UserRepository
	hasher  security.PasswordHasher
	auditor *audit.Service
}

func NewService(users repository.UserRepository, hasher security.PasswordHasher, auditor *audit.Service) *Service {
	return &Service{users: users, hasher: hasher, auditor: auditor}
}

// CreateEmployee provisions the account and, for doctors, the profile row.
// The full name is split into first/last for the profile.
func (s *Service) CreateEmployee(ctx context.Context, actorID int64, req *CreateEmployeeRequest) (*model.SystemUser, error) {
	role := policy.Role(req.Role)
	if role != policy.RoleAdmin && role != policy.RoleDoctor {
		return nil, errors.UnknownRole(req.Role)
	}

	if role == policy.RoleDoctor && req.LicenseNumber == "" {
		return nil, errors.Validation("license_number is required for doctors", nil)
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, errors.Validation("password does not meet requirements", err)
	}

	user := &model.SystemUser{
		Email:          req.Email,
		HashedPassword: hashed,
		FullName:       sql.NullString{String: req.FullName, Valid: req.FullName != ""},
		Role:           string(role),
	}

	var doctor *model.Doctor
	if role == policy.RoleDoctor {
		first, last := splitName(req.FullName)
		doctor = &model.Doctor{
			FirstName:      sql.NullString{String: first, Valid: first != ""},
			LastName:       sql.NullString{String: last, Valid: last != ""},
			Specialization: sql.NullString{String: req.Specialization, Valid: req.Specialization != ""},
			LicenseNumber:  req.LicenseNumber,
			Phone:          sql.NullString{String: req.Phone, Valid: req.Phone != ""},
			Email:          sql.NullString{String: req.Email, Valid: true},
		}
	}

	if err := s.users.CreateUser(ctx, user, doctor); err != nil {
		return nil, err
	}

	s.auditor.Log(ctx, actorID, "create", "system_users", user.ID, map[string]string{
		"email": user.Email,
		"role":  user.Role,
	})
	return user, nil
}

// EnsureBootstrapAdmin creates the initial admin account when the user table
// is empty, so a fresh deployment can be signed into.
func (s *Service) EnsureBootstrapAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	count, err := s.users.CountUsers(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	_, err = s.CreateEmployee(ctx, 0, &CreateEmployeeRequest{
		Role:     string(policy.RoleAdmin),
		FullName: "Administrator",
		Email:    email,
		Password: password,
	})
	return err
}

func splitName(full string) (first, last string) {
	parts := strings.SplitN(strings.TrimSpace(full), " ", 2)
	first = parts[0]
	if len(parts) > 1 {
		last = parts[1]
	}
	return first, last
}
