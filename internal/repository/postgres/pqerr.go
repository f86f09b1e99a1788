package postgres

import (
	"database/sql"
	stderrors "errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/clinisys/backoffice/pkg/errors"
)

// Postgres error classes the gateway cares about.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeInsufficientPriv    = "42501"
)

// MapError translates persistence failures into the application taxonomy.
// Unique violations become StorageConflict: the store's constraints are the
// authoritative uniqueness check, the gateway's precheck is an optimization.
func MapError(resource string, err error) error {
	if err == nil {
		return nil
	}

	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.NotFound(resource, err)
	}

	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case codeUniqueViolation:
			return errors.StorageConflict(
				fmt.Sprintf("%s violates unique constraint %s", resource, pqErr.Constraint), err)
		case codeForeignKeyViolation:
			return errors.Validation(
				fmt.Sprintf("%s references a missing row (%s)", resource, pqErr.Constraint), err)
		case codeCheckViolation:
			return errors.Validation(
				fmt.Sprintf("%s violates check constraint %s", resource, pqErr.Constraint), err)
		case codeInsufficientPriv:
			// The database's own grants denied the execution identity.
			return errors.Forbidden(fmt.Sprintf("database denied access to %s", resource))
		}
	}

	return errors.Internal(err)
}
