// Package policy maps an authenticated principal onto the restricted view of
// the entity registry it may act on. Scopes are computed per request and never
// persisted; the database role carried on the scope backs the in-process
// checks with the store's own grants.
package policy

import (
	"github.com/clinisys/backoffice/internal/registry"
	"github.com/clinisys/backoffice/pkg/errors"
)

// Role is a principal's role.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleDoctor Role = "doctor"
)

// Principal is an authenticated actor, resolved by the session layer.
type Principal struct {
	ID   int64
	Role Role
}

// AccessScope is the computed, per-request permission set for a principal.
type AccessScope struct {
	Principal       Principal
	VisibleEntities []string
	VisibleFields   map[string][]string
	Writable        bool

	// DBRole is the least-privilege execution identity bound to the
	// request's database work.
	DBRole string
}

// CanSee reports whether entity is within the scope.
func (s *AccessScope) CanSee(entity string) bool {
	for _, e := range s.VisibleEntities {
		if e == entity {
			return true
		}
	}
	return false
}

// Fields returns the visible projection for entity, in declared field order.
func (s *AccessScope) Fields(entity string) []string {
	return s.VisibleFields[entity]
}

// Database execution identities provisioned by the migrations.
const (
	dbRoleAdmin  = "backoffice_admin"
	dbRoleDoctor = "backoffice_doctor"
)

// doctorDenied are hard-denied to the doctor role: they never appear in a
// listing, export or direct lookup. Patient identity reaches doctors only
// through the alias indirection.
var doctorDenied = map[string]struct{}{
	registry.Patients:       {},
	registry.Aliases:        {},
	registry.EncryptionKeys: {},
	registry.ActionLogs:     {},
}

// Engine computes access scopes from the entity registry.
type Engine struct {
	reg *registry.Registry
}

func NewEngine(reg *registry.Registry) *Engine {
	return &Engine{reg: reg}
}

// ScopeFor derives the access scope for p. An unrecognized role fails closed
// with no access at all.
func (e *Engine) ScopeFor(p Principal) (*AccessScope, error) {
	var dbRole string
	switch p.Role {
	case RoleAdmin:
		dbRole = dbRoleAdmin
	case RoleDoctor:
		dbRole = dbRoleDoctor
	default:
		return nil, errors.UnknownRole(string(p.Role))
	}

	scope := &AccessScope{
		Principal:     p,
		VisibleFields: make(map[string][]string),
		Writable:      p.Role == RoleAdmin,
		DBRole:        dbRole,
	}

	for _, name := range e.reg.All() {
		if p.Role == RoleDoctor {
			if _, denied := doctorDenied[name]; denied {
				continue
			}
		}

		ent, err := e.reg.Describe(name)
		if err != nil {
			return nil, err
		}

		var fields []string
		for _, f := range ent.Fields {
			if f.Sensitive && p.Role != RoleAdmin {
				continue
			}
			fields = append(fields, f.Name)
		}

		scope.VisibleEntities = append(scope.VisibleEntities, name)
		scope.VisibleFields[name] = fields
	}

	return scope, nil
}
