// Package gateway implements list/read/create/update/delete against any
// registered entity using only registry metadata, bounded by the caller's
// access scope. Every statement executes under the scope's least-privilege
// database role and every mutation writes its audit entry in the same
// transaction.
package gateway

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/clinisys/backoffice/internal/policy"
	"github.com/clinisys/backoffice/internal/registry"
	"github.com/clinisys/backoffice/internal/repository/postgres"
	"github.com/clinisys/backoffice/internal/service/audit"
	"github.com/clinisys/backoffice/pkg/errors"
	"github.com/clinisys/backoffice/pkg/metrics"
)

// Record is one row keyed by field name.
type Record map[string]interface{}

// ResultSet is an ordered listing of one entity: Columns preserves the
// entity's declared field order for rendering and export.
type ResultSet struct {
	Entity  string   `json:"entity"`
	Columns []string `json:"columns"`
	Rows    []Record `json:"rows"`
}

// Store executes a function under a database role. Satisfied by
// postgres.RoleBinder.
type Store interface {
	WithRole(ctx context.Context, dbRole string, fn func(tx *sqlx.Tx) error) error
}

var _ Store = (*postgres.RoleBinder)(nil)

// exportDenylist is checked by the bulk export path regardless of scope: key
// material never leaves the system through an export, even for admins.
var exportDenylist = map[string]struct{}{
	registry.EncryptionKeys: {},
}

type Gateway struct {
	reg     *registry.Registry
	store   Store
	auditor *audit.Service
	metrics *metrics.Metrics
}

func New(reg *registry.Registry, store Store, auditor *audit.Service, m *metrics.Metrics) *Gateway {
	return &Gateway{reg: reg, store: store, auditor: auditor, metrics: m}
}

// admit resolves the entity descriptor and enforces scope visibility.
func (g *Gateway) admit(entity, op string, scope *policy.AccessScope) (registry.Entity, error) {
	ent, err := g.reg.Describe(entity)
	if err != nil {
		return registry.Entity{}, err
	}
	if !scope.CanSee(entity) {
		if g.metrics != nil {
			g.metrics.ScopeDenials.WithLabelValues(entity, op).Inc()
		}
		return registry.Entity{}, errors.Forbidden(fmt.Sprintf("entity %q is not accessible", entity))
	}
	return ent, nil
}

func (g *Gateway) admitWrite(entity, op string, scope *policy.AccessScope) (registry.Entity, error) {
	ent, err := g.admit(entity, op, scope)
	if err != nil {
		return registry.Entity{}, err
	}
	if !scope.Writable {
		if g.metrics != nil {
			g.metrics.ScopeDenials.WithLabelValues(entity, op).Inc()
		}
		return registry.Entity{}, errors.Forbidden("role has read-only access")
	}
	return ent, nil
}

func (g *Gateway) observe(entity, op string, start time.Time, err error) {
	if g.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	g.metrics.GatewayOperations.WithLabelValues(entity, op, outcome).Inc()
	g.metrics.GatewayLatency.WithLabelValues(entity, op).Observe(time.Since(start).Seconds())
}

// List returns all rows of entity projected onto the scope's visible fields,
// in declared field order, ordered by id.
func (g *Gateway) List(ctx context.Context, entity string, scope *policy.AccessScope) (rs *ResultSet, err error) {
	defer func(start time.Time) { g.observe(entity, "list", start, err) }(time.Now())

	ent, err := g.admit(entity, "list", scope)
	if err != nil {
		return nil, err
	}
	columns := scope.Fields(entity)

	query, args, err := buildList(ent, columns)
	if err != nil {
		return nil, errors.Internal(err)
	}

	rs = &ResultSet{Entity: entity, Columns: columns}
	err = g.store.WithRole(ctx, scope.DBRole, func(tx *sqlx.Tx) error {
		rows, err := tx.QueryxContext(ctx, query, args...)
		if err != nil {
			return postgres.MapError(entity, err)
		}
		defer rows.Close()

		for rows.Next() {
			rec := make(Record, len(columns))
			if err := rows.MapScan(rec); err != nil {
				return postgres.MapError(entity, err)
			}
			for k, v := range rec {
				rec[k] = normalize(ent, k, v)
			}
			rs.Rows = append(rs.Rows, rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return rs, nil
}

// Get returns one row by id.
func (g *Gateway) Get(ctx context.Context, entity string, id int64, scope *policy.AccessScope) (rec Record, err error) {
	defer func(start time.Time) { g.observe(entity, "get", start, err) }(time.Now())

	ent, err := g.admit(entity, "get", scope)
	if err != nil {
		return nil, err
	}
	columns := scope.Fields(entity)

	query, args, err := buildGet(ent, columns, id)
	if err != nil {
		return nil, errors.Internal(err)
	}

	err = g.store.WithRole(ctx, scope.DBRole, func(tx *sqlx.Tx) error {
		row := tx.QueryRowxContext(ctx, query, args...)
		rec = make(Record, len(columns))
		if err := row.MapScan(rec); err != nil {
			if stderrors.Is(err, sql.ErrNoRows) {
				return errors.NotFound(entity, err)
			}
			return postgres.MapError(entity, err)
		}
		for k, v := range rec {
			rec[k] = normalize(ent, k, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Create inserts a new row from fieldValues and returns its id. Non-editable
// fields in the input are ignored; missing required fields, bad enum members,
// duplicate unique values and unresolvable foreign keys fail validation. The
// store's own unique constraints remain the authoritative check: a violation
// that slips past the precheck surfaces as StorageConflict.
func (g *Gateway) Create(ctx context.Context, entity string, fieldValues map[string]interface{}, scope *policy.AccessScope) (id int64, err error) {
	defer func(start time.Time) { g.observe(entity, "create", start, err) }(time.Now())

	ent, err := g.admitWrite(entity, "create", scope)
	if err != nil {
		return 0, err
	}
	if !ent.Creatable {
		return 0, errors.Forbidden(fmt.Sprintf("rows cannot be added to %q directly", entity))
	}

	values, err := editableValues(ent, fieldValues, true)
	if err != nil {
		return 0, err
	}

	query, args, err := buildInsert(ent, values)
	if err != nil {
		return 0, errors.Internal(err)
	}

	err = g.store.WithRole(ctx, scope.DBRole, func(tx *sqlx.Tx) error {
		if err := g.precheck(ctx, tx, ent, values, 0); err != nil {
			return err
		}

		if err := tx.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
			return postgres.MapError(entity, err)
		}

		return g.auditor.LogTx(ctx, tx, scope.Principal.ID, "create", entity, id, values)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Update applies a partial update: unspecified fields are left unchanged.
func (g *Gateway) Update(ctx context.Context, entity string, id int64, fieldValues map[string]interface{}, scope *policy.AccessScope) (err error) {
	defer func(start time.Time) { g.observe(entity, "update", start, err) }(time.Now())

	ent, err := g.admitWrite(entity, "update", scope)
	if err != nil {
		return err
	}

	values, err := editableValues(ent, fieldValues, false)
	if err != nil {
		return err
	}

	return g.store.WithRole(ctx, scope.DBRole, func(tx *sqlx.Tx) error {
		if err := g.mustExist(ctx, tx, entity, id); err != nil {
			return err
		}
		if len(values) == 0 {
			return nil
		}

		if err := g.precheck(ctx, tx, ent, values, id); err != nil {
			return err
		}

		query, args, err := buildUpdate(ent, values, id)
		if err != nil {
			return errors.Internal(err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return postgres.MapError(entity, err)
		}

		return g.auditor.LogTx(ctx, tx, scope.Principal.ID, "update", entity, id, values)
	})
}

// Delete removes a row, resolving each inbound relation's on_delete action
// inside one transaction: cascade recurses into children, set_null detaches
// them, protect aborts the whole delete.
func (g *Gateway) Delete(ctx context.Context, entity string, id int64, scope *policy.AccessScope) (err error) {
	defer func(start time.Time) { g.observe(entity, "delete", start, err) }(time.Now())

	ent, err := g.admitWrite(entity, "delete", scope)
	if err != nil {
		return err
	}

	return g.store.WithRole(ctx, scope.DBRole, func(tx *sqlx.Tx) error {
		if err := g.mustExist(ctx, tx, entity, id); err != nil {
			return err
		}
		if err := g.deleteRow(ctx, tx, ent, id); err != nil {
			return err
		}
		return g.auditor.LogTx(ctx, tx, scope.Principal.ID, "delete", entity, id, nil)
	})
}

func (g *Gateway) deleteRow(ctx context.Context, tx *sqlx.Tx, ent registry.Entity, id int64) error {
	steps, err := g.planDelete(ctx, &txProbe{tx: tx}, ent, id)
	if err != nil {
		return err
	}
	for _, st := range steps {
		if _, err := tx.ExecContext(ctx, st.query, st.args...); err != nil {
			return postgres.MapError(ent.Name, err)
		}
	}
	return nil
}

// ListAll lists every requested entity the scope can see, for bulk export.
// The encryption key entity is excluded unconditionally, before the scope is
// even consulted.
func (g *Gateway) ListAll(ctx context.Context, entities []string, scope *policy.AccessScope) ([]*ResultSet, error) {
	var out []*ResultSet
	for _, entity := range Exportable(entities, scope) {
		rs, err := g.List(ctx, entity, scope)
		if err != nil {
			return nil, err
		}
		out = append(out, rs)
	}
	return out, nil
}

// Exportable filters entities down to those the export path may touch:
// denylisted entities are dropped first, then anything outside the scope.
func Exportable(entities []string, scope *policy.AccessScope) []string {
	var out []string
	for _, entity := range entities {
		if _, denied := exportDenylist[entity]; denied {
			continue
		}
		if !scope.CanSee(entity) {
			continue
		}
		out = append(out, entity)
	}
	return out
}

// mustExist distinguishes NotFound from a silent no-op before mutating.
func (g *Gateway) mustExist(ctx context.Context, tx *sqlx.Tx, entity string, id int64) error {
	query, args, err := buildExists(entity, "id", id)
	if err != nil {
		return errors.Internal(err)
	}
	var one int
	if err := tx.GetContext(ctx, &one, query, args...); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return errors.NotFound(entity, nil)
		}
		return postgres.MapError(entity, err)
	}
	return nil
}

// precheck runs the optimistic uniqueness and foreign key checks. These only
// produce friendlier errors; the database constraints remain authoritative.
func (g *Gateway) precheck(ctx context.Context, tx *sqlx.Tx, ent registry.Entity, values map[string]interface{}, selfID int64) error {
	for _, f := range ent.Fields {
		v, ok := values[f.Name]
		if !ok {
			continue
		}

		if f.Unique {
			var (
				query string
				args  []interface{}
				err   error
			)
			if selfID != 0 {
				query, args, err = buildExistsExcluding(ent.Name, f.Name, v, selfID)
			} else {
				query, args, err = buildExists(ent.Name, f.Name, v)
			}
			if err != nil {
				return errors.Internal(err)
			}

			var one int
			err = tx.GetContext(ctx, &one, query, args...)
			if err == nil {
				return errors.Validation(fmt.Sprintf("%s with this %s already exists", ent.Name, f.Name), nil)
			}
			if !stderrors.Is(err, sql.ErrNoRows) {
				return postgres.MapError(ent.Name, err)
			}
		}

		if rel, isFK := ent.Relation(f.Name); isFK {
			query, args, err := buildExists(rel.Target, "id", v)
			if err != nil {
				return errors.Internal(err)
			}
			var one int
			if err := tx.GetContext(ctx, &one, query, args...); err != nil {
				if stderrors.Is(err, sql.ErrNoRows) {
					return errors.Validation(
						fmt.Sprintf("field %q references a missing %s row", f.Name, rel.Target), nil)
				}
				return postgres.MapError(rel.Target, err)
			}
		}
	}
	return nil
}
