package gateway

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/clinisys/backoffice/internal/registry"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func buildList(ent registry.Entity, columns []string) (string, []interface{}, error) {
	return psql.Select(columns...).
		From(ent.Name).
		OrderBy("id").
		ToSql()
}

func buildGet(ent registry.Entity, columns []string, id int64) (string, []interface{}, error) {
	return psql.Select(columns...).
		From(ent.Name).
		Where(sq.Eq{"id": id}).
		ToSql()
}

func buildInsert(ent registry.Entity, values map[string]interface{}) (string, []interface{}, error) {
	// Iterate declared field order so generated SQL is deterministic.
	cols := make([]string, 0, len(values))
	args := make([]interface{}, 0, len(values))
	for _, f := range ent.Fields {
		if v, ok := values[f.Name]; ok {
			cols = append(cols, f.Name)
			args = append(args, v)
		}
	}

	return psql.Insert(ent.Name).
		Columns(cols...).
		Values(args...).
		Suffix("RETURNING id").
		ToSql()
}

func buildUpdate(ent registry.Entity, values map[string]interface{}, id int64) (string, []interface{}, error) {
	b := psql.Update(ent.Name)
	for _, f := range ent.Fields {
		if v, ok := values[f.Name]; ok {
			b = b.Set(f.Name, v)
		}
	}
	return b.Where(sq.Eq{"id": id}).ToSql()
}

func buildDelete(ent registry.Entity, id int64) (string, []interface{}, error) {
	return psql.Delete(ent.Name).Where(sq.Eq{"id": id}).ToSql()
}

func buildSetNull(ref registry.Reference, id int64) (string, []interface{}, error) {
	return psql.Update(ref.Entity).
		Set(ref.Relation.Field, nil).
		Where(sq.Eq{ref.Relation.Field: id}).
		ToSql()
}

func buildChildIDs(ref registry.Reference, id int64) (string, []interface{}, error) {
	return psql.Select("id").
		From(ref.Entity).
		Where(sq.Eq{ref.Relation.Field: id}).
		ToSql()
}

func buildCountRefs(ref registry.Reference, id int64) (string, []interface{}, error) {
	return psql.Select("COUNT(*)").
		From(ref.Entity).
		Where(sq.Eq{ref.Relation.Field: id}).
		ToSql()
}

func buildExists(entity, field string, value interface{}) (string, []interface{}, error) {
	return psql.Select("1").
		From(entity).
		Where(sq.Eq{field: value}).
		Limit(1).
		ToSql()
}

func buildExistsExcluding(entity, field string, value interface{}, excludeID int64) (string, []interface{}, error) {
	return psql.Select("1").
		From(entity).
		Where(sq.Eq{field: value}).
		Where(sq.NotEq{"id": excludeID}).
		Limit(1).
		ToSql()
}
