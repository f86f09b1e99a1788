// Package registry holds the static metadata describing every manageable
// entity: its fields, kinds, relations and mutability. The registry is built
// once at startup and read-only afterwards; the record gateway, policy engine
// and export path all drive off it instead of per-entity code.
package registry

import (
	"github.com/clinisys/backoffice/pkg/errors"
)

// Kind classifies a field for parsing and rendering.
type Kind string

const (
	KindText       Kind = "text"
	KindInteger    Kind = "integer"
	KindDate       Kind = "date"
	KindDateTime   Kind = "datetime"
	KindEnum       Kind = "enum"
	KindBinary     Kind = "binary"
	KindForeignKey Kind = "foreign_key"
)

// OnDelete names the referential action resolved by the gateway's delete path.
type OnDelete string

const (
	Cascade OnDelete = "cascade"
	SetNull OnDelete = "set_null"
	Protect OnDelete = "protect"
)

// Field describes one column of an entity.
type Field struct {
	Name      string
	Kind      Kind
	Nullable  bool
	Unique    bool
	Sensitive bool
	Editable  bool
	Enum      []string
}

// Relation describes a foreign key from Field to the Target entity's id.
type Relation struct {
	Field    string
	Target   string
	OnDelete OnDelete
}

// Entity is the immutable descriptor of one manageable table.
type Entity struct {
	Name      string
	Fields    []Field
	Relations []Relation

	// Creatable marks entities rows may be added to through the generic
	// gateway. System users, aliases, keys and audit rows are provisioned
	// by their own subsystems.
	Creatable bool
}

// Field returns the descriptor for the named field.
func (e Entity) Field(name string) (Field, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldNames returns all field names in declaration order.
func (e Entity) FieldNames() []string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Name
	}
	return names
}

// Relation returns the relation rooted at the named field, if any.
func (e Entity) Relation(field string) (Relation, bool) {
	for _, r := range e.Relations {
		if r.Field == field {
			return r, true
		}
	}
	return Relation{}, false
}

// Reference pairs an entity with one of its relations, used when walking
// foreign keys back from their target.
type Reference struct {
	Entity   string
	Relation Relation
}

// Registry is the process-wide, insertion-ordered set of entity descriptors.
type Registry struct {
	order    []string
	entities map[string]Entity
}

// New builds a registry from descriptors, preserving declaration order.
func New(entities ...Entity) *Registry {
	r := &Registry{entities: make(map[string]Entity, len(entities))}
	for _, e := range entities {
		if _, dup := r.entities[e.Name]; dup {
			continue
		}
		r.order = append(r.order, e.Name)
		r.entities[e.Name] = e
	}
	return r
}

// Describe returns the descriptor for name or an unknown-entity error.
func (r *Registry) Describe(name string) (Entity, error) {
	e, ok := r.entities[name]
	if !ok {
		return Entity{}, errors.UnknownEntity(name)
	}
	return e, nil
}

// All returns entity names in declaration order.
func (r *Registry) All() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// ReferencedBy returns every relation in the registry that targets entity,
// in declaration order of the owning entities.
func (r *Registry) ReferencedBy(entity string) []Reference {
	var refs []Reference
	for _, name := range r.order {
		for _, rel := range r.entities[name].Relations {
			if rel.Target == entity {
				refs = append(refs, Reference{Entity: name, Relation: rel})
			}
		}
	}
	return refs
}
