package gateway

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/clinisys/backoffice/internal/registry"
	"github.com/clinisys/backoffice/internal/repository/postgres"
	"github.com/clinisys/backoffice/pkg/errors"
)

// refProbe answers the two questions the delete planner asks the store: how
// many rows protect a parent, and which child rows a cascade recurses into.
type refProbe interface {
	countRefs(ctx context.Context, ref registry.Reference, id int64) (int64, error)
	childIDs(ctx context.Context, ref registry.Reference, id int64) ([]int64, error)
}

// step is one statement of a delete plan.
type step struct {
	query string
	args  []interface{}
}

// planDelete resolves every inbound relation of ent before the row itself is
// removed. Protect aborts the whole plan, set_null detaches children, cascade
// recurses into them depth-first. Steps execute in order: a child's own
// detach and delete steps always precede its parent's delete.
func (g *Gateway) planDelete(ctx context.Context, probe refProbe, ent registry.Entity, id int64) ([]step, error) {
	var steps []step

	for _, ref := range g.reg.ReferencedBy(ent.Name) {
		switch ref.Relation.OnDelete {
		case registry.Protect:
			n, err := probe.countRefs(ctx, ref, id)
			if err != nil {
				return nil, err
			}
			if n > 0 {
				return nil, errors.Validation(
					fmt.Sprintf("%s %d is protected by %d %s row(s)", ent.Name, id, n, ref.Entity), nil)
			}

		case registry.SetNull:
			query, args, err := buildSetNull(ref, id)
			if err != nil {
				return nil, errors.Internal(err)
			}
			steps = append(steps, step{query: query, args: args})

		case registry.Cascade:
			childIDs, err := probe.childIDs(ctx, ref, id)
			if err != nil {
				return nil, err
			}

			child, err := g.reg.Describe(ref.Entity)
			if err != nil {
				return nil, err
			}
			for _, childID := range childIDs {
				sub, err := g.planDelete(ctx, probe, child, childID)
				if err != nil {
					return nil, err
				}
				steps = append(steps, sub...)
			}
		}
	}

	query, args, err := buildDelete(ent, id)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return append(steps, step{query: query, args: args}), nil
}

// txProbe backs the planner with the delete's own transaction.
type txProbe struct {
	tx *sqlx.Tx
}

func (p *txProbe) countRefs(ctx context.Context, ref registry.Reference, id int64) (int64, error) {
	query, args, err := buildCountRefs(ref, id)
	if err != nil {
		return 0, errors.Internal(err)
	}
	var n int64
	if err := p.tx.GetContext(ctx, &n, query, args...); err != nil {
		return 0, postgres.MapError(ref.Entity, err)
	}
	return n, nil
}

func (p *txProbe) childIDs(ctx context.Context, ref registry.Reference, id int64) ([]int64, error) {
	query, args, err := buildChildIDs(ref, id)
	if err != nil {
		return nil, errors.Internal(err)
	}
	var ids []int64
	if err := p.tx.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, postgres.MapError(ref.Entity, err)
	}
	return ids, nil
}
