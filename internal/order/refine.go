package order

import (
	"github.com/pgschema/pgdelta/internal/change"
)

// Refinement reorders adjacent changes the primary sort left unconstrained.
//
// Filter selects the changes the pass may move. Key groups them; changes with
// different keys never swap. A nil Key puts every selected change in one group.
// Less reports whether a should run before b.
type Refinement struct {
	Name   string
	Filter func(c change.Change) bool
	Key    func(c change.Change) string
	Less   func(a, b change.Change) bool
}

// DefaultRefinements returns the passes applied when Options.Refinements is nil
func DefaultRefinements() []Refinement {
	return []Refinement{
		{
			Name: "columns-before-constraints",
			Filter: func(c change.Change) bool {
				switch c.(type) {
				case *change.AlterTableAddColumn, *change.AlterTableAddConstraint:
					return true
				}
				return false
			},
			Key: targetKey,
			Less: func(a, b change.Change) bool {
				_, aCol := a.(*change.AlterTableAddColumn)
				_, bCon := b.(*change.AlterTableAddConstraint)
				return aCol && bCon
			},
		},
		{
			Name: "primary-keys-before-foreign-keys",
			Filter: func(c change.Change) bool {
				t := addedConstraintType(c)
				return t == change.ConstraintTypePrimaryKey || t == change.ConstraintTypeForeignKey
			},
			Key: targetKey,
			Less: func(a, b change.Change) bool {
				return addedConstraintType(a) == change.ConstraintTypePrimaryKey &&
					addedConstraintType(b) == change.ConstraintTypeForeignKey
			},
		},
	}
}

func targetKey(c change.Change) string {
	return c.Target().String()
}

func addedConstraintType(c change.Change) change.ConstraintType {
	if add, ok := c.(*change.AlterTableAddConstraint); ok {
		return add.Constraint.Type
	}
	return ""
}

// refine applies r to order in place. Only adjacent changes inside a run of
// filtered changes are swapped, and never across an edge of g: two neighbours
// in a valid order can only be related by a direct edge, so the result stays a
// valid order of g.
func refine(order []int, changes []change.Change, g *graph, r Refinement) {
	if r.Filter == nil || r.Less == nil {
		return
	}
	key := r.Key
	if key == nil {
		key = func(change.Change) string { return "" }
	}

	for start := 0; start < len(order); {
		if !r.Filter(changes[order[start]]) {
			start++
			continue
		}
		end := start
		for end < len(order) && r.Filter(changes[order[end]]) {
			end++
		}
		for i := start + 1; i < end; i++ {
			for j := i; j > start; j-- {
				prev, cur := order[j-1], order[j]
				if key(changes[prev]) != key(changes[cur]) {
					break
				}
				if !r.Less(changes[cur], changes[prev]) || g.hasEdge(prev, cur) {
					break
				}
				order[j-1], order[j] = cur, prev
			}
		}
		start = end
	}
}
