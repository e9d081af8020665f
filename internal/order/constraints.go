package order

import (
	"fmt"
	"sort"

	"github.com/pgschema/pgdelta/internal/change"
	"github.com/pgschema/pgdelta/internal/depend"
	"github.com/pgschema/pgdelta/internal/stableid"
)

// Category names the rule family a constraint came from
type Category string

const (
	CategoryDependency    Category = "dependency"
	CategorySequenceTable Category = "sequence_table"
	CategorySameObject    Category = "same_object"
	CategoryStyle         Category = "style"
	CategoryRequirement   Category = "requirement"
)

// Constraint says the change at Before must run before the change at After
type Constraint struct {
	Before   int
	After    int
	Category Category
	Reason   string
}

// generator derives pairwise constraints between the changes of one changeset
type generator struct {
	changes []change.Change
	model   *depend.Model
	touched [][]stableid.ID
	shares  []map[stableid.ID]bool
}

func newGenerator(changes []change.Change, model *depend.Model) *generator {
	touched := make([][]stableid.ID, len(changes))
	shares := make([]map[stableid.ID]bool, len(changes))
	for i, c := range changes {
		touched[i] = change.Touched(c)
		shares[i] = make(map[stableid.ID]bool, len(touched[i]))
		for _, id := range touched[i] {
			shares[i][id] = true
		}
	}
	return &generator{changes: changes, model: model, touched: touched, shares: shares}
}

// generate returns the dependency and same-object constraints, and separately
// the style constraints, which only hold where no dependency path contradicts them.
//
// The pair loop is O(n²) in the number of changes and dominates on very large
// changesets.
func (g *generator) generate() (hard, style []Constraint) {
	n := len(g.changes)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			iOnJ, jOnI := g.findEdges(i, j)
			if iOnJ == nil && jOnI == nil {
				if c, ok := styleRule(g.changes, i, j); ok {
					style = append(style, c)
				}
				continue
			}
			if iOnJ != nil {
				hard = append(hard, dependencyRule(g.changes, i, j, *iOnJ))
			}
			if jOnI != nil {
				hard = append(hard, dependencyRule(g.changes, j, i, *jOnI))
			}
		}
	}
	return append(hard, g.sameObjectConstraints()...), style
}

// sourceFor picks the catalog state a change is judged against: a drop must match
// the database as it is today, everything else the desired end state.
func sourceFor(c change.Change) depend.Source {
	if c.Operation() == change.OperationDrop {
		return depend.SourceMain
	}
	return depend.SourceBranch
}

// findEdges looks for "i depends on j" and "j depends on i". When both sides are
// judged against the same catalog that catalog is asked first; the union of all
// sources is the fallback for cross-catalog pairs.
func (g *generator) findEdges(i, j int) (iOnJ, jOnI *depend.Edge) {
	si, sj := sourceFor(g.changes[i]), sourceFor(g.changes[j])
	if si == sj {
		iOnJ, jOnI = g.lookup(i, j, si), g.lookup(j, i, si)
		if iOnJ != nil || jOnI != nil {
			return iOnJ, jOnI
		}
	}
	return g.lookup(i, j, depend.SourceAny), g.lookup(j, i, depend.SourceAny)
}

// lookup returns the first edge from an identifier of dependent to one of referenced.
// Identifiers both changes touch are skipped: they name the same object, which
// same-object precedence orders.
func (g *generator) lookup(dependent, referenced int, src depend.Source) *depend.Edge {
	for _, d := range g.touched[dependent] {
		if g.shares[referenced][d] {
			continue
		}
		for _, r := range g.touched[referenced] {
			if g.shares[dependent][r] {
				continue
			}
			if e, ok := g.model.Edge(d, r, src); ok {
				return &e
			}
		}
	}
	return nil
}

// sameObjectConstraints orders changes that target the same object and scope by
// operation priority: drop, create, alter, replace. Every member of a priority
// bucket is placed before every member of the next non-empty bucket.
func (g *generator) sameObjectConstraints() []Constraint {
	type groupKey struct {
		target stableid.ID
		scope  change.Scope
	}
	groups := make(map[groupKey][]int)
	var keys []groupKey
	for i, c := range g.changes {
		key := groupKey{target: c.Target(), scope: c.Scope()}
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], i)
	}

	var out []Constraint
	for _, key := range keys {
		members := groups[key]
		if len(members) < 2 {
			continue
		}
		var buckets [5][]int
		for _, idx := range members {
			p := change.Priority(g.changes[idx].Operation())
			buckets[p] = append(buckets[p], idx)
		}
		var prev []int
		for _, bucket := range buckets {
			if len(bucket) == 0 {
				continue
			}
			for _, before := range prev {
				for _, after := range bucket {
					out = append(out, Constraint{
						Before:   before,
						After:    after,
						Category: CategorySameObject,
						Reason: fmt.Sprintf("%s before %s on %s",
							g.changes[before].Operation(), g.changes[after].Operation(), key.target),
					})
				}
			}
			prev = bucket
		}
	}
	return out
}

// requirementConstraints lowers the identifiers changes require to the instance
// level: a change that creates an identifier runs before every change requiring it.
// When nothing creates it, changes requiring it run before the change that drops it.
func requirementConstraints(changes []change.Change) []Constraint {
	producers := make(map[stableid.ID][]int)
	droppers := make(map[stableid.ID][]int)
	for i, c := range changes {
		for _, id := range c.Creates() {
			producers[id] = append(producers[id], i)
		}
	}
	for i, c := range changes {
		for _, id := range c.Drops() {
			if !containsID(c.Creates(), id) {
				droppers[id] = append(droppers[id], i)
			}
		}
	}

	var out []Constraint
	for j, c := range changes {
		for _, required := range c.Requires() {
			if ps, ok := producers[required]; ok {
				for _, p := range ps {
					if p == j {
						continue
					}
					out = append(out, Constraint{
						Before:   p,
						After:    j,
						Category: CategoryRequirement,
						Reason:   fmt.Sprintf("creates %s", required),
					})
				}
				continue
			}
			for _, d := range droppers[required] {
				if d == j {
					continue
				}
				out = append(out, Constraint{
					Before:   j,
					After:    d,
					Category: CategoryRequirement,
					Reason:   fmt.Sprintf("requires %s before it is dropped", required),
				})
			}
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Before != out[b].Before {
			return out[a].Before < out[b].Before
		}
		return out[a].After < out[b].After
	})
	return out
}

func containsID(list []stableid.ID, id stableid.ID) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}
