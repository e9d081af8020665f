// Package depend restricts catalog dependencies to the objects a changeset touches.
//
// The dependency relation of a real database is large. Extract keeps only the edges
// between objects that are touched by a change, or sit within a few hops of one, so
// that ordering stays proportional to the changeset rather than to the schema.
package depend

import (
	"sort"

	"github.com/pgschema/pgdelta/internal/catalog"
	"github.com/pgschema/pgdelta/internal/change"
	"github.com/pgschema/pgdelta/internal/stableid"
)

// DefaultHops is how far the relevant set grows from the touched objects
const DefaultHops = 2

// Source names the catalog state an edge was read from
type Source string

const (
	// SourceMain is the current state, which governs drops
	SourceMain Source = "main"
	// SourceBranch is the desired state, which governs everything else
	SourceBranch Source = "branch"
	// SourceAny queries the union of main, branch and explicit edges
	SourceAny Source = ""
)

// Origin says where an edge came from
type Origin string

const (
	OriginCatalog  Origin = "catalog"
	OriginExplicit Origin = "explicit"
)

// Edge says Dependent needs Referenced to exist or remain
type Edge struct {
	Dependent  stableid.ID
	Referenced stableid.ID
	Origin     Origin
	Source     Source
	Type       catalog.DepType
}

// edgeIndex maps dependent -> referenced -> edge
type edgeIndex map[stableid.ID]map[stableid.ID]Edge

func (idx edgeIndex) add(e Edge) {
	refs, ok := idx[e.Dependent]
	if !ok {
		refs = make(map[stableid.ID]Edge)
		idx[e.Dependent] = refs
	}
	if _, exists := refs[e.Referenced]; !exists {
		refs[e.Referenced] = e
	}
}

func (idx edgeIndex) get(dependent, referenced stableid.ID) (Edge, bool) {
	e, ok := idx[dependent][referenced]
	return e, ok
}

func (idx edgeIndex) sorted() []Edge {
	var edges []Edge
	for _, refs := range idx {
		for _, e := range refs {
			edges = append(edges, e)
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Dependent != edges[j].Dependent {
			return edges[i].Dependent < edges[j].Dependent
		}
		return edges[i].Referenced < edges[j].Referenced
	})
	return edges
}

// Model is the dependency information relevant to one changeset. Catalog edges are
// kept per source because a drop is judged against main and a create against branch.
type Model struct {
	main     edgeIndex
	branch   edgeIndex
	explicit edgeIndex
	union    edgeIndex
	relevant map[stableid.ID]bool
}

// Extract builds the dependency model for changes from the main and branch catalogs.
// Either catalog may be nil. hops <= 0 uses DefaultHops.
func Extract(main, branch *catalog.Catalog, changes []change.Change, hops int) *Model {
	if hops <= 0 {
		hops = DefaultHops
	}

	m := &Model{
		main:     make(edgeIndex),
		branch:   make(edgeIndex),
		explicit: make(edgeIndex),
		union:    make(edgeIndex),
		relevant: make(map[stableid.ID]bool),
	}

	// Seed with everything the changeset touches
	for _, c := range changes {
		if c == nil {
			continue
		}
		for _, id := range change.Touched(c) {
			m.relevant[id] = true
		}
	}

	mainDeps := usableDependencies(main)
	branchDeps := usableDependencies(branch)

	// Expand outward through direct dependencies and dependents in both catalogs
	neighbors := make(map[stableid.ID][]stableid.ID)
	for _, deps := range [][]catalog.Dependency{mainDeps, branchDeps} {
		for _, dep := range deps {
			neighbors[dep.Dependent] = append(neighbors[dep.Dependent], dep.Referenced)
			neighbors[dep.Referenced] = append(neighbors[dep.Referenced], dep.Dependent)
		}
	}
	frontier := m.sortedRelevant()
	for hop := 0; hop < hops && len(frontier) > 0; hop++ {
		var next []stableid.ID
		for _, id := range frontier {
			for _, n := range neighbors[id] {
				if !m.relevant[n] {
					m.relevant[n] = true
					next = append(next, n)
				}
			}
		}
		frontier = next
	}

	// Keep edges with both endpoints relevant
	for _, dep := range mainDeps {
		if m.relevant[dep.Dependent] && m.relevant[dep.Referenced] {
			e := Edge{Dependent: dep.Dependent, Referenced: dep.Referenced, Origin: OriginCatalog, Source: SourceMain, Type: dep.Type}
			m.main.add(e)
		}
	}
	for _, dep := range branchDeps {
		if m.relevant[dep.Dependent] && m.relevant[dep.Referenced] {
			e := Edge{Dependent: dep.Dependent, Referenced: dep.Referenced, Origin: OriginCatalog, Source: SourceBranch, Type: dep.Type}
			m.branch.add(e)
		}
	}

	// Requirements declared by changes, against every identifier they create
	for _, c := range changes {
		if c == nil {
			continue
		}
		for _, created := range c.Creates() {
			for _, required := range c.Requires() {
				if created == required || required.IsUnknown() {
					continue
				}
				m.explicit.add(Edge{Dependent: created, Referenced: required, Origin: OriginExplicit})
			}
		}
	}

	for _, idx := range []edgeIndex{m.branch, m.main, m.explicit} {
		for _, refs := range idx {
			for _, e := range refs {
				m.union.add(e)
			}
		}
	}
	return m
}

// usableDependencies drops edges that must never gate ordering
func usableDependencies(c *catalog.Catalog) []catalog.Dependency {
	if c == nil {
		return nil
	}
	deps := make([]catalog.Dependency, 0, len(c.Dependencies))
	for _, dep := range c.Dependencies {
		if dep.Dependent.IsUnknown() || dep.Referenced.IsUnknown() {
			continue
		}
		if dep.Dependent == dep.Referenced || dep.Dependent.IsZero() || dep.Referenced.IsZero() {
			continue
		}
		deps = append(deps, dep)
	}
	return deps
}

func (m *Model) index(src Source) edgeIndex {
	switch src {
	case SourceMain:
		return m.main
	case SourceBranch:
		return m.branch
	}
	return m.union
}

// Has reports whether dependent depends on referenced in the given source
func (m *Model) Has(dependent, referenced stableid.ID, src Source) bool {
	_, ok := m.index(src).get(dependent, referenced)
	return ok
}

// Edge returns the edge from dependent to referenced in the given source
func (m *Model) Edge(dependent, referenced stableid.ID, src Source) (Edge, bool) {
	return m.index(src).get(dependent, referenced)
}

// Edges returns the edges of a source sorted by dependent then referenced
func (m *Model) Edges(src Source) []Edge {
	return m.index(src).sorted()
}

// ExplicitEdges returns the edges synthesized from change requirements
func (m *Model) ExplicitEdges() []Edge {
	return m.explicit.sorted()
}

// Relevant returns the relevant set sorted
func (m *Model) Relevant() []stableid.ID {
	return m.sortedRelevant()
}

func (m *Model) sortedRelevant() []stableid.ID {
	out := make([]stableid.ID, 0, len(m.relevant))
	for id := range m.relevant {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
