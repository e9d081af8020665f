package order

import (
	"sort"
	"strconv"

	"github.com/pgschema/pgdelta/internal/change"
)

type edgeKey struct {
	from, to int
}

// graph has one node per change, addressed by the change's index in the input
type graph struct {
	keys  []string
	out   [][]int
	edges map[edgeKey]Constraint
	// list keeps edges in the order they were first added
	list []Constraint
}

func instanceKey(c change.Change, index int) string {
	return c.Target().String() + "#" + strconv.Itoa(index)
}

func newGraph(changes []change.Change) *graph {
	g := &graph{
		keys:  make([]string, len(changes)),
		out:   make([][]int, len(changes)),
		edges: make(map[edgeKey]Constraint),
	}
	for i, c := range changes {
		g.keys[i] = instanceKey(c, i)
	}
	return g
}

func (g *graph) size() int { return len(g.keys) }

// add registers a constraint as an edge. Self loops are ignored and the first
// constraint between two nodes wins.
func (g *graph) add(c Constraint) error {
	n := g.size()
	if c.Before < 0 || c.Before >= n || c.After < 0 || c.After >= n {
		return unexpected("constraint %d -> %d references a change outside the changeset of %d", c.Before, c.After, n)
	}
	if c.Before == c.After {
		return nil
	}
	k := edgeKey{from: c.Before, to: c.After}
	if _, ok := g.edges[k]; ok {
		return nil
	}
	g.edges[k] = c
	g.list = append(g.list, c)
	g.out[c.Before] = append(g.out[c.Before], c.After)
	return nil
}

func (g *graph) addAll(cs []Constraint) error {
	for _, c := range cs {
		if err := g.add(c); err != nil {
			return err
		}
	}
	return nil
}

// addUnlessReachable adds c only when c.After cannot already reach c.Before, so
// the edge never closes a loop. It reports whether the edge was added.
func (g *graph) addUnlessReachable(c Constraint) (bool, error) {
	if c.Before >= 0 && c.Before < g.size() && c.After >= 0 && c.After < g.size() && g.reaches(c.After, c.Before) {
		return false, nil
	}
	if err := g.add(c); err != nil {
		return false, err
	}
	return true, nil
}

// reaches reports whether a path of edges leads from one node to another
func (g *graph) reaches(from, to int) bool {
	seen := make([]bool, g.size())
	stack := []int{from}
	seen[from] = true
	for len(stack) > 0 {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if u == to {
			return true
		}
		for _, v := range g.out[u] {
			if !seen[v] {
				seen[v] = true
				stack = append(stack, v)
			}
		}
	}
	return false
}

// seal sorts adjacency lists so that every traversal is deterministic
func (g *graph) seal() {
	for _, outs := range g.out {
		sort.Ints(outs)
	}
}

func (g *graph) hasEdge(from, to int) bool {
	_, ok := g.edges[edgeKey{from: from, to: to}]
	return ok
}

func (g *graph) edge(from, to int) (Constraint, bool) {
	c, ok := g.edges[edgeKey{from: from, to: to}]
	return c, ok
}
