package order

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pgschema/pgdelta/internal/change"
)

// DebugNode is one change in a DebugGraph
type DebugNode struct {
	Index    int    `json:"index"`
	Key      string `json:"key"`
	Summary  string `json:"summary"`
	Identity string `json:"identity"`
	SQL      string `json:"sql"`
}

// DebugEdge is one constraint in a DebugGraph
type DebugEdge struct {
	From     int      `json:"from"`
	To       int      `json:"to"`
	Category Category `json:"category"`
	Reason   string   `json:"reason"`
}

// DebugGraph is the constraint graph of one Sort call. Order holds the resulting
// node order on success; Cycle holds the reported loop on failure.
type DebugGraph struct {
	Nodes []DebugNode `json:"nodes"`
	Edges []DebugEdge `json:"edges"`
	Order []int       `json:"order,omitempty"`
	Cycle []int       `json:"cycle,omitempty"`
}

// GraphSink receives the debug graph of a Sort call
type GraphSink interface {
	EmitGraph(g *DebugGraph) error
}

// GraphSinkFunc adapts a function to GraphSink
type GraphSinkFunc func(g *DebugGraph) error

func (f GraphSinkFunc) EmitGraph(g *DebugGraph) error { return f(g) }

func newDebugGraph(changes []change.Change, g *graph) *DebugGraph {
	dg := &DebugGraph{
		Nodes: make([]DebugNode, len(changes)),
		Edges: make([]DebugEdge, 0, len(g.list)),
	}
	for i, c := range changes {
		dg.Nodes[i] = DebugNode{
			Index:    i,
			Key:      g.keys[i],
			Summary:  change.Summary(c),
			Identity: change.ShortIdentity(c),
			SQL:      c.SQL(),
		}
	}
	for _, c := range g.list {
		dg.Edges = append(dg.Edges, DebugEdge{From: c.Before, To: c.After, Category: c.Category, Reason: c.Reason})
	}
	return dg
}

// JSON renders the graph as indented JSON
func (g *DebugGraph) JSON() ([]byte, error) {
	return json.MarshalIndent(g, "", "  ")
}

// DOT renders the graph in Graphviz format. Nodes on a reported cycle are drawn red.
func (g *DebugGraph) DOT() string {
	onCycle := make(map[int]bool, len(g.Cycle))
	for _, i := range g.Cycle {
		onCycle[i] = true
	}
	position := make(map[int]int, len(g.Order))
	for pos, i := range g.Order {
		position[i] = pos
	}

	var sb strings.Builder
	sb.WriteString("digraph changes {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=box, fontname=\"monospace\"];\n")
	for _, n := range g.Nodes {
		label := n.Summary
		if pos, ok := position[n.Index]; ok {
			label = fmt.Sprintf("%d. %s", pos+1, label)
		}
		attrs := fmt.Sprintf("label=%s", dotQuote(label))
		if onCycle[n.Index] {
			attrs += ", color=red"
		}
		fmt.Fprintf(&sb, "  n%d [%s];\n", n.Index, attrs)
	}
	for _, e := range g.Edges {
		fmt.Fprintf(&sb, "  n%d -> n%d [label=%s, tooltip=%s];\n",
			e.From, e.To, dotQuote(string(e.Category)), dotQuote(e.Reason))
	}
	sb.WriteString("}\n")
	return sb.String()
}

func dotQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return `"` + s + `"`
}
