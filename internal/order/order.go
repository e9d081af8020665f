// Package order decides the order in which schema changes run.
//
// Sort derives pairwise constraints from catalog dependencies, the requirements
// changes declare, and a small set of semantic rules, then sorts the resulting
// graph deterministically. When no order exists it returns a *CycleError naming
// the changes on one loop.
package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pgschema/pgdelta/internal/catalog"
	"github.com/pgschema/pgdelta/internal/change"
	"github.com/pgschema/pgdelta/internal/depend"
)

// Options tunes a Sort call. The zero value is ready to use.
type Options struct {
	// Hops bounds how far catalog dependencies are followed from the touched
	// objects; <= 0 means depend.DefaultHops.
	Hops int
	// Refinements run after the primary sort. nil means DefaultRefinements;
	// an empty non-nil slice disables refinement.
	Refinements []Refinement
	Logger      *slog.Logger
	// Graph receives the debug graph when set
	Graph GraphSink
}

// Sort returns changes in an order that respects every dependency between them.
// main is the current catalog and branch the desired one; either may be nil.
// The input slice is not modified.
func Sort(main, branch *catalog.Catalog, changes []change.Change, opts Options) ([]change.Change, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	for i, c := range changes {
		if c == nil {
			return nil, &MalformedChangeError{Index: i, Reason: "change is nil"}
		}
		if c.Target().IsZero() {
			return nil, &MalformedChangeError{Index: i, Reason: fmt.Sprintf("%s %s has no target identifier", c.Operation(), c.ObjectType())}
		}
	}

	model := depend.Extract(main, branch, changes, opts.Hops)
	if log.Enabled(context.Background(), slog.LevelDebug) {
		log.Debug("Extracted dependency model",
			"changes", len(changes),
			"relevant", len(model.Relevant()),
			"main_edges", len(model.Edges(depend.SourceMain)),
			"branch_edges", len(model.Edges(depend.SourceBranch)),
			"explicit_edges", len(model.ExplicitEdges()))
	}

	g := newGraph(changes)
	constraints, style := newGenerator(changes, model).generate()
	if err := g.addAll(constraints); err != nil {
		return nil, err
	}
	requirements := requirementConstraints(changes)
	if err := g.addAll(requirements); err != nil {
		return nil, err
	}
	skipped := 0
	for _, c := range style {
		added, err := g.addUnlessReachable(c)
		if err != nil {
			return nil, err
		}
		if !added {
			skipped++
			log.Debug("Skipped style constraint against dependency path",
				"before", g.keys[c.Before], "after", g.keys[c.After], "reason", c.Reason)
		}
	}
	g.seal()
	log.Debug("Built constraint graph",
		"semantic_constraints", len(constraints),
		"requirement_constraints", len(requirements),
		"style_constraints", len(style)-skipped,
		"edges", len(g.list))

	idx, err := topoSort(g)
	if err != nil {
		var cycleErr *CycleError
		if errors.As(err, &cycleErr) {
			log.Debug("Dependency cycle detected", "cycle", cycleErr.Cycle)
			if opts.Graph != nil {
				dg := newDebugGraph(changes, g)
				dg.Cycle = cycleErr.Indices
				if sinkErr := opts.Graph.EmitGraph(dg); sinkErr != nil {
					log.Warn("Failed to emit debug graph", "error", sinkErr)
				}
			}
		}
		return nil, err
	}

	refinements := opts.Refinements
	if refinements == nil {
		refinements = DefaultRefinements()
	}
	for _, r := range refinements {
		refine(idx, changes, g, r)
		log.Debug("Applied refinement", "name", r.Name)
	}

	if opts.Graph != nil {
		dg := newDebugGraph(changes, g)
		dg.Order = append([]int(nil), idx...)
		if err := opts.Graph.EmitGraph(dg); err != nil {
			log.Warn("Failed to emit debug graph", "error", err)
		}
	}

	ordered := make([]change.Change, len(idx))
	for pos, i := range idx {
		ordered[pos] = changes[i]
	}
	return ordered, nil
}
