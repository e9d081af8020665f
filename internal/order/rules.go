package order

import (
	"fmt"
	"strings"

	"github.com/pgschema/pgdelta/internal/change"
	"github.com/pgschema/pgdelta/internal/depend"
)

// dependencyRule turns "changes[dep] depends on changes[ref]" into a constraint
func dependencyRule(changes []change.Change, dep, ref int, e depend.Edge) Constraint {
	if c, ok := sequenceTableRule(changes, dep, ref, e); ok {
		return c
	}

	dOp, rOp := changes[dep].Operation(), changes[ref].Operation()
	reason := func(rule string) string {
		return fmt.Sprintf("%s: %s", rule, describeEdge(e))
	}
	switch {
	case dOp == change.OperationDrop && rOp == change.OperationDrop:
		return Constraint{Before: dep, After: ref, Category: CategoryDependency, Reason: reason("drop dependent before referenced")}
	case dOp == change.OperationCreate && rOp == change.OperationCreate:
		return Constraint{Before: ref, After: dep, Category: CategoryDependency, Reason: reason("create referenced before dependent")}
	case dOp != change.OperationDrop && rOp != change.OperationDrop:
		return Constraint{Before: ref, After: dep, Category: CategoryDependency, Reason: reason("mutate referenced before dependent")}
	case rOp == change.OperationDrop:
		return Constraint{Before: ref, After: dep, Category: CategoryDependency, Reason: reason("drop referenced before mutating dependent")}
	default:
		return Constraint{Before: dep, After: ref, Category: CategoryDependency, Reason: reason("drop dependent before mutating referenced")}
	}
}

func describeEdge(e depend.Edge) string {
	s := fmt.Sprintf("%s depends on %s", e.Dependent, e.Referenced)
	switch {
	case e.Origin == depend.OriginExplicit:
		return s + " (declared)"
	case e.Source != depend.SourceAny:
		return fmt.Sprintf("%s (%s)", s, e.Source)
	}
	return s
}

type sequenceAction int

const (
	sequenceNone sequenceAction = iota
	sequenceCreate
	sequenceOwnedBy
	sequenceOptions
	sequenceDrop
)

func sequenceActionOf(c change.Change) sequenceAction {
	switch c.(type) {
	case *change.CreateSequence:
		return sequenceCreate
	case *change.AlterSequenceSetOwnedBy:
		return sequenceOwnedBy
	case *change.AlterSequenceSetOptions:
		return sequenceOptions
	case *change.DropSequence:
		return sequenceDrop
	}
	return sequenceNone
}

func isTableChange(c change.Change) bool {
	return c.ObjectType() == change.ObjectTypeTable && c.Scope() == change.ScopeObject
}

// sequenceTableRule orders a sequence change against a table change linked to it.
// Catalog ownership points from the sequence to the table, which is the reverse of
// the order a script needs, so the edge direction is ignored here:
//
//	create, options   before table create/alter, after table drop
//	owned by          after table create/alter, before table drop
//	drop              after table alter/drop, before table create
func sequenceTableRule(changes []change.Change, a, b int, e depend.Edge) (Constraint, bool) {
	seq, tbl := a, b
	action := sequenceActionOf(changes[seq])
	if action == sequenceNone || !isTableChange(changes[tbl]) {
		seq, tbl = b, a
		action = sequenceActionOf(changes[seq])
		if action == sequenceNone || !isTableChange(changes[tbl]) {
			return Constraint{}, false
		}
	}

	tableDrop := changes[tbl].Operation() == change.OperationDrop
	tableCreate := changes[tbl].Operation() == change.OperationCreate

	var sequenceFirst bool
	switch action {
	case sequenceCreate, sequenceOptions:
		sequenceFirst = !tableDrop
	case sequenceOwnedBy:
		sequenceFirst = tableDrop
	case sequenceDrop:
		sequenceFirst = tableCreate
	}

	reason := fmt.Sprintf("sequence %s relative to table %s: %s",
		changes[seq].Operation(), changes[tbl].Operation(), describeEdge(e))
	if sequenceFirst {
		return Constraint{Before: seq, After: tbl, Category: CategorySequenceTable, Reason: reason}, true
	}
	return Constraint{Before: tbl, After: seq, Category: CategorySequenceTable, Reason: reason}, true
}

// styleRule orders changes with no dependency between them when a convention
// exists. Overloads of one routine go by argument count, then by signature.
func styleRule(changes []change.Change, i, j int) (Constraint, bool) {
	ri, ok := change.RoutineOf(changes[i])
	if !ok {
		return Constraint{}, false
	}
	rj, ok := change.RoutineOf(changes[j])
	if !ok {
		return Constraint{}, false
	}
	if ri.QualifiedName() != rj.QualifiedName() || changes[i].Operation() != changes[j].Operation() {
		return Constraint{}, false
	}

	ai, aj := ri.IdentityArgTypes(), rj.IdentityArgTypes()
	si, sj := strings.Join(ai, ","), strings.Join(aj, ",")
	var first, second int
	switch {
	case len(ai) < len(aj), len(ai) == len(aj) && si < sj:
		first, second = i, j
	case len(ai) > len(aj), len(ai) == len(aj) && si > sj:
		first, second = j, i
	default:
		return Constraint{}, false
	}
	return Constraint{
		Before:   first,
		After:    second,
		Category: CategoryStyle,
		Reason:   fmt.Sprintf("overloads of %s by argument list", ri.QualifiedName()),
	}, true
}
