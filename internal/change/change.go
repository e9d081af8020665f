// Package change models the DDL operations a migration is made of.
//
// A Change is an immutable value built by the diff stage. It reports the stable
// identifiers it creates, drops and requires, and renders itself to SQL once the
// ordering engine has decided where it goes. The set of variants is closed: every
// implementation lives in this package.
package change

import (
	"github.com/pgschema/pgdelta/internal/stableid"
)

// Operation is the kind of DDL operation a change performs
type Operation string

const (
	OperationCreate  Operation = "create"
	OperationAlter   Operation = "alter"
	OperationDrop    Operation = "drop"
	OperationReplace Operation = "replace"
)

// Scope says whether a change targets the object itself or something attached to it
type Scope string

const (
	ScopeObject    Scope = "object"
	ScopePrivilege Scope = "privilege"
)

// ObjectType is the kind of database object a change affects
type ObjectType string

const (
	ObjectTypeSchema           ObjectType = "schema"
	ObjectTypeRole             ObjectType = "role"
	ObjectTypeExtension        ObjectType = "extension"
	ObjectTypeType             ObjectType = "type"
	ObjectTypeSequence         ObjectType = "sequence"
	ObjectTypeTable            ObjectType = "table"
	ObjectTypeView             ObjectType = "view"
	ObjectTypeMaterializedView ObjectType = "materialized_view"
	ObjectTypeIndex            ObjectType = "index"
	ObjectTypeFunction         ObjectType = "function"
	ObjectTypeProcedure        ObjectType = "procedure"
	ObjectTypeTrigger          ObjectType = "trigger"
)

// Change is one atomic DDL operation.
//
// Creates lists identifiers that exist only after the change runs, Drops those that
// cease to exist, and Requires those that must already exist when it runs. Target is
// the identifier of the object the change primarily acts on.
type Change interface {
	Operation() Operation
	ObjectType() ObjectType
	Scope() Scope
	Target() stableid.ID
	Creates() []stableid.ID
	Drops() []stableid.ID
	Requires() []stableid.ID
	SQL() string

	sealed()
}

// Touched returns the target plus every created and dropped identifier, without
// duplicates. Column alters also touch the column they act on.
func Touched(c Change) []stableid.ID {
	seen := make(map[stableid.ID]bool)
	var ids []stableid.ID
	add := func(list ...stableid.ID) {
		for _, id := range list {
			if id.IsZero() || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}
	add(c.Target())
	add(c.Creates()...)
	add(c.Drops()...)
	switch c := c.(type) {
	case *AlterTableAlterColumnType:
		add(stableid.Column(c.Schema, c.Table, c.Column))
	case *AlterTableAlterColumnSetDefault:
		add(stableid.Column(c.Schema, c.Table, c.Column))
	case *AlterTableAlterColumnDropDefault:
		add(stableid.Column(c.Schema, c.Table, c.Column))
	}
	return ids
}

// Priority orders operations against the same object: drop, create, alter, replace.
func Priority(op Operation) int {
	switch op {
	case OperationDrop:
		return 0
	case OperationCreate:
		return 1
	case OperationAlter:
		return 2
	case OperationReplace:
		return 3
	}
	return 4
}

// ids drops empty identifiers and duplicates while keeping order
func ids(list ...stableid.ID) []stableid.ID {
	out := make([]stableid.ID, 0, len(list))
	seen := make(map[stableid.ID]bool, len(list))
	for _, id := range list {
		if id.IsZero() || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
