// Package stableid builds the portable identifiers used to name database objects
// across catalogs. An identifier looks like "table:public.users" and stays the same
// across dump and restore, unlike an OID.
package stableid

import (
	"strings"
)

// ID identifies a database object. Two objects are the same entity iff their IDs are equal.
type ID string

// UnknownPrefix marks a catalog reference that could not be resolved to an object.
const UnknownPrefix = "unknown:"

// Kinds used as the identifier prefix
const (
	KindSchema           = "schema"
	KindRole             = "role"
	KindExtension        = "extension"
	KindTable            = "table"
	KindColumn           = "column"
	KindConstraint       = "constraint"
	KindIndex            = "index"
	KindSequence         = "sequence"
	KindView             = "view"
	KindMaterializedView = "materializedView"
	KindProcedure        = "procedure"
	KindTrigger          = "trigger"
	KindType             = "type"
	KindPolicy           = "rlsPolicy"
	KindACL              = "acl"
)

func (id ID) String() string {
	return string(id)
}

// Kind returns the prefix before the first colon, or "" when there is none.
func (id ID) Kind() string {
	if idx := strings.IndexByte(string(id), ':'); idx > 0 {
		return string(id)[:idx]
	}
	return ""
}

// Name returns everything after the kind prefix.
func (id ID) Name() string {
	if idx := strings.IndexByte(string(id), ':'); idx >= 0 {
		return string(id)[idx+1:]
	}
	return string(id)
}

// IsUnknown reports whether the identifier is an unresolved catalog reference.
func (id ID) IsUnknown() bool {
	return strings.HasPrefix(string(id), UnknownPrefix)
}

// IsZero reports whether the identifier is empty.
func (id ID) IsZero() bool {
	return strings.TrimSpace(string(id)) == ""
}

func Schema(name string) ID {
	return ID(KindSchema + ":" + name)
}

func Role(name string) ID {
	return ID(KindRole + ":" + name)
}

func Extension(name string) ID {
	return ID(KindExtension + ":" + name)
}

func Table(schema, name string) ID {
	return ID(KindTable + ":" + schema + "." + name)
}

func Column(schema, table, column string) ID {
	return ID(KindColumn + ":" + schema + "." + table + "." + column)
}

// Constraint identifies a table constraint; constraint names are unique per table.
func Constraint(schema, table, name string) ID {
	return ID(KindConstraint + ":" + schema + "." + table + "." + name)
}

func Index(schema, name string) ID {
	return ID(KindIndex + ":" + schema + "." + name)
}

func Sequence(schema, name string) ID {
	return ID(KindSequence + ":" + schema + "." + name)
}

func View(schema, name string) ID {
	return ID(KindView + ":" + schema + "." + name)
}

func MaterializedView(schema, name string) ID {
	return ID(KindMaterializedView + ":" + schema + "." + name)
}

// Routine identifies a function or procedure by its identity argument types,
// e.g. "procedure:public.add(integer,integer)". Functions and procedures share a
// namespace in PostgreSQL, so they share a prefix too.
func Routine(schema, name string, argTypes []string) ID {
	return ID(KindProcedure + ":" + schema + "." + name + "(" + strings.Join(argTypes, ",") + ")")
}

func Trigger(schema, table, name string) ID {
	return ID(KindTrigger + ":" + schema + "." + table + "." + name)
}

func Type(schema, name string) ID {
	return ID(KindType + ":" + schema + "." + name)
}

func Policy(schema, table, name string) ID {
	return ID(KindPolicy + ":" + schema + "." + table + "." + name)
}

// ACL identifies the privileges granted to grantee on another object.
func ACL(object ID, grantee string) ID {
	return ID(KindACL + ":" + string(object) + "::grantee:" + grantee)
}

// Unknown builds an identifier for a catalog reference that could not be resolved.
func Unknown(detail string) ID {
	return ID(UnknownPrefix + detail)
}
