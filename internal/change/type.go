package change

import (
	"fmt"
	"strings"

	"github.com/pgschema/pgdelta/internal/stableid"
)

// CreateType creates an enum, composite or domain type
type CreateType struct {
	Type Type `json:"type" yaml:"type"`
}

func (c *CreateType) Operation() Operation   { return OperationCreate }
func (c *CreateType) ObjectType() ObjectType { return ObjectTypeType }
func (c *CreateType) Scope() Scope           { return ScopeObject }
func (c *CreateType) Target() stableid.ID    { return c.Type.ID() }
func (c *CreateType) Creates() []stableid.ID { return ids(c.Target()) }
func (c *CreateType) Drops() []stableid.ID   { return nil }
func (c *CreateType) sealed()                {}

func (c *CreateType) Requires() []stableid.ID {
	t := &c.Type
	reqs := []stableid.ID{schemaID(t.Schema)}
	reqs = append(reqs, t.Depends...)
	for _, attr := range t.Attributes {
		reqs = append(reqs, attr.Depends...)
	}
	return ids(reqs...)
}

func (c *CreateType) SQL() string {
	t := &c.Type
	name := qualify(t.Schema, t.Name)
	switch t.Kind {
	case TypeKindEnum:
		values := make([]string, len(t.EnumValues))
		for i, v := range t.EnumValues {
			values[i] = quoteLiteral(v)
		}
		return fmt.Sprintf("CREATE TYPE %s AS ENUM (%s);", name, strings.Join(values, ", "))
	case TypeKindComposite:
		attrs := make([]string, len(t.Attributes))
		for i, attr := range t.Attributes {
			attrs[i] = quoteIdent(attr.Name) + " " + attr.DataType
		}
		return fmt.Sprintf("CREATE TYPE %s AS (%s);", name, strings.Join(attrs, ", "))
	case TypeKindDomain:
		sql := fmt.Sprintf("CREATE DOMAIN %s AS %s", name, t.BaseType)
		if t.Check != "" {
			sql += " CHECK (" + t.Check + ")"
		}
		return sql + ";"
	}
	return fmt.Sprintf("CREATE TYPE %s;", name)
}

// AlterEnumAddValue appends a value to an enum type
type AlterEnumAddValue struct {
	Schema string `json:"schema" yaml:"schema"`
	Name   string `json:"name" yaml:"name"`
	Value  string `json:"value" yaml:"value"`
	After  string `json:"after,omitempty" yaml:"after,omitempty"`
}

func (c *AlterEnumAddValue) Operation() Operation    { return OperationAlter }
func (c *AlterEnumAddValue) ObjectType() ObjectType  { return ObjectTypeType }
func (c *AlterEnumAddValue) Scope() Scope            { return ScopeObject }
func (c *AlterEnumAddValue) Target() stableid.ID     { return stableid.Type(c.Schema, c.Name) }
func (c *AlterEnumAddValue) Creates() []stableid.ID  { return nil }
func (c *AlterEnumAddValue) Drops() []stableid.ID    { return nil }
func (c *AlterEnumAddValue) Requires() []stableid.ID { return ids(c.Target()) }
func (c *AlterEnumAddValue) sealed()                 {}

func (c *AlterEnumAddValue) SQL() string {
	sql := fmt.Sprintf("ALTER TYPE %s ADD VALUE %s", qualify(c.Schema, c.Name), quoteLiteral(c.Value))
	if c.After != "" {
		sql += " AFTER " + quoteLiteral(c.After)
	}
	return sql + ";"
}

// DropType drops a user-defined type
type DropType struct {
	Type Type `json:"type" yaml:"type"`
}

func (c *DropType) Operation() Operation    { return OperationDrop }
func (c *DropType) ObjectType() ObjectType  { return ObjectTypeType }
func (c *DropType) Scope() Scope            { return ScopeObject }
func (c *DropType) Target() stableid.ID     { return c.Type.ID() }
func (c *DropType) Creates() []stableid.ID  { return nil }
func (c *DropType) Drops() []stableid.ID    { return ids(c.Target()) }
func (c *DropType) Requires() []stableid.ID { return nil }
func (c *DropType) sealed()                 {}

func (c *DropType) SQL() string {
	kind := "TYPE"
	if c.Type.Kind == TypeKindDomain {
		kind = "DOMAIN"
	}
	return fmt.Sprintf("DROP %s %s;", kind, qualify(c.Type.Schema, c.Type.Name))
}
