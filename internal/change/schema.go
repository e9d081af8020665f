package change

import (
	"fmt"

	"github.com/pgschema/pgdelta/internal/stableid"
)

// CreateSchema creates a schema
type CreateSchema struct {
	Name  string `json:"name" yaml:"name"`
	Owner string `json:"owner,omitempty" yaml:"owner,omitempty"`
}

func (c *CreateSchema) Operation() Operation    { return OperationCreate }
func (c *CreateSchema) ObjectType() ObjectType  { return ObjectTypeSchema }
func (c *CreateSchema) Scope() Scope            { return ScopeObject }
func (c *CreateSchema) Target() stableid.ID     { return stableid.Schema(c.Name) }
func (c *CreateSchema) Creates() []stableid.ID  { return ids(c.Target()) }
func (c *CreateSchema) Drops() []stableid.ID    { return nil }
func (c *CreateSchema) Requires() []stableid.ID { return ids(roleID(c.Owner)) }
func (c *CreateSchema) sealed()                 {}

func (c *CreateSchema) SQL() string {
	if c.Owner != "" {
		return fmt.Sprintf("CREATE SCHEMA %s AUTHORIZATION %s;", quoteIdent(c.Name), quoteIdent(c.Owner))
	}
	return fmt.Sprintf("CREATE SCHEMA %s;", quoteIdent(c.Name))
}

// AlterSchemaOwner changes the owner of a schema
type AlterSchemaOwner struct {
	Name  string `json:"name" yaml:"name"`
	Owner string `json:"owner" yaml:"owner"`
}

func (c *AlterSchemaOwner) Operation() Operation   { return OperationAlter }
func (c *AlterSchemaOwner) ObjectType() ObjectType { return ObjectTypeSchema }
func (c *AlterSchemaOwner) Scope() Scope           { return ScopeObject }
func (c *AlterSchemaOwner) Target() stableid.ID    { return stableid.Schema(c.Name) }
func (c *AlterSchemaOwner) Creates() []stableid.ID { return nil }
func (c *AlterSchemaOwner) Drops() []stableid.ID   { return nil }
func (c *AlterSchemaOwner) Requires() []stableid.ID {
	return ids(c.Target(), roleID(c.Owner))
}
func (c *AlterSchemaOwner) sealed() {}

func (c *AlterSchemaOwner) SQL() string {
	return fmt.Sprintf("ALTER SCHEMA %s OWNER TO %s;", quoteIdent(c.Name), quoteIdent(c.Owner))
}

// DropSchema drops a schema
type DropSchema struct {
	Name string `json:"name" yaml:"name"`
}

func (c *DropSchema) Operation() Operation    { return OperationDrop }
func (c *DropSchema) ObjectType() ObjectType  { return ObjectTypeSchema }
func (c *DropSchema) Scope() Scope            { return ScopeObject }
func (c *DropSchema) Target() stableid.ID     { return stableid.Schema(c.Name) }
func (c *DropSchema) Creates() []stableid.ID  { return nil }
func (c *DropSchema) Drops() []stableid.ID    { return ids(c.Target()) }
func (c *DropSchema) Requires() []stableid.ID { return nil }
func (c *DropSchema) sealed()                 {}

func (c *DropSchema) SQL() string {
	return fmt.Sprintf("DROP SCHEMA %s;", quoteIdent(c.Name))
}

// roleID returns the role identifier, or "" for PUBLIC and empty names
func roleID(name string) stableid.ID {
	if name == "" || name == "PUBLIC" || name == "public" {
		return ""
	}
	return stableid.Role(name)
}

// schemaID returns the schema identifier; public always exists and is not required
func schemaID(name string) stableid.ID {
	if name == "" || name == "public" {
		return ""
	}
	return stableid.Schema(name)
}
