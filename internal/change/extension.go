package change

import (
	"fmt"

	"github.com/pgschema/pgdelta/internal/stableid"
)

// CreateExtension installs an extension
type CreateExtension struct {
	Name    string `json:"name" yaml:"name"`
	Schema  string `json:"schema,omitempty" yaml:"schema,omitempty"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
}

func (c *CreateExtension) Operation() Operation    { return OperationCreate }
func (c *CreateExtension) ObjectType() ObjectType  { return ObjectTypeExtension }
func (c *CreateExtension) Scope() Scope            { return ScopeObject }
func (c *CreateExtension) Target() stableid.ID     { return stableid.Extension(c.Name) }
func (c *CreateExtension) Creates() []stableid.ID  { return ids(c.Target()) }
func (c *CreateExtension) Drops() []stableid.ID    { return nil }
func (c *CreateExtension) Requires() []stableid.ID { return ids(schemaID(c.Schema)) }
func (c *CreateExtension) sealed()                 {}

func (c *CreateExtension) SQL() string {
	sql := fmt.Sprintf("CREATE EXTENSION IF NOT EXISTS %s", quoteIdent(c.Name))
	if c.Schema != "" {
		sql += " WITH SCHEMA " + quoteIdent(c.Schema)
	}
	if c.Version != "" {
		sql += " VERSION " + quoteLiteral(c.Version)
	}
	return sql + ";"
}

// DropExtension removes an extension
type DropExtension struct {
	Name string `json:"name" yaml:"name"`
}

func (c *DropExtension) Operation() Operation    { return OperationDrop }
func (c *DropExtension) ObjectType() ObjectType  { return ObjectTypeExtension }
func (c *DropExtension) Scope() Scope            { return ScopeObject }
func (c *DropExtension) Target() stableid.ID     { return stableid.Extension(c.Name) }
func (c *DropExtension) Creates() []stableid.ID  { return nil }
func (c *DropExtension) Drops() []stableid.ID    { return ids(c.Target()) }
func (c *DropExtension) Requires() []stableid.ID { return nil }
func (c *DropExtension) sealed()                 {}

func (c *DropExtension) SQL() string {
	return fmt.Sprintf("DROP EXTENSION %s;", quoteIdent(c.Name))
}
