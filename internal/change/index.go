package change

import (
	"fmt"

	"github.com/pgschema/pgdelta/internal/stableid"
)

// CreateIndex creates an index
type CreateIndex struct {
	Index Index `json:"index" yaml:"index"`
}

func (c *CreateIndex) Operation() Operation   { return OperationCreate }
func (c *CreateIndex) ObjectType() ObjectType { return ObjectTypeIndex }
func (c *CreateIndex) Scope() Scope           { return ScopeObject }
func (c *CreateIndex) Target() stableid.ID    { return c.Index.ID() }
func (c *CreateIndex) Creates() []stableid.ID { return ids(c.Target()) }
func (c *CreateIndex) Drops() []stableid.ID   { return nil }
func (c *CreateIndex) sealed()                {}

func (c *CreateIndex) Requires() []stableid.ID {
	idx := &c.Index
	reqs := []stableid.ID{stableid.Table(idx.Schema, idx.Table)}
	for _, col := range idx.Columns {
		reqs = append(reqs, stableid.Column(idx.Schema, idx.Table, col))
	}
	return ids(reqs...)
}

func (c *CreateIndex) SQL() string {
	idx := &c.Index
	unique := ""
	if idx.Unique {
		unique = "UNIQUE "
	}
	using := ""
	if idx.Method != "" && idx.Method != "btree" {
		using = " USING " + idx.Method
	}
	sql := fmt.Sprintf("CREATE %sINDEX %s ON %s%s (%s)",
		unique, quoteIdent(idx.Name), qualify(idx.Schema, idx.Table), using, quoteIdents(idx.Columns))
	if idx.Where != "" {
		sql += " WHERE " + idx.Where
	}
	return sql + ";"
}

// DropIndex drops an index
type DropIndex struct {
	Index Index `json:"index" yaml:"index"`
}

func (c *DropIndex) Operation() Operation    { return OperationDrop }
func (c *DropIndex) ObjectType() ObjectType  { return ObjectTypeIndex }
func (c *DropIndex) Scope() Scope            { return ScopeObject }
func (c *DropIndex) Target() stableid.ID     { return c.Index.ID() }
func (c *DropIndex) Creates() []stableid.ID  { return nil }
func (c *DropIndex) Drops() []stableid.ID    { return ids(c.Target()) }
func (c *DropIndex) Requires() []stableid.ID { return nil }
func (c *DropIndex) sealed()                 {}

func (c *DropIndex) SQL() string {
	return fmt.Sprintf("DROP INDEX %s;", qualify(c.Index.Schema, c.Index.Name))
}
