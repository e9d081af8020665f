package change

import (
	"fmt"
	"strings"

	"github.com/pgschema/pgdelta/internal/stableid"
)

func (v *View) objectType() ObjectType {
	if v.Materialized {
		return ObjectTypeMaterializedView
	}
	return ObjectTypeView
}

func (v *View) requires() []stableid.ID {
	return ids(append([]stableid.ID{schemaID(v.Schema)}, v.Depends...)...)
}

func (v *View) definition() string {
	return strings.TrimSuffix(strings.TrimSpace(v.Definition), ";")
}

// CreateView creates a view or materialized view
type CreateView struct {
	View View `json:"view" yaml:"view"`
}

func (c *CreateView) Operation() Operation    { return OperationCreate }
func (c *CreateView) ObjectType() ObjectType  { return c.View.objectType() }
func (c *CreateView) Scope() Scope            { return ScopeObject }
func (c *CreateView) Target() stableid.ID     { return c.View.ID() }
func (c *CreateView) Creates() []stableid.ID  { return ids(c.Target()) }
func (c *CreateView) Drops() []stableid.ID    { return nil }
func (c *CreateView) Requires() []stableid.ID { return c.View.requires() }
func (c *CreateView) sealed()                 {}

func (c *CreateView) SQL() string {
	kind := "VIEW"
	if c.View.Materialized {
		kind = "MATERIALIZED VIEW"
	}
	return fmt.Sprintf("CREATE %s %s AS\n%s;", kind, qualify(c.View.Schema, c.View.Name), c.View.definition())
}

// ReplaceView redefines an existing view in place with CREATE OR REPLACE. The
// view keeps its identity, so the change creates it without dropping it.
type ReplaceView struct {
	View View `json:"view" yaml:"view"`
}

func (c *ReplaceView) Operation() Operation    { return OperationReplace }
func (c *ReplaceView) ObjectType() ObjectType  { return ObjectTypeView }
func (c *ReplaceView) Scope() Scope            { return ScopeObject }
func (c *ReplaceView) Target() stableid.ID     { return c.View.ID() }
func (c *ReplaceView) Creates() []stableid.ID  { return ids(c.Target()) }
func (c *ReplaceView) Drops() []stableid.ID    { return nil }
func (c *ReplaceView) Requires() []stableid.ID { return c.View.requires() }
func (c *ReplaceView) sealed()                 {}

func (c *ReplaceView) SQL() string {
	return fmt.Sprintf("CREATE OR REPLACE VIEW %s AS\n%s;", qualify(c.View.Schema, c.View.Name), c.View.definition())
}

// DropView drops a view or materialized view
type DropView struct {
	View View `json:"view" yaml:"view"`
}

func (c *DropView) Operation() Operation    { return OperationDrop }
func (c *DropView) ObjectType() ObjectType  { return c.View.objectType() }
func (c *DropView) Scope() Scope            { return ScopeObject }
func (c *DropView) Target() stableid.ID     { return c.View.ID() }
func (c *DropView) Creates() []stableid.ID  { return nil }
func (c *DropView) Drops() []stableid.ID    { return ids(c.Target()) }
func (c *DropView) Requires() []stableid.ID { return nil }
func (c *DropView) sealed()                 {}

func (c *DropView) SQL() string {
	kind := "VIEW"
	if c.View.Materialized {
		kind = "MATERIALIZED VIEW"
	}
	return fmt.Sprintf("DROP %s %s;", kind, qualify(c.View.Schema, c.View.Name))
}
