package change

import (
	"fmt"
	"strings"

	"github.com/pgschema/pgdelta/internal/stableid"
)

// CreateTrigger creates a trigger on a table
type CreateTrigger struct {
	Trigger Trigger `json:"trigger" yaml:"trigger"`
}

func (c *CreateTrigger) Operation() Operation   { return OperationCreate }
func (c *CreateTrigger) ObjectType() ObjectType { return ObjectTypeTrigger }
func (c *CreateTrigger) Scope() Scope           { return ScopeObject }
func (c *CreateTrigger) Target() stableid.ID    { return c.Trigger.ID() }
func (c *CreateTrigger) Creates() []stableid.ID { return ids(c.Target()) }
func (c *CreateTrigger) Drops() []stableid.ID   { return nil }
func (c *CreateTrigger) sealed()                {}

func (c *CreateTrigger) Requires() []stableid.ID {
	t := &c.Trigger
	// trigger functions take no arguments
	return ids(
		stableid.Table(t.Schema, t.Table),
		stableid.Routine(t.FunctionSchema, t.FunctionName, nil),
	)
}

func (c *CreateTrigger) SQL() string {
	t := &c.Trigger
	level := t.Level
	if level == "" {
		level = "ROW"
	}
	sql := fmt.Sprintf("CREATE TRIGGER %s\n    %s %s ON %s\n    FOR EACH %s",
		quoteIdent(t.Name), t.Timing, strings.Join(t.Events, " OR "), qualify(t.Schema, t.Table), level)
	if t.When != "" {
		sql += "\n    WHEN (" + t.When + ")"
	}
	sql += fmt.Sprintf("\n    EXECUTE FUNCTION %s();", qualify(t.FunctionSchema, t.FunctionName))
	return sql
}

// DropTrigger drops a trigger
type DropTrigger struct {
	Trigger Trigger `json:"trigger" yaml:"trigger"`
}

func (c *DropTrigger) Operation() Operation    { return OperationDrop }
func (c *DropTrigger) ObjectType() ObjectType  { return ObjectTypeTrigger }
func (c *DropTrigger) Scope() Scope            { return ScopeObject }
func (c *DropTrigger) Target() stableid.ID     { return c.Trigger.ID() }
func (c *DropTrigger) Creates() []stableid.ID  { return nil }
func (c *DropTrigger) Drops() []stableid.ID    { return ids(c.Target()) }
func (c *DropTrigger) Requires() []stableid.ID { return nil }
func (c *DropTrigger) sealed()                 {}

func (c *DropTrigger) SQL() string {
	return fmt.Sprintf("DROP TRIGGER %s ON %s;", quoteIdent(c.Trigger.Name), qualify(c.Trigger.Schema, c.Trigger.Table))
}
