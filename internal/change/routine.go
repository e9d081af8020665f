package change

import (
	"fmt"
	"strings"

	"github.com/pgschema/pgdelta/internal/stableid"
)

// CreateRoutine creates a function or procedure
type CreateRoutine struct {
	Routine Routine `json:"routine" yaml:"routine"`
}

func (c *CreateRoutine) Operation() Operation    { return OperationCreate }
func (c *CreateRoutine) ObjectType() ObjectType  { return c.Routine.objectType() }
func (c *CreateRoutine) Scope() Scope            { return ScopeObject }
func (c *CreateRoutine) Target() stableid.ID     { return c.Routine.ID() }
func (c *CreateRoutine) Creates() []stableid.ID  { return ids(c.Target()) }
func (c *CreateRoutine) Drops() []stableid.ID    { return nil }
func (c *CreateRoutine) Requires() []stableid.ID { return c.Routine.requires() }
func (c *CreateRoutine) SQL() string             { return c.Routine.createSQL(false) }
func (c *CreateRoutine) sealed()                 {}

// ReplaceRoutine redefines a routine in place with CREATE OR REPLACE
type ReplaceRoutine struct {
	Routine Routine `json:"routine" yaml:"routine"`
}

func (c *ReplaceRoutine) Operation() Operation    { return OperationReplace }
func (c *ReplaceRoutine) ObjectType() ObjectType  { return c.Routine.objectType() }
func (c *ReplaceRoutine) Scope() Scope            { return ScopeObject }
func (c *ReplaceRoutine) Target() stableid.ID     { return c.Routine.ID() }
func (c *ReplaceRoutine) Creates() []stableid.ID  { return ids(c.Target()) }
func (c *ReplaceRoutine) Drops() []stableid.ID    { return nil }
func (c *ReplaceRoutine) Requires() []stableid.ID { return c.Routine.requires() }
func (c *ReplaceRoutine) SQL() string             { return c.Routine.createSQL(true) }
func (c *ReplaceRoutine) sealed()                 {}

// DropRoutine drops a function or procedure
type DropRoutine struct {
	Routine Routine `json:"routine" yaml:"routine"`
}

func (c *DropRoutine) Operation() Operation    { return OperationDrop }
func (c *DropRoutine) ObjectType() ObjectType  { return c.Routine.objectType() }
func (c *DropRoutine) Scope() Scope            { return ScopeObject }
func (c *DropRoutine) Target() stableid.ID     { return c.Routine.ID() }
func (c *DropRoutine) Creates() []stableid.ID  { return nil }
func (c *DropRoutine) Drops() []stableid.ID    { return ids(c.Target()) }
func (c *DropRoutine) Requires() []stableid.ID { return nil }
func (c *DropRoutine) sealed()                 {}

func (c *DropRoutine) SQL() string {
	r := &c.Routine
	return fmt.Sprintf("DROP %s %s(%s);", strings.ToUpper(string(r.objectType())),
		qualify(r.Schema, r.Name), strings.Join(r.IdentityArgTypes(), ", "))
}

// RoutineOf returns the routine a change acts on, if it acts on one
func RoutineOf(c Change) (*Routine, bool) {
	switch c := c.(type) {
	case *CreateRoutine:
		return &c.Routine, true
	case *ReplaceRoutine:
		return &c.Routine, true
	case *DropRoutine:
		return &c.Routine, true
	}
	return nil, false
}

func (r *Routine) requires() []stableid.ID {
	return ids(append([]stableid.ID{schemaID(r.Schema)}, r.Depends...)...)
}

func (r *Routine) createSQL(orReplace bool) string {
	var sb strings.Builder
	sb.WriteString("CREATE ")
	if orReplace {
		sb.WriteString("OR REPLACE ")
	}
	sb.WriteString(strings.ToUpper(string(r.objectType())))
	sb.WriteString(" ")
	sb.WriteString(qualify(r.Schema, r.Name))

	args := make([]string, 0, len(r.Arguments))
	for _, arg := range r.Arguments {
		var parts []string
		if arg.Mode != "" && arg.Mode != "IN" {
			parts = append(parts, arg.Mode)
		}
		if arg.Name != "" {
			parts = append(parts, quoteIdent(arg.Name))
		}
		parts = append(parts, arg.DataType)
		if arg.Default != "" {
			parts = append(parts, "DEFAULT "+arg.Default)
		}
		args = append(args, strings.Join(parts, " "))
	}
	sb.WriteString("(" + strings.Join(args, ", ") + ")")

	if r.Kind != RoutineKindProcedure && r.ReturnType != "" {
		sb.WriteString("\nRETURNS " + r.ReturnType)
	}
	language := r.Language
	if language == "" {
		language = "sql"
	}
	sb.WriteString("\nLANGUAGE " + language)
	if r.Kind != RoutineKindProcedure && r.Volatility != "" {
		sb.WriteString("\n" + strings.ToUpper(r.Volatility))
	}
	sb.WriteString("\nAS $$" + r.Body + "$$;")
	return sb.String()
}
