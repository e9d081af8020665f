package change

import (
	"fmt"
	"strings"

	"github.com/pgschema/pgdelta/internal/stableid"
)

// CreateSequence creates a sequence. Ownership is set separately with
// AlterSequenceSetOwnedBy once the owning table exists.
type CreateSequence struct {
	Sequence Sequence `json:"sequence" yaml:"sequence"`
}

func (c *CreateSequence) Operation() Operation    { return OperationCreate }
func (c *CreateSequence) ObjectType() ObjectType  { return ObjectTypeSequence }
func (c *CreateSequence) Scope() Scope            { return ScopeObject }
func (c *CreateSequence) Target() stableid.ID     { return c.Sequence.ID() }
func (c *CreateSequence) Creates() []stableid.ID  { return ids(c.Target()) }
func (c *CreateSequence) Drops() []stableid.ID    { return nil }
func (c *CreateSequence) Requires() []stableid.ID { return ids(schemaID(c.Sequence.Schema)) }
func (c *CreateSequence) sealed()                 {}

func (c *CreateSequence) SQL() string {
	seq := &c.Sequence
	parts := []string{"CREATE SEQUENCE " + qualify(seq.Schema, seq.Name)}
	if seq.DataType != "" && seq.DataType != "bigint" {
		parts = append(parts, "AS "+seq.DataType)
	}
	parts = append(parts, sequenceOptions(seq)...)
	return strings.Join(parts, " ") + ";"
}

// sequenceOptions renders the options that differ from PostgreSQL's defaults
func sequenceOptions(seq *Sequence) []string {
	var parts []string
	if seq.Increment != 0 && seq.Increment != 1 {
		parts = append(parts, fmt.Sprintf("INCREMENT BY %d", seq.Increment))
	}
	if seq.MinValue != nil && *seq.MinValue != 1 {
		parts = append(parts, fmt.Sprintf("MINVALUE %d", *seq.MinValue))
	}
	if seq.MaxValue != nil && *seq.MaxValue != 9223372036854775807 {
		parts = append(parts, fmt.Sprintf("MAXVALUE %d", *seq.MaxValue))
	}
	if seq.StartValue != 0 && seq.StartValue != 1 {
		parts = append(parts, fmt.Sprintf("START WITH %d", seq.StartValue))
	}
	if seq.Cache > 1 {
		parts = append(parts, fmt.Sprintf("CACHE %d", seq.Cache))
	}
	if seq.Cycle {
		parts = append(parts, "CYCLE")
	}
	return parts
}

// AlterSequenceSetOwnedBy ties a sequence to a table column, or detaches it
// when Owner is nil.
type AlterSequenceSetOwnedBy struct {
	Sequence Sequence   `json:"sequence" yaml:"sequence"`
	Owner    *ColumnRef `json:"owner,omitempty" yaml:"owner,omitempty"`
}

func (c *AlterSequenceSetOwnedBy) Operation() Operation   { return OperationAlter }
func (c *AlterSequenceSetOwnedBy) ObjectType() ObjectType { return ObjectTypeSequence }
func (c *AlterSequenceSetOwnedBy) Scope() Scope           { return ScopeObject }
func (c *AlterSequenceSetOwnedBy) Target() stableid.ID    { return c.Sequence.ID() }
func (c *AlterSequenceSetOwnedBy) Creates() []stableid.ID { return nil }
func (c *AlterSequenceSetOwnedBy) Drops() []stableid.ID   { return nil }
func (c *AlterSequenceSetOwnedBy) Requires() []stableid.ID {
	if c.Owner == nil {
		return ids(c.Target())
	}
	return ids(
		c.Target(),
		stableid.Table(c.Owner.Schema, c.Owner.Table),
		stableid.Column(c.Owner.Schema, c.Owner.Table, c.Owner.Column),
	)
}
func (c *AlterSequenceSetOwnedBy) sealed() {}

func (c *AlterSequenceSetOwnedBy) SQL() string {
	owner := "NONE"
	if c.Owner != nil {
		owner = qualify(c.Owner.Schema, c.Owner.Table) + "." + quoteIdent(c.Owner.Column)
	}
	return fmt.Sprintf("ALTER SEQUENCE %s OWNED BY %s;", qualify(c.Sequence.Schema, c.Sequence.Name), owner)
}

// AlterSequenceSetOptions changes sequence parameters. Options holds pre-rendered
// clauses such as "INCREMENT BY 5" or "NO CYCLE".
type AlterSequenceSetOptions struct {
	Sequence Sequence `json:"sequence" yaml:"sequence"`
	Options  []string `json:"options" yaml:"options"`
}

func (c *AlterSequenceSetOptions) Operation() Operation    { return OperationAlter }
func (c *AlterSequenceSetOptions) ObjectType() ObjectType  { return ObjectTypeSequence }
func (c *AlterSequenceSetOptions) Scope() Scope            { return ScopeObject }
func (c *AlterSequenceSetOptions) Target() stableid.ID     { return c.Sequence.ID() }
func (c *AlterSequenceSetOptions) Creates() []stableid.ID  { return nil }
func (c *AlterSequenceSetOptions) Drops() []stableid.ID    { return nil }
func (c *AlterSequenceSetOptions) Requires() []stableid.ID { return ids(c.Target()) }
func (c *AlterSequenceSetOptions) sealed()                 {}

func (c *AlterSequenceSetOptions) SQL() string {
	return fmt.Sprintf("ALTER SEQUENCE %s %s;", qualify(c.Sequence.Schema, c.Sequence.Name), strings.Join(c.Options, " "))
}

// DropSequence drops a sequence
type DropSequence struct {
	Sequence Sequence `json:"sequence" yaml:"sequence"`
}

func (c *DropSequence) Operation() Operation    { return OperationDrop }
func (c *DropSequence) ObjectType() ObjectType  { return ObjectTypeSequence }
func (c *DropSequence) Scope() Scope            { return ScopeObject }
func (c *DropSequence) Target() stableid.ID     { return c.Sequence.ID() }
func (c *DropSequence) Creates() []stableid.ID  { return nil }
func (c *DropSequence) Drops() []stableid.ID    { return ids(c.Target()) }
func (c *DropSequence) Requires() []stableid.ID { return nil }
func (c *DropSequence) sealed()                 {}

func (c *DropSequence) SQL() string {
	return fmt.Sprintf("DROP SEQUENCE %s;", qualify(c.Sequence.Schema, c.Sequence.Name))
}
