package change

import (
	"github.com/pgschema/pgdelta/internal/stableid"
)

// Column describes a table column or a composite type attribute
type Column struct {
	Name     string `json:"name" yaml:"name"`
	DataType string `json:"data_type" yaml:"data_type"`
	NotNull  bool   `json:"not_null,omitempty" yaml:"not_null,omitempty"`
	Default  string `json:"default,omitempty" yaml:"default,omitempty"`
	// Depends lists objects the column definition references, such as a
	// user-defined type or the sequence behind a nextval() default.
	Depends []stableid.ID `json:"depends,omitempty" yaml:"depends,omitempty"`
}

// ConstraintType represents the type of a table constraint
type ConstraintType string

const (
	ConstraintTypePrimaryKey ConstraintType = "PRIMARY KEY"
	ConstraintTypeUnique     ConstraintType = "UNIQUE"
	ConstraintTypeForeignKey ConstraintType = "FOREIGN KEY"
	ConstraintTypeCheck      ConstraintType = "CHECK"
)

// Constraint describes a table constraint
type Constraint struct {
	Name              string         `json:"name" yaml:"name"`
	Type              ConstraintType `json:"type" yaml:"type"`
	Columns           []string       `json:"columns,omitempty" yaml:"columns,omitempty"`
	ReferencedSchema  string         `json:"referenced_schema,omitempty" yaml:"referenced_schema,omitempty"`
	ReferencedTable   string         `json:"referenced_table,omitempty" yaml:"referenced_table,omitempty"`
	ReferencedColumns []string       `json:"referenced_columns,omitempty" yaml:"referenced_columns,omitempty"`
	OnDelete          string         `json:"on_delete,omitempty" yaml:"on_delete,omitempty"`
	CheckClause       string         `json:"check_clause,omitempty" yaml:"check_clause,omitempty"`
}

// Table describes a table in the desired (create) or current (drop) state
type Table struct {
	Schema      string        `json:"schema" yaml:"schema"`
	Name        string        `json:"name" yaml:"name"`
	Columns     []Column      `json:"columns,omitempty" yaml:"columns,omitempty"`
	Constraints []Constraint  `json:"constraints,omitempty" yaml:"constraints,omitempty"`
	Owner       string        `json:"owner,omitempty" yaml:"owner,omitempty"`
	Depends     []stableid.ID `json:"depends,omitempty" yaml:"depends,omitempty"`
}

// ID returns the table's stable identifier
func (t *Table) ID() stableid.ID {
	return stableid.Table(t.Schema, t.Name)
}

// Sequence describes a sequence
type Sequence struct {
	Schema     string `json:"schema" yaml:"schema"`
	Name       string `json:"name" yaml:"name"`
	DataType   string `json:"data_type,omitempty" yaml:"data_type,omitempty"`
	StartValue int64  `json:"start_value,omitempty" yaml:"start_value,omitempty"`
	Increment  int64  `json:"increment,omitempty" yaml:"increment,omitempty"`
	MinValue   *int64 `json:"min_value,omitempty" yaml:"min_value,omitempty"`
	MaxValue   *int64 `json:"max_value,omitempty" yaml:"max_value,omitempty"`
	Cache      int64  `json:"cache,omitempty" yaml:"cache,omitempty"`
	Cycle      bool   `json:"cycle,omitempty" yaml:"cycle,omitempty"`
}

// ID returns the sequence's stable identifier
func (s *Sequence) ID() stableid.ID {
	return stableid.Sequence(s.Schema, s.Name)
}

// ColumnRef points at a table column, e.g. the owner of a sequence
type ColumnRef struct {
	Schema string `json:"schema" yaml:"schema"`
	Table  string `json:"table" yaml:"table"`
	Column string `json:"column" yaml:"column"`
}

// View describes a view or materialized view
type View struct {
	Schema       string        `json:"schema" yaml:"schema"`
	Name         string        `json:"name" yaml:"name"`
	Definition   string        `json:"definition" yaml:"definition"`
	Materialized bool          `json:"materialized,omitempty" yaml:"materialized,omitempty"`
	Depends      []stableid.ID `json:"depends,omitempty" yaml:"depends,omitempty"`
}

// ID returns the view's stable identifier
func (v *View) ID() stableid.ID {
	if v.Materialized {
		return stableid.MaterializedView(v.Schema, v.Name)
	}
	return stableid.View(v.Schema, v.Name)
}

// Index describes an index on a table
type Index struct {
	Schema  string   `json:"schema" yaml:"schema"`
	Table   string   `json:"table" yaml:"table"`
	Name    string   `json:"name" yaml:"name"`
	Columns []string `json:"columns" yaml:"columns"`
	Unique  bool     `json:"unique,omitempty" yaml:"unique,omitempty"`
	Method  string   `json:"method,omitempty" yaml:"method,omitempty"`
	Where   string   `json:"where,omitempty" yaml:"where,omitempty"`
}

// ID returns the index's stable identifier
func (i *Index) ID() stableid.ID {
	return stableid.Index(i.Schema, i.Name)
}

// RoutineKind distinguishes functions from procedures
type RoutineKind string

const (
	RoutineKindFunction  RoutineKind = "function"
	RoutineKindProcedure RoutineKind = "procedure"
)

// Argument is a routine parameter
type Argument struct {
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	DataType string `json:"data_type" yaml:"data_type"`
	Mode     string `json:"mode,omitempty" yaml:"mode,omitempty"` // IN, OUT, INOUT, VARIADIC
	Default  string `json:"default,omitempty" yaml:"default,omitempty"`
}

// Routine describes a function or procedure
type Routine struct {
	Schema     string        `json:"schema" yaml:"schema"`
	Name       string        `json:"name" yaml:"name"`
	Kind       RoutineKind   `json:"kind" yaml:"kind"`
	Arguments  []Argument    `json:"arguments,omitempty" yaml:"arguments,omitempty"`
	ReturnType string        `json:"return_type,omitempty" yaml:"return_type,omitempty"`
	Language   string        `json:"language" yaml:"language"`
	Body       string        `json:"body" yaml:"body"`
	Volatility string        `json:"volatility,omitempty" yaml:"volatility,omitempty"`
	Depends    []stableid.ID `json:"depends,omitempty" yaml:"depends,omitempty"`
}

// IdentityArgTypes returns the argument types that take part in the routine's
// identity; OUT parameters do not.
func (r *Routine) IdentityArgTypes() []string {
	var types []string
	for _, arg := range r.Arguments {
		if arg.Mode == "OUT" {
			continue
		}
		types = append(types, arg.DataType)
	}
	return types
}

// ID returns the routine's stable identifier
func (r *Routine) ID() stableid.ID {
	return stableid.Routine(r.Schema, r.Name, r.IdentityArgTypes())
}

// QualifiedName returns schema.name without arguments
func (r *Routine) QualifiedName() string {
	return r.Schema + "." + r.Name
}

func (r *Routine) objectType() ObjectType {
	if r.Kind == RoutineKindProcedure {
		return ObjectTypeProcedure
	}
	return ObjectTypeFunction
}

// Trigger describes a table trigger
type Trigger struct {
	Schema         string   `json:"schema" yaml:"schema"`
	Table          string   `json:"table" yaml:"table"`
	Name           string   `json:"name" yaml:"name"`
	Timing         string   `json:"timing" yaml:"timing"` // BEFORE, AFTER, INSTEAD OF
	Events         []string `json:"events" yaml:"events"`
	Level          string   `json:"level,omitempty" yaml:"level,omitempty"` // ROW or STATEMENT
	FunctionSchema string   `json:"function_schema" yaml:"function_schema"`
	FunctionName   string   `json:"function_name" yaml:"function_name"`
	When           string   `json:"when,omitempty" yaml:"when,omitempty"`
}

// ID returns the trigger's stable identifier
func (t *Trigger) ID() stableid.ID {
	return stableid.Trigger(t.Schema, t.Table, t.Name)
}

// TypeKind represents the kind of a user-defined type
type TypeKind string

const (
	TypeKindEnum      TypeKind = "enum"
	TypeKindComposite TypeKind = "composite"
	TypeKindDomain    TypeKind = "domain"
)

// Type describes a user-defined type
type Type struct {
	Schema     string        `json:"schema" yaml:"schema"`
	Name       string        `json:"name" yaml:"name"`
	Kind       TypeKind      `json:"kind" yaml:"kind"`
	EnumValues []string      `json:"enum_values,omitempty" yaml:"enum_values,omitempty"`
	Attributes []Column      `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	BaseType   string        `json:"base_type,omitempty" yaml:"base_type,omitempty"`
	Check      string        `json:"check,omitempty" yaml:"check,omitempty"`
	Depends    []stableid.ID `json:"depends,omitempty" yaml:"depends,omitempty"`
}

// ID returns the type's stable identifier
func (t *Type) ID() stableid.ID {
	return stableid.Type(t.Schema, t.Name)
}
