package change

import (
	"fmt"
	"strings"

	"github.com/pgschema/pgdelta/internal/stableid"
)

// CreateTable creates a table with its columns and inline constraints
type CreateTable struct {
	Table Table `json:"table" yaml:"table"`
}

func (c *CreateTable) Operation() Operation   { return OperationCreate }
func (c *CreateTable) ObjectType() ObjectType { return ObjectTypeTable }
func (c *CreateTable) Scope() Scope           { return ScopeObject }
func (c *CreateTable) Target() stableid.ID    { return c.Table.ID() }
func (c *CreateTable) sealed()                {}

func (c *CreateTable) Creates() []stableid.ID {
	t := &c.Table
	created := []stableid.ID{t.ID()}
	for _, col := range t.Columns {
		created = append(created, stableid.Column(t.Schema, t.Name, col.Name))
	}
	for _, con := range t.Constraints {
		created = append(created, stableid.Constraint(t.Schema, t.Name, con.Name))
	}
	return ids(created...)
}

func (c *CreateTable) Drops() []stableid.ID { return nil }

func (c *CreateTable) Requires() []stableid.ID {
	t := &c.Table
	reqs := []stableid.ID{schemaID(t.Schema), roleID(t.Owner)}
	reqs = append(reqs, t.Depends...)
	for _, col := range t.Columns {
		reqs = append(reqs, col.Depends...)
	}
	for i := range t.Constraints {
		reqs = append(reqs, constraintRequires(t.Schema, t.Name, &t.Constraints[i], true)...)
	}
	self := t.ID()
	out := make([]stableid.ID, 0, len(reqs))
	for _, id := range ids(reqs...) {
		// columns of the table itself come into existence with it
		if id == self || strings.HasPrefix(string(id), stableid.KindColumn+":"+t.Schema+"."+t.Name+".") {
			continue
		}
		out = append(out, id)
	}
	return out
}

func (c *CreateTable) SQL() string {
	t := &c.Table
	var lines []string
	for _, col := range t.Columns {
		lines = append(lines, "    "+columnDefinition(&col))
	}
	for i := range t.Constraints {
		con := &t.Constraints[i]
		lines = append(lines, fmt.Sprintf("    CONSTRAINT %s %s", quoteIdent(con.Name), constraintDefinition(t.Schema, con)))
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("CREATE TABLE %s (\n", qualify(t.Schema, t.Name)))
	sb.WriteString(strings.Join(lines, ",\n"))
	sb.WriteString("\n);")
	if t.Owner != "" {
		sb.WriteString(fmt.Sprintf("\nALTER TABLE %s OWNER TO %s;", qualify(t.Schema, t.Name), quoteIdent(t.Owner)))
	}
	return sb.String()
}

// DropTable drops a table together with its columns and constraints
type DropTable struct {
	Table Table `json:"table" yaml:"table"`
}

func (c *DropTable) Operation() Operation    { return OperationDrop }
func (c *DropTable) ObjectType() ObjectType  { return ObjectTypeTable }
func (c *DropTable) Scope() Scope            { return ScopeObject }
func (c *DropTable) Target() stableid.ID     { return c.Table.ID() }
func (c *DropTable) Creates() []stableid.ID  { return nil }
func (c *DropTable) Requires() []stableid.ID { return nil }
func (c *DropTable) sealed()                 {}

func (c *DropTable) Drops() []stableid.ID {
	t := &c.Table
	dropped := []stableid.ID{t.ID()}
	for _, col := range t.Columns {
		dropped = append(dropped, stableid.Column(t.Schema, t.Name, col.Name))
	}
	for _, con := range t.Constraints {
		dropped = append(dropped, stableid.Constraint(t.Schema, t.Name, con.Name))
	}
	return ids(dropped...)
}

func (c *DropTable) SQL() string {
	return fmt.Sprintf("DROP TABLE %s;", qualify(c.Table.Schema, c.Table.Name))
}

// AlterTableAddColumn adds a column
type AlterTableAddColumn struct {
	Schema string `json:"schema" yaml:"schema"`
	Table  string `json:"table" yaml:"table"`
	Column Column `json:"column" yaml:"column"`
}

func (c *AlterTableAddColumn) Operation() Operation   { return OperationAlter }
func (c *AlterTableAddColumn) ObjectType() ObjectType { return ObjectTypeTable }
func (c *AlterTableAddColumn) Scope() Scope           { return ScopeObject }
func (c *AlterTableAddColumn) Target() stableid.ID    { return stableid.Table(c.Schema, c.Table) }
func (c *AlterTableAddColumn) Creates() []stableid.ID {
	return ids(stableid.Column(c.Schema, c.Table, c.Column.Name))
}
func (c *AlterTableAddColumn) Drops() []stableid.ID { return nil }
func (c *AlterTableAddColumn) Requires() []stableid.ID {
	return ids(append([]stableid.ID{c.Target()}, c.Column.Depends...)...)
}
func (c *AlterTableAddColumn) sealed() {}

func (c *AlterTableAddColumn) SQL() string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s;", qualify(c.Schema, c.Table), columnDefinition(&c.Column))
}

// AlterTableDropColumn drops a column
type AlterTableDropColumn struct {
	Schema string `json:"schema" yaml:"schema"`
	Table  string `json:"table" yaml:"table"`
	Column string `json:"column" yaml:"column"`
}

func (c *AlterTableDropColumn) Operation() Operation   { return OperationAlter }
func (c *AlterTableDropColumn) ObjectType() ObjectType { return ObjectTypeTable }
func (c *AlterTableDropColumn) Scope() Scope           { return ScopeObject }
func (c *AlterTableDropColumn) Target() stableid.ID    { return stableid.Table(c.Schema, c.Table) }
func (c *AlterTableDropColumn) Creates() []stableid.ID { return nil }
func (c *AlterTableDropColumn) Drops() []stableid.ID {
	return ids(stableid.Column(c.Schema, c.Table, c.Column))
}
func (c *AlterTableDropColumn) Requires() []stableid.ID { return ids(c.Target()) }
func (c *AlterTableDropColumn) sealed()                 {}

func (c *AlterTableDropColumn) SQL() string {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s;", qualify(c.Schema, c.Table), quoteIdent(c.Column))
}

// AlterTableAlterColumnType changes the data type of a column
type AlterTableAlterColumnType struct {
	Schema   string        `json:"schema" yaml:"schema"`
	Table    string        `json:"table" yaml:"table"`
	Column   string        `json:"column" yaml:"column"`
	DataType string        `json:"data_type" yaml:"data_type"`
	Using    string        `json:"using,omitempty" yaml:"using,omitempty"`
	Depends  []stableid.ID `json:"depends,omitempty" yaml:"depends,omitempty"`
}

func (c *AlterTableAlterColumnType) Operation() Operation   { return OperationAlter }
func (c *AlterTableAlterColumnType) ObjectType() ObjectType { return ObjectTypeTable }
func (c *AlterTableAlterColumnType) Scope() Scope           { return ScopeObject }
func (c *AlterTableAlterColumnType) Target() stableid.ID    { return stableid.Table(c.Schema, c.Table) }
func (c *AlterTableAlterColumnType) Creates() []stableid.ID { return nil }
func (c *AlterTableAlterColumnType) Drops() []stableid.ID   { return nil }
func (c *AlterTableAlterColumnType) Requires() []stableid.ID {
	reqs := []stableid.ID{c.Target(), stableid.Column(c.Schema, c.Table, c.Column)}
	return ids(append(reqs, c.Depends...)...)
}
func (c *AlterTableAlterColumnType) sealed() {}

func (c *AlterTableAlterColumnType) SQL() string {
	sql := fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s", qualify(c.Schema, c.Table), quoteIdent(c.Column), c.DataType)
	if c.Using != "" {
		sql += " USING " + c.Using
	}
	return sql + ";"
}

// AlterTableAlterColumnSetDefault sets a column default
type AlterTableAlterColumnSetDefault struct {
	Schema  string        `json:"schema" yaml:"schema"`
	Table   string        `json:"table" yaml:"table"`
	Column  string        `json:"column" yaml:"column"`
	Default string        `json:"default" yaml:"default"`
	Depends []stableid.ID `json:"depends,omitempty" yaml:"depends,omitempty"`
}

func (c *AlterTableAlterColumnSetDefault) Operation() Operation   { return OperationAlter }
func (c *AlterTableAlterColumnSetDefault) ObjectType() ObjectType { return ObjectTypeTable }
func (c *AlterTableAlterColumnSetDefault) Scope() Scope           { return ScopeObject }
func (c *AlterTableAlterColumnSetDefault) Target() stableid.ID {
	return stableid.Table(c.Schema, c.Table)
}
func (c *AlterTableAlterColumnSetDefault) Creates() []stableid.ID { return nil }
func (c *AlterTableAlterColumnSetDefault) Drops() []stableid.ID   { return nil }
func (c *AlterTableAlterColumnSetDefault) Requires() []stableid.ID {
	reqs := []stableid.ID{c.Target(), stableid.Column(c.Schema, c.Table, c.Column)}
	return ids(append(reqs, c.Depends...)...)
}
func (c *AlterTableAlterColumnSetDefault) sealed() {}

func (c *AlterTableAlterColumnSetDefault) SQL() string {
	return fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s;", qualify(c.Schema, c.Table), quoteIdent(c.Column), c.Default)
}

// AlterTableAlterColumnDropDefault removes a column default
type AlterTableAlterColumnDropDefault struct {
	Schema string `json:"schema" yaml:"schema"`
	Table  string `json:"table" yaml:"table"`
	Column string `json:"column" yaml:"column"`
}

func (c *AlterTableAlterColumnDropDefault) Operation() Operation   { return OperationAlter }
func (c *AlterTableAlterColumnDropDefault) ObjectType() ObjectType { return ObjectTypeTable }
func (c *AlterTableAlterColumnDropDefault) Scope() Scope           { return ScopeObject }
func (c *AlterTableAlterColumnDropDefault) Target() stableid.ID {
	return stableid.Table(c.Schema, c.Table)
}
func (c *AlterTableAlterColumnDropDefault) Creates() []stableid.ID { return nil }
func (c *AlterTableAlterColumnDropDefault) Drops() []stableid.ID   { return nil }
func (c *AlterTableAlterColumnDropDefault) Requires() []stableid.ID {
	return ids(c.Target(), stableid.Column(c.Schema, c.Table, c.Column))
}
func (c *AlterTableAlterColumnDropDefault) sealed() {}

func (c *AlterTableAlterColumnDropDefault) SQL() string {
	return fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT;", qualify(c.Schema, c.Table), quoteIdent(c.Column))
}

// AlterTableAddConstraint adds a constraint to an existing table
type AlterTableAddConstraint struct {
	Schema     string     `json:"schema" yaml:"schema"`
	Table      string     `json:"table" yaml:"table"`
	Constraint Constraint `json:"constraint" yaml:"constraint"`
	NotValid   bool       `json:"not_valid,omitempty" yaml:"not_valid,omitempty"`
}

func (c *AlterTableAddConstraint) Operation() Operation   { return OperationAlter }
func (c *AlterTableAddConstraint) ObjectType() ObjectType { return ObjectTypeTable }
func (c *AlterTableAddConstraint) Scope() Scope           { return ScopeObject }
func (c *AlterTableAddConstraint) Target() stableid.ID    { return stableid.Table(c.Schema, c.Table) }
func (c *AlterTableAddConstraint) Creates() []stableid.ID {
	return ids(stableid.Constraint(c.Schema, c.Table, c.Constraint.Name))
}
func (c *AlterTableAddConstraint) Drops() []stableid.ID { return nil }
func (c *AlterTableAddConstraint) Requires() []stableid.ID {
	reqs := []stableid.ID{c.Target()}
	reqs = append(reqs, constraintRequires(c.Schema, c.Table, &c.Constraint, false)...)
	return ids(reqs...)
}
func (c *AlterTableAddConstraint) sealed() {}

func (c *AlterTableAddConstraint) SQL() string {
	sql := fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s %s", qualify(c.Schema, c.Table), quoteIdent(c.Constraint.Name), constraintDefinition(c.Schema, &c.Constraint))
	if c.NotValid && (c.Constraint.Type == ConstraintTypeForeignKey || c.Constraint.Type == ConstraintTypeCheck) {
		sql += " NOT VALID"
	}
	return sql + ";"
}

// AlterTableDropConstraint drops a constraint
type AlterTableDropConstraint struct {
	Schema     string `json:"schema" yaml:"schema"`
	Table      string `json:"table" yaml:"table"`
	Constraint string `json:"constraint" yaml:"constraint"`
}

func (c *AlterTableDropConstraint) Operation() Operation   { return OperationAlter }
func (c *AlterTableDropConstraint) ObjectType() ObjectType { return ObjectTypeTable }
func (c *AlterTableDropConstraint) Scope() Scope           { return ScopeObject }
func (c *AlterTableDropConstraint) Target() stableid.ID    { return stableid.Table(c.Schema, c.Table) }
func (c *AlterTableDropConstraint) Creates() []stableid.ID { return nil }
func (c *AlterTableDropConstraint) Drops() []stableid.ID {
	return ids(stableid.Constraint(c.Schema, c.Table, c.Constraint))
}
func (c *AlterTableDropConstraint) Requires() []stableid.ID { return ids(c.Target()) }
func (c *AlterTableDropConstraint) sealed()                 {}

func (c *AlterTableDropConstraint) SQL() string {
	return fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s;", qualify(c.Schema, c.Table), quoteIdent(c.Constraint))
}

// AlterTableChangeOwner changes the owner of a table
type AlterTableChangeOwner struct {
	Schema string `json:"schema" yaml:"schema"`
	Table  string `json:"table" yaml:"table"`
	Owner  string `json:"owner" yaml:"owner"`
}

func (c *AlterTableChangeOwner) Operation() Operation   { return OperationAlter }
func (c *AlterTableChangeOwner) ObjectType() ObjectType { return ObjectTypeTable }
func (c *AlterTableChangeOwner) Scope() Scope           { return ScopeObject }
func (c *AlterTableChangeOwner) Target() stableid.ID    { return stableid.Table(c.Schema, c.Table) }
func (c *AlterTableChangeOwner) Creates() []stableid.ID { return nil }
func (c *AlterTableChangeOwner) Drops() []stableid.ID   { return nil }
func (c *AlterTableChangeOwner) Requires() []stableid.ID {
	return ids(c.Target(), roleID(c.Owner))
}
func (c *AlterTableChangeOwner) sealed() {}

func (c *AlterTableChangeOwner) SQL() string {
	return fmt.Sprintf("ALTER TABLE %s OWNER TO %s;", qualify(c.Schema, c.Table), quoteIdent(c.Owner))
}

// columnDefinition renders "name type [DEFAULT ...] [NOT NULL]"
func columnDefinition(col *Column) string {
	parts := []string{quoteIdent(col.Name), col.DataType}
	if col.Default != "" {
		parts = append(parts, "DEFAULT "+col.Default)
	}
	if col.NotNull {
		parts = append(parts, "NOT NULL")
	}
	return strings.Join(parts, " ")
}

// constraintDefinition renders the body of a constraint after its name
func constraintDefinition(tableSchema string, con *Constraint) string {
	switch con.Type {
	case ConstraintTypePrimaryKey, ConstraintTypeUnique:
		return fmt.Sprintf("%s (%s)", con.Type, quoteIdents(con.Columns))
	case ConstraintTypeForeignKey:
		refSchema := con.ReferencedSchema
		if refSchema == "" {
			refSchema = tableSchema
		}
		sql := fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s)",
			quoteIdents(con.Columns), qualify(refSchema, con.ReferencedTable), quoteIdents(con.ReferencedColumns))
		if con.OnDelete != "" {
			sql += " ON DELETE " + con.OnDelete
		}
		return sql
	case ConstraintTypeCheck:
		clause := con.CheckClause
		if !strings.HasPrefix(clause, "(") {
			clause = "(" + clause + ")"
		}
		return "CHECK " + clause
	}
	return string(con.Type)
}

// constraintRequires lists the objects a constraint needs. Inline constraints of a new
// table do not require the table's own columns.
func constraintRequires(schema, table string, con *Constraint, inline bool) []stableid.ID {
	var reqs []stableid.ID
	if !inline {
		for _, col := range con.Columns {
			reqs = append(reqs, stableid.Column(schema, table, col))
		}
	}
	if con.Type == ConstraintTypeForeignKey {
		refSchema := con.ReferencedSchema
		if refSchema == "" {
			refSchema = schema
		}
		if inline && refSchema == schema && con.ReferencedTable == table {
			return reqs
		}
		reqs = append(reqs, stableid.Table(refSchema, con.ReferencedTable))
		for _, col := range con.ReferencedColumns {
			reqs = append(reqs, stableid.Column(refSchema, con.ReferencedTable, col))
		}
	}
	return reqs
}
