package change

import (
	"fmt"
	"strings"

	"github.com/pgschema/pgdelta/internal/stableid"
)

// PrivilegeObject names the object privileges are granted on
type PrivilegeObject struct {
	Type     ObjectType `json:"type" yaml:"type"`
	Schema   string     `json:"schema,omitempty" yaml:"schema,omitempty"`
	Name     string     `json:"name" yaml:"name"`
	ArgTypes []string   `json:"arg_types,omitempty" yaml:"arg_types,omitempty"`
}

// ID returns the stable identifier of the object
func (o *PrivilegeObject) ID() stableid.ID {
	switch o.Type {
	case ObjectTypeSchema:
		return stableid.Schema(o.Name)
	case ObjectTypeSequence:
		return stableid.Sequence(o.Schema, o.Name)
	case ObjectTypeView:
		return stableid.View(o.Schema, o.Name)
	case ObjectTypeMaterializedView:
		return stableid.MaterializedView(o.Schema, o.Name)
	case ObjectTypeFunction, ObjectTypeProcedure:
		return stableid.Routine(o.Schema, o.Name, o.ArgTypes)
	case ObjectTypeType:
		return stableid.Type(o.Schema, o.Name)
	}
	return stableid.Table(o.Schema, o.Name)
}

// sql renders the object clause of GRANT and REVOKE, e.g. "TABLE public.users"
func (o *PrivilegeObject) sql() string {
	switch o.Type {
	case ObjectTypeSchema:
		return "SCHEMA " + quoteIdent(o.Name)
	case ObjectTypeSequence:
		return "SEQUENCE " + qualify(o.Schema, o.Name)
	case ObjectTypeFunction, ObjectTypeProcedure:
		return fmt.Sprintf("%s %s(%s)", strings.ToUpper(string(o.Type)), qualify(o.Schema, o.Name), strings.Join(o.ArgTypes, ", "))
	case ObjectTypeType:
		return "TYPE " + qualify(o.Schema, o.Name)
	}
	// views and materialized views are granted with TABLE
	return "TABLE " + qualify(o.Schema, o.Name)
}

func grantee(name string) string {
	if strings.EqualFold(name, "PUBLIC") {
		return "PUBLIC"
	}
	return quoteIdent(name)
}

// GrantPrivileges grants privileges on an object to a role
type GrantPrivileges struct {
	Object          PrivilegeObject `json:"object" yaml:"object"`
	Grantee         string          `json:"grantee" yaml:"grantee"`
	Privileges      []string        `json:"privileges" yaml:"privileges"`
	WithGrantOption bool            `json:"with_grant_option,omitempty" yaml:"with_grant_option,omitempty"`
}

func (c *GrantPrivileges) Operation() Operation   { return OperationCreate }
func (c *GrantPrivileges) ObjectType() ObjectType { return c.Object.Type }
func (c *GrantPrivileges) Scope() Scope           { return ScopePrivilege }
func (c *GrantPrivileges) Target() stableid.ID    { return c.Object.ID() }
func (c *GrantPrivileges) Creates() []stableid.ID {
	return ids(stableid.ACL(c.Object.ID(), c.Grantee))
}
func (c *GrantPrivileges) Drops() []stableid.ID { return nil }
func (c *GrantPrivileges) Requires() []stableid.ID {
	return ids(c.Object.ID(), roleID(c.Grantee))
}
func (c *GrantPrivileges) sealed() {}

func (c *GrantPrivileges) SQL() string {
	sql := fmt.Sprintf("GRANT %s ON %s TO %s", strings.Join(c.Privileges, ", "), c.Object.sql(), grantee(c.Grantee))
	if c.WithGrantOption {
		sql += " WITH GRANT OPTION"
	}
	return sql + ";"
}

// RevokePrivileges revokes privileges on an object from a role
type RevokePrivileges struct {
	Object     PrivilegeObject `json:"object" yaml:"object"`
	Grantee    string          `json:"grantee" yaml:"grantee"`
	Privileges []string        `json:"privileges" yaml:"privileges"`
}

func (c *RevokePrivileges) Operation() Operation   { return OperationDrop }
func (c *RevokePrivileges) ObjectType() ObjectType { return c.Object.Type }
func (c *RevokePrivileges) Scope() Scope           { return ScopePrivilege }
func (c *RevokePrivileges) Target() stableid.ID    { return c.Object.ID() }
func (c *RevokePrivileges) Creates() []stableid.ID { return nil }
func (c *RevokePrivileges) Drops() []stableid.ID {
	return ids(stableid.ACL(c.Object.ID(), c.Grantee))
}
func (c *RevokePrivileges) Requires() []stableid.ID {
	return ids(c.Object.ID(), roleID(c.Grantee))
}
func (c *RevokePrivileges) sealed() {}

func (c *RevokePrivileges) SQL() string {
	return fmt.Sprintf("REVOKE %s ON %s FROM %s;", strings.Join(c.Privileges, ", "), c.Object.sql(), grantee(c.Grantee))
}
