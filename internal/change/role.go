package change

import (
	"fmt"
	"strings"

	"github.com/pgschema/pgdelta/internal/stableid"
)

// CreateRole creates a role
type CreateRole struct {
	Name    string   `json:"name" yaml:"name"`
	Login   bool     `json:"login,omitempty" yaml:"login,omitempty"`
	Inherit bool     `json:"inherit,omitempty" yaml:"inherit,omitempty"`
	InRoles []string `json:"in_roles,omitempty" yaml:"in_roles,omitempty"`
}

func (c *CreateRole) Operation() Operation   { return OperationCreate }
func (c *CreateRole) ObjectType() ObjectType { return ObjectTypeRole }
func (c *CreateRole) Scope() Scope           { return ScopeObject }
func (c *CreateRole) Target() stableid.ID    { return stableid.Role(c.Name) }
func (c *CreateRole) Creates() []stableid.ID { return ids(c.Target()) }
func (c *CreateRole) Drops() []stableid.ID   { return nil }
func (c *CreateRole) Requires() []stableid.ID {
	var reqs []stableid.ID
	for _, r := range c.InRoles {
		reqs = append(reqs, roleID(r))
	}
	return ids(reqs...)
}
func (c *CreateRole) sealed() {}

func (c *CreateRole) SQL() string {
	var opts []string
	if c.Login {
		opts = append(opts, "LOGIN")
	} else {
		opts = append(opts, "NOLOGIN")
	}
	if !c.Inherit {
		opts = append(opts, "NOINHERIT")
	}
	if len(c.InRoles) > 0 {
		opts = append(opts, "IN ROLE "+quoteIdents(c.InRoles))
	}
	return fmt.Sprintf("CREATE ROLE %s WITH %s;", quoteIdent(c.Name), strings.Join(opts, " "))
}

// DropRole drops a role
type DropRole struct {
	Name string `json:"name" yaml:"name"`
}

func (c *DropRole) Operation() Operation    { return OperationDrop }
func (c *DropRole) ObjectType() ObjectType  { return ObjectTypeRole }
func (c *DropRole) Scope() Scope            { return ScopeObject }
func (c *DropRole) Target() stableid.ID     { return stableid.Role(c.Name) }
func (c *DropRole) Creates() []stableid.ID  { return nil }
func (c *DropRole) Drops() []stableid.ID    { return ids(c.Target()) }
func (c *DropRole) Requires() []stableid.ID { return nil }
func (c *DropRole) sealed()                 {}

func (c *DropRole) SQL() string {
	return fmt.Sprintf("DROP ROLE %s;", quoteIdent(c.Name))
}
