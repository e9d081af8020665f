// Package catalog holds dependency snapshots of a PostgreSQL database.
//
// A Catalog records which object depends on which, using stable identifiers on both
// ends. Snapshots are read from a live database by an Inspector, or loaded from
// YAML/JSON files written by a previous run.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pgschema/pgdelta/internal/stableid"
)

// DepType mirrors pg_depend.deptype for the kinds of dependency that gate ordering
type DepType string

const (
	DepTypeNormal   DepType = "normal"
	DepTypeAuto     DepType = "auto"
	DepTypeInternal DepType = "internal"
)

// Dependency says Dependent needs Referenced to exist
type Dependency struct {
	Dependent  stableid.ID `json:"dependent" yaml:"dependent"`
	Referenced stableid.ID `json:"referenced" yaml:"referenced"`
	Type       DepType     `json:"type" yaml:"type"`
}

// Catalog is a dependency snapshot of one database
type Catalog struct {
	Name          string       `json:"name" yaml:"name"`
	ServerVersion string       `json:"server_version,omitempty" yaml:"server_version,omitempty"`
	Dependencies  []Dependency `json:"dependencies" yaml:"dependencies"`
}

// New creates an empty catalog
func New(name string) *Catalog {
	return &Catalog{Name: name}
}

// Add appends a dependency
func (c *Catalog) Add(dependent, referenced stableid.ID, depType DepType) {
	c.Dependencies = append(c.Dependencies, Dependency{
		Dependent:  dependent,
		Referenced: referenced,
		Type:       depType,
	})
}

// Normalize sorts dependencies and removes duplicates and self references
func (c *Catalog) Normalize() {
	sort.Slice(c.Dependencies, func(i, j int) bool {
		a, b := c.Dependencies[i], c.Dependencies[j]
		if a.Dependent != b.Dependent {
			return a.Dependent < b.Dependent
		}
		if a.Referenced != b.Referenced {
			return a.Referenced < b.Referenced
		}
		return a.Type < b.Type
	})
	out := c.Dependencies[:0]
	for i, dep := range c.Dependencies {
		if dep.Dependent == dep.Referenced {
			continue
		}
		if i > 0 && dep == c.Dependencies[i-1] {
			continue
		}
		out = append(out, dep)
	}
	c.Dependencies = out
}

// Validate checks that every dependency names both ends and a known type
func (c *Catalog) Validate() error {
	for i, dep := range c.Dependencies {
		if dep.Dependent.IsZero() || dep.Referenced.IsZero() {
			return fmt.Errorf("catalog %q: dependency %d has an empty endpoint", c.Name, i)
		}
		switch dep.Type {
		case DepTypeNormal, DepTypeAuto, DepTypeInternal:
		default:
			return fmt.Errorf("catalog %q: dependency %d (%s -> %s) has unknown type %q", c.Name, i, dep.Dependent, dep.Referenced, dep.Type)
		}
	}
	return nil
}

// Format is the encoding of a snapshot file
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks YAML for .yaml/.yml files and JSON otherwise
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Decode reads a catalog snapshot
func Decode(r io.Reader, format Format) (*Catalog, error) {
	var c Catalog
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&c); err != nil && err != io.EOF {
			return nil, fmt.Errorf("failed to decode catalog YAML: %w", err)
		}
	default:
		if err := json.NewDecoder(r).Decode(&c); err != nil {
			return nil, fmt.Errorf("failed to decode catalog JSON: %w", err)
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Encode writes a catalog snapshot
func (c *Catalog) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return fmt.Errorf("failed to encode catalog YAML: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(c); err != nil {
			return fmt.Errorf("failed to encode catalog JSON: %w", err)
		}
		return nil
	}
}

// Load reads a catalog snapshot file
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()

	c, err := Decode(f, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if c.Name == "" {
		c.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return c, nil
}

// Save writes a catalog snapshot file
func (c *Catalog) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create catalog file: %w", err)
	}
	defer f.Close()
	return c.Encode(f, FormatFromPath(path))
}
