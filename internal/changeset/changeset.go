// Package changeset reads and writes changeset documents: a list of changes, each
// tagged with a kind that selects the change variant, e.g.
//
//	changes:
//	  - kind: create_table
//	    table:
//	      schema: public
//	      name: users
package changeset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pgschema/pgdelta/internal/change"
)

// ErrUnknownKind is returned for an entry whose kind has no change variant
var ErrUnknownKind = errors.New("unknown change kind")

var registry = map[string]func() change.Change{
	"create_schema":           func() change.Change { return &change.CreateSchema{} },
	"alter_schema_owner":      func() change.Change { return &change.AlterSchemaOwner{} },
	"drop_schema":             func() change.Change { return &change.DropSchema{} },
	"create_role":             func() change.Change { return &change.CreateRole{} },
	"drop_role":               func() change.Change { return &change.DropRole{} },
	"create_extension":        func() change.Change { return &change.CreateExtension{} },
	"drop_extension":          func() change.Change { return &change.DropExtension{} },
	"create_sequence":         func() change.Change { return &change.CreateSequence{} },
	"alter_sequence_owned_by": func() change.Change { return &change.AlterSequenceSetOwnedBy{} },
	"alter_sequence_options":  func() change.Change { return &change.AlterSequenceSetOptions{} },
	"drop_sequence":           func() change.Change { return &change.DropSequence{} },
	"create_table":            func() change.Change { return &change.CreateTable{} },
	"drop_table":              func() change.Change { return &change.DropTable{} },
	"add_column":              func() change.Change { return &change.AlterTableAddColumn{} },
	"drop_column":             func() change.Change { return &change.AlterTableDropColumn{} },
	"alter_column_type":       func() change.Change { return &change.AlterTableAlterColumnType{} },
	"set_column_default":      func() change.Change { return &change.AlterTableAlterColumnSetDefault{} },
	"drop_column_default":     func() change.Change { return &change.AlterTableAlterColumnDropDefault{} },
	"add_constraint":          func() change.Change { return &change.AlterTableAddConstraint{} },
	"drop_constraint":         func() change.Change { return &change.AlterTableDropConstraint{} },
	"alter_table_owner":       func() change.Change { return &change.AlterTableChangeOwner{} },
	"create_view":             func() change.Change { return &change.CreateView{} },
	"replace_view":            func() change.Change { return &change.ReplaceView{} },
	"drop_view":               func() change.Change { return &change.DropView{} },
	"create_index":            func() change.Change { return &change.CreateIndex{} },
	"drop_index":              func() change.Change { return &change.DropIndex{} },
	"create_routine":          func() change.Change { return &change.CreateRoutine{} },
	"replace_routine":         func() change.Change { return &change.ReplaceRoutine{} },
	"drop_routine":            func() change.Change { return &change.DropRoutine{} },
	"create_trigger":          func() change.Change { return &change.CreateTrigger{} },
	"drop_trigger":            func() change.Change { return &change.DropTrigger{} },
	"create_type":             func() change.Change { return &change.CreateType{} },
	"alter_enum_add_value":    func() change.Change { return &change.AlterEnumAddValue{} },
	"drop_type":               func() change.Change { return &change.DropType{} },
	"grant":                   func() change.Change { return &change.GrantPrivileges{} },
	"revoke":                  func() change.Change { return &change.RevokePrivileges{} },
}

var kindsByType = func() map[reflect.Type]string {
	m := make(map[reflect.Type]string, len(registry))
	for kind, factory := range registry {
		m[reflect.TypeOf(factory())] = kind
	}
	return m
}()

// Kinds returns every registered kind, sorted
func Kinds() []string {
	kinds := make([]string, 0, len(registry))
	for kind := range registry {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// KindOf returns the document kind of a change
func KindOf(c change.Change) (string, bool) {
	kind, ok := kindsByType[reflect.TypeOf(c)]
	return kind, ok
}

func newChange(kind string) (change.Change, error) {
	factory, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return factory(), nil
}

// Format is the encoding of a changeset file
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

type kindHeader struct {
	Kind string `json:"kind" yaml:"kind"`
}

// Decode reads a changeset document
func Decode(r io.Reader, format Format) ([]change.Change, error) {
	switch format {
	case FormatYAML:
		return decodeYAML(r)
	default:
		return decodeJSON(r)
	}
}

func decodeYAML(r io.Reader) ([]change.Change, error) {
	var doc struct {
		Changes []yaml.Node `yaml:"changes"`
	}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode changeset YAML: %w", err)
	}

	changes := make([]change.Change, 0, len(doc.Changes))
	for i := range doc.Changes {
		node := &doc.Changes[i]
		var header kindHeader
		if err := node.Decode(&header); err != nil {
			return nil, fmt.Errorf("change %d (line %d): %w", i, node.Line, err)
		}
		c, err := newChange(header.Kind)
		if err != nil {
			return nil, fmt.Errorf("change %d (line %d): %w", i, node.Line, err)
		}
		if err := node.Decode(c); err != nil {
			return nil, fmt.Errorf("change %d (line %d) %s: %w", i, node.Line, header.Kind, err)
		}
		changes = append(changes, c)
	}
	return changes, nil
}

func decodeJSON(r io.Reader) ([]change.Change, error) {
	var doc struct {
		Changes []json.RawMessage `json:"changes"`
	}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode changeset JSON: %w", err)
	}

	changes := make([]change.Change, 0, len(doc.Changes))
	for i, raw := range doc.Changes {
		var header kindHeader
		if err := json.Unmarshal(raw, &header); err != nil {
			return nil, fmt.Errorf("change %d: %w", i, err)
		}
		c, err := newChange(header.Kind)
		if err != nil {
			return nil, fmt.Errorf("change %d: %w", i, err)
		}
		if err := json.Unmarshal(raw, c); err != nil {
			return nil, fmt.Errorf("change %d %s: %w", i, header.Kind, err)
		}
		changes = append(changes, c)
	}
	return changes, nil
}

// Encode writes changes as a changeset document
func Encode(w io.Writer, changes []change.Change, format Format) error {
	entries := make([]map[string]any, 0, len(changes))
	for i, c := range changes {
		kind, ok := KindOf(c)
		if !ok {
			return fmt.Errorf("change %d: %w: %T", i, ErrUnknownKind, c)
		}
		entry, err := toMap(c)
		if err != nil {
			return fmt.Errorf("change %d: %w", i, err)
		}
		entry["kind"] = kind
		entries = append(entries, entry)
	}
	doc := map[string]any{"changes": entries}

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode changeset YAML: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode changeset JSON: %w", err)
		}
		return nil
	}
}

// toMap flattens a change through its JSON form so the kind can sit beside its fields
func toMap(c change.Change) (map[string]any, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

// Load reads a changeset file. A change repeated verbatim is kept once, at its
// first position.
func Load(path string) ([]change.Change, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open changeset file: %w", err)
	}
	defer f.Close()

	changes, err := Decode(f, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return change.Dedupe(changes), nil
}
