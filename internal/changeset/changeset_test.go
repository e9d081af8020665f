package changeset

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pgschema/pgdelta/internal/change"
	"github.com/pgschema/pgdelta/internal/stableid"
)

const sampleYAML = `
changes:
  - kind: create_sequence
    sequence:
      schema: public
      name: users_id_seq
      increment: 1
      max_value: 9223372036854775807
  - kind: create_table
    table:
      schema: public
      name: users
      columns:
        - name: id
          data_type: bigint
          not_null: true
          default: nextval('public.users_id_seq'::regclass)
          depends:
            - sequence:public.users_id_seq
  - kind: alter_sequence_owned_by
    sequence:
      schema: public
      name: users_id_seq
    owner:
      schema: public
      table: users
      column: id
`

func sampleChanges() []change.Change {
	maxValue := int64(9223372036854775807)
	return []change.Change{
		&change.CreateSequence{Sequence: change.Sequence{Schema: "public", Name: "users_id_seq", Increment: 1, MaxValue: &maxValue}},
		&change.CreateTable{Table: change.Table{
			Schema: "public",
			Name:   "users",
			Columns: []change.Column{{
				Name:     "id",
				DataType: "bigint",
				NotNull:  true,
				Default:  "nextval('public.users_id_seq'::regclass)",
				Depends:  []stableid.ID{"sequence:public.users_id_seq"},
			}},
		}},
		&change.AlterSequenceSetOwnedBy{
			Sequence: change.Sequence{Schema: "public", Name: "users_id_seq"},
			Owner:    &change.ColumnRef{Schema: "public", Table: "users", Column: "id"},
		},
	}
}

func TestDecodeYAML(t *testing.T) {
	got, err := Decode(strings.NewReader(sampleYAML), FormatYAML)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if diff := cmp.Diff(sampleChanges(), got); diff != "" {
		t.Errorf("changes mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeDecode(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, sampleChanges(), format); err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			got, err := Decode(&buf, format)
			if err != nil {
				t.Fatalf("Decode() error = %v\n%s", err, buf.String())
			}
			if diff := cmp.Diff(sampleChanges(), got); diff != "" {
				t.Errorf("changes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeUnknownKind(t *testing.T) {
	doc := `{"changes": [{"kind": "create_schema", "name": "app"}, {"kind": "create_galaxy"}]}`
	_, err := Decode(strings.NewReader(doc), FormatJSON)
	if !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	if !strings.Contains(err.Error(), "change 1") {
		t.Errorf("expected the entry index in %q", err)
	}
}

func TestEveryKindRoundTrips(t *testing.T) {
	for _, kind := range Kinds() {
		c, err := newChange(kind)
		if err != nil {
			t.Fatalf("newChange(%q) error = %v", kind, err)
		}
		got, ok := KindOf(c)
		if !ok || got != kind {
			t.Errorf("KindOf(%T) = %q, %v; want %q", c, got, ok, kind)
		}
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "changes.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 changes, got %d", len(got))
	}
}

func TestLoadDropsRepeatedChanges(t *testing.T) {
	repeated := sampleYAML + `  - kind: create_sequence
    sequence:
      schema: public
      name: users_id_seq
      increment: 1
      max_value: 9223372036854775807
`
	path := filepath.Join(t.TempDir(), "changes.yaml")
	if err := os.WriteFile(path, []byte(repeated), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(sampleChanges(), got); diff != "" {
		t.Errorf("changes mismatch (-want +got):\n%s", diff)
	}
}
