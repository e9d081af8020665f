package catalog

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pgschema/pgdelta/internal/stableid"
)

func sampleCatalog() *Catalog {
	c := New("main")
	c.ServerVersion = "17.2"
	c.Add(stableid.View("public", "v"), stableid.Table("public", "t"), DepTypeNormal)
	c.Add(stableid.Sequence("public", "s"), stableid.Column("public", "t", "id"), DepTypeAuto)
	return c
}

func TestNormalize(t *testing.T) {
	c := New("main")
	c.Add("view:public.v", "table:public.t", DepTypeNormal)
	c.Add("index:public.i", "table:public.t", DepTypeAuto)
	c.Add("view:public.v", "table:public.t", DepTypeNormal)
	c.Add("table:public.t", "table:public.t", DepTypeNormal)
	c.Normalize()

	want := []Dependency{
		{Dependent: "index:public.i", Referenced: "table:public.t", Type: DepTypeAuto},
		{Dependent: "view:public.v", Referenced: "table:public.t", Type: DepTypeNormal},
	}
	if diff := cmp.Diff(want, c.Dependencies); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeDecode(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := sampleCatalog().Encode(&buf, format); err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			got, err := Decode(&buf, format)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if diff := cmp.Diff(sampleCatalog(), got); diff != "" {
				t.Errorf("catalog mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeRejectsInvalidType(t *testing.T) {
	doc := `
name: main
dependencies:
  - dependent: view:public.v
    referenced: table:public.t
    type: pin
`
	_, err := Decode(strings.NewReader(doc), FormatYAML)
	if err == nil || !strings.Contains(err.Error(), `unknown type "pin"`) {
		t.Fatalf("expected unknown type error, got %v", err)
	}
}

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "branch.yml")

	c := sampleCatalog()
	c.Name = ""
	if err := c.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Name != "branch" {
		t.Errorf("expected name from file name, got %q", loaded.Name)
	}
	if diff := cmp.Diff(c.Dependencies, loaded.Dependencies); diff != "" {
		t.Errorf("dependencies mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"main.yaml": FormatYAML,
		"main.YML":  FormatYAML,
		"main.json": FormatJSON,
		"main":      FormatJSON,
	}
	for path, want := range tests {
		if got := FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q) = %s, want %s", path, got, want)
		}
	}
}

func TestDepTypeFromCode(t *testing.T) {
	for code, want := range map[string]DepType{"n": DepTypeNormal, "a": DepTypeAuto, "i": DepTypeInternal} {
		got, ok := depTypeFromCode(code)
		if !ok || got != want {
			t.Errorf("depTypeFromCode(%q) = %s, %v", code, got, ok)
		}
	}
	if _, ok := depTypeFromCode("e"); ok {
		t.Error("extension dependencies must not map to a type")
	}
}
