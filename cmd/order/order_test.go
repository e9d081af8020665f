package order

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/pgschema/pgdelta/internal/order"
)

const reversedChangeset = `
changes:
  - kind: alter_sequence_owned_by
    sequence:
      schema: public
      name: users_id_seq
    owner:
      schema: public
      table: users
      column: id
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
  - kind: create_sequence
    sequence:
      schema: public
      name: users_id_seq
`

const cyclicChangeset = `
changes:
  - kind: create_table
    table:
      schema: public
      name: a
      columns:
        - {name: id, data_type: integer}
        - {name: b_id, data_type: integer}
      constraints:
        - {name: a_b_fkey, type: FOREIGN KEY, columns: [b_id], referenced_table: b, referenced_columns: [id]}
  - kind: create_table
    table:
      schema: public
      name: b
      columns:
        - {name: id, data_type: integer}
        - {name: a_id, data_type: integer}
      constraints:
        - {name: b_a_fkey, type: FOREIGN KEY, columns: [a_id], referenced_table: a, referenced_columns: [id]}
`

// resetFlags puts every flag variable back to its default and points the command at changes
func resetFlags(t *testing.T, changes string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "changes.yaml")
	if err := os.WriteFile(path, []byte(changes), 0644); err != nil {
		t.Fatalf("Failed to write changeset: %v", err)
	}
	orderMain = ""
	orderBranch = ""
	orderChanges = path
	orderHops = 0
	orderNoRefine = false
	orderDebugGraph = ""
	orderValidate = false
	outputHuman = ""
	outputJSON = ""
	outputSQL = ""
	orderNoColor = true
}

func execute(t *testing.T) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := &cobra.Command{Use: "order"}
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := runOrder(cmd, nil)
	return stdout.String(), stderr.String(), err
}

func TestOrderCommand(t *testing.T) {
	if OrderCmd.Use != "order" {
		t.Errorf("Expected Use to be 'order', got '%s'", OrderCmd.Use)
	}
	if OrderCmd.Short == "" || OrderCmd.Long == "" {
		t.Error("Expected Short and Long descriptions to be set")
	}

	for _, name := range []string{"main", "branch", "changes", "hops", "no-refine", "debug-graph", "validate", "output-human", "output-json", "output-sql", "no-color"} {
		if OrderCmd.Flags().Lookup(name) == nil {
			t.Errorf("Expected --%s flag to be defined", name)
		}
	}
}

func TestOrderWritesSQL(t *testing.T) {
	resetFlags(t, reversedChangeset)

	out, _, err := execute(t)
	if err != nil {
		t.Fatalf("runOrder() error = %v", err)
	}

	seq := strings.Index(out, "CREATE SEQUENCE")
	tbl := strings.Index(out, "CREATE TABLE")
	owned := strings.Index(out, "OWNED BY")
	if seq < 0 || tbl < 0 || owned < 0 {
		t.Fatalf("missing statements in output:\n%s", out)
	}
	if !(seq < tbl && tbl < owned) {
		t.Errorf("expected sequence, table, owned by; got:\n%s", out)
	}
}

func TestOrderWritesJSONAndDebugGraph(t *testing.T) {
	resetFlags(t, reversedChangeset)
	dir := t.TempDir()
	outputJSON = "stdout"
	outputSQL = filepath.Join(dir, "plan.sql")
	orderDebugGraph = filepath.Join(dir, "graph.dot")
	orderValidate = true

	out, _, err := execute(t)
	if err != nil {
		t.Fatalf("runOrder() error = %v", err)
	}

	var decoded struct {
		Steps []struct {
			Operation string `json:"operation"`
		} `json:"steps"`
	}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(decoded.Steps) != 3 {
		t.Errorf("expected 3 steps, got %d", len(decoded.Steps))
	}

	script, err := os.ReadFile(outputSQL)
	if err != nil {
		t.Fatalf("Failed to read SQL output: %v", err)
	}
	if !strings.HasPrefix(string(script), "CREATE SEQUENCE") {
		t.Errorf("expected script to start with the sequence, got:\n%s", script)
	}

	dot, err := os.ReadFile(orderDebugGraph)
	if err != nil {
		t.Fatalf("Failed to read debug graph: %v", err)
	}
	if !strings.HasPrefix(string(dot), "digraph changes {") {
		t.Errorf("expected DOT output, got:\n%s", dot)
	}
}

func TestOrderReportsCycle(t *testing.T) {
	resetFlags(t, cyclicChangeset)
	orderDebugGraph = filepath.Join(t.TempDir(), "graph.json")

	_, stderr, err := execute(t)
	var cycleErr *order.CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected *order.CycleError, got %v", err)
	}
	if !strings.Contains(stderr, "table:public.a#0 -> table:public.b#1") {
		t.Errorf("expected cycle edges on stderr, got:\n%s", stderr)
	}

	data, err := os.ReadFile(orderDebugGraph)
	if err != nil {
		t.Fatalf("Failed to read debug graph: %v", err)
	}
	var graph order.DebugGraph
	if err := json.Unmarshal(data, &graph); err != nil {
		t.Fatalf("debug graph is not JSON: %v", err)
	}
	if len(graph.Cycle) != 2 {
		t.Errorf("expected the cycle in the debug graph, got %v", graph.Cycle)
	}
}

func TestDetermineOutputs(t *testing.T) {
	resetFlags(t, reversedChangeset)
	outputHuman = "stdout"
	outputJSON = "stdout"
	if _, err := determineOutputs(); err == nil {
		t.Error("expected an error for two stdout outputs")
	}

	resetFlags(t, reversedChangeset)
	outputs, err := determineOutputs()
	if err != nil {
		t.Fatalf("determineOutputs() error = %v", err)
	}
	if len(outputs) != 1 || outputs[0] != (outputSpec{format: "sql", target: "stdout"}) {
		t.Errorf("expected default SQL to stdout, got %+v", outputs)
	}
}
