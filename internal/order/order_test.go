package order

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pgschema/pgdelta/internal/catalog"
	"github.com/pgschema/pgdelta/internal/change"
	"github.com/pgschema/pgdelta/internal/stableid"
)

func label(c change.Change) string {
	return string(c.Operation()) + " " + c.Target().String()
}

func labels(changes []change.Change) []string {
	out := make([]string, len(changes))
	for i, c := range changes {
		out[i] = label(c)
	}
	return out
}

func table(name string, cols ...string) change.Table {
	t := change.Table{Schema: "public", Name: name}
	for _, col := range cols {
		t.Columns = append(t.Columns, change.Column{Name: col, DataType: "integer"})
	}
	return t
}

func withFK(t change.Table, name, column, refTable string) change.Table {
	t.Constraints = append(t.Constraints, change.Constraint{
		Name:              name,
		Type:              change.ConstraintTypeForeignKey,
		Columns:           []string{column},
		ReferencedTable:   refTable,
		ReferencedColumns: []string{"id"},
	})
	return t
}

func routine(name string, args ...string) change.Routine {
	r := change.Routine{Schema: "public", Name: name, Kind: change.RoutineKindFunction, ReturnType: "integer", Language: "sql", Body: "SELECT 1"}
	for _, a := range args {
		r.Arguments = append(r.Arguments, change.Argument{DataType: a})
	}
	return r
}

func mustSort(t *testing.T, main, branch *catalog.Catalog, changes []change.Change) []change.Change {
	t.Helper()
	ordered, err := Sort(main, branch, changes, Options{})
	if err != nil {
		t.Fatalf("Sort() error = %v", err)
	}
	return ordered
}

func TestSortEmpty(t *testing.T) {
	ordered, err := Sort(nil, nil, nil, Options{})
	if err != nil {
		t.Fatalf("Sort() error = %v", err)
	}
	if len(ordered) != 0 {
		t.Fatalf("expected no changes, got %v", labels(ordered))
	}
}

func TestSortSequenceTableInversion(t *testing.T) {
	seq := change.Sequence{Schema: "public", Name: "users_id_seq", DataType: "bigint"}
	users := table("users")
	users.Columns = []change.Column{{
		Name:     "id",
		DataType: "bigint",
		Default:  "nextval('public.users_id_seq'::regclass)",
		NotNull:  true,
		Depends:  []stableid.ID{seq.ID()},
	}}
	ownedBy := &change.AlterSequenceSetOwnedBy{
		Sequence: seq,
		Owner:    &change.ColumnRef{Schema: "public", Table: "users", Column: "id"},
	}

	branch := catalog.New("branch")
	branch.Add(seq.ID(), stableid.Column("public", "users", "id"), catalog.DepTypeAuto)
	branch.Add(stableid.Column("public", "users", "id"), seq.ID(), catalog.DepTypeNormal)

	tests := []struct {
		name   string
		branch *catalog.Catalog
	}{
		{name: "with catalog", branch: branch},
		{name: "declared requirements only", branch: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changes := []change.Change{
				ownedBy,
				&change.CreateTable{Table: users},
				&change.CreateSequence{Sequence: seq},
			}
			ordered := mustSort(t, nil, tt.branch, changes)

			want := []string{
				"create sequence:public.users_id_seq",
				"create table:public.users",
				"alter sequence:public.users_id_seq",
			}
			if diff := cmp.Diff(want, labels(ordered)); diff != "" {
				t.Errorf("order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSortDropSequenceAfterOwningTable(t *testing.T) {
	seq := change.Sequence{Schema: "public", Name: "users_id_seq"}
	main := catalog.New("main")
	main.Add(seq.ID(), stableid.Column("public", "users", "id"), catalog.DepTypeAuto)

	changes := []change.Change{
		&change.DropSequence{Sequence: seq},
		&change.DropTable{Table: table("users", "id")},
	}
	ordered := mustSort(t, main, nil, changes)

	want := []string{"drop table:public.users", "drop sequence:public.users_id_seq"}
	if diff := cmp.Diff(want, labels(ordered)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestSortOverloads(t *testing.T) {
	changes := []change.Change{
		&change.CreateRoutine{Routine: routine("f", "integer", "text")},
		&change.CreateRoutine{Routine: routine("f", "text")},
		&change.CreateRoutine{Routine: routine("f")},
		&change.CreateRoutine{Routine: routine("f", "integer")},
	}
	ordered := mustSort(t, nil, nil, changes)

	want := []string{
		"create procedure:public.f()",
		"create procedure:public.f(integer)",
		"create procedure:public.f(text)",
		"create procedure:public.f(integer,text)",
	}
	if diff := cmp.Diff(want, labels(ordered)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestSortSameObjectPrecedence(t *testing.T) {
	v := change.View{Schema: "public", Name: "v", Definition: "SELECT 1"}
	changes := []change.Change{
		&change.ReplaceView{View: v},
		&change.CreateView{View: v},
		&change.DropView{View: v},
	}
	ordered := mustSort(t, nil, nil, changes)

	want := []string{"drop view:public.v", "create view:public.v", "replace view:public.v"}
	if diff := cmp.Diff(want, labels(ordered)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestSortDependencyRules(t *testing.T) {
	v := change.View{Schema: "public", Name: "active_users", Definition: "SELECT id FROM users"}
	viewID := v.ID()
	usersID := stableid.Table("public", "users")

	main := catalog.New("main")
	main.Add(viewID, usersID, catalog.DepTypeNormal)
	branch := catalog.New("branch")
	branch.Add(viewID, usersID, catalog.DepTypeNormal)

	tests := []struct {
		name    string
		changes []change.Change
		want    []string
	}{
		{
			name: "drop dependent before referenced",
			changes: []change.Change{
				&change.DropTable{Table: table("users", "id")},
				&change.DropView{View: v},
			},
			want: []string{"drop view:public.active_users", "drop table:public.users"},
		},
		{
			name: "create referenced before dependent",
			changes: []change.Change{
				&change.CreateView{View: v},
				&change.CreateTable{Table: table("users", "id")},
			},
			want: []string{"create table:public.users", "create view:public.active_users"},
		},
		{
			name: "alter referenced before replacing dependent",
			changes: []change.Change{
				&change.ReplaceView{View: v},
				&change.AlterTableAddColumn{Schema: "public", Table: "users", Column: change.Column{Name: "email", DataType: "text"}},
			},
			want: []string{"alter table:public.users", "replace view:public.active_users"},
		},
		{
			name: "drop dependent before altering referenced",
			changes: []change.Change{
				&change.AlterTableAlterColumnType{Schema: "public", Table: "users", Column: "id", DataType: "bigint"},
				&change.DropView{View: v},
			},
			want: []string{"drop view:public.active_users", "alter table:public.users"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ordered := mustSort(t, main, branch, tt.changes)
			if diff := cmp.Diff(tt.want, labels(ordered)); diff != "" {
				t.Errorf("order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSortRecreateViewAroundColumnTypeChange(t *testing.T) {
	v := change.View{Schema: "public", Name: "v", Definition: "SELECT id FROM users"}
	col := stableid.Column("public", "users", "id")
	main := catalog.New("main")
	main.Add(v.ID(), col, catalog.DepTypeNormal)
	branch := catalog.New("branch")
	branch.Add(v.ID(), col, catalog.DepTypeNormal)

	changes := []change.Change{
		&change.CreateView{View: v},
		&change.AlterTableAlterColumnType{Schema: "public", Table: "users", Column: "id", DataType: "bigint"},
		&change.DropView{View: v},
	}
	ordered := mustSort(t, main, branch, changes)

	want := []string{"drop view:public.v", "alter table:public.users", "create view:public.v"}
	if diff := cmp.Diff(want, labels(ordered)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestSortIndependentChangesKeepInputOrder(t *testing.T) {
	changes := []change.Change{
		&change.CreateSchema{Name: "b"},
		&change.CreateRole{Name: "reader"},
		&change.CreateSchema{Name: "a"},
		&change.CreateExtension{Name: "pgcrypto"},
	}
	ordered := mustSort(t, nil, nil, changes)
	if diff := cmp.Diff(labels(changes), labels(ordered)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestSortRequirementsWithoutCatalog(t *testing.T) {
	grant := &change.GrantPrivileges{
		Object:     change.PrivilegeObject{Type: change.ObjectTypeTable, Schema: "app", Name: "users"},
		Grantee:    "reader",
		Privileges: []string{"SELECT"},
	}
	index := &change.CreateIndex{Index: change.Index{Schema: "app", Table: "users", Name: "users_email_idx", Columns: []string{"email"}}}
	createTable := &change.CreateTable{Table: change.Table{Schema: "app", Name: "users", Columns: []change.Column{{Name: "email", DataType: "text"}}}}
	role := &change.CreateRole{Name: "reader"}
	schema := &change.CreateSchema{Name: "app"}

	ordered := mustSort(t, nil, nil, []change.Change{grant, index, createTable, role, schema})

	pos := make(map[change.Change]int)
	for i, c := range ordered {
		pos[c] = i
	}
	assertBefore := func(first, second change.Change) {
		t.Helper()
		if pos[first] >= pos[second] {
			t.Errorf("expected %q before %q in %v", first.SQL(), second.SQL(), sqls(ordered))
		}
	}
	assertBefore(schema, createTable)
	assertBefore(createTable, index)
	assertBefore(createTable, grant)
	assertBefore(role, grant)
}

func TestSortCycle(t *testing.T) {
	a := withFK(table("a", "id", "b_id"), "a_b_fkey", "b_id", "b")
	b := withFK(table("b", "id", "a_id"), "b_a_fkey", "a_id", "a")
	changes := []change.Change{
		&change.CreateTable{Table: a},
		&change.CreateTable{Table: b},
	}

	var emitted *DebugGraph
	_, err := Sort(nil, nil, changes, Options{Graph: GraphSinkFunc(func(g *DebugGraph) error {
		emitted = g
		return nil
	})})

	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected *CycleError, got %v", err)
	}
	want := []string{"table:public.a#0", "table:public.b#1"}
	if diff := cmp.Diff(want, cycleErr.Cycle); diff != "" {
		t.Errorf("cycle mismatch (-want +got):\n%s", diff)
	}
	if len(cycleErr.Edges) != len(cycleErr.Cycle) {
		t.Fatalf("expected one edge per cycle node, got %d", len(cycleErr.Edges))
	}
	if got := cycleErr.Error(); got != "dependency cycle detected: table:public.a#0 -> table:public.b#1 -> table:public.a#0" {
		t.Errorf("unexpected message %q", got)
	}
	if emitted == nil || len(emitted.Cycle) != 2 {
		t.Errorf("expected debug graph with the cycle, got %+v", emitted)
	}
}

func TestSortMalformedChange(t *testing.T) {
	changes := []change.Change{&change.CreateSchema{Name: "app"}, nil}
	_, err := Sort(nil, nil, changes, Options{})

	var malformed *MalformedChangeError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected *MalformedChangeError, got %v", err)
	}
	if malformed.Index != 1 {
		t.Errorf("expected index 1, got %d", malformed.Index)
	}
}

func TestSortRefinements(t *testing.T) {
	pk := &change.AlterTableAddConstraint{Schema: "public", Table: "orders", Constraint: change.Constraint{
		Name: "orders_pkey", Type: change.ConstraintTypePrimaryKey, Columns: []string{"id"},
	}}
	fk := &change.AlterTableAddConstraint{Schema: "public", Table: "orders", Constraint: change.Constraint{
		Name: "orders_customer_fkey", Type: change.ConstraintTypeForeignKey, Columns: []string{"customer_id"},
		ReferencedTable: "customers", ReferencedColumns: []string{"id"},
	}}
	addCol := &change.AlterTableAddColumn{Schema: "public", Table: "orders", Column: change.Column{Name: "note", DataType: "text"}}
	changes := []change.Change{fk, pk, addCol}

	t.Run("default", func(t *testing.T) {
		ordered := mustSort(t, nil, nil, changes)
		want := []change.Change{addCol, pk, fk}
		if diff := cmp.Diff(sqls(want), sqls(ordered)); diff != "" {
			t.Errorf("order mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		ordered, err := Sort(nil, nil, changes, Options{Refinements: []Refinement{}})
		if err != nil {
			t.Fatalf("Sort() error = %v", err)
		}
		if diff := cmp.Diff(sqls(changes), sqls(ordered)); diff != "" {
			t.Errorf("order mismatch (-want +got):\n%s", diff)
		}
	})
}

func sqls(changes []change.Change) []string {
	out := make([]string, len(changes))
	for i, c := range changes {
		out[i] = c.SQL()
	}
	return out
}

func TestSortDoesNotModifyInput(t *testing.T) {
	changes := []change.Change{
		&change.CreateView{View: change.View{Schema: "public", Name: "v", Depends: []stableid.ID{stableid.Table("public", "t")}}},
		&change.CreateTable{Table: table("t", "id")},
	}
	before := labels(changes)
	mustSort(t, nil, nil, changes)
	if diff := cmp.Diff(before, labels(changes)); diff != "" {
		t.Errorf("input modified (-want +got):\n%s", diff)
	}
}

func TestSortEmitsDebugGraph(t *testing.T) {
	changes := []change.Change{
		&change.CreateView{View: change.View{Schema: "public", Name: "v", Depends: []stableid.ID{stableid.Table("public", "t")}}},
		&change.CreateTable{Table: table("t", "id")},
	}
	var emitted *DebugGraph
	_, err := Sort(nil, nil, changes, Options{Graph: GraphSinkFunc(func(g *DebugGraph) error {
		emitted = g
		return nil
	})})
	if err != nil {
		t.Fatalf("Sort() error = %v", err)
	}
	if emitted == nil {
		t.Fatal("expected a debug graph")
	}
	if diff := cmp.Diff([]int{1, 0}, emitted.Order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if len(emitted.Edges) == 0 {
		t.Fatal("expected at least one edge")
	}
	for _, e := range emitted.Edges {
		if e.From != 1 || e.To != 0 {
			t.Errorf("unexpected edge %+v", e)
		}
	}
}

func TestSortOverloadsFollowDependencyPath(t *testing.T) {
	twoArgs := routine("f", "integer", "text")
	oneArg := routine("f", "integer")
	domain := change.Type{Schema: "public", Name: "d", Kind: change.TypeKindDomain, BaseType: "integer", Check: "public.f(VALUE, 'x') > 0"}

	branch := catalog.New("branch")
	branch.Add(domain.ID(), twoArgs.ID(), catalog.DepTypeNormal)
	branch.Add(oneArg.ID(), domain.ID(), catalog.DepTypeNormal)

	changes := []change.Change{
		&change.CreateRoutine{Routine: twoArgs},
		&change.CreateType{Type: domain},
		&change.CreateRoutine{Routine: oneArg},
	}
	ordered := mustSort(t, nil, branch, changes)

	want := []string{
		"create procedure:public.f(integer,text)",
		"create type:public.d",
		"create procedure:public.f(integer)",
	}
	if diff := cmp.Diff(want, labels(ordered)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestSortIgnoresDebugGraphFailure(t *testing.T) {
	changes := []change.Change{&change.CreateTable{Table: table("t", "id")}}
	ordered, err := Sort(nil, nil, changes, Options{Graph: GraphSinkFunc(func(*DebugGraph) error {
		return errors.New("disk full")
	})})
	if err != nil {
		t.Fatalf("Sort() error = %v", err)
	}
	if len(ordered) != 1 || ordered[0] != changes[0] {
		t.Errorf("expected the single change back, got %v", labels(ordered))
	}
}
