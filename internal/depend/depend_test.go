package depend

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pgschema/pgdelta/internal/catalog"
	"github.com/pgschema/pgdelta/internal/change"
	"github.com/pgschema/pgdelta/internal/stableid"
)

// chain builds a -> b -> c -> d -> e, where each object depends on the next
func chain() *catalog.Catalog {
	c := catalog.New("branch")
	ids := []stableid.ID{"view:public.a", "view:public.b", "view:public.c", "view:public.d", "table:public.e"}
	for i := 0; i+1 < len(ids); i++ {
		c.Add(ids[i], ids[i+1], catalog.DepTypeNormal)
	}
	return c
}

func TestExtractHops(t *testing.T) {
	changes := []change.Change{&change.CreateView{View: change.View{Schema: "public", Name: "a"}}}

	tests := []struct {
		hops int
		want []stableid.ID
	}{
		{hops: 1, want: []stableid.ID{"view:public.a", "view:public.b"}},
		{hops: 2, want: []stableid.ID{"view:public.a", "view:public.b", "view:public.c"}},
		{hops: 0, want: []stableid.ID{"view:public.a", "view:public.b", "view:public.c"}},
		{hops: 10, want: []stableid.ID{"table:public.e", "view:public.a", "view:public.b", "view:public.c", "view:public.d"}},
	}
	for _, tt := range tests {
		m := Extract(nil, chain(), changes, tt.hops)
		if diff := cmp.Diff(tt.want, m.Relevant()); diff != "" {
			t.Errorf("hops=%d relevant mismatch (-want +got):\n%s", tt.hops, diff)
		}
	}
}

func TestExtractKeepsEdgesBetweenRelevantObjects(t *testing.T) {
	changes := []change.Change{&change.CreateView{View: change.View{Schema: "public", Name: "a"}}}
	m := Extract(nil, chain(), changes, 1)

	if !m.Has("view:public.a", "view:public.b", SourceBranch) {
		t.Error("expected a -> b in branch")
	}
	if m.Has("view:public.b", "view:public.c", SourceBranch) {
		t.Error("b -> c crosses the relevant boundary")
	}
	if m.Has("view:public.a", "view:public.b", SourceMain) {
		t.Error("branch edge leaked into main")
	}
	if !m.Has("view:public.a", "view:public.b", SourceAny) {
		t.Error("expected a -> b in the union")
	}
}

func TestExtractSkipsUnknownEndpoints(t *testing.T) {
	main := catalog.New("main")
	main.Add("view:public.v", stableid.Unknown("pg_class:99999"), catalog.DepTypeNormal)
	main.Add("view:public.v", "table:public.t", catalog.DepTypeNormal)
	changes := []change.Change{&change.DropView{View: change.View{Schema: "public", Name: "v"}}}

	m := Extract(main, nil, changes, DefaultHops)
	for _, id := range m.Relevant() {
		if id.IsUnknown() {
			t.Errorf("unknown identifier %s made it into the relevant set", id)
		}
	}
	want := []Edge{{
		Dependent:  "view:public.v",
		Referenced: "table:public.t",
		Origin:     OriginCatalog,
		Source:     SourceMain,
		Type:       catalog.DepTypeNormal,
	}}
	if diff := cmp.Diff(want, m.Edges(SourceMain)); diff != "" {
		t.Errorf("main edges mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractExplicitEdges(t *testing.T) {
	changes := []change.Change{
		&change.CreateIndex{Index: change.Index{Schema: "app", Table: "users", Name: "users_email_idx", Columns: []string{"email"}}},
	}
	m := Extract(nil, nil, changes, DefaultHops)

	want := []Edge{
		{Dependent: "index:app.users_email_idx", Referenced: "column:app.users.email", Origin: OriginExplicit},
		{Dependent: "index:app.users_email_idx", Referenced: "table:app.users", Origin: OriginExplicit},
	}
	if diff := cmp.Diff(want, m.ExplicitEdges()); diff != "" {
		t.Errorf("explicit edges mismatch (-want +got):\n%s", diff)
	}
	if !m.Has("index:app.users_email_idx", "table:app.users", SourceAny) {
		t.Error("explicit edges must be part of the union")
	}
	if m.Has("index:app.users_email_idx", "table:app.users", SourceBranch) {
		t.Error("explicit edges must not be tagged with a catalog source")
	}
}

func TestExtractUnionPrefersBranch(t *testing.T) {
	main := catalog.New("main")
	main.Add("view:public.v", "table:public.t", catalog.DepTypeAuto)
	branch := catalog.New("branch")
	branch.Add("view:public.v", "table:public.t", catalog.DepTypeNormal)
	changes := []change.Change{&change.CreateView{View: change.View{Schema: "public", Name: "v"}}}

	m := Extract(main, branch, changes, DefaultHops)
	e, ok := m.Edge("view:public.v", "table:public.t", SourceAny)
	if !ok {
		t.Fatal("expected edge in the union")
	}
	if e.Source != SourceBranch {
		t.Errorf("expected the branch edge, got %s", e.Source)
	}
}
