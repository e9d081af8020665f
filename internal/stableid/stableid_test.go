package stableid

import "testing"

func TestConstructors(t *testing.T) {
	tests := []struct {
		got  ID
		want string
	}{
		{Schema("app"), "schema:app"},
		{Table("public", "users"), "table:public.users"},
		{Column("public", "users", "id"), "column:public.users.id"},
		{Sequence("public", "seq"), "sequence:public.seq"},
		{Routine("public", "f", []string{"integer", "text"}), "procedure:public.f(integer,text)"},
		{Routine("public", "f", nil), "procedure:public.f()"},
		{ACL(Table("public", "t"), "reader"), "acl:table:public.t::grantee:reader"},
	}
	for _, tt := range tests {
		if string(tt.got) != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestKindAndName(t *testing.T) {
	id := Column("public", "users", "id")
	if id.Kind() != KindColumn {
		t.Errorf("Kind() = %q", id.Kind())
	}
	if id.Name() != "public.users.id" {
		t.Errorf("Name() = %q", id.Name())
	}
	if ID("plain").Kind() != "" {
		t.Errorf("expected no kind for an identifier without prefix")
	}
}

func TestUnknownAndZero(t *testing.T) {
	if !Unknown("pg_class:1234").IsUnknown() {
		t.Error("expected unknown identifier")
	}
	if Table("public", "t").IsUnknown() {
		t.Error("table identifier reported as unknown")
	}
	if !ID(" ").IsZero() || ID("schema:a").IsZero() {
		t.Error("unexpected IsZero result")
	}
}
