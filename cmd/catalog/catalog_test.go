package catalog

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/pgschema/pgdelta/cmd/util"
	"github.com/pgschema/pgdelta/internal/catalog"
	"github.com/pgschema/pgdelta/internal/stableid"
	"github.com/pgschema/pgdelta/testutil"
)

func TestCatalogCommand(t *testing.T) {
	if CatalogCmd.Use != "catalog" {
		t.Errorf("Expected Use to be 'catalog', got '%s'", CatalogCmd.Use)
	}

	flags := CatalogCmd.Flags()
	for _, name := range []string{"host", "port", "db", "user", "password", "sslmode", "application-name", "name", "output"} {
		if flags.Lookup(name) == nil {
			t.Errorf("Expected --%s flag to be defined", name)
		}
	}
	if got := flags.Lookup("port").DefValue; got != "5432" {
		t.Errorf("Expected default port to be '5432', got '%s'", got)
	}
	if got := flags.Lookup("name").DefValue; got != "main" {
		t.Errorf("Expected default name to be 'main', got '%s'", got)
	}
}

func TestCatalogCommandIntegration(t *testing.T) {
	ctx := context.Background()
	ci := testutil.SetupPostgresContainer(ctx, t)
	ci.Exec(ctx, t,
		"CREATE TABLE public.users (id serial PRIMARY KEY, email text)",
		"CREATE VIEW public.user_emails AS SELECT email FROM public.users",
	)

	output := filepath.Join(t.TempDir(), "branch.yaml")
	connConfig = util.ConnectionConfig{
		Host:     ci.Host,
		Port:     ci.Port,
		Database: "testdb",
		User:     "testuser",
		Password: "testpass",
		SSLMode:  "disable",
	}
	catalogName = "branch"
	catalogOutput = output

	var buf bytes.Buffer
	cmd := &cobra.Command{Use: "catalog"}
	cmd.SetOut(&buf)
	cmd.SetContext(ctx)
	if err := runCatalog(cmd, nil); err != nil {
		t.Fatalf("runCatalog() error = %v", err)
	}
	if !strings.HasPrefix(buf.String(), "Wrote ") {
		t.Errorf("unexpected output %q", buf.String())
	}

	cat, err := catalog.Load(output)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cat.Name != "branch" {
		t.Errorf("expected name 'branch', got %q", cat.Name)
	}

	dependent := stableid.View("public", "user_emails")
	referenced := stableid.Column("public", "users", "email")
	found := false
	for _, d := range cat.Dependencies {
		if d.Dependent == dependent && d.Referenced == referenced {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("expected %s -> %s in %+v", dependent, referenced, cat.Dependencies)
	}
}
