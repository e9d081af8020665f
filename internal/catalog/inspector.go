package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/pgschema/pgdelta/internal/logger"
	"github.com/pgschema/pgdelta/internal/stableid"
)

// Inspector builds dependency snapshots from a live database
type Inspector struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewInspector creates a new inspector reading through db
func NewInspector(db *sql.DB) *Inspector {
	return &Inspector{
		db:     db,
		logger: logger.Get(),
	}
}

// Inspect reads the dependency relation of the connected database. The per-class
// reads are independent and run concurrently; they are joined before the snapshot
// is normalized.
func (i *Inspector) Inspect(ctx context.Context, name string) (*Catalog, error) {
	cat := New(name)

	if err := i.db.QueryRowContext(ctx, "SHOW server_version").Scan(&cat.ServerVersion); err != nil {
		return nil, fmt.Errorf("failed to read server version: %w", err)
	}

	results := make([][]Dependency, len(dependentClasses))
	g, gctx := errgroup.WithContext(ctx)
	for idx, class := range dependentClasses {
		g.Go(func() error {
			deps, err := i.inspectClass(gctx, class)
			if err != nil {
				return fmt.Errorf("%s: %w", class, err)
			}
			results[idx] = deps
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to read dependencies: %w", err)
	}

	for _, deps := range results {
		cat.Dependencies = append(cat.Dependencies, deps...)
	}
	cat.Normalize()

	i.logger.Debug("Catalog inspected", "name", name, "server_version", cat.ServerVersion, "dependencies", len(cat.Dependencies))
	return cat, nil
}

func (i *Inspector) inspectClass(ctx context.Context, class string) ([]Dependency, error) {
	rows, err := i.db.QueryContext(ctx, dependencyQuery, class)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deps []Dependency
	for rows.Next() {
		var dependent, referenced, code string
		if err := rows.Scan(&dependent, &referenced, &code); err != nil {
			return nil, err
		}
		depType, ok := depTypeFromCode(code)
		if !ok {
			continue
		}
		deps = append(deps, Dependency{
			Dependent:  stableid.ID(dependent),
			Referenced: stableid.ID(referenced),
			Type:       depType,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	i.logger.Debug("Read dependencies", "class", class, "count", len(deps))
	return deps, nil
}
