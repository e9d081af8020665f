package catalog

import (
	"fmt"

	"github.com/pgschema/pgdelta/cmd/util"
	"github.com/pgschema/pgdelta/internal/catalog"
	"github.com/spf13/cobra"
)

var (
	connConfig    util.ConnectionConfig
	catalogName   string
	catalogOutput string
)

var CatalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Snapshot the dependency catalog of a database",
	Long: `Read pg_depend from a live database and write the dependencies between its
user objects to a snapshot file. The file format follows the extension of --output:
YAML for .yaml and .yml, JSON otherwise.`,
	RunE:         runCatalog,
	SilenceUsage: true,
	PreRunE:      util.PreRunEWithConnection(&connConfig),
}

func init() {
	util.AddConnectionFlags(CatalogCmd, &connConfig)
	CatalogCmd.Flags().StringVar(&catalogName, "name", "main", "Name recorded in the snapshot")
	CatalogCmd.Flags().StringVarP(&catalogOutput, "output", "o", "", "Snapshot file to write (required)")

	CatalogCmd.MarkFlagRequired("output")
}

func runCatalog(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	db, err := util.Connect(ctx, &connConfig)
	if err != nil {
		return err
	}
	defer db.Close()

	cat, err := catalog.NewInspector(db).Inspect(ctx, catalogName)
	if err != nil {
		return err
	}
	if err := cat.Save(catalogOutput); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d dependencies to %s\n", len(cat.Dependencies), catalogOutput)
	return nil
}
