package cmd

import (
	"fmt"
	"os"

	"github.com/pgschema/pgdelta/cmd/catalog"
	"github.com/pgschema/pgdelta/cmd/order"
	"github.com/pgschema/pgdelta/internal/logger"
	"github.com/pgschema/pgdelta/internal/version"
	"github.com/spf13/cobra"
)

var Debug bool

var RootCmd = &cobra.Command{
	Use:   "pgdelta",
	Short: "PostgreSQL schema change ordering tool",
	Long: fmt.Sprintf(`pgdelta orders PostgreSQL schema changes so that every object exists
before something uses it and outlives everything that depends on it.

Version: %s@%s %s %s

Commands:
  order    Order a changeset into a runnable script
  catalog  Snapshot the dependency catalog of a database

Use "pgdelta [command] --help" for more information about a command.`,
		version.App(), version.GitCommit, version.Platform(), version.BuildDate),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Setup(os.Stderr, Debug)
	},
}

func init() {
	RootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "Enable debug logging")
	RootCmd.AddCommand(order.OrderCmd)
	RootCmd.AddCommand(catalog.CatalogCmd)
	RootCmd.AddCommand(VersionCmd)
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
