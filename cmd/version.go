package cmd

import (
	"fmt"

	"github.com/pgschema/pgdelta/internal/version"
	"github.com/spf13/cobra"
)

var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  "Display the version number of pgdelta",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), versionLine())
	},
}

func versionLine() string {
	return fmt.Sprintf("pgdelta v%s@%s %s %s", version.App(), version.GitCommit, version.Platform(), version.BuildDate)
}
