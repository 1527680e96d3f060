package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/coa/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "coa",
		Short:   "Chart of accounts enrichment pipeline",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("repo", ".", "project directory")
	rootCmd.PersistentFlags().String("log-level", "", "override logging.level")

	rootCmd.AddCommand(
		newInitCommand(),
		newImportCommand(),
		newTransformCommand(),
		newSubunitCommand(),
		newMappingCommand(),
		newCheckCommand(),
		newRunCommand(),
		newValidateCommand(),
		newTreeCommand(),
		newAccountsCommand(),
		newExportCommand(),
		newLogCommand(),
	)

	return rootCmd
}
