package app

import (
	"github.com/spf13/cobra"

	"github.com/pyhf/hfval/cmd/hfval/cmd/compare"
	"github.com/pyhf/hfval/cmd/hfval/cmd/rules"
	"github.com/pyhf/hfval/cmd/hfval/cmd/summarize"
	"github.com/pyhf/hfval/cmd/hfval/cmd/systs"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(compare.NewCommand(a))
	rootCmd.AddCommand(summarize.NewCommand(a))
	rootCmd.AddCommand(systs.NewCommand(a))

	// Management commands
	rootCmd.AddCommand(rules.NewCommand(a))

	rootCmd.AddCommand(a.CreateVersionCommand())
}

// CreateVersionCommand creates the version command.
func (a *App) CreateVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("hfval %s\n", a.version)
			if a.Config().Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}
