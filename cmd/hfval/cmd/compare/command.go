// Package compare provides the compare command and its fitted and
// nuisance subcommands.
package compare

import (
	"github.com/spf13/cobra"

	"github.com/pyhf/hfval/cmd/application"
)

// NewCommand creates the compare command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "compare",
		GroupID: "core",
		Short:   "Compare a pyhf model against a ROOT/HistFactory workspace",
		Long: `Compare reconciles the parameter names of a ROOT/HistFactory workspace
dump with the parameters of a pyhf model.

  fitted    compares fitted values parameter by parameter
  nuisance  lists the parameter names found on only one side`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(NewFittedCommand(app))
	cmd.AddCommand(NewNuisanceCommand(app))
	return cmd
}
