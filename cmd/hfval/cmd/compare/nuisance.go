package compare

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pyhf/hfval"
	"github.com/pyhf/hfval/cmd/application"
	"github.com/pyhf/hfval/internal/cmd/alerts"
	"github.com/pyhf/hfval/internal/cmd/output"
	"github.com/pyhf/hfval/internal/cmd/table"
	"github.com/pyhf/hfval/pkg/constants"
	"github.com/pyhf/hfval/pkg/reconcile"
)

// NewNuisanceCommand creates the compare nuisance command.
func NewNuisanceCommand(app application.Application) *cobra.Command {
	flags := &Flags{}
	var rawPyhf bool

	cmd := &cobra.Command{
		Use:   "nuisance",
		Short: "List parameter names found on only one side",
		Long: `Nuisance rewrites the legacy parameter names with the selected rule set
and reports the names unique to pyhf and the names unique to the legacy
workspace. Values are not compared.`,
		Example: `  hfval compare nuisance --root-workspace params.txt --pyhf-json BkgOnly.json
  hfval compare nuisance --root-workspace params.txt --pyhf-json ws.json --raw-pyhf-names`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, rs, err := flags.options(app, app.Defaults().NuisanceRules, hfval.WithNuisanceRules)
			if err != nil {
				return err
			}
			opts = append(opts, hfval.WithCanonicalizedPyhfNames(!rawPyhf))

			v, err := app.Validator(opts...)
			if err != nil {
				return err
			}

			diff, err := v.CompareNuisance(cmd.Context(), flags.inputs())
			if err != nil {
				return err
			}

			warnings := alerts.NewFormatWriter(cmd.ErrOrStderr(), output.Format(app.OutputFormat()))
			for _, a := range discrepancies(app, rs, reconcile.RuleSetNuisance, flags.Expand) {
				if err := warnings.WriteAlert(a); err != nil {
					return err
				}
			}

			if app.OutputFormat() == "" {
				return writeDifference(cmd.OutOrStdout(), diff)
			}

			format, err := output.ParseFormat(app.OutputFormat())
			if err != nil {
				return err
			}
			return output.Write(cmd.OutOrStdout(), format, diff, func(bool) table.Data {
				return table.DifferenceToTableData(diff, constants.SideLegacy, constants.SideModern)
			})
		},
	}

	addFlags(cmd, flags)
	cmd.Flags().BoolVar(&rawPyhf, "raw-pyhf-names", false, "do not rewrite pyhf names before taking the difference")

	return cmd
}

// writeDifference prints the pyhf-only names, then the legacy-only names.
func writeDifference(w io.Writer, diff *reconcile.Difference) error {
	if _, err := fmt.Fprintln(w, "Nuisance params unique to pyhf:"); err != nil {
		return err
	}
	for _, name := range diff.OnlyB {
		if _, err := fmt.Fprintln(w, name); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, "\nNuisance params unique to root:"); err != nil {
		return err
	}
	for _, name := range diff.OnlyA {
		if _, err := fmt.Fprintln(w, name); err != nil {
			return err
		}
	}
	return nil
}
