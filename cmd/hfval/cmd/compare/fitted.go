package compare

import (
	"github.com/spf13/cobra"

	"github.com/pyhf/hfval"
	"github.com/pyhf/hfval/cmd/application"
	"github.com/pyhf/hfval/internal/cmd/alerts"
	"github.com/pyhf/hfval/internal/cmd/output"
	"github.com/pyhf/hfval/internal/cmd/table"
	"github.com/pyhf/hfval/pkg/reconcile"
	"github.com/pyhf/hfval/pkg/report"
)

// NewFittedCommand creates the compare fitted command.
func NewFittedCommand(app application.Application) *cobra.Command {
	flags := &Flags{}
	var fitFile, outFile string

	cmd := &cobra.Command{
		Use:   "fitted",
		Short: "Compare fitted parameter values",
		Long: `Fitted rewrites every legacy parameter name with the selected rule set,
looks it up among the expanded pyhf parameters and reports both values
with their absolute and percent difference.

Without --pyhf-fit the pyhf init values are compared. Parameters with no
pyhf counterpart are reported as warnings and do not fail the command.`,
		Example: `  hfval compare fitted --root-workspace params.txt --pyhf-json BkgOnly.json
  hfval compare fitted --root-workspace params.txt --pyhf-json BkgOnly.json \
      --pyhf-patch signal.json --pyhf-fit bestfit.json --outfile cmp.txt
  hfval compare fitted --root-workspace params.txt --pyhf-json ws.json -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, rs, err := flags.options(app, app.Defaults().FittedRules, hfval.WithFittedRules)
			if err != nil {
				return err
			}

			v, err := app.Validator(opts...)
			if err != nil {
				return err
			}

			in := flags.inputs()
			in.PyhfFit = fitFile
			cmp, err := v.CompareFitted(cmd.Context(), in)
			if err != nil {
				return err
			}

			warnings := alerts.NewFormatWriter(cmd.ErrOrStderr(), output.Format(app.OutputFormat()))
			for _, a := range discrepancies(app, rs, reconcile.RuleSetFitted, flags.Expand) {
				if err := warnings.WriteAlert(a); err != nil {
					return err
				}
			}
			if err := warnings.WriteAlert(alerts.MissingParameters(cmp.Missing)); err != nil {
				return err
			}

			return writeComparison(cmd, app, cmp, outFile)
		},
	}

	addFlags(cmd, flags)
	cmd.Flags().StringVar(&fitFile, "pyhf-fit", "", "pyhf best-fit result (default: init values)")
	cmd.Flags().StringVar(&outFile, "outfile", "", "write the fixed-width report to this file instead of the screen")

	return cmd
}

// writeComparison writes the report file when outFile is set; otherwise it
// prints the framed report, or a formatted table when --format is given.
func writeComparison(cmd *cobra.Command, app application.Application, cmp *reconcile.Comparison, outFile string) error {
	if outFile != "" {
		if err := report.WriteFile(outFile, cmp.Records); err != nil {
			return err
		}
		app.Logger().Info().Str("file", outFile).Int("records", cmp.Resolved()).Msg("Wrote comparison report")
		return nil
	}

	if app.OutputFormat() == "" {
		return report.WriteFramed(cmd.OutOrStdout(), cmp.Records)
	}

	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}
	return output.Write(cmd.OutOrStdout(), format, cmp, func(wide bool) table.Data {
		return table.ComparisonToTableData(cmp, wide)
	})
}

