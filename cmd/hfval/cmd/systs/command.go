// Package systs provides the systs command.
package systs

import (
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pyhf/hfval/cmd/application"
	"github.com/pyhf/hfval/internal/cmd/output"
	"github.com/pyhf/hfval/internal/cmd/table"
	"github.com/pyhf/hfval/pkg/constants"
	"github.com/pyhf/hfval/pkg/errors"
	"github.com/pyhf/hfval/pkg/pyhf"
	"github.com/pyhf/hfval/pkg/systs"
)

// Flags holds the systs command options.
type Flags struct {
	BkgOnly          string
	PatchSet         string
	SignalTemplate   string
	XVar             string
	YVar             string
	OutlierThreshold float64
	LargeThreshold   float64
	Grid             bool
	CheckPatches     bool
}

// Result is the structured output of the systs command.
type Result struct {
	Channels []systs.Channel          `json:"channels" yaml:"channels"`
	Outliers []systs.Outlier          `json:"outliers" yaml:"outliers"`
	Large    []systs.LargeSystematics `json:"large_systematics" yaml:"large_systematics"`
	Grid     []systs.GridBin          `json:"grid,omitempty" yaml:"grid,omitempty"`
}

// NewCommand creates the systs command.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "systs",
		GroupID: "core",
		Short:   "Scan a signal patch set for oversized systematics",
		Long: `Systs computes the relative systematic uncertainty of every signal sample
added by a patch set, per bin: histosys and normsys deltas are combined per
modifier and summed in quadrature, then divided by the nominal yield.

It reports the bins above --outlier-threshold, the modifiers above
--large-threshold, and with --grid the per-bin values placed on the plane
spanned by two fields of --signal-template.`,
		Example: `  hfval systs --bkg-only BkgOnly.json --patchset patchset.json
  hfval systs --bkg-only BkgOnly.json --patchset patchset.json \
      --signal-template 'C1N2_Wh_hbb_{a}_{b}' --grid -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := run(cmd, app, flags)
			if err != nil {
				return err
			}

			format, err := output.ParseFormat(app.OutputFormat())
			if err != nil {
				return err
			}
			if !format.IsTable() {
				return output.NewFormatter(format).Format(cmd.OutOrStdout(), result)
			}
			return writeTables(cmd.OutOrStdout(), format, flags, result)
		},
	}

	cmd.Flags().StringVar(&flags.BkgOnly, "bkg-only", "", "background-only pyhf workspace")
	cmd.Flags().StringVar(&flags.PatchSet, "patchset", "", "pyhf signal patch set")
	cmd.Flags().StringVar(&flags.SignalTemplate, "signal-template", "", "signal name template with {field} placeholders, required by --grid")
	cmd.Flags().StringVar(&flags.XVar, "x-var", "a", "template field on the x axis")
	cmd.Flags().StringVar(&flags.YVar, "y-var", "b", "template field on the y axis")
	cmd.Flags().Float64Var(&flags.OutlierThreshold, "outlier-threshold", constants.DefaultOutlierThreshold, "relative size above which a bin is an outlier")
	cmd.Flags().Float64Var(&flags.LargeThreshold, "large-threshold", constants.DefaultLargeSystThreshold, "relative size above which a modifier is reported")
	cmd.Flags().BoolVar(&flags.Grid, "grid", false, "report per-bin values on the template grid")
	cmd.Flags().BoolVar(&flags.CheckPatches, "check-patches", false, "apply every patch to the background first")
	_ = cmd.MarkFlagRequired("bkg-only")
	_ = cmd.MarkFlagRequired("patchset")

	return cmd
}

func run(cmd *cobra.Command, app application.Application, flags *Flags) (*Result, error) {
	var tmpl *systs.Template
	if flags.Grid {
		if flags.SignalTemplate == "" {
			return nil, &errors.ValidationError{Field: "signal-template", Message: "is required with --grid"}
		}
		var err error
		if tmpl, err = systs.ParseTemplate(flags.SignalTemplate); err != nil {
			return nil, err
		}
	}

	bkg, err := pyhf.LoadWorkspace(flags.BkgOnly)
	if err != nil {
		return nil, err
	}
	ps, err := pyhf.LoadPatchSet(flags.PatchSet)
	if err != nil {
		return nil, err
	}

	analysis, err := systs.Analyze(cmd.Context(), bkg, ps,
		systs.WithApplyCheck(flags.CheckPatches),
		systs.WithLogger(app.Logger()),
	)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Channels: analysis.Channels,
		Outliers: analysis.Outliers(flags.OutlierThreshold),
		Large:    analysis.LargeSystematics(flags.LargeThreshold),
	}
	if tmpl != nil {
		for _, ch := range analysis.Channels {
			bins, err := analysis.Grid(ch.Path, tmpl, flags.XVar, flags.YVar)
			if err != nil {
				return nil, err
			}
			result.Grid = append(result.Grid, bins...)
		}
	}

	app.Logger().Info().
		Int("signals", len(analysis.Signals)).
		Int("outliers", len(result.Outliers)).
		Msg("Scanned patch set")
	return result, nil
}

func writeTables(w io.Writer, format output.Format, flags *Flags, result *Result) error {
	sections := []output.Section{
		{Title: "Channels", Data: table.ChannelsToTableData(result.Channels)},
		{Title: "Outliers (> " + formatThreshold(flags.OutlierThreshold) + ")", Data: table.OutliersToTableData(result.Outliers)},
		{Title: "Large systematics (> " + formatThreshold(flags.LargeThreshold) + ")", Data: table.LargeSystsToTableData(result.Large)},
	}
	if flags.Grid {
		sections = append(sections, output.Section{Title: "Grid", Data: table.GridToTableData(result.Grid, flags.XVar, flags.YVar)})
	}
	return output.WriteSections(w, format, sections...)
}

func formatThreshold(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
