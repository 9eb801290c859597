// Package summarize provides the summarize command.
package summarize

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pyhf/hfval/cmd/application"
	"github.com/pyhf/hfval/internal/cmd/output"
	"github.com/pyhf/hfval/internal/cmd/table"
	"github.com/pyhf/hfval/pkg/constants"
	"github.com/pyhf/hfval/pkg/errors"
	"github.com/pyhf/hfval/pkg/report"
)

// NewCommand creates the summarize command.
func NewCommand(app application.Application) *cobra.Command {
	var outFile string

	cmd := &cobra.Command{
		Use:     "summarize FILE...",
		GroupID: "core",
		Short:   "Aggregate comparison reports",
		Long: `Summarize reads comparison reports written by "compare fitted --outfile"
and aggregates their differences: the worst percent difference and mean
absolute difference per parameter, a histogram of |% diff| over log-spaced
bins from 1 to 1e5, and a histogram of the absolute difference clipped to
[-1, 1].`,
		Example: `  hfval summarize reports/*.txt
  hfval summarize reports/*.txt --output summary.yaml
  hfval summarize a.txt b.txt -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := report.SummarizeFiles(cmd.Context(), args)
			if err != nil {
				return err
			}
			app.Logger().Info().
				Int("files", summary.Files).
				Int("records", summary.Records).
				Msg("Summarized comparison reports")

			if outFile != "" {
				return writeFile(outFile, summary)
			}

			format, err := output.ParseFormat(app.OutputFormat())
			if err != nil {
				return err
			}
			if !format.IsTable() {
				return output.NewFormatter(format).Format(cmd.OutOrStdout(), summary)
			}
			return writeTables(cmd.OutOrStdout(), format, summary)
		},
	}

	cmd.Flags().StringVar(&outFile, "output", "", "write the summary to this file (.json, otherwise yaml)")

	return cmd
}

func writeTables(w io.Writer, format output.Format, summary *report.Summary) error {
	return output.WriteSections(w, format,
		output.Section{
			Title: fmt.Sprintf("Parameters (%d files, %d records)", summary.Files, summary.Records),
			Data:  table.SummaryToTableData(summary),
		},
		output.Section{Title: "|% diff|", Data: table.HistogramToTableData(summary.Relative)},
		output.Section{Title: "abs diff", Data: table.HistogramToTableData(summary.Absolute)},
	)
}

func writeFile(path string, summary *report.Summary) error {
	format := output.FormatYAML
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = output.FormatJSON
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	if err := output.NewFormatter(format).Format(f, summary); err != nil {
		_ = f.Close()
		return errors.WrapIO("write", path, err)
	}
	return errors.WrapIO("close", path, f.Close())
}
