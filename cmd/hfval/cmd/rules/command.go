// Package rules provides commands to inspect and try the name rewrite rule sets.
package rules

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pyhf/hfval/cmd/application"
	"github.com/pyhf/hfval/internal/cmd/alerts"
	"github.com/pyhf/hfval/internal/cmd/output"
	"github.com/pyhf/hfval/internal/cmd/table"
	"github.com/pyhf/hfval/pkg/reconcile"
)

// NewCommand creates the rules command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rules",
		GroupID: "management",
		Short:   "Inspect parameter name rewrite rules",
		Long: `Rules lists the built-in and configured rule sets, shows the rewrites of
one set in application order, and applies a set to parameter names.

Custom rule sets are declared under "rulesets:" in .hfval.yaml.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newListCommand(app))
	cmd.AddCommand(newShowCommand(app))
	cmd.AddCommand(newApplyCommand(app))
	return cmd
}

func newListCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rule sets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := output.ParseFormat(app.OutputFormat())
			if err != nil {
				return err
			}
			defaults := app.Defaults()
			return output.Write(cmd.OutOrStdout(), format, app.Rules().List(), func(bool) table.Data {
				return table.RegistryToTableData(app.Rules(), defaults.FittedRules, defaults.NuisanceRules)
			})
		},
	}
}

func newShowCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Show the rules of a rule set and how it differs from its counterpart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := app.Rules().Get(args[0])
			if err != nil {
				return err
			}
			format, err := output.ParseFormat(app.OutputFormat())
			if err != nil {
				return err
			}
			if !format.IsTable() {
				return output.NewFormatter(format).Format(cmd.OutOrStdout(), rs)
			}

			sections := []output.Section{{Title: rs.Name + ": " + rs.Description, Data: table.RuleSetToTableData(rs)}}
			counterpart := reconcile.Counterpart(rs.Name)
			if other, err := app.Rules().Get(counterpart); err == nil && other.Name != rs.Name {
				if diffs := rs.Diff(other); len(diffs) > 0 {
					rows := make([][]string, len(diffs))
					for i, d := range diffs {
						rows[i] = []string{d}
					}
					sections = append(sections, output.Section{
						Title: fmt.Sprintf("Differences from %s", other.Name),
						Data:  table.Data{Headers: []string{"Difference"}, Rows: rows},
					})
				}
			}
			return output.WriteSections(cmd.OutOrStdout(), format, sections...)
		},
	}
}

// Rewrite is one name rewritten by a rule set.
type Rewrite struct {
	Input     string   `json:"input" yaml:"input"`
	Canonical string   `json:"canonical" yaml:"canonical"`
	Steps     []string `json:"steps,omitempty" yaml:"steps,omitempty"`
	// Unstable marks a canonical name that a second pass rewrites again.
	Unstable bool `json:"unstable,omitempty" yaml:"unstable,omitempty"`
}

func newApplyCommand(app application.Application) *cobra.Command {
	var trace bool

	cmd := &cobra.Command{
		Use:   "apply NAME PARAM...",
		Short: "Rewrite parameter names with a rule set",
		Example: `  hfval rules apply fitted alpha_JES gamma_stat_SR_bin_0
  hfval rules apply nuisance lumi --trace`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := app.Rules().Get(args[0])
			if err != nil {
				return err
			}
			names := args[1:]

			format, err := output.ParseFormat(app.OutputFormat())
			if err != nil {
				return err
			}

			rewrites := make([]Rewrite, len(names))
			var unstable []string
			for i, name := range names {
				rewrites[i] = Rewrite{Input: name, Canonical: rs.Canonicalize(name), Unstable: !rs.Stable(name)}
				if trace {
					rewrites[i].Steps = rs.Trace(name)
				}
				if rewrites[i].Unstable {
					unstable = append(unstable, fmt.Sprintf("%s -> %s -> %s",
						name, rewrites[i].Canonical, rs.Canonicalize(rewrites[i].Canonical)))
				}
			}
			if len(unstable) > 0 {
				warning := alerts.NewWarning(fmt.Sprintf("%d name(s) change again on a second pass of %s", len(unstable), rs.Name)).
					WithDetails(unstable...)
				if err := alerts.NewFormatWriter(cmd.ErrOrStderr(), format).WriteAlert(warning); err != nil {
					return err
				}
			}

			return output.Write(cmd.OutOrStdout(), format, rewrites, func(bool) table.Data {
				if trace {
					return table.TraceToTableData(rs, names)
				}
				rows := make([][]string, len(rewrites))
				for i, r := range rewrites {
					rows[i] = []string{r.Input, r.Canonical}
				}
				return table.Data{Headers: []string{"Input", "Canonical"}, Rows: rows}
			})
		},
	}

	cmd.Flags().BoolVar(&trace, "trace", false, "show the name after every rule")
	return cmd
}
