package compare

import (
	"github.com/spf13/cobra"

	"github.com/pyhf/hfval"
	"github.com/pyhf/hfval/cmd/application"
	"github.com/pyhf/hfval/internal/cmd/alerts"
	"github.com/pyhf/hfval/pkg/reconcile"
)

// Flags holds the inputs shared by both comparison flows.
type Flags struct {
	RootWorkspace string
	PyhfJSON      string
	PyhfPatch     string
	Measurement   string
	Rules         string
	Expand        string
}

func addFlags(cmd *cobra.Command, flags *Flags) {
	cmd.Flags().StringVar(&flags.RootWorkspace, "root-workspace", "", "legacy parameter dump (text, json or yaml)")
	cmd.Flags().StringVar(&flags.PyhfJSON, "pyhf-json", "", "pyhf workspace JSON")
	cmd.Flags().StringVar(&flags.PyhfPatch, "pyhf-patch", "", "JSON patch applied to the pyhf workspace")
	cmd.Flags().StringVar(&flags.Measurement, "measurement", "", "pyhf measurement (default: configured or first)")
	cmd.Flags().StringVar(&flags.Rules, "rules", "", "rule set used to rewrite legacy names")
	cmd.Flags().StringVar(&flags.Expand, "expand", "", "vector expansion policy: multi-or-staterror, multi-only")
	_ = cmd.MarkFlagRequired("root-workspace")
	_ = cmd.MarkFlagRequired("pyhf-json")
}

func (f *Flags) inputs() hfval.Inputs {
	return hfval.Inputs{
		RootWorkspace: f.RootWorkspace,
		PyhfJSON:      f.PyhfJSON,
		PyhfPatch:     f.PyhfPatch,
		Measurement:   f.Measurement,
	}
}

// options resolves the flag overrides into validator options. flowDefault
// is the configured rule set of the flow; the selected rule set is
// returned with them.
func (f *Flags) options(app application.Application, flowDefault string, with func(*reconcile.RuleSet) hfval.Option) ([]hfval.Option, *reconcile.RuleSet, error) {
	name := f.Rules
	if name == "" {
		name = flowDefault
	}
	rs, err := app.Rules().Get(name)
	if err != nil {
		return nil, nil, err
	}

	opts := []hfval.Option{with(rs)}
	if f.Expand != "" {
		policy, err := reconcile.ParseExpansionPolicy(f.Expand)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, hfval.WithExpansionPolicy(policy))
	}
	return opts, rs, nil
}

// discrepancies returns alerts for a rule set or policy that departs from
// the built-in choice of the flow.
func discrepancies(app application.Application, selected *reconcile.RuleSet, builtin string, expand string) []*alerts.Alert {
	var out []*alerts.Alert

	if selected.Name != builtin {
		if reference, err := app.Rules().Get(builtin); err == nil {
			if diffs := selected.Diff(reference); len(diffs) > 0 {
				out = append(out, alerts.NewWarning("rule set "+selected.Name+" differs from "+builtin).
					WithDetails(diffs...))
			}
		}
	}

	policy := reconcile.DefaultExpansionPolicy
	if expand == "" {
		expand = app.Defaults().ExpandPolicy
	}
	if p, err := reconcile.ParseExpansionPolicy(expand); err == nil && p != policy {
		out = append(out, alerts.NewWarning("expansion policy "+string(p)+" differs from "+string(policy)).
			WithDetails("single-entry staterror parameters keep their bare names"))
	}
	return out
}
