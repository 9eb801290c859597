// Package hfval validates a pyhf likelihood against the ROOT/HistFactory
// workspace it was converted from.
//
// A Validator loads the legacy parameter dump and the pyhf model, lays the
// pyhf parameters out under their indexed names and reconciles both sides
// with a named rule set:
//
//	v, err := hfval.New()
//	if err != nil {
//		return err
//	}
//	cmp, err := v.CompareFitted(ctx, hfval.Inputs{
//		RootWorkspace: "combined_params.txt",
//		PyhfJSON:      "BkgOnly.json",
//		PyhfPatch:     "signal.patch.json",
//		PyhfFit:       "bestfit.json",
//	})
package hfval

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/pyhf/hfval/pkg/errors"
	"github.com/pyhf/hfval/pkg/histfactory"
	"github.com/pyhf/hfval/pkg/logging"
	"github.com/pyhf/hfval/pkg/pyhf"
	"github.com/pyhf/hfval/pkg/reconcile"
)

// Validator runs the two comparison flows.
type Validator interface {
	// CompareFitted compares fitted values parameter by parameter.
	CompareFitted(ctx context.Context, in Inputs) (*reconcile.Comparison, error)

	// CompareNuisance reports the parameter names found on only one side.
	CompareNuisance(ctx context.Context, in Inputs) (*reconcile.Difference, error)

	// ModernParameters returns the pyhf parameters under their expanded names.
	ModernParameters(ctx context.Context, in Inputs) (map[string]float64, error)

	// OnMissingParameter registers a callback for unresolved side A names.
	OnMissingParameter(MissingParameterHook)
}

// Inputs names the files of one comparison.
type Inputs struct {
	// RootWorkspace is the parameter dump exported from the combined workspace.
	RootWorkspace string
	// PyhfJSON is the pyhf workspace, possibly background-only.
	PyhfJSON string
	// PyhfPatch is an optional RFC 6902 patch applied to PyhfJSON.
	PyhfPatch string
	// PyhfFit is an optional best-fit file; without it pyhf init values are used.
	PyhfFit string
	// Measurement selects the pyhf measurement; empty selects the first.
	Measurement string
}

// Validate checks that both model files are named.
func (in Inputs) Validate() error {
	if in.RootWorkspace == "" {
		return &errors.ValidationError{Field: "root-workspace", Message: "is required"}
	}
	if in.PyhfJSON == "" {
		return &errors.ValidationError{Field: "pyhf-json", Message: "is required"}
	}
	return nil
}

type validator struct {
	config *config
	hooks  *hooks
}

// New creates a Validator. Without options the fitted flow uses the
// "fitted" rule set, the nuisance flow the "nuisance" rule set, and both
// expand vectors with the multi-or-staterror policy.
func New(opts ...Option) (Validator, error) {
	c, err := defaultConfig().apply(opts...)
	if err != nil {
		return nil, err
	}
	return &validator{config: c, hooks: newHooks()}, nil
}

func (v *validator) OnMissingParameter(fn MissingParameterHook) {
	v.hooks.OnMissingParameter(fn)
}

func (v *validator) logger(ctx context.Context) *zerolog.Logger {
	if v.config.logger != nil {
		return v.config.logger
	}
	return logging.FromContext(ctx)
}

func (v *validator) reconciler(ctx context.Context, rules *reconcile.RuleSet) (reconcile.Reconciler, error) {
	return reconcile.New(
		reconcile.WithRuleSet(rules),
		reconcile.WithExpansionPolicy(v.config.policy),
		reconcile.WithCanonicalizedB(v.config.canonicalizeB),
		reconcile.WithLogger(v.logger(ctx)),
	)
}

func (v *validator) CompareFitted(ctx context.Context, in Inputs) (*reconcile.Comparison, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	ctx = logging.WithOperation(ctx, "compare-fitted")
	rec, err := v.reconciler(ctx, v.config.fittedRules)
	if err != nil {
		return nil, err
	}

	legacy, err := loadLegacy(ctx, in.RootWorkspace)
	if err != nil {
		return nil, err
	}
	model, fit, err := v.loadModern(ctx, in)
	if err != nil {
		return nil, err
	}
	modern, err := expandModel(rec, model, fit)
	if err != nil {
		return nil, err
	}

	result := rec.Compare(legacy.Values(), modern)
	for _, missing := range result.Missing {
		v.hooks.triggerMissing(missing)
	}
	v.logger(ctx).Info().
		Int("compared", result.Resolved()).
		Int("missing", len(result.Missing)).
		Str("rules", rec.RuleSet().Name).
		Msg("Compared fitted parameters")
	return result, nil
}

func (v *validator) CompareNuisance(ctx context.Context, in Inputs) (*reconcile.Difference, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	ctx = logging.WithOperation(ctx, "compare-nuisance")
	rec, err := v.reconciler(ctx, v.config.nuisanceRules)
	if err != nil {
		return nil, err
	}

	legacy, err := loadLegacy(ctx, in.RootWorkspace)
	if err != nil {
		return nil, err
	}
	in.PyhfFit = ""
	model, _, err := v.loadModern(ctx, in)
	if err != nil {
		return nil, err
	}

	var modern []string
	for _, ps := range model.ParameterSets {
		modern = append(modern, rec.ExpandNames(ps.Name, ps.Slice.Len())...)
	}
	diff := rec.DiffNames(legacy.Names(), modern)
	v.logger(ctx).Info().
		Int("only_root", len(diff.OnlyA)).
		Int("only_pyhf", len(diff.OnlyB)).
		Str("rules", rec.RuleSet().Name).
		Msg("Compared nuisance parameter names")
	return diff, nil
}

func (v *validator) ModernParameters(ctx context.Context, in Inputs) (map[string]float64, error) {
	if in.PyhfJSON == "" {
		return nil, &errors.ValidationError{Field: "pyhf-json", Message: "is required"}
	}
	rec, err := v.reconciler(ctx, v.config.fittedRules)
	if err != nil {
		return nil, err
	}
	model, fit, err := v.loadModern(ctx, in)
	if err != nil {
		return nil, err
	}
	return expandModel(rec, model, fit)
}

func loadLegacy(ctx context.Context, path string) (*histfactory.Parameters, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.ErrCanceled
	}
	params, err := histfactory.LoadParameters(path)
	if err != nil {
		return nil, err
	}
	logging.FromContext(logging.WithFile(ctx, path)).Debug().
		Int("parameters", params.Len()).
		Msg("Loaded legacy parameters")
	return params, nil
}

func (v *validator) loadModern(ctx context.Context, in Inputs) (*pyhf.Model, *pyhf.FitResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, errors.ErrCanceled
	}
	ws, err := pyhf.LoadWorkspace(in.PyhfJSON)
	if err != nil {
		return nil, nil, err
	}
	if in.PyhfPatch != "" {
		if err := ctx.Err(); err != nil {
			return nil, nil, errors.ErrCanceled
		}
		patch, err := pyhf.LoadPatch(in.PyhfPatch)
		if err != nil {
			return nil, nil, err
		}
		if ws, err = pyhf.ApplyPatch(ws, patch); err != nil {
			return nil, nil, errors.WrapResource("apply", "patch", in.PyhfPatch, err)
		}
	}

	measurement := in.Measurement
	if measurement == "" {
		measurement = v.config.measurement
	}
	model, err := ws.Model(measurement)
	if err != nil {
		return nil, nil, errors.WrapResource("build", "model", in.PyhfJSON, err)
	}

	var fit *pyhf.FitResult
	if in.PyhfFit != "" {
		if err := ctx.Err(); err != nil {
			return nil, nil, errors.ErrCanceled
		}
		if fit, err = pyhf.LoadFitResult(in.PyhfFit); err != nil {
			return nil, nil, err
		}
	} else {
		v.logger(ctx).Debug().Str("file", in.PyhfJSON).Msg("No pyhf fit supplied, using init values")
	}
	return model, fit, nil
}

// expandModel lays every parameter set out under its indexed names.
func expandModel(rec reconcile.Reconciler, model *pyhf.Model, fit *pyhf.FitResult) (map[string]float64, error) {
	values, err := model.Values(fit)
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, model.Size())
	for _, ps := range model.ParameterSets {
		entries, err := rec.Expand(ps.Name, ps.Slice.Len(), values[ps.Name])
		if err != nil {
			return nil, err
		}
		for name, value := range entries {
			out[name] = value
		}
	}
	return out, nil
}

// SortedNames returns the keys of a parameter map in order.
func SortedNames(params map[string]float64) []string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
