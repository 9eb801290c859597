// Package reconcile matches fitted parameters between two statistical model
// back ends that name the same parameter differently.
//
// Names from side A (the ROOT/HistFactory workspace) are canonicalized by an
// ordered RuleSet and looked up among side B (the pyhf model) names. Vector
// parameters on side B are expanded into indexed entries according to an
// ExpansionPolicy. Nothing in this package performs I/O.
package reconcile

import (
	"github.com/rs/zerolog"
)

// Reconciler compares parameter names and values between two sides.
type Reconciler interface {
	// Canonicalize rewrites a side A name into side B form.
	Canonicalize(name string) string

	// Expand maps a parameter slice to entry names using the configured policy.
	Expand(name string, sliceLength int, values []float64) (map[string]float64, error)

	// ExpandNames returns entry names for a parameter slice.
	ExpandNames(name string, sliceLength int) []string

	// Compare matches every side A value against side B.
	Compare(sourceA, sourceB map[string]float64) *Comparison

	// DiffNames canonicalizes both name lists and reports the names unique to each.
	DiffNames(namesA, namesB []string) *Difference

	// RuleSet returns the active rules.
	RuleSet() *RuleSet

	// Policy returns the active expansion policy.
	Policy() ExpansionPolicy
}

type reconciler struct {
	rules         *RuleSet
	policy        ExpansionPolicy
	canonicalizeB bool
	sideA         string
	sideB         string
	logger        *zerolog.Logger
}

// New creates a Reconciler. Without options it uses the fitted rule set and
// the multi-or-staterror expansion policy.
func New(opts ...Option) (Reconciler, error) {
	o, err := defaultOptions().apply(opts...)
	if err != nil {
		return nil, err
	}
	return &reconciler{
		rules:         o.rules,
		policy:        o.policy,
		canonicalizeB: o.canonicalizeB,
		sideA:         o.sideA,
		sideB:         o.sideB,
		logger:        o.logger,
	}, nil
}

func (r *reconciler) Canonicalize(name string) string {
	return r.rules.Canonicalize(name)
}

func (r *reconciler) Expand(name string, sliceLength int, values []float64) (map[string]float64, error) {
	return ExpandVector(name, sliceLength, values, r.policy)
}

func (r *reconciler) ExpandNames(name string, sliceLength int) []string {
	return ExpandNames(name, sliceLength, r.policy)
}

func (r *reconciler) Compare(sourceA, sourceB map[string]float64) *Comparison {
	result := compare(sourceA, sourceB, r.rules.Canonicalize, r.sideB)
	for _, missing := range result.Missing {
		r.logger.Warn().
			Str("param", missing.Canonical).
			Str("source", missing.Parameter).
			Msgf("Parameter %s missing from %s file", missing.Canonical, r.sideB)
	}
	r.logger.Debug().
		Str("rules", r.rules.Name).
		Int("resolved", len(result.Records)).
		Int("missing", len(result.Missing)).
		Msg("Comparison complete")
	return result
}

func (r *reconciler) DiffNames(namesA, namesB []string) *Difference {
	a := r.rules.CanonicalizeAll(namesA)
	b := namesB
	if r.canonicalizeB {
		b = r.rules.CanonicalizeAll(namesB)
	}
	onlyA, onlyB := DiffNameSets(a, b)
	r.logger.Debug().
		Str("rules", r.rules.Name).
		Int("only_"+r.sideA, len(onlyA)).
		Int("only_"+r.sideB, len(onlyB)).
		Msg("Name sets compared")
	return &Difference{OnlyA: onlyA, OnlyB: onlyB}
}

func (r *reconciler) RuleSet() *RuleSet {
	return r.rules
}

func (r *reconciler) Policy() ExpansionPolicy {
	return r.policy
}
