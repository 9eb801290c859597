package reconcile

import (
	"github.com/rs/zerolog"

	"github.com/pyhf/hfval/pkg/constants"
	"github.com/pyhf/hfval/pkg/errors"
	"github.com/pyhf/hfval/pkg/logging"
)

// options configures a reconciler.
type options struct {
	rules         *RuleSet
	policy        ExpansionPolicy
	canonicalizeB bool
	sideA         string
	sideB         string
	logger        *zerolog.Logger
}

func defaultOptions() *options {
	rules, _ := NewRegistry().Get(RuleSetFitted)
	return &options{
		rules:         rules,
		policy:        DefaultExpansionPolicy,
		canonicalizeB: true,
		sideA:         constants.SideLegacy,
		sideB:         constants.SideModern,
		logger:        &logging.Nop,
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithRuleSet sets the canonicalization rules.
func WithRuleSet(rules *RuleSet) Option {
	return func(o *options) error {
		if rules == nil {
			return &errors.ValidationError{Field: "rules", Message: "cannot be nil"}
		}
		o.rules = rules
		return nil
	}
}

// WithExpansionPolicy sets the vector expansion policy.
func WithExpansionPolicy(policy ExpansionPolicy) Option {
	return func(o *options) error {
		p, err := ParseExpansionPolicy(string(policy))
		if err != nil {
			return err
		}
		o.policy = p
		return nil
	}
}

// WithCanonicalizedB controls whether DiffNames also canonicalizes side B.
func WithCanonicalizedB(enabled bool) Option {
	return func(o *options) error {
		o.canonicalizeB = enabled
		return nil
	}
}

// WithSides sets the labels used in diagnostics for side A and side B.
func WithSides(a, b string) Option {
	return func(o *options) error {
		if a == "" || b == "" {
			return &errors.ValidationError{Field: "sides", Message: "side labels cannot be empty"}
		}
		o.sideA, o.sideB = a, b
		return nil
	}
}

// WithLogger sets the logger used for missing-parameter diagnostics.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		if logger != nil {
			o.logger = logger
		}
		return nil
	}
}
