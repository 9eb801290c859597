package hfval

import (
	"github.com/rs/zerolog"

	"github.com/pyhf/hfval/pkg/errors"
	"github.com/pyhf/hfval/pkg/reconcile"
)

// config holds Validator settings.
type config struct {
	fittedRules   *reconcile.RuleSet
	nuisanceRules *reconcile.RuleSet
	policy        reconcile.ExpansionPolicy
	canonicalizeB bool
	measurement   string
	logger        *zerolog.Logger
}

func defaultConfig() *config {
	registry := reconcile.NewRegistry()
	fitted, _ := registry.Get(reconcile.RuleSetFitted)
	nuisance, _ := registry.Get(reconcile.RuleSetNuisance)
	return &config{
		fittedRules:   fitted,
		nuisanceRules: nuisance,
		policy:        reconcile.DefaultExpansionPolicy,
		canonicalizeB: true,
	}
}

// Option is a function that configures a Validator.
type Option func(*config) error

func (c *config) apply(opts ...Option) (*config, error) {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// WithFittedRules sets the rule set of the fitted-value flow.
func WithFittedRules(rules *reconcile.RuleSet) Option {
	return func(c *config) error {
		if rules == nil {
			return &errors.ValidationError{Field: "rules", Message: "cannot be nil"}
		}
		c.fittedRules = rules
		return nil
	}
}

// WithNuisanceRules sets the rule set of the name-set flow.
func WithNuisanceRules(rules *reconcile.RuleSet) Option {
	return func(c *config) error {
		if rules == nil {
			return &errors.ValidationError{Field: "rules", Message: "cannot be nil"}
		}
		c.nuisanceRules = rules
		return nil
	}
}

// WithExpansionPolicy sets how vector parameters are named.
func WithExpansionPolicy(policy reconcile.ExpansionPolicy) Option {
	return func(c *config) error {
		p, err := reconcile.ParseExpansionPolicy(string(policy))
		if err != nil {
			return err
		}
		c.policy = p
		return nil
	}
}

// WithCanonicalizedPyhfNames controls whether the nuisance flow also
// rewrites pyhf names before taking set differences.
func WithCanonicalizedPyhfNames(enabled bool) Option {
	return func(c *config) error {
		c.canonicalizeB = enabled
		return nil
	}
}

// WithMeasurement sets the default pyhf measurement.
func WithMeasurement(name string) Option {
	return func(c *config) error {
		c.measurement = name
		return nil
	}
}

// WithLogger sets the logger. Without it the logger is taken from the context.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) error {
		c.logger = logger
		return nil
	}
}
