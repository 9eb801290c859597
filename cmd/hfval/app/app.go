// Package app provides the application context and dependency management
// for the hfval CLI. It centralizes configuration, the rule-set registry
// and logging, and hands them to commands through application.Application.
package app

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/pyhf/hfval"
	"github.com/pyhf/hfval/cmd/application"
	"github.com/pyhf/hfval/pkg/errors"
	"github.com/pyhf/hfval/pkg/reconcile"
)

// App represents the hfval application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	mu       sync.RWMutex
	config   *Config
	logger   *zerolog.Logger
	registry *reconcile.Registry
}

// New creates a new App instance with the given version information.
// Configuration is loaded from the default locations and can be
// replaced using functional options.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if app.registry == nil {
		registry, err := app.config.Registry()
		if err != nil {
			return nil, err
		}
		app.registry = registry
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.Config().Format
}

// NoColor reports whether colored output is disabled.
func (a *App) NoColor() bool {
	return a.Config().NoColor
}

// Rules returns the rule-set registry.
func (a *App) Rules() *reconcile.Registry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.registry
}

// Defaults returns the configured validation defaults.
func (a *App) Defaults() application.Defaults {
	c := a.Config()
	return application.Defaults{
		FittedRules:   c.FittedRules,
		NuisanceRules: c.NuisanceRules,
		ExpandPolicy:  c.ExpandPolicy,
		Measurement:   c.Measurement,
	}
}

// Validator returns a validator built from the configured defaults.
// opts are applied last, so command flags override configuration.
func (a *App) Validator(opts ...hfval.Option) (hfval.Validator, error) {
	defaults := a.Defaults()
	registry := a.Rules()

	fitted, err := registry.Get(defaults.FittedRules)
	if err != nil {
		return nil, err
	}
	nuisance, err := registry.Get(defaults.NuisanceRules)
	if err != nil {
		return nil, err
	}

	base := []hfval.Option{
		hfval.WithFittedRules(fitted),
		hfval.WithNuisanceRules(nuisance),
		hfval.WithExpansionPolicy(reconcile.ExpansionPolicy(defaults.ExpandPolicy)),
		hfval.WithMeasurement(defaults.Measurement),
		hfval.WithLogger(a.Logger()),
	}

	v, err := hfval.New(append(base, opts...)...)
	if err != nil {
		return nil, errors.WrapResource("create", "validator", "", err)
	}
	return v, nil
}

// reload replaces the configuration and rebuilds the registry and logger.
func (a *App) reload(config *Config) error {
	registry, err := config.Registry()
	if err != nil {
		return err
	}
	logger := NewLogger(config)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.config = config
	a.registry = registry
	a.logger = &logger
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithRegistry sets a custom rule-set registry (useful for testing).
func WithRegistry(registry *reconcile.Registry) Option {
	return func(a *App) error {
		a.registry = registry
		return nil
	}
}

// Ensure App implements application.Application at compile time.
var _ application.Application = (*App)(nil)
