// Package application provides test doubles for cmd/application.
package application

import (
	"github.com/rs/zerolog"

	"github.com/pyhf/hfval"
	"github.com/pyhf/hfval/cmd/application"
	"github.com/pyhf/hfval/pkg/reconcile"
)

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a working default.
//
// Example Usage:
//
//	mock := &application.Mock{
//	    OutputFormatFunc: func() string { return "json" },
//	}
//	cmd := rules.NewCommand(mock)
type Mock struct {
	ValidatorFunc    func(opts ...hfval.Option) (hfval.Validator, error)
	RulesFunc        func() *reconcile.Registry
	DefaultsFunc     func() application.Defaults
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	NoColorFunc      func() bool
	VersionFunc      func() string
	CommitFunc       func() string
	DateFunc         func() string
	BuiltByFunc      func() string
}

// Validator returns a validator from the mock function or a default one.
func (m *Mock) Validator(opts ...hfval.Option) (hfval.Validator, error) {
	if m.ValidatorFunc != nil {
		return m.ValidatorFunc(opts...)
	}
	return hfval.New(append([]hfval.Option{hfval.WithLogger(m.Logger())}, opts...)...)
}

// Rules returns a registry from the mock function or the built-in one.
func (m *Mock) Rules() *reconcile.Registry {
	if m.RulesFunc != nil {
		return m.RulesFunc()
	}
	return reconcile.NewRegistry()
}

// Defaults returns defaults from the mock function or the built-in choices.
func (m *Mock) Defaults() application.Defaults {
	if m.DefaultsFunc != nil {
		return m.DefaultsFunc()
	}
	return application.Defaults{
		FittedRules:   reconcile.RuleSetFitted,
		NuisanceRules: reconcile.RuleSetNuisance,
		ExpandPolicy:  string(reconcile.DefaultExpansionPolicy),
	}
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns output format using the mock function or "", the
// value App reports when --format is not set.
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return ""
}

// NoColor returns the mock value or true.
func (m *Mock) NoColor() bool {
	if m.NoColorFunc != nil {
		return m.NoColorFunc()
	}
	return true
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builtBy using the mock function or "test".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "test"
}

// Ensure Mock implements Application at compile time.
var _ application.Application = (*Mock)(nil)
