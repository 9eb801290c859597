// Package application provides the application interface for hfval commands.
//
// The Application interface defines the contract between the application layer and
// command implementations, enabling dependency injection and testability.
//
// Usage in Commands:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            v, err := app.Validator()
//	            if err != nil {
//	                return err
//	            }
//	            cmp, err := v.CompareFitted(cmd.Context(), inputs)
//	            // ... format cmp
//	        },
//	    }
//	}
//
// Testing with Mocks:
//
//	mock := &application.Mock{
//	    LoggerFunc: func() *zerolog.Logger {
//	        logger := zerolog.Nop()
//	        return &logger
//	    },
//	}
//	cmd := compare.NewCommand(mock)
package application

import (
	"github.com/rs/zerolog"

	"github.com/pyhf/hfval"
	"github.com/pyhf/hfval/pkg/reconcile"
)

// Defaults are the configured choices commands fall back to when a flag
// is not given.
type Defaults struct {
	FittedRules   string
	NuisanceRules string
	ExpandPolicy  string
	Measurement   string
}

// Application provides the application interface that commands need.
// The App struct from cmd/hfval/app implements this interface.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Validator returns a validator configured from the application
	// defaults, with opts applied on top.
	Validator(opts ...hfval.Option) (hfval.Validator, error)

	// Rules returns the registry of built-in and configured rule sets.
	Rules() *reconcile.Registry

	// Defaults returns the configured rule sets, policy and measurement.
	Defaults() Defaults

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, wide, json, yaml).
	OutputFormat() string

	// NoColor reports whether colored output is disabled.
	NoColor() bool

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
