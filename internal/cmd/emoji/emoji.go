// Package emoji provides symbol constants for CLI output.
// These symbols create a consistent visual language across all command-line commands.
package emoji

const (
	// Success represents successful completion or a selected default.
	Success = "✓"

	// Error represents failures.
	Error = "✗"

	// Warning represents non-fatal issues such as unresolved parameters.
	Warning = "!"

	// Missing fills table cells with no counterpart value.
	Missing = "-"

	// Info represents informational messages.
	Info = "i"
)
