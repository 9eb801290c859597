// Package constants provides shared constants used throughout hfval.
// This includes file permissions, report layout and thresholds that
// should be consistent across the loaders, the reporter and the CLI.
package constants

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Report layout constants. Reports written with these widths are read
// back by the summarize command, so changing them breaks older reports.
const (
	// ParamColumnWidth is the width of the parameter name column
	ParamColumnWidth = 42

	// ValueColumnWidth is the width of every numeric column
	ValueColumnWidth = 18
)

// Side labels used in reports and diagnostics
const (
	// SideModern labels values coming from the JSON (pyhf) model
	SideModern = "pyhf"

	// SideLegacy labels values coming from the ROOT workspace
	SideLegacy = "root"
)

// Systematics thresholds
const (
	// DefaultOutlierThreshold flags bins whose combined relative systematic exceeds it
	DefaultOutlierThreshold = 1.0

	// DefaultLargeSystThreshold lists individual modifiers above it
	DefaultLargeSystThreshold = 0.5
)

// Summary histogram binning
const (
	// RelativeBins is the number of log-spaced edges for |% diff|, spanning 10^0..10^5
	RelativeBins = 50

	// RelativeMinExp and RelativeMaxExp bound the |% diff| histogram in powers of ten
	RelativeMinExp = 0
	RelativeMaxExp = 5

	// AbsoluteBins is the number of linear edges for abs diff, spanning -1..1
	AbsoluteBins = 200

	// AbsoluteClip bounds abs diff before binning
	AbsoluteClip = 1.0
)

// Configuration
const (
	// ConfigName is the config file name searched in $HOME and the working directory
	ConfigName = ".hfval"

	// EnvPrefix prefixes environment overrides (HFVAL_RULES, HFVAL_EXPAND_POLICY)
	EnvPrefix = "HFVAL"
)
