package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pyhf/hfval/pkg/errors"
	"github.com/pyhf/hfval/pkg/reconcile"
)

// isolate points HOME at an empty directory so a user config is not picked up.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LOG_LEVEL", "")
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".hfval.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	return path
}

// TestLoadConfig verifies the defaults.
func TestLoadConfig(t *testing.T) {
	isolate(t)

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if config.FittedRules != reconcile.RuleSetFitted {
		t.Errorf("FittedRules = %s, want %s", config.FittedRules, reconcile.RuleSetFitted)
	}
	if config.NuisanceRules != reconcile.RuleSetNuisance {
		t.Errorf("NuisanceRules = %s, want %s", config.NuisanceRules, reconcile.RuleSetNuisance)
	}
	if config.ExpandPolicy != string(reconcile.DefaultExpansionPolicy) {
		t.Errorf("ExpandPolicy = %s, want %s", config.ExpandPolicy, reconcile.DefaultExpansionPolicy)
	}
	if config.LogFormat == "" {
		t.Error("LogFormat not set to default")
	}
}

// TestConfig_File verifies keys and custom rule sets read from a file.
func TestConfig_File(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
rules:
  fitted: strict
expand_policy: multi-only
measurement: NormalMeasurement
rulesets:
  - name: strict
    description: fitted with bin indices dropped
    extends: fitted
    rules:
      - name: bin-index
        match: '\d+$'
        replace: ""
        regex: true
`)

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if config.FittedRules != "strict" {
		t.Errorf("FittedRules = %s, want strict", config.FittedRules)
	}
	if config.NuisanceRules != reconcile.RuleSetNuisance {
		t.Errorf("NuisanceRules = %s, want default", config.NuisanceRules)
	}
	if config.ExpandPolicy != "multi-only" {
		t.Errorf("ExpandPolicy = %s, want multi-only", config.ExpandPolicy)
	}
	if config.Measurement != "NormalMeasurement" {
		t.Errorf("Measurement = %s, want NormalMeasurement", config.Measurement)
	}
	if len(config.RuleSets) != 1 {
		t.Fatalf("RuleSets has %d entries, want 1", len(config.RuleSets))
	}

	registry, err := config.Registry()
	if err != nil {
		t.Fatalf("Registry() failed: %v", err)
	}
	strict, err := registry.Get("strict")
	if err != nil {
		t.Fatalf("Get(strict) failed: %v", err)
	}
	if len(strict.Rules) != 5 {
		t.Errorf("strict has %d rules, want 5", len(strict.Rules))
	}
	if got := strict.Canonicalize("alpha_gamma_stat_lumi_bin0"); got != "staterror_Lumi" {
		t.Errorf("Canonicalize() = %s, want staterror_Lumi", got)
	}
}

// TestConfig_Environment verifies HFVAL_ prefixed variables.
func TestConfig_Environment(t *testing.T) {
	isolate(t)
	t.Setenv("HFVAL_EXPAND_POLICY", "multi-only")
	t.Setenv("HFVAL_MEASUREMENT", "meas")
	t.Setenv("HFVAL_FORMAT", "json")

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if config.ExpandPolicy != "multi-only" {
		t.Errorf("ExpandPolicy = %s, want multi-only", config.ExpandPolicy)
	}
	if config.Measurement != "meas" {
		t.Errorf("Measurement = %s, want meas", config.Measurement)
	}
	if config.Format != "json" {
		t.Errorf("Format = %s, want json", config.Format)
	}
}

// TestConfig_Errors verifies invalid configuration is rejected.
func TestConfig_Errors(t *testing.T) {
	isolate(t)

	tests := []struct {
		name    string
		content string
		check   func(error) bool
	}{
		{
			name:    "bad policy",
			content: "expand_policy: sometimes\n",
			check:   errors.IsValidationError,
		},
		{
			name:    "unknown rule set",
			content: "rules:\n  nuisance: absent\n",
			check:   errors.IsValidationError,
		},
		{
			name:    "unknown base",
			content: "rulesets:\n  - name: x\n    extends: absent\n    rules: []\n",
			check:   errors.IsNotFound,
		},
		{
			name:    "bad regex",
			content: "rulesets:\n  - name: x\n    rules:\n      - match: '('\n        regex: true\n",
			check: func(err error) bool {
				var cfgErr *errors.ConfigError
				return errors.As(err, &cfgErr)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				_, err = config.Registry()
			}
			if err == nil {
				t.Fatal("expected an error")
			}
			if !tt.check(err) {
				t.Errorf("unexpected error type: %v", err)
			}
		})
	}
}

// TestConfig_MissingFile verifies an explicit config file must exist.
func TestConfig_MissingFile(t *testing.T) {
	isolate(t)

	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	var cfgErr *errors.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("LoadConfig() error = %v, want ConfigError", err)
	}
}

// TestConfig_UpdateFromFlags verifies flags take precedence.
func TestConfig_UpdateFromFlags(t *testing.T) {
	config := &Config{Format: "yaml", LogLevel: "warn"}

	config.UpdateFromFlags(true, false, true, "", "")
	if !config.Verbose || !config.NoColor {
		t.Error("boolean flags not applied")
	}
	if config.Format != "yaml" || config.LogLevel != "warn" {
		t.Error("empty string flags must not override configured values")
	}

	config.UpdateFromFlags(false, true, false, "json", "debug")
	if config.Format != "json" || config.LogLevel != "debug" {
		t.Errorf("Format = %s, LogLevel = %s, want json, debug", config.Format, config.LogLevel)
	}
}
