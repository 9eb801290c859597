package app

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/pyhf/hfval"
	"github.com/pyhf/hfval/pkg/reconcile"
)

var (
	legacyDump = filepath.Join("..", "..", "..", "pkg", "histfactory", "testdata", "combined.txt")
	workspace  = filepath.Join("..", "..", "..", "pkg", "pyhf", "testdata", "workspace.json")
)

func newTestApp(t *testing.T, opts ...Option) *App {
	t.Helper()
	isolate(t)
	logger := zerolog.Nop()
	app, err := New("1.0.0", "abc123", "2024-01-01", "test", append([]Option{WithLogger(&logger)}, opts...)...)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return app
}

func execute(t *testing.T, app *App, args ...string) (string, string, error) {
	t.Helper()
	root := app.createRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

// TestApp_New verifies app initialization.
func TestApp_New(t *testing.T) {
	app := newTestApp(t)

	if app.Version() != "1.0.0" {
		t.Errorf("Version() = %s, want 1.0.0", app.Version())
	}
	if app.Commit() != "abc123" {
		t.Errorf("Commit() = %s, want abc123", app.Commit())
	}
	if app.Date() != "2024-01-01" {
		t.Errorf("Date() = %s, want 2024-01-01", app.Date())
	}
	if app.BuiltBy() != "test" {
		t.Errorf("BuiltBy() = %s, want test", app.BuiltBy())
	}
	if app.Logger() == nil {
		t.Error("Logger() returned nil")
	}
	if app.Config() == nil {
		t.Error("Config() returned nil")
	}
	if names := app.Rules().Names(); len(names) != 3 {
		t.Errorf("Rules().Names() = %v, want the three built-in sets", names)
	}
}

// TestApp_Defaults verifies defaults mirror the configuration.
func TestApp_Defaults(t *testing.T) {
	app := newTestApp(t, WithConfig(&Config{
		FittedRules:   reconcile.RuleSetFittedCuts,
		NuisanceRules: reconcile.RuleSetNuisance,
		ExpandPolicy:  string(reconcile.ExpandMultiOnly),
		Measurement:   "meas",
	}))

	d := app.Defaults()
	if d.FittedRules != reconcile.RuleSetFittedCuts || d.ExpandPolicy != "multi-only" || d.Measurement != "meas" {
		t.Errorf("Defaults() = %+v", d)
	}
}

// TestApp_WithConfig_UnknownRuleSet verifies New validates configured rule sets.
func TestApp_WithConfig_UnknownRuleSet(t *testing.T) {
	isolate(t)
	_, err := New("1.0.0", "", "", "", WithConfig(&Config{FittedRules: "absent", NuisanceRules: "nuisance"}))
	if err == nil {
		t.Fatal("New() succeeded with an unknown rule set")
	}
}

// TestApp_Validator verifies the validator uses the configured defaults.
func TestApp_Validator(t *testing.T) {
	app := newTestApp(t)

	v, err := app.Validator()
	if err != nil {
		t.Fatalf("Validator() failed: %v", err)
	}

	params, err := v.ModernParameters(context.Background(), inputs())
	if err != nil {
		t.Fatalf("ModernParameters() failed: %v", err)
	}
	if _, ok := params["staterror_CR_0"]; !ok {
		t.Errorf("ModernParameters() = %v, want staterror_CR_0 expanded", params)
	}
}

// TestApp_Validator_ThreadSafe verifies concurrent Validator() calls are safe.
func TestApp_Validator_ThreadSafe(t *testing.T) {
	app := newTestApp(t)

	const goroutines = 50
	var wg sync.WaitGroup
	errs := make([]error, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, errs[idx] = app.Validator()
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("goroutine %d: Validator() failed: %v", i, err)
		}
	}
}

// TestExecute_Version verifies the version command.
func TestExecute_Version(t *testing.T) {
	app := newTestApp(t)

	stdout, _, err := execute(t, app, "version", "-v")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(stdout, "hfval 1.0.0") || !strings.Contains(stdout, "abc123") {
		t.Errorf("version output = %q", stdout)
	}
}

// TestExecute_CompareWithConfigFile verifies --config reloads rule sets and
// --format reaches the command.
func TestExecute_CompareWithConfigFile(t *testing.T) {
	app := newTestApp(t)
	config := writeConfig(t, `
rules:
  fitted: strict
rulesets:
  - name: strict
    extends: fitted
    rules:
      - match: FAKES
        replace: JES
`)

	stdout, _, err := execute(t, app,
		"--config", config, "--format", "json", "--log-level", "error",
		"compare", "fitted", "--root-workspace", legacyDump, "--pyhf-json", workspace)
	if err != nil {
		t.Fatalf("compare fitted failed: %v", err)
	}

	var decoded struct {
		Records []json.RawMessage `json:"records"`
		Missing []json.RawMessage `json:"missing"`
	}
	if err := json.Unmarshal([]byte(stdout), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout)
	}
	if len(decoded.Records) != 8 || len(decoded.Missing) != 0 {
		t.Errorf("records = %d, missing = %d, want 8 and 0", len(decoded.Records), len(decoded.Missing))
	}
	if app.Config().FittedRules != "strict" {
		t.Errorf("FittedRules = %s, want strict after reload", app.Config().FittedRules)
	}
}

// TestExecute_InvalidFormat verifies bad --format values are reported.
func TestExecute_InvalidFormat(t *testing.T) {
	app := newTestApp(t)

	_, _, err := execute(t, app, "--format", "csv", "rules", "list")
	if err == nil {
		t.Fatal("expected an error for --format csv")
	}
}

func inputs() hfval.Inputs {
	return hfval.Inputs{RootWorkspace: legacyDump, PyhfJSON: workspace}
}
