package rules

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyhf/hfval/internal/cmd/application"
	"github.com/pyhf/hfval/pkg/errors"
	"github.com/pyhf/hfval/pkg/reconcile"
)

func execute(t *testing.T, app *application.Mock, args ...string) (string, error) {
	t.Helper()
	stdout, _, err := executeAll(t, app, args...)
	return stdout, err
}

func executeAll(t *testing.T, app *application.Mock, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := NewCommand(app)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func jsonApp() *application.Mock {
	return &application.Mock{OutputFormatFunc: func() string { return "json" }}
}

func TestList(t *testing.T) {
	stdout, err := execute(t, &application.Mock{}, "list")
	require.NoError(t, err)
	for _, name := range []string{reconcile.RuleSetFitted, reconcile.RuleSetNuisance, reconcile.RuleSetFittedCuts} {
		assert.Contains(t, stdout, name)
	}
}

func TestListIncludesRegistered(t *testing.T) {
	registry := reconcile.NewRegistry()
	custom, err := reconcile.NewRuleSet("mine", "custom", reconcile.Pattern("bin", `_bin\d*$`, ""))
	require.NoError(t, err)
	require.NoError(t, registry.Register(custom))

	mock := jsonApp()
	mock.RulesFunc = func() *reconcile.Registry { return registry }
	stdout, err := execute(t, mock, "list")
	require.NoError(t, err)

	var sets []reconcile.RuleSet
	require.NoError(t, json.Unmarshal([]byte(stdout), &sets))
	names := make([]string, len(sets))
	for i, s := range sets {
		names[i] = s.Name
	}
	assert.Empty(t, cmp.Diff([]string{"fitted", "fitted-cuts", "mine", "nuisance"}, names))
}

func TestShow(t *testing.T) {
	stdout, err := execute(t, &application.Mock{}, "show", "fitted")
	require.NoError(t, err)
	assert.Contains(t, stdout, "gamma_stat_ -> staterror_")
	assert.Contains(t, stdout, "Differences from nuisance")

	_, err = execute(t, &application.Mock{}, "show", "absent")
	assert.True(t, errors.IsNotFound(err))
}

func TestApply(t *testing.T) {
	stdout, err := execute(t, jsonApp(), "apply", "fitted", "alpha_gamma_stat_lumi_bin0", "alpha_JES")
	require.NoError(t, err)

	var rewrites []Rewrite
	require.NoError(t, json.Unmarshal([]byte(stdout), &rewrites))
	want := []Rewrite{
		{Input: "alpha_gamma_stat_lumi_bin0", Canonical: "staterror_Lumi0"},
		{Input: "alpha_JES", Canonical: "JES"},
	}
	assert.Empty(t, cmp.Diff(want, rewrites))
}

func TestApplyTrace(t *testing.T) {
	stdout, err := execute(t, &application.Mock{}, "apply", "nuisance", "alpha_Lumi", "--trace")
	require.NoError(t, err)
	assert.Contains(t, stdout, "alpha_Lumi")
	assert.Contains(t, stdout, " lumi ")
}

func TestApplyWarnsOnUnstableName(t *testing.T) {
	stdout, err := execute(t, jsonApp(), "apply", "fitted-cuts", "staterror_SR_cuts_0_0", "alpha_JES")
	require.NoError(t, err)

	var rewrites []Rewrite
	require.NoError(t, json.Unmarshal([]byte(stdout), &rewrites))
	want := []Rewrite{
		{Input: "staterror_SR_cuts_0_0", Canonical: "staterror_SR_cuts_0", Unstable: true},
		{Input: "alpha_JES", Canonical: "JES"},
	}
	assert.Empty(t, cmp.Diff(want, rewrites))

	_, stderr, err := executeAll(t, &application.Mock{}, "apply", "fitted-cuts", "staterror_SR_cuts_0_0", "alpha_JES")
	require.NoError(t, err)
	assert.Contains(t, stderr, "1 name(s) change again on a second pass of fitted-cuts")
	assert.Contains(t, stderr, "staterror_SR_cuts_0_0 -> staterror_SR_cuts_0 -> staterror_SR_cuts")
}

func TestApplyRequiresNames(t *testing.T) {
	_, err := execute(t, &application.Mock{}, "apply", "fitted")
	assert.Error(t, err)
}
