package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/chriserin/stepcov/internal/config"
)

func writeFiles(t *testing.T, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		require.NoError(t, os.MkdirAll(filepath.Dir(rel), 0o755))
		require.NoError(t, os.WriteFile(rel, []byte(content), 0o644))
	}
}

func setupProject(t *testing.T) {
	t.Helper()
	writeFiles(t, map[string]string{
		"features/login.feature": `@auth
Feature: Login
  Background:
    Given the app is running

  @smoke
  Scenario: Good password
    Given a user "ana"
    When they log in with password "secret"
    Then they see the dashboard

  Scenario: Bad password
    Given a user "bob"
    When they log in with password "wrong"
    Then they see an error
`,
		"features/step_definitions/login.js": `Given('the app is running', () => {});
Given('a user {string}', (name) => {});
When('they log in with password {string}', (pw) => {});
Then('they see the dashboard', () => {});
Then('they see a warning', () => {});
`,
	})
}

func runReport(t *testing.T, opts reportOptions) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, RunReport(context.Background(), &buf, config.Default(), opts))
	return buf.String()
}

func TestReport_Text(t *testing.T) {
	inTempDir(t)
	setupProject(t)

	out := runReport(t, reportOptions{})

	assert.Contains(t, out, "Step coverage")
	assert.Contains(t, out, "6/7 unique steps matched")
	assert.Contains(t, out, "features/login.feature")
	assert.Contains(t, out, "they see an error")
	assert.Contains(t, out, `closest: "they see a warning"`)
	assert.Contains(t, out, "Add more feature files")
}

func TestReport_JSON(t *testing.T) {
	inTempDir(t)
	setupProject(t)

	out := runReport(t, reportOptions{Format: "json"})

	var rep map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	summary := rep["summary"].(map[string]any)
	assert.Equal(t, float64(86), summary["stepCoverage"])
	assert.Equal(t, float64(1), summary["totalFeatures"])
	assert.Equal(t, float64(3), summary["totalScenarios"])
	assert.Equal(t, []any{"they see an error"}, rep["missingSteps"])
	assert.NotContains(t, rep, "simulations")
}

func TestReport_FormatFromConfig(t *testing.T) {
	inTempDir(t)
	setupProject(t)
	c := config.Default()
	c.Report.Format = "yaml"

	var buf bytes.Buffer
	require.NoError(t, RunReport(context.Background(), &buf, c, reportOptions{}))

	var rep map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &rep))
	assert.Contains(t, rep, "stepDefinitions")
}

func TestReport_Markdown(t *testing.T) {
	inTempDir(t)
	setupProject(t)

	out := runReport(t, reportOptions{Format: "markdown"})

	assert.Contains(t, out, "# Step coverage report")
	assert.Contains(t, out, "| Step coverage | 86% |")
	assert.Contains(t, out, "- `they see an error`")
}

func TestReport_PrettyMarkdown(t *testing.T) {
	inTempDir(t)
	setupProject(t)

	out := runReport(t, reportOptions{Format: "md", Pretty: true})

	assert.Contains(t, out, "Step coverage report")
}

func TestReport_Simulate(t *testing.T) {
	inTempDir(t)
	setupProject(t)

	out := runReport(t, reportOptions{Format: "json", Simulate: true})

	var rep map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	sims := rep["simulations"].([]any)
	assert.Len(t, sims, 2)
}

func TestReport_OutFile(t *testing.T) {
	dir := inTempDir(t)
	setupProject(t)

	out := runReport(t, reportOptions{Format: "json", Out: "coverage.json"})

	assert.Contains(t, out, "report written to coverage.json")
	data, err := os.ReadFile(filepath.Join(dir, "coverage.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"stepCoverage": 86`)
}

func TestReport_MetricsFile(t *testing.T) {
	dir := inTempDir(t)
	setupProject(t)

	runReport(t, reportOptions{Format: "json", MetricsFile: "stepcov.prom"})

	data, err := os.ReadFile(filepath.Join(dir, "stepcov.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "stepcov_coverage_percent 86")
	assert.Contains(t, string(data), `stepcov_files_discovered_total{kind="feature"} 1`)
}

func TestReport_UnknownFormat(t *testing.T) {
	inTempDir(t)

	var buf bytes.Buffer
	err := RunReport(context.Background(), &buf, config.Default(), reportOptions{Format: "html"})
	assert.Error(t, err)
}

func TestReport_EmptyProject(t *testing.T) {
	inTempDir(t)

	out := runReport(t, reportOptions{Format: "json"})

	var rep map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	summary := rep["summary"].(map[string]any)
	assert.Equal(t, float64(100), summary["stepCoverage"])
	assert.Equal(t, float64(0), summary["totalFeatures"])
}

func TestReport_MissingRoot(t *testing.T) {
	inTempDir(t)
	c := config.Default()
	c.Root = "nope"

	var buf bytes.Buffer
	err := RunReport(context.Background(), &buf, c, reportOptions{})
	assert.ErrorContains(t, err, "root directory not found")
}
