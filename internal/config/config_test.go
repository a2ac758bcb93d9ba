package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chriserin/stepcov/internal/report"
)

func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(orig) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	inTempDir(t)

	cfg, err := Load("")
	require.NoError(t, err)

	want := Default()
	assert.Equal(t, want, cfg)
	assert.Empty(t, cfg.File)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, []string{".feature"}, cfg.Features.Extensions)
	assert.Equal(t, report.DefaultThresholds(), cfg.Thresholds())
}

func TestLoad_ReadsStepcovYAML(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`root: app
workers: 3
recommend:
  coverage_threshold: 95
report:
  format: json
`), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "app", cfg.Root)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 95, cfg.Recommend.CoverageThreshold)
	assert.Equal(t, 3, cfg.Recommend.MinFeatures)
	assert.Equal(t, "json", cfg.Report.Format)
	assert.Contains(t, cfg.File, FileName)
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := inTempDir(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("simulate:\n  sample_size: 5\n  measure_durations: false\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Simulate.SampleSize)
	assert.False(t, cfg.Simulate.MeasureDurations)
	assert.Equal(t, path, cfg.File)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	dir := inTempDir(t)

	_, err := Load(filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("workers: 3\n"), 0o644))
	t.Setenv("STEPCOV_WORKERS", "2")
	t.Setenv("STEPCOV_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("STEPCOV_HISTORY_PATH=state/runs.db\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("STEPCOV_HISTORY_PATH") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "state/runs.db", cfg.History.Path)
}

func TestLoad_Invalid(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`workers: -1
recommend:
  coverage_threshold: 140
report:
  format: html
`), 0o644))

	_, err := Load("")
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "workers")
	assert.Contains(t, err.Error(), "coverage_threshold")
	assert.Contains(t, err.Error(), "report.format")
}

func TestWriteDefault_RoundTrips(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, WriteDefault(filepath.Join(dir, FileName)))

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "sample_size: 2")
	assert.Contains(t, string(data), "coverage_threshold: 80")

	cfg, err := Load("")
	require.NoError(t, err)
	cfg.File = ""
	assert.Equal(t, Default(), cfg)
}

func TestConfig_DiscoveryOptions(t *testing.T) {
	cfg := Default()
	cfg.Root = "proj"
	cfg.Workers = 4

	opts := cfg.DiscoveryOptions()
	assert.Equal(t, "proj", opts.Root)
	assert.Equal(t, 4, opts.Workers)
	assert.Equal(t, cfg.Steps.Globs, opts.StepGlobs)
	assert.Equal(t, cfg.IgnoreDirs, opts.IgnoreDirs)
}

func TestConfig_HistoryPath(t *testing.T) {
	cfg := Default()
	cfg.Root = "proj"
	assert.Equal(t, filepath.Join("proj", ".stepcov", "history.db"), cfg.HistoryPath())
	assert.Equal(t, filepath.Join("proj", ".stepcov"), cfg.StateDir())

	cfg.History.Path = "/var/lib/stepcov.db"
	assert.Equal(t, "/var/lib/stepcov.db", cfg.HistoryPath())
}
