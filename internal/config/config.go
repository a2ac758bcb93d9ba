// Package config loads stepcov settings from stepcov.yaml, a .env file and
// STEPCOV_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/chriserin/stepcov/internal/discovery"
	"github.com/chriserin/stepcov/internal/logging"
	"github.com/chriserin/stepcov/internal/report"
	"github.com/chriserin/stepcov/internal/simulate"
)

// FileName is the config file written by `stepcov init` and searched for in the
// working directory.
const FileName = "stepcov.yaml"

const envPrefix = "STEPCOV"

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Root       string    `mapstructure:"root" yaml:"root"`
	Features   Features  `mapstructure:"features" yaml:"features"`
	Steps      Steps     `mapstructure:"steps" yaml:"steps"`
	IgnoreDirs []string  `mapstructure:"ignore_dirs" yaml:"ignore_dirs"`
	Workers    int       `mapstructure:"workers" yaml:"workers"`
	Simulate   Simulate  `mapstructure:"simulate" yaml:"simulate"`
	Recommend  Recommend `mapstructure:"recommend" yaml:"recommend"`
	Report     Report    `mapstructure:"report" yaml:"report"`
	History    History   `mapstructure:"history" yaml:"history"`
	Log        Log       `mapstructure:"log" yaml:"log"`

	// File is the config file that was read, empty when defaults were used.
	File string `mapstructure:"-" yaml:"-"`
}

type Features struct {
	Extensions []string `mapstructure:"extensions" yaml:"extensions"`
}

type Steps struct {
	Globs      []string `mapstructure:"globs" yaml:"globs"`
	Dirs       []string `mapstructure:"dirs" yaml:"dirs"`
	Extensions []string `mapstructure:"extensions" yaml:"extensions"`
}

type Simulate struct {
	SampleSize       int  `mapstructure:"sample_size" yaml:"sample_size"`
	MeasureDurations bool `mapstructure:"measure_durations" yaml:"measure_durations"`
}

type Recommend struct {
	CoverageThreshold int `mapstructure:"coverage_threshold" yaml:"coverage_threshold"`
	MinFeatures       int `mapstructure:"min_features" yaml:"min_features"`
	MaxDefinitions    int `mapstructure:"max_definitions" yaml:"max_definitions"`
}

type Report struct {
	Format string `mapstructure:"format" yaml:"format"`
}

type History struct {
	Path string `mapstructure:"path" yaml:"path"`
}

type Log struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	d := discovery.DefaultOptions()
	th := report.DefaultThresholds()
	return Config{
		Root:       d.Root,
		Features:   Features{Extensions: d.FeatureExtensions},
		Steps:      Steps{Globs: d.StepGlobs, Dirs: d.StepDirs, Extensions: d.StepExtensions},
		IgnoreDirs: d.IgnoreDirs,
		Workers:    d.Workers,
		Simulate:   Simulate{SampleSize: simulate.DefaultSampleSize, MeasureDurations: true},
		Recommend: Recommend{
			CoverageThreshold: th.CoverageThreshold,
			MinFeatures:       th.MinFeatures,
			MaxDefinitions:    th.MaxDefinitions,
		},
		Report:  Report{Format: string(report.FormatText)},
		History: History{Path: ".stepcov/history.db"},
		Log:     Log{Level: "warn"},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("root", d.Root)
	v.SetDefault("features.extensions", d.Features.Extensions)
	v.SetDefault("steps.globs", d.Steps.Globs)
	v.SetDefault("steps.dirs", d.Steps.Dirs)
	v.SetDefault("steps.extensions", d.Steps.Extensions)
	v.SetDefault("ignore_dirs", d.IgnoreDirs)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("simulate.sample_size", d.Simulate.SampleSize)
	v.SetDefault("simulate.measure_durations", d.Simulate.MeasureDurations)
	v.SetDefault("recommend.coverage_threshold", d.Recommend.CoverageThreshold)
	v.SetDefault("recommend.min_features", d.Recommend.MinFeatures)
	v.SetDefault("recommend.max_definitions", d.Recommend.MaxDefinitions)
	v.SetDefault("report.format", d.Report.Format)
	v.SetDefault("history.path", d.History.Path)
	v.SetDefault("log.level", d.Log.Level)
}

// Load reads cfgFile, or stepcov.yaml in the working directory when cfgFile is
// empty. A missing default file is not an error; a missing explicit file is.
// Environment variables override file values, e.g. STEPCOV_WORKERS=2 or
// STEPCOV_REPORT_FORMAT=json.
func Load(cfgFile string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logging.Warn("config", "ignoring .env: %v", err)
	}

	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		logging.Debug("config", "no %s found, using defaults", FileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every out-of-range value at once.
func (c Config) Validate() error {
	var problems []string
	if c.Workers < 0 {
		problems = append(problems, fmt.Sprintf("workers must not be negative, got: %d", c.Workers))
	}
	if c.Simulate.SampleSize < 0 {
		problems = append(problems, fmt.Sprintf("simulate.sample_size must not be negative, got: %d", c.Simulate.SampleSize))
	}
	if c.Recommend.CoverageThreshold < 0 || c.Recommend.CoverageThreshold > 100 {
		problems = append(problems, fmt.Sprintf("recommend.coverage_threshold must be between 0 and 100, got: %d", c.Recommend.CoverageThreshold))
	}
	if _, err := report.ParseFormat(c.Report.Format); err != nil {
		problems = append(problems, fmt.Sprintf("report.format: %v", err))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// DiscoveryOptions maps the config onto discovery rules.
func (c Config) DiscoveryOptions() discovery.Options {
	return discovery.Options{
		Root:              c.Root,
		FeatureExtensions: c.Features.Extensions,
		StepGlobs:         c.Steps.Globs,
		StepDirs:          c.Steps.Dirs,
		StepExtensions:    c.Steps.Extensions,
		IgnoreDirs:        c.IgnoreDirs,
		Workers:           c.Workers,
	}
}

// Thresholds returns the recommendation thresholds.
func (c Config) Thresholds() report.Thresholds {
	return report.Thresholds{
		CoverageThreshold: c.Recommend.CoverageThreshold,
		MinFeatures:       c.Recommend.MinFeatures,
		MaxDefinitions:    c.Recommend.MaxDefinitions,
	}
}

// HistoryPath resolves history.path against the root.
func (c Config) HistoryPath() string {
	if filepath.IsAbs(c.History.Path) {
		return c.History.Path
	}
	return filepath.Join(c.Root, c.History.Path)
}

// StateDir is the directory holding the history database.
func (c Config) StateDir() string {
	return filepath.Dir(c.HistoryPath())
}

// WriteDefault writes the default configuration as YAML to path.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("encoding default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
