// Package config loads warnctx settings from file, environment and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the complete warnctx configuration.
type Config struct {
	Workers  int    `mapstructure:"workers" yaml:"workers"`
	CloneDir string `mapstructure:"clone_dir" yaml:"clone_dir"`
	Clone    bool   `mapstructure:"clone" yaml:"clone"`

	Filter  FilterConfig  `mapstructure:"filter" yaml:"filter"`
	Dataset DatasetConfig `mapstructure:"dataset" yaml:"dataset"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Serve   ServeConfig   `mapstructure:"serve" yaml:"serve"`
}

// FilterConfig controls which input records reach the resolver.
type FilterConfig struct {
	// PathMarker must prefix every record's filePath.
	PathMarker string `mapstructure:"path_marker" yaml:"path_marker"`
	// StripSegments leading path segments (marker and clone directory)
	// are removed to get the repository-relative path.
	StripSegments int `mapstructure:"strip_segments" yaml:"strip_segments"`
	// RejectPhrases mark warnings produced by a misconfigured tool run.
	RejectPhrases []string `mapstructure:"reject_phrases" yaml:"reject_phrases"`
}

// DatasetConfig names the input folders and output files of a build.
type DatasetConfig struct {
	ActionableDir       string `mapstructure:"actionable_dir" yaml:"actionable_dir"`
	NonActionableDir    string `mapstructure:"non_actionable_dir" yaml:"non_actionable_dir"`
	ActionableOutput    string `mapstructure:"actionable_output" yaml:"actionable_output"`
	NonActionableOutput string `mapstructure:"non_actionable_output" yaml:"non_actionable_output"`
	// IntroducedMarker in a folder path means its warnings were introduced
	// by the commit rather than removed.
	IntroducedMarker string `mapstructure:"introduced_marker" yaml:"introduced_marker"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// ServeConfig controls the HTTP API.
type ServeConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
	Port int    `mapstructure:"port" yaml:"port"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Workers:  12,
		CloneDir: "./tmp_github",
		Clone:    true,
		Filter: FilterConfig{
			PathMarker:    "tmp_github/",
			StripSegments: 2,
			RejectPhrases: []string{
				"Cppcheck failed to extract a valid configuration. Use -v for more details.",
				"Please note:",
			},
		},
		Dataset: DatasetConfig{
			ActionableDir:       "./GeneratedDataset/ActionableWarning",
			NonActionableDir:    "./GeneratedDataset/NonActionableWarning",
			ActionableOutput:    "./compressed_ActionableWarning.json.gz",
			NonActionableOutput: "./compressed_NonActionableWarning.json.gz",
			IntroducedMarker:    "NonActionableWarning",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Serve: ServeConfig{
			Addr: "127.0.0.1",
			Port: 6143,
		},
	}
}

// Load reads configuration. path names an explicit file; when empty,
// warnctx.yaml is looked up in the working directory and is optional.
// WARNCTX_* environment variables override file values
// (e.g. WARNCTX_FILTER_PATH_MARKER).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix("warnctx")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("warnctx")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("workers", d.Workers)
	v.SetDefault("clone_dir", d.CloneDir)
	v.SetDefault("clone", d.Clone)
	v.SetDefault("filter.path_marker", d.Filter.PathMarker)
	v.SetDefault("filter.strip_segments", d.Filter.StripSegments)
	v.SetDefault("filter.reject_phrases", d.Filter.RejectPhrases)
	v.SetDefault("dataset.actionable_dir", d.Dataset.ActionableDir)
	v.SetDefault("dataset.non_actionable_dir", d.Dataset.NonActionableDir)
	v.SetDefault("dataset.actionable_output", d.Dataset.ActionableOutput)
	v.SetDefault("dataset.non_actionable_output", d.Dataset.NonActionableOutput)
	v.SetDefault("dataset.introduced_marker", d.Dataset.IntroducedMarker)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("serve.addr", d.Serve.Addr)
	v.SetDefault("serve.port", d.Serve.Port)
}

// Validate checks invariants the rest of the program relies on.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Filter.StripSegments < 0 {
		return fmt.Errorf("filter.strip_segments must not be negative, got %d", c.Filter.StripSegments)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// YAML renders the configuration as a config file.
func (c *Config) YAML() (string, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encoding config: %w", err)
	}
	return string(b), nil
}
