package config

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/viper"

	"github.com/lehigh-university-libraries/pubdatecheck/internal/candidates"
	"github.com/lehigh-university-libraries/pubdatecheck/internal/compare"
)

// Supported report formats.
const (
	FormatHTML    = "html"
	FormatYAML    = "yaml"
	FormatJSON    = "json"
	FormatCSV     = "csv"
	FormatXLSX    = "xlsx"
	FormatParquet = "parquet"
)

var knownFormats = map[string]bool{
	FormatHTML: true, FormatYAML: true, FormatJSON: true,
	FormatCSV: true, FormatXLSX: true, FormatParquet: true,
}

// Config holds the settings of a check run.
type Config struct {
	ScoreThreshold   float64            `mapstructure:"score_threshold" yaml:"scorethreshold"`
	DateTolerance    int                `mapstructure:"date_tolerance" yaml:"datetolerance"`
	PositionFallback float64            `mapstructure:"position_fallback" yaml:"positionfallback"`
	Locale           string             `mapstructure:"locale" yaml:"locale"`
	Months           []candidates.Month `mapstructure:"months" yaml:"months"`
	StopWords        []string           `mapstructure:"stop_words" yaml:"stopwords"`
	AltoSuffix       string             `mapstructure:"alto_suffix" yaml:"altosuffix"`
	MetsSuffix       string             `mapstructure:"mets_suffix" yaml:"metssuffix"`
	Output           string             `mapstructure:"output" yaml:"output"`
	LogFile          string             `mapstructure:"log_file" yaml:"logfile"`
	Verbose          bool               `mapstructure:"verbose" yaml:"verbose"`
	Concurrency      int                `mapstructure:"concurrency" yaml:"concurrency"`
	Formats          []string           `mapstructure:"formats" yaml:"formats"`
}

// New returns a viper instance with defaults and PUBDATE_ environment binding.
// Callers may bind CLI flags on it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("PUBDATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("score_threshold", 0.8)
	v.SetDefault("date_tolerance", 2)
	v.SetDefault("position_fallback", 1.0)
	v.SetDefault("locale", "nl")
	v.SetDefault("months", monthDefaults(candidates.DutchMonths))
	v.SetDefault("stop_words", candidates.DutchStopWords)
	v.SetDefault("alto_suffix", "_00001_alto.xml")
	v.SetDefault("mets_suffix", "_mets.xml")
	v.SetDefault("output", "html-reports")
	v.SetDefault("log_file", "logs/publicatiedatumcontrole.log")
	v.SetDefault("verbose", false)
	v.SetDefault("concurrency", 1)
	v.SetDefault("formats", []string{FormatHTML, FormatYAML})

	return v
}

func monthDefaults(months []candidates.Month) []map[string]any {
	out := make([]map[string]any, len(months))
	for i, m := range months {
		out[i] = map[string]any{"name": m.Name, "number": m.Number}
	}
	return out
}

// Load reads the optional YAML config file, then unmarshals and validates.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the default configuration.
func Default() *Config {
	cfg, err := Load(New(), "")
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate rejects settings that would make every page result meaningless.
func (c *Config) Validate() error {
	var errs []error

	if !inUnitRange(c.ScoreThreshold) {
		errs = append(errs, fmt.Errorf("score_threshold %v outside [0,1]", c.ScoreThreshold))
	}
	if c.DateTolerance < 0 {
		errs = append(errs, fmt.Errorf("date_tolerance must not be negative, got %d", c.DateTolerance))
	}
	if c.DateTolerance >= compare.Unparseable {
		errs = append(errs, fmt.Errorf("date_tolerance must be below %d, got %d", compare.Unparseable, c.DateTolerance))
	}
	if !inUnitRange(c.PositionFallback) {
		errs = append(errs, fmt.Errorf("position_fallback %v outside [0,1]", c.PositionFallback))
	}
	if c.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency))
	}
	if c.AltoSuffix == "" || c.MetsSuffix == "" {
		errs = append(errs, errors.New("alto_suffix and mets_suffix are required"))
	}
	for _, f := range c.Formats {
		if !knownFormats[f] {
			errs = append(errs, fmt.Errorf("unknown format %q", f))
		}
	}
	if _, err := c.Lexicon(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func inUnitRange(f float64) bool {
	return !math.IsNaN(f) && f >= 0 && f <= 1
}

// Lexicon builds the month lexicon described by the config.
func (c *Config) Lexicon() (*candidates.Lexicon, error) {
	lex, err := candidates.NewLexicon(c.Locale, c.Months, c.StopWords)
	if err != nil {
		return nil, fmt.Errorf("invalid month lexicon: %w", err)
	}
	return lex, nil
}

// HasFormat reports whether format was requested.
func (c *Config) HasFormat(format string) bool {
	for _, f := range c.Formats {
		if f == format {
			return true
		}
	}
	return false
}
