// Package config loads and validates the CLI's search configuration.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/forecastcv/forecastcv/pkg/crossval"
	"github.com/forecastcv/forecastcv/pkg/forecast"
	"github.com/forecastcv/forecastcv/pkg/metrics"
	"github.com/forecastcv/forecastcv/pkg/search"
)

type Config struct {
	Environment string       `mapstructure:"environment"`
	LogLevel    string       `mapstructure:"log_level"`
	Data        DataConfig   `mapstructure:"data"`
	Window      WindowConfig `mapstructure:"window"`
	Search      SearchConfig `mapstructure:"search"`
}

type DataConfig struct {
	Path        string   `mapstructure:"path"`
	TimeColumn  string   `mapstructure:"time_column"`
	TimeLayout  string   `mapstructure:"time_layout"`
	ValueColumn string   `mapstructure:"value_column"`
	ExogColumns []string `mapstructure:"exog_columns"`
}

type WindowConfig struct {
	Kind          string `mapstructure:"kind"`
	InitialWindow int    `mapstructure:"initial_window"`
	StepLength    int    `mapstructure:"step_length"`
	Horizon       []int  `mapstructure:"horizon"`
}

type SearchConfig struct {
	Forecaster  string                        `mapstructure:"forecaster"`
	Strategy    string                        `mapstructure:"strategy"`
	Grid        map[string][]any              `mapstructure:"grid"`
	Space       map[string]DistributionConfig `mapstructure:"space"`
	Iterations  int                           `mapstructure:"iterations"`
	Seed        int64                         `mapstructure:"seed"`
	Metrics     []string                      `mapstructure:"metrics"`
	RefitMetric string                        `mapstructure:"refit_metric"`
	Refit       bool                          `mapstructure:"refit"`
	Parallelism int                           `mapstructure:"parallelism"`
	FoldWeights []float64                     `mapstructure:"fold_weights"`
}

// DistributionConfig describes one random-search parameter distribution.
type DistributionConfig struct {
	Type   string  `mapstructure:"type"` // int, uniform, loguniform, categorical
	Low    float64 `mapstructure:"low"`
	High   float64 `mapstructure:"high"`
	Values []any   `mapstructure:"values"`
}

// Load reads the configuration file (or the default search paths when path
// is empty), applies environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("forecastcv")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix("FORECASTCV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Missing file in the default search paths is fine; defaults and
		// env overrides still apply. An explicit path must exist.
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: reading: %w", err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: parsing: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")

	v.SetDefault("data.time_column", "time")
	v.SetDefault("data.time_layout", "2006-01-02")
	v.SetDefault("data.value_column", "value")

	v.SetDefault("window.kind", "expanding")
	v.SetDefault("window.step_length", 1)
	v.SetDefault("window.horizon", []int{1})

	v.SetDefault("search.forecaster", "naive")
	v.SetDefault("search.strategy", "grid")
	v.SetDefault("search.iterations", 10)
	v.SetDefault("search.metrics", []string{"mape", "mae", "rmse"})
	v.SetDefault("search.refit_metric", "mape")
	v.SetDefault("search.refit", true)
	v.SetDefault("search.parallelism", 0)
}

// Validate checks the cross-field constraints a run depends on.
func (c *Config) Validate() error {
	if c.Data.Path == "" {
		return fmt.Errorf("config: data.path is required")
	}
	if c.Window.InitialWindow < 1 {
		return fmt.Errorf("config: window.initial_window must be >= 1")
	}
	if err := c.WindowPolicy().Validate(); err != nil {
		return err
	}
	if _, err := forecast.Create(c.Search.Forecaster); err != nil {
		return err
	}
	if len(c.Search.Metrics) == 0 {
		return fmt.Errorf("config: search.metrics must not be empty")
	}
	if _, err := metrics.Resolve(c.Search.Metrics...); err != nil {
		return err
	}
	refitKnown := false
	for _, name := range c.Search.Metrics {
		if name == c.Search.RefitMetric {
			refitKnown = true
		}
	}
	if !refitKnown {
		return fmt.Errorf("config: search.refit_metric %q is not in search.metrics %v", c.Search.RefitMetric, c.Search.Metrics)
	}
	switch c.Search.Strategy {
	case "grid", "random":
	default:
		return fmt.Errorf("config: unknown search.strategy %q", c.Search.Strategy)
	}
	return nil
}

// WindowPolicy converts the window section into a crossval policy.
func (c *Config) WindowPolicy() crossval.WindowPolicy {
	return crossval.WindowPolicy{
		Kind:          crossval.WindowKind(c.Window.Kind),
		InitialWindow: c.Window.InitialWindow,
		StepLength:    c.Window.StepLength,
		Horizon:       c.Window.Horizon,
	}
}

// BuildStrategy converts the search section into a candidate strategy. A
// grid strategy with no configured grid falls back to the forecaster's
// default tuning grid.
func (c *Config) BuildStrategy() (search.Strategy, error) {
	switch c.Search.Strategy {
	case "grid":
		if len(c.Search.Grid) > 0 {
			return search.Grid(c.Search.Grid), nil
		}
		f, err := forecast.Create(c.Search.Forecaster)
		if err != nil {
			return nil, err
		}
		grid, ok := search.DefaultGridFor(f)
		if !ok {
			return nil, fmt.Errorf("config: forecaster %q has no default grid; set search.grid", c.Search.Forecaster)
		}
		return grid, nil
	case "random":
		space := make(map[string]search.Distribution, len(c.Search.Space))
		for name, dist := range c.Search.Space {
			built, err := dist.build(name)
			if err != nil {
				return nil, err
			}
			space[name] = built
		}
		return search.Random{Space: space, Iterations: c.Search.Iterations, Seed: c.Search.Seed}, nil
	default:
		return nil, fmt.Errorf("config: unknown search.strategy %q", c.Search.Strategy)
	}
}

func (d DistributionConfig) build(name string) (search.Distribution, error) {
	switch d.Type {
	case "int":
		return search.IntRange{Low: int(d.Low), High: int(d.High)}, nil
	case "uniform":
		return search.Uniform{Low: d.Low, High: d.High}, nil
	case "loguniform":
		return search.LogUniform{Low: d.Low, High: d.High}, nil
	case "categorical":
		return search.Categorical{Values: d.Values}, nil
	default:
		return nil, fmt.Errorf("config: parameter %q has unknown distribution type %q", name, d.Type)
	}
}
