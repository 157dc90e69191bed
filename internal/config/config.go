package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Budget and scoring
	TotalBudget  float64 `mapstructure:"total_budget" yaml:"total_budget"`
	DefaultGrade float64 `mapstructure:"default_grade" yaml:"default_grade"`
	Epsilon      float64 `mapstructure:"epsilon" yaml:"epsilon"`
	TopN         int     `mapstructure:"top_n" yaml:"top_n"`

	// Leverage cut points
	SpendThresholdPct float64 `mapstructure:"spend_threshold_pct" yaml:"spend_threshold_pct"`
	JustifiedGrade    float64 `mapstructure:"justified_grade" yaml:"justified_grade"`
	JustifiedROI      float64 `mapstructure:"justified_roi" yaml:"justified_roi"`
	InefficientROI    float64 `mapstructure:"inefficient_roi" yaml:"inefficient_roi"`

	// Column fallbacks for files without usable headers
	NameColumn       int `mapstructure:"name_column" yaml:"name_column"`
	DepthLabelColumn int `mapstructure:"depth_label_column" yaml:"depth_label_column"`
	DepthSlots       int `mapstructure:"depth_slots" yaml:"depth_slots"`
	PerfNameColumn   int `mapstructure:"perf_name_column" yaml:"perf_name_column"`
	PerfRankColumn   int `mapstructure:"perf_rank_column" yaml:"perf_rank_column"`

	// CategoryWeights overrides the static importance multiplier per category.
	// Keys are category codes (QB, RB, ...); viper lower-cases them on load.
	CategoryWeights map[string]float64 `mapstructure:"category_weights" yaml:"category_weights"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogPretty bool   `mapstructure:"log_pretty" yaml:"log_pretty"`

	// HTTP surface
	ServerAddr string `mapstructure:"server_addr" yaml:"server_addr"`
}

// Weights returns CategoryWeights with upper-cased keys.
func (c *Global) Weights() map[string]float64 {
	out := make(map[string]float64, len(c.CategoryWeights))
	for k, v := range c.CategoryWeights {
		out[strings.ToUpper(strings.TrimSpace(k))] = v
	}
	return out
}

// Validate rejects values the scorer cannot work with.
func (c *Global) Validate() error {
	if c.TotalBudget <= 0 {
		return fmt.Errorf("total_budget must be positive, got %v", c.TotalBudget)
	}
	if c.Epsilon <= 0 {
		return fmt.Errorf("epsilon must be positive, got %v", c.Epsilon)
	}
	if c.DefaultGrade < 0 || c.DefaultGrade > 100 {
		return fmt.Errorf("default_grade must be within [0,100], got %v", c.DefaultGrade)
	}
	if c.DepthSlots < 0 {
		return errors.New("depth_slots must not be negative")
	}
	for k, w := range c.CategoryWeights {
		if w <= 0 || w > 1 {
			return fmt.Errorf("category_weights.%s must be within (0,1], got %v", k, w)
		}
	}
	return nil
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".caproi"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.caproi/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := configDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("CAPROI")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("total_budget", 303_500_000.0)
	v.SetDefault("default_grade", 70.0)
	v.SetDefault("epsilon", 0.1)
	v.SetDefault("top_n", 10)
	v.SetDefault("spend_threshold_pct", 5.0)
	v.SetDefault("justified_grade", 80.0)
	v.SetDefault("justified_roi", 15.0)
	v.SetDefault("inefficient_roi", 8.0)
	v.SetDefault("name_column", 0)
	v.SetDefault("depth_label_column", -1)
	v.SetDefault("depth_slots", 4)
	v.SetDefault("perf_name_column", 0)
	v.SetDefault("perf_rank_column", 1)
	v.SetDefault("category_weights", map[string]float64{})
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", true)
	v.SetDefault("server_addr", ":8080")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" && !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
