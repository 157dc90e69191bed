package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/caproi-cli/internal/config"
	"github.com/KaramelBytes/caproi-cli/internal/roster"
	"github.com/spf13/cobra"
)

const weightKeyPrefix = "category_weights."

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set CapROI configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("total_budget: %.0f\n", cfg.TotalBudget)
		fmt.Printf("default_grade: %.1f\n", cfg.DefaultGrade)
		fmt.Printf("epsilon: %.3f\n", cfg.Epsilon)
		fmt.Printf("top_n: %d\n", cfg.TopN)
		fmt.Printf("spend_threshold_pct: %.2f\n", cfg.SpendThresholdPct)
		fmt.Printf("justified_grade: %.1f\n", cfg.JustifiedGrade)
		fmt.Printf("justified_roi: %.2f\n", cfg.JustifiedROI)
		fmt.Printf("inefficient_roi: %.2f\n", cfg.InefficientROI)
		fmt.Printf("name_column: %d\n", cfg.NameColumn)
		fmt.Printf("depth_label_column: %d\n", cfg.DepthLabelColumn)
		fmt.Printf("depth_slots: %d\n", cfg.DepthSlots)
		fmt.Printf("perf_name_column: %d\n", cfg.PerfNameColumn)
		fmt.Printf("perf_rank_column: %d\n", cfg.PerfRankColumn)
		if w := cfg.Weights(); len(w) > 0 {
			keys := make([]string, 0, len(w))
			for k := range w {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Printf("%s%s: %.2f\n", weightKeyPrefix, k, w[k])
			}
		}
		fmt.Printf("log_level: %s\n", cfg.LogLevel)
		fmt.Printf("log_pretty: %t\n", cfg.LogPretty)
		fmt.Printf("server_addr: %s\n", cfg.ServerAddr)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := strings.TrimSpace(args[0]), strings.TrimSpace(args[1])
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		if err := setConfigValue(cfg, key, val); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Println("✓ Saved config")
		return nil
	},
}

func setConfigValue(c *cfgpkg.Global, key, val string) error {
	if strings.HasPrefix(key, weightKeyPrefix) {
		code := strings.ToUpper(strings.TrimPrefix(key, weightKeyPrefix))
		if _, ok := roster.DefaultWeights[roster.Category(code)]; !ok {
			return fmt.Errorf("unknown category: %s", code)
		}
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid float for %s: %v", key, val)
		}
		// Viper lower-cases map keys on load; keep one spelling per category.
		w := c.Weights()
		w[code] = f
		c.CategoryWeights = w
		return nil
	}

	floats := map[string]*float64{
		"total_budget":        &c.TotalBudget,
		"default_grade":       &c.DefaultGrade,
		"epsilon":             &c.Epsilon,
		"spend_threshold_pct": &c.SpendThresholdPct,
		"justified_grade":     &c.JustifiedGrade,
		"justified_roi":       &c.JustifiedROI,
		"inefficient_roi":     &c.InefficientROI,
	}
	ints := map[string]*int{
		"top_n":              &c.TopN,
		"name_column":        &c.NameColumn,
		"depth_label_column": &c.DepthLabelColumn,
		"depth_slots":        &c.DepthSlots,
		"perf_name_column":   &c.PerfNameColumn,
		"perf_rank_column":   &c.PerfRankColumn,
	}
	if p, ok := floats[key]; ok {
		f, err := strconv.ParseFloat(strings.ReplaceAll(val, "_", ""), 64)
		if err != nil {
			return fmt.Errorf("invalid float for %s: %v", key, val)
		}
		*p = f
		return nil
	}
	if p, ok := ints[key]; ok {
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid int for %s: %v", key, val)
		}
		*p = i
		return nil
	}
	switch key {
	case "log_level":
		switch strings.ToLower(val) {
		case "debug", "info", "warn", "warning", "error", "disabled", "off":
			c.LogLevel = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_level: %s (use debug|info|warn|error|disabled)", val)
		}
	case "log_pretty":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for log_pretty: %v", val)
		}
		c.LogPretty = b
	case "server_addr":
		c.ServerAddr = val
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
