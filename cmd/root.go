package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/caproi-cli/internal/config"
	"github.com/KaramelBytes/caproi-cli/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
	// Process logger; replaced once config is loaded.
	logger = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "caproi",
	Short: "CapROI: score roster cap spend against on-field performance",
	Long: `CapROI normalizes a team's cap sheet and depth chart, joins it with player
rankings, and scores every contract by graded value per share of the budget.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.caproi/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
		logger = logging.New(logging.Config{Level: levelOverride("info"), Pretty: true})
		return
	}
	cfg = c
	logger = logging.New(logging.Config{Level: levelOverride(cfg.LogLevel), Pretty: cfg.LogPretty})
}

func levelOverride(level string) string {
	if debug {
		return "debug"
	}
	return level
}
