package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/caproi-cli/internal/roster"
	"github.com/spf13/cobra"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List position categories, their weights and depth chart labels",
	RunE: func(cmd *cobra.Command, args []string) error {
		var overrides map[string]float64
		if cfg != nil {
			overrides = cfg.Weights()
		}
		w := roster.NewWeights(overrides)
		for _, c := range roster.Categories() {
			labels := roster.Labels(c)
			desc := "(any unrecognized label)"
			if len(labels) > 0 {
				desc = strings.Join(labels, ", ")
			}
			fmt.Printf("- %-5s weight %.2f: %s\n", c, w.Of(c), desc)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}
