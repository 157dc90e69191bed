package cmd

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/KaramelBytes/caproi-cli/internal/pipeline"
	"github.com/KaramelBytes/caproi-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	scorePerformance  string
	scoreOutputPath   string
	scoreFormat       string
	scoreBudget       float64
	scoreDefaultGrade float64
	scoreTop          int
	scoreDelimiter    string
	scoreMaxRows      int
)

var scoreCmd = &cobra.Command{
	Use:   "score <roster.csv>",
	Short: "Score a roster's cap spend and print the ROI report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt := pipeline.OptionsFromConfig(cfg)
		opt.Log = &logger
		f := cmd.Flags()
		if f.Changed("budget") {
			if scoreBudget <= 0 {
				return fmt.Errorf("--budget must be positive, got %v", scoreBudget)
			}
			opt.Contracts.TotalBudget = scoreBudget
		}
		if f.Changed("default-grade") {
			if scoreDefaultGrade < 0 || scoreDefaultGrade > 100 {
				return fmt.Errorf("--default-grade must be within [0,100], got %v", scoreDefaultGrade)
			}
			opt.DefaultGrade = scoreDefaultGrade
		}
		if f.Changed("top") {
			if scoreTop < 0 {
				return fmt.Errorf("--top must not be negative")
			}
			opt.TopN = scoreTop
		}
		if scoreMaxRows >= 0 {
			opt.Table.MaxRows = scoreMaxRows
		}
		switch scoreDelimiter {
		case "":
		case ",":
			opt.Table.Delimiter = ','
		case "\t", "tab":
			opt.Table.Delimiter = '\t'
		case ";":
			opt.Table.Delimiter = ';'
		default:
			return fmt.Errorf("unsupported --delimiter: %s", scoreDelimiter)
		}

		in, err := pipeline.ReadFiles(args[0], scorePerformance, opt.Table)
		if err != nil {
			return err
		}
		res, err := pipeline.Run(in, opt)
		if err != nil {
			return err
		}

		out, err := renderResult(res, scoreFormat)
		if err != nil {
			return err
		}
		for _, w := range res.Warnings {
			fmt.Fprintf(os.Stderr, "⚠ Warning: %s\n", w)
		}
		if scoreOutputPath != "" {
			if err := utils.SafeWriteFile(scoreOutputPath, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Scored %d players; wrote %s report to %s\n", res.Metrics.Players, strings.ToLower(scoreFormat), scoreOutputPath)
			return nil
		}
		fmt.Print(string(out))
		return nil
	},
}

func renderResult(res *pipeline.Result, format string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "markdown", "md":
		return []byte(res.Markdown()), nil
	case "json":
		b, err := utils.PrettyJSON(res)
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	case "csv":
		var buf bytes.Buffer
		if err := res.WriteCSV(&buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported --format: %s (use markdown|json|csv)", format)
	}
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.Flags().StringVarP(&scorePerformance, "performance", "p", "", "optional rankings file (player, rank or grade)")
	scoreCmd.Flags().StringVarP(&scoreOutputPath, "output", "o", "", "optional path to write the report")
	scoreCmd.Flags().StringVar(&scoreFormat, "format", "markdown", "report format: markdown | json | csv")
	scoreCmd.Flags().Float64Var(&scoreBudget, "budget", 0, "total cap budget (overrides config)")
	scoreCmd.Flags().Float64Var(&scoreDefaultGrade, "default-grade", 0, "grade for players without a ranking (overrides config)")
	scoreCmd.Flags().IntVar(&scoreTop, "top", 0, "rows in the top/bottom ROI tables, 0 = all (overrides config)")
	scoreCmd.Flags().StringVar(&scoreDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (default: by extension)")
	scoreCmd.Flags().IntVar(&scoreMaxRows, "max-rows", 100000, "maximum rows to read per file (0 = unlimited)")
}
