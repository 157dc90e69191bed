// Package pipeline turns raw roster and performance files into a scored table
// and its derived views. Each stage is a pure function of its inputs; callers
// own any state between uploads.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/KaramelBytes/caproi-cli/internal/config"
	"github.com/KaramelBytes/caproi-cli/internal/roi"
	"github.com/KaramelBytes/caproi-cli/internal/roster"
	"github.com/KaramelBytes/caproi-cli/internal/table"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"
)

// ErrNoRoster is returned when Run is called without a roster table.
var ErrNoRoster = errors.New("roster file is required")

// Options bundles every stage's options.
type Options struct {
	Table        table.Options
	Contracts    roster.ContractOptions
	Performance  roster.PerformanceOptions
	DefaultGrade float64
	Scoring      roi.Options
	Thresholds   roi.Thresholds
	// TopN bounds the Top and Bottom views; 0 means all players.
	TopN int
	Log  *zerolog.Logger
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		Table:        table.DefaultOptions(),
		Contracts:    roster.DefaultContractOptions(),
		Performance:  roster.DefaultPerformanceOptions(),
		DefaultGrade: 70,
		Scoring:      roi.DefaultOptions(),
		Thresholds:   roi.DefaultThresholds(),
		TopN:         10,
	}
}

// OptionsFromConfig maps the loaded configuration onto pipeline options.
func OptionsFromConfig(c *config.Global) Options {
	opt := DefaultOptions()
	if c == nil {
		return opt
	}
	opt.Contracts = roster.ContractOptions{
		TotalBudget:      c.TotalBudget,
		NameColumn:       c.NameColumn,
		DepthLabelColumn: c.DepthLabelColumn,
		DepthSlots:       c.DepthSlots,
		Weights:          roster.NewWeights(c.Weights()),
	}
	opt.Performance = roster.PerformanceOptions{NameColumn: c.PerfNameColumn, RankColumn: c.PerfRankColumn}
	opt.DefaultGrade = c.DefaultGrade
	opt.Scoring = roi.Options{Epsilon: c.Epsilon}
	opt.Thresholds = roi.Thresholds{
		SpendPct:       c.SpendThresholdPct,
		JustifiedGrade: c.JustifiedGrade,
		JustifiedROI:   c.JustifiedROI,
		InefficientROI: c.InefficientROI,
	}
	opt.TopN = c.TopN
	return opt
}

// Inputs are the raw tables for one upload.
type Inputs struct {
	Roster *table.Table
	// Performance is nil when no ranking file was supplied or it could not be read.
	Performance *table.Table
	// PerformanceErr records why an optional ranking file was unreadable.
	PerformanceErr error
}

// Read parses the roster (required) and performance (optional, may be nil) streams.
func Read(rosterName string, rosterR io.Reader, perfName string, perfR io.Reader, opt table.Options) (Inputs, error) {
	var in Inputs
	rt, err := table.Read(rosterR, opt)
	if err != nil {
		return in, fmt.Errorf("read roster %s: %w", rosterName, err)
	}
	rt.Name = rosterName
	in.Roster = rt
	if perfR != nil {
		pt, err := table.Read(perfR, opt)
		if err != nil {
			in.PerformanceErr = fmt.Errorf("read performance %s: %w", perfName, err)
		} else {
			pt.Name = perfName
			in.Performance = pt
		}
	}
	return in, nil
}

// ReadFiles is Read for on-disk files; perfPath may be empty.
func ReadFiles(rosterPath, perfPath string, opt table.Options) (Inputs, error) {
	var in Inputs
	rt, err := table.ReadFile(rosterPath, opt)
	if err != nil {
		return in, fmt.Errorf("read roster: %w", err)
	}
	in.Roster = rt
	if perfPath != "" {
		pt, err := table.ReadFile(perfPath, opt)
		if err != nil {
			in.PerformanceErr = fmt.Errorf("read performance: %w", err)
		} else {
			in.Performance = pt
		}
	}
	return in, nil
}

// Views are the derived tables consumed by presentation layers.
type Views struct {
	Top        []roster.Entity       `json:"top"`
	Bottom     []roster.Entity       `json:"bottom"`
	Categories []roi.CategorySummary `json:"categories"`
	Audit      []roi.Assessment      `json:"audit"`
}

// Metrics are the headline numbers for one upload.
type Metrics struct {
	Players       int      `json:"players"`
	GradedPlayers int      `json:"graded_players"`
	CapUsed       float64  `json:"cap_used"`
	CapUsedPct    *float64 `json:"cap_used_pct"`
	MeanGrade     float64  `json:"mean_grade"`
	MeanROI       *float64 `json:"mean_roi"`
	// CategorySpend is each category's share of the budget, in percent.
	CategorySpend map[roster.Category]float64 `json:"category_spend,omitempty"`
}

// Result is the complete output for one upload.
type Result struct {
	Roster      string          `json:"roster"`
	Performance string          `json:"performance,omitempty"`
	Entities    []roster.Entity `json:"entities"`
	Views       Views           `json:"views"`
	Metrics     Metrics         `json:"metrics"`
	Thresholds  roi.Thresholds  `json:"thresholds"`
	Warnings    []string        `json:"warnings,omitempty"`
}

// Run normalizes, joins and scores one upload. It fails only when the roster
// has no usable cap or name column; every other problem becomes a warning.
func Run(in Inputs, opt Options) (*Result, error) {
	log := zerolog.Nop()
	if opt.Log != nil {
		log = *opt.Log
	}
	if in.Roster == nil {
		return nil, ErrNoRoster
	}
	res := &Result{Roster: in.Roster.Name, Thresholds: opt.Thresholds}
	if in.Roster.Truncated > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("roster: ignored %d rows beyond the row limit", in.Roster.Truncated))
	}

	ro, err := roster.NormalizeContracts(in.Roster, opt.Contracts)
	if err != nil {
		log.Warn().Err(err).Str("file", in.Roster.Name).Strs("header", in.Roster.Header).Msg("roster not usable")
		return nil, fmt.Errorf("normalize roster %s: %w", in.Roster.Name, err)
	}
	log.Debug().
		Str("file", in.Roster.Name).
		Str("cap_column", ro.CapColumn.Strategy).
		Str("name_column", ro.NameColumn.Strategy).
		Str("depth_column", ro.DepthColumn.Strategy).
		Ints("depth_slots", ro.DepthSlots).
		Int("players", len(ro.Entities)).
		Int("dropped", ro.Dropped).
		Msg("roster normalized")
	for _, w := range ro.Warnings {
		res.Warnings = append(res.Warnings, "roster: "+w)
	}
	if len(ro.Entities) == 0 {
		res.Warnings = append(res.Warnings, "roster: no players found")
	}

	grades := roster.Grades{}
	switch {
	case in.PerformanceErr != nil:
		res.Warnings = append(res.Warnings, fmt.Sprintf("%v; using default grade %.1f", in.PerformanceErr, opt.DefaultGrade))
	case in.Performance == nil:
		res.Warnings = append(res.Warnings, fmt.Sprintf("no performance file; using default grade %.1f", opt.DefaultGrade))
	default:
		res.Performance = in.Performance.Name
		g, err := roster.NormalizePerformance(in.Performance, opt.Performance)
		if err != nil {
			log.Warn().Err(err).Str("file", in.Performance.Name).Msg("performance file not usable")
			res.Warnings = append(res.Warnings, fmt.Sprintf("performance: %v; using default grade %.1f", err, opt.DefaultGrade))
		} else {
			grades = g
		}
	}

	scored := roi.ComputeROI(roi.Join(ro.Entities, grades, opt.DefaultGrade), opt.Scoring)
	res.Entities = scored
	res.Views = Views{
		Top:        roi.Top(scored, opt.TopN),
		Bottom:     roi.Bottom(scored, opt.TopN),
		Categories: roi.SummarizeByCategory(scored),
		Audit:      roi.Audit(scored, opt.Thresholds),
	}
	res.Metrics = summarize(scored, opt.Contracts.TotalBudget)
	if len(grades) > 0 && res.Metrics.GradedPlayers == 0 {
		res.Warnings = append(res.Warnings, "performance: no ranked player matched the roster")
	}
	log.Debug().Int("players", res.Metrics.Players).Int("graded", res.Metrics.GradedPlayers).Msg("roster scored")
	return res, nil
}

func summarize(entities []roster.Entity, budget float64) Metrics {
	m := Metrics{Players: len(entities)}
	var grades, rois []float64
	for _, e := range entities {
		m.CapUsed += e.CapAmount
		grades = append(grades, e.Grade)
		if e.GradeSource == roster.GradeFromPerformance {
			m.GradedPlayers++
		}
		if e.Scored() {
			rois = append(rois, e.ROI)
		}
	}
	if len(grades) > 0 {
		m.MeanGrade = stat.Mean(grades, nil)
	}
	if len(rois) > 0 {
		v := stat.Mean(rois, nil)
		m.MeanROI = &v
	}
	if pct := roster.Fraction(m.CapUsed, budget) * 100; !math.IsNaN(pct) {
		m.CapUsedPct = &pct
		m.CategorySpend = make(map[roster.Category]float64, len(roster.Categories()))
		for _, c := range roster.Categories() {
			m.CategorySpend[c] = 0
		}
		for _, e := range entities {
			m.CategorySpend[e.Category] += e.CapPct()
		}
	}
	return m
}
