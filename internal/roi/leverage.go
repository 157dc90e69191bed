package roi

import (
	"sort"

	"github.com/KaramelBytes/caproi-cli/internal/roster"
)

// Leverage is the verdict on a high-spend contract.
type Leverage string

const (
	Justified   Leverage = "JUSTIFIED"
	Stable      Leverage = "STABLE"
	Inefficient Leverage = "INEFFICIENT"
)

// Thresholds are the tunable cut points for Classify.
type Thresholds struct {
	// SpendPct is the minimum cap percentage for a contract to be judged.
	SpendPct float64 `json:"spend_pct"`
	// JustifiedGrade and JustifiedROI each independently justify the spend.
	JustifiedGrade float64 `json:"justified_grade"`
	JustifiedROI   float64 `json:"justified_roi"`
	// InefficientROI is the ROI below which spend is flagged.
	InefficientROI float64 `json:"inefficient_roi"`
}

// DefaultThresholds returns the standard cut points.
func DefaultThresholds() Thresholds {
	return Thresholds{SpendPct: 5, JustifiedGrade: 80, JustifiedROI: 15, InefficientROI: 8}
}

// Classify judges one entity. ok is false when the entity is below the spend
// threshold or has no defined ROI.
func Classify(e roster.Entity, t Thresholds) (Leverage, bool) {
	if !e.Scored() || e.CapPct() < t.SpendPct {
		return "", false
	}
	switch {
	case e.Grade >= t.JustifiedGrade || e.ROI >= t.JustifiedROI:
		return Justified, true
	case e.ROI < t.InefficientROI:
		return Inefficient, true
	default:
		return Stable, true
	}
}

// Assessment pairs a high-spend entity with its verdict.
type Assessment struct {
	Entity   roster.Entity `json:"entity"`
	Leverage Leverage      `json:"leverage"`
}

// Audit classifies every high-spend entity, largest cap first.
func Audit(entities []roster.Entity, t Thresholds) []Assessment {
	var out []Assessment
	for _, e := range entities {
		if l, ok := Classify(e, t); ok {
			out = append(out, Assessment{Entity: e, Leverage: l})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Entity.CapAmount > out[j].Entity.CapAmount
	})
	return out
}
