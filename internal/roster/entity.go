// Package roster normalizes raw contract and performance exports into
// canonical per-player records.
package roster

import (
	"encoding/json"
	"math"
)

// GradeSource records where an entity's grade came from.
type GradeSource string

const (
	GradeFromPerformance GradeSource = "performance"
	GradeDefault         GradeSource = "default"
)

// Entity is one salaried player after normalization.
type Entity struct {
	Name        string
	CapAmount   float64
	CapFraction float64 // CapAmount / total budget; NaN when no budget is known
	Category    Category
	Weight      float64
	Grade       float64
	GradeSource GradeSource
	ROI         float64 // NaN until scored, or when CapFraction is undefined
	// Order is the insertion index within one load; used as the stable tie-breaker.
	Order int
}

// CapPct returns the cap fraction as a percentage.
func (e Entity) CapPct() float64 { return e.CapFraction * 100 }

// Scored reports whether ROI is defined.
func (e Entity) Scored() bool { return !math.IsNaN(e.ROI) && !math.IsInf(e.ROI, 0) }

type entityJSON struct {
	Name        string      `json:"name"`
	CapAmount   float64     `json:"cap_amount"`
	CapPct      *float64    `json:"cap_fraction_pct"`
	Category    Category    `json:"category"`
	Weight      float64     `json:"category_weight"`
	Grade       float64     `json:"grade"`
	GradeSource GradeSource `json:"grade_source,omitempty"`
	ROI         *float64    `json:"roi"`
}

// MarshalJSON emits null for undefined cap fractions and ROI values.
func (e Entity) MarshalJSON() ([]byte, error) {
	return json.Marshal(entityJSON{
		Name:        e.Name,
		CapAmount:   e.CapAmount,
		CapPct:      finite(e.CapPct()),
		Category:    e.Category,
		Weight:      e.Weight,
		Grade:       e.Grade,
		GradeSource: e.GradeSource,
		ROI:         finite(e.ROI),
	})
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
