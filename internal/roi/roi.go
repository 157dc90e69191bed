// Package roi scores normalized players by grade against cap spend and
// builds the ranking, category and leverage views.
package roi

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/KaramelBytes/caproi-cli/internal/roster"
	"gonum.org/v1/gonum/stat"
)

// DefaultEpsilon keeps the ROI denominator away from zero for minimum contracts.
const DefaultEpsilon = 0.1

// Options controls scoring.
type Options struct {
	Epsilon float64
}

// DefaultOptions returns the standard scoring options.
func DefaultOptions() Options { return Options{Epsilon: DefaultEpsilon} }

// Formula computes grade*weight / (capPct + epsilon). It is NaN when any
// input is undefined.
func Formula(grade, weight, capPct, epsilon float64) float64 {
	if math.IsNaN(grade) || math.IsNaN(capPct) || math.IsNaN(weight) {
		return math.NaN()
	}
	return grade * weight / (capPct + epsilon)
}

// Join attaches grades to entities. Players absent from grades get defaultGrade.
func Join(entities []roster.Entity, grades roster.Grades, defaultGrade float64) []roster.Entity {
	out := make([]roster.Entity, len(entities))
	for i, e := range entities {
		if g, ok := grades.LookupClean(e.Name); ok {
			e.Grade = g
			e.GradeSource = roster.GradeFromPerformance
		} else {
			e.Grade = defaultGrade
			e.GradeSource = roster.GradeDefault
		}
		out[i] = e
	}
	return out
}

// ComputeROI returns a copy of entities with ROI set on every one of them.
// Nothing is filtered; undefined inputs yield a NaN ROI.
func ComputeROI(entities []roster.Entity, opt Options) []roster.Entity {
	eps := opt.Epsilon
	if eps <= 0 {
		eps = DefaultEpsilon
	}
	out := make([]roster.Entity, len(entities))
	for i, e := range entities {
		e.ROI = Formula(e.Grade, e.Weight, e.CapPct(), eps)
		out[i] = e
	}
	return out
}

// Top returns the n highest-ROI entities; n <= 0 returns all of them.
// Entities with an undefined ROI are excluded. Ties keep insertion order.
func Top(entities []roster.Entity, n int) []roster.Entity {
	return ranked(entities, n, func(a, b float64) bool { return a > b })
}

// Bottom returns the n lowest-ROI entities, ties by insertion order.
func Bottom(entities []roster.Entity, n int) []roster.Entity {
	return ranked(entities, n, func(a, b float64) bool { return a < b })
}

func ranked(entities []roster.Entity, n int, better func(a, b float64) bool) []roster.Entity {
	out := make([]roster.Entity, 0, len(entities))
	for _, e := range entities {
		if e.Scored() {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ROI == out[j].ROI {
			return out[i].Order < out[j].Order
		}
		return better(out[i].ROI, out[j].ROI)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// CategorySummary aggregates the members of one category.
type CategorySummary struct {
	Category  roster.Category `json:"category"`
	Players   int             `json:"players"`
	CapTotal  float64         `json:"cap_total"`
	CapPct    float64         `json:"cap_pct"`
	MeanGrade float64         `json:"mean_grade"`
	MeanROI   float64         `json:"mean_roi"`
}

// SummarizeByCategory groups entities by category: summed cap, mean grade and
// mean ROI. Rows are sorted by mean ROI descending; categories without any
// defined ROI sort last.
func SummarizeByCategory(entities []roster.Entity) []CategorySummary {
	type acc struct {
		cap, pct     float64
		grades, rois []float64
		n            int
	}
	groups := map[roster.Category]*acc{}
	for _, e := range entities {
		a := groups[e.Category]
		if a == nil {
			a = &acc{}
			groups[e.Category] = a
		}
		a.n++
		a.cap += e.CapAmount
		if !math.IsNaN(e.CapFraction) {
			a.pct += e.CapPct()
		}
		a.grades = append(a.grades, e.Grade)
		if e.Scored() {
			a.rois = append(a.rois, e.ROI)
		}
	}
	out := make([]CategorySummary, 0, len(groups))
	for c, a := range groups {
		s := CategorySummary{Category: c, Players: a.n, CapTotal: a.cap, CapPct: a.pct, MeanGrade: stat.Mean(a.grades, nil), MeanROI: math.NaN()}
		if len(a.rois) > 0 {
			s.MeanROI = stat.Mean(a.rois, nil)
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		ni, nj := math.IsNaN(out[i].MeanROI), math.IsNaN(out[j].MeanROI)
		if ni != nj {
			return nj
		}
		if ni || out[i].MeanROI == out[j].MeanROI {
			return roster.Rank(out[i].Category) < roster.Rank(out[j].Category)
		}
		return out[i].MeanROI > out[j].MeanROI
	})
	return out
}

// MarshalJSON emits null for an undefined mean ROI.
func (s CategorySummary) MarshalJSON() ([]byte, error) {
	type plain CategorySummary
	var roi *float64
	if !math.IsNaN(s.MeanROI) {
		v := s.MeanROI
		roi = &v
	}
	return json.Marshal(struct {
		plain
		MeanROI *float64 `json:"mean_roi"`
	}{plain: plain(s), MeanROI: roi})
}
