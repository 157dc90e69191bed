package roster

import (
	"errors"
	"fmt"
	"math"

	"github.com/KaramelBytes/caproi-cli/internal/table"
)

var (
	// ErrNoCapColumn means no header looked like a cap amount.
	ErrNoCapColumn = errors.New("no cap amount column found")
	// ErrNoNameColumn means neither a player header nor the positional fallback was usable.
	ErrNoNameColumn = errors.New("no player name column found")
)

// ContractOptions controls contract normalization.
type ContractOptions struct {
	// TotalBudget is the cap every CapFraction is measured against.
	TotalBudget float64
	// NameColumn is the positional fallback for the player column.
	NameColumn int
	// DepthLabelColumn is the positional fallback for the depth-chart label
	// column; negative disables it.
	DepthLabelColumn int
	// DepthSlots is how many player-slot columns follow the label column.
	DepthSlots int
	Weights    Weights
}

// DefaultContractOptions returns the league-year defaults.
func DefaultContractOptions() ContractOptions {
	return ContractOptions{
		TotalBudget:      303_500_000,
		NameColumn:       0,
		DepthLabelColumn: -1,
		DepthSlots:       4,
		Weights:          NewWeights(nil),
	}
}

// Roster is the normalized contract table.
type Roster struct {
	Entities   []Entity
	Dropped    int // rows whose name cleaned to nothing
	Duplicates int // rows discarded because the name was already seen
	// Resolved columns, for diagnostics.
	CapColumn   table.Match
	NameColumn  table.Match
	DepthColumn table.Match
	DepthSlots  []int
	Warnings    []string
}

// CapStrategies locate the cap amount column.
func CapStrategies() []table.Strategy {
	return []table.Strategy{
		table.ContainsAll("cap", "num"),
		table.ContainsAll("cap", "hit"),
		table.ContainsAny("hit"),
		table.ContainsAny("cap"),
	}
}

// NameStrategies locate the player column; fallback is a fixed position.
func NameStrategies(fallback int) []table.Strategy {
	return []table.Strategy{
		table.Exact("Player", "Name"),
		table.ContainsAny("player"),
		table.Position(fallback),
	}
}

// DepthStrategies locate the depth-chart label column.
func DepthStrategies(fallback int) []table.Strategy {
	return []table.Strategy{
		table.Exact("Pos", "Position", "Depth"),
		table.ContainsAny("pos"),
		table.ContainsAny("depth"),
		table.Position(fallback),
	}
}

// NormalizeContracts builds one entity per distinct cleaned player name.
// Without a usable cap or name column it returns an empty roster and an error;
// every per-cell failure degrades to a default instead.
func NormalizeContracts(t *table.Table, opt ContractOptions) (*Roster, error) {
	r := &Roster{}
	if t == nil {
		return r, ErrNoCapColumn
	}
	capM, ok := table.Resolve(t.Header, nil, CapStrategies()...)
	if !ok {
		return r, ErrNoCapColumn
	}
	nameM, ok := table.Resolve(t.Header, []int{capM.Index}, NameStrategies(opt.NameColumn)...)
	if !ok {
		return r, ErrNoNameColumn
	}
	r.CapColumn, r.NameColumn = capM, nameM
	if opt.Weights == nil {
		opt.Weights = NewWeights(nil)
	}

	depthM, hasDepth := table.Resolve(t.Header, []int{capM.Index, nameM.Index}, DepthStrategies(opt.DepthLabelColumn)...)
	r.DepthColumn = depthM
	var assigned map[string]Category
	if hasDepth {
		r.DepthSlots = slotColumns(t.Width(), depthM.Index, opt.DepthSlots, capM.Index, nameM.Index)
		assigned = assignDepth(t, depthM.Index, r.DepthSlots)
	} else {
		r.Warnings = append(r.Warnings, "no depth-chart label column found; all players use the catch-all category")
	}

	seen := make(map[string]bool, len(t.Rows))
	for i := range t.Rows {
		name := CleanName(t.Cell(i, nameM.Index))
		if name == "" {
			r.Dropped++
			continue
		}
		k := Key(name)
		if seen[k] {
			r.Duplicates++
			continue
		}
		seen[k] = true

		cat, ok := assigned[k]
		if !ok {
			cat = Other
			if hasDepth {
				cat = CategoryOf(t.Cell(i, depthM.Index))
			}
		}
		amount := ParseMoney(t.Cell(i, capM.Index))
		r.Entities = append(r.Entities, Entity{
			Name:        name,
			CapAmount:   amount,
			CapFraction: Fraction(amount, opt.TotalBudget),
			Category:    cat,
			Weight:      opt.Weights.Of(cat),
			ROI:         math.NaN(),
			Order:       len(r.Entities),
		})
	}
	if r.Duplicates > 0 {
		r.Warnings = append(r.Warnings, fmt.Sprintf("%d duplicate player rows ignored (first occurrence kept)", r.Duplicates))
	}
	return r, nil
}

// Fraction divides amount by budget; it is NaN when the budget is unusable.
func Fraction(amount, budget float64) float64 {
	if budget <= 0 || math.IsNaN(budget) || math.IsInf(budget, 0) {
		return math.NaN()
	}
	return amount / budget
}

// slotColumns returns up to n columns after label, skipping the name and cap columns.
func slotColumns(width, label, n int, skip ...int) []int {
	var out []int
	for j := label + 1; j < width && len(out) < n; j++ {
		skipped := false
		for _, s := range skip {
			if j == s {
				skipped = true
				break
			}
		}
		if !skipped {
			out = append(out, j)
		}
	}
	return out
}

// assignDepth maps every player named in a slot to its row's category.
// The first assignment in row-scan order wins.
func assignDepth(t *table.Table, label int, slots []int) map[string]Category {
	out := map[string]Category{}
	for i := range t.Rows {
		raw := t.Cell(i, label)
		if CleanName(raw) == "" {
			continue
		}
		cat := CategoryOf(raw)
		for _, col := range slots {
			name := CleanName(t.Cell(i, col))
			if name == "" {
				continue
			}
			if _, ok := out[Key(name)]; !ok {
				out[Key(name)] = cat
			}
		}
	}
	return out
}
