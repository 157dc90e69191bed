package roster

import "strings"

// Category is a coarse positional group.
type Category string

const (
	QB    Category = "QB"
	RB    Category = "RB"
	WR    Category = "WR"
	TE    Category = "TE"
	OL    Category = "OL"
	DL    Category = "DL"
	LB    Category = "LB"
	DB    Category = "DB"
	ST    Category = "ST"
	Other Category = "OTHER" // catch-all for unmapped labels
)

// categoryLabels maps each category to the raw depth-chart labels it absorbs.
var categoryLabels = []struct {
	cat    Category
	labels []string
}{
	{QB, []string{"QB"}},
	{RB, []string{"RB", "FB"}},
	{WR, []string{"WR"}},
	{TE, []string{"TE"}},
	{OL, []string{"LT", "LG", "C", "RG", "RT", "G", "T", "OL"}},
	{DL, []string{"ED", "IDL", "DT", "DE", "DL"}},
	{LB, []string{"LB", "ILB", "OLB"}},
	{DB, []string{"CB", "S", "FS", "SS", "DB"}},
	{ST, []string{"K", "P", "LS"}},
}

// DefaultWeights are the static importance multipliers per category.
var DefaultWeights = map[Category]float64{
	QB:    1.00,
	RB:    0.60,
	WR:    0.85,
	TE:    0.70,
	OL:    0.90,
	DL:    0.90,
	LB:    0.70,
	DB:    0.80,
	ST:    0.30,
	Other: 0.50,
}

// Categories returns every category in display order, catch-all last.
func Categories() []Category {
	out := make([]Category, 0, len(categoryLabels)+1)
	for _, c := range categoryLabels {
		out = append(out, c.cat)
	}
	return append(out, Other)
}

// Labels returns the raw labels mapped to c. The catch-all has none.
func Labels(c Category) []string {
	for _, cl := range categoryLabels {
		if cl.cat == c {
			return append([]string(nil), cl.labels...)
		}
	}
	return nil
}

// Rank returns the display position of c, used to break ties deterministically.
func Rank(c Category) int {
	for i, cl := range categoryLabels {
		if cl.cat == c {
			return i
		}
	}
	return len(categoryLabels)
}

// CategoryOf maps a raw position label to its category. It is total:
// anything without a case-insensitive exact match lands in Other.
func CategoryOf(label string) Category {
	l := strings.TrimSpace(label)
	if l == "" {
		return Other
	}
	for _, cl := range categoryLabels {
		for _, raw := range cl.labels {
			if strings.EqualFold(raw, l) {
				return cl.cat
			}
		}
	}
	return Other
}

// Weights resolves the importance multiplier for a category.
type Weights map[Category]float64

// NewWeights starts from DefaultWeights and applies overrides keyed by
// category code in any case. Unknown codes and non-positive values are ignored.
func NewWeights(overrides map[string]float64) Weights {
	w := make(Weights, len(DefaultWeights))
	for c, v := range DefaultWeights {
		w[c] = v
	}
	for k, v := range overrides {
		c := Category(strings.ToUpper(strings.TrimSpace(k)))
		if _, ok := DefaultWeights[c]; !ok || v <= 0 {
			continue
		}
		if v > 1 {
			v = 1
		}
		w[c] = v
	}
	return w
}

// Of returns the weight for c, falling back to the catch-all weight.
func (w Weights) Of(c Category) float64 {
	if v, ok := w[c]; ok {
		return v
	}
	if v, ok := w[Other]; ok {
		return v
	}
	return DefaultWeights[Other]
}
