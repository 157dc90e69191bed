package roster

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/KaramelBytes/caproi-cli/internal/table"
)

var (
	// ErrNoPerformanceColumns means neither header nor positional lookup found name and rank columns.
	ErrNoPerformanceColumns = errors.New("no player/rank columns found in performance file")
	// ErrNoPerformanceRows means columns were found but no row carried a usable rank.
	ErrNoPerformanceRows = errors.New("no usable rank rows in performance file")
)

// PerformanceOptions holds positional fallbacks for headerless ranking files.
type PerformanceOptions struct {
	NameColumn int
	RankColumn int
}

// DefaultPerformanceOptions returns player in the first column, rank in the second.
func DefaultPerformanceOptions() PerformanceOptions {
	return PerformanceOptions{NameColumn: 0, RankColumn: 1}
}

// Grades maps a join key (see Key) to a 0-100 grade.
type Grades map[string]float64

// Lookup returns the grade for a raw name as it appears in an input file.
func (g Grades) Lookup(raw string) (float64, bool) {
	return g.LookupClean(CleanName(raw))
}

// LookupClean returns the grade for a name that already went through CleanName.
func (g Grades) LookupClean(name string) (float64, bool) {
	v, ok := g[Key(name)]
	return v, ok
}

func perfNameStrategies() []table.Strategy {
	return []table.Strategy{
		table.Exact("Player", "Name", "Player Name"),
		table.ContainsAny("player"),
		table.ContainsAny("name"),
	}
}

func perfRankStrategies() []table.Strategy {
	return []table.Strategy{
		table.Exact("Rank", "Grade", "Overall"),
		table.ContainsAny("rank"),
		table.ContainsAny("grade"),
	}
}

// NormalizePerformance reads a ranking file into grades by player. Rows that
// do not parse are skipped rather than zero-scored.
func NormalizePerformance(t *table.Table, opt PerformanceOptions) (Grades, error) {
	grades := Grades{}
	if t == nil || t.Width() == 0 {
		return grades, ErrNoPerformanceColumns
	}
	var nameM, rankM table.Match
	var nameOK, rankOK bool
	if !headerIsData(t.Header) {
		nameM, nameOK = table.Resolve(t.Header, nil, perfNameStrategies()...)
		var exclude []int
		if nameOK {
			exclude = []int{nameM.Index}
		}
		rankM, rankOK = table.Resolve(t.Header, exclude, perfRankStrategies()...)
	}

	gradeMode := false
	switch {
	case !nameOK && !rankOK:
		// No usable header at all: the first line is data.
		t = t.WithHeaderAsData()
		nameM, nameOK = table.Resolve(t.Header, nil, table.Position(opt.NameColumn))
		rankM, rankOK = table.Resolve(t.Header, []int{nameM.Index}, table.Position(opt.RankColumn))
	case !nameOK:
		nameM, nameOK = table.Resolve(t.Header, []int{rankM.Index}, table.Position(opt.NameColumn))
	case !rankOK:
		rankM, rankOK = table.Resolve(t.Header, []int{nameM.Index}, table.Position(opt.RankColumn))
	}
	if !nameOK || !rankOK {
		return grades, ErrNoPerformanceColumns
	}
	if rankM.Index < len(t.Header) {
		gradeMode = strings.Contains(strings.ToLower(t.Header[rankM.Index]), "grade")
	}

	for i := range t.Rows {
		name := CleanName(t.Cell(i, nameM.Index))
		if name == "" {
			continue
		}
		k := Key(name)
		if _, dup := grades[k]; dup {
			continue
		}
		raw := t.Cell(i, rankM.Index)
		var g float64
		var ok bool
		if gradeMode {
			g, ok = parseGrade(raw)
		} else {
			g, ok = ParseRank(raw)
		}
		if ok {
			grades[k] = g
		}
	}
	if len(grades) == 0 {
		return grades, ErrNoPerformanceRows
	}
	return grades, nil
}

// headerIsData reports whether the first line carries a rank value, which a
// header row never does.
func headerIsData(header []string) bool {
	for _, h := range header {
		if _, ok := ParseRank(h); ok {
			return true
		}
	}
	return false
}

// ParseRank scores a rank as a 0-100 grade. "rank/pool" scores
// 100 - rank/pool*100 (a pool of one scores 100); a plain rank scores 100 - rank.
func ParseRank(s string) (float64, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if s == "" {
		return 0, false
	}
	if i := strings.Index(s, "/"); i >= 0 {
		rank, ok1 := parseFinite(s[:i])
		pool, ok2 := parseFinite(s[i+1:])
		if !ok1 || !ok2 || pool <= 0 || rank < 0 {
			return 0, false
		}
		if pool == 1 && rank == 1 {
			return 100, true
		}
		return clampGrade(100 - rank/pool*100), true
	}
	rank, ok := parseFinite(s)
	if !ok {
		return 0, false
	}
	return clampGrade(100 - rank), true
}

func parseGrade(s string) (float64, bool) {
	if strings.Contains(s, "/") {
		return ParseRank(s)
	}
	g, ok := parseFinite(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if !ok {
		return 0, false
	}
	return clampGrade(g), true
}

func parseFinite(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func clampGrade(g float64) float64 {
	return math.Max(0, math.Min(100, g))
}
