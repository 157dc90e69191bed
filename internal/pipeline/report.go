package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/KaramelBytes/caproi-cli/internal/roster"
)

// Markdown renders a compact report suitable for terminals or standalone docs.
func (r *Result) Markdown() string {
	var b strings.Builder
	b.WriteString("[ROI SUMMARY]\n")
	b.WriteString(fmt.Sprintf("Roster: %s\n", safeName(r.Roster)))
	if r.Performance != "" {
		b.WriteString(fmt.Sprintf("Performance: %s\n", r.Performance))
	}
	m := r.Metrics
	b.WriteString(fmt.Sprintf("Players: %d (graded %d)\n", m.Players, m.GradedPlayers))
	b.WriteString(fmt.Sprintf("Cap used: %s", money(m.CapUsed)))
	if m.CapUsedPct != nil {
		b.WriteString(fmt.Sprintf(" (%.1f%% of budget)", *m.CapUsedPct))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Mean grade: %.1f\n", m.MeanGrade))
	b.WriteString(fmt.Sprintf("Mean ROI: %s\n", optNum(m.MeanROI)))

	if len(m.CategorySpend) > 0 {
		b.WriteString("\n[CATEGORY SPEND]\n")
		for _, c := range roster.Categories() {
			b.WriteString(fmt.Sprintf("- %s: %.1f%%\n", c, m.CategorySpend[c]))
		}
	}

	if len(r.Views.Categories) > 0 {
		b.WriteString("\n[CATEGORIES]\n")
		b.WriteString("| category | players | cap | cap % | mean grade | mean roi |\n")
		b.WriteString("| --- | --- | --- | --- | --- | --- |\n")
		for _, c := range r.Views.Categories {
			b.WriteString(fmt.Sprintf("| %s | %d | %s | %.2f | %.1f | %s |\n",
				c.Category, c.Players, money(c.CapTotal), c.CapPct, c.MeanGrade, num(c.MeanROI)))
		}
	}

	writeRanking(&b, "TOP ROI", r.Views.Top)
	writeRanking(&b, "BOTTOM ROI", r.Views.Bottom)

	if len(r.Views.Audit) > 0 {
		b.WriteString("\n[LEVERAGE AUDIT]\n")
		b.WriteString(fmt.Sprintf("Contracts at or above %.1f%% of budget:\n", r.Thresholds.SpendPct))
		for _, a := range r.Views.Audit {
			e := a.Entity
			b.WriteString(fmt.Sprintf("- %s (%s, %s, %.2f%%): %s, grade %.1f, roi %s\n",
				safeVal(e.Name), e.Category, money(e.CapAmount), e.CapPct(), a.Leverage, e.Grade, num(e.ROI)))
		}
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func writeRanking(b *strings.Builder, title string, es []roster.Entity) {
	if len(es) == 0 {
		return
	}
	b.WriteString(fmt.Sprintf("\n[%s]\n", title))
	b.WriteString("| # | player | category | cap | cap % | grade | roi |\n")
	b.WriteString("| --- | --- | --- | --- | --- | --- | --- |\n")
	for i, e := range es {
		b.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %.2f | %.1f | %s |\n",
			i+1, safeVal(e.Name), e.Category, money(e.CapAmount), e.CapPct(), e.Grade, num(e.ROI)))
	}
}

// CSVHeader is the column order written by WriteCSV.
var CSVHeader = []string{"name", "cap_amount", "cap_fraction_pct", "category", "category_weight", "grade", "grade_source", "roi"}

// WriteCSV writes the per-entity table in insertion order.
func (r *Result) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range r.Entities {
		rec := []string{
			e.Name,
			strconv.FormatFloat(e.CapAmount, 'f', 2, 64),
			csvNum(e.CapPct()),
			string(e.Category),
			strconv.FormatFloat(e.Weight, 'f', 2, 64),
			strconv.FormatFloat(e.Grade, 'f', 2, 64),
			string(e.GradeSource),
			csvNum(e.ROI),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvNum(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', 4, 64)
}

func num(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", f)
}

func optNum(f *float64) string {
	if f == nil {
		return "n/a"
	}
	return num(*f)
}

// money formats an amount as $1,234,567.
func money(f float64) string {
	s := strconv.FormatFloat(math.Round(f), 'f', 0, 64)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	var out []byte
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-$" + string(out)
	}
	return "$" + string(out)
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
