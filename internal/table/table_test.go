package table

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadPadsRaggedRows(t *testing.T) {
	in := "Player,Cap Number\nJ. Doe,\"$1,000,000\",extra\nA. Smith\n"
	tb, err := Read(strings.NewReader(in), DefaultOptions())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if tb.Width() != 3 {
		t.Fatalf("width=%d, want 3", tb.Width())
	}
	if len(tb.Rows) != 2 {
		t.Fatalf("rows=%d, want 2", len(tb.Rows))
	}
	if got := tb.Cell(0, 1); got != "$1,000,000" {
		t.Fatalf("cell(0,1)=%q", got)
	}
	if got := tb.Cell(1, 2); got != "" {
		t.Fatalf("padded cell should be empty, got %q", got)
	}
	if got := tb.Cell(5, 9); got != "" {
		t.Fatalf("out-of-range cell should be empty, got %q", got)
	}
}

func TestReadEmptyInput(t *testing.T) {
	tb, err := Read(strings.NewReader(""), DefaultOptions())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if tb.Width() != 0 || len(tb.Rows) != 0 {
		t.Fatalf("expected empty table, got %+v", tb)
	}
}

func TestReadStripsBOMAndCapsRows(t *testing.T) {
	in := "\ufeffName,Rank\na,1\nb,2\nc,3\n"
	tb, err := Read(strings.NewReader(in), Options{MaxRows: 2})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if tb.Header[0] != "Name" {
		t.Fatalf("BOM not stripped: %q", tb.Header[0])
	}
	if len(tb.Rows) != 2 || tb.Truncated != 1 {
		t.Fatalf("rows=%d truncated=%d", len(tb.Rows), tb.Truncated)
	}
}

func TestReadFileTSV(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "ranks.tsv")
	if err := os.WriteFile(p, []byte("Player\tRank\nJ. Doe\t8/40\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tb, err := ReadFile(p, DefaultOptions())
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if tb.Name != "ranks.tsv" {
		t.Fatalf("name=%q", tb.Name)
	}
	if tb.Cell(0, 1) != "8/40" {
		t.Fatalf("tab delimiter not detected: %+v", tb.Rows)
	}
}

func TestWithHeaderAsData(t *testing.T) {
	tb, err := Read(strings.NewReader("J. Doe,12\nA. Smith,3\n"), DefaultOptions())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	h := tb.WithHeaderAsData()
	if len(h.Rows) != 2 || h.Cell(0, 0) != "J. Doe" || h.Header[1] != "col2" {
		t.Fatalf("unexpected table: %+v", h)
	}
	if tb.Header[0] != "J. Doe" {
		t.Fatalf("source table modified")
	}
}
