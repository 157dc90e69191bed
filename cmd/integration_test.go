package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) error {
	t.Helper()
	// Reset sticky flags that may persist Changed state across invocations
	if f := scoreCmd.Flags(); f != nil {
		for name, def := range map[string]string{
			"performance":   "",
			"output":        "",
			"format":        "markdown",
			"budget":        "0",
			"default-grade": "0",
			"top":           "0",
			"delimiter":     "",
			"max-rows":      "100000",
		} {
			if fl := f.Lookup(name); fl != nil {
				_ = fl.Value.Set(def)
				fl.Changed = false
			}
		}
	}
	cfgFile = ""
	debug = false
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func setHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

const cliRoster = "Player,Cap Number,Pos,Starter,2nd,3rd,4th\n" +
	"Q. Back,\"$45,000,000\",QB,Q. Back,,,\n" +
	"W. One,\"$20,000,000\",WR,W. One,W. Two,,\n" +
	"W. Two,\"$2,000,000\",,,,,\n"

const cliRanks = "Player,Rank\nQ. Back,5/32\nW. One,8/40\nW. Two,24/40\n"

func TestCLI_ScoreWritesMarkdown(t *testing.T) {
	home := setHome(t)
	roster := writeFile(t, home, "roster.csv", cliRoster)
	ranks := writeFile(t, home, "ranks.csv", cliRanks)
	out := filepath.Join(home, "report.md")

	if err := runCmd(t, "score", roster, "-p", ranks, "-o", out); err != nil {
		t.Fatalf("score failed: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	md := string(b)
	for _, want := range []string{"[ROI SUMMARY]", "Roster: roster.csv", "Performance: ranks.csv", "[TOP ROI]", "W. Two"} {
		if !strings.Contains(md, want) {
			t.Fatalf("report missing %q:\n%s", want, md)
		}
	}
}

func TestCLI_ScoreJSONAndCSV(t *testing.T) {
	home := setHome(t)
	roster := writeFile(t, home, "roster.csv", cliRoster)

	jsonOut := filepath.Join(home, "report.json")
	if err := runCmd(t, "score", roster, "--format", "json", "--default-grade", "60", "-o", jsonOut); err != nil {
		t.Fatalf("score json failed: %v", err)
	}
	b, err := os.ReadFile(jsonOut)
	if err != nil {
		t.Fatal(err)
	}
	var res struct {
		Entities []struct {
			Name  string  `json:"name"`
			Grade float64 `json:"grade"`
		} `json:"entities"`
		Warnings []string `json:"warnings"`
	}
	if err := json.Unmarshal(b, &res); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(res.Entities) != 3 || res.Entities[0].Grade != 60 {
		t.Fatalf("unexpected entities: %+v", res.Entities)
	}
	if len(res.Warnings) == 0 {
		t.Fatalf("expected a missing-performance warning")
	}

	csvOut := filepath.Join(home, "report.csv")
	if err := runCmd(t, "score", roster, "--format", "csv", "-o", csvOut); err != nil {
		t.Fatalf("score csv failed: %v", err)
	}
	b, err = os.ReadFile(csvOut)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 4 || !strings.HasPrefix(lines[0], "name,cap_amount") {
		t.Fatalf("unexpected csv:\n%s", b)
	}
}

func TestCLI_ScoreDeterministic(t *testing.T) {
	home := setHome(t)
	roster := writeFile(t, home, "roster.csv", cliRoster)
	ranks := writeFile(t, home, "ranks.csv", cliRanks)
	a := filepath.Join(home, "a.json")
	b := filepath.Join(home, "b.json")
	if err := runCmd(t, "score", roster, "-p", ranks, "--format", "json", "-o", a); err != nil {
		t.Fatal(err)
	}
	if err := runCmd(t, "score", roster, "-p", ranks, "--format", "json", "-o", b); err != nil {
		t.Fatal(err)
	}
	ab, _ := os.ReadFile(a)
	bb, _ := os.ReadFile(b)
	if string(ab) != string(bb) {
		t.Fatalf("same inputs produced different reports")
	}
}

func TestCLI_ScoreRejectsBadInput(t *testing.T) {
	home := setHome(t)
	roster := writeFile(t, home, "roster.csv", cliRoster)
	noCap := writeFile(t, home, "nocap.csv", "Player,Team\nA,B\n")

	cases := [][]string{
		{"score", noCap},
		{"score", filepath.Join(home, "missing.csv")},
		{"score", roster, "--format", "xml"},
		{"score", roster, "--budget", "-5"},
		{"score", roster, "--default-grade", "120"},
		{"score", roster, "--delimiter", "|"},
	}
	for _, args := range cases {
		if err := runCmd(t, args...); err == nil {
			t.Errorf("expected error for %v", args)
		}
	}
}

func TestCLI_ConfigSetPersists(t *testing.T) {
	home := setHome(t)
	if err := runCmd(t, "config", "set", "total_budget", "255400000"); err != nil {
		t.Fatalf("config set: %v", err)
	}
	if err := runCmd(t, "config", "set", "category_weights.qb", "0.95"); err != nil {
		t.Fatalf("config set weight: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(home, ".caproi", "config.yaml"))
	if err != nil {
		t.Fatalf("config not saved: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, "total_budget: 2.554e+08") && !strings.Contains(s, "total_budget: 255400000") {
		t.Fatalf("budget not saved:\n%s", s)
	}
	if !strings.Contains(s, "QB: 0.95") {
		t.Fatalf("weight not saved:\n%s", s)
	}

	for _, args := range [][]string{
		{"config", "set", "nope", "1"},
		{"config", "set", "epsilon", "-1"},
		{"config", "set", "category_weights.XX", "0.5"},
		{"config", "set", "log_level", "loud"},
	} {
		if err := runCmd(t, args...); err == nil {
			t.Errorf("expected error for %v", args)
		}
	}
}

func TestCLI_CategoriesAndConfigShow(t *testing.T) {
	setHome(t)
	if err := runCmd(t, "categories"); err != nil {
		t.Fatalf("categories: %v", err)
	}
	if err := runCmd(t, "config", "show"); err != nil {
		t.Fatalf("config show: %v", err)
	}
}
