package table

import (
	"fmt"
	"strings"
)

// Strategy is one rule for locating a column in a header row.
// Strategies are tried in order by Resolve; the first hit wins.
type Strategy interface {
	// Match returns the first acceptable column index, or -1.
	Match(header []string, skip func(int) bool) int
	String() string
}

// Match reports where a column was found and which rule found it.
type Match struct {
	Index    int
	Strategy string
}

// Resolve tries strategies in order and returns the first match. Columns in
// exclude are never returned, so two roles cannot resolve to the same column.
func Resolve(header []string, exclude []int, strategies ...Strategy) (Match, bool) {
	skip := func(i int) bool {
		for _, e := range exclude {
			if e == i {
				return true
			}
		}
		return false
	}
	for _, s := range strategies {
		if idx := s.Match(header, skip); idx >= 0 {
			return Match{Index: idx, Strategy: s.String()}, true
		}
	}
	return Match{Index: -1}, false
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

type exact []string

// Exact matches a header equal to one of names, ignoring case and surrounding space.
// Names are tried in the given order.
func Exact(names ...string) Strategy { return exact(names) }

func (e exact) Match(header []string, skip func(int) bool) int {
	for _, name := range e {
		for i, h := range header {
			if !skip(i) && norm(h) == norm(name) {
				return i
			}
		}
	}
	return -1
}

func (e exact) String() string { return fmt.Sprintf("exact%v", []string(e)) }

type containsAll []string

// ContainsAll matches the first header containing every token (case-insensitive).
func ContainsAll(tokens ...string) Strategy { return containsAll(tokens) }

func (c containsAll) Match(header []string, skip func(int) bool) int {
	for i, h := range header {
		if skip(i) {
			continue
		}
		hn := norm(h)
		ok := hn != ""
		for _, tok := range c {
			if !strings.Contains(hn, norm(tok)) {
				ok = false
				break
			}
		}
		if ok {
			return i
		}
	}
	return -1
}

func (c containsAll) String() string { return fmt.Sprintf("contains-all%v", []string(c)) }

type containsAny []string

// ContainsAny matches the first header containing any token (case-insensitive).
func ContainsAny(tokens ...string) Strategy { return containsAny(tokens) }

func (c containsAny) Match(header []string, skip func(int) bool) int {
	for i, h := range header {
		if skip(i) {
			continue
		}
		hn := norm(h)
		for _, tok := range c {
			if hn != "" && strings.Contains(hn, norm(tok)) {
				return i
			}
		}
	}
	return -1
}

func (c containsAny) String() string { return fmt.Sprintf("contains-any%v", []string(c)) }

type position int

// Position matches a fixed zero-based column, if the header is wide enough.
// A negative index never matches.
func Position(i int) Strategy { return position(i) }

func (p position) Match(header []string, skip func(int) bool) int {
	i := int(p)
	if i < 0 || i >= len(header) || skip(i) {
		return -1
	}
	return i
}

func (p position) String() string { return fmt.Sprintf("position[%d]", int(p)) }
