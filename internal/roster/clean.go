package roster

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseMoney turns a free-form money string ("$1,000,000", " 950 000 ") into
// a non-negative amount. Anything unparsable yields 0.
func ParseMoney(s string) float64 {
	var b strings.Builder
	neg := false
	for _, r := range s {
		switch {
		case r == ',' || unicode.IsSpace(r) || unicode.Is(unicode.Sc, r):
		case r == '(' || r == ')':
			neg = true
		default:
			b.WriteRune(r)
		}
	}
	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	if neg || f < 0 {
		return 0
	}
	return f
}

var sentinels = map[string]bool{
	"-": true, "--": true, "—": true, "–": true,
	"nan": true, "n/a": true, "none": true, "null": true,
	"rank": true, "pos": true, "player": true, "name": true,
}

// Depth-chart role words that leak into name cells.
var roleWords = map[string]bool{
	"starter": true, "backup": true, "2nd": true, "3rd": true, "4th": true,
}

// Injury, suspension and reserve markers. Matched case-sensitively so that
// ordinary name parts are not mistaken for tags.
var statusTags = map[string]bool{
	"IR": true, "Q": true, "O": true, "D": true, "PUP": true, "NFI": true,
	"SUSP": true, "RES": true, "COV": true, "DNR": true, "PS": true,
}

var suffixes = map[string]bool{
	"jr.": true, "jr": true, "sr.": true, "sr": true, "ii": true, "iii": true, "iv": true,
}

// CleanName canonicalizes a player name. It returns "" for placeholder and
// header-leak values, and strips at most one trailing role word, then one
// status tag, then one generational suffix.
func CleanName(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	if sentinels[strings.ToLower(strings.Join(fields, " "))] {
		return ""
	}
	last := func() string { return fields[len(fields)-1] }

	if roleWords[strings.ToLower(last())] {
		fields = fields[:len(fields)-1]
	}
	if len(fields) > 1 && statusTags[strings.Trim(last(), "()")] {
		fields = fields[:len(fields)-1]
	}
	if len(fields) > 1 && suffixes[strings.ToLower(strings.TrimSuffix(last(), ","))] {
		fields = fields[:len(fields)-1]
	}
	if len(fields) == 0 {
		return ""
	}
	name := strings.TrimSuffix(strings.Join(fields, " "), ",")
	if sentinels[strings.ToLower(name)] {
		return ""
	}
	return name
}

// Key is the join key for a cleaned name.
func Key(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
