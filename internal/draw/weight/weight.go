// Package weight evaluates entry weight expressions and applies the clamping
// rule shared by the sampler and the distribution reporter.
package weight

import (
	"math"
	"strconv"
	"strings"

	"github.com/cory-johannsen/deckdraw/internal/draw/dice"
)

// MaxWeight caps a single entry's weight so summed weights cannot overflow.
const MaxWeight = math.MaxInt32

// Default is the weight of an entry without a usable expression.
const Default = 1

// Evaluate returns the raw value of a weight expression.
//
// A finite number literal (surrounding whitespace ignored, empty string is 0)
// evaluates to itself. Dice notation "<count>d<sides>[+|-<modifier>]" is
// rolled against src with dice.Sum, for any count. Anything else evaluates
// to Default.
//
// Precondition: src must be non-nil.
// Postcondition: the result is not clamped; callers use Clamp or Of.
func Evaluate(expr string, src dice.Source) float64 {
	if v, ok := parseNumber(expr); ok {
		return v
	}
	e, err := dice.Parse(expr)
	if err != nil {
		return Default
	}
	return dice.Sum(e, src)
}

// Clamp rounds v half-up to an integer weight in [1, MaxWeight].
// NaN maps to 1.
func Clamp(v float64) int {
	if math.IsNaN(v) || v < 1 {
		return 1
	}
	r := math.Floor(v + 0.5)
	if r >= MaxWeight {
		return MaxWeight
	}
	return int(r)
}

// Of evaluates expr and clamps the result.
//
// Postcondition: 1 <= result <= MaxWeight.
func Of(expr string, src dice.Source) int {
	return Clamp(Evaluate(expr, src))
}

func parseNumber(expr string) (float64, bool) {
	s := strings.TrimSpace(expr)
	if s == "" {
		return 0, true
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return 0, false
		}
		return v, true
	}
	if hasRadixPrefix(s) && !strings.Contains(s, "_") {
		if v, err := strconv.ParseUint(s, 0, 64); err == nil {
			return float64(v), true
		}
	}
	return 0, false
}

func hasRadixPrefix(s string) bool {
	if len(s) < 3 || s[0] != '0' {
		return false
	}
	switch s[1] {
	case 'x', 'X', 'o', 'O', 'b', 'B':
		return true
	}
	return false
}
