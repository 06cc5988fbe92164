package dice

import (
	"fmt"
	"regexp"
	"strconv"
)

var exprPattern = regexp.MustCompile(`(?i)^(\d*)d(\d+)([+-]\d+)?$`)

// Expression represents a parsed dice expression ready to be rolled.
// Invariant: Count >= 0 and Sides >= 0 after successful Parse.
type Expression struct {
	Raw      string // original input string
	Count    int    // number of dice
	Sides    int    // faces per die
	Modifier int    // flat modifier (may be negative)
}

// Parse parses a dice expression of the form "<count>d<sides>[+|-<modifier>]".
// Count defaults to 1 when omitted; the "d" is case-insensitive.
// Supported forms: "d20", "2d6", "2D6+3", "4d8-2", "0d6+2", "3d0".
// A die with zero sides always shows 1.
//
// Postcondition: Returns an Expression or a descriptive error.
func Parse(expr string) (Expression, error) {
	if expr == "" {
		return Expression{}, fmt.Errorf("dice: empty expression")
	}
	m := exprPattern.FindStringSubmatch(expr)
	if m == nil {
		return Expression{}, fmt.Errorf("dice: malformed expression %q", expr)
	}

	count := 1
	if m[1] != "" {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid die count in %q: %w", expr, err)
		}
		count = n
	}
	sides, err := strconv.Atoi(m[2])
	if err != nil {
		return Expression{}, fmt.Errorf("dice: invalid die sides in %q: %w", expr, err)
	}
	modifier := 0
	if m[3] != "" {
		modifier, err = strconv.Atoi(m[3])
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid modifier in %q: %w", expr, err)
		}
	}

	return Expression{
		Raw:      expr,
		Count:    count,
		Sides:    sides,
		Modifier: modifier,
	}, nil
}

// Min returns the smallest total the expression can roll.
func (e Expression) Min() int { return e.Count + e.Modifier }

// Max returns the largest total the expression can roll.
func (e Expression) Max() int { return e.Count*max(e.Sides, 1) + e.Modifier }
