package dice

import (
	"errors"
	"fmt"
	"math"
)

// MaxCount bounds the dice Roll records one by one. Sum accepts any count.
const MaxCount = 10_000

// ErrTooManyDice is returned when an expression asks RollExpr for more than
// MaxCount individual dice.
var ErrTooManyDice = errors.New("dice: too many dice to roll individually")

// Roll evaluates an Expression using the given Source and returns a RollResult.
// Each die is an independent draw from src.
//
// Precondition: expr must come from Parse with Count <= MaxCount; src must be non-nil.
// Postcondition: len(result.Dice) == expr.Count;
// result.Total() == sum(result.Dice) + result.Modifier.
func Roll(expr Expression, src Source) RollResult {
	rolled := make([]int, expr.Count)
	for i := range rolled {
		rolled[i] = rollDie(expr.Sides, src)
	}
	return RollResult{
		Expression: expr.Raw,
		Dice:       rolled,
		Modifier:   expr.Modifier,
	}
}

// Sum returns the total of one roll of expr without recording the dice.
// Pools of up to MaxCount dice are rolled die by die. Larger pools are drawn
// from the normal approximation of their sum.
//
// Precondition: expr must come from Parse; src must be non-nil.
// Postcondition: Count+Modifier <= result <= Count*max(Sides,1)+Modifier.
func Sum(expr Expression, src Source) float64 {
	n, k := float64(expr.Count), float64(expr.Modifier)
	if expr.Sides <= 1 {
		return n + k
	}
	if expr.Count <= MaxCount {
		total := k
		for range expr.Count {
			total += float64(rollDie(expr.Sides, src))
		}
		return total
	}
	m := float64(expr.Sides)
	mean := n * (m + 1) / 2
	sd := math.Sqrt(n * (m*m - 1) / 12)
	v := math.Round(mean+sd*standardNormal(src)) + k
	return math.Min(math.Max(v, n+k), n*m+k)
}

func rollDie(sides int, src Source) int {
	if sides < 1 {
		return 1
	}
	return src.Intn(sides) + 1
}

// standardNormal approximates a standard normal variate by the Irwin-Hall sum
// of twelve uniforms.
func standardNormal(src Source) float64 {
	const unit = 1 << 24
	var s float64
	for range 12 {
		s += float64(src.Intn(unit)) / unit
	}
	return s - 6
}

// RollExpr parses expr and rolls it using src in a single call.
//
// Precondition: src must be non-nil.
// Postcondition: Returns a RollResult, a parse error, or ErrTooManyDice.
func RollExpr(expr string, src Source) (RollResult, error) {
	e, err := parseRollable(expr)
	if err != nil {
		return RollResult{}, err
	}
	return Roll(e, src), nil
}

func parseRollable(expr string) (Expression, error) {
	e, err := Parse(expr)
	if err != nil {
		return Expression{}, err
	}
	if e.Count > MaxCount {
		return Expression{}, fmt.Errorf("%w: %d dice in %q exceeds %d", ErrTooManyDice, e.Count, expr, MaxCount)
	}
	return e, nil
}

// MustParse parses expr and panics on error. Useful for package-level values.
//
// Precondition: expr must be a valid dice expression.
func MustParse(expr string) Expression {
	e, err := Parse(expr)
	if err != nil {
		panic("dice: MustParse failed for expression " + expr + ": " + err.Error())
	}
	return e
}
