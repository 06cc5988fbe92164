// Package distribution derives the normalized probability breakdown of a
// collection for display.
package distribution

import (
	"github.com/samber/lo"

	"github.com/cory-johannsen/deckdraw/internal/draw/dice"
	"github.com/cory-johannsen/deckdraw/internal/draw/entry"
	"github.com/cory-johannsen/deckdraw/internal/draw/weight"
)

// Slice is one entry's share of a collection.
type Slice struct {
	Index       int
	Label       string
	Weight      int
	Probability float64
}

// Report evaluates the weight of every entry with the same rule the sampler
// uses and pairs it with a display label of at most labelLen content runes.
// Dice weights are rolled against src, so two reports may differ.
//
// Postcondition: len(result) == len(entries); probabilities sum to 1 when
// entries is non-empty.
func Report(entries []string, src dice.Source, labelLen int) []Slice {
	slices := lo.Map(entries, func(raw string, i int) Slice {
		e := entry.Decode(raw)
		return Slice{
			Index:  i,
			Label:  entry.Label(i, e.Content, labelLen),
			Weight: weight.Of(e.Expr(), src),
		}
	})
	total := Total(slices)
	for i := range slices {
		slices[i].Probability = float64(slices[i].Weight) / float64(total)
	}
	return slices
}

// Total returns the summed weight of slices.
func Total(slices []Slice) int {
	return lo.SumBy(slices, func(s Slice) int { return s.Weight })
}

// Weights returns the weight column of slices.
func Weights(slices []Slice) []int {
	return lo.Map(slices, func(s Slice, _ int) int { return s.Weight })
}
