// Package sampler draws one value from a weighted population.
package sampler

import (
	"errors"
	"fmt"

	"github.com/mroth/weightedrand/v2"

	"github.com/cory-johannsen/deckdraw/internal/draw/dice"
)

// ErrEmptyPopulation is returned when the total weight of a population is zero.
var ErrEmptyPopulation = errors.New("sampler: empty population")

// Item pairs a value with its relative weight. Items with Weight < 1 are
// never selected.
type Item[T any] struct {
	Value  T
	Weight int
}

// Draw picks one value with probability proportional to its weight.
//
// Precondition: src must be non-nil.
// Postcondition: Returns ErrEmptyPopulation if no item has Weight >= 1.
func Draw[T any](items []Item[T], src dice.Source) (T, error) {
	i, err := Index(items, src)
	if err != nil {
		var zero T
		return zero, err
	}
	return items[i].Value, nil
}

// Index is Draw returning the position of the chosen item instead of its value.
//
// Every draw consumes src through dice.NewRand, so a seeded source gives a
// reproducible sequence of picks.
func Index[T any](items []Item[T], src dice.Source) (int, error) {
	choices := make([]weightedrand.Choice[int, int], 0, len(items))
	for i, it := range items {
		if it.Weight > 0 {
			choices = append(choices, weightedrand.NewChoice(i, it.Weight))
		}
	}
	if len(choices) == 0 {
		return -1, ErrEmptyPopulation
	}
	chooser, err := weightedrand.NewChooser(choices...)
	if err != nil {
		return -1, fmt.Errorf("sampler: %w", err)
	}
	return chooser.PickSource(dice.NewRand(src)), nil
}
