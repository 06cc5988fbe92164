package draw_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/deckdraw/internal/draw"
	"github.com/cory-johannsen/deckdraw/internal/draw/dice"
	"github.com/cory-johannsen/deckdraw/internal/draw/resolver"
	"github.com/cory-johannsen/deckdraw/internal/draw/sampler"
)

func newEngine(t *testing.T, src dice.Source, cfg draw.Config) *draw.Engine {
	t.Helper()
	return draw.NewEngine(src, zaptest.NewLogger(t), cfg)
}

func TestDraw_EmptyOrMissingCollection(t *testing.T) {
	e := newEngine(t, dice.NewSeededSource(1), draw.Config{})
	store := resolver.Map{"empty": {}}

	_, err := e.Draw(store, "empty")
	assert.ErrorIs(t, err, draw.ErrEmptyCollection)
	assert.ErrorIs(t, err, sampler.ErrEmptyPopulation)

	_, err = e.Draw(store, "missing")
	assert.ErrorIs(t, err, draw.ErrEmptyCollection)
}

func TestDraw_WeightedFrequency(t *testing.T) {
	e := newEngine(t, dice.NewSeededSource(11), draw.Config{})
	store := resolver.Map{"deck": {"a", "::5::b", "c"}}

	const trials = 35_000
	hits := 0
	for i := 0; i < trials; i++ {
		res, err := e.Draw(store, "deck")
		require.NoError(t, err)
		if res.Text == "b" {
			hits++
			assert.Equal(t, 5, res.Weight)
			assert.Equal(t, "::5::b", res.Raw)
		}
	}
	assert.InDelta(t, 5.0/7.0, float64(hits)/trials, 0.015)
	assert.Len(t, store["deck"], 3, "top-level draws never consume")
}

func TestDraw_ResolvesReferences(t *testing.T) {
	e := newEngine(t, dice.NewSeededSource(1), draw.Config{})
	store := resolver.Map{"A": {"{B}"}, "B": {"leaf"}}

	res, err := e.Draw(store, "A")
	require.NoError(t, err)
	assert.Equal(t, "leaf", res.Text)
	assert.Equal(t, "{B}", res.Content)
	assert.NotEmpty(t, res.ID)
	assert.Empty(t, store["B"])
	assert.Equal(t, 1, res.Stats.Consumed)
}

func TestDraw_SelfReferenceBounded(t *testing.T) {
	e := newEngine(t, dice.NewSeededSource(1), draw.Config{MaxDepth: 5})
	store := resolver.Map{"Z": {"{%Z}"}}

	res, err := e.Draw(store, "Z")
	require.ErrorIs(t, err, resolver.ErrResolutionDepthExceeded)
	assert.Equal(t, 5, res.Stats.Passes)
	assert.Empty(t, res.Text)
}

func TestDraw_IDsAreUnique(t *testing.T) {
	e := newEngine(t, dice.NewSeededSource(1), draw.Config{})
	store := resolver.Map{"d": {"x"}}
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		res, err := e.Draw(store, "d")
		require.NoError(t, err)
		assert.False(t, seen[res.ID])
		seen[res.ID] = true
	}
}

func TestDistribution(t *testing.T) {
	e := newEngine(t, dice.NewSeededSource(1), draw.Config{LabelLength: 3})
	store := resolver.Map{"deck": {"alpha", "::5::b", "c"}}

	slices, err := e.Distribution(store, "deck")
	require.NoError(t, err)
	require.Len(t, slices, 3)
	assert.Equal(t, "Entry #1: alp...", slices[0].Label)
	assert.Equal(t, 5, slices[1].Weight)

	_, err = e.Distribution(store, "nope")
	assert.ErrorIs(t, err, draw.ErrCollectionNotFound)
}

func TestResolveAndWeight(t *testing.T) {
	e := newEngine(t, dice.NewFixedSource(0), draw.Config{})
	out, stats, err := e.Resolve(resolver.Map{"n": {"one"}}, "<{%n}>")
	require.NoError(t, err)
	assert.Equal(t, "<one>", out)
	assert.Equal(t, 1, stats.Substitutions)

	assert.Equal(t, 7, e.Weight("7"))
	assert.Equal(t, 1, e.Weight("junk"))
	assert.Equal(t, 3, e.Weight("3d6"))
}
