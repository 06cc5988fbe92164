package distribution_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/deckdraw/internal/draw/dice"
	"github.com/cory-johannsen/deckdraw/internal/draw/distribution"
)

func TestReport_Weights(t *testing.T) {
	slices := distribution.Report([]string{"a", "::5::b", "c"}, dice.NewSeededSource(1), 0)
	require.Len(t, slices, 3)
	assert.Equal(t, []int{1, 5, 1}, distribution.Weights(slices))
	assert.Equal(t, 7, distribution.Total(slices))
	assert.InDelta(t, 5.0/7.0, slices[1].Probability, 1e-9)
	assert.Equal(t, "Entry #2: b", slices[1].Label)
}

func TestReport_ClampsLikeSampler(t *testing.T) {
	slices := distribution.Report([]string{"::0::zero", "::-4::neg", "::abc::bad", "::2.5::half", "::no close"}, dice.NewSeededSource(1), 0)
	assert.Equal(t, []int{1, 1, 1, 3, 1}, distribution.Weights(slices))
	assert.Equal(t, "Entry #5: ::no close", slices[4].Label)
}

func TestReport_DiceWeightsInRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		slices := distribution.Report([]string{"::2d6+1::x"}, dice.NewSeededSource(uint64(i)), 0)
		assert.GreaterOrEqual(t, slices[0].Weight, 3)
		assert.LessOrEqual(t, slices[0].Weight, 13)
	}
}

func TestReport_Empty(t *testing.T) {
	assert.Empty(t, distribution.Report(nil, dice.NewSeededSource(1), 0))
}

func TestReport_ProbabilitiesSumToOne_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		entries := rapid.SliceOfN(rapid.OneOf(
			rapid.StringMatching(`[a-z]{0,20}`),
			rapid.StringMatching(`::[0-9]{1,3}::[a-z]{0,5}`),
			rapid.StringMatching(`::[0-9]?d[1-9]::[a-z]{0,5}`),
		), 1, 30).Draw(rt, "entries")

		slices := distribution.Report(entries, dice.NewSeededSource(3), 10)
		sum := 0.0
		for _, s := range slices {
			assert.GreaterOrEqual(rt, s.Weight, 1)
			sum += s.Probability
		}
		assert.InDelta(rt, 1.0, sum, 1e-9)
	})
}
