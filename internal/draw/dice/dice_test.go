package dice_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/deckdraw/internal/draw/dice"
)

func TestRollResult_Total(t *testing.T) {
	r := dice.RollResult{Expression: "2d6+3", Dice: []int{4, 5}, Modifier: 3}
	assert.Equal(t, 12, r.Total())
}

func TestRollResult_String(t *testing.T) {
	r := dice.RollResult{Expression: "2d6+3", Dice: []int{4, 5}, Modifier: 3}
	assert.Equal(t, "2d6+3 → [4 5] +3 = 12", r.String())
}

func TestRollResult_String_PanicsOnEmptyExpression(t *testing.T) {
	r := dice.RollResult{Dice: []int{4}}
	assert.Panics(t, func() { _ = r.String() })
}

func TestRollResult_String_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		expr := rapid.StringMatching(`[0-9]+d[0-9]+[+-][0-9]+`).Draw(rt, "expression")
		rolled := rapid.SliceOfN(rapid.IntRange(1, 20), 1, 10).Draw(rt, "dice")
		modifier := rapid.IntRange(-100, 100).Draw(rt, "modifier")

		r := dice.RollResult{Expression: expr, Dice: rolled, Modifier: modifier}
		s := r.String()
		assert.True(rt, strings.HasPrefix(s, expr))
		assert.True(rt, strings.HasSuffix(s, fmt.Sprintf("= %d", r.Total())))
	})
}

func TestParse_Forms(t *testing.T) {
	cases := []struct {
		in                    string
		count, sides, modifer int
	}{
		{"d20", 1, 20, 0},
		{"2d6", 2, 6, 0},
		{"2D6+3", 2, 6, 3},
		{"4d8-2", 4, 8, -2},
		{"0d6+2", 0, 6, 2},
		{"1d1", 1, 1, 0},
		{"3d0", 3, 0, 0},
		{"1001d6", 1001, 6, 0},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			e, err := dice.Parse(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.in, e.Raw)
			assert.Equal(t, tc.count, e.Count)
			assert.Equal(t, tc.sides, e.Sides)
			assert.Equal(t, tc.modifer, e.Modifier)
		})
	}
}

func TestParse_Rejects(t *testing.T) {
	for _, in := range []string{"", "abc", "2d", "d", "2x6", " 2d6", "2d6+", "2d6+1+1", "2d6kh1", "99999999999999999999d6"} {
		_, err := dice.Parse(in)
		assert.Error(t, err, "expected %q to be rejected", in)
	}
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { dice.MustParse("nope") })
	assert.NotPanics(t, func() { dice.MustParse("3d4") })
}

func TestRoll_WithinBounds_Property(t *testing.T) {
	src := dice.NewSeededSource(7)
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 20).Draw(rt, "count")
		m := rapid.IntRange(1, 100).Draw(rt, "sides")
		k := rapid.IntRange(-50, 50).Draw(rt, "modifier")
		e := dice.MustParse(fmt.Sprintf("%dd%d%+d", n, m, k))

		r := dice.Roll(e, src)
		require.Len(rt, r.Dice, n)
		for _, d := range r.Dice {
			assert.GreaterOrEqual(rt, d, 1)
			assert.LessOrEqual(rt, d, m)
		}
		assert.GreaterOrEqual(rt, r.Total(), e.Min())
		assert.LessOrEqual(rt, r.Total(), e.Max())
	})
}

func TestRoll_FixedSource(t *testing.T) {
	r := dice.Roll(dice.MustParse("3d6-1"), dice.NewFixedSource(0, 5, 2))
	assert.Equal(t, []int{1, 6, 3}, r.Dice)
	assert.Equal(t, 9, r.Total())
}

func TestRoll_ZeroSidedDiceShowOne(t *testing.T) {
	e := dice.MustParse("3d0+2")
	r := dice.Roll(e, dice.NewFixedSource(4))
	assert.Equal(t, []int{1, 1, 1}, r.Dice)
	assert.Equal(t, 5, r.Total())
	assert.Equal(t, 5, e.Min())
	assert.Equal(t, 5, e.Max())
	assert.Equal(t, float64(5), dice.Sum(e, dice.NewFixedSource(4)))
}

func TestRollExpr_TooManyDice(t *testing.T) {
	_, err := dice.RollExpr(fmt.Sprintf("%dd6", dice.MaxCount+1), dice.NewSeededSource(1))
	assert.ErrorIs(t, err, dice.ErrTooManyDice)

	r, err := dice.RollExpr(fmt.Sprintf("%dd1", dice.MaxCount), dice.NewSeededSource(1))
	require.NoError(t, err)
	assert.Equal(t, dice.MaxCount, r.Total())
}

func TestSum_MatchesRoll(t *testing.T) {
	assert.Equal(t, float64(9), dice.Sum(dice.MustParse("3d6-1"), dice.NewFixedSource(0, 5, 2)))
}

func TestSum_WithinBounds_Property(t *testing.T) {
	src := dice.NewSeededSource(11)
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.OneOf(
			rapid.IntRange(0, 50),
			rapid.IntRange(dice.MaxCount-5, dice.MaxCount+5),
			rapid.IntRange(dice.MaxCount+1, 1<<40),
		).Draw(rt, "count")
		m := rapid.IntRange(1, 1000).Draw(rt, "sides")
		k := rapid.IntRange(-1000, 1000).Draw(rt, "modifier")
		e := dice.MustParse(fmt.Sprintf("%dd%d%+d", n, m, k))

		v := dice.Sum(e, src)
		assert.Equal(rt, v, float64(int64(v)), "sum must be integral")
		assert.GreaterOrEqual(rt, v, float64(n)+float64(k))
		assert.LessOrEqual(rt, v, float64(n)*float64(m)+float64(k))
	})
}

func TestSum_LargePoolCentresOnMean(t *testing.T) {
	src := dice.NewSeededSource(3)
	e := dice.MustParse("1000000d6")
	var total float64
	for range 200 {
		total += dice.Sum(e, src)
	}
	assert.InDelta(t, 3_500_000, total/200, 5_000)
}

func TestNewRand_CarriesFixedValues(t *testing.T) {
	r := dice.NewRand(dice.NewFixedSource(5))
	assert.Equal(t, 5, r.Intn(7))
	assert.Equal(t, 1, r.Intn(4))
	assert.Equal(t, 5, r.Intn(1<<20))
}

func TestNewRand_InRange_Property(t *testing.T) {
	r := dice.NewRand(dice.NewSeededSource(8))
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 1<<40).Draw(rt, "n")
		v := r.Intn(n)
		assert.GreaterOrEqual(rt, v, 0)
		assert.Less(rt, v, n)
	})
}

func TestRollExpr_ParseError(t *testing.T) {
	_, err := dice.RollExpr("banana", dice.NewCryptoSource())
	assert.Error(t, err)
}

func TestCryptoSource_Intn_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Intn(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)
	}
}

func TestSources_Intn_PanicsOnZero(t *testing.T) {
	assert.Panics(t, func() { dice.NewCryptoSource().Intn(0) })
	assert.Panics(t, func() { dice.NewSeededSource(1).Intn(0) })
	assert.Panics(t, func() { dice.NewFixedSource(1).Intn(-1) })
}

func TestSeededSource_Reproducible(t *testing.T) {
	a := dice.NewSeededSource(42)
	b := dice.NewSeededSource(42)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Intn(1000), b.Intn(1000))
	}
}

func TestLoggedRoller_RollExpr(t *testing.T) {
	roller := dice.NewLoggedRoller(dice.NewFixedSource(3), zaptest.NewLogger(t))
	r, err := roller.RollExpr("2d6+1")
	require.NoError(t, err)
	assert.Equal(t, 9, r.Total())

	_, err = roller.RollExpr("2d")
	assert.Error(t, err)
}

func TestNewSource_SeedSelectsDeterminism(t *testing.T) {
	a, b := dice.NewSource(7), dice.NewSource(7)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Intn(1000), b.Intn(1000))
	}
	v := dice.NewSource(0).Intn(10)
	assert.GreaterOrEqual(t, v, 0)
	assert.Less(t, v, 10)
}
