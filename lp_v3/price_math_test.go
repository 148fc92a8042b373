package lp_v3

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/AlexNa-Holdings/lptracker/cmn"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertClose(t *testing.T, want, got decimal.Decimal, eps string) {
	t.Helper()
	require.False(t, want.IsZero())
	rel := got.Sub(want).Div(want).Abs()
	assert.True(t, rel.LessThan(decimal.RequireFromString(eps)), "want %s got %s", want, got)
}

func TestPriceFromTick_Basics(t *testing.T) {
	p, err := PriceFromTick(0, 18, 18, true)
	require.NoError(t, err)
	assert.True(t, p.Equal(decimal.NewFromInt(1)), p.String())

	p, err = PriceFromTick(0, 8, 18, true)
	require.NoError(t, err)
	assert.True(t, p.Equal(decimal.New(1, -10)), p.String())

	p, err = PriceFromTick(0, 8, 18, false)
	require.NoError(t, err)
	assert.True(t, p.Equal(decimal.New(1, 10)), p.String())

	p, err = PriceFromTick(1, 18, 18, true)
	require.NoError(t, err)
	assertClose(t, decimal.RequireFromString("1.0001"), p, "1e-30")
}

func TestPriceFromSqrtX96_AgreesWithTick(t *testing.T) {
	for _, tick := range []int64{-100000, 0, 100000} {
		for _, base0 := range []bool{true, false} {
			t.Run(fmt.Sprintf("tick=%d base0=%v", tick, base0), func(t *testing.T) {
				sqrt, err := SqrtPriceX96FromTick(tick)
				require.NoError(t, err)

				fromTick, err := PriceFromTick(tick, 8, 18, base0)
				require.NoError(t, err)

				fromSqrt, err := PriceFromSqrtX96(uint256.MustFromBig(sqrt), 8, 18, base0)
				require.NoError(t, err)

				assertClose(t, fromTick, fromSqrt, "1e-12")
			})
		}
	}
}

func TestPriceFromSqrtX96_Reciprocal(t *testing.T) {
	sqrt, err := SqrtPriceX96FromTick(-201234)
	require.NoError(t, err)
	s := uint256.MustFromBig(sqrt)

	p0, err := PriceFromSqrtX96(s, 8, 18, true)
	require.NoError(t, err)
	p1, err := PriceFromSqrtX96(s, 8, 18, false)
	require.NoError(t, err)

	assertClose(t, decimal.NewFromInt(1), p0.Mul(p1), "1e-25")
}

func TestPriceFromSqrtX96_ZeroRatio(t *testing.T) {
	for _, base0 := range []bool{true, false} {
		_, err := PriceFromSqrtX96(uint256.NewInt(0), 18, 6, base0)
		assert.ErrorIs(t, err, cmn.ErrData)
	}
}

func TestPriceFromSqrtX96_TooWide(t *testing.T) {
	s := new(uint256.Int).Lsh(uint256.NewInt(1), 160)
	_, err := PriceFromSqrtX96(s, 18, 18, true)
	assert.ErrorIs(t, err, cmn.ErrData)
}

func TestPriceFromTick_OutOfRange(t *testing.T) {
	_, err := PriceFromTick(MAX_TICK+1, 18, 18, true)
	assert.ErrorIs(t, err, cmn.ErrData)
	_, err = PriceFromTick(MIN_TICK-1, 18, 18, false)
	assert.ErrorIs(t, err, cmn.ErrData)
}

func TestRangeFromTicks_Ordered(t *testing.T) {
	low0, high0, err := RangeFromTicks(-200000, -190000, 18, 6, true)
	require.NoError(t, err)
	assert.True(t, low0.LessThan(high0))

	low1, high1, err := RangeFromTicks(-200000, -190000, 18, 6, false)
	require.NoError(t, err)
	assert.True(t, low1.LessThan(high1))

	// flipping the base inverts and swaps the ends
	assertClose(t, decimal.NewFromInt(1), low1.Mul(high0), "1e-25")
	assertClose(t, decimal.NewFromInt(1), high1.Mul(low0), "1e-25")
}

func TestSqrtPriceX96FromTick(t *testing.T) {
	s, err := SqrtPriceX96FromTick(0)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Cmp(TWO96))

	s, err = SqrtPriceX96FromTick(1)
	require.NoError(t, err)
	assert.Equal(t, "79232123823359799118286999567", s.String())
}

func TestAmounts(t *testing.T) {
	lower, _ := SqrtPriceX96FromTick(-100)
	upper, _ := SqrtPriceX96FromTick(100)
	liquidity := big.NewInt(1_000_000_000_000)

	below, _ := SqrtPriceX96FromTick(-200)
	a0, a1, in := Amounts(liquidity, below, lower, upper)
	assert.False(t, in)
	assert.Positive(t, a0.Sign())
	assert.Zero(t, a1.Sign())

	above, _ := SqrtPriceX96FromTick(200)
	a0, a1, in = Amounts(liquidity, above, lower, upper)
	assert.False(t, in)
	assert.Zero(t, a0.Sign())
	assert.Positive(t, a1.Sign())

	a0, a1, in = Amounts(liquidity, TWO96, lower, upper)
	assert.True(t, in)
	assert.Positive(t, a0.Sign())
	assert.Positive(t, a1.Sign())
}

func TestUnclaimedFees(t *testing.T) {
	zero := big.NewInt(0)
	tick := &TickInfo{FeeGrowthOutside0X128: zero, FeeGrowthOutside1X128: zero}

	pos := &NftPosition{
		Id:                       big.NewInt(1),
		TickLower:                -10,
		TickUpper:                10,
		Liquidity:                big.NewInt(3),
		FeeGrowthInside0LastX128: new(big.Int).Sub(TWO256, Q128), // wrapped around
		FeeGrowthInside1LastX128: zero,
		TokensOwed0:              big.NewInt(5),
		TokensOwed1:              big.NewInt(0),
	}
	growth := &FeeGrowth{
		Global0X128: new(big.Int).Set(Q128),
		Global1X128: new(big.Int).Mul(Q128, big.NewInt(10)),
	}

	f0, f1 := UnclaimedFees(pos, growth, 0, tick, tick)
	assert.Equal(t, "11", f0.String()) // 2 * 3 + 5
	assert.Equal(t, "30", f1.String())

	// below the range nothing accrues inside
	pos.FeeGrowthInside0LastX128 = zero
	f0, f1 = UnclaimedFees(pos, growth, -20, tick, tick)
	assert.Equal(t, "5", f0.String())
	assert.Equal(t, "0", f1.String())
}
