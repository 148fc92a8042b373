package lp_v3

import (
	"fmt"
	"math/big"

	"github.com/AlexNa-Holdings/lptracker/cmn"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const MIN_TICK = -887272
const MAX_TICK = 887272

// PREC is the mantissa size used for all price arithmetic.
const PREC = 256

var TWO96 = new(big.Int).Lsh(big.NewInt(1), 96)
var Q128 = new(big.Int).Lsh(big.NewInt(1), 128)
var MAX_UINT128 = new(big.Int).Sub(Q128, big.NewInt(1))

var tickBase, _ = new(big.Float).SetPrec(PREC).SetString("1.0001")

func newFloat() *big.Float {
	return new(big.Float).SetPrec(PREC)
}

// tickRatio returns 1.0001^tick, the raw token1-per-token0 ratio.
func tickRatio(tick int64) (*big.Float, error) {
	if tick < MIN_TICK || tick > MAX_TICK {
		return nil, fmt.Errorf("%w: tick %d out of range", cmn.ErrData, tick)
	}

	n := tick
	if n < 0 {
		n = -n
	}

	r := newFloat().SetInt64(1)
	b := newFloat().Set(tickBase)
	for e := uint64(n); e > 0; e >>= 1 {
		if e&1 == 1 {
			r.Mul(r, b)
		}
		b.Mul(b, b)
	}

	if tick < 0 {
		r.Quo(newFloat().SetInt64(1), r)
	}
	return r, nil
}

// sqrtRatio returns (sqrtPriceX96 / 2^96)^2.
func sqrtRatio(sqrtPriceX96 *uint256.Int) (*big.Float, error) {
	if sqrtPriceX96 == nil {
		return nil, fmt.Errorf("%w: missing sqrtPriceX96", cmn.ErrData)
	}
	if sqrtPriceX96.BitLen() > 160 {
		return nil, fmt.Errorf("%w: sqrtPriceX96 %s exceeds 160 bits", cmn.ErrData, sqrtPriceX96.Dec())
	}

	s := newFloat().SetInt(sqrtPriceX96.ToBig())
	s.Mul(s, s)
	return s.SetMantExp(s, -192), nil
}

func pow10(e int) *big.Float {
	if e < 0 {
		e = -e
	}
	return newFloat().SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(e)), nil))
}

// orient turns a raw ratio into quote per base, scaled by the token decimals.
func orient(ratio *big.Float, decimals0, decimals1 uint8, baseIsToken0 bool) (decimal.Decimal, error) {
	if ratio.Sign() == 0 {
		return decimal.Zero, fmt.Errorf("%w: zero price ratio", cmn.ErrData)
	}

	var p *big.Float
	var shift int
	if baseIsToken0 {
		p = newFloat().Set(ratio)
		shift = int(decimals1) - int(decimals0)
	} else {
		p = newFloat().Quo(newFloat().SetInt64(1), ratio)
		shift = int(decimals0) - int(decimals1)
	}

	if shift > 0 {
		p.Quo(p, pow10(shift))
	} else if shift < 0 {
		p.Mul(p, pow10(shift))
	}

	return toDecimal(p)
}

func toDecimal(f *big.Float) (decimal.Decimal, error) {
	if f.IsInf() {
		return decimal.Zero, fmt.Errorf("%w: infinite price", cmn.ErrData)
	}
	d, err := decimal.NewFromString(f.Text('e', 33))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: price %s: %v", cmn.ErrData, f.Text('g', 10), err)
	}
	return d, nil
}

// PriceFromTick converts a tick into the price of the base token in quote tokens.
func PriceFromTick(tick int64, decimals0, decimals1 uint8, baseIsToken0 bool) (decimal.Decimal, error) {
	r, err := tickRatio(tick)
	if err != nil {
		return decimal.Zero, err
	}
	return orient(r, decimals0, decimals1, baseIsToken0)
}

// PriceFromSqrtX96 converts a Q64.96 square root price into the price of the base token in quote tokens.
func PriceFromSqrtX96(sqrtPriceX96 *uint256.Int, decimals0, decimals1 uint8, baseIsToken0 bool) (decimal.Decimal, error) {
	r, err := sqrtRatio(sqrtPriceX96)
	if err != nil {
		return decimal.Zero, err
	}
	return orient(r, decimals0, decimals1, baseIsToken0)
}

// RangeFromTicks converts the position ticks into an ordered price range.
func RangeFromTicks(tickLower, tickUpper int64, decimals0, decimals1 uint8, baseIsToken0 bool) (decimal.Decimal, decimal.Decimal, error) {
	low, err := PriceFromTick(tickLower, decimals0, decimals1, baseIsToken0)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	high, err := PriceFromTick(tickUpper, decimals0, decimals1, baseIsToken0)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	if low.GreaterThan(high) {
		low, high = high, low
	}
	return low, high, nil
}

// SqrtPriceX96FromTick returns floor(sqrt(1.0001^tick) * 2^96).
func SqrtPriceX96FromTick(tick int64) (*big.Int, error) {
	r, err := tickRatio(tick)
	if err != nil {
		return nil, err
	}

	s := newFloat().Sqrt(r)
	s.Mul(s, newFloat().SetInt(TWO96))

	sqrtPriceX96, _ := s.Int(nil)
	log.Trace().Msgf("SqrtPriceX96FromTick: tick=%d, sqrtPriceX96=%s", tick, sqrtPriceX96.String())
	return sqrtPriceX96, nil
}

// Amounts returns the token amounts backing liquidity at sqrtPriceX96 and whether the price is inside the range.
func Amounts(liquidity, sqrtPriceX96, sqrtLowerX96, sqrtUpperX96 *big.Int) (*big.Int, *big.Int, bool) {
	in_range := false

	amount0 := big.NewInt(0)
	amount1 := big.NewInt(0)

	if sqrtLowerX96.Sign() == 0 || sqrtUpperX96.Sign() == 0 || sqrtPriceX96.Sign() == 0 {
		return amount0, amount1, false
	}

	if sqrtPriceX96.Cmp(sqrtLowerX96) <= 0 {
		// below the range, all token0
		n := new(big.Int).Sub(sqrtUpperX96, sqrtLowerX96)
		n.Mul(n, liquidity)
		n.Mul(n, TWO96)
		amount0.Div(n, new(big.Int).Mul(sqrtLowerX96, sqrtUpperX96))
	} else if sqrtPriceX96.Cmp(sqrtUpperX96) >= 0 {
		// above the range, all token1
		n := new(big.Int).Sub(sqrtUpperX96, sqrtLowerX96)
		n.Mul(n, liquidity)
		amount1.Div(n, TWO96)
	} else {
		in_range = true

		n0 := new(big.Int).Sub(sqrtUpperX96, sqrtPriceX96)
		n0.Mul(n0, liquidity)
		n0.Mul(n0, TWO96)
		amount0.Div(n0, new(big.Int).Mul(sqrtPriceX96, sqrtUpperX96))

		n1 := new(big.Int).Sub(sqrtPriceX96, sqrtLowerX96)
		n1.Mul(n1, liquidity)
		amount1.Div(n1, TWO96)
	}

	return amount0, amount1, in_range
}
