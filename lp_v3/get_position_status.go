package lp_v3

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"
)

var TWO256 = new(big.Int).Lsh(big.NewInt(1), 256)

type PositionStatus struct {
	InRange bool
	Amount0 *big.Int
	Amount1 *big.Int
	Fees0   *big.Int
	Fees1   *big.Int
}

// PositionStatus computes the liquidity amounts and the unclaimed fees of a position from pool
// state alone. It is the fallback when the collect simulation is refused, e.g. for a wallet that
// does not own the position.
func (r *Reader) PositionStatus(ctx context.Context, pos *NftPosition, pool common.Address, slot0 *Slot0) (*PositionStatus, error) {
	growth, err := r.FeeGrowth(ctx, pool)
	if err != nil {
		return nil, err
	}

	lower, err := r.Tick(ctx, pool, pos.TickLower)
	if err != nil {
		return nil, err
	}

	upper, err := r.Tick(ctx, pool, pos.TickUpper)
	if err != nil {
		return nil, err
	}

	sqrtLower, err := SqrtPriceX96FromTick(pos.TickLower)
	if err != nil {
		return nil, err
	}
	sqrtUpper, err := SqrtPriceX96FromTick(pos.TickUpper)
	if err != nil {
		return nil, err
	}

	s := &PositionStatus{}
	s.Amount0, s.Amount1, s.InRange = Amounts(pos.Liquidity, slot0.SqrtPriceX96.ToBig(), sqrtLower, sqrtUpper)
	s.Fees0, s.Fees1 = UnclaimedFees(pos, growth, slot0.Tick, lower, upper)

	return s, nil
}

// sub256 is a - b modulo 2^256, the overflow semantics of the pool's fee accumulators.
func sub256(a, b *big.Int) *big.Int {
	d := new(big.Int).Sub(a, b)
	return d.Mod(d, TWO256)
}

func feeGrowthInside(pos *NftPosition, growth *FeeGrowth, tick int64, lower, upper *TickInfo) (*big.Int, *big.Int) {
	var below0, below1 *big.Int
	if tick >= pos.TickLower {
		below0, below1 = lower.FeeGrowthOutside0X128, lower.FeeGrowthOutside1X128
	} else {
		below0 = sub256(growth.Global0X128, lower.FeeGrowthOutside0X128)
		below1 = sub256(growth.Global1X128, lower.FeeGrowthOutside1X128)
	}

	var above0, above1 *big.Int
	if tick < pos.TickUpper {
		above0, above1 = upper.FeeGrowthOutside0X128, upper.FeeGrowthOutside1X128
	} else {
		above0 = sub256(growth.Global0X128, upper.FeeGrowthOutside0X128)
		above1 = sub256(growth.Global1X128, upper.FeeGrowthOutside1X128)
	}

	inside0 := sub256(sub256(growth.Global0X128, below0), above0)
	inside1 := sub256(sub256(growth.Global1X128, below1), above1)

	log.Trace().Msgf("feeGrowthInside: %s %s", inside0.String(), inside1.String())

	return inside0, inside1
}

// UnclaimedFees returns tokensOwed plus the fees accrued since the position was last touched.
func UnclaimedFees(pos *NftPosition, growth *FeeGrowth, tick int64, lower, upper *TickInfo) (*big.Int, *big.Int) {
	inside0, inside1 := feeGrowthInside(pos, growth, tick, lower, upper)

	fees0 := sub256(inside0, pos.FeeGrowthInside0LastX128)
	fees0.Mul(fees0, pos.Liquidity)
	fees0.Div(fees0, Q128)

	fees1 := sub256(inside1, pos.FeeGrowthInside1LastX128)
	fees1.Mul(fees1, pos.Liquidity)
	fees1.Div(fees1, Q128)

	if pos.TokensOwed0 != nil {
		fees0.Add(fees0, pos.TokensOwed0)
	}
	if pos.TokensOwed1 != nil {
		fees1.Add(fees1, pos.TokensOwed1)
	}

	log.Debug().Msgf("unclaimed fees of %v: %s %s", pos.Id, fees0.String(), fees1.String())

	return fees0, fees1
}
