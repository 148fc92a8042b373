package lp_v3

import (
	"context"
	"math/big"

	"github.com/AlexNa-Holdings/lptracker/eth"
	"github.com/ethereum/go-ethereum/common"
)

type TickInfo struct {
	LiquidityGross        *big.Int
	LiquidityNet          *big.Int
	FeeGrowthOutside0X128 *big.Int
	FeeGrowthOutside1X128 *big.Int
	Initialized           bool
}

func (r *Reader) Tick(ctx context.Context, pool common.Address, tick int64) (*TickInfo, error) {
	values, err := eth.Call(ctx, r.client, &V3_POOL, pool, common.Address{}, "ticks", big.NewInt(tick))
	if err != nil {
		return nil, err
	}

	t := &TickInfo{}
	if t.LiquidityGross, err = asBig(values, 0, "liquidityGross"); err != nil {
		return nil, err
	}
	if t.LiquidityNet, err = asBig(values, 1, "liquidityNet"); err != nil {
		return nil, err
	}
	if t.FeeGrowthOutside0X128, err = asBig(values, 2, "feeGrowthOutside0X128"); err != nil {
		return nil, err
	}
	if t.FeeGrowthOutside1X128, err = asBig(values, 3, "feeGrowthOutside1X128"); err != nil {
		return nil, err
	}
	if len(values) > 7 {
		t.Initialized, _ = values[7].(bool)
	}

	return t, nil
}
