package lp_v3

import (
	"context"
	"math/big"

	"github.com/AlexNa-Holdings/lptracker/eth"
	"github.com/ethereum/go-ethereum/common"
)

type FeeGrowth struct {
	Global0X128 *big.Int
	Global1X128 *big.Int
}

func (r *Reader) FeeGrowth(ctx context.Context, pool common.Address) (*FeeGrowth, error) {
	values, err := eth.Call(ctx, r.client, &V3_POOL, pool, common.Address{}, "feeGrowthGlobal0X128")
	if err != nil {
		return nil, err
	}
	fee0, err := asBig(values, 0, "feeGrowthGlobal0X128")
	if err != nil {
		return nil, err
	}

	values, err = eth.Call(ctx, r.client, &V3_POOL, pool, common.Address{}, "feeGrowthGlobal1X128")
	if err != nil {
		return nil, err
	}
	fee1, err := asBig(values, 0, "feeGrowthGlobal1X128")
	if err != nil {
		return nil, err
	}

	return &FeeGrowth{Global0X128: fee0, Global1X128: fee1}, nil
}
