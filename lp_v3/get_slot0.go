package lp_v3

import (
	"context"
	"fmt"

	"github.com/AlexNa-Holdings/lptracker/cmn"
	"github.com/AlexNa-Holdings/lptracker/eth"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog/log"
)

type Slot0 struct {
	SqrtPriceX96 *uint256.Int
	Tick         int64
	FeeProtocol  uint8
	Unlocked     bool
}

func (r *Reader) Slot0(ctx context.Context, pool common.Address) (*Slot0, error) {
	values, err := eth.Call(ctx, r.client, &V3_POOL, pool, common.Address{}, "slot0")
	if err != nil {
		return nil, err
	}

	sqrt, err := asBig(values, 0, "sqrtPriceX96")
	if err != nil {
		return nil, err
	}

	s := &Slot0{}

	var overflow bool
	s.SqrtPriceX96, overflow = uint256.FromBig(sqrt)
	if overflow || sqrt.Sign() < 0 || s.SqrtPriceX96.BitLen() > 160 {
		return nil, fmt.Errorf("%w: sqrtPriceX96 %s out of range", cmn.ErrData, sqrt.String())
	}

	if s.Tick, err = asTick(values, 1, "tick"); err != nil {
		return nil, err
	}

	if len(values) > 6 {
		s.FeeProtocol, _ = values[5].(uint8)
		s.Unlocked, _ = values[6].(bool)
	}

	log.Debug().Msgf("slot0 %s: sqrtPriceX96=%s tick=%d", pool.Hex(), s.SqrtPriceX96.Dec(), s.Tick)

	return s, nil
}
