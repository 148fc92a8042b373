package lp_v3

import (
	"context"
	"math/big"

	"github.com/AlexNa-Holdings/lptracker/eth"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"
)

type NftPosition struct {
	Id                       *big.Int
	Nonce                    *big.Int
	Operator                 common.Address
	Token0                   common.Address
	Token1                   common.Address
	Fee                      *big.Int
	TickLower                int64
	TickUpper                int64
	Liquidity                *big.Int
	FeeGrowthInside0LastX128 *big.Int
	FeeGrowthInside1LastX128 *big.Int
	TokensOwed0              *big.Int
	TokensOwed1              *big.Int
}

func (r *Reader) NftPosition(ctx context.Context, id *big.Int) (*NftPosition, error) {
	values, err := eth.Call(ctx, r.client, &V3_MANAGER, r.manager, common.Address{}, "positions", id)
	if err != nil {
		return nil, err
	}

	p := &NftPosition{Id: new(big.Int).Set(id)}

	if p.Nonce, err = asBig(values, 0, "nonce"); err != nil {
		return nil, err
	}
	if p.Operator, err = asAddress(values, 1, "operator"); err != nil {
		return nil, err
	}
	if p.Token0, err = asAddress(values, 2, "token0"); err != nil {
		return nil, err
	}
	if p.Token1, err = asAddress(values, 3, "token1"); err != nil {
		return nil, err
	}
	if p.Fee, err = asBig(values, 4, "fee"); err != nil {
		return nil, err
	}
	if p.TickLower, err = asTick(values, 5, "tickLower"); err != nil {
		return nil, err
	}
	if p.TickUpper, err = asTick(values, 6, "tickUpper"); err != nil {
		return nil, err
	}
	if p.Liquidity, err = asBig(values, 7, "liquidity"); err != nil {
		return nil, err
	}
	if p.FeeGrowthInside0LastX128, err = asBig(values, 8, "feeGrowthInside0LastX128"); err != nil {
		return nil, err
	}
	if p.FeeGrowthInside1LastX128, err = asBig(values, 9, "feeGrowthInside1LastX128"); err != nil {
		return nil, err
	}
	if p.TokensOwed0, err = asBig(values, 10, "tokensOwed0"); err != nil {
		return nil, err
	}
	if p.TokensOwed1, err = asBig(values, 11, "tokensOwed1"); err != nil {
		return nil, err
	}

	log.Debug().Msgf("position %s: %s/%s fee=%s ticks=[%d,%d] liquidity=%s",
		id.String(), p.Token0.Hex(), p.Token1.Hex(), p.Fee.String(), p.TickLower, p.TickUpper, p.Liquidity.String())

	return p, nil
}
