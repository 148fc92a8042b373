package lp_v3

import (
	"context"
	"math/big"

	"github.com/AlexNa-Holdings/lptracker/eth"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"
)

type collectParams struct {
	TokenId    *big.Int
	Recipient  common.Address
	Amount0Max *big.Int
	Amount1Max *big.Int
}

// SimulateCollect runs collect(id, owner, max, max) as an eth_call from owner and returns the
// raw fee amounts the position could withdraw right now. Nothing is submitted.
func (r *Reader) SimulateCollect(ctx context.Context, id *big.Int, owner common.Address) (*big.Int, *big.Int, error) {
	params := collectParams{
		TokenId:    id,
		Recipient:  owner,
		Amount0Max: MAX_UINT128,
		Amount1Max: MAX_UINT128,
	}

	values, err := eth.Call(ctx, r.client, &V3_MANAGER, r.manager, owner, "collect", params)
	if err != nil {
		return nil, nil, err
	}

	amount0, err := asBig(values, 0, "amount0")
	if err != nil {
		return nil, nil, err
	}
	amount1, err := asBig(values, 1, "amount1")
	if err != nil {
		return nil, nil, err
	}

	log.Debug().Msgf("collect simulation %s: amount0=%s amount1=%s", id.String(), amount0.String(), amount1.String())

	return amount0, amount1, nil
}
