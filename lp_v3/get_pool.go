package lp_v3

import (
	"context"
	"fmt"
	"math/big"

	"github.com/AlexNa-Holdings/lptracker/cmn"
	"github.com/AlexNa-Holdings/lptracker/eth"
	"github.com/ethereum/go-ethereum/common"
)

func (r *Reader) Pool(ctx context.Context, token0, token1 common.Address, fee *big.Int) (common.Address, error) {
	factory, err := r.Factory(ctx)
	if err != nil {
		return common.Address{}, err
	}

	values, err := eth.Call(ctx, r.client, &V3_FACTORY, factory, common.Address{}, "getPool", token0, token1, fee)
	if err != nil {
		return common.Address{}, err
	}

	pool, err := asAddress(values, 0, "getPool")
	if err != nil {
		return common.Address{}, err
	}

	if pool == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: no pool for %s/%s fee %s", cmn.ErrTerminal, token0.Hex(), token1.Hex(), fee.String())
	}

	return pool, nil
}
