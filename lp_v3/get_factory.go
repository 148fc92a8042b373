package lp_v3

import (
	"context"

	"github.com/AlexNa-Holdings/lptracker/eth"
	"github.com/ethereum/go-ethereum/common"
)

// Factory returns the pool factory of the position manager. The answer is cached.
func (r *Reader) Factory(ctx context.Context) (common.Address, error) {
	if r.factory != nil {
		return *r.factory, nil
	}

	values, err := eth.Call(ctx, r.client, &V3_MANAGER, r.manager, common.Address{}, "factory")
	if err != nil {
		return common.Address{}, err
	}

	f, err := asAddress(values, 0, "factory")
	if err != nil {
		return common.Address{}, err
	}

	r.factory = &f
	return f, nil
}
