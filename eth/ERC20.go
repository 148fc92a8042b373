package eth

import (
	"context"
	"fmt"

	"github.com/AlexNa-Holdings/lptracker/cmn"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

type ERC20Reader struct {
	client ethereum.ContractCaller
}

func NewERC20Reader(c ethereum.ContractCaller) *ERC20Reader {
	return &ERC20Reader{client: c}
}

func (r *ERC20Reader) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	values, err := Call(ctx, r.client, &ERC20, token, common.Address{}, "decimals")
	if err != nil {
		return 0, err
	}

	d, ok := values[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("%w: decimals of %s: unexpected type %T", cmn.ErrTerminal, token.Hex(), values[0])
	}
	return d, nil
}

func (r *ERC20Reader) Symbol(ctx context.Context, token common.Address) (string, error) {
	values, err := Call(ctx, r.client, &ERC20, token, common.Address{}, "symbol")
	if err != nil {
		return "", err
	}

	s, ok := values[0].(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%w: symbol of %s: empty or unexpected %T", cmn.ErrTerminal, token.Hex(), values[0])
	}
	return s, nil
}
