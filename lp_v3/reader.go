package lp_v3

import (
	"fmt"
	"math/big"

	"github.com/AlexNa-Holdings/lptracker/cmn"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// Reader answers read-only questions about positions of one NonfungiblePositionManager.
type Reader struct {
	client  ethereum.ContractCaller
	manager common.Address
	factory *common.Address
}

func NewReader(c ethereum.ContractCaller, manager common.Address) *Reader {
	return &Reader{client: c, manager: manager}
}

func (r *Reader) Manager() common.Address {
	return r.manager
}

func asBig(values []interface{}, i int, field string) (*big.Int, error) {
	if i >= len(values) {
		return nil, fmt.Errorf("%w: %s: missing output %d", cmn.ErrTerminal, field, i)
	}
	v, ok := values[i].(*big.Int)
	if !ok || v == nil {
		return nil, fmt.Errorf("%w: %s: unexpected type %T", cmn.ErrTerminal, field, values[i])
	}
	return v, nil
}

func asAddress(values []interface{}, i int, field string) (common.Address, error) {
	if i >= len(values) {
		return common.Address{}, fmt.Errorf("%w: %s: missing output %d", cmn.ErrTerminal, field, i)
	}
	v, ok := values[i].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%w: %s: unexpected type %T", cmn.ErrTerminal, field, values[i])
	}
	return v, nil
}

func asTick(values []interface{}, i int, field string) (int64, error) {
	v, err := asBig(values, i, field)
	if err != nil {
		return 0, err
	}
	if !v.IsInt64() || v.Int64() < MIN_TICK || v.Int64() > MAX_TICK {
		return 0, fmt.Errorf("%w: %s: tick %s out of range", cmn.ErrData, field, v.String())
	}
	return v.Int64(), nil
}
