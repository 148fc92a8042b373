package eth

import (
	"context"
	"fmt"

	"github.com/AlexNa-Holdings/lptracker/cmn"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"
)

// Call packs method(args...) for contract, runs it as a read-only eth_call from `from`
// and unpacks the outputs. Pack and unpack failures are terminal.
func Call(ctx context.Context, c ethereum.ContractCaller, contract *abi.ABI, to, from common.Address,
	method string, args ...interface{}) ([]interface{}, error) {

	data, err := contract.Pack(method, args...)
	if err != nil {
		log.Error().Err(err).Msgf("Pack %s", method)
		return nil, fmt.Errorf("%w: pack %s: %v", cmn.ErrTerminal, method, err)
	}

	call_msg := ethereum.CallMsg{
		To:   &to,
		From: from,
		Data: data,
	}

	output, err := c.CallContract(ctx, call_msg, nil)
	if err != nil {
		log.Debug().Err(err).Msgf("call %s on %s", method, to.Hex())
		return nil, err
	}

	values, err := contract.Unpack(method, output)
	if err != nil {
		log.Error().Err(err).Msgf("Unpack %s from %s", method, to.Hex())
		return nil, fmt.Errorf("%w: unpack %s: %v", cmn.ErrTerminal, method, err)
	}

	return values, nil
}
