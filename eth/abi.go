package eth

import (
	"bytes"
	_ "embed"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/rs/zerolog/log"
)

//go:embed ABI/ERC20.json
var erc20JSON []byte

var ERC20 = MustParseABI("ERC20", erc20JSON)

// MustParseABI parses an embedded contract ABI. A broken ABI is a build defect, so it is fatal.
func MustParseABI(name string, data []byte) abi.ABI {
	a, err := abi.JSON(bytes.NewReader(data))
	if err != nil {
		log.Fatal().Msgf("Error parsing %s ABI: %v", name, err)
	}
	return a
}
