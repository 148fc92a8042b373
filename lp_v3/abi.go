package lp_v3

import (
	_ "embed"

	"github.com/AlexNa-Holdings/lptracker/eth"
)

var (
	//go:embed ABI/NonfungiblePositionManager.json
	managerJSON []byte
	//go:embed ABI/UniswapV3Pool.json
	poolJSON []byte
	//go:embed ABI/UniswapV3Factory.json
	factoryJSON []byte
)

var (
	V3_MANAGER = eth.MustParseABI("NonfungiblePositionManager", managerJSON)
	V3_POOL    = eth.MustParseABI("UniswapV3Pool", poolJSON)
	V3_FACTORY = eth.MustParseABI("UniswapV3Factory", factoryJSON)
)
