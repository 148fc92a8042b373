package cmn

import "strings"

// Token decimals used only after the chain failed to answer decimals().
// Keyed by the pair as stored in token_pair_symbols: "TOKEN0/TOKEN1".
type PD_PairDecimals struct {
	Decimals0 uint8
	Decimals1 uint8
}

var FallbackPairDecimals = map[string]PD_PairDecimals{
	"WBTC/WETH": {Decimals0: 8, Decimals1: 18},
	"WETH/USDC": {Decimals0: 18, Decimals1: 6},
	"WETH/USDT": {Decimals0: 18, Decimals1: 6},
	"WETH/ARB":  {Decimals0: 18, Decimals1: 18},
	"WETH/DAI":  {Decimals0: 18, Decimals1: 18},
	"USDC/USDT": {Decimals0: 6, Decimals1: 6},
	"WBTC/USDC": {Decimals0: 8, Decimals1: 6},
	"ARB/USDC":  {Decimals0: 18, Decimals1: 6},
}

func LookupPairDecimals(pair string) (PD_PairDecimals, bool) {
	d, ok := FallbackPairDecimals[strings.ToUpper(strings.TrimSpace(pair))]
	return d, ok
}
