package cmn

import "github.com/ethereum/go-ethereum/common"

type PD_Chain struct {
	Name              string
	ChainId           int
	PositionManager   common.Address // Uniswap V3 NonfungiblePositionManager
	CoinGeckoPlatform string
	DexScreenerChain  string
}

var PredefinedChains = []PD_Chain{
	{
		Name:              "Ethereum",
		ChainId:           1,
		PositionManager:   common.HexToAddress("0xC36442b4a4522E871399CD717aBDD847Ab11FE88"),
		CoinGeckoPlatform: "ethereum",
		DexScreenerChain:  "ethereum",
	},
	{
		Name:              "Optimism",
		ChainId:           10,
		PositionManager:   common.HexToAddress("0xC36442b4a4522E871399CD717aBDD847Ab11FE88"),
		CoinGeckoPlatform: "optimistic-ethereum",
		DexScreenerChain:  "optimism",
	},
	{
		Name:              "Polygon",
		ChainId:           137,
		PositionManager:   common.HexToAddress("0xC36442b4a4522E871399CD717aBDD847Ab11FE88"),
		CoinGeckoPlatform: "polygon-pos",
		DexScreenerChain:  "polygon",
	},
	{
		Name:              "Base",
		ChainId:           8453,
		PositionManager:   common.HexToAddress("0x03a520b32C04BF3bEEf7BEb72E919cf822Ed34f1"),
		CoinGeckoPlatform: "base",
		DexScreenerChain:  "base",
	},
	{
		Name:              "Arbitrum One",
		ChainId:           42161,
		PositionManager:   common.HexToAddress("0xC36442b4a4522E871399CD717aBDD847Ab11FE88"),
		CoinGeckoPlatform: "arbitrum-one",
		DexScreenerChain:  "arbitrum",
	},
}

func GetChain(chainId int) *PD_Chain {
	for i := range PredefinedChains {
		if PredefinedChains[i].ChainId == chainId {
			return &PredefinedChains[i]
		}
	}
	return nil
}
