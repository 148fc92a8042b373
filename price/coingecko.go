package price

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/AlexNa-Holdings/lptracker/cmn"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// CGCoinResponse is the part of /coins/{platform}/contract/{address} we read.
type CGCoinResponse struct {
	ID         string `json:"id"`
	Symbol     string `json:"symbol"`
	MarketData struct {
		CurrentPrice map[string]decimal.NullDecimal `json:"current_price"`
	} `json:"market_data"`
}

type CoinGecko struct {
	client   *http.Client
	base     string
	apiKey   string
	platform string
}

func NewCoinGecko(client *http.Client, base, apiKey, platform string) *CoinGecko {
	return &CoinGecko{
		client:   client,
		base:     strings.TrimRight(base, "/"),
		apiKey:   apiKey,
		platform: platform,
	}
}

func (cg *CoinGecko) Name() string {
	return FEEDER_COINGECKO
}

func (cg *CoinGecko) USDPrice(ctx context.Context, token common.Address) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s/coins/%s/contract/%s", cg.base, cg.platform, token.Hex())

	header := http.Header{}
	if cg.apiKey != "" {
		header.Set("x-cg-demo-api-key", cg.apiKey)
	}

	var response CGCoinResponse
	if err := getJSON(ctx, cg.client, url, header, &response); err != nil {
		return decimal.Zero, err
	}

	usd, ok := response.MarketData.CurrentPrice["usd"]
	if !ok || !usd.Valid {
		return decimal.Zero, fmt.Errorf("%w: USD price not found in CoinGecko response for %s", cmn.ErrTerminal, token.Hex())
	}
	if !usd.Decimal.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: CoinGecko price %s for %s", cmn.ErrData, usd.Decimal.String(), token.Hex())
	}

	return usd.Decimal, nil
}
