package price

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/AlexNa-Holdings/lptracker/cmn"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type DSResponse struct {
	SchemaVersion string   `json:"schemaVersion"`
	Pairs         []DSPair `json:"pairs"`
}

type DSPair struct {
	ChainId     string     `json:"chainId"`
	URL         string     `json:"url"`
	PairAddress string     `json:"pairAddress"`
	BaseToken   BaseToken  `json:"baseToken"`
	QuoteToken  QuoteToken `json:"quoteToken"`
	PriceUsd    string     `json:"priceUsd"`
	Liquidity   Liquidity  `json:"liquidity"`
}

type BaseToken struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

type QuoteToken struct {
	Symbol string `json:"symbol"`
}

type Liquidity struct {
	USD   float64 `json:"usd"`
	Base  float64 `json:"base"`
	Quote float64 `json:"quote"`
}

type DexScreener struct {
	client *http.Client
	base   string
	chain  string
}

func NewDexScreener(client *http.Client, base, chain string) *DexScreener {
	return &DexScreener{client: client, base: strings.TrimRight(base, "/"), chain: chain}
}

func (ds *DexScreener) Name() string {
	return FEEDER_DEXSCREENER
}

func extractBlockchainFromURL(pairURL string) (string, error) {
	parsedURL, err := url.Parse(pairURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse URL: %w", err)
	}

	parts := strings.Split(parsedURL.Path, "/")
	if len(parts) > 1 {
		return parts[1], nil
	}

	return "", fmt.Errorf("invalid URL format")
}

func (p *DSPair) chain() string {
	if p.ChainId != "" {
		return p.ChainId
	}
	chain, err := extractBlockchainFromURL(p.URL)
	if err != nil {
		log.Debug().Err(err).Msgf("pair %s", p.PairAddress)
		return ""
	}
	return chain
}

// USDPrice takes the price of the most liquid pair on the chain that has token as its base.
func (ds *DexScreener) USDPrice(ctx context.Context, token common.Address) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s/latest/dex/tokens/%s", ds.base, token.Hex())

	var response DSResponse
	if err := getJSON(ctx, ds.client, url, nil, &response); err != nil {
		return decimal.Zero, err
	}

	var best *DSPair
	var bestPrice decimal.Decimal
	for i := range response.Pairs {
		pair := &response.Pairs[i]

		if pair.chain() != ds.chain || !strings.EqualFold(pair.BaseToken.Address, token.Hex()) {
			continue
		}

		price, err := decimal.NewFromString(pair.PriceUsd)
		if err != nil || !price.IsPositive() {
			log.Debug().Msgf("pair %s: bad priceUsd %q", pair.PairAddress, pair.PriceUsd)
			continue
		}

		if best == nil || pair.Liquidity.USD > best.Liquidity.USD {
			best, bestPrice = pair, price
		}
	}

	if best == nil {
		return decimal.Zero, fmt.Errorf("%w: no %s pair for %s on DexScreener", cmn.ErrTerminal, ds.chain, token.Hex())
	}

	log.Trace().Msgf("dexscreener: %s/%s %s liquidity $%.0f", best.BaseToken.Symbol, best.QuoteToken.Symbol, best.PairAddress, best.Liquidity.USD)
	return bestPrice, nil
}
