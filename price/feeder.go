// Package price fetches USD spot prices of tokens from off-chain price feeders.
package price

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/AlexNa-Holdings/lptracker/cmn"
	"github.com/AlexNa-Holdings/lptracker/retry"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const FEEDER_COINGECKO = "coingecko"
const FEEDER_DEXSCREENER = "dexscreener"

type Feeder interface {
	Name() string
	USDPrice(ctx context.Context, token common.Address) (decimal.Decimal, error)
}

// Source asks its feeders in order and returns the first price one of them knows.
type Source struct {
	feeders []Feeder
	caller  *retry.Caller
}

func NewSource(caller *retry.Caller, feeders ...Feeder) *Source {
	return &Source{feeders: feeders, caller: caller}
}

// FeedersFromConfig builds the feeders named in the config for chain.
func FeedersFromConfig(c *cmn.SConfig, chain *cmn.PD_Chain, client *http.Client) ([]Feeder, error) {
	feeders := []Feeder{}
	for _, name := range c.PriceFeeders {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case FEEDER_COINGECKO:
			if chain.CoinGeckoPlatform == "" {
				log.Warn().Msgf("no CoinGecko platform for chain %d, skipping feeder", chain.ChainId)
				continue
			}
			feeders = append(feeders, NewCoinGecko(client, c.CoinGeckoURL, c.CoinGeckoAPIKey, chain.CoinGeckoPlatform))
		case FEEDER_DEXSCREENER:
			if chain.DexScreenerChain == "" {
				log.Warn().Msgf("no DexScreener chain for chain %d, skipping feeder", chain.ChainId)
				continue
			}
			feeders = append(feeders, NewDexScreener(client, c.DexScreenerURL, chain.DexScreenerChain))
		default:
			return nil, fmt.Errorf("unknown price feeder: %s", name)
		}
	}
	return feeders, nil
}

// USDPrice returns a null decimal when no feeder could price token.
func (s *Source) USDPrice(ctx context.Context, token common.Address, symbol string) decimal.NullDecimal {
	for _, f := range s.feeders {
		res := retry.Do(ctx, s.caller, f.Name()+" price of "+symbol, func(ctx context.Context) (decimal.Decimal, error) {
			return f.USDPrice(ctx, token)
		})
		if res.OK() {
			log.Debug().Msgf("%s: %s = $%s", f.Name(), symbol, res.Value.String())
			return decimal.NewNullDecimal(res.Value)
		}
		log.Warn().Err(res.Err).Msgf("%s has no price for %s (%s)", f.Name(), symbol, token.Hex())
	}

	log.Error().Msgf("USD price of %s (%s) unavailable", symbol, token.Hex())
	return decimal.NullDecimal{}
}

// getJSON fetches url and decodes the body into v. 429 is transient, any other non-200 and an
// undecodable body are terminal. Transport errors are returned as they are.
func getJSON(ctx context.Context, client *http.Client, url string, header http.Header, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create GET request: %v", cmn.ErrTerminal, err)
	}
	for k, vals := range header {
		for _, val := range vals {
			req.Header.Add(k, val)
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make GET request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: rate limited: %s", cmn.ErrTransient, resp.Status)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: received non-OK HTTP status: %s", cmn.ErrTerminal, resp.Status)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: failed to unmarshal JSON response: %v", cmn.ErrTerminal, err)
	}
	return nil
}
