package cmn

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const POSITION_KEY_PREFIX = "position_"
const DATE_FORMAT = "2006-01-02"

type FeeAmounts struct {
	Token0    decimal.Decimal     `json:"token0_actual"`
	Token1    decimal.Decimal     `json:"token1_actual"`
	Token0USD decimal.NullDecimal `json:"token0_usd"`
	Token1USD decimal.NullDecimal `json:"token1_usd"`
	TotalUSD  decimal.NullDecimal `json:"total_usd"`
}

// PositionRange holds prices as quote per base.
type PositionRange struct {
	PriceLower         decimal.NullDecimal `json:"price_lower"`
	PriceUpper         decimal.NullDecimal `json:"price_upper"`
	CurrentMarketPrice decimal.NullDecimal `json:"current_market_price"`
	BaseSymbol         string              `json:"base_token_for_price"`
	QuoteSymbol        string              `json:"quote_token_for_price"`
}

type FeeSnapshot struct {
	TotalUnclaimed   FeeAmounts     `json:"total_unclaimed_fees"`
	DailyEarned      FeeAmounts     `json:"daily_earned_fees"`
	Range            *PositionRange `json:"position_range,omitempty"`
	DecimalsFallback bool           `json:"decimals_fallback,omitempty"`
}

type PositionRecord struct {
	IsActive             bool                 `json:"is_active"`
	InitialInvestmentUSD decimal.Decimal      `json:"initial_investment_usd"`
	TokenPairSymbols     string               `json:"token_pair_symbols"`
	BaseToken            string               `json:"base_token,omitempty"`
	History              Lenient[FeeSnapshot] `json:"history"`
	TimeInRange24h       *float64             `json:"time_in_range_24h_percentage,omitempty"`
	LastUpdatedUTC       string               `json:"last_updated_utc,omitempty"`
}

// Symbols splits token_pair_symbols into token0 and token1 symbols.
func (r *PositionRecord) Symbols() (string, string, bool) {
	parts := strings.Split(r.TokenPairSymbols, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// Dates returns the history keys in ascending order.
func (r *PositionRecord) Dates() []string {
	dates := make([]string, 0, len(r.History.Items))
	for d := range r.History.Items {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// History is the fees document: position_<id> -> PositionRecord.
type History struct {
	Lenient[PositionRecord]
}

func PositionKey(id uint64) string {
	return fmt.Sprintf("%s%d", POSITION_KEY_PREFIX, id)
}

func ParsePositionKey(key string) (uint64, error) {
	if !strings.HasPrefix(key, POSITION_KEY_PREFIX) {
		return 0, fmt.Errorf("%w: not a position key: %q", ErrData, key)
	}
	id, err := strconv.ParseUint(strings.TrimPrefix(key, POSITION_KEY_PREFIX), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: position key %q: %v", ErrData, key, err)
	}
	return id, nil
}

func (h *History) Position(id uint64) *PositionRecord {
	return h.Get(PositionKey(id))
}

// Ensure returns the record for id, creating an empty one when missing. A record kept verbatim
// because it failed to decode is salvaged field by field, so its history survives.
func (h *History) Ensure(id uint64) *PositionRecord {
	key := PositionKey(id)
	if r := h.Get(key); r != nil {
		return r
	}

	r := &PositionRecord{}
	if raw := h.Raw(key); raw != nil {
		r = salvageRecord(key, raw)
	}
	h.Set(key, r)
	return r
}

// SetActive marks the record under activeKey as the only active one, broken records included.
// An empty key deactivates everything.
func (h *History) SetActive(activeKey string) {
	for key, r := range h.Items {
		if r.IsActive && key != activeKey {
			log.Info().Msgf("%s is no longer active", key)
		}
		r.IsActive = key == activeKey
	}

	for _, key := range h.BrokenKeys() {
		raw, changed := setRawFlag(h.Raw(key), "is_active", key == activeKey)
		if changed {
			log.Info().Msgf("%s (undecodable) is_active set to %v", key, key == activeKey)
			h.SetRaw(key, raw)
		}
	}
}

func setRawFlag(raw json.RawMessage, field string, v bool) (json.RawMessage, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return raw, false
	}

	want := "false"
	if v {
		want = "true"
	}
	cur, found := fields[field]
	if found && string(bytes.TrimSpace(cur)) == want {
		return raw, false
	}
	if !found && !v {
		return raw, false
	}

	fields[field] = json.RawMessage(want)
	out, err := json.Marshal(fields)
	if err != nil {
		return raw, false
	}
	return out, true
}

// salvageRecord decodes every field of raw on its own and drops the ones that fail.
func salvageRecord(key string, raw json.RawMessage) *PositionRecord {
	r := &PositionRecord{}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		log.Warn().Err(err).Msgf("%s is not an object, starting it empty", key)
		return r
	}

	for name, v := range fields {
		one, err := json.Marshal(map[string]json.RawMessage{name: v})
		if err != nil {
			continue
		}
		tmp := *r
		if err := json.Unmarshal(one, &tmp); err != nil {
			log.Warn().Err(err).Str("field", name).Msgf("dropping undecodable field of %s", key)
			continue
		}
		*r = tmp
	}

	log.Warn().Msgf("%s salvaged with %d dated snapshots", key, len(r.History.Items))
	return r
}
