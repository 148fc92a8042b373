package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/AlexNa-Holdings/lptracker/cmn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)

func newTickStore(t *testing.T) *TickStore {
	s := NewTickStore(filepath.Join(t.TempDir(), "price_ticks.json"), 30*24*time.Hour)
	s.now = func() time.Time { return now }
	return s
}

func tick(ts time.Time, price string, base, quote string) cmn.PriceTick {
	return cmn.PriceTick{Timestamp: ts, Price: decimal.RequireFromString(price), BaseSymbol: base, QuoteSymbol: quote}
}

func TestTickStore_AppendEvicts(t *testing.T) {
	s := newTickStore(t)

	require.NoError(t, s.Append(tick(now.Add(-31*24*time.Hour), "3000", "WETH", "USDC")))
	require.NoError(t, s.Append(tick(now, "3100", "WETH", "USDC")))

	all, err := s.All()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].Timestamp.Equal(now))
	assert.Equal(t, "3100", all[0].Price.String())
}

func TestTickStore_RetentionBoundary(t *testing.T) {
	s := newTickStore(t)

	require.NoError(t, s.Append(tick(now.Add(-30*24*time.Hour), "1", "WETH", "USDC")))
	require.NoError(t, s.Append(tick(now.Add(-30*24*time.Hour-time.Second), "2", "WETH", "USDC")))

	all, err := s.All()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "1", all[0].Price.String())
}

func TestTickStore_QueryRecentFiltersPairAndWindow(t *testing.T) {
	s := newTickStore(t)

	require.NoError(t, s.Append(tick(now.Add(-2*time.Hour), "100", "WBTC", "WETH")))
	require.NoError(t, s.Append(tick(now.Add(-1*time.Hour), "3000", "WETH", "USDC")))
	require.NoError(t, s.Append(tick(now.Add(-30*time.Hour), "99", "WBTC", "WETH")))
	require.NoError(t, s.Append(tick(now.Add(-24*time.Hour), "101", "WBTC", "WETH")))

	recent, err := s.QueryRecent(24*time.Hour, "WBTC", "WETH")
	require.NoError(t, err)
	require.Len(t, recent, 2)
	for _, r := range recent {
		assert.Equal(t, "WBTC", r.BaseSymbol)
		assert.Equal(t, "WETH", r.QuoteSymbol)
	}

	swapped, err := s.QueryRecent(24*time.Hour, "WETH", "WBTC")
	require.NoError(t, err)
	assert.Empty(t, swapped)
}

func TestTickStore_SkipsMalformedEntries(t *testing.T) {
	s := newTickStore(t)

	doc := `[
  {"timestamp": "2024-05-20T11:00:00.123456Z", "price": 30.5, "base_token": "WBTC", "quote_token": "WETH"},
  {"timestamp": "not a time", "price": 31, "base_token": "WBTC", "quote_token": "WETH"},
  {"timestamp": "2024-05-20T11:10:00Z", "base_token": "WBTC", "quote_token": "WETH"},
  {"timestamp": "2024-05-20T11:20:00Z", "price": -1, "base_token": "WBTC", "quote_token": "WETH"},
  {"timestamp": "2024-05-20T11:30:00", "price": "32", "base_token": "WBTC", "quote_token": "WETH"},
  "garbage"
]`
	require.NoError(t, os.WriteFile(s.Path(), []byte(doc), 0644))

	recent, err := s.QueryRecent(24*time.Hour, "WBTC", "WETH")
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "30.5", recent[0].Price.String())
	assert.Equal(t, time.Date(2024, 5, 20, 11, 30, 0, 0, time.UTC), recent[1].Timestamp)
}

func TestTickStore_ReadErrors(t *testing.T) {
	s := newTickStore(t)

	_, err := s.QueryRecent(time.Hour, "A", "B")
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, os.WriteFile(s.Path(), []byte(`{"not": "an array"}`), 0644))
	_, err = s.QueryRecent(time.Hour, "A", "B")
	assert.ErrorIs(t, err, cmn.ErrData)
}

func TestTickStore_AppendOverCorruptFile(t *testing.T) {
	s := newTickStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte(`[{"timestamp":`), 0644))

	require.NoError(t, s.Append(tick(now, "5", "ARB", "USDC")))

	all, err := s.All()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestTickStore_AppendRejectsNonPositive(t *testing.T) {
	s := newTickStore(t)
	err := s.Append(tick(now, "0", "ARB", "USDC"))
	assert.ErrorIs(t, err, cmn.ErrData)
	_, statErr := os.Stat(s.Path())
	assert.True(t, os.IsNotExist(statErr))
}

func TestSaveAtomic_InterruptedRenameKeepsOriginal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fees_data.json")

	require.NoError(t, SaveAtomic(path, map[string]int{"a": 1}))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	rename = func(string, string) error { return errors.New("power cut") }
	defer func() { rename = os.Rename }()

	err = SaveAtomic(path, map[string]int{"a": 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, cmn.ErrPersistence)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	var v map[string]int
	require.NoError(t, json.Unmarshal(after, &v))
	assert.Equal(t, 1, v["a"])

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must be removed")
}

func TestLoad_MissingAndCorrupt(t *testing.T) {
	dir := t.TempDir()

	v := map[string]int{"default": 1}
	require.NoError(t, Load(filepath.Join(dir, "missing.json"), &v, nil))
	assert.Equal(t, 1, v["default"])

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{oops"), 0644))
	reset := false
	require.NoError(t, Load(bad, &v, func() { reset = true }))
	assert.True(t, reset)
}

func TestHistoryStore_KeepsBrokenRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fees_data.json")
	doc := `{
  "position_1": {"is_active": true, "initial_investment_usd": 1000, "token_pair_symbols": "WBTC/WETH",
    "history": {
      "2024-05-19": {"total_unclaimed_fees": {"token0_actual": 0.001, "token1_actual": 0.02, "token0_usd": 60, "token1_usd": 60, "total_usd": 120},
                     "daily_earned_fees": {"token0_actual": 0.001, "token1_actual": 0.02, "token0_usd": null, "token1_usd": null, "total_usd": null}},
      "2024-05-18": "broken day"
    }},
  "position_2": {"is_active": "yes"}
}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	s := NewHistoryStore(path)
	h, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, h.Broken())

	r := h.Position(1)
	require.NotNil(t, r)
	assert.Equal(t, "WBTC/WETH", r.TokenPairSymbols)
	assert.Equal(t, 1, r.History.Broken())
	day := r.History.Get("2024-05-19")
	require.NotNil(t, day)
	assert.Equal(t, "120", day.TotalUnclaimed.TotalUSD.Decimal.String())
	assert.False(t, day.DailyEarned.TotalUSD.Valid)

	r.IsActive = false
	require.NoError(t, s.Save(h))

	var out map[string]json.RawMessage
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &out))
	assert.JSONEq(t, `{"is_active": "yes"}`, string(out["position_2"]))

	var rec map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out["position_1"], &rec))
	var days map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec["history"], &days))
	assert.JSONEq(t, `"broken day"`, string(days["2024-05-18"]))
	assert.JSONEq(t, `false`, string(rec["is_active"]))
}

func TestHistoryStore_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fees_data.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))

	h, err := NewHistoryStore(path).Load()
	require.NoError(t, err)
	assert.Empty(t, h.Items)
}

func TestSave_WritesNumbers(t *testing.T) {
	s := newTickStore(t)
	require.NoError(t, s.Append(tick(now, "3100.25", "WETH", "USDC")))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	var ticks []map[string]any
	require.NoError(t, json.Unmarshal(data, &ticks))
	require.Len(t, ticks, 1)
	assert.Equal(t, 3100.25, ticks[0]["price"])

	path := filepath.Join(t.TempDir(), "fees_data.json")
	h := &cmn.History{}
	r := h.Ensure(1)
	r.InitialInvestmentUSD = decimal.RequireFromString("1500.5")
	r.History.Set("2024-05-20", &cmn.FeeSnapshot{
		TotalUnclaimed: cmn.FeeAmounts{
			Token0:   decimal.RequireFromString("0.001"),
			TotalUSD: decimal.NewNullDecimal(decimal.NewFromInt(120)),
		},
	})
	require.NoError(t, NewHistoryStore(path).Save(h))

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]struct {
		Cost    any `json:"initial_investment_usd"`
		History map[string]struct {
			Total map[string]any `json:"total_unclaimed_fees"`
		} `json:"history"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, 1500.5, doc["position_1"].Cost)
	total := doc["position_1"].History["2024-05-20"].Total
	assert.Equal(t, 0.001, total["token0_actual"])
	assert.Equal(t, float64(120), total["total_usd"])
	assert.Nil(t, total["token0_usd"])
}
