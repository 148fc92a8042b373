package occupancy

import (
	"errors"
	"testing"
	"time"

	"github.com/AlexNa-Holdings/lptracker/cmn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	ticks []cmn.PriceTick
	err   error
}

func (f *fakeSource) QueryRecent(window time.Duration, base, quote string) ([]cmn.PriceTick, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []cmn.PriceTick
	for _, t := range f.ticks {
		if t.Matches(base, quote) {
			out = append(out, t)
		}
	}
	return out, nil
}

func ticks(base, quote string, prices ...string) []cmn.PriceTick {
	out := make([]cmn.PriceTick, 0, len(prices))
	for _, p := range prices {
		out = append(out, cmn.PriceTick{Timestamp: time.Now(), Price: decimal.RequireFromString(p), BaseSymbol: base, QuoteSymbol: quote})
	}
	return out
}

func rng(lower, upper string) *cmn.PositionRange {
	r := &cmn.PositionRange{BaseSymbol: "WETH", QuoteSymbol: "USDC"}
	if lower != "" {
		r.PriceLower = decimal.NewNullDecimal(decimal.RequireFromString(lower))
	}
	if upper != "" {
		r.PriceUpper = decimal.NewNullDecimal(decimal.RequireFromString(upper))
	}
	return r
}

func TestTimeInRange_AllInside(t *testing.T) {
	src := &fakeSource{ticks: ticks("WETH", "USDC", "100", "100", "100")}
	p := TimeInRange(src, rng("90", "110"), 24*time.Hour)
	require.NotNil(t, p)
	assert.Equal(t, 100.0, *p)
}

func TestTimeInRange_InclusiveBounds(t *testing.T) {
	src := &fakeSource{ticks: ticks("WETH", "USDC", "90", "110", "111", "89.999")}
	p := TimeInRange(src, rng("90", "110"), 24*time.Hour)
	require.NotNil(t, p)
	assert.Equal(t, 50.0, *p)
}

func TestTimeInRange_InvertedBounds(t *testing.T) {
	src := &fakeSource{ticks: ticks("WETH", "USDC", "95", "120")}
	p := TimeInRange(src, rng("110", "90"), 24*time.Hour)
	require.NotNil(t, p)
	assert.Equal(t, 50.0, *p)
}

func TestTimeInRange_NoMatchingPairIsZero(t *testing.T) {
	src := &fakeSource{ticks: ticks("WBTC", "WETH", "100")}
	p := TimeInRange(src, rng("90", "110"), 24*time.Hour)
	require.NotNil(t, p)
	assert.Equal(t, 0.0, *p)
}

func TestTimeInRange_UnknownBoundsIsNull(t *testing.T) {
	src := &fakeSource{ticks: ticks("WETH", "USDC", "100")}
	assert.Nil(t, TimeInRange(src, rng("", "110"), 24*time.Hour))
	assert.Nil(t, TimeInRange(src, rng("90", ""), 24*time.Hour))
	assert.Nil(t, TimeInRange(src, nil, 24*time.Hour))
}

func TestTimeInRange_UnreadableSourceIsNull(t *testing.T) {
	src := &fakeSource{err: errors.New("no such file")}
	assert.Nil(t, TimeInRange(src, rng("90", "110"), 24*time.Hour))
}
