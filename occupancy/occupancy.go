// Package occupancy measures how much of a trailing window the pool price spent inside a range.
package occupancy

import (
	"time"

	"github.com/AlexNa-Holdings/lptracker/cmn"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// TickSource returns the stored samples of one base/quote pair not older than window.
type TickSource interface {
	QueryRecent(window time.Duration, base, quote string) ([]cmn.PriceTick, error)
}

// TimeInRange returns the percentage of samples in window whose price lies in the inclusive range.
// It returns nil when a bound is unknown or the samples cannot be read, and 0 when no sample
// matches the pair.
func TimeInRange(source TickSource, rng *cmn.PositionRange, window time.Duration) *float64 {
	if rng == nil || !rng.PriceLower.Valid || !rng.PriceUpper.Valid {
		log.Debug().Msg("time in range: range bounds unknown")
		return nil
	}

	low := decimal.Min(rng.PriceLower.Decimal, rng.PriceUpper.Decimal)
	high := decimal.Max(rng.PriceLower.Decimal, rng.PriceUpper.Decimal)

	ticks, err := source.QueryRecent(window, rng.BaseSymbol, rng.QuoteSymbol)
	if err != nil {
		log.Warn().Err(err).Msg("time in range: price ticks unavailable")
		return nil
	}

	pct := 0.0
	if len(ticks) == 0 {
		log.Info().Msgf("time in range: no %s/%s samples in the last %s", rng.BaseSymbol, rng.QuoteSymbol, window)
		return &pct
	}

	in := 0
	for _, t := range ticks {
		if t.Price.GreaterThanOrEqual(low) && t.Price.LessThanOrEqual(high) {
			in++
		}
	}

	pct = 100 * float64(in) / float64(len(ticks))
	log.Debug().Msgf("time in range: %d of %d samples in [%s, %s]", in, len(ticks), low.String(), high.String())
	return &pct
}
