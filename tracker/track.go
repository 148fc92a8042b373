package tracker

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/AlexNa-Holdings/lptracker/accrual"
	"github.com/AlexNa-Holdings/lptracker/cmn"
	"github.com/AlexNa-Holdings/lptracker/lp_v3"
	"github.com/AlexNa-Holdings/lptracker/occupancy"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const LAST_UPDATED_FORMAT = "2006-01-02T15:04:05Z"

// Track updates the position history: flags and cost basis of every record, then today's fee
// snapshot of the active position. The history is saved even when the active position fails.
func (t *Tracker) Track(ctx context.Context) error {
	h, err := t.history.Load()
	if err != nil {
		log.Error().Err(err).Msg("cannot read position history")
		return err
	}

	active := cmn.ReadPositionsFile(t.config.Path(t.config.PositionsFile))

	activeKey := ""
	if active != nil {
		activeKey = cmn.PositionKey(active.Id)
	}
	h.SetActive(activeKey)

	var posErr error
	if active == nil {
		log.Info().Msg("no active position, only updating flags")
	} else {
		r := h.Ensure(active.Id)
		r.IsActive = true
		r.InitialInvestmentUSD = active.CostBasisUSD

		posErr = t.trackPosition(ctx, r, active)
		if posErr != nil {
			ev := log.Error().Err(posErr).Uint64("position", active.Id)
			var se *StepError
			if errors.As(posErr, &se) {
				ev = ev.Str("step", se.Step)
			}
			ev.Msg("position not updated, saving the rest")
		}
	}

	saveErr := t.history.Save(h)
	if saveErr != nil {
		log.Error().Err(saveErr).Msg("position history not saved")
	}

	return errors.Join(posErr, saveErr)
}

func (t *Tracker) trackPosition(ctx context.Context, r *cmn.PositionRecord, active *cmn.ActivePosition) error {
	now := t.now().UTC()

	info, err := t.resolve(ctx, active, r.TokenPairSymbols)
	if err != nil {
		return err
	}
	r.TokenPairSymbols = info.pair()
	r.BaseToken = info.base()

	var slot0 *lp_v3.Slot0
	if info.pool != (common.Address{}) {
		slot0, err = t.slot0(ctx, info)
		if err != nil {
			log.Error().Err(err).Uint64("position", active.Id).Msg("slot0 unavailable, market price unknown")
		}
	}

	raw0, raw1, err := t.unclaimed(ctx, info, slot0)
	if err != nil {
		return &StepError{active.Id, "collect", err}
	}

	price0 := t.prices.USDPrice(ctx, info.pos.Token0, info.symbol0)
	price1 := t.prices.USDPrice(ctx, info.pos.Token1, info.symbol1)

	snapshot := accrual.Record(r, now, accrual.Input{
		Unclaimed: accrual.Amounts{
			Token0: toUnits(raw0, info.decimals0),
			Token1: toUnits(raw1, info.decimals1),
		},
		Price0:           price0,
		Price1:           price1,
		Range:            t.positionRange(info, slot0),
		DecimalsFallback: info.decimalsFallback,
	})

	r.TimeInRange24h = occupancy.TimeInRange(t.ticks, snapshot.Range, t.config.RangeWindow)
	r.LastUpdatedUTC = now.Format(LAST_UPDATED_FORMAT)

	t.logSummary(active.Id, info, slot0, snapshot, r.TimeInRange24h, now)
	return nil
}

// unclaimed simulates collect from the owner and falls back to the pool fee accumulators.
func (t *Tracker) unclaimed(ctx context.Context, info *positionInfo, slot0 *lp_v3.Slot0) (*big.Int, *big.Int, error) {
	type amounts struct{ a0, a1 *big.Int }

	res, err := call(ctx, t, "collect", func(ctx context.Context) (amounts, error) {
		a0, a1, err := t.chain.SimulateCollect(ctx, info.id, t.owner)
		return amounts{a0, a1}, err
	})
	if err == nil {
		return res.a0, res.a1, nil
	}

	if slot0 == nil {
		return nil, nil, err
	}

	log.Warn().Err(err).Msg("collect simulation failed, computing fees from the pool")
	st, fbErr := call(ctx, t, "positionStatus", func(ctx context.Context) (*lp_v3.PositionStatus, error) {
		return t.chain.PositionStatus(ctx, info.pos, info.pool, slot0)
	})
	if fbErr != nil {
		return nil, nil, errors.Join(err, fbErr)
	}
	return st.Fees0, st.Fees1, nil
}

// positionRange prices the position ticks and the pool, quote per base. Unknown parts are null.
func (t *Tracker) positionRange(info *positionInfo, slot0 *lp_v3.Slot0) *cmn.PositionRange {
	base, quote := info.baseQuote()
	rng := &cmn.PositionRange{BaseSymbol: base, QuoteSymbol: quote}

	low, high, err := lp_v3.RangeFromTicks(info.pos.TickLower, info.pos.TickUpper, info.decimals0, info.decimals1, info.baseIsToken0)
	if err != nil {
		log.Error().Err(err).Msg("position range unavailable")
	} else {
		rng.PriceLower = decimal.NewNullDecimal(low)
		rng.PriceUpper = decimal.NewNullDecimal(high)
	}

	if slot0 != nil {
		p, err := lp_v3.PriceFromSqrtX96(slot0.SqrtPriceX96, info.decimals0, info.decimals1, info.baseIsToken0)
		if err != nil {
			log.Error().Err(err).Msg("market price unavailable")
		} else {
			rng.CurrentMarketPrice = decimal.NewNullDecimal(p)
		}
	}

	return rng
}

func usd(n decimal.NullDecimal) string {
	if !n.Valid {
		return "n/a"
	}
	return "$" + n.Decimal.StringFixed(2)
}

func (t *Tracker) logSummary(id uint64, info *positionInfo, slot0 *lp_v3.Slot0, s *cmn.FeeSnapshot, tir *float64, now time.Time) {
	if rng := s.Range; rng != nil && rng.PriceLower.Valid && rng.PriceUpper.Valid {
		log.Info().Msgf("range: [%s - %s] %s per %s", rng.PriceLower.Decimal.StringFixedBank(6),
			rng.PriceUpper.Decimal.StringFixedBank(6), rng.QuoteSymbol, rng.BaseSymbol)
		if rng.CurrentMarketPrice.Valid {
			log.Info().Msgf("market price: %s %s per %s", rng.CurrentMarketPrice.Decimal.StringFixedBank(6), rng.QuoteSymbol, rng.BaseSymbol)
		}
	}

	if slot0 != nil {
		lower, err1 := lp_v3.SqrtPriceX96FromTick(info.pos.TickLower)
		upper, err2 := lp_v3.SqrtPriceX96FromTick(info.pos.TickUpper)
		if err1 == nil && err2 == nil {
			a0, a1, in := lp_v3.Amounts(info.pos.Liquidity, slot0.SqrtPriceX96.ToBig(), lower, upper)
			log.Info().Msgf("holding %s %s + %s %s, in range: %v",
				toUnits(a0, info.decimals0).StringFixedBank(8), info.symbol0,
				toUnits(a1, info.decimals1).StringFixedBank(8), info.symbol1, in)
		}
	}

	if tir != nil {
		log.Info().Msgf("time in range (last %s): %.2f%%", t.config.RangeWindow, *tir)
	} else {
		log.Info().Msgf("time in range (last %s): not computable", t.config.RangeWindow)
	}

	e := s.DailyEarned
	log.Info().Msgf("fees earned on %s for position %d: %s %s (%s), %s %s (%s), total %s",
		accrual.DayKey(now), id,
		e.Token0.StringFixedBank(8), info.symbol0, usd(e.Token0USD),
		e.Token1.StringFixedBank(8), info.symbol1, usd(e.Token1USD),
		usd(e.TotalUSD))
}
