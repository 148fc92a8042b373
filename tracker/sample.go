package tracker

import (
	"context"

	"github.com/AlexNa-Holdings/lptracker/cmn"
	"github.com/AlexNa-Holdings/lptracker/lp_v3"
	"github.com/rs/zerolog/log"
)

// Sample appends the current pool price of the active position to the tick store.
func (t *Tracker) Sample(ctx context.Context) error {
	active := cmn.ReadPositionsFile(t.config.Path(t.config.PositionsFile))
	if active == nil {
		log.Info().Msg("no active position, nothing to sample")
		return nil
	}

	info, err := t.resolve(ctx, active, t.knownPair(active.Id))
	if err != nil {
		log.Error().Err(err).Uint64("position", active.Id).Msg("sample failed")
		return err
	}

	slot0, err := t.slot0(ctx, info)
	if err != nil {
		log.Error().Err(err).Uint64("position", active.Id).Str("step", "slot0").Msg("sample failed")
		return &StepError{active.Id, "slot0", err}
	}

	price, err := lp_v3.PriceFromSqrtX96(slot0.SqrtPriceX96, info.decimals0, info.decimals1, info.baseIsToken0)
	if err != nil {
		log.Error().Err(err).Uint64("position", active.Id).Str("step", "price").Msg("sample skipped")
		return &StepError{active.Id, "price", err}
	}

	base, quote := info.baseQuote()
	tick := cmn.PriceTick{
		Timestamp:   t.now().UTC(),
		Price:       price,
		BaseSymbol:  base,
		QuoteSymbol: quote,
	}

	if err := t.ticks.Append(tick); err != nil {
		log.Error().Err(err).Uint64("position", active.Id).Str("step", "append").Msg("sample not saved")
		return &StepError{active.Id, "append", err}
	}

	log.Info().Msgf("position %d: %s %s per %s", active.Id, price.StringFixedBank(8), quote, base)
	return nil
}
