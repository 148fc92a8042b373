// Package accrual turns cumulative unclaimed fee counters into fees earned per calendar day.
package accrual

import (
	"time"

	"github.com/AlexNa-Holdings/lptracker/cmn"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Amounts are token amounts in token units, decimals already applied.
type Amounts struct {
	Token0 decimal.Decimal
	Token1 decimal.Decimal
}

// Earned returns max(0, today - yesterday) per token. Without a yesterday snapshot the whole
// cumulative amount counts as earned today. A drop (fees were collected) floors at zero.
func Earned(today Amounts, yesterday *Amounts) Amounts {
	if yesterday == nil {
		return today
	}
	return Amounts{
		Token0: decimal.Max(decimal.Zero, today.Token0.Sub(yesterday.Token0)),
		Token1: decimal.Max(decimal.Zero, today.Token1.Sub(yesterday.Token1)),
	}
}

// Value prices a pair of amounts. A missing price leaves its side null; the total is the sum of
// the sides that are known, or null when neither is.
func Value(a Amounts, price0, price1 decimal.NullDecimal) cmn.FeeAmounts {
	f := cmn.FeeAmounts{Token0: a.Token0, Token1: a.Token1}

	if price0.Valid {
		f.Token0USD = decimal.NewNullDecimal(a.Token0.Mul(price0.Decimal))
	}
	if price1.Valid {
		f.Token1USD = decimal.NewNullDecimal(a.Token1.Mul(price1.Decimal))
	}

	switch {
	case f.Token0USD.Valid && f.Token1USD.Valid:
		f.TotalUSD = decimal.NewNullDecimal(f.Token0USD.Decimal.Add(f.Token1USD.Decimal))
	case f.Token0USD.Valid:
		f.TotalUSD = f.Token0USD
	case f.Token1USD.Valid:
		f.TotalUSD = f.Token1USD
	}

	return f
}

// Input is one day's observation of the active position.
type Input struct {
	Unclaimed        Amounts
	Price0           decimal.NullDecimal
	Price1           decimal.NullDecimal
	Range            *cmn.PositionRange
	DecimalsFallback bool
}

func DayKey(t time.Time) string {
	return t.UTC().Format(cmn.DATE_FORMAT)
}

// Yesterday returns the cumulative counters stored for the day before day, if any.
func Yesterday(r *cmn.PositionRecord, day time.Time) *Amounts {
	prev := r.History.Get(DayKey(day.UTC().AddDate(0, 0, -1)))
	if prev == nil {
		return nil
	}
	return &Amounts{Token0: prev.TotalUnclaimed.Token0, Token1: prev.TotalUnclaimed.Token1}
}

// Record builds the snapshot of day and upserts it into the record's history.
// Running twice on the same day overwrites the first result.
func Record(r *cmn.PositionRecord, day time.Time, in Input) *cmn.FeeSnapshot {
	yesterday := Yesterday(r, day)
	if yesterday == nil {
		log.Debug().Msgf("no snapshot for the day before %s, all unclaimed fees count as earned", DayKey(day))
	}

	earned := Earned(in.Unclaimed, yesterday)

	s := &cmn.FeeSnapshot{
		TotalUnclaimed:   Value(in.Unclaimed, in.Price0, in.Price1),
		DailyEarned:      Value(earned, in.Price0, in.Price1),
		Range:            in.Range,
		DecimalsFallback: in.DecimalsFallback,
	}

	r.History.Set(DayKey(day), s)
	return s
}
