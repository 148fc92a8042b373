package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/AlexNa-Holdings/lptracker/cmn"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var zonelessLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// TickStore is the age bounded price sample series kept in one JSON array.
type TickStore struct {
	path      string
	retention time.Duration
	now       func() time.Time
}

func NewTickStore(path string, retention time.Duration) *TickStore {
	return &TickStore{path: path, retention: retention, now: time.Now}
}

func (s *TickStore) Path() string {
	return s.path
}

type storedTick struct {
	Timestamp   string           `json:"timestamp"`
	Price       *decimal.Decimal `json:"price"`
	BaseSymbol  string           `json:"base_token"`
	QuoteSymbol string           `json:"quote_token"`
}

func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range zonelessLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: bad timestamp %q", cmn.ErrData, s)
}

func decodeTick(raw json.RawMessage) (cmn.PriceTick, error) {
	var st storedTick
	if err := json.Unmarshal(raw, &st); err != nil {
		return cmn.PriceTick{}, fmt.Errorf("%w: %v", cmn.ErrData, err)
	}

	if st.Timestamp == "" || st.Price == nil || st.BaseSymbol == "" || st.QuoteSymbol == "" {
		return cmn.PriceTick{}, fmt.Errorf("%w: missing fields", cmn.ErrData)
	}
	if !st.Price.IsPositive() {
		return cmn.PriceTick{}, fmt.Errorf("%w: price %s is not positive", cmn.ErrData, st.Price.String())
	}

	ts, err := parseTimestamp(st.Timestamp)
	if err != nil {
		return cmn.PriceTick{}, err
	}

	return cmn.PriceTick{
		Timestamp:   ts,
		Price:       *st.Price,
		BaseSymbol:  st.BaseSymbol,
		QuoteSymbol: st.QuoteSymbol,
	}, nil
}

func (s *TickStore) decodeAll(raw []json.RawMessage) []cmn.PriceTick {
	ticks := make([]cmn.PriceTick, 0, len(raw))
	for i, r := range raw {
		t, err := decodeTick(r)
		if err != nil {
			log.Warn().Err(err).Str("file", s.path).Int("entry", i).Msg("skipping malformed price tick")
			continue
		}
		ticks = append(ticks, t)
	}
	return ticks
}

// read is strict about the document and lenient about single entries.
func (s *TickStore) read() ([]cmn.PriceTick, error) {
	var raw []json.RawMessage
	if err := Read(s.path, &raw); err != nil {
		return nil, err
	}
	return s.decodeAll(raw), nil
}

// All returns every valid stored sample.
func (s *TickStore) All() ([]cmn.PriceTick, error) {
	return s.read()
}

// QueryRecent returns the samples of the base/quote pair not older than window.
func (s *TickStore) QueryRecent(window time.Duration, base, quote string) ([]cmn.PriceTick, error) {
	ticks, err := s.read()
	if err != nil {
		return nil, err
	}

	cutoff := s.now().UTC().Add(-window)
	recent := make([]cmn.PriceTick, 0, len(ticks))
	for _, t := range ticks {
		if t.Matches(base, quote) && !t.Timestamp.Before(cutoff) {
			recent = append(recent, t)
		}
	}
	return recent, nil
}

// Append adds tick, drops samples older than the retention and saves the series.
func (s *TickStore) Append(tick cmn.PriceTick) error {
	if !tick.Price.IsPositive() {
		return fmt.Errorf("%w: price %s is not positive", cmn.ErrData, tick.Price.String())
	}
	tick.Timestamp = tick.Timestamp.UTC()

	var raw []json.RawMessage
	if err := Load(s.path, &raw, func() { raw = nil }); err != nil {
		return err
	}

	ticks := append(s.decodeAll(raw), tick)

	cutoff := s.now().UTC().Add(-s.retention)
	kept := ticks[:0]
	for _, t := range ticks {
		if t.Timestamp.Before(cutoff) {
			continue
		}
		kept = append(kept, t)
	}

	if evicted := len(ticks) - len(kept); evicted > 0 {
		log.Debug().Msgf("evicted %d price ticks older than %s", evicted, cutoff.Format(time.RFC3339))
	}

	if err := SaveAtomic(s.path, kept); err != nil {
		return err
	}

	log.Info().Msgf("price tick %s %s/%s saved, %d in store", tick.Price.String(), tick.BaseSymbol, tick.QuoteSymbol, len(kept))
	return nil
}
