// Package tracker runs the two jobs of one invocation: sampling the pool price of the active
// position and recording its daily fees.
package tracker

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/AlexNa-Holdings/lptracker/cmn"
	"github.com/AlexNa-Holdings/lptracker/lp_v3"
	"github.com/AlexNa-Holdings/lptracker/retry"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Chain is the position manager and pool side of the chain.
type Chain interface {
	NftPosition(ctx context.Context, id *big.Int) (*lp_v3.NftPosition, error)
	Pool(ctx context.Context, token0, token1 common.Address, fee *big.Int) (common.Address, error)
	Slot0(ctx context.Context, pool common.Address) (*lp_v3.Slot0, error)
	SimulateCollect(ctx context.Context, id *big.Int, owner common.Address) (*big.Int, *big.Int, error)
	PositionStatus(ctx context.Context, pos *lp_v3.NftPosition, pool common.Address, slot0 *lp_v3.Slot0) (*lp_v3.PositionStatus, error)
}

type Tokens interface {
	Decimals(ctx context.Context, token common.Address) (uint8, error)
	Symbol(ctx context.Context, token common.Address) (string, error)
}

type Prices interface {
	USDPrice(ctx context.Context, token common.Address, symbol string) decimal.NullDecimal
}

type Ticks interface {
	Append(tick cmn.PriceTick) error
	QueryRecent(window time.Duration, base, quote string) ([]cmn.PriceTick, error)
}

type History interface {
	Load() (*cmn.History, error)
	Save(h *cmn.History) error
}

type Tracker struct {
	config  *cmn.SConfig
	chain   Chain
	tokens  Tokens
	prices  Prices
	ticks   Ticks
	history History
	caller  *retry.Caller
	owner   common.Address
	pool    common.Address

	now func() time.Time
}

func New(c *cmn.SConfig, chain Chain, tokens Tokens, prices Prices, ticks Ticks, history History, caller *retry.Caller) *Tracker {
	t := &Tracker{
		config:  c,
		chain:   chain,
		tokens:  tokens,
		prices:  prices,
		ticks:   ticks,
		history: history,
		caller:  caller,
		now:     time.Now,
	}

	if common.IsHexAddress(c.WalletAddress) {
		t.owner = common.HexToAddress(c.WalletAddress)
	} else {
		log.Warn().Msg("no wallet address, the collect simulation will most likely be refused")
	}

	if c.Pool != "" {
		t.pool = common.HexToAddress(c.Pool)
	}

	return t
}

// StepError names the step of the active position that failed.
type StepError struct {
	Position uint64
	Step     string
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("position %d: %s: %v", e.Position, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func call[T any](ctx context.Context, t *Tracker, op string, fn func(context.Context) (T, error)) (T, error) {
	res := retry.Do(ctx, t.caller, op, fn)
	return res.Value, res.Err
}

// positionInfo is the resolved static data of the active position.
type positionInfo struct {
	id               *big.Int
	pos              *lp_v3.NftPosition
	pool             common.Address
	symbol0          string
	symbol1          string
	decimals0        uint8
	decimals1        uint8
	decimalsFallback bool
	baseIsToken0     bool
}

func (p *positionInfo) pair() string {
	return p.symbol0 + "/" + p.symbol1
}

func (p *positionInfo) base() string {
	if p.baseIsToken0 {
		return cmn.BASE_TOKEN0
	}
	return cmn.BASE_TOKEN1
}

// baseQuote returns the symbols prices are expressed in: quote per base.
func (p *positionInfo) baseQuote() (string, string) {
	if p.baseIsToken0 {
		return p.symbol0, p.symbol1
	}
	return p.symbol1, p.symbol0
}

func toUnits(raw *big.Int, decimals uint8) decimal.Decimal {
	return decimal.NewFromBigInt(raw, -int32(decimals))
}

// resolve reads the position and everything needed to price it. known is the pair as stored in
// the history, used when the chain cannot tell the symbols.
func (t *Tracker) resolve(ctx context.Context, active *cmn.ActivePosition, known string) (*positionInfo, error) {
	info := &positionInfo{
		id:           new(big.Int).SetUint64(active.Id),
		baseIsToken0: active.BaseIsToken0(t.config.DefaultBase),
	}

	pos, err := call(ctx, t, "positions", func(ctx context.Context) (*lp_v3.NftPosition, error) {
		return t.chain.NftPosition(ctx, info.id)
	})
	if err != nil {
		return nil, &StepError{active.Id, "position", err}
	}
	info.pos = pos

	info.symbol0, info.symbol1, err = t.symbols(ctx, pos, known)
	if err != nil {
		return nil, &StepError{active.Id, "symbols", err}
	}

	info.decimals0, info.decimals1, info.decimalsFallback, err = t.decimals(ctx, pos, info.pair())
	if err != nil {
		return nil, &StepError{active.Id, "decimals", err}
	}

	if t.pool != (common.Address{}) {
		info.pool = t.pool
	} else {
		info.pool, err = call(ctx, t, "getPool", func(ctx context.Context) (common.Address, error) {
			return t.chain.Pool(ctx, pos.Token0, pos.Token1, pos.Fee)
		})
		if err != nil {
			log.Error().Err(err).Uint64("position", active.Id).Msg("pool unknown, market price unavailable")
		}
	}

	log.Debug().Msgf("position %d: %s (%d/%d decimals) pool %s base %s",
		active.Id, info.pair(), info.decimals0, info.decimals1, info.pool.Hex(), info.base())

	return info, nil
}

func (t *Tracker) symbols(ctx context.Context, pos *lp_v3.NftPosition, known string) (string, string, error) {
	s0, err0 := call(ctx, t, "symbol0", func(ctx context.Context) (string, error) {
		return t.tokens.Symbol(ctx, pos.Token0)
	})
	s1, err1 := call(ctx, t, "symbol1", func(ctx context.Context) (string, error) {
		return t.tokens.Symbol(ctx, pos.Token1)
	})
	if err0 == nil && err1 == nil {
		return s0, s1, nil
	}

	r := cmn.PositionRecord{TokenPairSymbols: known}
	if k0, k1, ok := r.Symbols(); ok {
		log.Warn().Msgf("token symbols unavailable, using stored pair %s", known)
		return k0, k1, nil
	}

	if err0 != nil {
		return "", "", err0
	}
	return "", "", err1
}

func (t *Tracker) decimals(ctx context.Context, pos *lp_v3.NftPosition, pair string) (uint8, uint8, bool, error) {
	d0, err0 := call(ctx, t, "decimals0", func(ctx context.Context) (uint8, error) {
		return t.tokens.Decimals(ctx, pos.Token0)
	})
	d1, err1 := call(ctx, t, "decimals1", func(ctx context.Context) (uint8, error) {
		return t.tokens.Decimals(ctx, pos.Token1)
	})
	if err0 == nil && err1 == nil {
		return d0, d1, false, nil
	}

	if fb, ok := cmn.LookupPairDecimals(pair); ok {
		log.Warn().Msgf("token decimals unavailable, using fallback %d/%d for %s", fb.Decimals0, fb.Decimals1, pair)
		return fb.Decimals0, fb.Decimals1, true, nil
	}

	if err0 != nil {
		return 0, 0, false, err0
	}
	return 0, 0, false, err1
}

func (t *Tracker) slot0(ctx context.Context, info *positionInfo) (*lp_v3.Slot0, error) {
	if info.pool == (common.Address{}) {
		return nil, fmt.Errorf("%w: pool unknown", cmn.ErrTerminal)
	}
	return call(ctx, t, "slot0", func(ctx context.Context) (*lp_v3.Slot0, error) {
		return t.chain.Slot0(ctx, info.pool)
	})
}

// knownPair returns the stored token_pair_symbols of a position, if there is a history.
func (t *Tracker) knownPair(id uint64) string {
	h, err := t.history.Load()
	if err != nil {
		return ""
	}
	if r := h.Position(id); r != nil {
		return r.TokenPairSymbols
	}
	return ""
}
