package eth

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/AlexNa-Holdings/lptracker/cmn"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	defaultRate      = 5 // calls/sec
	minRate          = 1
	increaseInterval = 60 * time.Second
	increasePercent  = 10
	decreasePercent  = 50
	rateLimitBackoff = 5 * time.Second
)

// Dial opens the RPC connection and checks that it serves the expected chain.
func Dial(ctx context.Context, url string, chainId int) (*ethclient.Client, error) {
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect to the RPC")
		return nil, fmt.Errorf("%w: dial rpc: %v", cmn.ErrTransient, err)
	}

	id, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("chain id: %w", err)
	}

	if chainId != 0 && id.Cmp(big.NewInt(int64(chainId))) != 0 {
		client.Close()
		return nil, fmt.Errorf("%w: rpc serves chain %s, configured %d", cmn.ErrTerminal, id, chainId)
	}

	log.Debug().Str("chainId", id.String()).Msg("RPC connected")
	return client, nil
}

// Throttled limits the call rate against one RPC endpoint and bounds every call with a timeout.
// The rate halves when the endpoint reports rate limiting and creeps back up after a quiet minute.
type Throttled struct {
	ethereum.ContractCaller
	limiter *rate.Limiter
	timeout time.Duration
	maxRate float64

	mu           sync.Mutex
	lastError    time.Time
	lastIncrease time.Time
	backoffUntil time.Time

	now func() time.Time
}

func NewThrottled(c ethereum.ContractCaller, perSecond float64, timeout time.Duration) *Throttled {
	if perSecond <= 0 {
		perSecond = defaultRate
	}
	if perSecond < minRate {
		perSecond = minRate
	}
	return &Throttled{
		ContractCaller: c,
		limiter:        rate.NewLimiter(rate.Limit(perSecond), 1),
		timeout:        timeout,
		maxRate:        perSecond,
		now:            time.Now,
	}
}

// Rate returns the current calls/sec.
func (t *Throttled) Rate() float64 {
	return float64(t.limiter.Limit())
}

func (t *Throttled) CallContract(ctx context.Context, msg ethereum.CallMsg, block *big.Int) ([]byte, error) {
	if err := t.backoff(ctx); err != nil {
		return nil, err
	}

	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	callCtx := ctx
	if t.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := t.ContractCaller.CallContract(callCtx, msg, block)
	log.Trace().Str("to", msg.To.Hex()).Dur("took", time.Since(start)).Err(err).Msg("eth_call")

	if err != nil && isRateLimitError(err) {
		t.onRateLimitError()
	} else if err == nil {
		t.onSuccess()
	}
	return out, err
}

func (t *Throttled) backoff(ctx context.Context) error {
	t.mu.Lock()
	wait := t.backoffUntil.Sub(t.now())
	t.mu.Unlock()

	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (t *Throttled) onRateLimitError() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.lastError = now
	t.backoffUntil = now.Add(rateLimitBackoff)

	current := float64(t.limiter.Limit())
	next := max(current*(100-decreasePercent)/100, minRate)
	if next < current {
		t.limiter.SetLimit(rate.Limit(next))
		log.Warn().Msgf("RPC rate limited, reducing rate from %.1f to %.1f calls/sec", current, next)
	}
}

func (t *Throttled) onSuccess() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if now.Sub(t.lastError) < increaseInterval || now.Sub(t.lastIncrease) < increaseInterval {
		return
	}

	current := float64(t.limiter.Limit())
	if current >= t.maxRate {
		return
	}

	next := min(current*(100+increasePercent)/100, t.maxRate)
	t.limiter.SetLimit(rate.Limit(next))
	t.lastIncrease = now
	log.Debug().Msgf("RPC rate increased from %.1f to %.1f calls/sec", current, next)
}
