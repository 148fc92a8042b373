// Package retry wraps single remote reads with bounded retries and a failure classification.
package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"syscall"
	"time"

	"github.com/AlexNa-Holdings/lptracker/cmn"
	"github.com/rs/zerolog/log"
)

type Class int

const (
	Transient  Class = iota // retry
	Terminal                // fail fast
	Unexpected              // retry, but log loudly
)

func (c Class) String() string {
	switch c {
	case Transient:
		return "transient"
	case Terminal:
		return "terminal"
	default:
		return "unexpected"
	}
}

type Classifier func(error) Class

// Policy bounds the attempts of one call. Multiplier <= 1 gives a fixed delay.
type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

func PolicyFromConfig(c cmn.SRetry) Policy {
	return Policy{
		MaxAttempts:  c.MaxAttempts,
		InitialDelay: c.InitialDelay,
		MaxDelay:     c.MaxDelay,
		Multiplier:   c.Multiplier,
	}
}

// Caller holds the policy and the classifier shared by the calls of one collaborator.
type Caller struct {
	Policy   Policy
	Classify Classifier
}

func NewCaller(p Policy, classify Classifier) *Caller {
	if classify == nil {
		classify = Classify
	}
	return &Caller{Policy: p, Classify: classify}
}

type Result[T any] struct {
	Value    T
	Err      error
	Attempts int
	Retries  int
}

func (r Result[T]) OK() bool {
	return r.Err == nil
}

// Do runs fn until it succeeds, fails terminally or runs out of attempts.
// The outcome is always returned in the Result, never panicked.
func Do[T any](ctx context.Context, c *Caller, operation string, fn func(context.Context) (T, error)) (res Result[T]) {
	maxAttempts := c.Policy.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("operation", operation).Msgf("panic in remote call: %v", r)
			res.Err = fmt.Errorf("%s: panic: %v", operation, r)
		}
	}()

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		res.Attempts = attempt

		if err := ctx.Err(); err != nil {
			res.Err = fmt.Errorf("%s cancelled: %w", operation, err)
			return res
		}

		v, err := fn(ctx)
		if err == nil {
			res.Value = v
			res.Err = nil
			if attempt > 1 {
				log.Info().Str("operation", operation).Int("attempts", attempt).Msg("succeeded after retries")
			}
			return res
		}
		res.Err = err

		class := c.Classify(err)
		if class == Terminal {
			log.Error().Err(err).Str("operation", operation).Msg("terminal failure, not retrying")
			return res
		}

		if attempt == maxAttempts {
			break
		}

		delay := c.Policy.delay(attempt)
		ev := log.Warn()
		if class == Unexpected {
			ev = log.Error()
		}
		ev.Err(err).
			Str("operation", operation).
			Str("class", class.String()).
			Int("attempt", attempt).
			Int("max_attempts", maxAttempts).
			Dur("retry_in", delay).
			Msg("call failed, retrying")

		res.Retries++
		if err := sleep(ctx, delay); err != nil {
			res.Err = fmt.Errorf("%s cancelled: %w", operation, err)
			return res
		}
	}

	log.Error().Err(res.Err).Str("operation", operation).Int("attempts", res.Attempts).Msg("all attempts failed")
	res.Err = fmt.Errorf("%s failed after %d attempts: %w", operation, res.Attempts, res.Err)
	return res
}

func (p Policy) delay(attempt int) time.Duration {
	d := float64(p.InitialDelay)
	if p.Multiplier > 1 {
		d *= math.Pow(p.Multiplier, float64(attempt-1))
	}
	if p.MaxDelay > 0 && d > float64(p.MaxDelay) {
		d = float64(p.MaxDelay)
	}
	return time.Duration(d)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Classify knows the shared error sentinels and the network failures of the standard library.
func Classify(err error) Class {
	switch {
	case err == nil:
		return Unexpected
	case errors.Is(err, cmn.ErrTerminal), errors.Is(err, cmn.ErrData):
		return Terminal
	case errors.Is(err, cmn.ErrTransient):
		return Transient
	case errors.Is(err, context.Canceled):
		return Terminal
	case errors.Is(err, context.DeadlineExceeded):
		return Transient
	case errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNABORTED), errors.Is(err, syscall.EPIPE):
		return Transient
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		return Transient
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Transient
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return Transient
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return Transient
	}

	return Unexpected
}
