// Package wait provides retry-with-backoff helpers used by the test suite
// to synchronize against the server's event loop instead of sleeping for a
// fixed duration.
package wait

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net"
	"time"
)

var (
	ErrTimeout           = errors.New("wait: timeout exceeded")
	ErrMaxRetriesReached = errors.New("wait: maximum retries reached")
)

// ConditionFunc returns true once the awaited condition holds.
type ConditionFunc func() (bool, error)

// Strategy produces the delay before each retry.
type Strategy interface {
	Next() (time.Duration, bool)
	Reset()
}

// Options configures Until.
type Options struct {
	MaxRetries int
	Timeout    time.Duration
	Strategy   Strategy
}

// DefaultOptions backs off from 10ms up to 250ms, for up to 5s total.
func DefaultOptions() *Options {
	return &Options{
		MaxRetries: 0,
		Timeout:    5 * time.Second,
		Strategy:   NewExponentialBackoff(10*time.Millisecond, 2.0, 250*time.Millisecond),
	}
}

// Until polls condition, sleeping per opts.Strategy between attempts, until
// it returns true, the retry budget is spent, or opts.Timeout elapses.
func Until(condition ConditionFunc, opts *Options) error {
	if opts == nil {
		opts = DefaultOptions()
	}
	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()

	opts.Strategy.Reset()
	attempts := 0
	for {
		ok, err := condition()
		if err != nil {
			return fmt.Errorf("wait: condition error: %w", err)
		}
		if ok {
			return nil
		}

		attempts++
		if opts.MaxRetries > 0 && attempts >= opts.MaxRetries {
			return ErrMaxRetriesReached
		}

		d, ok := opts.Strategy.Next()
		if !ok {
			return ErrMaxRetriesReached
		}
		select {
		case <-ctx.Done():
			return ErrTimeout
		case <-time.After(d):
		}
	}
}

// ExponentialBackoff implements capped exponential backoff with jitter.
type ExponentialBackoff struct {
	initial    time.Duration
	multiplier float64
	max        time.Duration
	attempt    int
}

func NewExponentialBackoff(initial time.Duration, multiplier float64, max time.Duration) *ExponentialBackoff {
	return &ExponentialBackoff{initial: initial, multiplier: multiplier, max: max}
}

func (s *ExponentialBackoff) Next() (time.Duration, bool) {
	d := time.Duration(float64(s.initial) * math.Pow(s.multiplier, float64(s.attempt)))
	if d > s.max {
		d = s.max
	}
	jitter := (rand.Float64() - 0.5) * 0.5 * float64(d)
	d = time.Duration(float64(d) + jitter)
	if d < 0 {
		d = 0
	}
	s.attempt++
	return d, true
}

func (s *ExponentialBackoff) Reset() { s.attempt = 0 }

// ForTCP blocks until a TCP connection to address succeeds.
func ForTCP(address string, timeout time.Duration) error {
	opts := DefaultOptions()
	opts.Timeout = timeout
	return Until(func() (bool, error) {
		conn, err := net.DialTimeout("tcp", address, time.Second)
		if err != nil {
			return false, nil
		}
		conn.Close()
		return true, nil
	}, opts)
}
