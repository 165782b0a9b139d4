package client

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Default refresh intervals for the views that poll.
const (
	TaskPollInterval     = 5 * time.Second
	ActivityPollInterval = 3 * time.Second
	AdminPollInterval    = 10 * time.Second

	DefaultFetchTimeout = 10 * time.Second
	DefaultMaxBackoff   = time.Minute
)

// FetchFunc performs one refresh. The context is cancelled when the fetch
// times out or the poller stops.
type FetchFunc func(ctx context.Context) error

type PollerConfig struct {
	Interval   time.Duration
	Timeout    time.Duration
	MaxBackoff time.Duration
	OnError    func(error)
}

// Poller runs a fetch immediately and then once per interval. Fetches never
// overlap: a tick that falls due while one is in flight is skipped. After a failure the delay grows exponentially up to MaxBackoff
// and returns to Interval on the next success.
type Poller struct {
	fetch   FetchFunc
	cfg     PollerConfig
	trigger chan struct{}
	pending int32
	running int32
}

func NewPoller(fetch FetchFunc, cfg PollerConfig) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = TaskPollInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultFetchTimeout
	}
	if cfg.MaxBackoff < cfg.Interval {
		cfg.MaxBackoff = DefaultMaxBackoff
		if cfg.MaxBackoff < cfg.Interval {
			cfg.MaxBackoff = cfg.Interval
		}
	}
	return &Poller{
		fetch:   fetch,
		cfg:     cfg,
		trigger: make(chan struct{}, 1),
	}
}

// Refresh asks for a fetch as soon as the current one, if any, finishes.
// Requests made in the meantime collapse into one.
func (p *Poller) Refresh() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

// Pending reports whether a fetch is in flight.
func (p *Poller) Pending() bool {
	return atomic.LoadInt32(&p.pending) == 1
}

func (p *Poller) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.cfg.Interval
	b.MaxInterval = p.cfg.MaxBackoff
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// Run blocks until ctx is done and returns ctx.Err(). Calling Run on a
// poller that is already running returns immediately.
func (p *Poller) Run(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&p.running, 0, 1) {
		return nil
	}
	defer atomic.StoreInt32(&p.running, 0)

	b := p.newBackOff()
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		case <-p.trigger:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}

		delay := p.cfg.Interval
		if err := p.once(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if p.cfg.OnError != nil {
				p.cfg.OnError(err)
			}
			delay = b.NextBackOff()
		} else {
			b.Reset()
		}
		timer.Reset(delay)
	}
}

func (p *Poller) once(ctx context.Context) error {
	atomic.StoreInt32(&p.pending, 1)
	defer atomic.StoreInt32(&p.pending, 0)

	fetchCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()
	return p.fetch(fetchCtx)
}
