// Package poll mirrors the progress of a remote job by re-fetching its status
// on a fixed interval until the job reaches a terminal state.
package poll

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"
)

const DefaultInterval = 2 * time.Second

// ErrStop, returned or wrapped by a fetch, ends polling without a terminal
// value. Use it for failures that no later request can recover from.
var ErrStop = errors.New("polling stopped")

type FetchFunc[T any] func(ctx context.Context) (T, error)

type Config struct {
	Interval time.Duration
	Logger   *slog.Logger
	// Name identifies the poller in logs.
	Name string
}

type Poller[T any] struct {
	fetch      FetchFunc[T]
	terminal   func(T) bool
	interval   time.Duration
	logger     *slog.Logger
	onTerminal func(T)
	finished   atomic.Bool
	requests   atomic.Int64
}

func New[T any](fetch FetchFunc[T], terminal func(T) bool, cfg Config) *Poller[T] {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Name != "" {
		logger = logger.With(slog.String("poller", cfg.Name))
	}
	return &Poller[T]{
		fetch:    fetch,
		terminal: terminal,
		interval: cfg.Interval,
		logger:   logger,
	}
}

// OnTerminal registers fn to run once, the first time a terminal state is seen.
func (p *Poller[T]) OnTerminal(fn func(T)) *Poller[T] {
	p.onTerminal = fn
	return p
}

// Requests reports how many status fetches have been issued.
func (p *Poller[T]) Requests() int64 {
	return p.requests.Load()
}

// Run fetches immediately and then once per interval, passing every successful
// response to onUpdate. Fetch errors are logged and polling continues, except
// for errors wrapping ErrStop, which Run returns at once. Run returns the
// terminal value, or ctx.Err() once ctx is cancelled; no request is started
// after cancellation and a response that lands after it is dropped.
func (p *Poller[T]) Run(ctx context.Context, onUpdate func(T)) (T, error) {
	var last T

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return last, err
		}

		p.requests.Add(1)
		v, err := p.fetch(ctx)
		if cerr := ctx.Err(); cerr != nil {
			return last, cerr
		}

		if errors.Is(err, ErrStop) {
			p.logger.Info("polling stopped", slog.String("error", err.Error()))
			return last, err
		}
		if err != nil {
			p.logger.Warn("status poll failed", slog.String("error", err.Error()))
		} else {
			last = v
			if onUpdate != nil {
				onUpdate(v)
			}
			if p.terminal != nil && p.terminal(v) {
				p.finish(v)
				return v, nil
			}
		}

		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (p *Poller[T]) finish(v T) {
	if !p.finished.CompareAndSwap(false, true) {
		return
	}
	if p.onTerminal != nil {
		p.onTerminal(v)
	}
}

// Watch runs the poller in the background and streams updates. The channel is
// closed when the job turns terminal, the fetch returns ErrStop, or ctx is
// cancelled.
func (p *Poller[T]) Watch(ctx context.Context) <-chan T {
	ch := make(chan T, 1)
	go func() {
		defer close(ch)
		p.Run(ctx, func(v T) {
			select {
			case ch <- v:
			case <-ctx.Done():
			}
		})
	}()
	return ch
}
