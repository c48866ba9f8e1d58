package discovery

import (
	"errors"
	"log/slog"
	"time"
)

// Option is a function that allows configuring the Aggregator.
type Option func(*Aggregator) error

// WithConcurrency sets the maximum number of processes inspected in parallel.
func WithConcurrency(n int) Option {
	return func(a *Aggregator) error {
		if n < 1 {
			return errors.New("concurrency must be at least 1")
		}
		a.concurrency = n
		return nil
	}
}

// WithInspectTimeout sets the maximum time spent inspecting a single process.
func WithInspectTimeout(dur time.Duration) Option {
	return func(a *Aggregator) error {
		if dur <= 0 {
			return errors.New("inspect timeout must be positive")
		}
		a.inspectTimeout = dur
		return nil
	}
}

// WithListTimeout sets the maximum time spent listing listening sockets.
func WithListTimeout(dur time.Duration) Option {
	return func(a *Aggregator) error {
		if dur <= 0 {
			return errors.New("list timeout must be positive")
		}
		a.listTimeout = dur
		return nil
	}
}

// WithLogger sets the logger used by the Aggregator.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) error {
		a.logger = logger.With("component", "discovery")
		return nil
	}
}

// DefaultOptions returns the default Aggregator options.
func DefaultOptions() []Option {
	return []Option{
		WithConcurrency(8),
		WithListTimeout(10 * time.Second),
		WithInspectTimeout(3 * time.Second),
		WithLogger(slog.Default()),
	}
}
