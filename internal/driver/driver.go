// Package driver ticks the time-triggered parts of the server, such as the
// block timer of a running match.
package driver

import (
	"context"
	"log/slog"
	"time"

	"github.com/pixil98/go-errors"
)

const (
	DefaultTickLength = time.Second
)

type Ticker interface {
	Tick(context.Context) error
}

type Driver struct {
	tickLength time.Duration
	tickers    []Ticker
}

func NewDriver(tickers []Ticker, opts ...DriverOpt) *Driver {
	d := &Driver{
		tickLength: DefaultTickLength,
		tickers:    tickers,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Start ticks until ctx is cancelled. A failed tick is logged and the next
// one runs on schedule.
func (d *Driver) Start(ctx context.Context) error {
	ticker := time.NewTicker(d.tickLength)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := d.Tick(ctx); err != nil {
				slog.ErrorContext(ctx, "driver tick", "error", err)
			}
		}
	}
}

// Tick runs every ticker once, even when an earlier one fails.
func (d *Driver) Tick(ctx context.Context) error {
	el := errors.NewErrorList()
	for _, t := range d.tickers {
		el.Add(t.Tick(ctx))
	}
	return el.Err()
}
