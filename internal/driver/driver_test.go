package driver

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

type countingTicker struct {
	ticks atomic.Int32
	err   error
}

func (c *countingTicker) Tick(context.Context) error {
	c.ticks.Add(1)
	return c.err
}

func TestDriver_Tick(t *testing.T) {
	tests := map[string]struct {
		errs    []error
		wantErr string
	}{
		"all succeed": {
			errs: []error{nil, nil},
		},
		"failure does not stop later tickers": {
			errs:    []error{errors.New("first broke"), nil},
			wantErr: "first broke",
		},
		"no tickers": {},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var tickers []Ticker
			var counters []*countingTicker
			for _, err := range tt.errs {
				c := &countingTicker{err: err}
				counters = append(counters, c)
				tickers = append(tickers, c)
			}

			err := NewDriver(tickers).Tick(context.Background())
			if tt.wantErr != "" {
				testutil.AssertErrorContains(t, err, tt.wantErr)
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			for i, c := range counters {
				if c.ticks.Load() != 1 {
					t.Errorf("ticker %d ticked %d times", i, c.ticks.Load())
				}
			}
		})
	}
}

func TestDriver_Start(t *testing.T) {
	c := &countingTicker{err: errors.New("ignored")}
	d := NewDriver([]Ticker{c}, WithTickLength(time.Millisecond))
	testutil.AssertEqual(t, "tick length", d.tickLength, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Start(ctx) }()

	deadline := time.After(time.Second)
	for c.ticks.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("driver ticked %d times before deadline", c.ticks.Load())
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
