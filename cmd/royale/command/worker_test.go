package command

import (
	"context"
	"errors"
	"testing"

	"github.com/pixil98/go-testutil"
)

type fakeBus struct {
	err error
}

func (b fakeBus) WaitReady(context.Context) error { return b.err }

type fakeWorker struct {
	started bool
}

func (w *fakeWorker) Start(context.Context) error {
	w.started = true
	return nil
}

func TestAfterBus_Start(t *testing.T) {
	tests := map[string]struct {
		busErr  error
		cancel  bool
		started bool
		expErr  string
	}{
		"bus ready": {
			started: true,
		},
		"bus failed": {
			busErr: errors.New("server shut down"),
			expErr: "waiting for message bus: server shut down",
		},
		"shutting down": {
			busErr: context.Canceled,
			cancel: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if tt.cancel {
				cancel()
			}

			w := &fakeWorker{}
			a := &afterBus{bus: fakeBus{err: tt.busErr}, next: w}
			err := a.Start(ctx)

			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "started", w.started, tt.started)
		})
	}
}
