package decision

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/pixil98/go-royale/internal/telemetry"
)

// Resolver runs Actions. A single Resolver may run any number of Actions
// concurrently, each on its own goroutine.
type Resolver struct {
	presenter Presenter
	listener  Listener
}

func NewResolver(p Presenter, l Listener) *Resolver {
	return &Resolver{presenter: p, listener: l}
}

// Run presents the action and blocks until it is committed, times out, is
// abandoned or the context is cancelled. Apply is called at most once.
func (r *Resolver) Run(ctx context.Context, a Action) Outcome {
	ctx, span := telemetry.Tracer("decision").Start(ctx, "decision.resolve")
	defer span.End()
	span.SetAttributes(
		attribute.String("action", a.Name),
		attribute.Int("choices", len(a.Choices)),
	)

	outcome := r.run(ctx, &a)
	span.SetAttributes(attribute.String("outcome", outcome.String()))
	return outcome
}

func (r *Resolver) run(ctx context.Context, a *Action) Outcome {
	if err := a.Validate(); err != nil {
		slog.ErrorContext(ctx, "invalid decision", "error", err)
		return Failed
	}

	h, err := r.presenter.Present(ctx, a.Room, a.Prompt, a.Choices)
	if err != nil {
		slog.ErrorContext(ctx, "presenting decision", "action", a.Name, "error", err)
		return Failed
	}

	signals, stop, err := r.listener.Listen(ctx, h, a.Deciders)
	if err != nil {
		slog.ErrorContext(ctx, "listening for decision", "action", a.Name, "handle", h, "error", err)
		return Failed
	}
	defer stop()

	var timeout <-chan time.Time
	if a.Timeout > 0 {
		t := time.NewTimer(a.Timeout)
		defer t.Stop()
		timeout = t.C
	}

	for {
		select {
		case <-ctx.Done():
			slog.DebugContext(ctx, "decision cancelled", "action", a.Name, "handle", h)
			return Cancelled

		case <-timeout:
			slog.InfoContext(ctx, "decision timed out", "action", a.Name, "handle", h)
			return TimedOut

		case sig, ok := <-signals:
			if !ok {
				return Cancelled
			}
			if !a.eligible(sig.Decider) || sig.Index < 0 || sig.Index >= len(a.Choices) {
				continue
			}

			err := a.Apply(ctx, sig.Index)
			switch {
			case errors.Is(err, ErrStale):
				slog.WarnContext(ctx, "decision abandoned", "action", a.Name, "decider", sig.Decider)
				return Abandoned
			case err != nil:
				slog.ErrorContext(ctx, "applying decision", "action", a.Name, "decider", sig.Decider, "error", err)
				return Failed
			}

			slog.InfoContext(ctx, "decision committed", "action", a.Name, "decider", sig.Decider, "choice", a.Choices[sig.Index].Label)
			return Committed
		}
	}
}
