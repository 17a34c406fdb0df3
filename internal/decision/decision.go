// Package decision resolves single-choice player decisions: present the
// choices, wait for the first valid signal and apply it once.
package decision

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const MaxChoices = 6

// ErrStale is returned by an Apply function when the state it was created
// for no longer exists.
var ErrStale = errors.New("decision no longer applies")

// Handle correlates presented choices with the signals answering them.
type Handle string

type Choice struct {
	Label string
}

// Signal is one decider's pick. Index is zero-based.
type Signal struct {
	Decider string
	Index   int
}

// Presenter renders choices into a room.
type Presenter interface {
	Present(ctx context.Context, room string, prompt string, choices []Choice) (Handle, error)
}

// Listener produces the signals answering a presented set of choices. The
// returned func stops delivery.
type Listener interface {
	Listen(ctx context.Context, h Handle, deciders []string) (<-chan Signal, func(), error)
}

// Action describes one outstanding decision.
type Action struct {
	Name     string
	Room     string
	Prompt   string
	Choices  []Choice
	Deciders []string

	// Timeout of zero waits until the context is cancelled.
	Timeout time.Duration

	// Apply commits the decision. It returns ErrStale when the state it was
	// built for has gone away.
	Apply func(ctx context.Context, index int) error
}

func (a *Action) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("action name is required")
	}
	if len(a.Choices) == 0 || len(a.Choices) > MaxChoices {
		return fmt.Errorf("action %s: must offer between 1 and %d choices, got %d", a.Name, MaxChoices, len(a.Choices))
	}
	if len(a.Deciders) == 0 {
		return fmt.Errorf("action %s: at least one decider is required", a.Name)
	}
	if a.Apply == nil {
		return fmt.Errorf("action %s: apply is required", a.Name)
	}
	return nil
}

func (a *Action) eligible(decider string) bool {
	for _, d := range a.Deciders {
		if d == decider {
			return true
		}
	}
	return false
}

// Labels returns the choice labels in order.
func Labels(labels ...string) []Choice {
	out := make([]Choice, len(labels))
	for i, l := range labels {
		out[i] = Choice{Label: l}
	}
	return out
}

type Outcome int

const (
	Committed Outcome = iota
	TimedOut
	Abandoned
	Cancelled
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Committed:
		return "committed"
	case TimedOut:
		return "timed out"
	case Abandoned:
		return "abandoned"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}
