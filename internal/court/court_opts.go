package court

import (
	"time"

	"github.com/pixil98/go-royale/internal/game"
)

type CourtOpt func(*Court)

// WithMatchOpts applies extra options to every match the court creates.
func WithMatchOpts(opts ...game.MatchOpt) CourtOpt {
	return func(c *Court) {
		c.matchOpts = append(c.matchOpts, opts...)
	}
}

func WithClock(now func() time.Time) CourtOpt {
	return func(c *Court) {
		c.now = now
	}
}
