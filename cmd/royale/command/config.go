package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
)

const minTickInterval = 100 * time.Millisecond

type Config struct {
	TickInterval string           `json:"tick_interval"`
	Listeners    []ListenerConfig `json:"listeners"`
	Storage      StorageConfig    `json:"storage"`
	Nats         NatsConfig       `json:"nats"`
	Match        MatchConfig      `json:"match"`
	Telemetry    TelemetryConfig  `json:"telemetry"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	d, err := time.ParseDuration(c.TickInterval)
	if err != nil {
		el.Add(fmt.Errorf("parsing tick_interval: %w", err))
	} else if d < minTickInterval {
		el.Add(fmt.Errorf("tick_interval must be at least %s", minTickInterval))
	}

	if len(c.Listeners) == 0 {
		el.Add(fmt.Errorf("at least one listener is required"))
	}
	for i, l := range c.Listeners {
		err := l.validate()
		if err != nil {
			el.Add(fmt.Errorf("listener %d: %w", i, err))
		}
	}

	el.Add(c.Storage.validate())
	el.Add(c.Nats.validate())
	el.Add(c.Match.validate())
	el.Add(c.Telemetry.validate())

	return el.Err()
}

func (c *Config) tickInterval() time.Duration {
	d, err := time.ParseDuration(c.TickInterval)
	if err != nil {
		return 0
	}
	return d
}
