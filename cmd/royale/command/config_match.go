package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-royale/internal/court"
	"github.com/pixil98/go-royale/internal/game"
)

type MatchConfig struct {
	// BlockDuration advances every block automatically once it elapses.
	BlockDuration string `json:"block_duration,omitempty"`
	ChoiceTimeout string `json:"choice_timeout,omitempty"`
	TeardownOnEnd bool   `json:"teardown_on_end"`
}

func (c *MatchConfig) validate() error {
	el := errors.NewErrorList()

	if _, err := parseOptionalDuration(c.BlockDuration); err != nil {
		el.Add(fmt.Errorf("match: parsing block_duration: %w", err))
	}
	if _, err := parseOptionalDuration(c.ChoiceTimeout); err != nil {
		el.Add(fmt.Errorf("match: parsing choice_timeout: %w", err))
	}

	return el.Err()
}

func (c *MatchConfig) courtConfig(kit []*game.ItemSpec) (court.Config, error) {
	block, err := parseOptionalDuration(c.BlockDuration)
	if err != nil {
		return court.Config{}, fmt.Errorf("parsing block_duration: %w", err)
	}
	choice, err := parseOptionalDuration(c.ChoiceTimeout)
	if err != nil {
		return court.Config{}, fmt.Errorf("parsing choice_timeout: %w", err)
	}

	return court.Config{
		BlockDuration: block,
		ChoiceTimeout: choice,
		TeardownOnEnd: c.TeardownOnEnd,
		Kit:           kit,
	}, nil
}

func parseOptionalDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("%s is negative", s)
	}
	return d, nil
}
