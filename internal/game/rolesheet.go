package game

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

// RoleSheet is the player-facing description of a role, loaded from assets.
type RoleSheet struct {
	Role      string   `json:"role"`
	Summary   string   `json:"summary"`
	Goal      string   `json:"goal"`
	Abilities []string `json:"abilities"`
}

func (s *RoleSheet) Validate() error {
	el := errors.NewErrorList()

	if s.Role == "" {
		el.Add(fmt.Errorf("role must be set"))
	} else if _, ok := ParseRole(s.Role); !ok {
		el.Add(fmt.Errorf("unknown role %q", s.Role))
	}
	if s.Summary == "" {
		el.Add(fmt.Errorf("summary must be set"))
	}
	if s.Goal == "" {
		el.Add(fmt.Errorf("goal must be set"))
	}

	return el.Err()
}
