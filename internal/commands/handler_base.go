package commands

import (
	"fmt"
	"strings"

	"github.com/pixil98/go-royale/internal/decision"
	"github.com/pixil98/go-royale/internal/game"
)

// Teller delivers text to one player.
type Teller interface {
	Tell(id game.Identity, msg string) error
}

// Chooser answers an outstanding decision on behalf of a player.
type Chooser interface {
	Choose(decider game.Identity, h decision.Handle, n int) error
}

// noConfig is embedded by handlers that take no config.
type noConfig struct{}

func (noConfig) Spec() *HandlerSpec {
	return &HandlerSpec{}
}

func (noConfig) ValidateConfig(map[string]any) error {
	return nil
}

// messageConfig is embedded by handlers whose reply can be overridden with
// a "message" template.
type messageConfig struct{}

func (messageConfig) Spec() *HandlerSpec {
	return &HandlerSpec{
		Config: []ConfigRequirement{
			{Name: "message", Required: false},
		},
	}
}

func (messageConfig) ValidateConfig(map[string]any) error {
	return nil
}

func messageOr(cmdCtx *CommandContext, def string) string {
	if msg := cmdCtx.Config["message"]; msg != "" {
		return msg
	}
	return def
}

func stringInput(cmdCtx *CommandContext, name string) string {
	s, _ := cmdCtx.Inputs[name].(string)
	return s
}

func numberInput(cmdCtx *CommandContext, name string) (int, bool) {
	n, ok := cmdCtx.Inputs[name].(int)
	return n, ok
}

// playerInput reads a player name. Identities are lower case.
func playerInput(cmdCtx *CommandContext, name string) game.Identity {
	return game.Identity(strings.ToLower(stringInput(cmdCtx, name)))
}

func tell(t Teller, id game.Identity, format string, args ...any) error {
	return tellLine(t, id, fmt.Sprintf(format, args...))
}

// tellLine sends msg as is. Use it for text built from player input.
func tellLine(t Teller, id game.Identity, msg string) error {
	if err := t.Tell(id, msg); err != nil {
		return fmt.Errorf("replying to %s: %w", id, err)
	}
	return nil
}
