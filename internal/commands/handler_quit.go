package commands

import (
	"context"
)

// QuitHandlerFactory creates handlers that end the session.
type QuitHandlerFactory struct {
	noConfig
}

func (f *QuitHandlerFactory) Create() (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		cmdCtx.Session.Quit()
		return nil
	}, nil
}
