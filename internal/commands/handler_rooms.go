package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/pixil98/go-royale/internal/decision"
	"github.com/pixil98/go-royale/internal/display"
	"github.com/pixil98/go-royale/internal/game"
	"github.com/pixil98/go-royale/internal/rooms"
)

// RoomsHandlerFactory lists the rooms the actor can see.
type RoomsHandlerFactory struct {
	noConfig
	rooms *rooms.Provisioner
	pub   Teller
}

func NewRoomsHandlerFactory(r *rooms.Provisioner, pub Teller) *RoomsHandlerFactory {
	return &RoomsHandlerFactory{rooms: r, pub: pub}
}

func (f *RoomsHandlerFactory) Create() (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		views := f.rooms.RoomsFor(cmdCtx.Actor)
		if len(views) == 0 {
			return tell(f.pub, cmdCtx.Actor, "You can't see any rooms.")
		}

		current := cmdCtx.Session.Channel()
		rows := make([][]string, 0, len(views))
		for _, v := range views {
			marker := " "
			if v.ID == current {
				marker = "*"
			}
			rows = append(rows, []string{marker, string(v.ID), v.Category})
		}
		return tellLine(f.pub, cmdCtx.Actor, display.Table(rows))
	}, nil
}

// TuneHandlerFactory switches the room the actor talks in.
type TuneHandlerFactory struct {
	noConfig
	rooms *rooms.Provisioner
	pub   Teller
}

func NewTuneHandlerFactory(r *rooms.Provisioner, pub Teller) *TuneHandlerFactory {
	return &TuneHandlerFactory{rooms: r, pub: pub}
}

func (f *TuneHandlerFactory) Create() (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		room := game.RoomID(strings.ToLower(stringInput(cmdCtx, "room")))
		if !f.rooms.CanSee(room, cmdCtx.Actor) {
			return NewUserError("You can't see that room.")
		}
		cmdCtx.Session.SetChannel(room)
		return tell(f.pub, cmdCtx.Actor, "You are now talking in %s.", room)
	}, nil
}

// SayHandlerFactory speaks into the actor's current room.
type SayHandlerFactory struct {
	noConfig
	rooms *rooms.Provisioner
}

func NewSayHandlerFactory(r *rooms.Provisioner) *SayHandlerFactory {
	return &SayHandlerFactory{rooms: r}
}

func (f *SayHandlerFactory) Create() (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		room := cmdCtx.Session.Channel()
		if room == "" {
			return NewUserError("You aren't talking in any room. Use tune first.")
		}
		return f.rooms.Speak(ctx, room, cmdCtx.Actor, stringInput(cmdCtx, "text"))
	}, nil
}

// ChooseHandlerFactory answers a presented decision.
type ChooseHandlerFactory struct {
	messageConfig
	chooser Chooser
	pub     Teller
}

func NewChooseHandlerFactory(chooser Chooser, pub Teller) *ChooseHandlerFactory {
	return &ChooseHandlerFactory{chooser: chooser, pub: pub}
}

func (f *ChooseHandlerFactory) Create() (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		h := decision.Handle(strings.ToLower(stringInput(cmdCtx, "handle")))
		n, _ := numberInput(cmdCtx, "number")
		if n < 1 || n > decision.MaxChoices {
			return NewUserError(fmt.Sprintf("Choose a number between 1 and %d.", decision.MaxChoices))
		}
		if err := f.chooser.Choose(cmdCtx.Actor, h, n); err != nil {
			return err
		}
		return tellLine(f.pub, cmdCtx.Actor, messageOr(cmdCtx, "Your choice has been sent."))
	}, nil
}
