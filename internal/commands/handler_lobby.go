package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pixil98/go-royale/internal/court"
	"github.com/pixil98/go-royale/internal/display"
	"github.com/pixil98/go-royale/internal/game"
)

// RoomSayer posts into a room as the server.
type RoomSayer interface {
	Say(ctx context.Context, room game.RoomID, msg string) error
}

// NewGameHandlerFactory opens a lobby hosted by the actor.
type NewGameHandlerFactory struct {
	messageConfig
	court *court.Court
	pub   Teller
}

func NewNewGameHandlerFactory(c *court.Court, pub Teller) *NewGameHandlerFactory {
	return &NewGameHandlerFactory{court: c, pub: pub}
}

func (f *NewGameHandlerFactory) Create() (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		if _, err := f.court.NewGame(ctx, cmdCtx.Actor); err != nil {
			return err
		}
		return tellLine(f.pub, cmdCtx.Actor, messageOr(cmdCtx, "You are hosting a new game. Type start once six players have joined."))
	}, nil
}

// EndGameHandlerFactory lets the host stop the match.
type EndGameHandlerFactory struct {
	noConfig
	court *court.Court
}

func NewEndGameHandlerFactory(c *court.Court) *EndGameHandlerFactory {
	return &EndGameHandlerFactory{court: c}
}

func (f *EndGameHandlerFactory) Create() (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		return f.court.EndGame(ctx, cmdCtx.Actor)
	}, nil
}

// JoinHandlerFactory adds the actor to the lobby and tells everyone.
type JoinHandlerFactory struct {
	messageConfig
	court *court.Court
	rooms RoomSayer
}

func NewJoinHandlerFactory(c *court.Court, rooms RoomSayer) *JoinHandlerFactory {
	return &JoinHandlerFactory{court: c, rooms: rooms}
}

func (f *JoinHandlerFactory) Create() (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		m, err := f.court.Match()
		if err != nil {
			return err
		}
		if err := m.Join(cmdCtx.Actor); err != nil {
			return err
		}
		msg := messageOr(cmdCtx, fmt.Sprintf("%s joined the game.", cmdCtx.Actor))
		announceRoster(ctx, f.court, f.rooms, m, msg)
		return nil
	}, nil
}

// LeaveHandlerFactory removes the actor from the lobby.
type LeaveHandlerFactory struct {
	messageConfig
	court *court.Court
	rooms RoomSayer
}

func NewLeaveHandlerFactory(c *court.Court, rooms RoomSayer) *LeaveHandlerFactory {
	return &LeaveHandlerFactory{court: c, rooms: rooms}
}

func (f *LeaveHandlerFactory) Create() (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		m, err := f.court.Match()
		if err != nil {
			return err
		}
		if err := m.Leave(cmdCtx.Actor); err != nil {
			return err
		}
		msg := messageOr(cmdCtx, fmt.Sprintf("%s left the game.", cmdCtx.Actor))
		announceRoster(ctx, f.court, f.rooms, m, msg)
		return nil
	}, nil
}

func announceRoster(ctx context.Context, c *court.Court, rooms RoomSayer, m *game.Match, msg string) {
	members, _ := m.Roster()
	_, announcements := c.Rooms()
	msg = fmt.Sprintf("%s (%d/%d)", msg, len(members), game.MaxPlayers)
	if err := rooms.Say(ctx, announcements, msg); err != nil {
		slog.WarnContext(ctx, "announcing roster change", "error", err)
	}
}

// StartHandlerFactory lets the host start a full lobby.
type StartHandlerFactory struct {
	noConfig
	court *court.Court
}

func NewStartHandlerFactory(c *court.Court) *StartHandlerFactory {
	return &StartHandlerFactory{court: c}
}

func (f *StartHandlerFactory) Create() (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		return f.court.StartGame(ctx, cmdCtx.Actor)
	}, nil
}

// NextHandlerFactory lets the host move to the next block.
type NextHandlerFactory struct {
	noConfig
	court *court.Court
}

func NewNextHandlerFactory(c *court.Court) *NextHandlerFactory {
	return &NextHandlerFactory{court: c}
}

func (f *NextHandlerFactory) Create() (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		return f.court.Advance(ctx, cmdCtx.Actor)
	}, nil
}

// WhoHandlerFactory lists the lobby, or the players and who is still alive.
type WhoHandlerFactory struct {
	noConfig
	court *court.Court
	pub   Teller
}

func NewWhoHandlerFactory(c *court.Court, pub Teller) *WhoHandlerFactory {
	return &WhoHandlerFactory{court: c, pub: pub}
}

func (f *WhoHandlerFactory) Create() (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		m, err := f.court.Match()
		if err != nil {
			return err
		}

		if members, ok := m.Roster(); ok {
			names := make([]string, len(members))
			for i, id := range members {
				names[i] = string(id)
			}
			if len(names) == 0 {
				names = []string{"nobody yet"}
			}
			return tell(f.pub, cmdCtx.Actor, "Host: %s\nJoined (%d/%d): %s",
				m.Host(), len(members), game.MaxPlayers, strings.Join(names, ", "))
		}

		players, _ := m.Players()
		rows := [][]string{{"Player", "Status"}}
		for _, p := range players {
			status := "alive"
			if !p.Alive {
				status = "dead"
			}
			rows = append(rows, []string{string(p.ID), status})
		}
		return tell(f.pub, cmdCtx.Actor, "Host: %s\n%s", m.Host(), display.Table(rows))
	}, nil
}
