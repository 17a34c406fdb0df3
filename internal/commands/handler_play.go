package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pixil98/go-royale/internal/court"
	"github.com/pixil98/go-royale/internal/display"
	"github.com/pixil98/go-royale/internal/game"
	"github.com/pixil98/go-royale/internal/storage"
)

// SubstituteHandlerFactory lets the King send the Double in his place.
type SubstituteHandlerFactory struct {
	noConfig
	court *court.Court
}

func NewSubstituteHandlerFactory(c *court.Court) *SubstituteHandlerFactory {
	return &SubstituteHandlerFactory{court: c}
}

func (f *SubstituteHandlerFactory) Create() (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		m, err := f.court.Match()
		if err != nil {
			return err
		}
		return m.RequestSubstitution(ctx, cmdCtx.Actor)
	}, nil
}

// StabHandlerFactory attacks another player in the room the actor is
// talking in.
type StabHandlerFactory struct {
	noConfig
	court *court.Court
	pub   Teller
}

func NewStabHandlerFactory(c *court.Court, pub Teller) *StabHandlerFactory {
	return &StabHandlerFactory{court: c, pub: pub}
}

func (f *StabHandlerFactory) Create() (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		m, err := f.court.Match()
		if err != nil {
			return err
		}
		res, err := m.Stab(ctx, cmdCtx.Actor, playerInput(cmdCtx, "player"), cmdCtx.Session.Channel())
		if err != nil {
			return err
		}
		return tell(f.pub, cmdCtx.Actor, "You rolled %d against %d.", res.AttackerRoll, res.TargetRoll)
	}, nil
}

// GiveHandlerFactory hands an item to a player sharing the current room.
type GiveHandlerFactory struct {
	noConfig
	court *court.Court
}

func NewGiveHandlerFactory(c *court.Court) *GiveHandlerFactory {
	return &GiveHandlerFactory{court: c}
}

func (f *GiveHandlerFactory) Create() (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		m, err := f.court.Match()
		if err != nil {
			return err
		}
		_, err = m.GiveItem(ctx, cmdCtx.Actor, playerInput(cmdCtx, "player"), stringInput(cmdCtx, "item"), cmdCtx.Session.Channel())
		return err
	}, nil
}

// BagHandlerFactory lists what the actor is carrying.
type BagHandlerFactory struct {
	noConfig
	court *court.Court
	pub   Teller
}

func NewBagHandlerFactory(c *court.Court, pub Teller) *BagHandlerFactory {
	return &BagHandlerFactory{court: c, pub: pub}
}

func (f *BagHandlerFactory) Create() (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		m, err := f.court.Match()
		if err != nil {
			return err
		}
		items, watch, err := m.Inventory(cmdCtx.Actor)
		if err != nil {
			return err
		}

		rows := [][]string{{"Item", "Count"}}
		for _, it := range items {
			rows = append(rows, []string{it.Name, strconv.Itoa(it.Count)})
		}
		return tell(f.pub, cmdCtx.Actor, "%s\nYour watch is %s.", display.Table(rows), watch)
	}, nil
}

// InfoHandlerFactory shows the state of the match and the actor's place in it.
type InfoHandlerFactory struct {
	noConfig
	court *court.Court
	pub   Teller
}

func NewInfoHandlerFactory(c *court.Court, pub Teller) *InfoHandlerFactory {
	return &InfoHandlerFactory{court: c, pub: pub}
}

func (f *InfoHandlerFactory) Create() (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		m, err := f.court.Match()
		if err != nil {
			return err
		}

		lines := []string{fmt.Sprintf("State: %s", m.StateName())}
		if day, ok := m.Day(); ok {
			lines = append(lines, fmt.Sprintf("Day: %d", day))
		}
		if tr, ok := m.TimeRange(); ok {
			lines = append(lines, fmt.Sprintf("Time: %s", tr))
		}

		players, _ := m.Players()
		for _, p := range players {
			if p.ID != cmdCtx.Actor {
				continue
			}
			lines = append(lines,
				fmt.Sprintf("You are the %s.", p.Role),
				fmt.Sprintf("Your room is %s.", p.Room),
			)
			if !p.Alive {
				lines = append(lines, "You are dead.")
			}
		}

		return tellLine(f.pub, cmdCtx.Actor, strings.Join(lines, "\n"))
	}, nil
}

// LogsHandlerFactory shows the secret meetings the actor arranged on a day.
type LogsHandlerFactory struct {
	noConfig
	court *court.Court
	pub   Teller
}

func NewLogsHandlerFactory(c *court.Court, pub Teller) *LogsHandlerFactory {
	return &LogsHandlerFactory{court: c, pub: pub}
}

func (f *LogsHandlerFactory) Create() (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		m, err := f.court.Match()
		if err != nil {
			return err
		}

		day, ok := numberInput(cmdCtx, "day")
		if !ok {
			day, _ = m.Day()
		}
		meetings, err := m.SecretMeetingLog(cmdCtx.Actor, day)
		if err != nil {
			return err
		}
		if len(meetings) == 0 {
			return tell(f.pub, cmdCtx.Actor, "You arranged no secret meetings on day %d.", day)
		}

		lines := []string{fmt.Sprintf("Secret meetings on day %d:", day)}
		for _, s := range meetings {
			lines = append(lines, fmt.Sprintf("  with %s in %s", s.Partner, s.Room))
		}
		return tellLine(f.pub, cmdCtx.Actor, strings.Join(lines, "\n"))
	}, nil
}

// RolesHandlerFactory describes the roles, or one role in detail.
type RolesHandlerFactory struct {
	noConfig
	sheets storage.Storer[*game.RoleSheet]
	pub    Teller
}

func NewRolesHandlerFactory(sheets storage.Storer[*game.RoleSheet], pub Teller) *RolesHandlerFactory {
	return &RolesHandlerFactory{sheets: sheets, pub: pub}
}

func (f *RolesHandlerFactory) Create() (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		byRole := map[game.Role]*game.RoleSheet{}
		for _, s := range f.sheets.GetAll() {
			if r, ok := game.ParseRole(s.Role); ok {
				byRole[r] = s
			}
		}

		if name := stringInput(cmdCtx, "role"); name != "" {
			r, ok := game.ParseRole(name)
			if !ok || byRole[r] == nil {
				return NewUserError(fmt.Sprintf("There is no role called %q.", name))
			}
			return tellLine(f.pub, cmdCtx.Actor, describeRole(r, byRole[r]))
		}

		rows := [][]string{}
		for _, r := range game.AllRoles {
			summary := ""
			if s := byRole[r]; s != nil {
				summary = s.Summary
			}
			rows = append(rows, []string{r.String(), summary})
		}
		return tellLine(f.pub, cmdCtx.Actor, display.Table(rows))
	}, nil
}

func describeRole(r game.Role, s *game.RoleSheet) string {
	lines := []string{
		fmt.Sprintf("%s: %s", r, s.Summary),
		display.Wrap(fmt.Sprintf("Goal: %s", s.Goal)),
	}
	for _, a := range s.Abilities {
		lines = append(lines, display.Wrap(fmt.Sprintf("  - %s", a)))
	}
	return strings.Join(lines, "\n")
}
