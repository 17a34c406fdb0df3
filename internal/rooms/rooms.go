// Package rooms keeps the chat rooms a match runs in and decides who can see
// them. Everything said in a room is fanned out to each viewer's subject.
package rooms

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/pixil98/go-errors"

	"github.com/pixil98/go-royale/internal/game"
)

// Everyone is granted to every connected session.
const Everyone game.GrantID = "everyone"

// Teller delivers a line of text to one identity.
type Teller interface {
	Tell(id game.Identity, msg string) error
}

// View is a read-only snapshot of a room.
type View struct {
	ID       game.RoomID
	Category string
}

type room struct {
	id       game.RoomID
	category string
	members  map[game.Identity]bool
	open     map[game.GrantID]bool
}

// Provisioner is the in-memory room registry. All access goes through its
// methods.
type Provisioner struct {
	teller Teller

	mu    sync.RWMutex
	rooms map[game.RoomID]*room
	order []game.RoomID
	roles map[game.GrantID]map[game.Identity]bool
}

func NewProvisioner(teller Teller) *Provisioner {
	return &Provisioner{
		teller: teller,
		rooms:  map[game.RoomID]*room{},
		roles:  map[game.GrantID]map[game.Identity]bool{},
	}
}

func (p *Provisioner) CreateRoom(ctx context.Context, name, category string) (game.RoomID, error) {
	if name == "" {
		return "", fmt.Errorf("room name must be set")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	id := game.RoomID(name)
	for n := 2; p.rooms[id] != nil; n++ {
		id = game.RoomID(fmt.Sprintf("%s-%d", name, n))
	}

	p.rooms[id] = &room{
		id:       id,
		category: category,
		members:  map[game.Identity]bool{},
		open:     map[game.GrantID]bool{},
	}
	p.order = append(p.order, id)

	slog.DebugContext(ctx, "room created", "room", id, "category", category)
	return id, nil
}

func (p *Provisioner) DestroyRoom(ctx context.Context, id game.RoomID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := p.lookup(id); err != nil {
		return err
	}
	delete(p.rooms, id)
	p.order = slices.DeleteFunc(p.order, func(r game.RoomID) bool { return r == id })

	slog.DebugContext(ctx, "room destroyed", "room", id)
	return nil
}

func (p *Provisioner) GrantRoom(_ context.Context, id game.RoomID, who game.Identity) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	r, err := p.lookup(id)
	if err != nil {
		return err
	}
	r.members[who] = true
	return nil
}

func (p *Provisioner) RevokeRoom(_ context.Context, id game.RoomID, who game.Identity) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	r, err := p.lookup(id)
	if err != nil {
		return err
	}
	delete(r.members, who)
	return nil
}

func (p *Provisioner) OpenRoom(_ context.Context, id game.RoomID, grant game.GrantID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	r, err := p.lookup(id)
	if err != nil {
		return err
	}
	r.open[grant] = true
	return nil
}

func (p *Provisioner) CloseRoom(_ context.Context, id game.RoomID, grant game.GrantID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	r, err := p.lookup(id)
	if err != nil {
		return err
	}
	delete(r.open, grant)
	return nil
}

func (p *Provisioner) GrantRole(_ context.Context, grant game.GrantID, who game.Identity) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.roles[grant] == nil {
		p.roles[grant] = map[game.Identity]bool{}
	}
	p.roles[grant][who] = true
	return nil
}

func (p *Provisioner) RevokeRole(_ context.Context, grant game.GrantID, who game.Identity) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.roles[grant], who)
	return nil
}

func (p *Provisioner) CanSee(id game.RoomID, who game.Identity) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	r, ok := p.rooms[id]
	if !ok {
		return false
	}
	return p.canSee(r, who)
}

// Say posts msg into the room as the server.
func (p *Provisioner) Say(ctx context.Context, id game.RoomID, msg string) error {
	return p.post(ctx, id, fmt.Sprintf("[%s] %s", id, msg))
}

// Speak posts text into the room on behalf of a player who can see it.
func (p *Provisioner) Speak(ctx context.Context, id game.RoomID, from game.Identity, text string) error {
	if !p.CanSee(id, from) {
		return game.NewRuleError("You can't see that room.")
	}
	return p.post(ctx, id, fmt.Sprintf("[%s] %s: %s", id, from, text))
}

// Viewers lists everyone who can currently see the room, sorted.
func (p *Provisioner) Viewers(id game.RoomID) []game.Identity {
	p.mu.RLock()
	defer p.mu.RUnlock()

	r, ok := p.rooms[id]
	if !ok {
		return nil
	}
	return p.viewers(r)
}

// RoomsFor lists the rooms who can see, in creation order.
func (p *Provisioner) RoomsFor(who game.Identity) []View {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var out []View
	for _, id := range p.order {
		r := p.rooms[id]
		if p.canSee(r, who) {
			out = append(out, View{ID: r.id, Category: r.category})
		}
	}
	return out
}

func (p *Provisioner) Room(id game.RoomID) (View, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	r, ok := p.rooms[id]
	if !ok {
		return View{}, false
	}
	return View{ID: r.id, Category: r.category}, true
}

func (p *Provisioner) post(ctx context.Context, id game.RoomID, line string) error {
	p.mu.RLock()
	r, err := p.lookup(id)
	var viewers []game.Identity
	if err == nil {
		viewers = p.viewers(r)
	}
	p.mu.RUnlock()
	if err != nil {
		return err
	}

	el := errors.NewErrorList()
	for _, who := range viewers {
		el.Add(p.teller.Tell(who, line))
	}
	if err := el.Err(); err != nil {
		slog.WarnContext(ctx, "delivering room message", "room", id, "error", err)
		return err
	}
	return nil
}

// lookup requires the lock to be held.
func (p *Provisioner) lookup(id game.RoomID) (*room, error) {
	r, ok := p.rooms[id]
	if !ok {
		return nil, fmt.Errorf("unknown room %q", id)
	}
	return r, nil
}

func (p *Provisioner) canSee(r *room, who game.Identity) bool {
	if r.members[who] {
		return true
	}
	for grant := range r.open {
		if p.roles[grant][who] {
			return true
		}
	}
	return false
}

func (p *Provisioner) viewers(r *room) []game.Identity {
	seen := map[game.Identity]bool{}
	for who := range r.members {
		seen[who] = true
	}
	for grant := range r.open {
		for who := range p.roles[grant] {
			seen[who] = true
		}
	}

	out := make([]game.Identity, 0, len(seen))
	for who := range seen {
		out = append(out, who)
	}
	slices.Sort(out)
	return out
}
