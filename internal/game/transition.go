package game

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/pixil98/go-royale/internal/decision"
)

// start assigns roles, provisions private rooms and opens day 1.
func (m *Match) start(ctx context.Context) {
	ns := mustPhase[*NotStarted](m.phase, "start")

	ids := ns.roster.Members()
	slices.Sort(ids)
	roles := slices.Clone(AllRoles[:])
	m.shuffle(roles)

	players := make([]*Player, len(ids))
	for i, id := range ids {
		room, err := m.rooms.CreateRoom(ctx, fmt.Sprintf("room-%d", i+1), privateRoomCategory)
		if err != nil {
			slog.ErrorContext(ctx, "creating private room", "player", id, "error", err)
		} else if err := m.rooms.GrantRoom(ctx, room, id); err != nil {
			slog.ErrorContext(ctx, "granting private room", "player", id, "room", room, "error", err)
		}
		if err := m.rooms.GrantRole(ctx, m.meta.PlayerRole, id); err != nil {
			slog.ErrorContext(ctx, "granting player role", "player", id, "error", err)
		}

		p := NewPlayer(id, roles[i], room, watchColours[i], m.kit)
		players[i] = p
		m.say(ctx, room, fmt.Sprintf("You are the %s. Your watch is %s. Type 'bag' to see what you carry.", p.role, p.watch))
	}

	m.phase = &ABlock{timeBlock{players: players, day: 1}}
	slog.InfoContext(ctx, "match started", "host", m.meta.Host, "players", len(players))
	m.announcePhase(ctx)
}

// advance performs one transition and returns the decisions it opened.
func (m *Match) advance(ctx context.Context) []decision.Action {
	var actions []decision.Action
	switch p := m.phase.(type) {
	case *ABlock:
		m.openMeetingRoom(ctx, p)
		m.phase = &BBlock{p.timeBlock}
	case *BBlock:
		if m.endIfWon(ctx, &p.timeBlock) {
			return nil
		}
		m.closeMeetingRoom(ctx, p)
		m.phase = &CBlock{p.timeBlock}
	case *CBlock:
		if m.endIfWon(ctx, &p.timeBlock) {
			return nil
		}
		actions = m.selectSecretMeetingPartners(ctx)
		if a := m.selectMurderTarget(ctx); a != nil {
			actions = append(actions, *a)
		}
		m.phase = &DBlock{timeBlock: p.timeBlock}
	case *DBlock:
		if m.endIfWon(ctx, &p.timeBlock) {
			return nil
		}
		m.openMeetingRoom(ctx, p)
		m.phase = &EBlock{p.timeBlock}
	case *EBlock:
		if m.endIfWon(ctx, &p.timeBlock) {
			return nil
		}
		m.closeMeetingRoom(ctx, p)
		m.feedPlayers(ctx)
		if a := m.selectAssassinationTarget(ctx); a != nil {
			actions = append(actions, *a)
		}
		if p.substitution == SubstitutionCurrentlyIs {
			p.substitution = SubstitutionHas
		}
		m.phase = &FBlock{p.timeBlock}
	case *FBlock:
		if m.endIfWon(ctx, &p.timeBlock) {
			return nil
		}
		next := p.timeBlock
		next.day++
		m.phase = &ABlock{next}
	default:
		panic(&ContractViolation{Op: "advance", Phase: m.phase.Kind()})
	}

	m.announcePhase(ctx)
	return actions
}

// endIfWon moves the match to GameEnded when every player's win condition holds.
func (m *Match) endIfWon(ctx context.Context, b *timeBlock) bool {
	if !b.allWon() {
		return false
	}

	m.phase = endFrom(b)
	m.cancel()

	var sb strings.Builder
	fmt.Fprintf(&sb, "The game has ended on day %d.", b.day)
	for _, p := range b.players {
		state := "alive"
		if !p.alive {
			state = "dead"
		}
		fmt.Fprintf(&sb, "\n%s was the %s (%s).", p.id, p.role, state)
	}
	m.say(ctx, m.meta.AnnouncementChannel, sb.String())
	slog.InfoContext(ctx, "match won", "day", b.day)
	return true
}

func (m *Match) announcePhase(ctx context.Context) {
	b, err := m.block()
	if err != nil {
		return
	}
	k := m.phase.Kind()
	tr, _ := k.TimeRange()
	m.say(ctx, m.meta.AnnouncementChannel, fmt.Sprintf("Day %d %s %s", b.day, k, tr))
}

func (m *Match) openMeetingRoom(ctx context.Context, _ MeetingOpener) {
	if err := m.rooms.OpenRoom(ctx, m.meta.MeetingRoom, m.meta.PlayerRole); err != nil {
		slog.ErrorContext(ctx, "opening meeting room", "room", m.meta.MeetingRoom, "error", err)
		return
	}
	m.say(ctx, m.meta.MeetingRoom, "The meeting room is open.")
}

func (m *Match) closeMeetingRoom(ctx context.Context, _ MeetingCloser) {
	m.say(ctx, m.meta.MeetingRoom, "The meeting room is closing.")
	if err := m.rooms.CloseRoom(ctx, m.meta.MeetingRoom, m.meta.PlayerRole); err != nil {
		slog.ErrorContext(ctx, "closing meeting room", "room", m.meta.MeetingRoom, "error", err)
	}
}

// selectSecretMeetingPartners asks every living player whom to meet tonight.
func (m *Match) selectSecretMeetingPartners(ctx context.Context) []decision.Action {
	c := mustPhase[*CBlock](m.phase, "select secret meeting partners")
	day := c.day

	var actions []decision.Action
	for _, selector := range c.living("") {
		candidates := c.living(selector.id)
		if len(candidates) == 0 {
			continue
		}
		selectorID := selector.id
		actions = append(actions, decision.Action{
			Name:     "secret-meeting:" + string(selectorID),
			Room:     string(selector.room),
			Prompt:   "Who would you like to meet in secret tonight?",
			Choices:  playerChoices(candidates),
			Deciders: []string{string(selectorID)},
			Timeout:  m.choiceTimeout,
			Apply: func(ctx context.Context, i int) error {
				return m.commitSecretMeeting(ctx, day, selectorID, candidates[i].id)
			},
		})
	}
	slog.DebugContext(ctx, "secret meeting selection opened", "day", day, "selectors", len(actions))
	return actions
}

// selectMurderTarget asks the king-like player whom to have murdered.
func (m *Match) selectMurderTarget(ctx context.Context) *decision.Action {
	c := mustPhase[*CBlock](m.phase, "select murder target")
	day := c.day

	decider := c.kingLike()
	if decider == nil {
		slog.WarnContext(ctx, "no king-like player to choose a murder target", "day", day)
		return nil
	}
	if c.murderAssistant() == nil {
		slog.InfoContext(ctx, "no one left to carry out a murder", "day", day)
		m.say(ctx, decider.room, "There is no one left to carry out a murder for you. Perhaps that knife will come in handy.")
		return nil
	}

	candidates := c.living(decider.id)
	return &decision.Action{
		Name:     "murder-target",
		Room:     string(decider.room),
		Prompt:   "Whom do you want murdered tonight?",
		Choices:  playerChoices(candidates),
		Deciders: []string{string(decider.id)},
		Timeout:  m.choiceTimeout,
		Apply: func(ctx context.Context, i int) error {
			return m.commitMurderTarget(ctx, day, decider.id, candidates[i].id)
		},
	}
}

// feedPlayers makes every living player eat; those without food starve.
func (m *Match) feedPlayers(ctx context.Context) {
	e := mustPhase[*EBlock](m.phase, "feed players")

	for _, p := range e.living("") {
		if !p.items.Take(ItemFood) {
			m.kill(ctx, p, DeathCause{Kind: Starvation}, p.room)
			continue
		}
		m.say(ctx, p.room, fmt.Sprintf("You ate a food bar. %d left.", p.items.Count(ItemFood)))
	}
}

// selectAssassinationTarget asks the living Revolutionary whom to assassinate.
func (m *Match) selectAssassinationTarget(ctx context.Context) *decision.Action {
	e := mustPhase[*EBlock](m.phase, "select assassination target")
	day := e.day

	rev := e.holder(Revolutionary)
	if rev == nil || !rev.alive {
		slog.InfoContext(ctx, "no revolutionary to assassinate", "day", day)
		return nil
	}
	candidates := e.living(rev.id)
	if len(candidates) == 0 {
		return nil
	}
	// The status flips to used when E closes, so a shield raised during E is
	// captured now. One raised during F is read when the decision commits.
	shielded := e.substitution == SubstitutionCurrentlyIs

	return &decision.Action{
		Name:     "assassination",
		Room:     string(rev.room),
		Prompt:   "Whom will you assassinate tonight?",
		Choices:  playerChoices(candidates),
		Deciders: []string{string(rev.id)},
		Timeout:  m.choiceTimeout,
		Apply: func(ctx context.Context, i int) error {
			return m.commitAssassination(ctx, day, rev.id, candidates[i].id, shielded)
		},
	}
}

// window returns the block a decision was created for, if still current.
func (m *Match) window(kind PhaseKind, day int) (*timeBlock, bool) {
	tb, ok := m.phase.(TimeBlock)
	if !ok || tb.Kind() != kind || tb.block().day != day {
		return nil, false
	}
	return tb.block(), true
}

func (m *Match) commitSecretMeeting(ctx context.Context, day int, selector, partner Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.window(PhaseD, day)
	if !ok {
		return decision.ErrStale
	}
	sel, _ := b.Player(selector)
	part, _ := b.Player(partner)
	if sel == nil || part == nil || !sel.alive || !part.alive {
		return decision.ErrStale
	}

	room, err := m.rooms.CreateRoom(ctx, fmt.Sprintf("%s-%s", sel.id, part.id), fmt.Sprintf("Secret meetings for day %d", day))
	if err != nil {
		return fmt.Errorf("creating secret meeting room: %w", err)
	}
	m.secretRooms = append(m.secretRooms, room)
	for _, id := range []Identity{sel.id, part.id} {
		if err := m.rooms.GrantRoom(ctx, room, id); err != nil {
			slog.ErrorContext(ctx, "granting secret meeting room", "room", room, "player", id, "error", err)
		}
	}
	sel.AddSecretMeeting(day, part.id, room)

	m.say(ctx, room, fmt.Sprintf("%s has invited %s to a secret meeting.", sel.id, part.id))
	m.say(ctx, m.meta.AnnouncementChannel, fmt.Sprintf("%s => %s", sel.id, part.id))
	return nil
}

func (m *Match) commitMurderTarget(ctx context.Context, day int, decider, target Identity) error {
	m.mu.Lock()
	b, ok := m.window(PhaseD, day)
	if !ok {
		m.mu.Unlock()
		return decision.ErrStale
	}
	t, _ := b.Player(target)
	if k := b.kingLike(); k == nil || k.id != decider || t == nil || !t.alive {
		m.mu.Unlock()
		return decision.ErrStale
	}
	launch := m.orderMurderLocked(ctx, m.phase.(*DBlock), target)
	m.mu.Unlock()

	launch()
	return nil
}

// orderMurderLocked records the murder target and reserves the confirmation
// the assistant must give. The returned func launches it once m.mu is released.
func (m *Match) orderMurderLocked(ctx context.Context, d *DBlock, target Identity) func() {
	d.murderTarget = target

	assistant := d.murderAssistant()
	if assistant == nil {
		slog.InfoContext(ctx, "murder target chosen but no one can carry it out", "target", target)
		return func() {}
	}
	day := d.day
	assistantID := assistant.id
	return m.reserveLocked(decision.Action{
		Name:     "murder-confirm",
		Room:     string(assistant.room),
		Prompt:   fmt.Sprintf("The King wants %s dead. Will you carry out the murder?", target),
		Choices:  decision.Labels("Yes", "No"),
		Deciders: []string{string(assistantID)},
		Timeout:  m.choiceTimeout,
		Apply: func(ctx context.Context, i int) error {
			return m.commitMurder(ctx, day, assistantID, i == 0)
		},
	})
}

func (m *Match) commitMurder(ctx context.Context, day int, assistant Identity, carryOut bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.window(PhaseD, day)
	if !ok {
		return decision.ErrStale
	}
	d := m.phase.(*DBlock)
	a, _ := b.Player(assistant)
	if a == nil || !a.alive || d.murderTarget == "" {
		return decision.ErrStale
	}
	target, _ := b.Player(d.murderTarget)
	d.murderTarget = ""

	if !carryOut {
		m.say(ctx, a.room, fmt.Sprintf("You spared %s.", target.id))
		return nil
	}
	if !target.alive {
		slog.InfoContext(ctx, "murder target already dead", "target", target.id)
		return nil
	}
	cause, ok := a.role.KillCause()
	if !ok {
		return decision.ErrStale
	}
	victim := b.hitTarget(target, b.substitution == SubstitutionCurrentlyIs)
	m.kill(ctx, victim, cause, victim.room)
	return nil
}

func (m *Match) commitAssassination(ctx context.Context, day int, rev, target Identity, shielded bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.window(PhaseF, day)
	if !ok {
		return decision.ErrStale
	}
	r, _ := b.Player(rev)
	t, _ := b.Player(target)
	if r == nil || !r.alive || t == nil || !t.alive {
		return decision.ErrStale
	}

	victim := b.hitTarget(t, shielded || b.substitution == SubstitutionCurrentlyIs)
	m.kill(ctx, victim, DeathCause{Kind: Assassination}, victim.room)
	return nil
}

func playerChoices(players []*Player) []decision.Choice {
	out := make([]decision.Choice, len(players))
	for i, p := range players {
		out[i] = decision.Choice{Label: string(p.id)}
	}
	return out
}
