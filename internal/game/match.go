package game

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/pixil98/go-royale/internal/decision"
	"github.com/pixil98/go-royale/internal/telemetry"
)

const privateRoomCategory = "Rooms"

var watchColours = [MaxPlayers]string{"blue", "beige", "orange", "green", "black", "red"}

// Metadata is the fixed configuration of one match.
type Metadata struct {
	Host                Identity
	MeetingRoom         RoomID
	AnnouncementChannel RoomID
	PlayerRole          GrantID
	TeardownOnEnd       bool
}

// PlayerView is a read-only snapshot of a player.
type PlayerView struct {
	ID    Identity
	Role  Role
	Alive bool
	Room  RoomID
	Watch string
}

// StabResult reports the dice of a stab attempt.
type StabResult struct {
	AttackerRoll int
	TargetRoll   int
	Victim       Identity
}

func (r StabResult) Killed() bool {
	return r.Victim != ""
}

// Match is the phase-erased handle to one game. All access goes through its
// methods, which are safe for concurrent use.
type Match struct {
	mu    sync.RWMutex
	meta  Metadata
	phase Phase

	rooms  RoomProvisioner
	runner DecisionRunner

	kit           []*ItemSpec
	shuffle       Shuffler
	roll          Dice
	choiceTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	secretRooms []RoomID
}

// NewMatch creates a match that has not started. Decisions spawned by the
// match live until ctx is cancelled or the match ends.
func NewMatch(ctx context.Context, meta Metadata, rooms RoomProvisioner, runner DecisionRunner, opts ...MatchOpt) *Match {
	m := &Match{
		meta:    meta,
		phase:   &NotStarted{roster: NewRoster(meta.Host)},
		rooms:   rooms,
		runner:  runner,
		kit:     DefaultKit(),
		shuffle: RandomShuffle,
		roll:    D20,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.ctx, m.cancel = context.WithCancel(ctx)
	return m
}

func (m *Match) Host() Identity {
	return m.meta.Host
}

func (m *Match) Metadata() Metadata {
	return m.meta
}

func (m *Match) Join(id Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ns, ok := m.phase.(*NotStarted)
	if !ok {
		return ErrGameStarted
	}
	return ns.roster.Join(id)
}

func (m *Match) Leave(id Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ns, ok := m.phase.(*NotStarted)
	if !ok {
		return ErrGameStarted
	}
	return ns.roster.Leave(id)
}

// Roster returns the joined identities while the match has not started.
func (m *Match) Roster() ([]Identity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ns, ok := m.phase.(*NotStarted)
	if !ok {
		return nil, false
	}
	return ns.roster.Members(), true
}

func (m *Match) CanStart() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ns, ok := m.phase.(*NotStarted)
	return ok && ns.roster.CanStart()
}

func (m *Match) IsStarted() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.phase.(*NotStarted)
	return !ok
}

func (m *Match) IsEnded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.phase.(*GameEnded)
	return ok
}

func (m *Match) Phase() PhaseKind {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.phase.Kind()
}

func (m *Match) StateName() string {
	return m.Phase().String()
}

func (m *Match) TimeRange() (string, bool) {
	return m.Phase().TimeRange()
}

func (m *Match) Day() (int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	switch p := m.phase.(type) {
	case TimeBlock:
		return p.block().day, true
	case *GameEnded:
		return p.day, true
	default:
		return 0, false
	}
}

// Players returns a snapshot of the players, or false before the match starts.
func (m *Match) Players() ([]PlayerView, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	players, ok := m.players()
	if !ok {
		return nil, false
	}
	views := make([]PlayerView, len(players))
	for i, p := range players {
		views[i] = PlayerView{ID: p.id, Role: p.role, Alive: p.alive, Room: p.room, Watch: p.watch}
	}
	return views, true
}

// WithPlayers runs fn with exclusive access to the players.
func (m *Match) WithPlayers(fn func([]*Player)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	players, ok := m.players()
	if !ok {
		return false
	}
	fn(players)
	return true
}

func (m *Match) players() ([]*Player, bool) {
	switch p := m.phase.(type) {
	case TimeBlock:
		return p.block().players, true
	case *GameEnded:
		return p.players, true
	default:
		return nil, false
	}
}

func (m *Match) KingSubstitution() (SubstitutionStatus, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tb, ok := m.phase.(TimeBlock)
	if !ok {
		return 0, false
	}
	return tb.block().substitution, true
}

func (m *Match) KingHasSubstituted() (bool, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tb, ok := m.phase.(TimeBlock)
	if !ok {
		return false, false
	}
	return tb.block().KingHasSubstituted(), true
}

// SetKingSubstitutionStatus overrides the substitution status. It reports
// false outside the blocks of the day.
func (m *Match) SetKingSubstitutionStatus(s SubstitutionStatus) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	tb, ok := m.phase.(TimeBlock)
	if !ok {
		return false
	}
	tb.block().substitution = s
	return true
}

// SetKingMurderTarget names the murder target on the king-like player's
// behalf while the murder window is open, and asks the Sorcerer or Knight to
// carry it out. A target named earlier in the window is replaced.
func (m *Match) SetKingMurderTarget(ctx context.Context, target Identity) error {
	m.mu.Lock()
	d, ok := m.phase.(*DBlock)
	if !ok {
		m.mu.Unlock()
		return ErrMurderNotReady
	}
	p, ok := d.Player(target)
	if !ok {
		m.mu.Unlock()
		return ErrUnknownPlayer
	}
	if !p.alive {
		m.mu.Unlock()
		return ErrTargetDead
	}
	if k := d.kingLike(); k != nil && k.id == target {
		m.mu.Unlock()
		return ErrSelfTarget
	}
	launch := m.orderMurderLocked(ctx, d, target)
	m.mu.Unlock()

	launch()
	return nil
}

// RequestSubstitution lets the King put the Double in harm's way.
func (m *Match) RequestSubstitution(ctx context.Context, by Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, err := m.block()
	if err != nil {
		return err
	}
	p, ok := b.Player(by)
	if !ok {
		return ErrNotPlaying
	}
	if p.role != King {
		return ErrNotKing
	}
	if !p.alive {
		return ErrKingDead
	}
	if b.KingHasSubstituted() {
		return ErrAlreadySubstituted
	}
	if d := b.holder(TheDouble); d == nil || !d.alive {
		return ErrDoubleDead
	}

	b.substitution = SubstitutionCurrentlyIs
	slog.InfoContext(ctx, "king substitution requested", "king", by, "day", b.day)
	m.say(ctx, p.room, "Your double will stand in for you until the end of the evening.")
	return nil
}

// Stab lets attacker try to kill target in a room they share. The attacker
// needs a knife and must beat the target's d20 roll.
func (m *Match) Stab(ctx context.Context, attacker, target Identity, room RoomID) (StabResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, err := m.block()
	if err != nil {
		return StabResult{}, err
	}
	a, t, err := m.pair(b, attacker, target)
	if err != nil {
		return StabResult{}, err
	}
	if a.items.Count(ItemKnife) == 0 {
		return StabResult{}, ErrNoKnife
	}
	if !m.rooms.CanSee(room, a.id) || !m.rooms.CanSee(room, t.id) {
		return StabResult{}, ErrNotSameRoom
	}

	res := StabResult{AttackerRoll: m.roll(), TargetRoll: m.roll()}
	slog.InfoContext(ctx, "stab attempt", "attacker", a.id, "target", t.id, "attacker_roll", res.AttackerRoll, "target_roll", res.TargetRoll)
	if res.AttackerRoll <= res.TargetRoll {
		m.say(ctx, room, fmt.Sprintf("%s tried to stab %s but failed.", a.id, t.id))
		return res, nil
	}

	victim := b.hitTarget(t, b.substitution == SubstitutionCurrentlyIs)
	res.Victim = victim.id
	m.kill(ctx, victim, DeathCause{Kind: Stabbing, By: a.id}, room)
	return res, nil
}

// GiveItem hands one item from one player to another in a room they share.
func (m *Match) GiveItem(ctx context.Context, from, to Identity, item string, room RoomID) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, err := m.block()
	if err != nil {
		return "", err
	}
	f, t, err := m.pair(b, from, to)
	if err != nil {
		return "", err
	}
	idx := slices.IndexFunc(m.kit, func(s *ItemSpec) bool { return s.Matches(item) })
	if idx < 0 {
		return "", ErrUnknownItem
	}
	spec := m.kit[idx]
	if !spec.Giftable {
		return "", ErrNotGiftable
	}
	if !m.rooms.CanSee(room, f.id) || !m.rooms.CanSee(room, t.id) {
		return "", ErrNotSameRoom
	}
	if !f.items.Take(spec.Name) {
		return "", ErrNoSuchItem
	}
	t.items.Give(spec.Name, 1)

	m.say(ctx, room, fmt.Sprintf("%s gave %s to %s.", f.id, article(spec.Name), t.id))
	return spec.Name, nil
}

func (m *Match) AddNote(id Identity, text string) error {
	if text == "" {
		return ErrEmptyNote
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	p, b, err := m.livingPlayer(id)
	if err != nil {
		return err
	}
	tr, _ := m.phase.Kind().TimeRange()
	written := fmt.Sprintf("Day %d %s %s", b.day, m.phase.Kind(), tr)
	return p.memo.AddNote(written, text)
}

// RipNote tears out note i, counted from zero.
func (m *Match) RipNote(id Identity, i int) (Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, _, err := m.livingPlayer(id)
	if err != nil {
		return Note{}, err
	}
	return p.memo.RipNote(i)
}

func (m *Match) Notes(id Identity) ([]Note, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, _, err := m.livingPlayer(id)
	if err != nil {
		return nil, 0, err
	}
	return p.memo.Notes(), p.memo.Capacity(), nil
}

func (m *Match) Inventory(id Identity) ([]ItemCount, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, _, err := m.livingPlayer(id)
	if err != nil {
		return nil, "", err
	}
	return p.items.List(), p.watch, nil
}

// SecretMeetingLog returns the meetings the viewer arranged on day.
func (m *Match) SecretMeetingLog(viewer Identity, day int) ([]SecretMeeting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, err := m.block()
	if err != nil {
		return nil, err
	}
	p, ok := b.Player(viewer)
	if !ok {
		return nil, ErrNotPlaying
	}
	slots, ok := p.SecretMeetingsForDay(day)
	if !ok {
		return nil, ErrNoMeetingsYet
	}
	var out []SecretMeeting
	for _, s := range slots {
		if s != nil {
			out = append(out, *s)
		}
	}
	return out, nil
}

// Start assigns roles and moves the match into the first block of day 1.
func (m *Match) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch p := m.phase.(type) {
	case *NotStarted:
		if !p.roster.CanStart() {
			return ErrNotEnoughYet
		}
	case *GameEnded:
		return ErrGameEnded
	default:
		return ErrGameStarted
	}

	ctx, span := telemetry.Tracer("match").Start(ctx, "match.start")
	defer span.End()

	m.start(ctx)
	return nil
}

// Advance moves the match to the next block right away.
func (m *Match) Advance(ctx context.Context) error {
	ctx, span := telemetry.Tracer("match").Start(ctx, "match.advance")
	defer span.End()

	m.mu.Lock()
	switch m.phase.(type) {
	case *NotStarted:
		m.mu.Unlock()
		return ErrGameNotStarted
	case *GameEnded:
		m.mu.Unlock()
		return ErrGameEnded
	}

	from := m.phase.Kind()
	actions := m.advance(ctx)
	to := m.phase.Kind()
	day, _ := m.dayLocked()
	launch := m.reserveLocked(actions...)
	m.mu.Unlock()

	span.SetAttributes(
		attribute.String("from", from.String()),
		attribute.String("to", to.String()),
		attribute.Int("day", day),
		attribute.Int("decisions", len(actions)),
	)
	launch()
	return nil
}

// End finishes the match, cancels outstanding decisions and releases the
// match's rooms and grants.
func (m *Match) End(ctx context.Context) error {
	m.mu.Lock()
	players, _ := m.players()
	if b, ok := m.phase.(TimeBlock); ok {
		m.phase = endFrom(b.block())
	} else if _, ok := m.phase.(*NotStarted); ok {
		m.phase = &GameEnded{}
	}
	m.cancel()

	for _, p := range players {
		if err := m.rooms.RevokeRole(ctx, m.meta.PlayerRole, p.id); err != nil {
			slog.ErrorContext(ctx, "revoking player role", "player", p.id, "error", err)
		}
	}
	if m.meta.TeardownOnEnd {
		rooms := slices.Clone(m.secretRooms)
		for _, p := range players {
			rooms = append(rooms, p.room)
		}
		for _, r := range rooms {
			if r == "" {
				continue
			}
			if err := m.rooms.DestroyRoom(ctx, r); err != nil {
				slog.ErrorContext(ctx, "destroying room", "room", r, "error", err)
			}
		}
		m.secretRooms = nil
	}
	m.mu.Unlock()

	m.wg.Wait()
	slog.InfoContext(ctx, "match ended", "host", m.meta.Host)
	return nil
}

// Wait blocks until every outstanding decision has finished.
func (m *Match) Wait() {
	m.wg.Wait()
}

// reserveLocked counts actions into the wait group while m.mu is held, so
// End either waits for them or they are never counted. Nothing is reserved
// once the match context is done. The returned func starts the runners.
func (m *Match) reserveLocked(actions ...decision.Action) func() {
	if len(actions) == 0 || m.ctx.Err() != nil {
		return func() {}
	}
	m.wg.Add(len(actions))
	return func() {
		for _, a := range actions {
			go func() {
				defer m.wg.Done()
				m.runner.Run(m.ctx, a)
			}()
		}
	}
}

func (m *Match) dayLocked() (int, bool) {
	switch p := m.phase.(type) {
	case TimeBlock:
		return p.block().day, true
	case *GameEnded:
		return p.day, true
	default:
		return 0, false
	}
}

// block returns the current time block or the error explaining its absence.
func (m *Match) block() (*timeBlock, error) {
	switch p := m.phase.(type) {
	case TimeBlock:
		return p.block(), nil
	case *GameEnded:
		return nil, ErrGameEnded
	default:
		return nil, ErrGameNotStarted
	}
}

func (m *Match) livingPlayer(id Identity) (*Player, *timeBlock, error) {
	b, err := m.block()
	if err != nil {
		return nil, nil, err
	}
	p, ok := b.Player(id)
	if !ok {
		return nil, nil, ErrNotPlaying
	}
	if !p.alive {
		return nil, nil, ErrYoureDead
	}
	return p, b, nil
}

// pair resolves an acting player and a distinct living target.
func (m *Match) pair(b *timeBlock, actor, target Identity) (*Player, *Player, error) {
	a, ok := b.Player(actor)
	if !ok {
		return nil, nil, ErrNotPlaying
	}
	if !a.alive {
		return nil, nil, ErrYoureDead
	}
	if actor == target {
		return nil, nil, ErrSelfTarget
	}
	t, ok := b.Player(target)
	if !ok {
		return nil, nil, ErrUnknownPlayer
	}
	if !t.alive {
		return nil, nil, ErrTargetDead
	}
	return a, t, nil
}

func (m *Match) say(ctx context.Context, room RoomID, msg string) {
	if room == "" {
		return
	}
	if err := m.rooms.Say(ctx, room, msg); err != nil {
		slog.ErrorContext(ctx, "sending room message", "room", room, "error", err)
	}
}

// kill marks p dead and announces it in room and the announcement channel.
func (m *Match) kill(ctx context.Context, p *Player, cause DeathCause, room RoomID) {
	msg := p.SetDead(cause)
	slog.InfoContext(ctx, "player died", "player", p.id, "role", p.role.String(), "cause", int(cause.Kind))
	m.say(ctx, room, msg)
	if room != m.meta.AnnouncementChannel {
		m.say(ctx, m.meta.AnnouncementChannel, msg)
	}
}

func article(name string) string {
	switch name[0] {
	case 'A', 'E', 'I', 'O', 'U', 'a', 'e', 'i', 'o', 'u':
		return "an " + lowerFirst(name)
	default:
		return "a " + lowerFirst(name)
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}
