// Package court hosts the single match a server runs at a time.
package court

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pixil98/go-royale/internal/game"
	"github.com/pixil98/go-royale/internal/rooms"
)

const (
	PlayerRole game.GrantID = "player"

	meetingRoomName  = "meeting-room"
	announcementName = "announcements"
	lobbyCategory    = "Kingdom Royale"
)

var (
	ErrNoMatch         = game.NewRuleError("There is no game. Type newgame to host one.")
	ErrMatchInProgress = game.NewRuleError("A game is already running.")
	ErrNotHost         = game.NewRuleError("Only the host can do that.")
)

type Config struct {
	// BlockDuration advances the match automatically. Zero leaves it to the host.
	BlockDuration time.Duration
	ChoiceTimeout time.Duration
	TeardownOnEnd bool
	Kit           []*game.ItemSpec
}

// Court owns the current match and the rooms every match shares.
type Court struct {
	rooms  game.RoomProvisioner
	runner game.DecisionRunner
	cfg    Config

	matchOpts []game.MatchOpt
	now       func() time.Time

	mu            sync.Mutex
	match         *game.Match
	meeting       game.RoomID
	announcements game.RoomID

	lastKind     game.PhaseKind
	lastDay      int
	blockStarted time.Time
}

func NewCourt(provisioner game.RoomProvisioner, runner game.DecisionRunner, cfg Config, opts ...CourtOpt) *Court {
	c := &Court{
		rooms:  provisioner,
		runner: runner,
		cfg:    cfg,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Match returns the current match.
func (c *Court) Match() (*game.Match, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.match == nil {
		return nil, ErrNoMatch
	}
	return c.match, nil
}

// NewGame opens a lobby hosted by host. A finished match is replaced.
func (c *Court) NewGame(ctx context.Context, host game.Identity) (*game.Match, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.match != nil && !c.match.IsEnded() {
		return nil, ErrMatchInProgress
	}
	// A match won since the last tick still holds its grants and rooms.
	if c.match != nil {
		c.finish(ctx)
	}
	if err := c.ensureRooms(ctx); err != nil {
		return nil, err
	}

	opts := []game.MatchOpt{game.WithChoiceTimeout(c.cfg.ChoiceTimeout)}
	if len(c.cfg.Kit) > 0 {
		opts = append(opts, game.WithKit(c.cfg.Kit))
	}
	opts = append(opts, c.matchOpts...)

	meta := game.Metadata{
		Host:                host,
		MeetingRoom:         c.meeting,
		AnnouncementChannel: c.announcements,
		PlayerRole:          PlayerRole,
		TeardownOnEnd:       c.cfg.TeardownOnEnd,
	}
	// The match outlives the command that created it.
	c.match = game.NewMatch(context.WithoutCancel(ctx), meta, c.rooms, c.runner, opts...)
	c.lastKind, c.lastDay = game.PhaseNotStarted, 0

	slog.InfoContext(ctx, "new game", "host", host)
	c.announce(ctx, fmt.Sprintf("%s is hosting a new game. Type join to take part.", host))
	return c.match, nil
}

// StartGame starts the lobby once six players have joined.
func (c *Court) StartGame(ctx context.Context, by game.Identity) error {
	m, err := c.hosted(by)
	if err != nil {
		return err
	}
	return m.Start(ctx)
}

// Advance moves to the next block without waiting for the timer.
func (c *Court) Advance(ctx context.Context, by game.Identity) error {
	m, err := c.hosted(by)
	if err != nil {
		return err
	}
	return m.Advance(ctx)
}

// EndGame stops the current match early.
func (c *Court) EndGame(ctx context.Context, by game.Identity) error {
	m, err := c.hosted(by)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.match != m {
		return ErrNoMatch
	}
	c.finish(ctx)
	c.announce(ctx, fmt.Sprintf("The game was ended by %s.", by))
	return nil
}

// Tick releases finished matches and advances blocks that have run their
// course.
func (c *Court) Tick(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.match
	if m == nil || !m.IsStarted() {
		return nil
	}
	if m.IsEnded() {
		c.finish(ctx)
		return nil
	}
	if c.cfg.BlockDuration <= 0 {
		return nil
	}

	kind := m.Phase()
	day, _ := m.Day()
	if kind != c.lastKind || day != c.lastDay {
		c.lastKind, c.lastDay = kind, day
		c.blockStarted = c.now()
		return nil
	}
	if c.now().Sub(c.blockStarted) < c.cfg.BlockDuration {
		return nil
	}

	slog.DebugContext(ctx, "block elapsed", "phase", kind.String(), "day", day)
	if err := m.Advance(ctx); err != nil && !errors.Is(err, game.ErrGameEnded) {
		return fmt.Errorf("advancing match: %w", err)
	}
	return nil
}

// Start runs until ctx is cancelled and then ends any match still running.
func (c *Court) Start(ctx context.Context) error {
	<-ctx.Done()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.match != nil {
		c.finish(context.WithoutCancel(ctx))
	}
	return nil
}

func (c *Court) hosted(by game.Identity) (*game.Match, error) {
	m, err := c.Match()
	if err != nil {
		return nil, err
	}
	if m.Host() != by {
		return nil, ErrNotHost
	}
	return m, nil
}

// finish requires the lock to be held.
func (c *Court) finish(ctx context.Context) {
	if err := c.match.End(ctx); err != nil {
		slog.ErrorContext(ctx, "ending match", "error", err)
	}
	c.match = nil
}

// ensureRooms requires the lock to be held.
func (c *Court) ensureRooms(ctx context.Context) error {
	if c.meeting != "" {
		return nil
	}

	meeting, err := c.rooms.CreateRoom(ctx, meetingRoomName, lobbyCategory)
	if err != nil {
		return fmt.Errorf("creating meeting room: %w", err)
	}
	announcements, err := c.rooms.CreateRoom(ctx, announcementName, lobbyCategory)
	if err != nil {
		return fmt.Errorf("creating announcements: %w", err)
	}
	if err := c.rooms.OpenRoom(ctx, announcements, rooms.Everyone); err != nil {
		return fmt.Errorf("opening announcements: %w", err)
	}

	c.meeting, c.announcements = meeting, announcements
	return nil
}

// Rooms returns the meeting room and announcement channel, once made.
func (c *Court) Rooms() (meeting, announcements game.RoomID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.meeting, c.announcements
}

func (c *Court) announce(ctx context.Context, msg string) {
	if c.announcements == "" {
		return
	}
	if err := c.rooms.Say(ctx, c.announcements, msg); err != nil {
		slog.WarnContext(ctx, "announcing", "error", err)
	}
}
