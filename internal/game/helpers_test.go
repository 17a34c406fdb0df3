package game

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/pixil98/go-royale/internal/decision"
)

// fakeRooms records provisioning calls and answers visibility from them.
type fakeRooms struct {
	mu        sync.Mutex
	next      int
	names     map[RoomID]string
	members   map[RoomID]map[Identity]bool
	open      map[RoomID]GrantID
	roles     map[GrantID]map[Identity]bool
	said      map[RoomID][]string
	destroyed []RoomID
}

func newFakeRooms() *fakeRooms {
	return &fakeRooms{
		names:   map[RoomID]string{},
		members: map[RoomID]map[Identity]bool{},
		open:    map[RoomID]GrantID{},
		roles:   map[GrantID]map[Identity]bool{},
		said:    map[RoomID][]string{},
	}
}

func (f *fakeRooms) CreateRoom(_ context.Context, name, _ string) (RoomID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	id := RoomID(fmt.Sprintf("r%d", f.next))
	f.names[id] = name
	f.members[id] = map[Identity]bool{}
	return id, nil
}

func (f *fakeRooms) DestroyRoom(_ context.Context, room RoomID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyed = append(f.destroyed, room)
	return nil
}

func (f *fakeRooms) GrantRoom(_ context.Context, room RoomID, id Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.members[room] == nil {
		f.members[room] = map[Identity]bool{}
	}
	f.members[room][id] = true
	return nil
}

func (f *fakeRooms) RevokeRoom(_ context.Context, room RoomID, id Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.members[room], id)
	return nil
}

func (f *fakeRooms) OpenRoom(_ context.Context, room RoomID, grant GrantID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open[room] = grant
	return nil
}

func (f *fakeRooms) CloseRoom(_ context.Context, room RoomID, _ GrantID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.open, room)
	return nil
}

func (f *fakeRooms) GrantRole(_ context.Context, grant GrantID, id Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.roles[grant] == nil {
		f.roles[grant] = map[Identity]bool{}
	}
	f.roles[grant][id] = true
	return nil
}

func (f *fakeRooms) RevokeRole(_ context.Context, grant GrantID, id Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.roles[grant], id)
	return nil
}

func (f *fakeRooms) CanSee(room RoomID, id Identity) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.members[room][id] {
		return true
	}
	grant, ok := f.open[room]
	return ok && f.roles[grant][id]
}

func (f *fakeRooms) Say(_ context.Context, room RoomID, msg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.said[room] = append(f.said[room], msg)
	return nil
}

func (f *fakeRooms) saidContains(room RoomID, substr string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.said[room] {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

// recordingRunner records every spawned decision without running it.
type recordingRunner struct {
	mu      sync.Mutex
	actions []decision.Action
}

func (r *recordingRunner) Run(_ context.Context, a decision.Action) decision.Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, a)
	return decision.Committed
}

func (r *recordingRunner) find(t *testing.T, name string) decision.Action {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.actions {
		if a.Name == name {
			return a
		}
	}
	t.Fatalf("no decision named %q was spawned", name)
	return decision.Action{}
}

func (r *recordingRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.actions)
}

func choiceIndex(t *testing.T, a decision.Action, label string) int {
	t.Helper()
	for i, c := range a.Choices {
		if c.Label == label {
			return i
		}
	}
	t.Fatalf("decision %q has no choice %q", a.Name, label)
	return -1
}

var testMeta = Metadata{
	Host:                "host",
	MeetingRoom:         "meeting",
	AnnouncementChannel: "announcements",
	PlayerRole:          "player",
}

// With the identity shuffle p1..p6 hold King, Prince, The Double, Sorcerer,
// Knight and Revolutionary.
func identityShuffle([]Role) {}

func newTestMatch(t *testing.T, opts ...MatchOpt) (*Match, *fakeRooms, *recordingRunner) {
	t.Helper()
	rooms := newFakeRooms()
	runner := &recordingRunner{}
	opts = append([]MatchOpt{WithShuffler(identityShuffle)}, opts...)
	m := NewMatch(context.Background(), testMeta, rooms, runner, opts...)
	t.Cleanup(func() { m.End(context.Background()) })
	return m, rooms, runner
}

func startedMatch(t *testing.T, opts ...MatchOpt) (*Match, *fakeRooms, *recordingRunner) {
	t.Helper()
	m, rooms, runner := newTestMatch(t, opts...)
	for i := 1; i <= MaxPlayers; i++ {
		if err := m.Join(Identity(fmt.Sprintf("p%d", i))); err != nil {
			t.Fatalf("joining: %v", err)
		}
	}
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("starting: %v", err)
	}
	return m, rooms, runner
}

func advanceTo(t *testing.T, m *Match, kind PhaseKind) {
	t.Helper()
	for i := 0; m.Phase() != kind; i++ {
		if i > 12 {
			t.Fatalf("never reached %s", kind)
		}
		if err := m.Advance(context.Background()); err != nil {
			t.Fatalf("advancing from %s: %v", m.Phase(), err)
		}
	}
	m.Wait()
}

func kill(t *testing.T, m *Match, ids ...Identity) {
	t.Helper()
	ok := m.WithPlayers(func(players []*Player) {
		for _, p := range players {
			for _, id := range ids {
				if p.ID() == id {
					p.SetDead(DeathCause{Kind: Assassination})
				}
			}
		}
	})
	if !ok {
		t.Fatal("match has no players")
	}
}

func alive(t *testing.T, m *Match, id Identity) bool {
	t.Helper()
	players, ok := m.Players()
	if !ok {
		t.Fatal("match has no players")
	}
	for _, p := range players {
		if p.ID == id {
			return p.Alive
		}
	}
	t.Fatalf("no player %s", id)
	return false
}
