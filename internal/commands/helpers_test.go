package commands

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/pixil98/go-royale/internal/court"
	"github.com/pixil98/go-royale/internal/decision"
	"github.com/pixil98/go-royale/internal/game"
	"github.com/pixil98/go-royale/internal/rooms"
	"github.com/pixil98/go-royale/internal/storage"
)

type memStore[T storage.ValidatingSpec] map[storage.Identifier]T

func (s memStore[T]) Get(id string) T {
	return s[storage.Identifier(id)]
}

func (s memStore[T]) GetAll() map[storage.Identifier]T {
	return map[storage.Identifier]T(s)
}

type fakeSession struct {
	id      game.Identity
	channel game.RoomID
	quit    bool
}

func (s *fakeSession) Identity() game.Identity     { return s.id }
func (s *fakeSession) Channel() game.RoomID        { return s.channel }
func (s *fakeSession) SetChannel(room game.RoomID) { s.channel = room }
func (s *fakeSession) Quit()                       { s.quit = true }

type recordingTeller struct {
	mu   sync.Mutex
	told map[game.Identity][]string
}

func (r *recordingTeller) Tell(id game.Identity, msg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.told == nil {
		r.told = map[game.Identity][]string{}
	}
	r.told[id] = append(r.told[id], msg)
	return nil
}

func (r *recordingTeller) last(id game.Identity) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs := r.told[id]
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1]
}

func (r *recordingTeller) heard(id game.Identity, substr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, msg := range r.told[id] {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

type recordingChooser struct {
	decider game.Identity
	handle  decision.Handle
	n       int
	err     error
}

func (c *recordingChooser) Choose(decider game.Identity, h decision.Handle, n int) error {
	if c.err != nil {
		return c.err
	}
	c.decider, c.handle, c.n = decider, h, n
	return nil
}

type abandoningRunner struct{}

func (abandoningRunner) Run(context.Context, decision.Action) decision.Outcome {
	return decision.Abandoned
}

// attackerWins makes every first roll of a pair a 20 and every second a 1.
func attackerWins() game.Dice {
	var mu sync.Mutex
	n := 0
	return func() int {
		mu.Lock()
		defer mu.Unlock()
		n++
		if n%2 == 1 {
			return 20
		}
		return 1
	}
}

func testCommands() memStore[*Command] {
	str := func(name string, required, rest bool) InputSpec {
		return InputSpec{Name: name, Type: InputTypeString, Required: required, Rest: rest}
	}
	num := func(name string, required bool) InputSpec {
		return InputSpec{Name: name, Type: InputTypeNumber, Required: required}
	}

	return memStore[*Command]{
		"newgame":    {Handler: "newgame", Category: "lobby", Description: "Host a new game."},
		"endgame":    {Handler: "endgame", Category: "lobby"},
		"join":       {Handler: "join", Category: "lobby", Description: "Join the game."},
		"leave":      {Handler: "leave", Category: "lobby"},
		"start":      {Handler: "start", Category: "lobby"},
		"next":       {Handler: "next", Category: "lobby"},
		"who":        {Handler: "who", Category: "lobby"},
		"substitute": {Handler: "substitute", Category: "game"},
		"stab":       {Handler: "stab", Category: "game", Inputs: []InputSpec{{Name: "player", Type: InputTypeString, Required: true, Missing: "Stab whom?"}}},
		"give":       {Handler: "give", Category: "game", Inputs: []InputSpec{str("player", true, false), str("item", true, true)}},
		"bag":        {Handler: "bag", Category: "game", Aliases: []string{"inventory"}},
		"info":       {Handler: "info", Category: "game"},
		"logs":       {Handler: "logs", Category: "game", Inputs: []InputSpec{num("day", false)}},
		"roles":      {Handler: "roles", Category: "game", Inputs: []InputSpec{str("role", false, true)}},
		"note":       {Handler: "note", Category: "notes", Inputs: []InputSpec{str("text", true, true)}},
		"notes":      {Handler: "notes", Category: "notes"},
		"rip":        {Handler: "rip", Category: "notes", Inputs: []InputSpec{num("number", true)}},
		"rooms":      {Handler: "rooms", Category: "rooms"},
		"tune":       {Handler: "tune", Category: "rooms", Inputs: []InputSpec{str("room", true, false)}},
		"say":        {Handler: "say", Category: "rooms", Inputs: []InputSpec{str("text", true, true)}},
		"choose":     {Handler: "choose", Category: "rooms", Inputs: []InputSpec{str("handle", true, false), num("number", true)}},
		"help":       {Handler: "help", Description: "Show help.", Inputs: []InputSpec{str("command", false, false)}},
		"quit":       {Handler: "quit"},
	}
}

var testSheets = memStore[*game.RoleSheet]{
	"king":   {Role: "king", Summary: "Rules the castle.", Goal: "Outlive the Prince and the Revolutionary."},
	"knight": {Role: "knight", Summary: "Sworn to the Prince.", Goal: "See the King and the Double dead.", Abilities: []string{"Carries out the murder."}},
}

type testEnv struct {
	court   *court.Court
	rooms   *rooms.Provisioner
	teller  *recordingTeller
	chooser *recordingChooser
	handler *Handler
	session map[game.Identity]*fakeSession
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	teller := &recordingTeller{}
	r := rooms.NewProvisioner(teller)
	c := court.NewCourt(r, abandoningRunner{}, court.Config{}, court.WithMatchOpts(
		game.WithShuffler(func([]game.Role) {}),
		game.WithDice(attackerWins()),
	))
	chooser := &recordingChooser{}

	store := testCommands()
	h := NewHandler(store)
	factories := map[string]HandlerFactory{
		"newgame":    NewNewGameHandlerFactory(c, teller),
		"endgame":    NewEndGameHandlerFactory(c),
		"join":       NewJoinHandlerFactory(c, r),
		"leave":      NewLeaveHandlerFactory(c, r),
		"start":      NewStartHandlerFactory(c),
		"next":       NewNextHandlerFactory(c),
		"who":        NewWhoHandlerFactory(c, teller),
		"substitute": NewSubstituteHandlerFactory(c),
		"stab":       NewStabHandlerFactory(c, teller),
		"give":       NewGiveHandlerFactory(c),
		"bag":        NewBagHandlerFactory(c, teller),
		"info":       NewInfoHandlerFactory(c, teller),
		"logs":       NewLogsHandlerFactory(c, teller),
		"roles":      NewRolesHandlerFactory(testSheets, teller),
		"note":       NewNoteHandlerFactory(c, teller),
		"notes":      NewNotesHandlerFactory(c, teller),
		"rip":        NewRipHandlerFactory(c, teller),
		"rooms":      NewRoomsHandlerFactory(r, teller),
		"tune":       NewTuneHandlerFactory(r, teller),
		"say":        NewSayHandlerFactory(r),
		"choose":     NewChooseHandlerFactory(chooser, teller),
		"help":       NewHelpHandlerFactory(store, teller),
	}
	for name, f := range factories {
		if err := h.RegisterFactory(name, f); err != nil {
			t.Fatalf("registering %s: %v", name, err)
		}
	}
	if err := h.CompileAll(); err != nil {
		t.Fatalf("compiling: %v", err)
	}

	env := &testEnv{
		court:   c,
		rooms:   r,
		teller:  teller,
		chooser: chooser,
		handler: h,
		session: map[game.Identity]*fakeSession{},
	}
	for _, id := range []game.Identity{"host", "p1", "p2", "p3", "p4", "p5", "p6"} {
		env.session[id] = &fakeSession{id: id}
		_ = r.GrantRole(context.Background(), rooms.Everyone, id)
	}
	t.Cleanup(func() {
		if m, err := c.Match(); err == nil {
			_ = m.End(context.Background())
		}
	})
	return env
}

func (e *testEnv) exec(id game.Identity, line string) error {
	fields := strings.Fields(line)
	return e.handler.Exec(context.Background(), e.session[id], fields[0], fields[1:]...)
}

func (e *testEnv) mustExec(t *testing.T, id game.Identity, line string) {
	t.Helper()
	if err := e.exec(id, line); err != nil {
		t.Fatalf("%s: %q: %v", id, line, err)
	}
}

// started runs a full lobby into block A of day 1.
func (e *testEnv) started(t *testing.T) {
	t.Helper()
	e.mustExec(t, "host", "newgame")
	for i := 1; i <= game.MaxPlayers; i++ {
		e.mustExec(t, game.Identity(fmt.Sprintf("p%d", i)), "join")
	}
	e.mustExec(t, "host", "start")
}
