package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/pixil98/go-royale/internal/game"
	"github.com/pixil98/go-royale/internal/messaging"
	"github.com/pixil98/go-royale/internal/rooms"
)

const loginTries = 3

var namePattern = regexp.MustCompile(`^[a-z0-9-]{2,16}$`)

// Granter hands out role grants that decide which rooms a session can see.
type Granter interface {
	GrantRole(ctx context.Context, grant game.GrantID, who game.Identity) error
	RevokeRole(ctx context.Context, grant game.GrantID, who game.Identity) error
}

// Subscriber delivers messages published to a subject.
type Subscriber interface {
	Subscribe(subject string, handler func(data []byte)) (func(), error)
}

type Manager struct {
	handler Executor
	bus     Subscriber
	grants  Granter

	mu     sync.Mutex
	online map[game.Identity]*Session
}

func NewManager(handler Executor, bus Subscriber, grants Granter) *Manager {
	return &Manager{
		handler: handler,
		bus:     bus,
		grants:  grants,
		online:  map[game.Identity]*Session{},
	}
}

func (m *Manager) Start(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

// Online reports whether a player with this name is connected.
func (m *Manager) Online(id game.Identity) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.online[id]
	return ok
}

// RunSession logs the connection in and plays it until it ends. suggested is
// used as the name when it is valid and free, as with an ssh user name.
func (m *Manager) RunSession(ctx context.Context, conn io.ReadWriter, suggested string) error {
	in := bufio.NewReader(conn)

	id, err := m.login(conn, in, suggested)
	if err != nil {
		return fmt.Errorf("logging in: %w", err)
	}

	s := newSession(id, conn, in, m.handler)
	if !m.register(s) {
		_, _ = io.WriteString(conn, "Someone just took that name.\n")
		return fmt.Errorf("player %q is already online", id)
	}
	defer m.unregister(id)

	unsub, err := m.bus.Subscribe(messaging.PlayerSubject(id), s.deliver)
	if err != nil {
		return fmt.Errorf("subscribing to player messages: %w", err)
	}
	defer unsub()

	if err := m.grants.GrantRole(ctx, rooms.Everyone, id); err != nil {
		return fmt.Errorf("granting %s: %w", rooms.Everyone, err)
	}
	defer func() {
		if err := m.grants.RevokeRole(context.WithoutCancel(ctx), rooms.Everyone, id); err != nil {
			slog.WarnContext(ctx, "revoking grant", "player", id, "error", err)
		}
	}()

	slog.InfoContext(ctx, "player connected", "player", id)
	defer slog.InfoContext(ctx, "player disconnected", "player", id)

	if _, err := fmt.Fprintf(conn, "Welcome, %s. Type help for a list of commands.\n", id); err != nil {
		return err
	}

	return s.Play(ctx)
}

func (m *Manager) login(w io.Writer, in *bufio.Reader, suggested string) (game.Identity, error) {
	suggested = strings.ToLower(strings.TrimSpace(suggested))
	if ok, _ := m.validateName(suggested); ok {
		return game.Identity(suggested), nil
	}

	name, err := Prompt(in, w, "By what name do you wish to be known? ",
		WithValidator(func(s string) (bool, string) {
			return m.validateName(strings.ToLower(s))
		}),
		WithMaxTries(loginTries),
	)
	if err != nil {
		return "", err
	}
	return game.Identity(strings.ToLower(name)), nil
}

func (m *Manager) validateName(name string) (bool, string) {
	if !namePattern.MatchString(name) {
		return false, "Names are 2 to 16 letters, digits or dashes.\n"
	}
	if m.Online(game.Identity(name)) {
		return false, "Someone by that name is already here.\n"
	}
	return true, ""
}

func (m *Manager) register(s *Session) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.online[s.id]; ok {
		return false
	}
	m.online[s.id] = s
	return true
}

func (m *Manager) unregister(id game.Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.online, id)
}
