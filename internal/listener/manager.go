package listener

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
)

// SessionRunner plays one connection until it ends.
type SessionRunner interface {
	RunSession(ctx context.Context, conn io.ReadWriter, suggested string) error
}

type ConnectionManager struct {
	sessions SessionRunner
	active   atomic.Int64
}

func NewConnectionManager(sessions SessionRunner) *ConnectionManager {
	return &ConnectionManager{
		sessions: sessions,
	}
}

// Active is the number of connections currently being played.
func (m *ConnectionManager) Active() int64 {
	return m.active.Load()
}

// AcceptConnection blocks until the session on conn ends. suggested is a
// name the transport already knows, empty for telnet.
func (m *ConnectionManager) AcceptConnection(ctx context.Context, conn io.ReadWriter, suggested string) {
	m.active.Add(1)
	defer m.active.Add(-1)

	if err := m.sessions.RunSession(ctx, conn, suggested); err != nil {
		slog.WarnContext(ctx, "player session", "error", err)
	}
}
