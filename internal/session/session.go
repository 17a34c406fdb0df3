// Package session runs one connected player: log in under a name, then read
// commands and show everything published to that player.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/pixil98/go-royale/internal/commands"
	"github.com/pixil98/go-royale/internal/game"
)

const msgBuffer = 64

// Executor runs a typed command for a session.
type Executor interface {
	Exec(ctx context.Context, sess commands.Session, cmdName string, rawArgs ...string) error
}

type Session struct {
	id      game.Identity
	conn    io.Writer
	in      *bufio.Reader
	handler Executor

	msgs chan []byte

	mu      sync.Mutex
	channel game.RoomID
	quit    bool
}

func newSession(id game.Identity, conn io.Writer, in *bufio.Reader, handler Executor) *Session {
	return &Session{
		id:      id,
		conn:    conn,
		in:      in,
		handler: handler,
		msgs:    make(chan []byte, msgBuffer),
	}
}

func (s *Session) Identity() game.Identity {
	return s.id
}

func (s *Session) Channel() game.RoomID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channel
}

func (s *Session) SetChannel(room game.RoomID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channel = room
}

func (s *Session) Quit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quit = true
}

func (s *Session) quitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quit
}

// deliver queues a published message for display.
func (s *Session) deliver(data []byte) {
	msg := make([]byte, len(data))
	copy(msg, data)
	select {
	case s.msgs <- msg:
	default:
		slog.Warn("session backlog full, dropping message", "player", s.id)
	}
}

// Play reads commands until the player quits, the connection drops or ctx
// is cancelled.
func (s *Session) Play(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)

	inputChan := make(chan string)
	inputErrChan := make(chan error, 1)
	go func() {
		defer close(inputChan)
		scanner := bufio.NewScanner(s.in)
		for scanner.Scan() {
			select {
			case inputChan <- scanner.Text():
			case <-done:
				return
			}
		}
		inputErrChan <- scanner.Err()
	}()

	if err := s.prompt(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			_ = s.writeLine("\nThe server is shutting down.")
			return ctx.Err()

		case msg := <-s.msgs:
			if err := s.writeLine("\n" + string(msg)); err != nil {
				return err
			}
			if err := s.prompt(); err != nil {
				return err
			}

		case line, ok := <-inputChan:
			if !ok {
				// Connection lost.
				select {
				case err := <-inputErrChan:
					return err
				default:
					return nil
				}
			}

			line = strings.TrimSpace(line)
			if line == "" {
				if err := s.prompt(); err != nil {
					return err
				}
				continue
			}

			parts := strings.Fields(line)
			err := s.handler.Exec(ctx, s, parts[0], parts[1:]...)
			if err != nil {
				var userErr *commands.UserError
				if !errors.As(err, &userErr) {
					return fmt.Errorf("command execution failed: %w", err)
				}
				if err := s.writeLine(userErr.Message); err != nil {
					return err
				}
			}

			if s.quitting() {
				_ = s.writeLine("Goodbye!")
				return nil
			}

			if err := s.prompt(); err != nil {
				return err
			}
		}
	}
}

func (s *Session) prompt() error {
	prompt := "> "
	if ch := s.Channel(); ch != "" {
		prompt = fmt.Sprintf("[%s] > ", ch)
	}
	_, err := io.WriteString(s.conn, prompt)
	return err
}

func (s *Session) writeLine(msg string) error {
	_, err := io.WriteString(s.conn, msg+"\n")
	return err
}
