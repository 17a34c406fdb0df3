package session

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/pixil98/go-royale/internal/commands"
	"github.com/pixil98/go-royale/internal/game"
	"github.com/pixil98/go-testutil"
)

type fakeConn struct {
	in  io.Reader
	mu  sync.Mutex
	out bytes.Buffer
}

func newFakeConn(input string) *fakeConn {
	return &fakeConn{in: strings.NewReader(input)}
}

func (c *fakeConn) Read(p []byte) (int, error) {
	return c.in.Read(p)
}

func (c *fakeConn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.out.Write(p)
}

func (c *fakeConn) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.out.String()
}

type recordingExecutor struct {
	mu   sync.Mutex
	cmds []string
}

func (e *recordingExecutor) Exec(_ context.Context, sess commands.Session, cmdName string, rawArgs ...string) error {
	e.mu.Lock()
	e.cmds = append(e.cmds, strings.Join(append([]string{cmdName}, rawArgs...), " "))
	e.mu.Unlock()

	switch cmdName {
	case "quit":
		sess.Quit()
	case "tune":
		sess.SetChannel(game.RoomID(rawArgs[0]))
	case "bad":
		return commands.NewUserError("That didn't work.")
	case "broken":
		return errors.New("disk on fire")
	}
	return nil
}

func (e *recordingExecutor) commands() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.cmds)
}

func TestPrompt(t *testing.T) {
	notEmpty := func(s string) (bool, string) {
		if s == "" {
			return false, "try again\n"
		}
		return true, ""
	}

	tests := map[string]struct {
		input   string
		opts    []promptOption
		exp     string
		expOut  string
		wantErr string
	}{
		"accepts first line": {
			input:  "alice\n",
			exp:    "alice",
			expOut: "name? ",
		},
		"trims whitespace": {
			input:  "  bob \r\n",
			exp:    "bob",
			expOut: "name? ",
		},
		"retries until valid": {
			input:  "\n\ncarol\n",
			opts:   []promptOption{WithValidator(notEmpty)},
			exp:    "carol",
			expOut: "name? try again\nname? try again\nname? ",
		},
		"gives up after max tries": {
			input:   "\n\n\n",
			opts:    []promptOption{WithValidator(notEmpty), WithMaxTries(2)},
			wantErr: "too many tries",
		},
		"last line without newline": {
			input:  "dave",
			exp:    "dave",
			expOut: "name? ",
		},
		"eof": {
			input:   "",
			wantErr: "EOF",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := Prompt(bufio.NewReader(strings.NewReader(tt.input)), &out, "name? ", tt.opts...)
			if tt.wantErr != "" {
				testutil.AssertErrorContains(t, err, tt.wantErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "input", got, tt.exp)
			testutil.AssertEqual(t, "output", out.String(), tt.expOut)
		})
	}
}

func TestSession_Play(t *testing.T) {
	tests := map[string]struct {
		input   string
		expCmds []string
		expOut  []string
		wantErr string
	}{
		"quit ends the session": {
			input:   "who\nquit\nwho\n",
			expCmds: []string{"who", "quit"},
			expOut:  []string{"Goodbye!"},
		},
		"blank lines are skipped": {
			input:   "\n   \nquit\n",
			expCmds: []string{"quit"},
		},
		"arguments are split": {
			input:   "say hello   there\nquit\n",
			expCmds: []string{"say hello there", "quit"},
		},
		"user errors are shown": {
			input:   "bad\nquit\n",
			expCmds: []string{"bad", "quit"},
			expOut:  []string{"That didn't work.\n"},
		},
		"channel shows in prompt": {
			input:   "tune meeting-room\nquit\n",
			expCmds: []string{"tune meeting-room", "quit"},
			expOut:  []string{"[meeting-room] > "},
		},
		"other errors end the session": {
			input:   "broken\nquit\n",
			expCmds: []string{"broken"},
			wantErr: "disk on fire",
		},
		"connection lost": {
			input:   "who\n",
			expCmds: []string{"who"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			conn := newFakeConn(tt.input)
			exec := &recordingExecutor{}
			s := newSession("alice", conn, bufio.NewReader(conn), exec)

			err := s.Play(context.Background())
			if tt.wantErr != "" {
				testutil.AssertErrorContains(t, err, tt.wantErr)
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got := exec.commands(); !slices.Equal(got, tt.expCmds) {
				t.Errorf("commands = %v, want %v", got, tt.expCmds)
			}
			for _, exp := range tt.expOut {
				if !strings.Contains(conn.String(), exp) {
					t.Errorf("output %q does not contain %q", conn.String(), exp)
				}
			}
		})
	}
}

func TestSession_PlayCancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	conn := &fakeConn{in: pr}
	s := newSession("alice", conn, bufio.NewReader(conn), &recordingExecutor{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Play(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if !strings.Contains(conn.String(), "shutting down") {
		t.Errorf("expected shutdown notice, got %q", conn.String())
	}
}

func TestSession_Deliver(t *testing.T) {
	s := newSession("alice", io.Discard, bufio.NewReader(strings.NewReader("")), &recordingExecutor{})

	data := []byte("hello")
	s.deliver(data)
	data[0] = 'j'

	testutil.AssertEqual(t, "message", string(<-s.msgs), "hello")

	for range msgBuffer + 5 {
		s.deliver([]byte("spam"))
	}
	testutil.AssertEqual(t, "backlog", len(s.msgs), msgBuffer)
}
