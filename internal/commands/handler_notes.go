package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/pixil98/go-royale/internal/court"
)

// NoteHandlerFactory writes a note in the actor's memo book.
type NoteHandlerFactory struct {
	messageConfig
	court *court.Court
	pub   Teller
}

func NewNoteHandlerFactory(c *court.Court, pub Teller) *NoteHandlerFactory {
	return &NoteHandlerFactory{court: c, pub: pub}
}

func (f *NoteHandlerFactory) Create() (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		m, err := f.court.Match()
		if err != nil {
			return err
		}
		if err := m.AddNote(cmdCtx.Actor, strings.TrimSpace(stringInput(cmdCtx, "text"))); err != nil {
			return err
		}
		return tellLine(f.pub, cmdCtx.Actor, messageOr(cmdCtx, "You write it down."))
	}, nil
}

// NotesHandlerFactory reads back the actor's memo book.
type NotesHandlerFactory struct {
	noConfig
	court *court.Court
	pub   Teller
}

func NewNotesHandlerFactory(c *court.Court, pub Teller) *NotesHandlerFactory {
	return &NotesHandlerFactory{court: c, pub: pub}
}

func (f *NotesHandlerFactory) Create() (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		m, err := f.court.Match()
		if err != nil {
			return err
		}
		notes, capacity, err := m.Notes(cmdCtx.Actor)
		if err != nil {
			return err
		}
		if len(notes) == 0 {
			return tell(f.pub, cmdCtx.Actor, "Your memo book is empty. %d pages left.", capacity)
		}

		lines := make([]string, 0, len(notes)+1)
		for i, n := range notes {
			lines = append(lines, fmt.Sprintf("%d. [%s] %s", i+1, n.Written, n.Text))
		}
		lines = append(lines, fmt.Sprintf("%d pages left.", capacity-len(notes)))
		return tellLine(f.pub, cmdCtx.Actor, strings.Join(lines, "\n"))
	}, nil
}

// RipHandlerFactory tears a page out of the actor's memo book.
type RipHandlerFactory struct {
	noConfig
	court *court.Court
	pub   Teller
}

func NewRipHandlerFactory(c *court.Court, pub Teller) *RipHandlerFactory {
	return &RipHandlerFactory{court: c, pub: pub}
}

func (f *RipHandlerFactory) Create() (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		m, err := f.court.Match()
		if err != nil {
			return err
		}
		n, _ := numberInput(cmdCtx, "number")
		note, err := m.RipNote(cmdCtx.Actor, n-1)
		if err != nil {
			return err
		}
		return tell(f.pub, cmdCtx.Actor, "You tear out the page reading %q.", note.Text)
	}, nil
}
