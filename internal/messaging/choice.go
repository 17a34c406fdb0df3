package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/pixil98/go-royale/internal/decision"
	"github.com/pixil98/go-royale/internal/display"
	"github.com/pixil98/go-royale/internal/game"
)

const ballotBuffer = 16

var choiceTemplate = display.MustParse("choices", `{{ .Prompt }}
{{- range $i, $c := .Choices }}
  {{ add1 $i }}. {{ $c.Label }}
{{- end }}
Reply with: choose {{ .Handle }} <number>`)

// RoomSayer posts text into a room.
type RoomSayer interface {
	Say(ctx context.Context, room game.RoomID, msg string) error
}

type choiceMsg struct {
	Decider string `json:"decider"`
	Index   int    `json:"index"`
}

// ChoiceBroker presents decisions as numbered lists and collects the answers
// players send over the bus.
type ChoiceBroker struct {
	bus   Bus
	rooms RoomSayer

	mu      sync.Mutex
	ballots map[decision.Handle]*ballot
}

func NewChoiceBroker(bus Bus, rooms RoomSayer) *ChoiceBroker {
	return &ChoiceBroker{
		bus:     bus,
		rooms:   rooms,
		ballots: map[decision.Handle]*ballot{},
	}
}

// ballot buffers signals from the moment choices are shown.
type ballot struct {
	signals chan decision.Signal
	unsub   func()

	mu       sync.Mutex
	closed   bool
	deciders map[string]bool
}

func (b *ballot) deliver(data []byte) {
	var msg choiceMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		slog.Warn("dropping malformed choice", "error", err)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	if b.deciders != nil && !b.deciders[msg.Decider] {
		return
	}
	select {
	case b.signals <- decision.Signal{Decider: msg.Decider, Index: msg.Index}:
	default:
		slog.Warn("choice buffer full, dropping signal", "decider", msg.Decider)
	}
}

func (b *ballot) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}

func newHandle() decision.Handle {
	return decision.Handle(strings.SplitN(uuid.NewString(), "-", 2)[0])
}

func (c *ChoiceBroker) Present(ctx context.Context, room string, prompt string, choices []decision.Choice) (decision.Handle, error) {
	h := newHandle()
	b := &ballot{signals: make(chan decision.Signal, ballotBuffer)}

	unsub, err := c.bus.Subscribe(ChoiceSubject(h), b.deliver)
	if err != nil {
		return "", fmt.Errorf("subscribing to choices: %w", err)
	}
	b.unsub = unsub

	c.mu.Lock()
	c.ballots[h] = b
	c.mu.Unlock()

	text, err := display.Render(choiceTemplate, struct {
		Prompt  string
		Choices []decision.Choice
		Handle  decision.Handle
	}{prompt, choices, h})
	if err == nil {
		err = c.rooms.Say(ctx, game.RoomID(room), text)
	}
	if err != nil {
		c.release(h)
		return "", fmt.Errorf("presenting choices: %w", err)
	}

	return h, nil
}

func (c *ChoiceBroker) Listen(_ context.Context, h decision.Handle, deciders []string) (<-chan decision.Signal, func(), error) {
	c.mu.Lock()
	b, ok := c.ballots[h]
	c.mu.Unlock()
	if !ok {
		return nil, nil, fmt.Errorf("unknown choice handle %q", h)
	}

	b.mu.Lock()
	b.deciders = make(map[string]bool, len(deciders))
	for _, d := range deciders {
		b.deciders[d] = true
	}
	b.mu.Unlock()

	return b.signals, func() { c.release(h) }, nil
}

// Choose publishes a player's pick. n counts from one, as shown.
func (c *ChoiceBroker) Choose(decider game.Identity, h decision.Handle, n int) error {
	c.mu.Lock()
	_, ok := c.ballots[h]
	c.mu.Unlock()
	if !ok {
		return game.NewRuleError(fmt.Sprintf("There is nothing waiting on %q.", h))
	}

	data, err := json.Marshal(choiceMsg{Decider: string(decider), Index: n - 1})
	if err != nil {
		return fmt.Errorf("marshalling choice: %w", err)
	}
	return c.bus.Publish(ChoiceSubject(h), data)
}

func (c *ChoiceBroker) release(h decision.Handle) {
	c.mu.Lock()
	b, ok := c.ballots[h]
	delete(c.ballots, h)
	c.mu.Unlock()
	if !ok {
		return
	}
	b.close()
	if b.unsub != nil {
		b.unsub()
	}
}
