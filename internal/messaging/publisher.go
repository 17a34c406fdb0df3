package messaging

import (
	"github.com/pixil98/go-errors"

	"github.com/pixil98/go-royale/internal/game"
)

// PlayerPublisher delivers text to individual players' subjects.
type PlayerPublisher struct {
	bus Bus
}

func NewPlayerPublisher(bus Bus) *PlayerPublisher {
	return &PlayerPublisher{bus: bus}
}

// Tell sends msg to a single player.
func (p *PlayerPublisher) Tell(id game.Identity, msg string) error {
	return p.bus.Publish(PlayerSubject(id), []byte(msg))
}

// Broadcast sends msg to every listed player, attempting all of them.
func (p *PlayerPublisher) Broadcast(ids []game.Identity, msg string) error {
	el := errors.NewErrorList()
	for _, id := range ids {
		el.Add(p.Tell(id, msg))
	}
	return el.Err()
}
