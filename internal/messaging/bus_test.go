package messaging

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/pixil98/go-royale/internal/game"
)

// memBus delivers publishes synchronously to current subscribers.
type memBus struct {
	mu        sync.Mutex
	next      int
	subs      map[string]map[int]func([]byte)
	published map[string][]string
	failOn    string
}

func newMemBus() *memBus {
	return &memBus{
		subs:      map[string]map[int]func([]byte){},
		published: map[string][]string{},
	}
}

func (b *memBus) Publish(subject string, data []byte) error {
	b.mu.Lock()
	if b.failOn != "" && strings.HasPrefix(subject, b.failOn) {
		b.mu.Unlock()
		return errors.New("publish failed")
	}
	b.published[subject] = append(b.published[subject], string(data))
	var handlers []func([]byte)
	for _, h := range b.subs[subject] {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(data)
	}
	return nil
}

func (b *memBus) Subscribe(subject string, handler func([]byte)) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[subject] == nil {
		b.subs[subject] = map[int]func([]byte){}
	}
	id := b.next
	b.next++
	b.subs[subject][id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[subject], id)
	}, nil
}

func (b *memBus) subscribers(subject string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[subject])
}

type recordingSayer struct {
	mu   sync.Mutex
	said map[game.RoomID][]string
	err  error
}

func (s *recordingSayer) Say(_ context.Context, room game.RoomID, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if s.said == nil {
		s.said = map[game.RoomID][]string{}
	}
	s.said[room] = append(s.said[room], msg)
	return nil
}
