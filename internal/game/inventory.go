package game

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pixil98/go-errors"
)

const (
	ItemFood     = "Food bar"
	ItemKnife    = "Knife"
	ItemTablet   = "Tablet"
	ItemPen      = "Ball-point pen"
	ItemMemoBook = "Memo book"
	ItemWatch    = "Watch"
)

// MemoBookPages is the number of pages in a fresh memo book.
const MemoBookPages = 128

// ItemSpec describes one entry of the starting kit.
type ItemSpec struct {
	Name     string   `json:"name"`
	Aliases  []string `json:"aliases,omitempty"`
	Count    int      `json:"count"`
	Giftable bool     `json:"giftable"`
	Edible   bool     `json:"edible,omitempty"`
}

func (s *ItemSpec) Validate() error {
	el := errors.NewErrorList()

	if s.Name == "" {
		el.Add(fmt.Errorf("name is required"))
	}
	if s.Count < 0 {
		el.Add(fmt.Errorf("count must not be negative"))
	}

	return el.Err()
}

// Matches reports whether the player-typed word refers to this item.
func (s *ItemSpec) Matches(word string) bool {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return false
	}
	if strings.ToLower(s.Name) == word {
		return true
	}
	return slices.ContainsFunc(s.Aliases, func(a string) bool {
		return strings.ToLower(a) == word
	})
}

// DefaultKit is the starting kit handed to every player.
func DefaultKit() []*ItemSpec {
	return []*ItemSpec{
		{Name: ItemFood, Aliases: []string{"food", "bar"}, Count: 7, Giftable: true, Edible: true},
		{Name: ItemWatch, Aliases: []string{"watch"}, Count: 1, Giftable: true},
		{Name: ItemKnife, Aliases: []string{"knife"}, Count: 1, Giftable: true},
		{Name: ItemTablet, Aliases: []string{"tablet"}, Count: 1},
		{Name: ItemPen, Aliases: []string{"pen"}, Count: 1},
		{Name: ItemMemoBook, Aliases: []string{"memo", "book"}, Count: 1},
	}
}

// Items is a multiset of named items.
type Items struct {
	order  []string
	counts map[string]int
}

func NewItems(kit []*ItemSpec) *Items {
	i := &Items{counts: map[string]int{}}
	for _, s := range kit {
		i.Give(s.Name, s.Count)
	}
	return i
}

func (i *Items) Count(name string) int {
	return i.counts[name]
}

// Take removes one of the named item, reporting false if there was none.
func (i *Items) Take(name string) bool {
	if i.counts[name] <= 0 {
		return false
	}
	i.counts[name]--
	return true
}

func (i *Items) Give(name string, n int) {
	if n <= 0 {
		return
	}
	if _, ok := i.counts[name]; !ok {
		i.order = append(i.order, name)
	}
	i.counts[name] += n
}

// ItemCount is one line of an inventory listing.
type ItemCount struct {
	Name  string
	Count int
}

// List returns the held items in the order they were first received.
func (i *Items) List() []ItemCount {
	var out []ItemCount
	for _, name := range i.order {
		if c := i.counts[name]; c > 0 {
			out = append(out, ItemCount{Name: name, Count: c})
		}
	}
	return out
}

type Note struct {
	Written string
	Text    string
}

// MemoBook is a bounded note log. Ripped pages never come back.
type MemoBook struct {
	notes  []Note
	ripped int
}

func (m *MemoBook) Capacity() int {
	return MemoBookPages - m.ripped
}

func (m *MemoBook) Len() int {
	return len(m.notes)
}

func (m *MemoBook) AddNote(written, text string) error {
	if len(m.notes) >= m.Capacity() {
		return ErrMemoBookFull
	}
	m.notes = append(m.notes, Note{Written: written, Text: text})
	return nil
}

func (m *MemoBook) Note(i int) (Note, bool) {
	if i < 0 || i >= len(m.notes) {
		return Note{}, false
	}
	return m.notes[i], true
}

// RipNote tears out the page holding note i.
func (m *MemoBook) RipNote(i int) (Note, error) {
	n, ok := m.Note(i)
	if !ok {
		return Note{}, ErrNoSuchNote
	}
	m.notes = slices.Delete(m.notes, i, i+1)
	m.ripped++
	return n, nil
}

func (m *MemoBook) Notes() []Note {
	return slices.Clone(m.notes)
}
