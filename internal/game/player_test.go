package game

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pixil98/go-testutil"
)

func TestPlayer_SetDead(t *testing.T) {
	tests := map[string]struct {
		cause DeathCause
		exp   string
	}{
		"sorcery":       {cause: DeathCause{Kind: Sorcery}, exp: "alice was burnt to a crisp using sorcery."},
		"beheading":     {cause: DeathCause{Kind: Beheading}, exp: "alice was beheaded."},
		"assassination": {cause: DeathCause{Kind: Assassination}, exp: "alice was assassinated."},
		"starvation":    {cause: DeathCause{Kind: Starvation}, exp: "alice became a mummy due to starvation."},
		"stab":          {cause: DeathCause{Kind: Stabbing, By: "bob"}, exp: "alice was stabbed by bob."},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			p := NewPlayer("alice", Knight, "r1", "blue", DefaultKit())
			testutil.AssertEqual(t, "announcement", p.SetDead(tt.cause), tt.exp)
			testutil.AssertEqual(t, "alive", p.IsAlive(), false)
		})
	}
}

func TestPlayer_SetDeadTwicePanics(t *testing.T) {
	p := NewPlayer("alice", Knight, "r1", "blue", nil)
	p.SetDead(DeathCause{Kind: Starvation})

	defer func() {
		if recover() == nil {
			t.Error("expected panic killing a dead player")
		}
	}()
	p.SetDead(DeathCause{Kind: Starvation})
}

func TestPlayer_SecretMeetings(t *testing.T) {
	p := NewPlayer("alice", Prince, "r1", "blue", nil)

	_, ok := p.SecretMeetingsForDay(1)
	testutil.AssertEqual(t, "empty day 1", ok, false)

	p.AddSecretMeeting(2, "bob", "s1")
	p.AddSecretMeeting(2, "carol", "s2")

	slots, ok := p.SecretMeetingsForDay(2)
	testutil.AssertEqual(t, "day 2 ok", ok, true)
	testutil.AssertEqual(t, "slot 0", slots[0].Partner, Identity("bob"))
	testutil.AssertEqual(t, "slot 1", slots[1].Room, RoomID("s2"))

	slots, ok = p.SecretMeetingsForDay(1)
	testutil.AssertEqual(t, "day 1 ok", ok, true)
	testutil.AssertEqual(t, "day 1 empty", slots[0] == nil && slots[1] == nil, true)

	_, ok = p.SecretMeetingsForDay(3)
	testutil.AssertEqual(t, "day 3 ok", ok, false)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on third meeting")
		}
	}()
	p.AddSecretMeeting(2, "dave", "s3")
}

func TestItems(t *testing.T) {
	items := NewItems(DefaultKit())

	testutil.AssertEqual(t, "food", items.Count(ItemFood), 7)
	testutil.AssertEqual(t, "knife", items.Count(ItemKnife), 1)
	testutil.AssertEqual(t, "take knife", items.Take(ItemKnife), true)
	testutil.AssertEqual(t, "take knife again", items.Take(ItemKnife), false)
	testutil.AssertEqual(t, "knife", items.Count(ItemKnife), 0)

	items.Give(ItemKnife, 2)
	testutil.AssertEqual(t, "knife after give", items.Count(ItemKnife), 2)

	list := items.List()
	testutil.AssertEqual(t, "first listed", list[0].Name, ItemFood)
	testutil.AssertEqual(t, "listed", len(list), 6)
}

func TestItemSpec_Matches(t *testing.T) {
	tests := map[string]struct {
		word string
		exp  bool
	}{
		"name":         {word: "Food bar", exp: true},
		"alias":        {word: "food", exp: true},
		"mixed case":   {word: "FOOD", exp: true},
		"other item":   {word: "knife", exp: false},
		"empty":        {word: " ", exp: false},
		"partial name": {word: "foo", exp: false},
	}

	spec := DefaultKit()[0]
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "matches", spec.Matches(tt.word), tt.exp)
		})
	}
}

func TestItemSpec_Validate(t *testing.T) {
	tests := map[string]struct {
		spec   ItemSpec
		expErr string
	}{
		"valid":          {spec: ItemSpec{Name: "Rope", Count: 1}},
		"missing name":   {spec: ItemSpec{Count: 1}, expErr: "name is required"},
		"negative count": {spec: ItemSpec{Name: "Rope", Count: -1}, expErr: "count must not be negative"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.expErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			testutil.AssertErrorContains(t, err, tt.expErr)
		})
	}
}

func TestMemoBook(t *testing.T) {
	m := &MemoBook{}
	for i := 0; i < MemoBookPages; i++ {
		if err := m.AddNote("Day 1", fmt.Sprintf("note %d", i)); err != nil {
			t.Fatalf("note %d: %v", i, err)
		}
	}
	testutil.AssertEqual(t, "full", m.AddNote("Day 1", "one more"), error(ErrMemoBookFull), cmpopts.EquateErrors())

	n, err := m.RipNote(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "ripped", n.Text, "note 0")
	testutil.AssertEqual(t, "capacity", m.Capacity(), MemoBookPages-1)

	// The page is gone for good, so the book is still full.
	testutil.AssertEqual(t, "still full", m.AddNote("Day 1", "again"), error(ErrMemoBookFull), cmpopts.EquateErrors())

	_, err = m.RipNote(500)
	testutil.AssertEqual(t, "no such note", err, error(ErrNoSuchNote), cmpopts.EquateErrors())

	first, ok := m.Note(0)
	testutil.AssertEqual(t, "first ok", ok, true)
	testutil.AssertEqual(t, "first", first.Text, "note 1")
}
