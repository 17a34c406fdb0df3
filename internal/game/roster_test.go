package game

import (
	"fmt"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pixil98/go-testutil"
)

func TestRoster_Join(t *testing.T) {
	tests := map[string]struct {
		joined  int
		id      Identity
		wantErr error
	}{
		"first player":   {joined: 0, id: "p1"},
		"sixth player":   {joined: 5, id: "p6"},
		"seventh player": {joined: 6, id: "p7", wantErr: ErrGameFull},
		"host":           {joined: 2, id: "host", wantErr: ErrYoureTheHost},
		"duplicate":      {joined: 3, id: "p2", wantErr: ErrAlreadyIn},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			r := NewRoster("host")
			for i := 1; i <= tt.joined; i++ {
				if err := r.Join(Identity(fmt.Sprintf("p%d", i))); err != nil {
					t.Fatalf("setup join: %v", err)
				}
			}

			err := r.Join(tt.id)
			testutil.AssertEqual(t, "error", err, tt.wantErr, cmpopts.EquateErrors())

			want := tt.joined
			if tt.wantErr == nil {
				want++
			}
			testutil.AssertEqual(t, "members", len(r.Members()), want)
		})
	}
}

func TestRoster_Leave(t *testing.T) {
	tests := map[string]struct {
		id      Identity
		wantErr error
		want    []Identity
	}{
		"member":  {id: "p2", want: []Identity{"p1", "p3"}},
		"host":    {id: "host", wantErr: ErrYoureTheHost, want: []Identity{"p1", "p2", "p3"}},
		"unknown": {id: "p9", wantErr: ErrNotInAGame, want: []Identity{"p1", "p2", "p3"}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			r := NewRoster("host")
			for _, id := range []Identity{"p1", "p2", "p3"} {
				if err := r.Join(id); err != nil {
					t.Fatalf("setup join: %v", err)
				}
			}

			err := r.Leave(tt.id)
			testutil.AssertEqual(t, "error", err, tt.wantErr, cmpopts.EquateErrors())
			if got := r.Members(); !slices.Equal(got, tt.want) {
				t.Errorf("members: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRoster_MembershipRules(t *testing.T) {
	r := NewRoster("host")
	ops := []struct {
		join bool
		id   Identity
	}{
		{true, "a"}, {true, "b"}, {true, "a"}, {true, "host"}, {true, "c"},
		{false, "b"}, {true, "d"}, {true, "e"}, {true, "f"}, {true, "g"},
		{true, "h"}, {false, "z"}, {false, "host"}, {true, "b"},
	}

	for i, op := range ops {
		if op.join {
			_ = r.Join(op.id)
		} else {
			_ = r.Leave(op.id)
		}

		members := r.Members()
		if len(members) > MaxPlayers {
			t.Fatalf("step %d: roster has %d members", i, len(members))
		}
		seen := map[Identity]bool{}
		for _, id := range members {
			if id == "host" {
				t.Fatalf("step %d: host joined the roster", i)
			}
			if seen[id] {
				t.Fatalf("step %d: duplicate member %s", i, id)
			}
			seen[id] = true
		}
		testutil.AssertEqual(t, fmt.Sprintf("step %d can start", i), r.CanStart(), len(members) == MaxPlayers)
	}
}
