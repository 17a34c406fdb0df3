package game

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func aliveExcept(dead ...Role) Aliveness {
	a := Aliveness{true, true, true, true, true, true}
	for _, r := range dead {
		a[r] = false
	}
	return a
}

func TestRole_WinConditionAchieved(t *testing.T) {
	tests := map[string]struct {
		role Role
		a    Aliveness
		want bool
	}{
		"king all alive":              {role: King, a: aliveExcept(), want: false},
		"king prince and rev dead":    {role: King, a: aliveExcept(Prince, Revolutionary), want: true},
		"king dead himself still won": {role: King, a: aliveExcept(King, Prince, Revolutionary), want: true},
		"double mirrors king":         {role: TheDouble, a: aliveExcept(Prince, Revolutionary), want: true},
		"prince needs rev dead too":   {role: Prince, a: aliveExcept(King, TheDouble), want: false},
		"prince wins":                 {role: Prince, a: aliveExcept(King, TheDouble, Revolutionary), want: true},
		"knight wins":                 {role: Knight, a: aliveExcept(King, TheDouble), want: true},
		"knight double alive":         {role: Knight, a: aliveExcept(King), want: false},
		"rev wins":                    {role: Revolutionary, a: aliveExcept(King, TheDouble, Prince), want: true},
		"rev prince alive":            {role: Revolutionary, a: aliveExcept(King, TheDouble), want: false},
		"sorcerer always":             {role: Sorcerer, a: aliveExcept(), want: true},
		"sorcerer dead":               {role: Sorcerer, a: aliveExcept(Sorcerer), want: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "won", tt.role.WinConditionAchieved(tt.a), tt.want)
			testutil.AssertEqual(t, "won again", tt.role.WinConditionAchieved(tt.a), tt.want)
		})
	}
}

func TestTimeBlock_KingLike(t *testing.T) {
	tests := map[string]struct {
		dead []Role
		want Role
		none bool
	}{
		"king alive":          {want: King},
		"king dead":           {dead: []Role{King}, want: TheDouble},
		"king and double":     {dead: []Role{King, TheDouble}, want: Prince},
		"all three dead":      {dead: []Role{King, TheDouble, Prince}, none: true},
		"double dead only":    {dead: []Role{TheDouble}, want: King},
		"prince dead, others": {dead: []Role{Prince}, want: King},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			b := &timeBlock{day: 1}
			for _, r := range AllRoles {
				p := NewPlayer(Identity(r.Key()), r, "", "", nil)
				for _, d := range tt.dead {
					if d == r {
						p.SetDead(DeathCause{Kind: Sorcery})
					}
				}
				b.players = append(b.players, p)
			}

			got := b.kingLike()
			if tt.none {
				if got != nil {
					t.Fatalf("expected no king-like player, got %s", got.Role())
				}
				return
			}
			if got == nil {
				t.Fatal("expected a king-like player")
			}
			testutil.AssertEqual(t, "role", got.Role(), tt.want)
		})
	}
}

func TestRole_String(t *testing.T) {
	testutil.AssertEqual(t, "double", TheDouble.String(), "The Double")
	testutil.AssertEqual(t, "double key", TheDouble.Key(), "the-double")
	testutil.AssertEqual(t, "king key", King.Key(), "king")
}

func TestRandomShuffle_Permutation(t *testing.T) {
	for i := 0; i < 50; i++ {
		roles := AllRoles[:]
		shuffled := make([]Role, len(roles))
		copy(shuffled, roles)
		RandomShuffle(shuffled)

		seen := map[Role]bool{}
		for _, r := range shuffled {
			seen[r] = true
		}
		testutil.AssertEqual(t, "distinct roles", len(seen), roleCount)
	}
}

func TestParseRole(t *testing.T) {
	tests := map[string]struct {
		in  string
		exp Role
		ok  bool
	}{
		"key":          {in: "the-double", exp: TheDouble, ok: true},
		"display name": {in: "The Double", exp: TheDouble, ok: true},
		"any case":     {in: "KNIGHT", exp: Knight, ok: true},
		"unknown":      {in: "jester"},
		"empty":        {in: ""},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := ParseRole(tt.in)
			testutil.AssertEqual(t, "ok", ok, tt.ok)
			if tt.ok {
				testutil.AssertEqual(t, "role", got, tt.exp)
			}
		})
	}
}

func TestRoleSheet_Validate(t *testing.T) {
	tests := map[string]struct {
		sheet  RoleSheet
		expErr string
	}{
		"valid": {
			sheet: RoleSheet{Role: "king", Summary: "Rules.", Goal: "Survive."},
		},
		"missing role": {
			sheet:  RoleSheet{Summary: "Rules.", Goal: "Survive."},
			expErr: "role must be set",
		},
		"unknown role": {
			sheet:  RoleSheet{Role: "jester", Summary: "Jokes.", Goal: "Laugh."},
			expErr: `unknown role "jester"`,
		},
		"missing goal": {
			sheet:  RoleSheet{Role: "knight", Summary: "Guards."},
			expErr: "goal must be set",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.sheet.Validate()
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
