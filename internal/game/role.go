package game

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

type Role int

const (
	King Role = iota
	Prince
	TheDouble
	Sorcerer
	Knight
	Revolutionary
)

const roleCount = 6

// AllRoles lists every role in catalog order.
var AllRoles = [roleCount]Role{King, Prince, TheDouble, Sorcerer, Knight, Revolutionary}

var roleNames = map[Role]string{
	King:          "King",
	Prince:        "Prince",
	TheDouble:     "The Double",
	Sorcerer:      "Sorcerer",
	Knight:        "Knight",
	Revolutionary: "Revolutionary",
}

func (r Role) String() string {
	if n, ok := roleNames[r]; ok {
		return n
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// Key is the role's asset identifier.
func (r Role) Key() string {
	switch r {
	case TheDouble:
		return "the-double"
	default:
		if n, ok := roleNames[r]; ok {
			return strings.ToLower(n)
		}
		return ""
	}
}

// ParseRole accepts either a role's key or its display name.
func ParseRole(s string) (Role, bool) {
	s = strings.TrimSpace(s)
	for _, r := range AllRoles {
		if strings.EqualFold(s, r.Key()) || strings.EqualFold(s, r.String()) {
			return r, true
		}
	}
	return 0, false
}

// KillCause is the death cause inflicted when this role carries out a murder.
func (r Role) KillCause() (DeathCause, bool) {
	switch r {
	case Sorcerer:
		return DeathCause{Kind: Sorcery}, true
	case Knight:
		return DeathCause{Kind: Beheading}, true
	default:
		return DeathCause{}, false
	}
}

// Aliveness records whether the holder of each role is alive.
type Aliveness [roleCount]bool

func (a Aliveness) Alive(r Role) bool {
	return a[r]
}

func (a Aliveness) dead(roles ...Role) bool {
	for _, r := range roles {
		if a[r] {
			return false
		}
	}
	return true
}

// WinConditionAchieved reports whether the role's win predicate holds. The
// predicate looks only at the other roles, never at the holder's own life.
func (r Role) WinConditionAchieved(a Aliveness) bool {
	switch r {
	case King, TheDouble:
		return a.dead(Prince, Revolutionary)
	case Prince:
		return a.dead(King, TheDouble, Revolutionary)
	case Knight:
		return a.dead(King, TheDouble)
	case Revolutionary:
		return a.dead(King, TheDouble, Prince)
	case Sorcerer:
		return true
	default:
		return false
	}
}

// kingLikeOrder is the precedence of roles exercising the King's privilege.
var kingLikeOrder = []Role{King, TheDouble, Prince}

// Shuffler permutes roles in place.
type Shuffler func([]Role)

// RandomShuffle is a uniform permutation.
func RandomShuffle(roles []Role) {
	rand.Shuffle(len(roles), func(i, j int) {
		roles[i], roles[j] = roles[j], roles[i]
	})
}

// Dice rolls a single die.
type Dice func() int

// D20 rolls a twenty-sided die.
func D20() int {
	return rand.IntN(20) + 1
}
