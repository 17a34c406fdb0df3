package game

import (
	"fmt"
	"slices"
)

type PhaseKind int

const (
	PhaseNotStarted PhaseKind = iota
	PhaseA
	PhaseB
	PhaseC
	PhaseD
	PhaseE
	PhaseF
	PhaseEnded
)

func (k PhaseKind) String() string {
	switch k {
	case PhaseNotStarted:
		return "Not started"
	case PhaseA, PhaseB, PhaseC, PhaseD, PhaseE, PhaseF:
		return fmt.Sprintf("<%c>", 'A'+rune(k-PhaseA))
	case PhaseEnded:
		return "Game has ended"
	default:
		return fmt.Sprintf("PhaseKind(%d)", int(k))
	}
}

// TimeRange is the in-fiction clock span covered by a block.
func (k PhaseKind) TimeRange() (string, bool) {
	switch k {
	case PhaseA:
		return "~12", true
	case PhaseB:
		return "12~14", true
	case PhaseC:
		return "14~18", true
	case PhaseD:
		return "18~20", true
	case PhaseE:
		return "20~22", true
	case PhaseF:
		return "22~", true
	default:
		return "", false
	}
}

// Phase is one state of a match. The set of implementations is closed.
type Phase interface {
	Kind() PhaseKind
	isPhase()
}

type SubstitutionStatus int

const (
	SubstitutionHasNot SubstitutionStatus = iota
	SubstitutionCurrentlyIs
	SubstitutionHas
)

func (s SubstitutionStatus) String() string {
	switch s {
	case SubstitutionHasNot:
		return "not substituted"
	case SubstitutionCurrentlyIs:
		return "substituting"
	case SubstitutionHas:
		return "substituted"
	default:
		return fmt.Sprintf("SubstitutionStatus(%d)", int(s))
	}
}

// NotStarted collects the roster before the match begins.
type NotStarted struct {
	roster *Roster
}

func (*NotStarted) Kind() PhaseKind { return PhaseNotStarted }
func (*NotStarted) isPhase()        {}

func (n *NotStarted) Roster() *Roster { return n.roster }

// timeBlock is the state carried by every block of the day.
type timeBlock struct {
	players      []*Player
	day          int
	substitution SubstitutionStatus
}

// TimeBlock is implemented by the six blocks of the day.
type TimeBlock interface {
	Phase
	block() *timeBlock
}

func (b *timeBlock) block() *timeBlock { return b }

func (b *timeBlock) Day() int { return b.day }

func (b *timeBlock) Players() []*Player { return slices.Clone(b.players) }

func (b *timeBlock) Player(id Identity) (*Player, bool) {
	for _, p := range b.players {
		if p.id == id {
			return p, true
		}
	}
	return nil, false
}

func (b *timeBlock) KingSubstitution() SubstitutionStatus { return b.substitution }

func (b *timeBlock) SetKingSubstitution(s SubstitutionStatus) { b.substitution = s }

func (b *timeBlock) KingHasSubstituted() bool {
	return b.substitution == SubstitutionHas || b.substitution == SubstitutionCurrentlyIs
}

// holder returns the player holding role r.
func (b *timeBlock) holder(r Role) *Player {
	for _, p := range b.players {
		if p.role == r {
			return p
		}
	}
	return nil
}

func (b *timeBlock) aliveness() Aliveness {
	var a Aliveness
	for _, p := range b.players {
		a[p.role] = p.alive
	}
	return a
}

// allWon evaluates every player's win predicate, dead or alive.
func (b *timeBlock) allWon() bool {
	a := b.aliveness()
	for _, p := range b.players {
		if !p.role.WinConditionAchieved(a) {
			return false
		}
	}
	return true
}

// kingLike returns the living player exercising the King's privilege.
func (b *timeBlock) kingLike() *Player {
	for _, r := range kingLikeOrder {
		if p := b.holder(r); p != nil && p.alive {
			return p
		}
	}
	return nil
}

// murderAssistant returns the living Sorcerer, else the living Knight.
func (b *timeBlock) murderAssistant() *Player {
	for _, r := range []Role{Sorcerer, Knight} {
		if p := b.holder(r); p != nil && p.alive {
			return p
		}
	}
	return nil
}

// living returns the living players other than except, in identity order.
func (b *timeBlock) living(except Identity) []*Player {
	var out []*Player
	for _, p := range b.players {
		if p.alive && p.id != except {
			out = append(out, p)
		}
	}
	return out
}

// hitTarget resolves who actually dies when target is hit. While the King is
// substituting, a hit on the King lands on a living Double.
func (b *timeBlock) hitTarget(target *Player, shielded bool) *Player {
	if target.role != King || !shielded {
		return target
	}
	if d := b.holder(TheDouble); d != nil && d.alive {
		return d
	}
	return target
}

type ABlock struct{ timeBlock }
type BBlock struct{ timeBlock }
type CBlock struct{ timeBlock }

// DBlock carries the murder target chosen by the king-like player.
type DBlock struct {
	timeBlock
	murderTarget Identity
}

type EBlock struct{ timeBlock }
type FBlock struct{ timeBlock }

func (*ABlock) Kind() PhaseKind { return PhaseA }
func (*BBlock) Kind() PhaseKind { return PhaseB }
func (*CBlock) Kind() PhaseKind { return PhaseC }
func (*DBlock) Kind() PhaseKind { return PhaseD }
func (*EBlock) Kind() PhaseKind { return PhaseE }
func (*FBlock) Kind() PhaseKind { return PhaseF }

func (*ABlock) isPhase() {}
func (*BBlock) isPhase() {}
func (*CBlock) isPhase() {}
func (*DBlock) isPhase() {}
func (*EBlock) isPhase() {}
func (*FBlock) isPhase() {}

func (d *DBlock) MurderTarget() (Identity, bool) {
	return d.murderTarget, d.murderTarget != ""
}

// MeetingOpener is implemented by the blocks that open the shared room.
type MeetingOpener interface {
	TimeBlock
	opensMeetingRoom()
}

// MeetingCloser is implemented by the blocks that close the shared room.
type MeetingCloser interface {
	TimeBlock
	closesMeetingRoom()
}

func (*ABlock) opensMeetingRoom() {}
func (*DBlock) opensMeetingRoom() {}

func (*BBlock) closesMeetingRoom() {}
func (*EBlock) closesMeetingRoom() {}

// GameEnded holds the final state of a finished match.
type GameEnded struct {
	players []*Player
	day     int
}

func (*GameEnded) Kind() PhaseKind { return PhaseEnded }
func (*GameEnded) isPhase()        {}

func (g *GameEnded) Day() int           { return g.day }
func (g *GameEnded) Players() []*Player { return slices.Clone(g.players) }

// mustPhase asserts the current phase variant, panicking with a
// ContractViolation on mismatch.
func mustPhase[T Phase](p Phase, op string) T {
	t, ok := p.(T)
	if !ok {
		panic(&ContractViolation{Op: op, Phase: p.Kind()})
	}
	return t
}

// endFrom builds the terminal phase from a time block.
func endFrom(b *timeBlock) *GameEnded {
	return &GameEnded{players: b.players, day: b.day}
}
