package game

import "fmt"

// Identity is a participant's platform-wide name.
type Identity string

// RoomID references a communication room held by the RoomProvisioner.
type RoomID string

// GrantID references a role grant held by the RoomProvisioner.
type GrantID string

type DeathKind int

const (
	Sorcery DeathKind = iota
	Beheading
	Assassination
	Starvation
	Stabbing
)

type DeathCause struct {
	Kind DeathKind
	By   Identity
}

func (c DeathCause) describe() string {
	switch c.Kind {
	case Sorcery:
		return "was burnt to a crisp using sorcery."
	case Beheading:
		return "was beheaded."
	case Assassination:
		return "was assassinated."
	case Starvation:
		return "became a mummy due to starvation."
	case Stabbing:
		return fmt.Sprintf("was stabbed by %s.", c.By)
	default:
		return "died."
	}
}

type SecretMeeting struct {
	Partner Identity
	Room    RoomID
}

type Player struct {
	id    Identity
	role  Role
	alive bool
	room  RoomID
	watch string

	items    *Items
	memo     *MemoBook
	meetings [][2]*SecretMeeting
}

func NewPlayer(id Identity, role Role, room RoomID, watch string, kit []*ItemSpec) *Player {
	return &Player{
		id:    id,
		role:  role,
		alive: true,
		room:  room,
		watch: watch,
		items: NewItems(kit),
		memo:  &MemoBook{},
	}
}

func (p *Player) ID() Identity        { return p.id }
func (p *Player) Role() Role          { return p.role }
func (p *Player) IsAlive() bool       { return p.alive }
func (p *Player) Room() RoomID        { return p.room }
func (p *Player) Watch() string       { return p.watch }
func (p *Player) Items() *Items       { return p.items }
func (p *Player) MemoBook() *MemoBook { return p.memo }

// SetDead flips the player's liveness and returns the announcement for it.
// Killing a dead player is a programming error.
func (p *Player) SetDead(cause DeathCause) string {
	if !p.alive {
		panic(fmt.Sprintf("player %s is already dead", p.id))
	}
	p.alive = false
	return fmt.Sprintf("%s %s", p.id, cause.describe())
}

// AddSecretMeeting records a meeting for the given day, filling slot 0 then
// slot 1. Days start at 1.
func (p *Player) AddSecretMeeting(day int, partner Identity, room RoomID) {
	if day < 1 {
		panic(fmt.Sprintf("invalid day %d", day))
	}
	for len(p.meetings) < day {
		p.meetings = append(p.meetings, [2]*SecretMeeting{})
	}
	slots := &p.meetings[day-1]
	m := &SecretMeeting{Partner: partner, Room: room}
	switch {
	case slots[0] == nil:
		slots[0] = m
	case slots[1] == nil:
		slots[1] = m
	default:
		panic(fmt.Sprintf("player %s already has two secret meetings on day %d", p.id, day))
	}
}

func (p *Player) SecretMeetingsForDay(day int) ([2]*SecretMeeting, bool) {
	if day < 1 || day > len(p.meetings) {
		return [2]*SecretMeeting{}, false
	}
	return p.meetings[day-1], true
}
