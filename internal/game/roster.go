package game

import "slices"

const MaxPlayers = 6

// Roster tracks who has joined a match that has not started yet.
type Roster struct {
	host    Identity
	members []Identity
}

func NewRoster(host Identity) *Roster {
	return &Roster{host: host}
}

func (r *Roster) Join(id Identity) error {
	if len(r.members) >= MaxPlayers {
		return ErrGameFull
	}
	if id == r.host {
		return ErrYoureTheHost
	}
	if slices.Contains(r.members, id) {
		return ErrAlreadyIn
	}
	r.members = append(r.members, id)
	return nil
}

func (r *Roster) Leave(id Identity) error {
	if id == r.host {
		return ErrYoureTheHost
	}
	i := slices.Index(r.members, id)
	if i < 0 {
		return ErrNotInAGame
	}
	r.members = slices.Delete(r.members, i, i+1)
	return nil
}

func (r *Roster) CanStart() bool {
	return len(r.members) == MaxPlayers
}

func (r *Roster) Members() []Identity {
	return slices.Clone(r.members)
}
