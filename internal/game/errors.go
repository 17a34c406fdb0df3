package game

import "fmt"

// RuleError is a game-rule rejection that can be shown to the acting player.
type RuleError struct {
	msg string
}

func (e *RuleError) Error() string {
	return e.msg
}

// NewRuleError creates a rejection shown verbatim to the player.
func NewRuleError(msg string) *RuleError {
	return &RuleError{msg: msg}
}

var (
	ErrGameFull     = NewRuleError("You can't join a full game.")
	ErrYoureTheHost = NewRuleError("You're the host of this game.")
	ErrAlreadyIn    = NewRuleError("You're already in this game.")
	ErrNotInAGame   = NewRuleError("You're not in this game.")
	ErrGameStarted  = NewRuleError("The game has already started.")

	ErrGameNotStarted = NewRuleError("The game hasn't started yet.")
	ErrGameEnded      = NewRuleError("The game has already ended.")
	ErrNotEnoughYet   = NewRuleError("Six players are needed to start the game.")
	ErrNotPlaying     = NewRuleError("You're not playing in this game.")
	ErrYoureDead      = NewRuleError("The dead can't do that.")
	ErrUnknownPlayer  = NewRuleError("There is no such player in this game.")

	ErrNotKing            = NewRuleError("Only the King can do that.")
	ErrKingDead           = NewRuleError("The King is dead.")
	ErrAlreadySubstituted = NewRuleError("The King has already used a substitute.")
	ErrDoubleDead         = NewRuleError("The Double is dead.")

	ErrNotSameRoom    = NewRuleError("You need to be in the same room to do that.")
	ErrNoKnife        = NewRuleError("You don't have a knife.")
	ErrSelfTarget     = NewRuleError("You can't do that to yourself.")
	ErrTargetDead     = NewRuleError("They're already dead.")
	ErrUnknownItem    = NewRuleError("There is no such item.")
	ErrNotGiftable    = NewRuleError("That item can't be given away.")
	ErrNoSuchItem     = NewRuleError("You don't have any of that.")
	ErrMemoBookFull   = NewRuleError("Your memo book is full.")
	ErrNoSuchNote     = NewRuleError("There is no such note.")
	ErrEmptyNote      = NewRuleError("You can't write an empty note.")
	ErrNoMeetingsYet  = NewRuleError("There are no secret meetings for that day.")
	ErrMurderNotReady = NewRuleError("No murder is being planned right now.")
)

// ContractViolation is raised when a phase-specific operation is invoked on
// a phase that does not support it. It is a programming error.
type ContractViolation struct {
	Op    string
	Phase PhaseKind
}

func (c *ContractViolation) Error() string {
	return fmt.Sprintf("%s called during %s", c.Op, c.Phase)
}
