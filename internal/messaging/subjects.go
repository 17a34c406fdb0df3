package messaging

import (
	"fmt"

	"github.com/pixil98/go-royale/internal/decision"
	"github.com/pixil98/go-royale/internal/game"
)

// PlayerSubject carries every line of text shown to one identity.
func PlayerSubject(id game.Identity) string {
	return fmt.Sprintf("player-%s", id)
}

// ChoiceSubject carries the picks answering one presented decision.
func ChoiceSubject(h decision.Handle) string {
	return fmt.Sprintf("choice.%s", h)
}
