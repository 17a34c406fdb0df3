package commands

import (
	"errors"

	"github.com/pixil98/go-royale/internal/game"
)

// UserError represents an error that should be displayed to the user.
// These are not system failures - just invalid input or usage.
type UserError struct {
	Message string
}

func (e *UserError) Error() string {
	return e.Message
}

// NewUserError creates a user-facing error.
func NewUserError(msg string) *UserError {
	return &UserError{Message: msg}
}

// userFacing turns game rule rejections into UserErrors.
func userFacing(err error) error {
	var re *game.RuleError
	if errors.As(err, &re) {
		return NewUserError(re.Error())
	}
	return err
}
