package game

import (
	"context"

	"github.com/pixil98/go-royale/internal/decision"
)

// RoomProvisioner creates rooms, controls who can see them and talks in them.
type RoomProvisioner interface {
	CreateRoom(ctx context.Context, name, category string) (RoomID, error)
	DestroyRoom(ctx context.Context, room RoomID) error

	GrantRoom(ctx context.Context, room RoomID, id Identity) error
	RevokeRoom(ctx context.Context, room RoomID, id Identity) error

	// OpenRoom lets every holder of grant into the room, CloseRoom shuts them out.
	OpenRoom(ctx context.Context, room RoomID, grant GrantID) error
	CloseRoom(ctx context.Context, room RoomID, grant GrantID) error

	GrantRole(ctx context.Context, grant GrantID, id Identity) error
	RevokeRole(ctx context.Context, grant GrantID, id Identity) error

	CanSee(room RoomID, id Identity) bool
	Say(ctx context.Context, room RoomID, msg string) error
}

// DecisionRunner runs a decision to completion.
type DecisionRunner interface {
	Run(ctx context.Context, a decision.Action) decision.Outcome
}
