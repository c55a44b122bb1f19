package core

import "github.com/dkeye/CommentClash/internal/domain"

// RoomHandle serializes every access to one room.
// Update and View never run concurrently with each other on the same room.
type RoomHandle interface {
	Code() domain.RoomCode
	// Update runs fn under the room lock. It fails with ErrRoomNotFound once
	// the room was closed.
	Update(fn func(r *domain.Room) error) error
	// View runs fn under the room lock without the intent to mutate.
	View(fn func(r *domain.Room) error) error
	// Snapshot returns a deep copy of the current state.
	Snapshot() (*domain.Room, error)
	// Close marks the room destroyed. Must be called from inside Update.
	Close()
	Closed() bool
}

type RoomInfo struct {
	Code        domain.RoomCode  `json:"code"`
	State       domain.RoomState `json:"state"`
	PlayerCount int              `json:"playerCount"`
	MaxPlayers  int              `json:"maxPlayers"`
}

// RoomManager owns the live room table.
type RoomManager interface {
	// Create allocates a fresh code and installs a lobby room built by newRoom.
	Create(newRoom func(code domain.RoomCode) *domain.Room) (RoomHandle, error)
	Get(code domain.RoomCode) (RoomHandle, bool)
	// Install adds a rehydrated room unless one with that code is already live,
	// in which case the live handle wins.
	Install(room *domain.Room) RoomHandle
	Remove(code domain.RoomCode)
	List() []RoomInfo
}
