package core

import (
	"context"
	"time"

	"github.com/dkeye/CommentClash/internal/domain"
)

// CaptionSource hands out batches of captions with pairwise distinct ids.
type CaptionSource interface {
	Generate(count int) []domain.Caption
}

// VideoSource picks the clip for a round. It may block on I/O and must not be
// called under a room lock.
type VideoSource interface {
	Pick(ctx context.Context) domain.Video
}

// RoomCache is the hot read-through copy of live rooms. Best effort only.
type RoomCache interface {
	Load(ctx context.Context, code domain.RoomCode) (*domain.Room, bool, error)
	Save(ctx context.Context, room *domain.Room) error
	Delete(ctx context.Context, code domain.RoomCode) error
}

// GameStore is the durable archive of room snapshots.
type GameStore interface {
	SaveGame(ctx context.Context, room *domain.Room) error
	LoadGame(ctx context.Context, code domain.RoomCode) (*domain.Room, error)
}

// Checkpointer accepts snapshots for write-behind persistence.
// Checkpoint must not block on I/O.
type Checkpointer interface {
	Checkpoint(room *domain.Room)
}

type Timer interface {
	Stop() bool
}

// Clock is the time source. The engine only reads Now; adapters schedule
// delayed work through AfterFunc.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// EventType names an outbound event.
type EventType string

const (
	EventPlayerJoined     EventType = "playerJoined"
	EventGameStarted      EventType = "gameStarted"
	EventCaptionSubmitted EventType = "captionSubmitted"
	EventReadyForJudging  EventType = "readyForJudging"
	EventRoundComplete    EventType = "roundComplete"
	EventNextRound        EventType = "nextRound"
	EventGameComplete     EventType = "gameComplete"
	EventPlayerLeft       EventType = "playerLeft"
)

type Event struct {
	Type EventType `json:"event"`
	Data any       `json:"data"`
}

// CaptionSubmitted is the payload of EventCaptionSubmitted.
type CaptionSubmitted struct {
	PlayerID     domain.PlayerID `json:"playerId"`
	AllSubmitted bool            `json:"allSubmitted"`
}

// Broadcaster is a write-only sink keyed by room code.
type Broadcaster interface {
	Broadcast(code domain.RoomCode, ev Event)
}
