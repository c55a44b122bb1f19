// Package orch is the session manager: it owns the round lifecycle of every
// live room and keeps the connection index in step with room membership.
//
// Lock order is RoomTable -> room -> Registry. The video source is never
// called while a room lock is held. Checkpoints are enqueued under the lock
// so the durable store sees snapshots in commit order; the store itself is
// written from the checkpoint worker.
package orch

import (
	"time"

	"github.com/dkeye/CommentClash/internal/app"
	"github.com/dkeye/CommentClash/internal/core"
	"github.com/dkeye/CommentClash/internal/domain"
)

const (
	DefaultCacheTimeout = 500 * time.Millisecond
	// DefaultGhostGrace is how long a rehydrated room keeps seats that no
	// connection has claimed.
	DefaultGhostGrace = 2 * time.Minute
)

type Orchestrator struct {
	Registry    *app.Registry
	Rooms       core.RoomManager
	Policy      app.JudgePolicy
	Captions    core.CaptionSource
	Videos      core.VideoSource
	Cache       core.RoomCache   // optional
	Checkpoints core.Checkpointer // optional
	Clock       core.Clock
	Settings    domain.Settings

	CacheTimeout time.Duration
	GhostGrace   time.Duration
	// Reaped, when set, hears about rooms that lost unclaimed seats.
	Reaped func(Departure)
}

func (o *Orchestrator) now() time.Time {
	if o.Clock == nil {
		return time.Now()
	}
	return o.Clock.Now()
}

func (o *Orchestrator) after(d time.Duration, f func()) {
	if o.Clock == nil {
		time.AfterFunc(d, f)
		return
	}
	o.Clock.AfterFunc(d, f)
}

func (o *Orchestrator) policy() app.JudgePolicy {
	if o.Policy == nil {
		return app.RotatePolicy{}
	}
	return o.Policy
}

// ListRooms reports every live room ordered by code.
func (o *Orchestrator) ListRooms() []core.RoomInfo {
	return o.Rooms.List()
}
