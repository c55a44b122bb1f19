package orch

import (
	"context"

	"github.com/dkeye/CommentClash/internal/core"
	"github.com/dkeye/CommentClash/internal/domain"
	"github.com/rs/zerolog/log"
)

// lookup finds a live room, falling back to the cache and reinstalling the
// cached copy into the room table.
func (o *Orchestrator) lookup(ctx context.Context, code domain.RoomCode) (core.RoomHandle, bool) {
	if h, ok := o.Rooms.Get(code); ok {
		return h, true
	}
	if o.Cache == nil || !domain.ValidCode(string(code)) {
		return nil, false
	}
	cctx, cancel := o.cacheContext(ctx)
	defer cancel()
	room, found, err := o.Cache.Load(cctx, code)
	if err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("code", string(code)).Msg("cache read-through failed")
		return nil, false
	}
	if !found || room == nil || room.Code != code {
		return nil, false
	}
	h := o.Rooms.Install(room)
	grace := o.GhostGrace
	if grace <= 0 {
		grace = DefaultGhostGrace
	}
	o.after(grace, func() { o.reapGhosts(h) })
	return h, true
}

// reapGhosts drops seats no live connection has claimed. A rehydrated room
// carries players from a previous process; they are never bound in the
// registry and so can never leave on their own.
func (o *Orchestrator) reapGhosts(h core.RoomHandle) {
	ctx := context.Background()
	var (
		out    Departure
		reaped int
	)
	err := h.Update(func(r *domain.Room) error {
		seats := append([]*domain.Player{}, r.Players...)
		for _, p := range seats {
			if code, ok := o.Registry.RoomOf(p.ID); ok && code == r.Code {
				continue
			}
			d, removed := o.removePlayer(ctx, h, r, p.ID)
			if !removed {
				continue
			}
			reaped++
			d.ReadyForJudging = d.ReadyForJudging || out.ReadyForJudging
			if d.Result == nil {
				d.Result = out.Result
			}
			out = d
			if d.State == nil {
				break
			}
		}
		return nil
	})
	if err != nil || reaped == 0 {
		return
	}
	if out.State == nil || !out.State.AllSubmitted {
		out.ReadyForJudging = false
	}
	if out.State == nil {
		o.Rooms.Remove(h.Code())
	}
	log.Info().Str("module", "orch").Str("code", string(h.Code())).Int("seats", reaped).Bool("room_closed", out.State == nil).Msg("unclaimed seats reaped")
	if o.Reaped != nil {
		o.Reaped(out)
	}
}

// cacheSave writes the room through to the cache. Called with the room lock
// held so cache writes follow room order.
func (o *Orchestrator) cacheSave(ctx context.Context, r *domain.Room) {
	if o.Cache == nil {
		return
	}
	cctx, cancel := o.cacheContext(ctx)
	defer cancel()
	if err := o.Cache.Save(cctx, r); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("code", string(r.Code)).Msg("cache write-through failed")
	}
}

func (o *Orchestrator) cacheDelete(ctx context.Context, code domain.RoomCode) {
	if o.Cache == nil {
		return
	}
	cctx, cancel := o.cacheContext(ctx)
	defer cancel()
	if err := o.Cache.Delete(cctx, code); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("code", string(code)).Msg("cache delete failed")
	}
}

// cacheContext detaches from the caller so a client hanging up mid-commit
// cannot cut a cache write short.
func (o *Orchestrator) cacheContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := o.CacheTimeout
	if timeout <= 0 {
		timeout = DefaultCacheTimeout
	}
	return context.WithTimeout(context.WithoutCancel(ctx), timeout)
}

// checkpoint hands a detached snapshot to the write-behind store.
func (o *Orchestrator) checkpoint(snapshot *domain.Room) {
	if o.Checkpoints == nil || snapshot == nil {
		return
	}
	o.Checkpoints.Checkpoint(snapshot)
}
