package signal

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/dkeye/CommentClash/internal/app"
	"github.com/dkeye/CommentClash/internal/core"
	"github.com/dkeye/CommentClash/internal/domain"
	"github.com/rs/zerolog/log"
)

// Hub fans room events out to the sockets seated in that room. Membership
// comes from the Registry; the Hub only knows which socket belongs to which
// player id.
type Hub struct {
	registry *app.Registry
	policy   app.BackpressurePolicy

	mu    sync.RWMutex
	conns map[domain.PlayerID]core.SignalConnection
}

func NewHub(registry *app.Registry, policy app.BackpressurePolicy) *Hub {
	if policy == nil {
		policy = app.SimplePolicy{}
	}
	return &Hub{
		registry: registry,
		policy:   policy,
		conns:    make(map[domain.PlayerID]core.SignalConnection),
	}
}

func (h *Hub) Attach(sid domain.PlayerID, conn core.SignalConnection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[sid] = conn
}

func (h *Hub) Detach(sid domain.PlayerID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, sid)
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Broadcast implements core.Broadcaster. Frames are sent outside the hub lock.
func (h *Hub) Broadcast(code domain.RoomCode, ev core.Event) {
	frame, err := json.Marshal(eventFrame{Type: "event", Event: ev.Type, Data: ev.Data})
	if err != nil {
		log.Error().Err(err).Str("module", "signal.hub").Str("event", string(ev.Type)).Msg("marshal event")
		return
	}

	members := h.registry.MembersOfRoom(code)
	targets := make(map[domain.PlayerID]core.SignalConnection, len(members))
	h.mu.RLock()
	for _, sid := range members {
		if c, ok := h.conns[sid]; ok {
			targets[sid] = c
		}
	}
	h.mu.RUnlock()

	for sid, c := range targets {
		err := c.TrySend(frame)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrBackpressure) {
			continue
		}
		switch h.policy.OnBackPressure(code, sid) {
		case app.KickMember:
			log.Warn().Str("module", "signal.hub").Str("code", string(code)).Str("sid", string(sid)).Msg("slow consumer kicked")
			c.Close()
		case app.DropFrame, app.MarkSlow:
			log.Warn().Str("module", "signal.hub").Str("code", string(code)).Str("sid", string(sid)).Str("event", string(ev.Type)).Msg("frame dropped")
		}
	}
	log.Debug().Str("module", "signal.hub").Str("code", string(code)).Str("event", string(ev.Type)).Int("targets", len(targets)).Msg("broadcast")
}
