package app

import (
	"sync"

	"github.com/dkeye/CommentClash/internal/domain"
	"github.com/rs/zerolog/log"
)

// Registry is the connection index: every live connection id maps to at most
// one room, and every room knows its connections.
type Registry struct {
	mu     sync.RWMutex
	byConn map[domain.PlayerID]domain.RoomCode
	byRoom map[domain.RoomCode]map[domain.PlayerID]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		byConn: make(map[domain.PlayerID]domain.RoomCode),
		byRoom: make(map[domain.RoomCode]map[domain.PlayerID]struct{}),
	}
}

// Bind seats sid in the room. It refuses when sid is already bound anywhere.
func (r *Registry) Bind(sid domain.PlayerID, code domain.RoomCode) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byConn[sid]; ok {
		return false
	}
	r.byConn[sid] = code
	members, ok := r.byRoom[code]
	if !ok {
		members = make(map[domain.PlayerID]struct{})
		r.byRoom[code] = members
	}
	members[sid] = struct{}{}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(code)).Msg("bound session")
	return true
}

func (r *Registry) RoomOf(sid domain.PlayerID) (domain.RoomCode, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	code, ok := r.byConn[sid]
	return code, ok
}

func (r *Registry) Unbind(sid domain.PlayerID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	code, ok := r.byConn[sid]
	if !ok {
		return
	}
	delete(r.byConn, sid)
	if members, ok := r.byRoom[code]; ok {
		delete(members, sid)
		if len(members) == 0 {
			delete(r.byRoom, code)
		}
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(code)).Msg("unbind session")
}

func (r *Registry) MembersOfRoom(code domain.RoomCode) []domain.PlayerID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.PlayerID, 0, len(r.byRoom[code]))
	for sid := range r.byRoom[code] {
		out = append(out, sid)
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byConn)
}
