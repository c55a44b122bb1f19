package signal

import (
	"context"
	"encoding/json"

	"github.com/dkeye/CommentClash/internal/app/orch"
	"github.com/dkeye/CommentClash/internal/core"
	"github.com/dkeye/CommentClash/internal/domain"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) displayName(c *WsSignalConn, requested string) string {
	if requested == "" {
		requested = c.nickname
	}
	return domain.NormalizeName(requested)
}

func (ctl *SignalWSController) handleCreateRoom(ctx context.Context, c *WsSignalConn, env envelope, data []byte) {
	var p createRoomPayload
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendJSON(c, failAck(env.RequestID, codeBadPayload, "bad_payload"))
		return
	}
	// A socket sits in one room at a time; creating moves it.
	ctl.leave(ctx, c.id)

	room, err := ctl.Orch.CreateRoom(ctx, c.id, ctl.displayName(c, p.PlayerName))
	if err != nil {
		ctl.reject(c, env.RequestID, err)
		return
	}
	resp := okAck(env.RequestID)
	resp.PlayerID = c.id
	resp.Room = room
	ctl.sendJSON(c, resp)
}

func (ctl *SignalWSController) handleJoinRoom(ctx context.Context, c *WsSignalConn, env envelope, data []byte) {
	var p joinRoomPayload
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendJSON(c, failAck(env.RequestID, codeBadPayload, "bad_payload"))
		return
	}
	code := domain.ParseCode(p.RoomCode)
	if current, ok := ctl.Orch.Registry.RoomOf(c.id); ok && current != code {
		ctl.leave(ctx, c.id)
	}

	room, err := ctl.Orch.JoinRoom(ctx, code, c.id, ctl.displayName(c, p.PlayerName))
	if err != nil {
		ctl.reject(c, env.RequestID, err)
		return
	}
	resp := okAck(env.RequestID)
	resp.PlayerID = c.id
	resp.Room = room
	ctl.sendJSON(c, resp)
	ctl.Hub.Broadcast(code, core.Event{Type: core.EventPlayerJoined, Data: room})
}

// handleLeaveRoom leaves the current room but keeps the socket open.
func (ctl *SignalWSController) handleLeaveRoom(ctx context.Context, c *WsSignalConn, env envelope) {
	ctl.leave(ctx, c.id)
	ctl.sendJSON(c, okAck(env.RequestID))
}

// leave removes sid from its room and tells whoever is still there.
func (ctl *SignalWSController) leave(ctx context.Context, sid domain.PlayerID) {
	d, ok := ctl.Orch.Depart(ctx, sid)
	if !ok {
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("code", string(d.Code)).Msg("leave")
	ctl.AnnounceDeparture(d)
}

// AnnounceDeparture broadcasts playerLeft and whatever round change the
// departure caused. Closed rooms have nobody left to tell.
func (ctl *SignalWSController) AnnounceDeparture(d orch.Departure) {
	if d.State == nil {
		return
	}
	ctl.Hub.Broadcast(d.Code, core.Event{Type: core.EventPlayerLeft, Data: d.State})
	switch {
	case d.Result != nil:
		ctl.Hub.Broadcast(d.Code, core.Event{Type: core.EventGameComplete, Data: d.Result})
	case d.ReadyForJudging:
		ctl.Hub.Broadcast(d.Code, core.Event{Type: core.EventReadyForJudging, Data: d.State})
	}
}
