package signal

import (
	"context"
	"encoding/json"

	"github.com/dkeye/CommentClash/internal/core"
	"github.com/dkeye/CommentClash/internal/domain"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleStartGame(ctx context.Context, c *WsSignalConn, env envelope, data []byte) {
	var p roomPayload
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendJSON(c, failAck(env.RequestID, codeBadPayload, "bad_payload"))
		return
	}
	code := domain.ParseCode(p.RoomCode)
	room, err := ctl.Orch.StartGame(ctx, code, c.id)
	if err != nil {
		ctl.reject(c, env.RequestID, err)
		return
	}
	resp := okAck(env.RequestID)
	resp.Room = room
	ctl.sendJSON(c, resp)
	ctl.Hub.Broadcast(code, core.Event{Type: core.EventGameStarted, Data: room})
}

func (ctl *SignalWSController) handleSubmitCaption(ctx context.Context, c *WsSignalConn, env envelope, data []byte) {
	var p submitCaptionPayload
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendJSON(c, failAck(env.RequestID, codeBadPayload, "bad_payload"))
		return
	}
	code := domain.ParseCode(p.RoomCode)
	gs, err := ctl.Orch.SubmitCaption(ctx, code, c.id, domain.CaptionID(p.CaptionID))
	if err != nil {
		ctl.reject(c, env.RequestID, err)
		return
	}
	ctl.sendJSON(c, okAck(env.RequestID))
	ctl.Hub.Broadcast(code, core.Event{
		Type: core.EventCaptionSubmitted,
		Data: core.CaptionSubmitted{PlayerID: c.id, AllSubmitted: gs.AllSubmitted},
	})
	if gs.AllSubmitted {
		ctl.Hub.Broadcast(code, core.Event{Type: core.EventReadyForJudging, Data: gs})
	}
}

func (ctl *SignalWSController) handleJudgeCaption(ctx context.Context, c *WsSignalConn, env envelope, data []byte) {
	var p judgeCaptionPayload
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendJSON(c, failAck(env.RequestID, codeBadPayload, "bad_payload"))
		return
	}
	code := domain.ParseCode(p.RoomCode)
	res, err := ctl.Orch.JudgeCaption(ctx, code, c.id, domain.PlayerID(p.WinnerID))
	if err != nil {
		ctl.reject(c, env.RequestID, err)
		return
	}
	resp := okAck(env.RequestID)
	resp.Result = res
	ctl.sendJSON(c, resp)
	ctl.Hub.Broadcast(code, core.Event{Type: core.EventRoundComplete, Data: res})

	if res.GameComplete {
		ctl.Hub.Broadcast(code, core.Event{Type: core.EventGameComplete, Data: res})
		return
	}
	ctl.scheduleNextRound(code)
}

// scheduleNextRound opens the next round after the results had time on
// screen. A departure that ended the game meanwhile makes this a no-op.
func (ctl *SignalWSController) scheduleNextRound(code domain.RoomCode) {
	ctl.Clock.AfterFunc(ctl.nextRoundDelay, func() {
		room, err := ctl.Orch.StartNextRound(context.Background(), code)
		if err != nil {
			log.Debug().Err(err).Str("module", "signal").Str("code", string(code)).Msg("next round skipped")
			return
		}
		ctl.Hub.Broadcast(code, core.Event{Type: core.EventNextRound, Data: room})
	})
}

func (ctl *SignalWSController) handleGetState(ctx context.Context, c *WsSignalConn, env envelope, data []byte) {
	var p roomPayload
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendJSON(c, failAck(env.RequestID, codeBadPayload, "bad_payload"))
		return
	}
	gs, ok := ctl.Orch.GetGameState(ctx, domain.ParseCode(p.RoomCode))
	if !ok {
		ctl.reject(c, env.RequestID, domain.ErrRoomNotFound)
		return
	}
	resp := okAck(env.RequestID)
	resp.Room = gs
	ctl.sendJSON(c, resp)
}
