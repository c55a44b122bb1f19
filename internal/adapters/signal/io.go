package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dkeye/CommentClash/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Str("sid", string(c.id)).Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Str("sid", string(c.id)).Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Warn().Err(err).Str("module", "signal").Str("sid", string(c.id)).Msg("ping failed")
				return
			}
		}
	}
}

// readPump owns the connection lifetime: when it returns the player leaves
// their room and the socket is closed.
func (ctl *SignalWSController) readPump(ctx context.Context, cancel context.CancelFunc, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(c.id)).Msg("readPump closing")
		ctl.leave(context.WithoutCancel(ctx), c.id)
		ctl.Hub.Detach(c.id)
		ctl.limiter.Forget(c.id)
		cancel()
		c.Close()
	}()

	pongWait := ctl.pingPeriod * 10 / 9
	c.conn.SetReadLimit(ctl.readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("sid", string(c.id)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warn().Err(err).Str("module", "signal").Str("sid", string(c.id)).Msg("readPump read error")
				}
				return
			}
			ctl.handleSignal(ctx, c, data)
		}
	}
}

func (ctl *SignalWSController) handleSignal(ctx context.Context, c *WsSignalConn, data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(c.id)).Msg("bad json")
		ctl.sendJSON(c, failAck("", codeBadPayload, "bad_payload"))
		return
	}
	if !ctl.limiter.Allow(c.id) {
		log.Warn().Str("module", "signal").Str("sid", string(c.id)).Str("type", env.Type).Msg("rate limited")
		ctl.sendJSON(c, failAck(env.RequestID, codeRateLimited, "too many requests"))
		return
	}

	switch env.Type {
	case "createRoom":
		ctl.handleCreateRoom(ctx, c, env, data)
	case "joinRoom":
		ctl.handleJoinRoom(ctx, c, env, data)
	case "leaveRoom":
		ctl.handleLeaveRoom(ctx, c, env)
	case "startGame":
		ctl.handleStartGame(ctx, c, env, data)
	case "submitCaption":
		ctl.handleSubmitCaption(ctx, c, env, data)
	case "judgeCaption":
		ctl.handleJudgeCaption(ctx, c, env, data)
	case "getState":
		ctl.handleGetState(ctx, c, env, data)
	case "whoami":
		ctl.handleWhoAmI(c, env)
	case "ping":
		ctl.handlePing(c, env)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
		ctl.sendJSON(c, failAck(env.RequestID, codeUnknownType, "unknown type"))
	}
}

// reject acks a failed request. Rule violations are routine traffic; any
// other error is a server fault.
func (ctl *SignalWSController) reject(c *WsSignalConn, requestID string, err error) {
	ev := log.Error()
	if domain.IsGameError(err) {
		ev = log.Debug()
	}
	ev.Err(err).Str("module", "signal").Str("sid", string(c.id)).Str("code", domain.ErrorCode(err)).Msg("request rejected")
	ctl.sendJSON(c, errAck(requestID, err))
}

func (ctl *SignalWSController) sendJSON(c *WsSignalConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	if err := c.TrySend(b); err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("sid", string(c.id)).Msg("reply dropped")
	}
}
