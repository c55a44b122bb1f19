package signal

import "github.com/dkeye/CommentClash/internal/domain"

func (ctl *SignalWSController) handleWhoAmI(c *WsSignalConn, env envelope) {
	resp := struct {
		Type      string          `json:"type"`
		RequestID string          `json:"requestId,omitempty"`
		PlayerID  domain.PlayerID `json:"playerId"`
		Nickname  string          `json:"nickname,omitempty"`
		Room      domain.RoomCode `json:"room,omitempty"`
	}{
		Type:      "whoami",
		RequestID: env.RequestID,
		PlayerID:  c.id,
		Nickname:  c.nickname,
	}
	if code, ok := ctl.Orch.Registry.RoomOf(c.id); ok {
		resp.Room = code
	}
	ctl.sendJSON(c, resp)
}
