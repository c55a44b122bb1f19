package signal

func (ctl *SignalWSController) handlePing(c *WsSignalConn, env envelope) {
	resp := struct {
		Type      string `json:"type"`
		RequestID string `json:"requestId,omitempty"`
	}{
		Type:      "pong",
		RequestID: env.RequestID,
	}
	ctl.sendJSON(c, resp)
}
