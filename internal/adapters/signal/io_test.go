package signal

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/dkeye/CommentClash/internal/app"
	"github.com/dkeye/CommentClash/internal/app/orch"
	"github.com/dkeye/CommentClash/internal/core"
	"github.com/dkeye/CommentClash/internal/domain"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})
	return &buf
}

func TestReject_LogLevelFollowsErrorKind(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCode  string
		wantLevel string
	}{
		{name: "rule violation", err: domain.ErrNotHost, wantCode: "NotHost", wantLevel: "debug"},
		{name: "server fault", err: errors.New("disk on fire"), wantCode: "internal", wantLevel: "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLog(t)
			ctl := &SignalWSController{}
			c := &WsSignalConn{id: "a", send: make(chan core.Frame, 1)}

			ctl.reject(c, "r1", tt.err)

			var got ack
			require.NoError(t, json.Unmarshal(<-c.send, &got))
			assert.Equal(t, "r1", got.RequestID)
			assert.False(t, got.Success)
			assert.Equal(t, tt.wantCode, got.Code)

			var line map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
			assert.Equal(t, tt.wantLevel, line["level"])
			assert.Equal(t, tt.wantCode, line["code"])
		})
	}
}

func TestAnnounceDeparture(t *testing.T) {
	playing := &domain.Room{Code: "ROOM01", State: domain.StatePlaying}
	tests := []struct {
		name string
		d    orch.Departure
		want []string
	}{
		{
			name: "plain leave",
			d:    orch.Departure{Code: "ROOM01", State: domain.NewGameState(playing)},
			want: []string{"playerLeft"},
		},
		{
			name: "round now ready",
			d:    orch.Departure{Code: "ROOM01", State: domain.NewGameState(playing), ReadyForJudging: true},
			want: []string{"playerLeft", "readyForJudging"},
		},
		{
			name: "game finished",
			d: orch.Departure{
				Code:   "ROOM01",
				State:  domain.NewGameState(&domain.Room{Code: "ROOM01", State: domain.StateComplete}),
				Result: &domain.RoundResult{Code: "ROOM01", GameComplete: true, FinalWinner: &domain.Score{ID: "b", Score: 2}},
			},
			want: []string{"playerLeft", "gameComplete"},
		},
		{
			name: "room closed",
			d:    orch.Departure{Code: "ROOM01"},
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := app.NewRegistry()
			hub := NewHub(reg, nil)
			b := &fakeConn{}
			hub.Attach("b", b)
			require.True(t, reg.Bind("b", "ROOM01"))
			ctl := &SignalWSController{Hub: hub}

			ctl.AnnounceDeparture(tt.d)

			var got []string
			for _, f := range b.frames {
				var ev eventFrame
				require.NoError(t, json.Unmarshal(f, &ev))
				got = append(got, string(ev.Event))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
