package http_test

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/CommentClash/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wsMsg struct {
	Type      string              `json:"type"`
	RequestID string              `json:"requestId"`
	Success   bool                `json:"success"`
	Error     string              `json:"error"`
	Code      string              `json:"code"`
	PlayerID  domain.PlayerID     `json:"playerId"`
	Event     string              `json:"event"`
	Room      json.RawMessage     `json:"room"`
	Data      json.RawMessage     `json:"data"`
	Result    *domain.RoundResult `json:"result"`
}

type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
	id   domain.PlayerID
}

func dial(t *testing.T, srv *httptest.Server) *wsClient {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/signal"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &wsClient{t: t, conn: conn}
}

func (c *wsClient) send(v any) {
	c.t.Helper()
	require.NoError(c.t, c.conn.WriteJSON(v))
}

// next reads until a message matches.
func (c *wsClient) next(match func(wsMsg) bool) wsMsg {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var m wsMsg
		require.NoError(c.t, c.conn.ReadJSON(&m))
		if match(m) {
			return m
		}
	}
}

func (c *wsClient) ack(requestID string) wsMsg {
	c.t.Helper()
	return c.next(func(m wsMsg) bool { return m.Type == "ack" && m.RequestID == requestID })
}

func (c *wsClient) event(name string) wsMsg {
	c.t.Helper()
	return c.next(func(m wsMsg) bool { return m.Type == "event" && m.Event == name })
}

func decodeRoom(t *testing.T, raw json.RawMessage) domain.Room {
	t.Helper()
	var r domain.Room
	require.NoError(t, json.Unmarshal(raw, &r))
	return r
}

func TestWebSocketRound(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.engine)
	t.Cleanup(srv.Close)

	ann, bob, cid := dial(t, srv), dial(t, srv), dial(t, srv)

	ann.send(map[string]any{"type": "ping", "requestId": "p"})
	pong := ann.next(func(m wsMsg) bool { return m.Type == "pong" })
	assert.Equal(t, "p", pong.RequestID)

	ann.send(map[string]any{"type": "createRoom", "requestId": "1", "playerName": "Ann"})
	created := ann.ack("1")
	require.True(t, created.Success, created.Error)
	ann.id = created.PlayerID
	code := decodeRoom(t, created.Room).Code

	for i, c := range []*wsClient{bob, cid} {
		rid := []string{"2", "3"}[i]
		c.send(map[string]any{"type": "joinRoom", "requestId": rid, "roomCode": strings.ToLower(string(code)), "playerName": "P"})
		joined := c.ack(rid)
		require.True(t, joined.Success, joined.Error)
		c.id = joined.PlayerID
		ann.event("playerJoined")
	}

	bob.send(map[string]any{"type": "startGame", "requestId": "4", "roomCode": code})
	denied := bob.ack("4")
	assert.False(t, denied.Success)
	assert.Equal(t, "NotHost", denied.Code)

	ann.send(map[string]any{"type": "startGame", "requestId": "5", "roomCode": code})
	require.True(t, ann.ack("5").Success)
	started := decodeRoom(t, bob.event("gameStarted").Data)
	require.Equal(t, domain.StatePlaying, started.State)
	require.True(t, started.IsJudge(ann.id))

	for i, c := range []*wsClient{bob, cid} {
		rid := []string{"6", "7"}[i]
		card := started.Player(c.id).Hand[0].ID
		c.send(map[string]any{"type": "submitCaption", "requestId": rid, "roomCode": code, "captionId": card})
		require.True(t, c.ack(rid).Success)
	}
	ready := decodeRoom(t, ann.event("readyForJudging").Data)
	assert.Len(t, ready.Submissions, 2)

	ann.send(map[string]any{"type": "judgeCaption", "requestId": "8", "roomCode": code, "winnerId": bob.id})
	judged := ann.ack("8")
	require.True(t, judged.Success, judged.Error)
	require.NotNil(t, judged.Result)
	assert.Equal(t, bob.id, judged.Result.WinnerID)

	var result domain.RoundResult
	require.NoError(t, json.Unmarshal(cid.event("roundComplete").Data, &result))
	assert.Equal(t, 1, result.Round)

	next := decodeRoom(t, cid.event("nextRound").Data)
	assert.True(t, next.IsJudge(bob.id))
	assert.False(t, next.RoundJudged)
	for _, p := range next.Players {
		assert.Len(t, p.Hand, 3)
	}

	cid.send(map[string]any{"type": "whoami", "requestId": "9"})
	who := cid.next(func(m wsMsg) bool { return m.Type == "whoami" })
	assert.Equal(t, cid.id, who.PlayerID)

	// Dropping below three players ends the game for the rest.
	require.NoError(t, cid.conn.Close())
	left := decodeRoom(t, ann.event("playerLeft").Data)
	assert.Equal(t, domain.StateEnded, left.State)
	assert.Len(t, left.Players, 2)
}

func TestWebSocketErrors(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.engine)
	t.Cleanup(srv.Close)
	c := dial(t, srv)

	require.NoError(t, c.conn.WriteMessage(websocket.TextMessage, []byte("{nope")))
	bad := c.next(func(m wsMsg) bool { return m.Type == "ack" })
	assert.Equal(t, "BadPayload", bad.Code)

	c.send(map[string]any{"type": "dance", "requestId": "1"})
	assert.Equal(t, "UnknownType", c.ack("1").Code)

	c.send(map[string]any{"type": "joinRoom", "requestId": "2", "roomCode": "ZZZZZZ"})
	assert.Equal(t, "RoomNotFound", c.ack("2").Code)

	c.send(map[string]any{"type": "getState", "requestId": "3", "roomCode": "ZZZZZZ"})
	assert.Equal(t, "RoomNotFound", c.ack("3").Code)

	// Creating twice moves the socket into the new room.
	c.send(map[string]any{"type": "createRoom", "requestId": "4"})
	first := decodeRoom(t, c.ack("4").Room)
	assert.Equal(t, domain.DefaultPlayerName, first.Players[0].Name)
	c.send(map[string]any{"type": "createRoom", "requestId": "5"})
	second := decodeRoom(t, c.ack("5").Room)
	assert.NotEqual(t, first.Code, second.Code)

	_, ok := env.orch.GetGameState(t.Context(), first.Code)
	assert.False(t, ok)
}

// table seats one socket per name; the first creates the room and hosts.
type table struct {
	t       *testing.T
	code    domain.RoomCode
	clients []*wsClient
	byID    map[domain.PlayerID]*wsClient
	rid     int
}

func seatTable(t *testing.T, srv *httptest.Server, names ...string) *table {
	t.Helper()
	tb := &table{t: t, byID: map[domain.PlayerID]*wsClient{}}
	for i, name := range names {
		c := dial(t, srv)
		msg := map[string]any{"type": "createRoom", "playerName": name}
		if i > 0 {
			msg = map[string]any{"type": "joinRoom", "roomCode": tb.code, "playerName": name}
		}
		rid := tb.nextID()
		msg["requestId"] = rid
		c.send(msg)
		res := c.ack(rid)
		require.True(t, res.Success, res.Error)
		c.id = res.PlayerID
		if i == 0 {
			tb.code = decodeRoom(t, res.Room).Code
		}
		tb.clients = append(tb.clients, c)
		tb.byID[c.id] = c
	}
	return tb
}

func (tb *table) nextID() string {
	tb.rid++
	return fmt.Sprintf("r%d", tb.rid)
}

func (tb *table) request(c *wsClient, msg map[string]any) wsMsg {
	tb.t.Helper()
	rid := tb.nextID()
	msg["requestId"] = rid
	msg["roomCode"] = tb.code
	c.send(msg)
	res := c.ack(rid)
	require.True(tb.t, res.Success, res.Error)
	return res
}

func (tb *table) start() domain.Room {
	tb.t.Helper()
	res := tb.request(tb.clients[0], map[string]any{"type": "startGame"})
	return decodeRoom(tb.t, res.Room)
}

// submit plays the first card of every listed non-judge.
func (tb *table) submit(room domain.Room, who ...*wsClient) {
	tb.t.Helper()
	for _, c := range who {
		card := room.Player(c.id).Hand[0].ID
		tb.request(c, map[string]any{"type": "submitCaption", "captionId": card})
	}
}

func (tb *table) nonJudges(room domain.Room) []*wsClient {
	var out []*wsClient
	for _, p := range room.Players {
		if !room.IsJudge(p.ID) {
			out = append(out, tb.byID[p.ID])
		}
	}
	return out
}

// playRound has everyone submit, the judge pick the first submitter and
// returns the room the following nextRound event carries.
func (tb *table) playRound(room domain.Room) domain.Room {
	tb.t.Helper()
	players := tb.nonJudges(room)
	tb.submit(room, players...)
	tb.request(tb.byID[room.Judge().ID], map[string]any{"type": "judgeCaption", "winnerId": players[0].id})
	return decodeRoom(tb.t, tb.clients[0].event("nextRound").Data)
}

type wsGameState struct {
	State        domain.RoomState    `json:"state"`
	Players      []*domain.Player    `json:"players"`
	Submissions  []domain.Submission `json:"submissions"`
	AllSubmitted bool                `json:"allSubmitted"`
}

func TestWebSocketDepartureCompletesSubmissions(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.engine)
	t.Cleanup(srv.Close)

	tb := seatTable(t, srv, "Ann", "Bob", "Cid", "Dan")
	ann, bob, cid, dan := tb.clients[0], tb.clients[1], tb.clients[2], tb.clients[3]
	room := tb.start()
	require.True(t, room.IsJudge(ann.id))

	tb.submit(room, bob, cid)
	require.NoError(t, dan.conn.Close())

	var left wsGameState
	require.NoError(t, json.Unmarshal(ann.event("playerLeft").Data, &left))
	assert.Equal(t, domain.StatePlaying, left.State)
	assert.Len(t, left.Players, 3)

	var ready wsGameState
	require.NoError(t, json.Unmarshal(ann.event("readyForJudging").Data, &ready))
	assert.True(t, ready.AllSubmitted)
	assert.Len(t, ready.Submissions, 2)

	// The judge can finish the round the departure unblocked.
	res := tb.request(ann, map[string]any{"type": "judgeCaption", "winnerId": cid.id})
	require.NotNil(t, res.Result)
	assert.Equal(t, cid.id, res.Result.WinnerID)
}

func TestWebSocketDepartureCompletesGame(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.engine)
	t.Cleanup(srv.Close)

	// Four players with one cycle play four rounds; after three are judged a
	// departure shrinks the game to three rounds, which are already played.
	tb := seatTable(t, srv, "Ann", "Bob", "Cid", "Dan")
	ann, dan := tb.clients[0], tb.clients[3]
	room := tb.start()
	for range 3 {
		room = tb.playRound(room)
	}
	require.Equal(t, 3, room.CurrentRound)
	require.Equal(t, domain.StatePlaying, room.State)

	require.NoError(t, dan.conn.Close())

	var left wsGameState
	require.NoError(t, json.Unmarshal(ann.event("playerLeft").Data, &left))
	assert.Equal(t, domain.StateComplete, left.State)

	var done domain.RoundResult
	require.NoError(t, json.Unmarshal(ann.event("gameComplete").Data, &done))
	assert.True(t, done.GameComplete)
	assert.Equal(t, 3, done.Round)
	assert.Len(t, done.Scores, 3)
	require.NotNil(t, done.FinalWinner)
	total := 0
	for _, s := range done.Scores {
		total += s.Score
	}
	assert.LessOrEqual(t, total, 3)
}
