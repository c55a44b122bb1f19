package orch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/CommentClash/internal/app"
	"github.com/dkeye/CommentClash/internal/core"
	"github.com/dkeye/CommentClash/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	os.Exit(m.Run())
}

// seqCaptions hands out c1, c2, ... so tests can predict ids.
type seqCaptions struct {
	mu sync.Mutex
	n  int
}

func (s *seqCaptions) Generate(count int) []domain.Caption {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Caption, 0, max(count, 0))
	for i := 0; i < count; i++ {
		s.n++
		out = append(out, domain.Caption{ID: domain.CaptionID(fmt.Sprintf("c%d", s.n)), Text: fmt.Sprintf("caption %d", s.n)})
	}
	return out
}

type fixedVideo struct{}

func (fixedVideo) Pick(context.Context) domain.Video {
	return domain.Video{ID: "1", Filename: "clip.mp4", Duration: 30, URL: "https://videos.test/clip.mp4"}
}

type fakeClock struct{ at time.Time }

func (c fakeClock) Now() time.Time { return c.at }

func (fakeClock) AfterFunc(d time.Duration, f func()) core.Timer { return time.AfterFunc(d, f) }

// manualClock holds scheduled work until the test fires it.
type manualClock struct {
	fakeClock
	mu      sync.Mutex
	pending []func()
}

type heldTimer struct{}

func (heldTimer) Stop() bool { return false }

func (c *manualClock) AfterFunc(_ time.Duration, f func()) core.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = append(c.pending, f)
	return heldTimer{}
}

func (c *manualClock) fire() {
	c.mu.Lock()
	due := c.pending
	c.pending = nil
	c.mu.Unlock()
	for _, f := range due {
		f()
	}
}

type recordingCheckpointer struct {
	mu    sync.Mutex
	rooms []*domain.Room
}

func (r *recordingCheckpointer) Checkpoint(room *domain.Room) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms = append(r.rooms, room)
}

func (r *recordingCheckpointer) states() []domain.RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.RoomState, 0, len(r.rooms))
	for _, room := range r.rooms {
		out = append(out, room.State)
	}
	return out
}

// memCache stores the JSON document the way the Redis adapter does.
type memCache struct {
	mu   sync.Mutex
	docs map[domain.RoomCode][]byte
}

func newMemCache() *memCache { return &memCache{docs: map[domain.RoomCode][]byte{}} }

func (c *memCache) Load(_ context.Context, code domain.RoomCode) (*domain.Room, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc, ok := c.docs[code]
	if !ok {
		return nil, false, nil
	}
	var room domain.Room
	if err := json.Unmarshal(doc, &room); err != nil {
		return nil, false, err
	}
	return &room, true, nil
}

func (c *memCache) Save(_ context.Context, room *domain.Room) error {
	doc, err := json.Marshal(room)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs[room.Code] = doc
	return nil
}

func (c *memCache) Delete(_ context.Context, code domain.RoomCode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.docs, code)
	return nil
}

func (c *memCache) has(code domain.RoomCode) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.docs[code]
	return ok
}

type MockRoomCache struct {
	mock.Mock
}

func (m *MockRoomCache) Load(ctx context.Context, code domain.RoomCode) (*domain.Room, bool, error) {
	args := m.Called(ctx, code)
	room, _ := args.Get(0).(*domain.Room)
	return room, args.Bool(1), args.Error(2)
}

func (m *MockRoomCache) Save(ctx context.Context, room *domain.Room) error {
	return m.Called(ctx, room).Error(0)
}

func (m *MockRoomCache) Delete(ctx context.Context, code domain.RoomCode) error {
	return m.Called(ctx, code).Error(0)
}

var testSettings = domain.Settings{
	RoundDurationMs: 45000,
	CardsPerPlayer:  7,
	Cycles:          2,
	MinPlayers:      3,
	MaxPlayers:      8,
}

var testNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func newTestOrchestrator() *Orchestrator {
	return &Orchestrator{
		Registry:    app.NewRegistry(),
		Rooms:       app.NewRoomManager(0),
		Captions:    &seqCaptions{},
		Videos:      fixedVideo{},
		Checkpoints: &recordingCheckpointer{},
		Clock:       fakeClock{at: testNow},
		Settings:    testSettings,
	}
}

func pid(i int) domain.PlayerID { return domain.PlayerID(fmt.Sprintf("p%d", i)) }

// seatPlayers opens a room hosted by p0 and joins p1..p(n-1).
func seatPlayers(t *testing.T, o *Orchestrator, n int) domain.RoomCode {
	t.Helper()
	ctx := context.Background()
	room, err := o.CreateRoom(ctx, pid(0), "P0")
	require.NoError(t, err)
	for i := 1; i < n; i++ {
		_, err := o.JoinRoom(ctx, room.Code, pid(i), fmt.Sprintf("P%d", i))
		require.NoError(t, err)
	}
	return room.Code
}

func startedGame(t *testing.T, o *Orchestrator, n int) domain.RoomCode {
	t.Helper()
	code := seatPlayers(t, o, n)
	_, err := o.StartGame(context.Background(), code, pid(0))
	require.NoError(t, err)
	return code
}

func state(t *testing.T, o *Orchestrator, code domain.RoomCode) *domain.GameState {
	t.Helper()
	gs, ok := o.GetGameState(context.Background(), code)
	require.True(t, ok)
	return gs
}

// submitAll has every non-judge play the first card in hand.
func submitAll(t *testing.T, o *Orchestrator, code domain.RoomCode) *domain.GameState {
	t.Helper()
	gs := state(t, o, code)
	var last *domain.GameState
	for _, p := range gs.Players {
		if gs.IsJudge(p.ID) {
			continue
		}
		var err error
		last, err = o.SubmitCaption(context.Background(), code, p.ID, p.Hand[0].ID)
		require.NoError(t, err)
	}
	return last
}
