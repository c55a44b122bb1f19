package app

import (
	"sync"
	"testing"
	"time"

	"github.com/dkeye/CommentClash/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lobbyRoom(code domain.RoomCode) *domain.Room {
	return domain.NewRoom(code, domain.NewPlayer("host", "Host"), domain.Settings{MaxPlayers: 8}, time.Now())
}

// sequenceCodes replays codes in order and then repeats the last one.
func sequenceCodes(codes ...domain.RoomCode) CodeGenerator {
	var mu sync.Mutex
	i := 0
	return func() domain.RoomCode {
		mu.Lock()
		defer mu.Unlock()
		c := codes[min(i, len(codes)-1)]
		i++
		return c
	}
}

func TestGenerateRoomCode(t *testing.T) {
	seen := make(map[domain.RoomCode]struct{})
	for i := 0; i < 1000; i++ {
		c := GenerateRoomCode()
		require.True(t, domain.ValidCode(string(c)), "bad code %q", c)
		seen[c] = struct{}{}
	}
	assert.Greater(t, len(seen), 990)
}

func TestRoomManager_CreateRetriesOnCollision(t *testing.T) {
	rm := NewRoomManagerWithCodes(sequenceCodes("AAAAAA", "AAAAAA", "BBBBBB"), 5)

	first, err := rm.Create(lobbyRoom)
	require.NoError(t, err)
	assert.Equal(t, domain.RoomCode("AAAAAA"), first.Code())

	second, err := rm.Create(lobbyRoom)
	require.NoError(t, err)
	assert.Equal(t, domain.RoomCode("BBBBBB"), second.Code())
}

func TestRoomManager_CodeExhaustion(t *testing.T) {
	rm := NewRoomManagerWithCodes(sequenceCodes("AAAAAA"), 3)
	_, err := rm.Create(lobbyRoom)
	require.NoError(t, err)

	_, err = rm.Create(lobbyRoom)
	assert.ErrorIs(t, err, domain.ErrCodeExhaustion)
}

func TestRoomManager_InstallKeepsLiveRoom(t *testing.T) {
	rm := NewRoomManagerWithCodes(sequenceCodes("AAAAAA"), 1)
	live, err := rm.Create(lobbyRoom)
	require.NoError(t, err)

	got := rm.Install(lobbyRoom("AAAAAA"))
	assert.Same(t, live, got)

	fresh := rm.Install(lobbyRoom("CCCCCC"))
	h, ok := rm.Get("CCCCCC")
	require.True(t, ok)
	assert.Same(t, fresh, h)
}

func TestRoomManager_ListAndRemove(t *testing.T) {
	rm := NewRoomManagerWithCodes(sequenceCodes("BBBBBB", "AAAAAA"), 1)
	_, err := rm.Create(lobbyRoom)
	require.NoError(t, err)
	_, err = rm.Create(lobbyRoom)
	require.NoError(t, err)

	list := rm.List()
	require.Len(t, list, 2)
	assert.Equal(t, domain.RoomCode("AAAAAA"), list[0].Code)
	assert.Equal(t, 1, list[0].PlayerCount)
	assert.Equal(t, 8, list[0].MaxPlayers)
	assert.Equal(t, domain.StateLobby, list[0].State)

	rm.Remove("AAAAAA")
	_, ok := rm.Get("AAAAAA")
	assert.False(t, ok)
	assert.Len(t, rm.List(), 1)
}
