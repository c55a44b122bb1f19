package core

import (
	"sync"
	"testing"
	"time"

	"github.com/dkeye/CommentClash/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandle() RoomHandle {
	host := domain.NewPlayer("host", "Host")
	return NewRoomHandle(domain.NewRoom("ABC123", host, domain.Settings{MaxPlayers: 8}, time.Now()))
}

func TestRoomHandle_UpdateSerializes(t *testing.T) {
	h := newTestHandle()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = h.Update(func(r *domain.Room) error {
				r.CurrentRound++
				return nil
			})
		}()
	}
	wg.Wait()

	snap, err := h.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 100, snap.CurrentRound)
	assert.Equal(t, domain.RoomCode("ABC123"), h.Code())
}

func TestRoomHandle_SnapshotIsDetached(t *testing.T) {
	h := newTestHandle()
	snap, err := h.Snapshot()
	require.NoError(t, err)
	snap.Players[0].Score = 42

	again, err := h.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 0, again.Players[0].Score)
}

func TestRoomHandle_ClosedRejectsUpdates(t *testing.T) {
	h := newTestHandle()
	require.NoError(t, h.Update(func(r *domain.Room) error {
		h.Close()
		return nil
	}))

	assert.True(t, h.Closed())
	err := h.Update(func(r *domain.Room) error { return nil })
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
	_, err = h.Snapshot()
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}
