package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dkeye/CommentClash/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockGameStore struct {
	mock.Mock
}

func (m *MockGameStore) SaveGame(ctx context.Context, room *domain.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *MockGameStore) LoadGame(ctx context.Context, code domain.RoomCode) (*domain.Room, error) {
	args := m.Called(ctx, code)
	room, _ := args.Get(0).(*domain.Room)
	return room, args.Error(1)
}

func TestCheckpointWriter_DrainsOnClose(t *testing.T) {
	store := &MockGameStore{}
	store.On("SaveGame", mock.Anything, mock.AnythingOfType("*domain.Room")).Return(nil)

	w := NewCheckpointWriter(store, 8, time.Second)
	w.Checkpoint(lobbyRoom("AAAAAA"))
	w.Checkpoint(lobbyRoom("BBBBBB"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, w.Close(ctx))

	store.AssertNumberOfCalls(t, "SaveGame", 2)
}

func TestCheckpointWriter_StoreErrorIsSwallowed(t *testing.T) {
	store := &MockGameStore{}
	store.On("SaveGame", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
	store.On("SaveGame", mock.Anything, mock.Anything).Return(nil)

	w := NewCheckpointWriter(store, 8, time.Second)
	w.Checkpoint(lobbyRoom("AAAAAA"))
	w.Checkpoint(lobbyRoom("BBBBBB"))
	require.NoError(t, w.Close(context.Background()))

	store.AssertNumberOfCalls(t, "SaveGame", 2)
}

func TestCheckpointWriter_AfterCloseIsDropped(t *testing.T) {
	store := &MockGameStore{}
	w := NewCheckpointWriter(store, 1, time.Second)
	require.NoError(t, w.Close(context.Background()))
	require.NoError(t, w.Close(context.Background()))

	assert.NotPanics(t, func() { w.Checkpoint(lobbyRoom("AAAAAA")) })
	store.AssertNotCalled(t, "SaveGame", mock.Anything, mock.Anything)
}
