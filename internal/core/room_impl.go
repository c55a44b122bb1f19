package core

import (
	"sync"

	"github.com/dkeye/CommentClash/internal/domain"
)

// roomImpl is a threadsafe in-memory room.
// It never performs I/O itself; callers decide what runs under the lock.
type roomImpl struct {
	code   domain.RoomCode
	mu     sync.Mutex
	room   *domain.Room
	closed bool
}

func NewRoomHandle(room *domain.Room) RoomHandle {
	return &roomImpl{code: room.Code, room: room}
}

func (r *roomImpl) Code() domain.RoomCode { return r.code }

func (r *roomImpl) Update(fn func(*domain.Room) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return domain.ErrRoomNotFound
	}
	return fn(r.room)
}

func (r *roomImpl) View(fn func(*domain.Room) error) error {
	return r.Update(fn)
}

func (r *roomImpl) Snapshot() (*domain.Room, error) {
	var out *domain.Room
	err := r.View(func(room *domain.Room) error {
		out = room.Clone()
		return nil
	})
	return out, err
}

// Close is only valid while the lock is held by Update.
func (r *roomImpl) Close() { r.closed = true }

func (r *roomImpl) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
