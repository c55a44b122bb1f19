package app

import (
	"context"
	"sync"
	"time"

	"github.com/dkeye/CommentClash/internal/core"
	"github.com/dkeye/CommentClash/internal/domain"
	"github.com/rs/zerolog/log"
)

const (
	DefaultCheckpointQueue   = 256
	DefaultCheckpointTimeout = 5 * time.Second
)

// CheckpointWriter persists room snapshots in the background. Checkpoint
// never blocks; a full queue drops the snapshot and logs it.
type CheckpointWriter struct {
	store   core.GameStore
	timeout time.Duration
	queue   chan *domain.Room

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewCheckpointWriter(store core.GameStore, size int, timeout time.Duration) *CheckpointWriter {
	if size <= 0 {
		size = DefaultCheckpointQueue
	}
	if timeout <= 0 {
		timeout = DefaultCheckpointTimeout
	}
	w := &CheckpointWriter{
		store:   store,
		timeout: timeout,
		queue:   make(chan *domain.Room, size),
		done:    make(chan struct{}),
	}
	go w.loop()
	return w
}

func (w *CheckpointWriter) Checkpoint(room *domain.Room) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		log.Warn().Str("module", "app.checkpoint").Str("code", string(room.Code)).Msg("checkpoint after close dropped")
		return
	}
	select {
	case w.queue <- room:
	default:
		log.Error().Str("module", "app.checkpoint").Str("code", string(room.Code)).Msg("checkpoint queue full, snapshot dropped")
	}
}

func (w *CheckpointWriter) loop() {
	defer close(w.done)
	for room := range w.queue {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		err := w.store.SaveGame(ctx, room)
		cancel()
		if err != nil {
			log.Error().Err(err).Str("module", "app.checkpoint").Str("code", string(room.Code)).Str("state", string(room.State)).Msg("checkpoint failed")
			continue
		}
		log.Debug().Str("module", "app.checkpoint").Str("code", string(room.Code)).Str("state", string(room.State)).Msg("checkpoint saved")
	}
}

// Close stops accepting snapshots and waits until the queue is drained or
// ctx expires.
func (w *CheckpointWriter) Close(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
