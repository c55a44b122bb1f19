package app

import (
	"time"

	"github.com/dkeye/CommentClash/internal/core"
)

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) AfterFunc(d time.Duration, f func()) core.Timer {
	return time.AfterFunc(d, f)
}
