package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrRoomNotFound, "RoomNotFound"},
		{fmt.Errorf("join ABC123: %w", ErrRoomFull), "RoomFull"},
		{ErrInvalidWinner, "InvalidWinner"},
		{ErrCodeExhaustion, "CodeExhaustion"},
		{errors.New("boom"), "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCode(tt.err))
		})
	}
	assert.True(t, IsGameError(ErrNotHost))
	assert.False(t, IsGameError(nil))
	assert.False(t, IsGameError(errors.New("boom")))
}
