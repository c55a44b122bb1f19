package signal

import (
	"github.com/dkeye/CommentClash/internal/core"
	"github.com/dkeye/CommentClash/internal/domain"
)

// Transport-level ack codes; game errors use domain.ErrorCode.
const (
	codeBadPayload  = "BadPayload"
	codeRateLimited = "RateLimited"
	codeUnknownType = "UnknownType"
)

type envelope struct {
	Type      string `json:"type"`
	RequestID string `json:"requestId"`
}

type createRoomPayload struct {
	PlayerName string `json:"playerName"`
}

type joinRoomPayload struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

type roomPayload struct {
	RoomCode string `json:"roomCode"`
}

type submitCaptionPayload struct {
	RoomCode  string `json:"roomCode"`
	CaptionID string `json:"captionId"`
}

type judgeCaptionPayload struct {
	RoomCode string `json:"roomCode"`
	WinnerID string `json:"winnerId"`
}

type ack struct {
	Type      string              `json:"type"`
	RequestID string              `json:"requestId,omitempty"`
	Success   bool                `json:"success"`
	Error     string              `json:"error,omitempty"`
	Code      string              `json:"code,omitempty"`
	PlayerID  domain.PlayerID     `json:"playerId,omitempty"`
	Room      any                 `json:"room,omitempty"`
	Result    *domain.RoundResult `json:"result,omitempty"`
}

func okAck(requestID string) ack {
	return ack{Type: "ack", RequestID: requestID, Success: true}
}

func failAck(requestID, code, msg string) ack {
	return ack{Type: "ack", RequestID: requestID, Error: msg, Code: code}
}

func errAck(requestID string, err error) ack {
	return failAck(requestID, domain.ErrorCode(err), err.Error())
}

// eventFrame is the outbound shape of a room broadcast.
type eventFrame struct {
	Type  string         `json:"type"`
	Event core.EventType `json:"event"`
	Data  any            `json:"data"`
}
