package app

import (
	"fmt"

	"github.com/dkeye/CommentClash/internal/domain"
)

type JudgeAction int

const (
	// RotateJudge hands the round to the next player in join order. Their
	// own submission is withdrawn so they can judge the rest.
	RotateJudge JudgeAction = iota
	// ResetRound also moves the judge seat forward but clears every
	// submission, so the round starts over with the new judge.
	ResetRound
)

// JudgePolicy decides what happens when the judge leaves mid-round.
type JudgePolicy interface {
	OnJudgeLeft(room *domain.Room) JudgeAction
}

type RotatePolicy struct{}

func (RotatePolicy) OnJudgeLeft(*domain.Room) JudgeAction { return RotateJudge }

type ResetPolicy struct{}

func (ResetPolicy) OnJudgeLeft(*domain.Room) JudgeAction { return ResetRound }

func JudgePolicyByName(name string) (JudgePolicy, error) {
	switch name {
	case "", "rotate":
		return RotatePolicy{}, nil
	case "reset":
		return ResetPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown judge policy %q", name)
	}
}

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	MarkSlow
	KickMember
	DropFrame
)

// BackpressurePolicy decides what to do with a connection whose send buffer
// is full.
type BackpressurePolicy interface {
	OnBackPressure(code domain.RoomCode, sid domain.PlayerID) BackpressureAction
}

type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(domain.RoomCode, domain.PlayerID) BackpressureAction {
	return KickMember
}
