package orch

import (
	"context"

	"github.com/dkeye/CommentClash/internal/app"
	"github.com/dkeye/CommentClash/internal/core"
	"github.com/dkeye/CommentClash/internal/domain"
	"github.com/rs/zerolog/log"
)

func (o *Orchestrator) CreateRoom(ctx context.Context, hostID domain.PlayerID, hostName string) (*domain.Room, error) {
	if _, bound := o.Registry.RoomOf(hostID); bound {
		return nil, domain.ErrDuplicatePlayer
	}
	now := o.now()
	h, err := o.Rooms.Create(func(code domain.RoomCode) *domain.Room {
		return domain.NewRoom(code, domain.NewPlayer(hostID, hostName), o.Settings, now)
	})
	if err != nil {
		return nil, err
	}

	var out *domain.Room
	err = h.Update(func(r *domain.Room) error {
		if !o.Registry.Bind(hostID, r.Code) {
			h.Close()
			return domain.ErrDuplicatePlayer
		}
		o.cacheSave(ctx, r)
		out = r.Clone()
		return nil
	})
	if err != nil {
		o.Rooms.Remove(h.Code())
		return nil, err
	}
	log.Info().Str("module", "orch").Str("code", string(out.Code)).Str("host", string(hostID)).Msg("room opened")
	return out, nil
}

func (o *Orchestrator) JoinRoom(ctx context.Context, code domain.RoomCode, playerID domain.PlayerID, playerName string) (*domain.Room, error) {
	h, ok := o.lookup(ctx, code)
	if !ok {
		return nil, domain.ErrRoomNotFound
	}

	var out *domain.Room
	err := h.Update(func(r *domain.Room) error {
		switch {
		case r.State != domain.StateLobby:
			return domain.ErrGameInProgress
		case r.IsFull():
			return domain.ErrRoomFull
		case r.PlayerIndex(playerID) >= 0:
			return domain.ErrDuplicatePlayer
		}
		if !o.Registry.Bind(playerID, r.Code) {
			return domain.ErrDuplicatePlayer
		}
		r.Players = append(r.Players, domain.NewPlayer(playerID, playerName))
		o.cacheSave(ctx, r)
		out = r.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("module", "orch").Str("code", string(code)).Str("player", string(playerID)).Int("players", len(out.Players)).Msg("player joined")
	return out, nil
}

// GetGameState returns a snapshot with the derived allSubmitted flag,
// reading through the cache when the room is not in memory.
func (o *Orchestrator) GetGameState(ctx context.Context, code domain.RoomCode) (*domain.GameState, bool) {
	h, ok := o.lookup(ctx, code)
	if !ok {
		return nil, false
	}
	snap, err := h.Snapshot()
	if err != nil {
		return nil, false
	}
	return domain.NewGameState(snap), true
}

// Departure reports what a player leaving did to their room.
type Departure struct {
	Code domain.RoomCode
	// State is the room after the departure, nil once the room closed.
	State *domain.GameState
	// ReadyForJudging is set when the departure left every remaining
	// non-judge with a submission.
	ReadyForJudging bool
	// Result carries the final standings when the departure finished the game.
	Result *domain.RoundResult
}

// HandleDisconnect removes the connection from its room. It returns the room
// code so the caller can broadcast playerLeft; unknown ids are a no-op.
func (o *Orchestrator) HandleDisconnect(ctx context.Context, sid domain.PlayerID) (domain.RoomCode, bool) {
	d, ok := o.Depart(ctx, sid)
	return d.Code, ok
}

// Depart is HandleDisconnect with the round changes the departure caused.
func (o *Orchestrator) Depart(ctx context.Context, sid domain.PlayerID) (Departure, bool) {
	code, ok := o.Registry.RoomOf(sid)
	if !ok {
		return Departure{}, false
	}
	h, ok := o.Rooms.Get(code)
	if !ok {
		o.Registry.Unbind(sid)
		return Departure{}, false
	}

	var (
		d       Departure
		removed bool
	)
	err := h.Update(func(r *domain.Room) error {
		o.Registry.Unbind(sid)
		d, removed = o.removePlayer(ctx, h, r, sid)
		return nil
	})
	// The room may have been closed under us; the index entry is gone either way.
	o.Registry.Unbind(sid)
	if err != nil || !removed {
		return Departure{}, false
	}
	if d.State == nil {
		o.Rooms.Remove(code)
	}
	log.Info().Str("module", "orch").Str("code", string(code)).Str("player", string(sid)).Bool("room_closed", d.State == nil).Msg("player left")
	return d, true
}

// removePlayer takes sid out of r and repairs the round around the gap. It
// runs under the room lock and closes the handle when the room empties.
func (o *Orchestrator) removePlayer(ctx context.Context, h core.RoomHandle, r *domain.Room, sid domain.PlayerID) (Departure, bool) {
	wasJudge := r.State == domain.StatePlaying && r.IsJudge(sid)
	wasReady := r.AllSubmitted()
	idx, ok := r.RemovePlayer(sid)
	if !ok {
		return Departure{}, false
	}
	d := Departure{Code: r.Code}

	if len(r.Players) == 0 {
		h.Close()
		o.cacheDelete(ctx, r.Code)
		return d, true
	}
	if r.Host == sid {
		r.Host = r.Players[0].ID
		log.Info().Str("module", "orch").Str("code", string(r.Code)).Str("host", string(r.Host)).Msg("host promoted")
	}
	if r.State == domain.StatePlaying {
		o.reseatJudge(r, idx, wasJudge)
		switch {
		case len(r.Players) < r.Settings.MinPlayers:
			r.State = domain.StateEnded
			r.CurrentVideo = nil
			o.checkpoint(r.Clone())
			log.Info().Str("module", "orch").Str("code", string(r.Code)).Int("players", len(r.Players)).Msg("game ended, not enough players")
		case r.CurrentRound >= r.TotalRounds():
			r.State = domain.StateComplete
			r.CurrentVideo = nil
			o.checkpoint(r.Clone())
			d.Result = &domain.RoundResult{
				Code:         r.Code,
				Scores:       r.Scores(),
				Round:        r.CurrentRound,
				GameComplete: true,
				FinalWinner:  r.FinalWinner(),
			}
			log.Info().Str("module", "orch").Str("code", string(r.Code)).Msg("game complete after departure")
		}
	} else if r.CurrentJudge >= len(r.Players) {
		r.CurrentJudge = 0
	}
	o.cacheSave(ctx, r)
	d.State = domain.NewGameState(r.Clone())
	d.ReadyForJudging = !wasReady && !r.RoundJudged && d.State.AllSubmitted
	return d, true
}

// reseatJudge keeps the judge index pointing at the right person after the
// player at idx was removed.
func (o *Orchestrator) reseatJudge(r *domain.Room, idx int, wasJudge bool) {
	n := len(r.Players)
	switch {
	case idx < r.CurrentJudge:
		r.CurrentJudge--
	case wasJudge && r.RoundJudged:
		// Round already decided: step back so the next rotation lands on the
		// player who followed the departed judge.
		r.CurrentJudge = (idx - 1 + n) % n
	case wasJudge:
		if r.CurrentJudge >= n {
			r.CurrentJudge = 0
		}
		next := r.Judge()
		switch o.policy().OnJudgeLeft(r) {
		case app.ResetRound:
			r.Submissions = r.Submissions[:0]
		default:
			r.DropSubmission(next.ID)
		}
		log.Info().Str("module", "orch").Str("code", string(r.Code)).Str("judge", string(next.ID)).Msg("judge left, seat moved on")
	}
	if r.CurrentJudge >= n {
		r.CurrentJudge = 0
	}
}
