package orch

import (
	"context"

	"github.com/dkeye/CommentClash/internal/domain"
	"github.com/rs/zerolog/log"
)

func canStart(r *domain.Room, requester domain.PlayerID) error {
	switch {
	case r.Host != requester:
		return domain.ErrNotHost
	case len(r.Players) < r.Settings.MinPlayers:
		return domain.ErrNotEnoughPlayers
	case r.State == domain.StatePlaying:
		return domain.ErrGameInProgress
	}
	return nil
}

// StartGame deals fresh hands and opens round zero. A finished game can be
// started again with the same table.
func (o *Orchestrator) StartGame(ctx context.Context, code domain.RoomCode, requester domain.PlayerID) (*domain.Room, error) {
	h, ok := o.lookup(ctx, code)
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	if err := h.View(func(r *domain.Room) error { return canStart(r, requester) }); err != nil {
		return nil, err
	}

	video := o.Videos.Pick(ctx)

	var out *domain.Room
	err := h.Update(func(r *domain.Room) error {
		if err := canStart(r, requester); err != nil {
			return err
		}
		o.deal(r)
		r.State = domain.StatePlaying
		r.CurrentRound = 0
		r.CurrentJudge = 0
		r.CurrentVideo = &video
		r.Submissions = []domain.Submission{}
		r.RoundJudged = false
		r.RoundStartTime = o.now()
		o.cacheSave(ctx, r)
		o.checkpoint(r.Clone())
		out = r.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("module", "orch").Str("code", string(code)).Int("players", len(out.Players)).Int("rounds", out.TotalRounds()).Msg("game started")
	return out, nil
}

// deal hands every player a contiguous chunk of a double-sized batch and
// zeroes the scores. The unused half of the batch is dropped.
func (o *Orchestrator) deal(r *domain.Room) {
	per := r.Settings.CardsPerPlayer
	batch := o.Captions.Generate(len(r.Players) * per * 2)
	for i, p := range r.Players {
		lo, hi := min(i*per, len(batch)), min((i+1)*per, len(batch))
		p.Hand = append([]domain.Caption{}, batch[lo:hi]...)
		p.Score = 0
	}
}

func (o *Orchestrator) SubmitCaption(ctx context.Context, code domain.RoomCode, playerID domain.PlayerID, captionID domain.CaptionID) (*domain.GameState, error) {
	h, ok := o.lookup(ctx, code)
	if !ok {
		return nil, domain.ErrRoomNotFound
	}

	var out *domain.GameState
	err := h.Update(func(r *domain.Room) error {
		if r.State != domain.StatePlaying || r.RoundJudged {
			return domain.ErrNotInProgress
		}
		if r.IsJudge(playerID) {
			return domain.ErrJudgeCannotSubmit
		}
		p := r.Player(playerID)
		if p == nil {
			return domain.ErrNotInGame
		}
		i := p.HandIndex(captionID)
		if i < 0 {
			return domain.ErrInvalidCaption
		}
		if _, done := r.Submission(playerID); done {
			return domain.ErrAlreadySubmitted
		}
		r.Submissions = append(r.Submissions, domain.Submission{
			PlayerID:  playerID,
			CaptionID: captionID,
			Caption:   p.Hand[i].Text,
		})
		o.cacheSave(ctx, r)
		out = domain.NewGameState(r.Clone())
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Debug().Str("module", "orch").Str("code", string(code)).Str("player", string(playerID)).Bool("all_submitted", out.AllSubmitted).Msg("caption submitted")
	return out, nil
}

func (o *Orchestrator) JudgeCaption(ctx context.Context, code domain.RoomCode, judgeID, winnerID domain.PlayerID) (*domain.RoundResult, error) {
	h, ok := o.lookup(ctx, code)
	if !ok {
		return nil, domain.ErrRoomNotFound
	}

	var res *domain.RoundResult
	err := h.Update(func(r *domain.Room) error {
		if r.State != domain.StatePlaying || r.RoundJudged {
			return domain.ErrNotInProgress
		}
		if !r.IsJudge(judgeID) {
			return domain.ErrNotTheJudge
		}
		win, ok := r.Submission(winnerID)
		winner := r.Player(winnerID)
		if !ok || winner == nil {
			return domain.ErrInvalidWinner
		}

		winner.Score++
		for _, s := range r.Submissions {
			if p := r.Player(s.PlayerID); p != nil {
				p.Discard(s.CaptionID)
			}
		}
		r.CurrentRound++
		r.RoundJudged = true

		res = &domain.RoundResult{
			Code:           r.Code,
			WinnerID:       winner.ID,
			WinnerName:     winner.Name,
			WinningCaption: win.Caption,
			Round:          r.CurrentRound,
		}
		if r.CurrentRound >= r.TotalRounds() {
			r.State = domain.StateComplete
			r.CurrentVideo = nil
			res.GameComplete = true
			res.FinalWinner = r.FinalWinner()
			o.checkpoint(r.Clone())
		}
		res.Scores = r.Scores()
		o.cacheSave(ctx, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	ev := log.Info().Str("module", "orch").Str("code", string(code)).Str("winner", string(res.WinnerID)).Int("round", res.Round)
	if res.GameComplete {
		ev = ev.Str("final_winner", string(res.FinalWinner.ID))
	}
	ev.Bool("complete", res.GameComplete).Msg("round judged")
	return res, nil
}

func canAdvance(r *domain.Room) error {
	if r.State != domain.StatePlaying || !r.RoundJudged {
		return domain.ErrNotInProgress
	}
	return nil
}

// StartNextRound moves the judge seat on, tops every hand back up and opens
// the next round. It only runs after the current round was judged.
func (o *Orchestrator) StartNextRound(ctx context.Context, code domain.RoomCode) (*domain.Room, error) {
	h, ok := o.lookup(ctx, code)
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	if err := h.View(canAdvance); err != nil {
		return nil, err
	}

	video := o.Videos.Pick(ctx)

	var out *domain.Room
	err := h.Update(func(r *domain.Room) error {
		if err := canAdvance(r); err != nil {
			return err
		}
		r.CurrentJudge = (r.CurrentJudge + 1) % len(r.Players)
		o.refill(r)
		r.CurrentVideo = &video
		r.Submissions = []domain.Submission{}
		r.RoundJudged = false
		r.RoundStartTime = o.now()
		o.cacheSave(ctx, r)
		out = r.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	judge := out.Judge()
	log.Info().Str("module", "orch").Str("code", string(code)).Int("round", out.CurrentRound).Str("judge", string(judge.ID)).Msg("next round")
	return out, nil
}

func (o *Orchestrator) refill(r *domain.Room) {
	per := r.Settings.CardsPerPlayer
	need := 0
	for _, p := range r.Players {
		if len(p.Hand) < per {
			need += per - len(p.Hand)
		}
	}
	if need == 0 {
		return
	}
	batch := o.Captions.Generate(max(len(r.Players)*3, need))
	next := 0
	for _, p := range r.Players {
		for len(p.Hand) < per && next < len(batch) {
			p.Hand = append(p.Hand, batch[next])
			next++
		}
	}
}
