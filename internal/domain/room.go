package domain

import (
	"strings"
	"time"
)

type (
	RoomCode  string
	RoomState string
)

const (
	StateLobby    RoomState = "lobby"
	StatePlaying  RoomState = "playing"
	StateComplete RoomState = "complete"
	StateEnded    RoomState = "ended"
)

const (
	RoomCodeLength = 6
	RoomCodeChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Settings are copied into a room at creation so a config reload never
// changes a game that is already running.
type Settings struct {
	RoundDurationMs int `json:"roundDurationMs"`
	CardsPerPlayer  int `json:"cardsPerPlayer"`
	Cycles          int `json:"cycles"`
	MinPlayers      int `json:"minPlayers"`
	MaxPlayers      int `json:"maxPlayers"`
}

// Room is the authoritative state of one game. Its JSON form is the cache
// and checkpoint document.
type Room struct {
	Code           RoomCode     `json:"code"`
	Host           PlayerID     `json:"host"`
	Players        []*Player    `json:"players"`
	State          RoomState    `json:"state"`
	Settings       Settings     `json:"settings"`
	CurrentRound   int          `json:"currentRound"`
	CurrentJudge   int          `json:"currentJudge"`
	CurrentVideo   *Video       `json:"currentVideo"`
	Submissions    []Submission `json:"submissions"`
	RoundJudged    bool         `json:"roundJudged"`
	RoundStartTime time.Time    `json:"roundStartTime"`
	CreatedAt      time.Time    `json:"createdAt"`
}

// ValidCode reports whether s is a well-formed room code.
func ValidCode(s string) bool {
	if len(s) != RoomCodeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

func NewRoom(code RoomCode, host *Player, settings Settings, now time.Time) *Room {
	return &Room{
		Code:        code,
		Host:        host.ID,
		Players:     []*Player{host},
		State:       StateLobby,
		Settings:    settings,
		Submissions: []Submission{},
		CreatedAt:   now,
	}
}

func (r *Room) PlayerIndex(id PlayerID) int {
	for i, p := range r.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (r *Room) Player(id PlayerID) *Player {
	if i := r.PlayerIndex(id); i >= 0 {
		return r.Players[i]
	}
	return nil
}

// Judge returns the player at the judge index, or nil when the index is out
// of range (empty room).
func (r *Room) Judge() *Player {
	if r.CurrentJudge < 0 || r.CurrentJudge >= len(r.Players) {
		return nil
	}
	return r.Players[r.CurrentJudge]
}

func (r *Room) IsJudge(id PlayerID) bool {
	j := r.Judge()
	return j != nil && j.ID == id
}

func (r *Room) IsFull() bool { return len(r.Players) >= r.Settings.MaxPlayers }

// TotalRounds is players × cycles: every player judges Cycles times.
func (r *Room) TotalRounds() int { return len(r.Players) * r.Settings.Cycles }

func (r *Room) Submission(id PlayerID) (Submission, bool) {
	for _, s := range r.Submissions {
		if s.PlayerID == id {
			return s, true
		}
	}
	return Submission{}, false
}

// DropSubmission removes the player's submission for the active round.
func (r *Room) DropSubmission(id PlayerID) {
	out := r.Submissions[:0]
	for _, s := range r.Submissions {
		if s.PlayerID != id {
			out = append(out, s)
		}
	}
	r.Submissions = out
}

// AllSubmitted is true once every non-judge player has a submission in the
// active round.
func (r *Room) AllSubmitted() bool {
	if r.State != StatePlaying || len(r.Players) < 2 {
		return false
	}
	return len(r.Submissions) == len(r.Players)-1
}

// RemovePlayer deletes the player and their submission and returns the
// index they held.
func (r *Room) RemovePlayer(id PlayerID) (int, bool) {
	i := r.PlayerIndex(id)
	if i < 0 {
		return -1, false
	}
	r.Players = append(r.Players[:i], r.Players[i+1:]...)
	r.DropSubmission(id)
	return i, true
}

func (r *Room) Scores() []Score {
	out := make([]Score, 0, len(r.Players))
	for _, p := range r.Players {
		out = append(out, Score{ID: p.ID, Name: p.Name, Score: p.Score})
	}
	return out
}

// FinalWinner is the highest score; ties go to the earliest joined player.
func (r *Room) FinalWinner() *Score {
	var best *Player
	for _, p := range r.Players {
		if best == nil || p.Score > best.Score {
			best = p
		}
	}
	if best == nil {
		return nil
	}
	return &Score{ID: best.ID, Name: best.Name, Score: best.Score}
}

// Clone returns a deep copy that shares nothing with r.
func (r *Room) Clone() *Room {
	cp := *r
	cp.Players = make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		pc := p.clone()
		cp.Players = append(cp.Players, &pc)
	}
	cp.Submissions = append([]Submission{}, r.Submissions...)
	if r.CurrentVideo != nil {
		v := *r.CurrentVideo
		cp.CurrentVideo = &v
	}
	return &cp
}

// GameState is a room snapshot plus the derived allSubmitted flag.
type GameState struct {
	*Room
	AllSubmitted bool `json:"allSubmitted"`
}

func NewGameState(r *Room) *GameState {
	return &GameState{Room: r, AllSubmitted: r.AllSubmitted()}
}

// ParseCode normalizes user input into a room code (trimmed, upper case).
func ParseCode(s string) RoomCode {
	return RoomCode(strings.ToUpper(strings.TrimSpace(s)))
}
