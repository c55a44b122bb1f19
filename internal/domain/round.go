package domain

// CaptionID is opaque. Never parse it.
type CaptionID string

type Caption struct {
	ID   CaptionID `json:"id"`
	Text string    `json:"text"`
}

type Submission struct {
	PlayerID  PlayerID  `json:"playerId"`
	CaptionID CaptionID `json:"captionId"`
	Caption   string    `json:"caption"`
}

type Video struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Duration int    `json:"duration"`
	URL      string `json:"url"`
}

type Score struct {
	ID    PlayerID `json:"id"`
	Name  string   `json:"name"`
	Score int      `json:"score"`
}

// RoundResult is what judging a round produces; the adapter turns it into
// roundComplete and gameComplete events.
type RoundResult struct {
	Code           RoomCode `json:"roomCode"`
	WinnerID       PlayerID `json:"winner"`
	WinnerName     string   `json:"winnerName"`
	WinningCaption string   `json:"winningCaption"`
	Scores         []Score  `json:"scores"`
	Round          int      `json:"round"`
	GameComplete   bool     `json:"gameComplete"`
	FinalWinner    *Score   `json:"finalWinner,omitempty"`
}
