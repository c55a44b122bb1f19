package domain

import "errors"

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomFull          = errors.New("room is full")
	ErrDuplicatePlayer   = errors.New("already in room")
	ErrGameInProgress    = errors.New("game already in progress")
	ErrNotHost           = errors.New("only host can start the game")
	ErrNotEnoughPlayers  = errors.New("not enough players to start")
	ErrNotInProgress     = errors.New("game not in progress")
	ErrJudgeCannotSubmit = errors.New("judge cannot submit a caption")
	ErrNotInGame         = errors.New("player not in game")
	ErrInvalidCaption    = errors.New("invalid caption")
	ErrAlreadySubmitted  = errors.New("already submitted for this round")
	ErrNotTheJudge       = errors.New("not the current judge")
	ErrInvalidWinner     = errors.New("invalid winner selection")
	ErrCodeExhaustion    = errors.New("could not allocate a room code")
)

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrRoomNotFound, "RoomNotFound"},
	{ErrRoomFull, "RoomFull"},
	{ErrDuplicatePlayer, "DuplicatePlayer"},
	{ErrGameInProgress, "GameInProgress"},
	{ErrNotHost, "NotHost"},
	{ErrNotEnoughPlayers, "NotEnoughPlayers"},
	{ErrNotInProgress, "NotInProgress"},
	{ErrJudgeCannotSubmit, "JudgeCannotSubmit"},
	{ErrNotInGame, "NotInGame"},
	{ErrInvalidCaption, "InvalidCaption"},
	{ErrAlreadySubmitted, "AlreadySubmitted"},
	{ErrNotTheJudge, "NotTheJudge"},
	{ErrInvalidWinner, "InvalidWinner"},
	{ErrCodeExhaustion, "CodeExhaustion"},
}

// ErrorCode names the error kind for client acknowledgements.
// Anything outside the game taxonomy is reported as "internal".
func ErrorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return "internal"
}

// IsGameError reports whether err belongs to the game taxonomy.
func IsGameError(err error) bool {
	return err != nil && ErrorCode(err) != "internal"
}
