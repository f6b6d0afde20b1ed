package room

// Rejection is returned when an operation is refused. It never comes with a
// state change.
type Rejection struct {
	Code    string
	Message string
}

func (r *Rejection) Error() string {
	return r.Message
}

var (
	ErrNotPlayer   = &Rejection{Code: "not_player", Message: "Spectators cannot place stones"}
	ErrNotYourSeat = &Rejection{Code: "not_your_seat", Message: "You are no longer seated in this room"}
	ErrNotPlaying  = &Rejection{Code: "not_playing", Message: "The game is not in progress"}
	ErrNotYourTurn = &Rejection{Code: "not_your_turn", Message: "It is not your turn"}
	ErrOutOfBounds = &Rejection{Code: "out_of_bounds", Message: "That point is off the board"}
	ErrOccupied    = &Rejection{Code: "occupied", Message: "That point is already taken"}
	ErrNotAllowed  = &Rejection{Code: "not_allowed", Message: "Restart is only available to both seated players after a finished game"}
)
