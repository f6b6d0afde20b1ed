package room

import (
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"gomokuserver/gomoku/board"
	"gomokuserver/gomoku/broadcast"
	"gomokuserver/models"
)

const (
	MaxNicknameLength = 20
	DefaultNickname   = "Guest"
)

type Phase string

const (
	Waiting  Phase = "waiting"
	Playing  Phase = "playing"
	Finished Phase = "finished"
)

type Winner string

const (
	NoWinner    Winner = ""
	WinnerBlack Winner = "black"
	WinnerWhite Winner = "white"
	Draw        Winner = "draw"
)

type Role string

const (
	RolePlayer    Role = "player"
	RoleSpectator Role = "spectator"
)

// Seat is fixed for the lifetime of a participant's membership.
type Seat struct {
	Role  Role
	Color board.Color // only meaningful for RolePlayer
}

type Participant struct {
	ID       string
	Nickname string
	Seat     Seat
}

type LastMove struct {
	X, Y  int
	Color board.Color
}

// Counters exposes the process-wide liveness figures shown in snapshots.
type Counters interface {
	TotalConnections() int64
	ActiveRooms() int64
}

// Room is one game table. Every exported method runs under the room lock;
// snapshots are handed to the hub inside the same critical section, so each
// participant sees them in the order the operations were applied.
type Room struct {
	ID string

	logger   *zap.Logger
	counters Counters
	hub      *broadcast.Hub

	mu         sync.Mutex
	board      board.Board
	players    [2]*Participant // black, white
	spectators []*Participant
	turn       board.Color
	phase      Phase
	winner     Winner
	moveCount  int
	lastMove   *LastMove
}

func New(id string, counters Counters, logger *zap.Logger) *Room {
	return &Room{
		ID:       id,
		logger:   logger,
		counters: counters,
		hub:      broadcast.NewHub(logger),
		turn:     board.ColorBlack,
		phase:    Waiting,
	}
}

// NormalizeNickname trims s, substitutes DefaultNickname for an empty name
// and truncates to MaxNicknameLength code points.
func NormalizeNickname(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultNickname
	}
	if utf8.RuneCountInString(s) > MaxNicknameLength {
		s = string([]rune(s)[:MaxNicknameLength])
	}
	return s
}

func (r *Room) seatsFilled() bool {
	return r.players[0] != nil && r.players[1] != nil
}

func (r *Room) resetGame() {
	r.board.Reset()
	r.turn = board.ColorBlack
	r.winner = NoWinner
	r.moveCount = 0
	r.lastMove = nil
}

// Join seats connID. The first free seat goes to it (black before white);
// otherwise it becomes a spectator. out, when non-nil, is subscribed to the
// room and receives the joined frame ahead of the join snapshot.
func (r *Room) Join(connID, nickname string, out *broadcast.Client) (Participant, models.RoomState) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := &Participant{ID: connID, Nickname: NormalizeNickname(nickname), Seat: Seat{Role: RoleSpectator}}
	switch {
	case r.players[0] == nil:
		p.Seat = Seat{Role: RolePlayer, Color: board.ColorBlack}
		r.players[0] = p
	case r.players[1] == nil:
		p.Seat = Seat{Role: RolePlayer, Color: board.ColorWhite}
		r.players[1] = p
	default:
		r.spectators = append(r.spectators, p)
	}
	if p.Seat.Role == RolePlayer && r.seatsFilled() {
		r.resetGame()
		r.phase = Playing
	}

	if out != nil {
		r.hub.Register(out)
		if err := out.SendJSON(joinedFrame(r.ID, p)); err != nil {
			r.logger.Warn("Failed to queue joined frame", zap.String("RoomID", r.ID), zap.String("ConnID", connID), zap.Error(err))
		}
	}
	state := r.snapshotLocked(models.ReasonJoin)
	r.publishLocked(state)
	return *p, state
}

func joinedFrame(roomID string, p *Participant) models.Joined {
	frame := models.Joined{
		Type:     models.TypeJoined,
		RoomID:   roomID,
		Role:     string(p.Seat.Role),
		Nickname: p.Nickname,
	}
	if p.Seat.Role == RolePlayer {
		color := p.Seat.Color.String()
		frame.PlayerColor = &color
	}
	return frame
}

// Leave removes connID. A departing player vacates the seat and the game is
// reset to Waiting. The returned state is nil when the room became empty
// (the caller should destroy it) or connID was not in the room.
func (r *Room) Leave(connID string) (*models.RoomState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.hub.Unregister(connID)
	removed := false
	for i, s := range r.spectators {
		if s.ID == connID {
			r.spectators = append(r.spectators[:i], r.spectators[i+1:]...)
			removed = true
			break
		}
	}
	if !removed {
		for i, p := range r.players {
			if p != nil && p.ID == connID {
				r.players[i] = nil
				r.resetGame()
				r.phase = Waiting
				removed = true
				break
			}
		}
	}

	if r.emptyLocked() {
		return nil, true
	}
	if !removed {
		return nil, false
	}
	state := r.snapshotLocked(models.ReasonLeave)
	r.publishLocked(state)
	return &state, false
}

// Move places a stone for connID at (x, y).
func (r *Room) Move(connID string, x, y int) (models.RoomState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	color, err := r.playerColorLocked(connID)
	if err != nil {
		return models.RoomState{}, err
	}
	if r.phase != Playing {
		return models.RoomState{}, ErrNotPlaying
	}
	if r.turn != color {
		return models.RoomState{}, ErrNotYourTurn
	}
	if !board.InBounds(x, y) {
		return models.RoomState{}, ErrOutOfBounds
	}
	if r.board.At(x, y) != board.Empty {
		return models.RoomState{}, ErrOccupied
	}

	r.board.Place(x, y, color)
	r.lastMove = &LastMove{X: x, Y: y, Color: color}
	r.moveCount++
	switch {
	case r.board.WonThrough(x, y):
		r.phase = Finished
		r.winner = Winner(color.String())
	case r.moveCount == board.Cells:
		r.phase = Finished
		r.winner = Draw
	default:
		r.turn = color.Opponent()
	}

	state := r.snapshotLocked(models.ReasonMove)
	r.publishLocked(state)
	return state, nil
}

func (r *Room) playerColorLocked(connID string) (board.Color, error) {
	for _, s := range r.spectators {
		if s.ID == connID {
			return 0, ErrNotPlayer
		}
	}
	for _, p := range r.players {
		if p != nil && p.ID == connID {
			return p.Seat.Color, nil
		}
	}
	return 0, ErrNotYourSeat
}

// Restart starts a new game after a finished one. Only a seated player may
// ask, and only while both seats are filled.
func (r *Room) Restart(connID string) (models.RoomState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.playerColorLocked(connID); err != nil {
		return models.RoomState{}, ErrNotAllowed
	}
	if r.phase != Finished || !r.seatsFilled() {
		return models.RoomState{}, ErrNotAllowed
	}
	r.resetGame()
	r.phase = Playing

	state := r.snapshotLocked(models.ReasonRestart)
	r.publishLocked(state)
	return state, nil
}

// Position returns a copy of the board with the side to move and the phase,
// for callers that run the engine outside the lock.
func (r *Room) Position() (board.Board, board.Color, Phase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.board, r.turn, r.phase
}

// Snapshot builds the current state without publishing it.
func (r *Room) Snapshot(reason models.Reason) models.RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked(reason)
}

func (r *Room) Empty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.emptyLocked()
}

func (r *Room) emptyLocked() bool {
	return r.players[0] == nil && r.players[1] == nil && len(r.spectators) == 0
}

// CloseAll closes every participant queue. Writers then close their sockets
// and each handler leaves the room as usual.
func (r *Room) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hub.CloseAll()
}

func (r *Room) publishLocked(state models.RoomState) {
	dropped, err := r.hub.Publish(state)
	if err != nil {
		r.logger.Error("Failed to marshal room state", zap.String("RoomID", r.ID), zap.Error(err))
		return
	}
	if len(dropped) > 0 {
		r.logger.Info("Slow participants dropped", zap.String("RoomID", r.ID), zap.Strings("ConnIDs", dropped))
	}
}

func playerInfo(p *Participant) *models.PlayerInfo {
	if p == nil {
		return nil
	}
	return &models.PlayerInfo{Nickname: p.Nickname}
}

func (r *Room) snapshotLocked(reason models.Reason) models.RoomState {
	state := models.RoomState{
		Type:      models.TypeRoomState,
		RoomID:    r.ID,
		Reason:    reason,
		Status:    string(r.phase),
		Turn:      r.turn.String(),
		Board:     r.board,
		MoveCount: r.moveCount,
		Players: models.Players{
			Black: playerInfo(r.players[0]),
			White: playerInfo(r.players[1]),
		},
		Spectators: make([]models.PlayerInfo, 0, len(r.spectators)),
	}
	if r.winner != NoWinner {
		w := string(r.winner)
		state.Winner = &w
	}
	if r.lastMove != nil {
		state.LastMove = &models.LastMove{X: r.lastMove.X, Y: r.lastMove.Y, Color: r.lastMove.Color.String()}
	}
	for _, s := range r.spectators {
		state.Spectators = append(state.Spectators, models.PlayerInfo{Nickname: s.Nickname})
	}

	seated := 0
	for _, p := range r.players {
		if p != nil {
			seated++
		}
	}
	state.Online.Room = models.RoomOnline{
		Players:    seated,
		Spectators: len(r.spectators),
		Total:      seated + len(r.spectators),
	}
	if r.counters != nil {
		state.Online.Global = models.GlobalOnline{
			TotalConnections: r.counters.TotalConnections(),
			Rooms:            r.counters.ActiveRooms(),
		}
	}
	return state
}
