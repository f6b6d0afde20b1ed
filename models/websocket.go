package models

import (
	"gomokuserver/gomoku/board"
)

const (
	TypeJoined    = "joined"
	TypeRoomState = "room_state"
	TypeError     = "error"
	TypePong      = "pong"
)

// Error codes that do not come from a room rejection.
const (
	CodeBadRequest   = "bad_request"
	CodeRoomNotFound = "room_not_found"
)

// Reason names the operation that produced a room_state snapshot.
type Reason string

const (
	ReasonJoin    Reason = "join"
	ReasonLeave   Reason = "leave"
	ReasonMove    Reason = "move"
	ReasonRestart Reason = "restart"
)

// Joined is sent once to a connection right after it is seated.
type Joined struct {
	Type        string  `json:"type"`
	RoomID      string  `json:"roomId"`
	Role        string  `json:"role"`
	PlayerColor *string `json:"playerColor"`
	Nickname    string  `json:"nickname"`
}

type PlayerInfo struct {
	Nickname string `json:"nickname"`
}

type Players struct {
	Black *PlayerInfo `json:"black"`
	White *PlayerInfo `json:"white"`
}

type LastMove struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Color string `json:"color"`
}

type RoomOnline struct {
	Players    int `json:"players"`
	Spectators int `json:"spectators"`
	Total      int `json:"total"`
}

type GlobalOnline struct {
	TotalConnections int64 `json:"totalConnections"`
	Rooms            int64 `json:"rooms"`
}

type Online struct {
	Room   RoomOnline   `json:"room"`
	Global GlobalOnline `json:"global"`
}

// RoomState is the authoritative snapshot of a room. Board is an array, so
// a RoomState never aliases the live board.
type RoomState struct {
	Type       string       `json:"type"`
	RoomID     string       `json:"roomId"`
	Reason     Reason       `json:"reason"`
	Status     string       `json:"status"`
	Turn       string       `json:"turn"`
	Winner     *string      `json:"winner"`
	Board      board.Board  `json:"board"`
	MoveCount  int          `json:"moveCount"`
	LastMove   *LastMove    `json:"lastMove"`
	Players    Players      `json:"players"`
	Spectators []PlayerInfo `json:"spectators"`
	Online     Online       `json:"online"`
}

type Error struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Pong struct {
	Type string `json:"type"`
}

func NewError(code, message string) Error {
	return Error{Type: TypeError, Code: code, Message: message}
}

func NewPong() Pong {
	return Pong{Type: TypePong}
}
