package models

import (
	"encoding/json"
	"fmt"
)

// Inbound is one of MoveMessage, RestartMessage or PingMessage.
type Inbound interface {
	inbound()
}

type MoveMessage struct {
	X int
	Y int
}

type RestartMessage struct{}

type PingMessage struct{}

func (MoveMessage) inbound()    {}
func (RestartMessage) inbound() {}
func (PingMessage) inbound()    {}

// ProtocolError reports a frame that could not be decoded into an Inbound.
type ProtocolError struct {
	Message string
}

func (e *ProtocolError) Error() string {
	return e.Message
}

type envelope struct {
	Type string `json:"type"`
	X    *int   `json:"x"`
	Y    *int   `json:"y"`
}

// DecodeInbound parses a client text frame.
func DecodeInbound(data []byte) (Inbound, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &ProtocolError{Message: "Malformed message"}
	}
	switch env.Type {
	case "move":
		if env.X == nil || env.Y == nil {
			return nil, &ProtocolError{Message: "Move requires integer x and y"}
		}
		return MoveMessage{X: *env.X, Y: *env.Y}, nil
	case "restart":
		return RestartMessage{}, nil
	case "ping":
		return PingMessage{}, nil
	case "":
		return nil, &ProtocolError{Message: "Message type is required"}
	}
	return nil, &ProtocolError{Message: fmt.Sprintf("Unknown message type %q", env.Type)}
}
