package connection

import (
	"fmt"

	"gomokuserver/gomoku/registry"
	"gomokuserver/gomoku/room"
)

// CloseInvalidRoomID is the application close code sent when the room id in
// the upgrade path does not match the room id grammar.
const CloseInvalidRoomID = 4000

// ClientContext is what the handshake tells us about a new connection.
type ClientContext struct {
	RoomID   string
	Nickname string
}

// FetchClientContext validates the room id taken from the path and
// normalizes the nickname taken from the query string.
func FetchClientContext(rawRoomID, rawNickname string) (*ClientContext, error) {
	id, err := registry.CanonicalRoomID(rawRoomID)
	if err != nil {
		return nil, fmt.Errorf("room id %q: %w", rawRoomID, err)
	}
	return &ClientContext{RoomID: id, Nickname: room.NormalizeNickname(rawNickname)}, nil
}
