package gomoku

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gomokuserver/gomoku/board"
	"gomokuserver/gomoku/connection"
	"gomokuserver/gomoku/registry"
	"gomokuserver/models"
)

type testServer struct {
	*httptest.Server
	reg *registry.Registry
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	reg := registry.New(zap.NewNop())
	upgrader := &websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	settings := connection.Settings{
		IdleTimeout:  10 * time.Second,
		PingPeriod:   time.Minute,
		WriteTimeout: time.Second,
		OutboxSize:   32,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		roomID := strings.TrimPrefix(r.URL.Path, "/ws/games/gomoku/")
		HandleConnections(w, r, roomID, r.URL.Query().Get("name"), reg, upgrader, settings, zap.NewNop())
	}))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, reg: reg}
}

func (s *testServer) dial(t *testing.T, roomID, name string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(s.URL, "http") + "/ws/games/gomoku/" + roomID + "?name=" + url.QueryEscape(name)
	ws, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readFrame(t *testing.T, ws *websocket.Conn, wantType string) []byte {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, data, err := ws.ReadMessage()
	require.NoError(t, err)
	var head struct {
		Type string `json:"type"`
	}
	require.NoError(t, json.Unmarshal(data, &head))
	require.Equal(t, wantType, head.Type, string(data))
	return data
}

func readJoined(t *testing.T, ws *websocket.Conn) models.Joined {
	t.Helper()
	var j models.Joined
	require.NoError(t, json.Unmarshal(readFrame(t, ws, models.TypeJoined), &j))
	return j
}

func readState(t *testing.T, ws *websocket.Conn) models.RoomState {
	t.Helper()
	var s models.RoomState
	require.NoError(t, json.Unmarshal(readFrame(t, ws, models.TypeRoomState), &s))
	return s
}

func readError(t *testing.T, ws *websocket.Conn) models.Error {
	t.Helper()
	var e models.Error
	require.NoError(t, json.Unmarshal(readFrame(t, ws, models.TypeError), &e))
	return e
}

func send(t *testing.T, ws *websocket.Conn, v any) {
	t.Helper()
	require.NoError(t, ws.WriteJSON(v))
}

func move(x, y int) map[string]any {
	return map[string]any{"type": "move", "x": x, "y": y}
}

func hangUp(t *testing.T, ws *websocket.Conn) {
	t.Helper()
	_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	ws.Close()
}

// seat connects two players to roomID and drains their join traffic.
func (s *testServer) seat(t *testing.T, roomID string) (black, white *websocket.Conn) {
	t.Helper()
	black = s.dial(t, roomID, "Alice")
	j := readJoined(t, black)
	require.Equal(t, "black", *j.PlayerColor)
	readState(t, black)

	white = s.dial(t, roomID, "Bob")
	j = readJoined(t, white)
	require.Equal(t, "white", *j.PlayerColor)
	require.Equal(t, "playing", readState(t, white).Status)
	require.Equal(t, "playing", readState(t, black).Status)
	return black, white
}

func TestSpectatorMoveIsRejectedOverTheWire(t *testing.T) {
	s := newTestServer(t)
	black, white := s.seat(t, "abc")

	watcher := s.dial(t, "ABC", "  Carol  ")
	j := readJoined(t, watcher)
	assert.Equal(t, "spectator", j.Role)
	assert.Nil(t, j.PlayerColor)
	assert.Equal(t, "Carol", j.Nickname)
	assert.Equal(t, "ABC", j.RoomID)
	st := readState(t, watcher)
	assert.Equal(t, []models.PlayerInfo{{Nickname: "Carol"}}, st.Spectators)
	assert.Equal(t, int64(3), st.Online.Global.TotalConnections)
	readState(t, black)
	readState(t, white)

	send(t, watcher, move(7, 7))
	e := readError(t, watcher)
	assert.Equal(t, "not_player", e.Code)
	assert.NotEmpty(t, e.Message)

	send(t, black, move(7, 7))
	for _, ws := range []*websocket.Conn{black, white, watcher} {
		st := readState(t, ws)
		assert.Equal(t, models.ReasonMove, st.Reason)
		assert.Equal(t, 1, st.MoveCount)
		assert.Equal(t, board.Black, st.Board[7][7])
		assert.Equal(t, "white", st.Turn)
	}

	send(t, white, move(7, 7))
	assert.Equal(t, "occupied", readError(t, white).Code)
	send(t, black, move(0, 0))
	assert.Equal(t, "not_your_turn", readError(t, black).Code)
	send(t, white, move(15, 0))
	assert.Equal(t, "out_of_bounds", readError(t, white).Code)
}

func TestPingAndBadFrames(t *testing.T) {
	s := newTestServer(t)
	ws := s.dial(t, "pinger", "")
	assert.Equal(t, "Guest", readJoined(t, ws).Nickname)
	readState(t, ws)

	send(t, ws, map[string]string{"type": "ping"})
	readFrame(t, ws, models.TypePong)

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("{not json")))
	assert.Equal(t, models.CodeBadRequest, readError(t, ws).Code)

	send(t, ws, map[string]string{"type": "chat"})
	assert.Equal(t, models.CodeBadRequest, readError(t, ws).Code)

	send(t, ws, map[string]any{"type": "move", "x": "7", "y": 7})
	assert.Equal(t, models.CodeBadRequest, readError(t, ws).Code)

	send(t, ws, map[string]string{"type": "restart"})
	assert.Equal(t, "not_allowed", readError(t, ws).Code)
}

func TestInvalidRoomIDIsClosedWith4000(t *testing.T) {
	s := newTestServer(t)
	ws := s.dial(t, "ab", "x")
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, _, err := ws.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, connection.CloseInvalidRoomID), "got %v", err)

	require.Eventually(t, func() bool { return s.reg.TotalConnections() == 0 }, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, s.reg.Len())
}

func TestPlayerLeavingMidGameResetsRoom(t *testing.T) {
	s := newTestServer(t)
	black, white := s.seat(t, "leave-room")

	send(t, black, move(7, 7))
	readState(t, black)
	readState(t, white)

	hangUp(t, black)
	st := readState(t, white)
	assert.Equal(t, models.ReasonLeave, st.Reason)
	assert.Equal(t, "waiting", st.Status)
	assert.Equal(t, "black", st.Turn)
	assert.Nil(t, st.Winner)
	assert.Nil(t, st.LastMove)
	assert.Equal(t, board.Board{}, st.Board)
	assert.Nil(t, st.Players.Black)
	require.NotNil(t, st.Players.White)
	assert.Equal(t, "Bob", st.Players.White.Nickname)
	assert.Equal(t, int64(1), st.Online.Global.TotalConnections)
	assert.Equal(t, 1, st.Online.Room.Total)

	// the free black seat goes to the next joiner and the game restarts
	next := s.dial(t, "leave-room", "Dave")
	assert.Equal(t, "black", *readJoined(t, next).PlayerColor)
	st = readState(t, next)
	assert.Equal(t, "playing", st.Status)
	assert.Equal(t, 0, st.MoveCount)
}

func TestEmptyRoomIsCollected(t *testing.T) {
	s := newTestServer(t)

	first := s.dial(t, "XYZ", "Eve")
	readJoined(t, first)
	fresh := readState(t, first)
	hangUp(t, first)

	require.Eventually(t, func() bool {
		return s.reg.Len() == 0 && s.reg.TotalConnections() == 0
	}, 3*time.Second, 10*time.Millisecond)

	again := s.dial(t, "xyz", "Eve")
	readJoined(t, again)
	assert.Equal(t, fresh, readState(t, again))
}

func TestShutdownClosesSockets(t *testing.T) {
	s := newTestServer(t)
	black, white := s.seat(t, "shutdown")

	s.reg.Shutdown()
	for _, ws := range []*websocket.Conn{black, white} {
		require.NoError(t, ws.SetReadDeadline(time.Now().Add(3*time.Second)))
		var err error
		for err == nil {
			_, _, err = ws.ReadMessage()
		}
		assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
	}
	require.Eventually(t, func() bool {
		return s.reg.Len() == 0 && s.reg.TotalConnections() == 0
	}, 3*time.Second, 10*time.Millisecond)
}
