package gomoku

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"gomokuserver/gomoku/actions"
	"gomokuserver/gomoku/broadcast"
	"gomokuserver/gomoku/connection"
	"gomokuserver/gomoku/registry"
)

// HandleConnections upgrades the request and runs the connection until the
// socket closes. rawRoomID comes from the path and nickname from the name
// query parameter.
func HandleConnections(w http.ResponseWriter, r *http.Request, rawRoomID, nickname string, reg *registry.Registry, upgrader *websocket.Upgrader, settings connection.Settings, logger *zap.Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered with an HTTP error.
		logger.Warn("Error upgrading WebSocket", zap.Error(err))
		return
	}
	reg.ConnectionOpened()

	clientContext, err := connection.FetchClientContext(rawRoomID, nickname)
	if err != nil {
		logger.Info("Rejected handshake", zap.Error(err))
		msg := websocket.FormatCloseMessage(connection.CloseInvalidRoomID, "invalid room id")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(settings.WriteTimeout))
		conn.Close()
		reg.ConnectionClosed()
		return
	}

	connID := uuid.NewString()
	out := broadcast.NewClient(connID, settings.OutboxSize)
	rm, p, _, err := reg.Join(clientContext.RoomID, connID, clientContext.Nickname, out)
	if err != nil {
		logger.Error("Failed to join room", zap.String("RoomID", clientContext.RoomID), zap.Error(err))
		conn.Close()
		reg.ConnectionClosed()
		return
	}
	logger.Info("New client joined",
		zap.String("RoomID", rm.ID),
		zap.String("ConnID", connID),
		zap.String("Role", string(p.Seat.Role)),
		zap.String("Nickname", p.Nickname),
	)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		connection.MaintainWebSocketConnection(conn, out, settings, logger)
	}()

	actions.HandleClient(&actions.Session{
		Conn:        conn,
		Room:        rm,
		Participant: p,
		Out:         out,
		IdleTimeout: settings.IdleTimeout,
	}, logger)

	// Uncount first so the leave snapshot already reflects the departure.
	reg.ConnectionClosed()
	destroyed := reg.Leave(rm, connID)
	out.Close()
	<-writerDone
	logger.Info("Client removed", zap.String("RoomID", rm.ID), zap.String("ConnID", connID), zap.Bool("roomDestroyed", destroyed))
}
