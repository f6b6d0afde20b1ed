package actions

import (
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"gomokuserver/gomoku/broadcast"
	"gomokuserver/gomoku/connection"
	"gomokuserver/gomoku/room"
	"gomokuserver/models"
)

const maxMessageSize = 4096

// Session is one seated or spectating connection as seen by the reader.
type Session struct {
	Conn        *websocket.Conn
	Room        *room.Room
	Participant room.Participant
	Out         *broadcast.Client
	IdleTimeout time.Duration
}

// HandleClient reads frames until the socket fails or closes and dispatches
// them to the room. It never writes to the socket itself; replies go through
// the participant's outbox.
func HandleClient(s *Session, logger *zap.Logger) {
	logger = logger.With(zap.String("RoomID", s.Room.ID), zap.String("ConnID", s.Participant.ID))
	// 大きすぎるフレームは読まない
	s.Conn.SetReadLimit(maxMessageSize)
	connection.ArmReadDeadline(s.Conn, s.IdleTimeout)

	for {
		_, data, err := s.Conn.ReadMessage()
		if err != nil {
			// close, idle timeout or the writer hung up
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("WebSocket read error", zap.Error(err))
			}
			return
		}
		// any frame counts as activity
		s.Conn.SetReadDeadline(time.Now().Add(s.IdleTimeout))

		// 受信したメッセージをデコード
		msg, err := models.DecodeInbound(data)
		if err != nil {
			logger.Debug("Rejected frame", zap.Error(err))
			sendErrorMessage(s.Out, models.CodeBadRequest, err.Error(), logger)
			continue
		}

		// メッセージタイプに基づいて処理を分岐
		switch m := msg.(type) {
		case models.MoveMessage:
			handleMove(s, m, logger)
		case models.RestartMessage:
			handleRestart(s, logger)
		case models.PingMessage:
			// no room interaction
			if err := s.Out.SendJSON(models.NewPong()); err != nil {
				dropOnOverflow(s.Out, err, logger)
			}
		}
	}
}

// sendErrorMessage queues a unicast error frame.
func sendErrorMessage(out *broadcast.Client, code, message string, logger *zap.Logger) {
	if err := out.SendJSON(models.NewError(code, message)); err != nil {
		dropOnOverflow(out, err, logger)
	}
}

// replyRejection turns a room rejection into an error frame; anything else is
// unexpected and only logged.
func replyRejection(out *broadcast.Client, err error, logger *zap.Logger) {
	var rej *room.Rejection
	if errors.As(err, &rej) {
		logger.Debug("Operation rejected", zap.String("code", rej.Code))
		sendErrorMessage(out, rej.Code, rej.Message, logger)
		return
	}
	logger.Error("Unexpected room error", zap.Error(err))
}

// A full outbox is handled like a fan-out overflow: the queue is closed and
// the writer hangs up.
func dropOnOverflow(out *broadcast.Client, err error, logger *zap.Logger) {
	if errors.Is(err, broadcast.ErrOutboxFull) {
		logger.Warn("Outbox full, dropping client")
		out.Close()
	}
}
